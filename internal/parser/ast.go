package parser

import (
	"github.com/paulwritescode/minidb/internal/types"
)

// Statement is the tagged union produced by the parser. Statements carry no
// behavior; execution lives in the storage layer.
type Statement interface {
	stmtNode()
}

// ColumnRef is a possibly table-qualified column reference.
type ColumnRef struct {
	Table string // empty when unqualified
	Name  string
}

func (r ColumnRef) String() string {
	if r.Table == "" {
		return r.Name
	}
	return r.Table + "." + r.Name
}

// Condition is a single equality predicate `column = literal`.
type Condition struct {
	Column ColumnRef
	Value  interface{} // int64, string or bool
}

// JoinClause is a single equality join against a second table.
type JoinClause struct {
	Table string // right-hand table
	Left  ColumnRef
	Right ColumnRef
}

// Assignment is one `column = literal` pair in an UPDATE SET clause.
type Assignment struct {
	Column string
	Value  interface{}
}

// CreateTableStatement represents CREATE TABLE.
type CreateTableStatement struct {
	Table   string
	Columns []types.Column
}

// InsertStatement represents INSERT INTO. A nil Columns list means the
// values are positional against schema order.
type InsertStatement struct {
	Table   string
	Columns []string
	Values  []interface{}
}

// SelectStatement represents SELECT, optionally with a JOIN and a WHERE.
type SelectStatement struct {
	Table   string
	Join    *JoinClause
	Star    bool
	Columns []ColumnRef
	Where   *Condition
}

// UpdateStatement represents UPDATE.
type UpdateStatement struct {
	Table string
	Set   []Assignment
	Where *Condition
}

// DeleteStatement represents DELETE FROM.
type DeleteStatement struct {
	Table string
	Where *Condition
}

// ShowTablesStatement represents SHOW TABLES.
type ShowTablesStatement struct{}

// DescribeStatement represents DESCRIBE <table>.
type DescribeStatement struct {
	Table string
}

func (*CreateTableStatement) stmtNode() {}
func (*InsertStatement) stmtNode()      {}
func (*SelectStatement) stmtNode()      {}
func (*UpdateStatement) stmtNode()      {}
func (*DeleteStatement) stmtNode()      {}
func (*ShowTablesStatement) stmtNode()  {}
func (*DescribeStatement) stmtNode()    {}

// IsWrite reports whether a statement mutates the catalog when executed.
func IsWrite(stmt Statement) bool {
	switch stmt.(type) {
	case *CreateTableStatement, *InsertStatement, *UpdateStatement, *DeleteStatement:
		return true
	}
	return false
}
