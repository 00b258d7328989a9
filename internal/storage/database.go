package storage

import (
	"github.com/paulwritescode/minidb/internal/parser"
	"github.com/paulwritescode/minidb/internal/types"
)

// Result is the outcome of a successfully executed statement. Reads fill
// Columns and Rows; writes fill Affected.
type Result struct {
	Columns  []string    `json:"columns,omitempty"`
	Rows     []types.Row `json:"rows,omitempty"`
	Affected int         `json:"affected"`

	// Mutation reports whether the statement was a write, whatever its
	// affected count. Front ends use it to drive autosave.
	Mutation bool `json:"-"`
}

// Database is the catalog: the set of named tables plus their creation
// order, owned by a single synchronous caller.
type Database struct {
	tables map[string]*Table
	order  []string
}

// New creates an empty database.
func New() *Database {
	return &Database{tables: make(map[string]*Table)}
}

// Table returns the named table.
func (db *Database) Table(name string) (*Table, error) {
	t, ok := db.tables[name]
	if !ok {
		return nil, types.NewTableNotFound(name)
	}
	return t, nil
}

// ListTables returns table names in creation order.
func (db *Database) ListTables() []string {
	out := make([]string, len(db.order))
	copy(out, db.order)
	return out
}

// Describe returns the schema of the named table.
func (db *Database) Describe(name string) ([]types.Column, error) {
	t, err := db.Table(name)
	if err != nil {
		return nil, err
	}
	out := make([]types.Column, len(t.Columns))
	copy(out, t.Columns)
	return out, nil
}

// ColumnIndexed satisfies planner.Catalog.
func (db *Database) ColumnIndexed(table, column string) bool {
	t, ok := db.tables[table]
	if !ok {
		return false
	}
	_, err := t.IndexFor(column)
	return err == nil
}

// ExecuteCommand parses and executes a single command string. This is the
// entry point front ends submit text through.
func (db *Database) ExecuteCommand(input string) (*Result, error) {
	stmt, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}
	return db.Execute(stmt)
}

// Execute dispatches a parsed statement. All validation happens before any
// mutation; a failed command leaves tables and indexes untouched, except
// that a multi-row UPDATE applies row by row and a later row's constraint
// violation does not roll back earlier rows.
func (db *Database) Execute(stmt parser.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStatement:
		return db.executeCreate(s)
	case *parser.InsertStatement:
		return db.executeInsert(s)
	case *parser.SelectStatement:
		return db.executeSelect(s)
	case *parser.UpdateStatement:
		return db.executeUpdate(s)
	case *parser.DeleteStatement:
		return db.executeDelete(s)
	case *parser.ShowTablesStatement:
		return db.executeShowTables()
	case *parser.DescribeStatement:
		return db.executeDescribe(s)
	}
	return nil, types.NewParseError("unsupported statement")
}

func (db *Database) executeCreate(stmt *parser.CreateTableStatement) (*Result, error) {
	if _, exists := db.tables[stmt.Table]; exists {
		return nil, types.NewSchemaError("table %s already exists", stmt.Table)
	}
	t, err := NewTable(stmt.Table, stmt.Columns)
	if err != nil {
		return nil, err
	}
	db.tables[stmt.Table] = t
	db.order = append(db.order, stmt.Table)
	return &Result{Mutation: true}, nil
}

func (db *Database) executeShowTables() (*Result, error) {
	res := &Result{Columns: []string{"table"}}
	for _, name := range db.order {
		res.Rows = append(res.Rows, types.Row{"table": name})
	}
	return res, nil
}

func (db *Database) executeDescribe(stmt *parser.DescribeStatement) (*Result, error) {
	columns, err := db.Describe(stmt.Table)
	if err != nil {
		return nil, err
	}
	res := &Result{Columns: []string{"column", "type", "primary_key", "unique", "indexed"}}
	for _, col := range columns {
		res.Rows = append(res.Rows, types.Row{
			"column":      col.Name,
			"type":        string(col.Type),
			"primary_key": col.PrimaryKey,
			"unique":      col.Unique,
			"indexed":     col.Indexed,
		})
	}
	return res, nil
}

// replaceCatalog swaps in a fully built replacement catalog. Used by
// snapshot load, which constructs the new state completely before the swap
// so a failed load leaves the live catalog untouched.
func (db *Database) replaceCatalog(tables map[string]*Table, order []string) {
	db.tables = tables
	db.order = order
}
