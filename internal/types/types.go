package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType is the declared type of a table column.
type ColumnType string

const (
	TypeInteger ColumnType = "INTEGER"
	TypeText    ColumnType = "TEXT"
	TypeBoolean ColumnType = "BOOLEAN"
)

// ParseColumnType resolves a type token to its canonical ColumnType. INT and
// STRING are accepted as aliases for INTEGER and TEXT, BOOL for BOOLEAN.
func ParseColumnType(tok string) (ColumnType, bool) {
	switch strings.ToUpper(tok) {
	case "INTEGER", "INT":
		return TypeInteger, true
	case "TEXT", "STRING":
		return TypeText, true
	case "BOOLEAN", "BOOL":
		return TypeBoolean, true
	}
	return "", false
}

// Column describes one column of a table schema.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
	Unique     bool
	Indexed    bool
}

// Normalize applies the implicit flag rules: a primary-key column is always
// unique and indexed.
func (c Column) Normalize() Column {
	if c.PrimaryKey {
		c.Unique = true
		c.Indexed = true
	}
	return c
}

// Row maps column names to stored values. A stored value is always one of
// int64, string or bool, matching the column's declared type.
type Row map[string]interface{}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Coerce checks v against a declared column type and returns the stored
// representation. INTEGER accepts integer values only, BOOLEAN accepts
// booleans only, TEXT accepts any value and stringifies it.
func Coerce(v interface{}, t ColumnType) (interface{}, error) {
	switch t {
	case TypeInteger:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case TypeText:
		switch s := v.(type) {
		case string:
			return s, nil
		case int64:
			return strconv.FormatInt(s, 10), nil
		case int:
			return strconv.Itoa(s), nil
		case bool:
			return strconv.FormatBool(s), nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, NewTypeMismatch(v, t)
}

// FormatValue renders a stored value for display.
func FormatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
