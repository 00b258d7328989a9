package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulwritescode/minidb/internal/parser"
	"github.com/paulwritescode/minidb/internal/types"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := parser.Parse("CREATE TABLE users (id INT PRIMARY UNIQUE INDEX, name STRING, active BOOLEAN)")
	require.NoError(t, err)
	create, ok := stmt.(*parser.CreateTableStatement)
	require.True(t, ok)

	assert.Equal(t, "users", create.Table)
	require.Len(t, create.Columns, 3)
	assert.Equal(t, types.Column{
		Name: "id", Type: types.TypeInteger,
		PrimaryKey: true, Unique: true, Indexed: true,
	}, create.Columns[0])
	assert.Equal(t, types.Column{Name: "name", Type: types.TypeText}, create.Columns[1])
	assert.Equal(t, types.Column{Name: "active", Type: types.TypeBoolean}, create.Columns[2])
}

func TestParsePrimaryImpliesUniqueIndexed(t *testing.T) {
	stmt, err := parser.Parse("CREATE TABLE t (id INT PRIMARY)")
	require.NoError(t, err)
	create := stmt.(*parser.CreateTableStatement)
	assert.True(t, create.Columns[0].Unique)
	assert.True(t, create.Columns[0].Indexed)
}

func TestParseInsert(t *testing.T) {
	stmt, err := parser.Parse("INSERT INTO users (id, name, active) VALUES (1, 'Alice', true)")
	require.NoError(t, err)
	insert := stmt.(*parser.InsertStatement)

	assert.Equal(t, "users", insert.Table)
	assert.Equal(t, []string{"id", "name", "active"}, insert.Columns)
	assert.Equal(t, []interface{}{int64(1), "Alice", true}, insert.Values)
}

func TestParseInsertPositional(t *testing.T) {
	stmt, err := parser.Parse("INSERT INTO users VALUES (1, 'Alice')")
	require.NoError(t, err)
	insert := stmt.(*parser.InsertStatement)
	assert.Nil(t, insert.Columns)
	assert.Equal(t, []interface{}{int64(1), "Alice"}, insert.Values)
}

func TestParseSelect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *parser.SelectStatement
	}{
		{
			name:     "Star_no_where",
			input:    "SELECT * FROM users",
			expected: &parser.SelectStatement{Table: "users", Star: true},
		},
		{
			name:  "Columns_with_where",
			input: "SELECT id, name FROM users WHERE id=1",
			expected: &parser.SelectStatement{
				Table:   "users",
				Columns: []parser.ColumnRef{{Name: "id"}, {Name: "name"}},
				Where:   &parser.Condition{Column: parser.ColumnRef{Name: "id"}, Value: int64(1)},
			},
		},
		{
			name:  "Where_boolean_literal",
			input: "SELECT * FROM users WHERE active=false",
			expected: &parser.SelectStatement{
				Table: "users",
				Star:  true,
				Where: &parser.Condition{Column: parser.ColumnRef{Name: "active"}, Value: false},
			},
		},
		{
			name:  "Join_with_qualified_columns",
			input: "SELECT * FROM users JOIN orders ON users.id=orders.user_id",
			expected: &parser.SelectStatement{
				Table: "users",
				Star:  true,
				Join: &parser.JoinClause{
					Table: "orders",
					Left:  parser.ColumnRef{Table: "users", Name: "id"},
					Right: parser.ColumnRef{Table: "orders", Name: "user_id"},
				},
			},
		},
		{
			name:  "Join_with_where_and_projection",
			input: "SELECT users.name, orders.amount FROM users JOIN orders ON users.id=orders.user_id WHERE users.name='Alice'",
			expected: &parser.SelectStatement{
				Table: "users",
				Columns: []parser.ColumnRef{
					{Table: "users", Name: "name"},
					{Table: "orders", Name: "amount"},
				},
				Join: &parser.JoinClause{
					Table: "orders",
					Left:  parser.ColumnRef{Table: "users", Name: "id"},
					Right: parser.ColumnRef{Table: "orders", Name: "user_id"},
				},
				Where: &parser.Condition{
					Column: parser.ColumnRef{Table: "users", Name: "name"},
					Value:  "Alice",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stmt)
		})
	}
}

func TestParseUpdate(t *testing.T) {
	stmt, err := parser.Parse("UPDATE users SET name='Alice2', active=false WHERE id=1")
	require.NoError(t, err)
	update := stmt.(*parser.UpdateStatement)

	assert.Equal(t, "users", update.Table)
	assert.Equal(t, []parser.Assignment{
		{Column: "name", Value: "Alice2"},
		{Column: "active", Value: false},
	}, update.Set)
	assert.Equal(t, &parser.Condition{Column: parser.ColumnRef{Name: "id"}, Value: int64(1)}, update.Where)
}

func TestParseUpdateWithoutWhere(t *testing.T) {
	stmt, err := parser.Parse("UPDATE users SET active=true")
	require.NoError(t, err)
	update := stmt.(*parser.UpdateStatement)
	assert.Nil(t, update.Where)
}

func TestParseDelete(t *testing.T) {
	stmt, err := parser.Parse("DELETE FROM users WHERE id=1")
	require.NoError(t, err)
	del := stmt.(*parser.DeleteStatement)
	assert.Equal(t, "users", del.Table)
	assert.Equal(t, int64(1), del.Where.Value)

	stmt, err = parser.Parse("DELETE FROM users")
	require.NoError(t, err)
	assert.Nil(t, stmt.(*parser.DeleteStatement).Where)
}

func TestParseIntrospection(t *testing.T) {
	stmt, err := parser.Parse("SHOW TABLES")
	require.NoError(t, err)
	assert.IsType(t, &parser.ShowTablesStatement{}, stmt)

	stmt, err = parser.Parse("DESCRIBE users;")
	require.NoError(t, err)
	assert.Equal(t, &parser.DescribeStatement{Table: "users"}, stmt)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fragment string
	}{
		{name: "Empty_statement", input: "", fragment: "empty"},
		{name: "Unsupported_statement", input: "DROP TABLE users", fragment: "drop"},
		{name: "Missing_from", input: "SELECT *", fragment: "FROM"},
		{name: "Missing_table_name", input: "SELECT * FROM", fragment: "table name"},
		{name: "Bad_column_type", input: "CREATE TABLE t (id FLOAT)", fragment: "column type"},
		{name: "Bad_column_flag", input: "CREATE TABLE t (id INT NULL)", fragment: "NULL"},
		{name: "Missing_values", input: "INSERT INTO t (id)", fragment: "VALUES"},
		{name: "Where_without_literal", input: "SELECT * FROM t WHERE id=", fragment: "literal"},
		{name: "Trailing_garbage", input: "SELECT * FROM t garbage", fragment: "garbage"},
		{name: "Update_missing_set", input: "UPDATE t WHERE id=1", fragment: "SET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.input)
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.ParseError))
			assert.Contains(t, err.Error(), tt.fragment)
		})
	}
}
