package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulwritescode/minidb/internal/storage"
	"github.com/paulwritescode/minidb/internal/types"
)

func usersTable(t *testing.T) *storage.Table {
	t.Helper()
	table, err := storage.NewTable("users", []types.Column{
		{Name: "id", Type: types.TypeInteger, PrimaryKey: true},
		{Name: "name", Type: types.TypeText},
		{Name: "active", Type: types.TypeBoolean},
	})
	require.NoError(t, err)
	return table
}

func TestNewTableSchemaErrors(t *testing.T) {
	_, err := storage.NewTable("t", nil)
	assert.True(t, types.IsKind(err, types.SchemaError))

	_, err = storage.NewTable("t", []types.Column{
		{Name: "id", Type: types.TypeInteger},
		{Name: "id", Type: types.TypeText},
	})
	assert.True(t, types.IsKind(err, types.SchemaError))
}

func TestTableAppendAndScanOrder(t *testing.T) {
	table := usersTable(t)
	table.Append(types.Row{"id": int64(2), "name": "Bob", "active": false})
	table.Append(types.Row{"id": int64(1), "name": "Alice", "active": true})
	table.Append(types.Row{"id": int64(3), "name": "Carol", "active": true})

	var names []string
	table.Scan(func(_ int, row types.Row) bool {
		names = append(names, row["name"].(string))
		return true
	})
	// Natural order is insertion order, not key order.
	assert.Equal(t, []string{"Bob", "Alice", "Carol"}, names)
	assert.Equal(t, 3, table.RowCount())
}

func TestIndexFor(t *testing.T) {
	table := usersTable(t)

	_, err := table.IndexFor("id")
	assert.NoError(t, err)

	_, err = table.IndexFor("name")
	assert.True(t, types.IsKind(err, types.NotIndexed))
}

func TestIndexTracksMutations(t *testing.T) {
	table, err := storage.NewTable("orders", []types.Column{
		{Name: "id", Type: types.TypeInteger, PrimaryKey: true},
		{Name: "user_id", Type: types.TypeInteger, Indexed: true},
	})
	require.NoError(t, err)

	p1 := table.Append(types.Row{"id": int64(1), "user_id": int64(7)})
	p2 := table.Append(types.Row{"id": int64(2), "user_id": int64(7)})
	p3 := table.Append(types.Row{"id": int64(3), "user_id": int64(8)})

	ix, err := table.IndexFor("user_id")
	require.NoError(t, err)
	assert.Equal(t, []int{p1, p2}, ix.Lookup(int64(7)))
	assert.Equal(t, []int{p3}, ix.Lookup(int64(8)))

	// Update moves the row between index entries.
	ok := table.UpdateAt(p2, types.Row{"user_id": int64(8)})
	require.True(t, ok)
	assert.Equal(t, []int{p1}, ix.Lookup(int64(7)))
	assert.Equal(t, []int{p2, p3}, ix.Lookup(int64(8)))

	// Delete removes the row from every index entry.
	ok = table.DeleteAt(p1)
	require.True(t, ok)
	assert.Nil(t, ix.Lookup(int64(7)))
	assert.Equal(t, 2, table.RowCount())

	// Surviving positions are untouched by the delete.
	row, ok := table.RowAt(p3)
	require.True(t, ok)
	assert.Equal(t, int64(3), row["id"])
}

// assertIndexConsistent checks the index-consistency law: every indexed
// column's index maps each value to exactly the positions holding it.
func assertIndexConsistent(t *testing.T, table *storage.Table) {
	t.Helper()
	for _, col := range table.IndexedColumns() {
		ix, err := table.IndexFor(col)
		require.NoError(t, err)
		expected := make(map[interface{}][]int)
		table.Scan(func(pos int, row types.Row) bool {
			expected[row[col]] = append(expected[row[col]], pos)
			return true
		})
		for val, positions := range expected {
			assert.Equal(t, positions, ix.Lookup(val), "column %s value %v", col, val)
		}
	}
}

func TestIndexConsistencyAcrossMutations(t *testing.T) {
	table, err := storage.NewTable("events", []types.Column{
		{Name: "id", Type: types.TypeInteger, PrimaryKey: true},
		{Name: "kind", Type: types.TypeText, Indexed: true},
	})
	require.NoError(t, err)

	positions := make([]int, 0, 10)
	kinds := []string{"create", "update", "delete", "create", "update"}
	for i := 0; i < 10; i++ {
		pos := table.Append(types.Row{"id": int64(i), "kind": kinds[i%len(kinds)]})
		positions = append(positions, pos)
	}
	assertIndexConsistent(t, table)

	table.UpdateAt(positions[3], types.Row{"kind": "delete"})
	table.UpdateAt(positions[7], types.Row{"kind": "create"})
	assertIndexConsistent(t, table)

	table.DeleteAt(positions[0])
	table.DeleteAt(positions[4])
	assertIndexConsistent(t, table)

	table.Append(types.Row{"id": int64(100), "kind": "update"})
	assertIndexConsistent(t, table)
}

func TestScanEarlyStop(t *testing.T) {
	table := usersTable(t)
	for i := 0; i < 5; i++ {
		table.Append(types.Row{"id": int64(i), "name": "x", "active": true})
	}
	count := 0
	table.Scan(func(_ int, _ types.Row) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)

	// Scans restart from the beginning.
	count = 0
	table.Scan(func(_ int, _ types.Row) bool {
		count++
		return true
	})
	assert.Equal(t, 5, count)
}
