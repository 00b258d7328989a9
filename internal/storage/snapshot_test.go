package storage_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulwritescode/minidb/internal/storage"
	"github.com/paulwritescode/minidb/internal/types"
)

func snapshotPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "minidb-snapshot")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "db.json")
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := seedUsersOrders(t)
	path := snapshotPath(t)
	require.NoError(t, db.Save(path))

	restored := storage.New()
	require.NoError(t, restored.Load(path))

	// Same tables, same schemas, same rows in the same order.
	assert.Equal(t, db.ListTables(), restored.ListTables())
	for _, name := range db.ListTables() {
		origCols, err := db.Describe(name)
		require.NoError(t, err)
		restCols, err := restored.Describe(name)
		require.NoError(t, err)
		assert.Equal(t, origCols, restCols)

		orig := mustExec(t, db, "SELECT * FROM "+name)
		rest := mustExec(t, restored, "SELECT * FROM "+name)
		assert.Equal(t, orig.Rows, rest.Rows)
	}

	// Indexes are rebuilt from scratch: indexed queries work and respect
	// constraints on the restored catalog.
	res := mustExec(t, restored, "SELECT * FROM orders WHERE user_id=1")
	assert.Len(t, res.Rows, 2)

	_, err := restored.ExecuteCommand("INSERT INTO users (id, name, active) VALUES (1, 'Dup', true)")
	assert.True(t, types.IsKind(err, types.ConstraintViolation))
}

func TestSnapshotShape(t *testing.T) {
	db := storage.New()
	mustExec(t, db, "CREATE TABLE users (id INT PRIMARY, name STRING)")
	mustExec(t, db, "INSERT INTO users (id, name) VALUES (1, 'Alice')")
	path := snapshotPath(t)
	require.NoError(t, db.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap struct {
		Tables []struct {
			Name    string `json:"name"`
			Columns []struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"columns"`
			Rows [][]interface{} `json:"rows"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))

	require.Len(t, snap.Tables, 1)
	assert.Equal(t, "users", snap.Tables[0].Name)
	assert.Equal(t, "INTEGER", snap.Tables[0].Columns[0].Type)
	// Rows are ordered value lists in schema order.
	require.Len(t, snap.Tables[0].Rows, 1)
	assert.Equal(t, "Alice", snap.Tables[0].Rows[0][1])
	// No index data is persisted.
	assert.NotContains(t, string(data), "indexes")
}

func TestLoadRejectsMalformedSnapshots(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Not_json",
			content: "not a snapshot",
		},
		{
			name: "Unknown_type_tag",
			content: `{"tables":[{"name":"t","columns":[{"name":"id","type":"FLOAT"}],"rows":[]}]}`,
		},
		{
			name: "Row_arity_mismatch",
			content: `{"tables":[{"name":"t","columns":[{"name":"id","type":"INTEGER"},{"name":"name","type":"TEXT"}],"rows":[[1,"x",true]]}]}`,
		},
		{
			name: "Value_type_mismatch",
			content: `{"tables":[{"name":"t","columns":[{"name":"id","type":"INTEGER"}],"rows":[["one"]]}]}`,
		},
		{
			name: "Duplicate_table",
			content: `{"tables":[{"name":"t","columns":[{"name":"id","type":"INTEGER"}],"rows":[]},{"name":"t","columns":[{"name":"id","type":"INTEGER"}],"rows":[]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Seed live state the failed load must not touch.
			db := storage.New()
			mustExec(t, db, "CREATE TABLE keep (id INT PRIMARY, name STRING)")
			mustExec(t, db, "INSERT INTO keep (id, name) VALUES (1, 'safe')")

			path := snapshotPath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			err := db.Load(path)
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.PersistenceError))

			// The prior in-memory state is fully intact.
			res := mustExec(t, db, "SELECT * FROM keep WHERE id=1")
			require.Len(t, res.Rows, 1)
			assert.Equal(t, "safe", res.Rows[0]["name"])
			assert.Equal(t, []string{"keep"}, db.ListTables())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	db := storage.New()
	err := db.Load(filepath.Join(os.TempDir(), "does-not-exist-minidb.json"))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.PersistenceError))
}

func TestPersistenceBundle(t *testing.T) {
	dir, err := os.MkdirTemp("", "minidb-persist")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	persist, err := storage.NewPersistence(storage.PersistenceConfig{
		SnapshotPath: filepath.Join(dir, "db.json"),
		Autosave:     true,
	})
	require.NoError(t, err)

	db := storage.New()
	// Loading with no snapshot on disk is a no-op.
	require.NoError(t, persist.LoadSnapshot(db))

	mustExec(t, db, "CREATE TABLE t (id INT PRIMARY)")
	mustExec(t, db, "INSERT INTO t (id) VALUES (1)")
	require.NoError(t, persist.AfterWrite(db))

	restored := storage.New()
	require.NoError(t, persist.LoadSnapshot(restored))
	res := mustExec(t, restored, "SELECT * FROM t")
	assert.Len(t, res.Rows, 1)
}
