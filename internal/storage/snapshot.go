package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/paulwritescode/minidb/internal/types"
)

// Snapshot wire format: the full catalog as ordered tables, each with its
// ordered column definitions and rows as ordered value lists. Indexes and
// bloom filters are derived state and are rebuilt on load, never persisted.

type snapshotColumn struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	Indexed    bool   `json:"indexed,omitempty"`
}

type snapshotTable struct {
	Name    string           `json:"name"`
	Columns []snapshotColumn `json:"columns"`
	Rows    [][]interface{}  `json:"rows"`
}

type snapshotDatabase struct {
	Tables []snapshotTable `json:"tables"`
}

// Save serializes the full catalog to path.
func (db *Database) Save(path string) error {
	snap := snapshotDatabase{Tables: make([]snapshotTable, 0, len(db.order))}
	for _, name := range db.order {
		t := db.tables[name]
		st := snapshotTable{Name: name, Rows: [][]interface{}{}}
		for _, col := range t.Columns {
			st.Columns = append(st.Columns, snapshotColumn{
				Name:       col.Name,
				Type:       string(col.Type),
				PrimaryKey: col.PrimaryKey,
				Unique:     col.Unique,
				Indexed:    col.Indexed,
			})
		}
		t.Scan(func(_ int, row types.Row) bool {
			values := make([]interface{}, len(t.Columns))
			for i, col := range t.Columns {
				values[i] = row[col.Name]
			}
			st.Rows = append(st.Rows, values)
			return true
		})
		snap.Tables = append(snap.Tables, st)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return types.NewPersistenceError("encode snapshot: %v", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return types.NewPersistenceError("create snapshot directory: %v", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return types.NewPersistenceError("write snapshot: %v", err)
	}
	types.GlobalLogger.Info("saved snapshot of %d tables to %s", len(snap.Tables), path)
	return nil
}

// Load rebuilds the catalog from a snapshot at path, replaying rows through
// Append so every index and bloom filter is rebuilt from scratch. The
// replacement catalog is built completely before being swapped in; on any
// failure the live catalog is left untouched.
func (db *Database) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.NewPersistenceError("read snapshot: %v", err)
	}

	var snap snapshotDatabase
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&snap); err != nil {
		return types.NewPersistenceError("decode snapshot: %v", err)
	}

	tables := make(map[string]*Table, len(snap.Tables))
	order := make([]string, 0, len(snap.Tables))
	for _, st := range snap.Tables {
		if _, dup := tables[st.Name]; dup {
			return types.NewPersistenceError("duplicate table %s in snapshot", st.Name)
		}
		columns := make([]types.Column, len(st.Columns))
		for i, sc := range st.Columns {
			colType, ok := types.ParseColumnType(sc.Type)
			if !ok {
				return types.NewPersistenceError("unknown type %s for column %s", sc.Type, sc.Name)
			}
			columns[i] = types.Column{
				Name:       sc.Name,
				Type:       colType,
				PrimaryKey: sc.PrimaryKey,
				Unique:     sc.Unique,
				Indexed:    sc.Indexed,
			}
		}
		t, err := NewTable(st.Name, columns)
		if err != nil {
			return types.NewPersistenceError("table %s: %v", st.Name, err)
		}
		for _, values := range st.Rows {
			if len(values) != len(t.Columns) {
				return types.NewPersistenceError("table %s: row has %d values for %d columns",
					st.Name, len(values), len(t.Columns))
			}
			row := make(types.Row, len(values))
			for i, col := range t.Columns {
				val, err := decodeSnapshotValue(values[i], col.Type)
				if err != nil {
					return types.NewPersistenceError("table %s, column %s: %v", st.Name, col.Name, err)
				}
				row[col.Name] = val
			}
			t.Append(row)
		}
		tables[st.Name] = t
		order = append(order, st.Name)
	}

	db.replaceCatalog(tables, order)
	types.GlobalLogger.Info("loaded snapshot of %d tables from %s", len(order), path)
	return nil
}

// decodeSnapshotValue converts a decoded JSON value to the stored
// representation for a declared column type.
func decodeSnapshotValue(v interface{}, t types.ColumnType) (interface{}, error) {
	switch t {
	case types.TypeInteger:
		num, ok := v.(json.Number)
		if !ok {
			return nil, types.NewPersistenceError("value %v is not an integer", v)
		}
		n, err := num.Int64()
		if err != nil {
			return nil, types.NewPersistenceError("value %v is not an integer", v)
		}
		return n, nil
	case types.TypeText:
		s, ok := v.(string)
		if !ok {
			return nil, types.NewPersistenceError("value %v is not text", v)
		}
		return s, nil
	case types.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, types.NewPersistenceError("value %v is not a boolean", v)
		}
		return b, nil
	}
	return nil, types.NewPersistenceError("unknown column type %s", t)
}
