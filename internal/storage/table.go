package storage

import (
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/paulwritescode/minidb/internal/types"
)

// Table is an ordered collection of typed rows plus the per-column hash
// indexes declared by its schema. Unique columns without an index carry a
// bloom filter as an add-only negative cache for constraint probes.
type Table struct {
	Name    string
	Columns []types.Column

	rows    *RowStore
	indexes map[string]*Index
	blooms  map[string]*bloom.BloomFilter
}

// NewTable establishes a schema and creates an empty index for every column
// flagged indexed or primary-key.
func NewTable(name string, columns []types.Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, types.NewSchemaError("table %s has no columns", name)
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col.Name] {
			return nil, types.NewSchemaError("duplicate column name: %s", col.Name)
		}
		seen[col.Name] = true
	}

	t := &Table{
		Name:    name,
		Columns: make([]types.Column, len(columns)),
		rows:    NewRowStore(),
		indexes: make(map[string]*Index),
		blooms:  make(map[string]*bloom.BloomFilter),
	}
	for i, col := range columns {
		col = col.Normalize()
		t.Columns[i] = col
		if col.Indexed {
			t.indexes[col.Name] = NewIndex(col.Name)
		} else if col.Unique {
			t.blooms[col.Name] = bloom.NewWithEstimates(100000, 0.01)
		}
	}
	return t, nil
}

// Column returns the schema definition for name.
func (t *Table) Column(name string) (types.Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return types.Column{}, false
}

// IndexFor returns the index on column, or NotIndexed when the column has
// none. Callers fall back to scanning; the error never reaches the API
// surface.
func (t *Table) IndexFor(column string) (*Index, error) {
	ix, ok := t.indexes[column]
	if !ok {
		return nil, types.NewNotIndexed(column)
	}
	return ix, nil
}

// IndexedColumns returns the names of indexed columns in schema order.
func (t *Table) IndexedColumns() []string {
	out := make([]string, 0, len(t.indexes))
	for _, col := range t.Columns {
		if _, ok := t.indexes[col.Name]; ok {
			out = append(out, col.Name)
		}
	}
	return out
}

// RowCount returns the current number of rows.
func (t *Table) RowCount() int {
	return t.rows.Len()
}

// RowAt returns the row at pos.
func (t *Table) RowAt(pos int) (types.Row, bool) {
	return t.rows.Get(pos)
}

// Scan walks rows in natural order, stopping early when fn returns false.
func (t *Table) Scan(fn func(pos int, row types.Row) bool) {
	t.rows.Scan(fn)
}

// Append adds a row at the end of the row sequence and brings every index
// and bloom filter up to date before returning. The row must already be
// coerced and constraint-checked; Append itself does not validate.
func (t *Table) Append(row types.Row) int {
	pos := t.rows.Append(row)
	for col, ix := range t.indexes {
		ix.Insert(row[col], pos)
	}
	for col, bf := range t.blooms {
		bf.Add([]byte(valueKey(row[col])))
	}
	return pos
}

// UpdateAt replaces the values named in changes for the row at pos, removing
// old index entries and inserting new ones for every indexed column touched.
// The store is never visible in a half-updated state: execution is
// single-caller and the swap completes before UpdateAt returns.
func (t *Table) UpdateAt(pos int, changes types.Row) bool {
	old, ok := t.rows.Get(pos)
	if !ok {
		return false
	}
	updated := old.Clone()
	for col, val := range changes {
		updated[col] = val
	}
	for col, ix := range t.indexes {
		if _, touched := changes[col]; touched {
			ix.Remove(old[col], pos)
			ix.Insert(updated[col], pos)
		}
	}
	for col, bf := range t.blooms {
		if _, touched := changes[col]; touched {
			bf.Add([]byte(valueKey(updated[col])))
		}
	}
	t.rows.Replace(pos, updated)
	return true
}

// DeleteAt removes the row at pos and its entries from every index.
func (t *Table) DeleteAt(pos int) bool {
	old, ok := t.rows.Get(pos)
	if !ok {
		return false
	}
	for col, ix := range t.indexes {
		ix.Remove(old[col], pos)
	}
	t.rows.Delete(pos)
	return true
}
