package storage

import (
	sorted "github.com/tobshub/go-sortedmap"

	"github.com/paulwritescode/minidb/internal/types"
)

// rowEntry pairs a row with its position id so the sorted map can keep
// natural (insertion) order.
type rowEntry struct {
	pos int
	row types.Row
}

func rowEntryLess(a, b rowEntry) bool {
	return a.pos < b.pos
}

// RowStore holds a table's rows keyed by a monotonically increasing position
// id. Positions are stable: deletes never renumber surviving rows, so index
// entries stay valid without rewriting.
type RowStore struct {
	rows    *sorted.SortedMap[int, rowEntry]
	nextPos int
}

// NewRowStore creates an empty row store.
func NewRowStore() *RowStore {
	return &RowStore{rows: sorted.New[int, rowEntry](0, rowEntryLess)}
}

// Append adds a row at the end of the natural order and returns its position.
func (rs *RowStore) Append(row types.Row) int {
	pos := rs.nextPos
	rs.nextPos++
	rs.rows.Insert(pos, rowEntry{pos: pos, row: row})
	return pos
}

// Get returns the row at pos.
func (rs *RowStore) Get(pos int) (types.Row, bool) {
	e, ok := rs.rows.Get(pos)
	if !ok {
		return nil, false
	}
	return e.row, true
}

// Replace swaps the row stored at pos.
func (rs *RowStore) Replace(pos int, row types.Row) bool {
	if !rs.rows.Has(pos) {
		return false
	}
	rs.rows.Replace(pos, rowEntry{pos: pos, row: row})
	return true
}

// Delete removes the row at pos.
func (rs *RowStore) Delete(pos int) bool {
	return rs.rows.Delete(pos)
}

// Len returns the number of stored rows.
func (rs *RowStore) Len() int {
	return rs.rows.Len()
}

// Scan walks rows in natural order, stopping early when fn returns false.
// Each call starts a fresh iteration.
func (rs *RowStore) Scan(fn func(pos int, row types.Row) bool) {
	iterCh, err := rs.rows.IterCh()
	if err != nil {
		// Empty store.
		return
	}
	defer iterCh.Close()
	for rec := range iterCh.Records() {
		if !fn(rec.Key, rec.Val.row) {
			return
		}
	}
}

// Positions returns all row positions in natural order.
func (rs *RowStore) Positions() []int {
	out := make([]int, 0, rs.rows.Len())
	rs.Scan(func(pos int, _ types.Row) bool {
		out = append(out, pos)
		return true
	})
	return out
}
