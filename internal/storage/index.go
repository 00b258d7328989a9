package storage

import (
	"fmt"
	"sort"
)

// valueKey renders a stored value as an index key. A column only ever holds
// one Go type, so the formatted form is collision-free within an index.
func valueKey(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

// Index is a hash index over one column: value key to the row positions
// holding that value, kept in ascending order so lookups preserve natural
// (insertion) order.
type Index struct {
	Column string
	data   map[string][]int
}

// NewIndex creates an empty index for the given column.
func NewIndex(column string) *Index {
	return &Index{Column: column, data: make(map[string][]int)}
}

// Insert records that the row at pos holds value.
func (ix *Index) Insert(value interface{}, pos int) {
	key := valueKey(value)
	positions := ix.data[key]
	i := sort.SearchInts(positions, pos)
	if i < len(positions) && positions[i] == pos {
		return
	}
	positions = append(positions, 0)
	copy(positions[i+1:], positions[i:])
	positions[i] = pos
	ix.data[key] = positions
}

// Remove drops pos from the entry for value. Empty entries are deleted so
// the index never references stale rows.
func (ix *Index) Remove(value interface{}, pos int) {
	key := valueKey(value)
	positions := ix.data[key]
	i := sort.SearchInts(positions, pos)
	if i >= len(positions) || positions[i] != pos {
		return
	}
	positions = append(positions[:i], positions[i+1:]...)
	if len(positions) == 0 {
		delete(ix.data, key)
	} else {
		ix.data[key] = positions
	}
}

// Lookup returns the positions of rows holding value, in ascending order.
// The returned slice is a copy; callers may not mutate index internals.
func (ix *Index) Lookup(value interface{}) []int {
	positions := ix.data[valueKey(value)]
	if len(positions) == 0 {
		return nil
	}
	out := make([]int, len(positions))
	copy(out, positions)
	return out
}

// Len returns the number of distinct values in the index.
func (ix *Index) Len() int {
	return len(ix.data)
}
