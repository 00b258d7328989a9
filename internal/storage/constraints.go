package storage

import (
	"github.com/paulwritescode/minidb/internal/types"
)

// checkUniqueConstraints validates a candidate row against every primary-key
// and unique column before an insert. Nothing is mutated; a hit fails with
// ConstraintViolation.
func (t *Table) checkUniqueConstraints(row types.Row) error {
	for _, col := range t.Columns {
		if !col.Unique {
			continue
		}
		if err := t.checkUniqueValue(col, row[col.Name], -1); err != nil {
			return err
		}
	}
	return nil
}

// checkUniqueUpdates validates changed values against unique columns before
// a per-row update, excluding the row being updated itself.
func (t *Table) checkUniqueUpdates(pos int, changes types.Row) error {
	current, ok := t.rows.Get(pos)
	if !ok {
		return nil
	}
	for _, col := range t.Columns {
		if !col.Unique {
			continue
		}
		val, touched := changes[col.Name]
		if !touched || val == current[col.Name] {
			continue
		}
		if err := t.checkUniqueValue(col, val, pos); err != nil {
			return err
		}
	}
	return nil
}

// checkUniqueValue probes for an existing row holding value in col. Indexed
// columns use the index; unique-but-unindexed columns consult the bloom
// negative cache first and scan only on a possible hit. excludePos is the
// position of the row being updated, or -1 for inserts.
func (t *Table) checkUniqueValue(col types.Column, value interface{}, excludePos int) error {
	if ix, err := t.IndexFor(col.Name); err == nil {
		for _, pos := range ix.Lookup(value) {
			if pos != excludePos {
				return types.NewConstraintViolation(col.Name, value)
			}
		}
		return nil
	}

	if bf, ok := t.blooms[col.Name]; ok && !bf.Test([]byte(valueKey(value))) {
		// Values are only ever added to the filter, so a negative test
		// proves the value was never stored.
		return nil
	}

	var violated bool
	t.rows.Scan(func(pos int, row types.Row) bool {
		if pos != excludePos && row[col.Name] == value {
			violated = true
			return false
		}
		return true
	})
	if violated {
		return types.NewConstraintViolation(col.Name, value)
	}
	return nil
}
