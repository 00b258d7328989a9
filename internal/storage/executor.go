package storage

import (
	"github.com/paulwritescode/minidb/internal/parser"
	"github.com/paulwritescode/minidb/internal/planner"
	"github.com/paulwritescode/minidb/internal/types"
)

func (db *Database) executeInsert(stmt *parser.InsertStatement) (*Result, error) {
	t, err := db.Table(stmt.Table)
	if err != nil {
		return nil, err
	}

	columns := stmt.Columns
	if columns == nil {
		// No column list: values are positional against schema order.
		columns = make([]string, len(t.Columns))
		for i, col := range t.Columns {
			columns[i] = col.Name
		}
	}
	if len(columns) != len(stmt.Values) {
		return nil, types.NewSchemaError("%d columns but %d values", len(columns), len(stmt.Values))
	}

	row := make(types.Row, len(columns))
	for i, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			return nil, types.NewColumnNotFound(name)
		}
		if _, dup := row[name]; dup {
			return nil, types.NewSchemaError("column %s named twice", name)
		}
		val, err := types.Coerce(stmt.Values[i], col.Type)
		if err != nil {
			return nil, err
		}
		row[name] = val
	}
	for _, col := range t.Columns {
		if _, ok := row[col.Name]; !ok {
			return nil, types.NewSchemaError("no value for column %s", col.Name)
		}
	}

	if err := t.checkUniqueConstraints(row); err != nil {
		return nil, err
	}
	t.Append(row)
	return &Result{Affected: 1, Mutation: true}, nil
}

func (db *Database) executeUpdate(stmt *parser.UpdateStatement) (*Result, error) {
	t, err := db.Table(stmt.Table)
	if err != nil {
		return nil, err
	}

	changes := make(types.Row, len(stmt.Set))
	for _, assign := range stmt.Set {
		col, ok := t.Column(assign.Column)
		if !ok {
			return nil, types.NewColumnNotFound(assign.Column)
		}
		val, err := types.Coerce(assign.Value, col.Type)
		if err != nil {
			return nil, err
		}
		changes[assign.Column] = val
	}

	matched, err := db.matchPositions(t, stmt.Where)
	if err != nil {
		return nil, err
	}
	for _, pos := range matched {
		if err := t.checkUniqueUpdates(pos, changes); err != nil {
			return nil, err
		}
		t.UpdateAt(pos, changes)
	}
	return &Result{Affected: len(matched), Mutation: true}, nil
}

func (db *Database) executeDelete(stmt *parser.DeleteStatement) (*Result, error) {
	t, err := db.Table(stmt.Table)
	if err != nil {
		return nil, err
	}
	matched, err := db.matchPositions(t, stmt.Where)
	if err != nil {
		return nil, err
	}
	for _, pos := range matched {
		t.DeleteAt(pos)
	}
	return &Result{Affected: len(matched), Mutation: true}, nil
}

// resolveCondition checks a single-table WHERE column against the schema and
// coerces the literal to the column's declared type.
func resolveCondition(t *Table, where *parser.Condition) (string, interface{}, error) {
	if where.Column.Table != "" && where.Column.Table != t.Name {
		return "", nil, types.NewColumnNotFound(where.Column.String())
	}
	col, ok := t.Column(where.Column.Name)
	if !ok {
		return "", nil, types.NewColumnNotFound(where.Column.Name)
	}
	val, err := types.Coerce(where.Value, col.Type)
	if err != nil {
		return "", nil, err
	}
	return col.Name, val, nil
}

// matchPositions returns the positions of rows matching the WHERE clause in
// natural order, using the index when the planner picks one. A nil clause
// matches every row.
func (db *Database) matchPositions(t *Table, where *parser.Condition) ([]int, error) {
	if where == nil {
		return t.rows.Positions(), nil
	}
	column, value, err := resolveCondition(t, where)
	if err != nil {
		return nil, err
	}

	plan := planner.PlanFilter(db, t.Name, where)
	if plan.Mode == planner.IndexLookup {
		ix, err := t.IndexFor(column)
		if err != nil {
			return nil, err
		}
		// Re-check equality: the index key is the formatted value, which
		// can collide across types.
		var matched []int
		for _, pos := range ix.Lookup(value) {
			if row, ok := t.rows.Get(pos); ok && row[column] == value {
				matched = append(matched, pos)
			}
		}
		return matched, nil
	}

	var matched []int
	t.rows.Scan(func(pos int, row types.Row) bool {
		if row[column] == value {
			matched = append(matched, pos)
		}
		return true
	})
	return matched, nil
}

func (db *Database) executeSelect(stmt *parser.SelectStatement) (*Result, error) {
	if stmt.Join != nil {
		return db.executeJoin(stmt)
	}

	t, err := db.Table(stmt.Table)
	if err != nil {
		return nil, err
	}
	matched, err := db.matchPositions(t, stmt.Where)
	if err != nil {
		return nil, err
	}

	columns, err := projectSingle(t, stmt)
	if err != nil {
		return nil, err
	}
	res := &Result{Columns: columns}
	for _, pos := range matched {
		row, ok := t.rows.Get(pos)
		if !ok {
			continue
		}
		out := make(types.Row, len(columns))
		for _, name := range columns {
			out[name] = row[name]
		}
		res.Rows = append(res.Rows, out)
	}
	return res, nil
}

// projectSingle resolves the projected column list of a single-table SELECT.
func projectSingle(t *Table, stmt *parser.SelectStatement) ([]string, error) {
	if stmt.Star {
		columns := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			columns[i] = col.Name
		}
		return columns, nil
	}
	columns := make([]string, len(stmt.Columns))
	for i, ref := range stmt.Columns {
		if ref.Table != "" && ref.Table != t.Name {
			return nil, types.NewColumnNotFound(ref.String())
		}
		if _, ok := t.Column(ref.Name); !ok {
			return nil, types.NewColumnNotFound(ref.Name)
		}
		columns[i] = ref.Name
	}
	return columns, nil
}

// joinSide pins a column reference from a join query to one of the two
// joined tables.
type joinSide struct {
	table  *Table
	column types.Column
}

// resolveJoinRef resolves a possibly qualified column reference against the
// two joined tables. Unqualified names matching both tables are ambiguous.
func resolveJoinRef(left, right *Table, ref parser.ColumnRef) (joinSide, error) {
	if ref.Table != "" {
		var t *Table
		switch ref.Table {
		case left.Name:
			t = left
		case right.Name:
			t = right
		default:
			return joinSide{}, types.NewTableNotFound(ref.Table)
		}
		col, ok := t.Column(ref.Name)
		if !ok {
			return joinSide{}, types.NewColumnNotFound(ref.String())
		}
		return joinSide{table: t, column: col}, nil
	}

	lcol, inLeft := left.Column(ref.Name)
	rcol, inRight := right.Column(ref.Name)
	switch {
	case inLeft && inRight:
		return joinSide{}, types.NewError(types.ColumnNotFound, "column %s is ambiguous", ref.Name)
	case inLeft:
		return joinSide{table: left, column: lcol}, nil
	case inRight:
		return joinSide{table: right, column: rcol}, nil
	}
	return joinSide{}, types.NewColumnNotFound(ref.Name)
}

func (db *Database) executeJoin(stmt *parser.SelectStatement) (*Result, error) {
	left, err := db.Table(stmt.Table)
	if err != nil {
		return nil, err
	}
	right, err := db.Table(stmt.Join.Table)
	if err != nil {
		return nil, err
	}

	a, err := resolveJoinRef(left, right, stmt.Join.Left)
	if err != nil {
		return nil, err
	}
	b, err := resolveJoinRef(left, right, stmt.Join.Right)
	if err != nil {
		return nil, err
	}
	// Normalize: either side of the ON clause may name either table.
	if a.table == right && b.table == left {
		a, b = b, a
	}
	if a.table != left || b.table != right {
		return nil, types.NewSchemaError("join condition must reference both %s and %s", left.Name, right.Name)
	}
	leftCol, rightCol := a.column.Name, b.column.Name

	// Joined rows carry qualified keys from both tables and are freshly
	// materialized; they are never stored or indexed.
	var joined []types.Row
	combine := func(lrow, rrow types.Row) {
		out := make(types.Row, len(lrow)+len(rrow))
		for k, v := range lrow {
			out[left.Name+"."+k] = v
		}
		for k, v := range rrow {
			out[right.Name+"."+k] = v
		}
		joined = append(joined, out)
	}

	plan := planner.PlanJoin(db, right.Name, rightCol)
	if plan.Mode == planner.IndexLoop {
		ix, err := right.IndexFor(rightCol)
		if err != nil {
			return nil, err
		}
		left.Scan(func(_ int, lrow types.Row) bool {
			for _, pos := range ix.Lookup(lrow[leftCol]) {
				rrow, ok := right.rows.Get(pos)
				if ok && rrow[rightCol] == lrow[leftCol] {
					combine(lrow, rrow)
				}
			}
			return true
		})
	} else {
		left.Scan(func(_ int, lrow types.Row) bool {
			right.Scan(func(_ int, rrow types.Row) bool {
				if lrow[leftCol] == rrow[rightCol] {
					combine(lrow, rrow)
				}
				return true
			})
			return true
		})
	}

	if stmt.Where != nil {
		side, err := resolveJoinRef(left, right, stmt.Where.Column)
		if err != nil {
			return nil, err
		}
		val, err := types.Coerce(stmt.Where.Value, side.column.Type)
		if err != nil {
			return nil, err
		}
		key := side.table.Name + "." + side.column.Name
		var filtered []types.Row
		for _, row := range joined {
			if row[key] == val {
				filtered = append(filtered, row)
			}
		}
		joined = filtered
	}

	columns, err := projectJoin(left, right, stmt)
	if err != nil {
		return nil, err
	}
	res := &Result{Columns: columns}
	for _, row := range joined {
		out := make(types.Row, len(columns))
		for _, name := range columns {
			out[name] = row[name]
		}
		res.Rows = append(res.Rows, out)
	}
	return res, nil
}

// projectJoin resolves the projected column list of a join SELECT to
// qualified result names.
func projectJoin(left, right *Table, stmt *parser.SelectStatement) ([]string, error) {
	if stmt.Star {
		columns := make([]string, 0, len(left.Columns)+len(right.Columns))
		for _, col := range left.Columns {
			columns = append(columns, left.Name+"."+col.Name)
		}
		for _, col := range right.Columns {
			columns = append(columns, right.Name+"."+col.Name)
		}
		return columns, nil
	}
	columns := make([]string, len(stmt.Columns))
	for i, ref := range stmt.Columns {
		side, err := resolveJoinRef(left, right, ref)
		if err != nil {
			return nil, err
		}
		columns[i] = side.table.Name + "." + side.column.Name
	}
	return columns, nil
}
