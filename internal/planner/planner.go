package planner

import (
	"github.com/paulwritescode/minidb/internal/parser"
)

// Catalog is the schema information the planner needs. The storage layer's
// Database satisfies it.
type Catalog interface {
	ColumnIndexed(table, column string) bool
}

// AccessMode selects how matching rows of a single table are found.
type AccessMode int

const (
	// FullScan walks every row in natural order.
	FullScan AccessMode = iota
	// IndexLookup probes the column's hash index.
	IndexLookup
)

func (m AccessMode) String() string {
	if m == IndexLookup {
		return "index lookup"
	}
	return "full scan"
}

// FilterPlan is the chosen access path for a WHERE clause on one table.
type FilterPlan struct {
	Mode AccessMode
}

// JoinMode selects the join algorithm.
type JoinMode int

const (
	// NestedLoop compares every left row against every right row.
	NestedLoop JoinMode = iota
	// IndexLoop iterates left rows and probes the right table's index.
	IndexLoop
)

func (m JoinMode) String() string {
	if m == IndexLoop {
		return "index loop"
	}
	return "nested loop"
}

// JoinPlan is the chosen algorithm for an equality join.
type JoinPlan struct {
	Mode JoinMode
}

// PlanFilter picks the access path for a single-table equality filter. A nil
// WHERE clause or a non-indexed column falls back to a full scan.
func PlanFilter(cat Catalog, table string, where *parser.Condition) FilterPlan {
	if where == nil {
		return FilterPlan{Mode: FullScan}
	}
	if cat.ColumnIndexed(table, where.Column.Name) {
		return FilterPlan{Mode: IndexLookup}
	}
	return FilterPlan{Mode: FullScan}
}

// PlanJoin picks the join algorithm: an index loop when the right table's
// join column is indexed, a nested loop otherwise. rightColumn must already
// be resolved to the right table.
func PlanJoin(cat Catalog, rightTable, rightColumn string) JoinPlan {
	if cat.ColumnIndexed(rightTable, rightColumn) {
		return JoinPlan{Mode: IndexLoop}
	}
	return JoinPlan{Mode: NestedLoop}
}
