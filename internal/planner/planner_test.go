package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paulwritescode/minidb/internal/parser"
	"github.com/paulwritescode/minidb/internal/planner"
)

// fakeCatalog marks "table.column" strings as indexed.
type fakeCatalog map[string]bool

func (c fakeCatalog) ColumnIndexed(table, column string) bool {
	return c[table+"."+column]
}

func TestPlanFilter(t *testing.T) {
	cat := fakeCatalog{"users.id": true}

	tests := []struct {
		name     string
		where    *parser.Condition
		expected planner.AccessMode
	}{
		{
			name:     "No_where_scans",
			where:    nil,
			expected: planner.FullScan,
		},
		{
			name:     "Indexed_column_uses_index",
			where:    &parser.Condition{Column: parser.ColumnRef{Name: "id"}, Value: int64(1)},
			expected: planner.IndexLookup,
		},
		{
			name:     "Non_indexed_column_scans",
			where:    &parser.Condition{Column: parser.ColumnRef{Name: "name"}, Value: "Alice"},
			expected: planner.FullScan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planner.PlanFilter(cat, "users", tt.where)
			assert.Equal(t, tt.expected, plan.Mode)
		})
	}
}

func TestPlanJoin(t *testing.T) {
	cat := fakeCatalog{"orders.user_id": true}

	plan := planner.PlanJoin(cat, "orders", "user_id")
	assert.Equal(t, planner.IndexLoop, plan.Mode)

	plan = planner.PlanJoin(cat, "orders", "amount")
	assert.Equal(t, planner.NestedLoop, plan.Mode)
}
