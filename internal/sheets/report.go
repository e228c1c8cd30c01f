package sheets

import (
	"time"

	"kesho/internal/core"
)

// TabPrefix starts the name of every report tab, followed by the month.
const TabPrefix = "Report "

// Report is the monthly summary handed to the external report generator.
type Report struct {
	Month       string
	GeneratedAt time.Time
	Overview    core.Overview
}

func NewReport(ov core.Overview, now time.Time) Report {
	return Report{Month: ov.Month, GeneratedAt: now, Overview: ov}
}

// TabName is the sheet tab the report lives on, e.g. "Report 2024-05".
func (r Report) TabName() string {
	return TabPrefix + r.Month
}

var categoryHeader = []any{"Category", "Group", "Budget", "Spent", "Remaining", "Used %", "Over budget", "Transactions"}

// Rows lays the report out as totals, a blank line, then one row per
// category. Amounts are whole-unit numbers so the sheet can sum them.
func (r Report) Rows() [][]any {
	ov := r.Overview
	rows := [][]any{
		{"Month", r.Month},
		{"Generated", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Income", ov.Income.Units()},
		{"Spent", ov.TotalSpent.Units()},
		{"Remaining", ov.Remaining.Units()},
		{"Used %", ov.Percent},
		{},
		categoryHeader,
	}
	for _, c := range ov.Categories {
		rows = append(rows, []any{
			c.Name,
			c.Group.String(),
			c.Budget.Units(),
			c.Spent.Units(),
			c.Remaining.Units(),
			c.Percent,
			c.OverBudget,
			c.Count,
		})
	}
	return rows
}
