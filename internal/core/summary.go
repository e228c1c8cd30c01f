package core

import (
	"sort"
)

// CategorySummary is one row of the budget overview.
type CategorySummary struct {
	Name       string `json:"name"`
	Group      Group  `json:"group"`
	Icon       string `json:"icon"`
	Budget     Money  `json:"budget"`
	Spent      Money  `json:"spent"`
	Remaining  Money  `json:"remaining"`
	Percent    int    `json:"percent"`
	OverBudget bool   `json:"overBudget"`
	Count      int    `json:"transactionCount"`
}

// TransactionView flattens a transaction together with its category.
type TransactionView struct {
	Transaction
	Category string `json:"category"`
}

// Overview is everything a renderer or report needs about the month.
type Overview struct {
	Month        string            `json:"month"`
	Income       Money             `json:"income"`
	TotalBudget  Money             `json:"totalBudget"`
	TotalSpent   Money             `json:"totalSpent"`
	Remaining    Money             `json:"remaining"`
	Percent      int               `json:"percent"`
	Onboarded    bool              `json:"onboarded"`
	Categories   []CategorySummary `json:"categories"`
	Transactions []TransactionView `json:"transactions"`
}

// Summarize builds the overview read model.
func (s BudgetState) Summarize() Overview {
	ov := Overview{
		Month:        s.Month,
		Income:       s.Income,
		Onboarded:    s.Onboarded(),
		Categories:   make([]CategorySummary, 0, len(s.Categories)),
		Transactions: s.Transactions(),
	}
	for _, c := range s.Categories {
		ov.TotalBudget.Cents += c.Budget.Cents
		ov.TotalSpent.Cents += c.Spent.Cents
		ov.Categories = append(ov.Categories, CategorySummary{
			Name:       c.Name,
			Group:      c.Group,
			Icon:       IconFor(c.Name),
			Budget:     c.Budget,
			Spent:      c.Spent,
			Remaining:  Money{Cents: c.Budget.Cents - c.Spent.Cents},
			Percent:    PercentUsed(c.Spent, c.Budget),
			OverBudget: c.Spent.Cents > c.Budget.Cents,
			Count:      len(c.Transactions),
		})
	}
	ov.Remaining = Money{Cents: s.Income.Cents - ov.TotalSpent.Cents}
	ov.Percent = PercentUsed(ov.TotalSpent, s.Income)
	return ov
}

// Transactions returns every transaction newest first. Equal dates keep
// category order, then insertion order.
func (s BudgetState) Transactions() []TransactionView {
	var out []TransactionView
	for _, c := range s.Categories {
		for _, t := range c.Transactions {
			out = append(out, TransactionView{Transaction: t, Category: c.Name})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if out == nil {
		out = []TransactionView{}
	}
	return out
}

// PercentUsed is spent as a whole percentage of limit, capped at 100.
// A zero limit reports 0; the over-budget flag covers that case.
func PercentUsed(spent, limit Money) int {
	if limit.Cents <= 0 {
		return 0
	}
	p := (spent.Cents*100 + limit.Cents/2) / limit.Cents
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return int(p)
}
