package core

import (
	"fmt"
	"slices"
	"strings"
)

// SetIncome records income and re-runs allocation over every category.
// Groups with no categories are reported back in the result. Income must be
// positive and at most MaxAmount.
func (s BudgetState) SetIncome(income Money) (BudgetState, AllocationResult, error) {
	if income.Cents <= 0 || income.Cents > MaxAmount.Cents {
		return s, AllocationResult{}, ErrInvalidIncome
	}
	alloc := Allocate(income, s.Categories)
	next := s.Clone()
	next.Income = income
	next.Categories = alloc.Categories
	return next, alloc, nil
}

// UpdateBudgets sets income and any listed category budgets in one step,
// without re-running allocation.
func (s BudgetState) UpdateBudgets(income Money, budgets map[string]Money) (BudgetState, error) {
	if income.Cents <= 0 || income.Cents > MaxAmount.Cents {
		return s, ErrInvalidIncome
	}
	next := s.Clone()
	next.Income = income
	for name, amount := range budgets {
		if !amount.InRange() {
			return s, fmt.Errorf("%w: budget for %q", ErrInvalidAmount, name)
		}
		i := next.indexOf(name)
		if i < 0 {
			return s, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
		}
		next.Categories[i].Budget = amount
	}
	if err := next.checkTotals(); err != nil {
		return s, err
	}
	return next, nil
}

// AddCategory appends an empty category. Names are matched case-sensitively.
func (s BudgetState) AddCategory(name string, group Group) (BudgetState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrInvalidCategoryName
	}
	if !group.IsValid() {
		return s, fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	if s.indexOf(name) >= 0 {
		return s, fmt.Errorf("%w: %q", ErrDuplicateCategoryName, name)
	}
	next := s.Clone()
	next.Categories = append(next.Categories, newCategory(name, group))
	return next, nil
}

// RenameCategory changes a category's name in place, keeping its position,
// group, budget and transactions.
func (s BudgetState) RenameCategory(oldName, newName string) (BudgetState, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return s, ErrInvalidCategoryName
	}
	i := s.indexOf(oldName)
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrCategoryNotFound, oldName)
	}
	if newName == oldName {
		return s.Clone(), nil
	}
	if s.indexOf(newName) >= 0 {
		return s, fmt.Errorf("%w: %q", ErrDuplicateCategoryName, newName)
	}
	next := s.Clone()
	next.Categories[i].Name = newName
	return next, nil
}

// SetBudget overrides a single category budget.
func (s BudgetState) SetBudget(name string, amount Money) (BudgetState, error) {
	if !amount.InRange() {
		return s, ErrInvalidAmount
	}
	i := s.indexOf(name)
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	next := s.Clone()
	next.Categories[i].Budget = amount
	if err := next.checkTotals(); err != nil {
		return s, err
	}
	return next, nil
}

// RemoveCategory deletes the category together with its transactions and
// returns what was discarded. This cannot be undone; callers confirm first.
func (s BudgetState) RemoveCategory(name string) (BudgetState, Category, error) {
	i := s.indexOf(name)
	if i < 0 {
		return s, Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	next := s.Clone()
	removed := next.Categories[i]
	next.Categories = slices.Delete(next.Categories, i, i+1)
	return next, removed, nil
}
