package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const (
	Needs   Group = "needs"
	Wants   Group = "wants"
	Savings Group = "savings"
	Buffer  Group = "buffer"
)

type (
	// Group is one of the four fixed budgeting buckets income is apportioned to.
	Group string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID     string `json:"id"`
		Amount Money  `json:"amount"`
		Date   Date   `json:"date"`
		Note   string `json:"note"`
	}

	Category struct {
		Name         string        `json:"name"`
		Group        Group         `json:"group"`
		Budget       Money         `json:"budget"`
		Spent        Money         `json:"spent"`
		Transactions []Transaction `json:"transactions"`
	}

	// BudgetState is the aggregate root: income, the active month and the
	// ordered category collection. Operations never mutate the receiver; they
	// return an updated copy so a failed operation leaves the original intact.
	BudgetState struct {
		Income     Money      `json:"income"`
		Month      string     `json:"month"`
		Categories []Category `json:"categories"`
	}
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidIncome         = errors.New("invalid income")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrDuplicateCategoryName = errors.New("duplicate category name")
	ErrNoSuchTransaction     = errors.New("no such transaction")
	ErrEmptyGroupAllocation  = errors.New("no categories in group to allocate to")
	ErrInvalidCategoryName   = errors.New("invalid category name")
	ErrInvalidGroup          = errors.New("invalid category group")
	ErrInvalidDate           = errors.New("invalid date")
	ErrCorruptState          = errors.New("corrupt budget state")
)

// Groups lists the category groups in allocation order.
var Groups = []Group{Needs, Wants, Savings, Buffer}

func (g Group) IsValid() bool {
	switch g {
	case Needs, Wants, Savings, Buffer:
		return true
	default:
		return false
	}
}

func (g Group) String() string {
	return string(g)
}

// ParseGroup accepts a group tag in any letter case.
func ParseGroup(s string) (Group, error) {
	g := Group(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", ErrInvalidGroup
	}
	return g, nil
}

// NewTransaction builds a transaction with a fresh identifier.
func NewTransaction(amount Money, date Date, note string) Transaction {
	return Transaction{
		ID:     uuid.NewString(),
		Amount: amount,
		Date:   date,
		Note:   strings.TrimSpace(note),
	}
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// DefaultCategories is the starter set used the first time the ledger runs.
func DefaultCategories() []Category {
	defaults := []struct {
		name  string
		group Group
	}{
		{"Rent/Housing", Needs},
		{"Utilities", Needs},
		{"Transport", Needs},
		{"Food & Groceries", Wants},
		{"Entertainment", Wants},
		{"Emergency Fund", Savings},
		{"Loans/Debt", Buffer},
	}
	cats := make([]Category, 0, len(defaults))
	for _, d := range defaults {
		cats = append(cats, newCategory(d.name, d.group))
	}
	return cats
}

// NewState returns a not-yet-onboarded state for the given "YYYY-MM" month.
func NewState(month string) BudgetState {
	return BudgetState{
		Month:      month,
		Categories: DefaultCategories(),
	}
}

func newCategory(name string, group Group) Category {
	return Category{
		Name:         name,
		Group:        group,
		Transactions: []Transaction{},
	}
}

// Onboarded reports whether an income has been set.
func (s BudgetState) Onboarded() bool {
	return s.Income.Cents > 0
}

// Clone returns a deep copy of the state.
func (s BudgetState) Clone() BudgetState {
	out := s
	out.Categories = make([]Category, len(s.Categories))
	for i, c := range s.Categories {
		out.Categories[i] = c.clone()
	}
	return out
}

func (c Category) clone() Category {
	out := c
	out.Transactions = slices.Clone(c.Transactions)
	if out.Transactions == nil {
		out.Transactions = []Transaction{}
	}
	return out
}

// Category returns the category with the given name.
func (s BudgetState) Category(name string) (Category, bool) {
	i := s.indexOf(name)
	if i < 0 {
		return Category{}, false
	}
	return s.Categories[i].clone(), true
}

// CategoryNames returns category names in display order.
func (s BudgetState) CategoryNames() []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.Name
	}
	return names
}

func (s BudgetState) indexOf(name string) int {
	return slices.IndexFunc(s.Categories, func(c Category) bool { return c.Name == name })
}

// TotalSpent sums spend across every category.
func (s BudgetState) TotalSpent() Money {
	var total int64
	for _, c := range s.Categories {
		total += c.Spent.Cents
	}
	return Money{Cents: total}
}

// checkTotals fails with ErrInvalidAmount when summed spend or budgets leave
// the range the read models can compute with.
func (s BudgetState) checkTotals() error {
	var spent, budget int64
	var err error
	for _, c := range s.Categories {
		if spent, err = addCents(spent, c.Spent.Cents); err != nil {
			return fmt.Errorf("%w: total spend overflows", ErrInvalidAmount)
		}
		if budget, err = addCents(budget, c.Budget.Cents); err != nil {
			return fmt.Errorf("%w: total budget overflows", ErrInvalidAmount)
		}
	}
	if spent > maxTotalCents || budget > maxTotalCents {
		return fmt.Errorf("%w: totals exceed %d cents", ErrInvalidAmount, int64(maxTotalCents))
	}
	return nil
}

// CheckInvariants verifies every category's spent equals the sum of its
// transaction amounts, category names are unique, groups are valid, budgets
// are within [0, MaxAmount] and no total overflows.
func (s BudgetState) CheckInvariants() error {
	seen := make(map[string]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: category %q appears twice", ErrCorruptState, c.Name)
		}
		seen[c.Name] = struct{}{}
		if !c.Group.IsValid() {
			return fmt.Errorf("%w: category %q has group %q", ErrCorruptState, c.Name, c.Group)
		}
		if !c.Budget.InRange() {
			return fmt.Errorf("%w: category %q has budget %d", ErrCorruptState, c.Name, c.Budget.Cents)
		}
		var sum int64
		for _, t := range c.Transactions {
			next, err := addCents(sum, t.Amount.Cents)
			if err != nil {
				return fmt.Errorf("%w: category %q spend overflows", ErrCorruptState, c.Name)
			}
			sum = next
		}
		if sum != c.Spent.Cents {
			return fmt.Errorf("%w: category %q spent %d but transactions sum to %d",
				ErrCorruptState, c.Name, c.Spent.Cents, sum)
		}
	}
	if err := s.checkTotals(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return nil
}
