package core

import (
	"fmt"
	"slices"
	"strings"
)

// TransactionUpdate is the full replacement value for an edited transaction.
// An empty Category keeps the transaction where it is.
type TransactionUpdate struct {
	Category string
	Amount   Money
	Date     Date
	Note     string
}

// TransactionRef locates a transaction inside the ledger.
type TransactionRef struct {
	Category    string
	Transaction Transaction
}

// AddTransaction appends tx to the named category and increments its spend.
// A transaction without an ID is given one.
func (s BudgetState) AddTransaction(category string, tx Transaction) (BudgetState, Transaction, error) {
	if err := tx.Amount.Validate(); err != nil {
		return s, Transaction{}, err
	}
	if tx.Date.IsZero() {
		return s, Transaction{}, ErrInvalidDate
	}
	i := s.indexOf(category)
	if i < 0 {
		return s, Transaction{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}
	if tx.ID == "" {
		tx = NewTransaction(tx.Amount, tx.Date, tx.Note)
	}
	if _, found := s.FindTransaction(tx.ID); found {
		return s, Transaction{}, fmt.Errorf("%w: transaction %s already recorded", ErrCorruptState, tx.ID)
	}
	tx.Note = strings.TrimSpace(tx.Note)

	next := s.Clone()
	c := &next.Categories[i]
	spent, err := addCents(c.Spent.Cents, tx.Amount.Cents)
	if err != nil {
		return s, Transaction{}, fmt.Errorf("%w: spend in %q overflows", err, category)
	}
	c.Transactions = append(c.Transactions, tx)
	c.Spent.Cents = spent
	if err := next.checkTotals(); err != nil {
		return s, Transaction{}, err
	}
	return next, tx, nil
}

// FindTransaction looks a transaction up by ID.
func (s BudgetState) FindTransaction(id string) (TransactionRef, bool) {
	ci, ti := s.locate(id)
	if ci < 0 {
		return TransactionRef{}, false
	}
	return TransactionRef{
		Category:    s.Categories[ci].Name,
		Transaction: s.Categories[ci].Transactions[ti],
	}, true
}

func (s BudgetState) locate(id string) (int, int) {
	if id == "" {
		return -1, -1
	}
	for ci, c := range s.Categories {
		for ti, t := range c.Transactions {
			if t.ID == id {
				return ci, ti
			}
		}
	}
	return -1, -1
}

// EditTransaction replaces the transaction identified by id. Moving to a
// different category is staged on a copy: the old record is removed and its
// amount taken off the old category, then the new record is appended to the
// target. Either both halves land or the receiver is returned untouched.
func (s BudgetState) EditTransaction(id string, upd TransactionUpdate) (BudgetState, Transaction, error) {
	if err := upd.Amount.Validate(); err != nil {
		return s, Transaction{}, err
	}
	if upd.Date.IsZero() {
		return s, Transaction{}, ErrInvalidDate
	}
	ci, ti := s.locate(id)
	if ci < 0 {
		return s, Transaction{}, fmt.Errorf("%w: %s", ErrNoSuchTransaction, id)
	}
	target := ci
	if upd.Category != "" && upd.Category != s.Categories[ci].Name {
		target = s.indexOf(upd.Category)
		if target < 0 {
			return s, Transaction{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, upd.Category)
		}
	}

	next := s.Clone()
	old := next.Categories[ci].Transactions[ti]
	updated := Transaction{
		ID:     old.ID,
		Amount: upd.Amount,
		Date:   upd.Date,
		Note:   strings.TrimSpace(upd.Note),
	}

	if target == ci {
		c := &next.Categories[ci]
		spent, err := addCents(c.Spent.Cents, updated.Amount.Cents-old.Amount.Cents)
		if err != nil {
			return s, Transaction{}, fmt.Errorf("%w: spend in %q overflows", err, c.Name)
		}
		c.Transactions[ti] = updated
		c.Spent.Cents = spent
	} else {
		from := &next.Categories[ci]
		from.Transactions = slices.Delete(from.Transactions, ti, ti+1)
		from.Spent.Cents -= old.Amount.Cents

		to := &next.Categories[target]
		spent, err := addCents(to.Spent.Cents, updated.Amount.Cents)
		if err != nil {
			return s, Transaction{}, fmt.Errorf("%w: spend in %q overflows", err, to.Name)
		}
		to.Transactions = append(to.Transactions, updated)
		to.Spent.Cents = spent
	}
	if err := next.checkTotals(); err != nil {
		return s, Transaction{}, err
	}
	return next, updated, nil
}

// DeleteTransaction removes the transaction and takes its amount off the
// category's spend.
func (s BudgetState) DeleteTransaction(id string) (BudgetState, TransactionRef, error) {
	ci, ti := s.locate(id)
	if ci < 0 {
		return s, TransactionRef{}, fmt.Errorf("%w: %s", ErrNoSuchTransaction, id)
	}
	next := s.Clone()
	c := &next.Categories[ci]
	removed := c.Transactions[ti]
	c.Transactions = slices.Delete(c.Transactions, ti, ti+1)
	c.Spent.Cents -= removed.Amount.Cents
	return next, TransactionRef{Category: c.Name, Transaction: removed}, nil
}
