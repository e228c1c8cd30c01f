package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StateKey is the fixed key the ledger document is stored under.
const StateKey = "kesho"

// EncodeState serialises the state into the persisted document shape.
func EncodeState(s BudgetState) ([]byte, error) {
	doc := s.Clone()
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode budget state: %w", err)
	}
	return data, nil
}

// DecodeState parses a persisted document. Missing transaction ids are
// assigned, missing slices become empty. Unknown groups, non-positive
// transaction amounts and spent totals that disagree with their transactions
// are rejected with ErrCorruptState.
func DecodeState(data []byte) (BudgetState, error) {
	var s BudgetState
	if err := json.Unmarshal(data, &s); err != nil {
		return BudgetState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if s.Income.Cents < 0 {
		return BudgetState{}, fmt.Errorf("%w: negative income", ErrCorruptState)
	}
	if s.Categories == nil {
		s.Categories = []Category{}
	}
	for ci := range s.Categories {
		c := &s.Categories[ci]
		if c.Transactions == nil {
			c.Transactions = []Transaction{}
		}
		for ti := range c.Transactions {
			t := &c.Transactions[ti]
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			if err := t.Validate(); err != nil {
				return BudgetState{}, fmt.Errorf("%w: transaction %s in %q: %v", ErrCorruptState, t.ID, c.Name, err)
			}
		}
	}
	if err := s.CheckInvariants(); err != nil {
		return BudgetState{}, err
	}
	return s, nil
}
