package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChanged announces that a new ledger revision was persisted.
// It carries no ledger data; consumers reload the state they need.
type LedgerChanged struct {
	Revision  int64     `json:"revision"`
	Operation string    `json:"operation"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChanged(revision int64, operation, month string) *LedgerChanged {
	return &LedgerChanged{
		Revision:  revision,
		Operation: operation,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedFromJSON creates a message from JSON bytes
func LedgerChangedFromJSON(data []byte) (*LedgerChanged, error) {
	var msg LedgerChanged
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
