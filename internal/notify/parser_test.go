package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kesho/internal/clock"
	"kesho/internal/core"
)

var today = time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC)

func newTestParser() *Parser {
	return NewParser(clock.NewFixed(today))
}

func TestParseNaivasMessage(t *testing.T) {
	p := newTestParser()
	text := "QAB12CD3EF Confirmed. Ksh2,500.00 sent to NAIVAS SUPERMARKET on 05/01/24 at 3:45 PM. New M-PESA balance is Ksh10,200.00."

	c, ok := p.Parse(text)
	require.True(t, ok)
	assert.Equal(t, core.Shillings(2500), c.Amount)
	assert.Equal(t, "NAIVAS SUPERMARKET", c.Payee)
	assert.Equal(t, "2024-01-05", c.Date.String())

	again, ok := p.Parse(text)
	require.True(t, ok)
	assert.Equal(t, c, again)
}

func TestParseGating(t *testing.T) {
	p := newTestParser()

	_, ok := p.Parse("Ksh2,500.00 sent to NAIVAS SUPERMARKET on 05/01/24")
	assert.False(t, ok, "no confirmation marker")

	_, ok = p.Parse("QAB12CD3EF Confirmed. You have sent money to NAIVAS on 05/01/24")
	assert.False(t, ok, "no amount")

	_, ok = p.Parse("Confirmed. Ksh0.00 sent to NAIVAS")
	assert.False(t, ok, "zero amount")

	_, ok = p.Parse("")
	assert.False(t, ok)
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		amount int64
		payee  string
		date   string
	}{
		{
			name:   "lowercase marker and ksh",
			text:   "confirmed. ksh 150 paid to Uber Kenya on 3/2/2024",
			amount: 15000,
			payee:  "Uber Kenya",
			date:   "2024-02-03",
		},
		{
			name:   "missing date uses today",
			text:   "CONFIRMED Ksh.1,000 sent to KPLC PREPAID for account 12345",
			amount: 100000,
			payee:  "KPLC PREPAID",
			date:   "2024-03-14",
		},
		{
			name:   "missing payee",
			text:   "Confirmed. Ksh75.50 withdrawn on 9/3/24",
			amount: 7550,
			payee:  UnknownPayee,
			date:   "2024-03-09",
		},
		{
			name:   "payee stops at punctuation",
			text:   "Confirmed. Ksh300 sent to JOHN DOE. New balance Ksh5",
			amount: 30000,
			payee:  "JOHN DOE",
			date:   "2024-03-14",
		},
		{
			name:   "capitalised On is not part of the payee",
			text:   "Confirmed. Ksh300 sent to BOLT On 1/3/24",
			amount: 30000,
			payee:  "BOLT",
			date:   "2024-03-01",
		},
		{
			name:   "impossible date falls back to today",
			text:   "Confirmed. Ksh300 sent to BODA on 31/02/24",
			amount: 30000,
			payee:  "BODA",
			date:   "2024-03-14",
		},
	}
	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := p.Parse(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.amount, c.Amount.Cents)
			assert.Equal(t, tt.payee, c.Payee)
			assert.Equal(t, tt.date, c.Date.String())
		})
	}
}

func TestNoteFor(t *testing.T) {
	assert.Equal(t, "M-Pesa to NAIVAS", NoteFor("NAIVAS"))
}
