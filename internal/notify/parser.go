// Package notify turns M-Pesa confirmation messages into transaction
// candidates and guesses which budget category they belong to.
package notify

import (
	"regexp"
	"strconv"
	"strings"

	"kesho/internal/clock"
	"kesho/internal/core"
)

// UnknownPayee is reported when no recipient can be found in the message.
const UnknownPayee = "Unknown"

var (
	confirmedPattern = regexp.MustCompile(`(?i)confirmed`)
	amountPattern    = regexp.MustCompile(`(?i)ksh\.?\s?(\d[\d,]*(?:\.\d+)?)`)
	payeePattern     = regexp.MustCompile(`\b(?i:to)\s+([A-Z][\w&'-]*(?:[ \t]+[A-Z0-9][\w&'-]*)*)`)
	datePattern      = regexp.MustCompile(`(?i)\bon\s+(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)
)

// Candidate is what a notification says happened. It is not yet a ledger
// entry; committing it is a separate step.
type Candidate struct {
	Amount core.Money `json:"amount"`
	Payee  string     `json:"payee"`
	Date   core.Date  `json:"date"`
}

// Parser extracts candidates. It holds no state besides the clock used to
// date messages that carry no date, so it is safe for concurrent use.
type Parser struct {
	clock clock.Clock
}

func NewParser(c clock.Clock) *Parser {
	if c == nil {
		c = clock.System{}
	}
	return &Parser{clock: c}
}

// Parse returns the candidate in text, or false when the message is not a
// confirmation or carries no positive amount.
func (p *Parser) Parse(text string) (Candidate, bool) {
	if !confirmedPattern.MatchString(text) {
		return Candidate{}, false
	}
	amount, ok := parseAmount(text)
	if !ok {
		return Candidate{}, false
	}
	date, ok := parseDate(text)
	if !ok {
		date = core.DateOf(p.clock.Now())
	}
	return Candidate{
		Amount: amount,
		Payee:  parsePayee(text),
		Date:   date,
	}, true
}

func parseAmount(text string) (core.Money, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return core.Money{}, false
	}
	cents, err := core.ParseAmountToCents(m[1])
	if err != nil {
		return core.Money{}, false
	}
	return core.Money{Cents: cents}, true
}

func parsePayee(text string) string {
	m := payeePattern.FindStringSubmatch(text)
	if m == nil {
		return UnknownPayee
	}
	words := strings.Fields(m[1])
	for i, w := range words {
		if strings.EqualFold(w, "on") || strings.EqualFold(w, "at") {
			words = words[:i]
			break
		}
	}
	if len(words) == 0 {
		return UnknownPayee
	}
	return strings.Join(words, " ")
}

// parseDate reads a D/M/Y date after "on". Two-digit years are 20YY. A date
// that does not exist on the calendar is treated as missing.
func parseDate(text string) (core.Date, bool) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return core.Date{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	yearToken := m[3]
	if len(yearToken) == 2 {
		yearToken = "20" + yearToken
	}
	year, _ := strconv.Atoi(yearToken)
	if !core.ValidCalendarDate(year, month, day) {
		return core.Date{}, false
	}
	return core.NewDate(year, month, day), true
}

// NoteFor is the ledger note recorded for a committed notification.
func NoteFor(payee string) string {
	return "M-Pesa to " + payee
}
