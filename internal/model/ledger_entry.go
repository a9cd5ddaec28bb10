package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType separates money coming in from money going out.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// LedgerEntry is one line of the cashflow ledger, derived from a Sales,
// Purchases or Expenses row. RunningBalance is the signed cumulative sum of
// every entry up to and including this one in chronological order.
type LedgerEntry struct {
	ID             string          `json:"id"` // "<sheet>-<row>"
	Date           string          `json:"date"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Type           EntryType       `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	Reference      string          `json:"reference"`

	At      time.Time `json:"-"`
	HasDate bool      `json:"-"`
}

// Signed returns the amount with expenses negated.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Type == EntryExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}
