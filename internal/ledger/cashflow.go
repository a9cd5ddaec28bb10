// Package ledger derives business views from raw sheet tables: the cashflow
// ledger, the stock movement ledger, stock levels and the audit trail.
//
// Derivations never fail. Missing or malformed cells are coerced to zero or to
// a sentinel string, and every call builds its result from scratch.
package ledger

import (
	"fmt"
	"time"

	"sheetpos/internal/coerce"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"

	"github.com/shopspring/decimal"
)

const (
	CategorySales    = "Sales"
	CategoryPurchase = "Inventory Purchase"
)

// Options tunes the cashflow derivation.
type Options struct {
	// LegacyFold accumulates the running balance top-down over the
	// newest-first list instead of chronologically. Only useful to compare
	// against views produced by older tooling.
	LegacyFold bool
}

// Cashflow is the derived ledger plus its totals.
type Cashflow struct {
	Entries      []model.LedgerEntry `json:"entries"`
	TotalIncome  decimal.Decimal     `json:"total_income"`
	TotalExpense decimal.Decimal     `json:"total_expense"`
	Net          decimal.Decimal     `json:"net"`
}

// DeriveCashflow merges sales (income), purchases and expenses (expense) into
// one ledger sorted newest first, with running balances.
func DeriveCashflow(sales, purchases, expenses schema.Table, opts Options) Cashflow {
	entries := make([]model.LedgerEntry, 0, sales.Len()+purchases.Len()+expenses.Len())

	for _, r := range sales.Rows {
		product := coerce.Text(sales.Cell(r, schema.Product), coerce.UnknownProduct)
		entries = append(entries, newEntry(sales, r, model.LedgerEntry{
			Description: "Sale: " + product,
			Category:    coerce.Text(sales.Cell(r, schema.Category), CategorySales),
			Type:        model.EntryIncome,
			Amount:      saleAmount(sales, r),
		}))
	}
	for _, r := range purchases.Rows {
		product := coerce.Text(purchases.Cell(r, schema.Product), coerce.UnknownProduct)
		entries = append(entries, newEntry(purchases, r, model.LedgerEntry{
			Description: "Purchase: " + product,
			Category:    CategoryPurchase,
			Type:        model.EntryExpense,
			Amount:      coerce.Currency(purchases.Cell(r, schema.Cost)),
		}))
	}
	for _, r := range expenses.Rows {
		entries = append(entries, newEntry(expenses, r, model.LedgerEntry{
			Description: coerce.Text(expenses.Cell(r, schema.Description), "Expense"),
			Category:    coerce.Text(expenses.Cell(r, schema.Category), coerce.UnknownCategory),
			Type:        model.EntryExpense,
			Amount:      coerce.Currency(expenses.Cell(r, schema.Amount)),
		}))
	}

	newestFirst(entries, func(e model.LedgerEntry) (time.Time, bool) { return e.At, e.HasDate })
	if opts.LegacyFold {
		foldDisplayOrder(entries)
	} else {
		foldChronological(entries)
	}

	cf := Cashflow{Entries: entries, TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, e := range entries {
		if e.Type == model.EntryIncome {
			cf.TotalIncome = cf.TotalIncome.Add(e.Amount)
		} else {
			cf.TotalExpense = cf.TotalExpense.Add(e.Amount)
		}
	}
	cf.Net = cf.TotalIncome.Sub(cf.TotalExpense)
	return cf
}

// saleAmount prefers the revenue column and falls back to
// unit price × quantity − discount when revenue is blank.
func saleAmount(t schema.Table, r schema.Row) decimal.Decimal {
	revenue := coerce.Currency(t.Cell(r, schema.Revenue))
	if !revenue.IsZero() {
		return revenue
	}
	qty := coerce.Quantity(t.Cell(r, schema.Quantity))
	if qty == 0 {
		return decimal.Zero
	}
	unit := coerce.Currency(t.Cell(r, schema.UnitPrice))
	discount := coerce.Currency(t.Cell(r, schema.Discount))
	return unit.Mul(decimal.NewFromInt(int64(qty))).Sub(discount)
}

func newEntry(t schema.Table, r schema.Row, e model.LedgerEntry) model.LedgerEntry {
	e.ID = rowID(t, r)
	e.Date = coerce.Text(t.Cell(r, schema.Date), coerce.UnknownDate)
	e.At, e.HasDate = coerce.Date(t.Cell(r, schema.Date))
	e.Reference = reference(t, r)
	return e
}

// foldChronological walks from the oldest entry (last) to the newest (first).
func foldChronological(entries []model.LedgerEntry) {
	balance := decimal.Zero
	for i := len(entries) - 1; i >= 0; i-- {
		balance = balance.Add(entries[i].Signed())
		entries[i].RunningBalance = balance
	}
}

func foldDisplayOrder(entries []model.LedgerEntry) {
	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].Signed())
		entries[i].RunningBalance = balance
	}
}

func rowID(t schema.Table, r schema.Row) string {
	return fmt.Sprintf("%s-%d", t.Schema.Name, r.Index)
}

// reference uses the reference column, then the id column, then the synthetic row id.
func reference(t schema.Table, r schema.Row) string {
	if ref := coerce.Text(t.Cell(r, schema.Reference), ""); ref != "" {
		return ref
	}
	return coerce.Text(t.Cell(r, schema.ID), rowID(t, r))
}
