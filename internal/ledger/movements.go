package ledger

import (
	"time"

	"sheetpos/internal/coerce"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"

	"github.com/shopspring/decimal"
)

const (
	ReasonPurchase = "Purchase"
	ReasonSale     = "Sale"

	// SalesLocation is where outgoing stock is recorded; the Sales sheet has no location column.
	SalesLocation = "Store"
)

// DeriveMovements turns purchases into incoming and sales into outgoing stock
// movements, newest first.
func DeriveMovements(purchases, sales schema.Table) []model.MovementRecord {
	out := make([]model.MovementRecord, 0, purchases.Len()+sales.Len())

	for _, r := range purchases.Rows {
		qty := coerce.Quantity(purchases.Cell(r, schema.Quantity))
		unit := coerce.Currency(purchases.Cell(r, schema.UnitCost))
		if unit.IsZero() && qty != 0 {
			unit = coerce.Currency(purchases.Cell(r, schema.Cost)).
				Div(decimal.NewFromInt(int64(qty))).Round(2)
		}
		out = append(out, newMovement(purchases, r, model.MovementRecord{
			Direction: model.DirectionIn,
			Quantity:  qty,
			UnitPrice: unit,
			Reason:    ReasonPurchase,
			Location:  coerce.Text(purchases.Cell(r, schema.Location), coerce.UnknownLocation),
		}))
	}

	for _, r := range sales.Rows {
		out = append(out, newMovement(sales, r, model.MovementRecord{
			Direction: model.DirectionOut,
			Quantity:  coerce.Quantity(sales.Cell(r, schema.Quantity)),
			UnitPrice: coerce.Currency(sales.Cell(r, schema.UnitPrice)),
			Reason:    ReasonSale,
			Location:  SalesLocation,
		}))
	}

	newestFirst(out, func(m model.MovementRecord) (time.Time, bool) { return m.At, m.HasDate })
	return out
}

func newMovement(t schema.Table, r schema.Row, m model.MovementRecord) model.MovementRecord {
	m.ID = rowID(t, r)
	m.Date = coerce.Text(t.Cell(r, schema.Date), coerce.UnknownDate)
	m.At, m.HasDate = coerce.Date(t.Cell(r, schema.Date))
	m.Product = coerce.Text(t.Cell(r, schema.Product), coerce.UnknownProduct)
	m.Category = coerce.Text(t.Cell(r, schema.Category), coerce.UnknownCategory)
	m.Reference = reference(t, r)
	m.TotalValue = m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
	return m
}
