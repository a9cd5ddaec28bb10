package ledger

import (
	"sort"
	"strings"

	"sheetpos/internal/coerce"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"

	"github.com/shopspring/decimal"
)

// DeriveStockLevels folds movements (newest first) into on-hand quantities per
// product. Products listed in the catalogue without any movement are reported
// with zero stock. Stock is valued at the catalogue selling price, or at the
// most recent movement price when the catalogue has none.
func DeriveStockLevels(movements []model.MovementRecord, products schema.Table) []model.StockLevel {
	levels := make(map[string]*model.StockLevel)
	order := make([]string, 0)

	get := func(name string) *model.StockLevel {
		key := strings.ToLower(name)
		lvl, ok := levels[key]
		if !ok {
			lvl = &model.StockLevel{Product: name, UnitPrice: decimal.Zero}
			levels[key] = lvl
			order = append(order, key)
		}
		return lvl
	}

	for _, r := range products.Rows {
		lvl := get(coerce.Text(products.Cell(r, schema.Name), coerce.UnknownProduct))
		lvl.Category = coerce.Text(products.Cell(r, schema.Category), coerce.UnknownCategory)
		lvl.UnitPrice = coerce.Currency(products.Cell(r, schema.SellingPrice))
		lvl.ReorderLevel = coerce.Quantity(products.Cell(r, schema.ReorderLevel))
	}

	for _, m := range movements {
		lvl := get(m.Product)
		if lvl.Category == "" {
			lvl.Category = m.Category
		}
		if lvl.UnitPrice.IsZero() {
			lvl.UnitPrice = m.UnitPrice
		}
		if m.Direction == model.DirectionIn {
			lvl.QuantityIn += m.Quantity
		} else {
			lvl.QuantityOut += m.Quantity
		}
	}

	out := make([]model.StockLevel, 0, len(order))
	for _, key := range order {
		lvl := levels[key]
		lvl.OnHand = lvl.QuantityIn - lvl.QuantityOut
		lvl.StockValue = lvl.UnitPrice.Mul(decimal.NewFromInt(int64(lvl.OnHand)))
		lvl.Low = lvl.OnHand <= lvl.ReorderLevel
		out = append(out, *lvl)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Product) < strings.ToLower(out[j].Product)
	})
	return out
}

// LowStock filters levels down to products at or below their reorder level.
func LowStock(levels []model.StockLevel) []model.StockLevel {
	out := make([]model.StockLevel, 0)
	for _, l := range levels {
		if l.Low {
			out = append(out, l)
		}
	}
	return out
}
