// Package supplier aggregates purchase rows into per-supplier performance.
package supplier

import (
	"sort"
	"time"

	"sheetpos/internal/coerce"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"

	"github.com/shopspring/decimal"
)

// Thresholds for the preferred status.
const (
	PreferredMinPurchases = 10
	PreferredMinOnTime    = 90.0
	PreferredMinQuality   = 4.0
)

// Aggregate groups purchases by supplier and computes count, total, mean order
// value and latest order date. Results are ordered by total spent, highest first.
func Aggregate(purchases schema.Table, metrics MetricsProvider) []model.SupplierPerformance {
	type acc struct {
		count int
		spent decimal.Decimal
		last  *time.Time
	}
	groups := make(map[string]*acc)
	names := make([]string, 0)

	for _, r := range purchases.Rows {
		name := coerce.Text(purchases.Cell(r, schema.Supplier), coerce.UnknownSupplier)
		a, ok := groups[name]
		if !ok {
			a = &acc{spent: decimal.Zero}
			groups[name] = a
			names = append(names, name)
		}
		a.count++
		a.spent = a.spent.Add(coerce.Currency(purchases.Cell(r, schema.Cost)))
		if d, ok := coerce.Date(purchases.Cell(r, schema.Date)); ok {
			if a.last == nil || d.After(*a.last) {
				d := d
				a.last = &d
			}
		}
	}

	out := make([]model.SupplierPerformance, 0, len(names))
	for _, name := range names {
		a := groups[name]
		p := model.SupplierPerformance{
			Name:              name,
			TotalPurchases:    a.count,
			TotalSpent:        a.spent,
			AverageOrderValue: decimal.Zero,
			LastOrderDate:     a.last,
		}
		if a.count > 0 {
			p.AverageOrderValue = a.spent.Div(decimal.NewFromInt(int64(a.count)))
		}
		m := metrics.Metrics(name)
		p.OnTimeDelivery = m.OnTimeDelivery
		p.QualityRating = m.QualityRating
		p.Status = Classify(p.TotalPurchases, m)
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalSpent.Cmp(out[j].TotalSpent); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Classify derives a supplier's status from its purchase count and metrics.
func Classify(purchases int, m Metrics) model.SupplierStatus {
	switch {
	case purchases == 0:
		return model.SupplierInactive
	case purchases > PreferredMinPurchases &&
		m.OnTimeDelivery > PreferredMinOnTime &&
		m.QualityRating > PreferredMinQuality:
		return model.SupplierPreferred
	default:
		return model.SupplierActive
	}
}
