package supplier

import (
	"testing"
	"time"

	"sheetpos/internal/model"
	"sheetpos/internal/schema"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchases(t *testing.T, rows ...map[schema.Field]any) schema.Table {
	t.Helper()
	s := schema.Default().MustGet(schema.Purchases)
	header := make([]any, s.Width())
	values := [][]any{header}
	for _, r := range rows {
		values = append(values, s.Encode(r))
	}
	tbl, err := schema.NewTable(s, values)
	require.NoError(t, err)
	return tbl
}

func order(supplier string, cost any, date string) map[schema.Field]any {
	return map[schema.Field]any{schema.Supplier: supplier, schema.Cost: cost, schema.Date: date}
}

func TestAggregateGroupsBySupplier(t *testing.T) {
	tbl := purchases(t,
		order("Acme", "100", "2024-01-10"),
		order("Acme", "TSh200", "2024-02-01"),
		order("", "40", "2024-01-01"),
	)

	got := Aggregate(tbl, StaticMetrics{})
	require.Len(t, got, 2)

	acme := got[0]
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, 2, acme.TotalPurchases)
	assert.True(t, acme.TotalSpent.Equal(decimal.NewFromInt(300)))
	assert.True(t, acme.AverageOrderValue.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, acme.LastOrderDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *acme.LastOrderDate)
	assert.Equal(t, model.SupplierActive, acme.Status)

	assert.Equal(t, "Unknown Supplier", got[1].Name)
}

func TestAverageOrderValueIsNotRounded(t *testing.T) {
	tbl := purchases(t,
		order("Acme", "10.005", "2024-01-01"),
		order("Acme", "10.004", "2024-01-02"),
	)

	acme := Aggregate(tbl, StaticMetrics{})[0]
	assert.Equal(t, "10.0045", acme.AverageOrderValue.String())
	assert.True(t, acme.AverageOrderValue.Mul(decimal.NewFromInt(2)).Equal(acme.TotalSpent))
}

func TestAggregatePreferredNeedsAllThresholds(t *testing.T) {
	rows := make([]map[schema.Field]any, 0, 11)
	for i := 0; i < 11; i++ {
		rows = append(rows, order("Bulk Co", "10", "2024-01-01"))
	}
	rows = append(rows, order("Small Co", "5", "not a date"))
	tbl := purchases(t, rows...)

	metrics := StaticMetrics{
		BySupplier: map[string]Metrics{"Bulk Co": {OnTimeDelivery: 95, QualityRating: 4.5}},
		Default:    Metrics{OnTimeDelivery: 99, QualityRating: 5},
	}
	got := Aggregate(tbl, metrics)
	require.Len(t, got, 2)

	assert.Equal(t, model.SupplierPreferred, got[0].Status)
	assert.Equal(t, 95.0, got[0].OnTimeDelivery)
	assert.Equal(t, model.SupplierActive, got[1].Status, "count <= 10 is never preferred")
	assert.Nil(t, got[1].LastOrderDate)
}

func TestClassify(t *testing.T) {
	good := Metrics{OnTimeDelivery: 91, QualityRating: 4.1}
	assert.Equal(t, model.SupplierInactive, Classify(0, good))
	assert.Equal(t, model.SupplierActive, Classify(10, good))
	assert.Equal(t, model.SupplierPreferred, Classify(11, good))
	assert.Equal(t, model.SupplierActive, Classify(11, Metrics{OnTimeDelivery: 90, QualityRating: 5}))
	assert.Equal(t, model.SupplierActive, Classify(11, Metrics{OnTimeDelivery: 99, QualityRating: 4.0}))
}

func TestRandomMetricsRange(t *testing.T) {
	p := NewRandomMetrics(42)
	for i := 0; i < 100; i++ {
		m := p.Metrics("any")
		assert.GreaterOrEqual(t, m.OnTimeDelivery, 80.0)
		assert.LessOrEqual(t, m.OnTimeDelivery, 100.0)
		assert.GreaterOrEqual(t, m.QualityRating, 3.0)
		assert.LessOrEqual(t, m.QualityRating, 5.0)
	}
}
