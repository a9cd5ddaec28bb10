package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"sheetpos/internal/infra"
	"sheetpos/internal/ledger"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"
	"sheetpos/internal/supplier"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedLedger(t *testing.T) ReportService {
	t.Helper()
	srv, repo := newSheets(t)
	seed(srv, schema.Sales,
		row(schema.Sales, map[schema.Field]any{schema.Date: "2024-01-01", schema.Product: "Rice", schema.Quantity: "2", schema.UnitPrice: "50", schema.Revenue: "100"}),
		row(schema.Sales, map[schema.Field]any{schema.Date: "2024-03-01", schema.Product: "Tea", schema.Quantity: "1", schema.UnitPrice: "200", schema.Revenue: "TSh200"}),
	)
	seed(srv, schema.Purchases,
		row(schema.Purchases, map[schema.Field]any{schema.Date: "2024-02-01", schema.Product: "Rice", schema.Quantity: "10", schema.Cost: "50", schema.Supplier: "Acme"}),
	)
	return NewReportService(repo, supplier.StaticMetrics{}, DefaultCaps())
}

func TestCashflowReport(t *testing.T) {
	svc := seedLedger(t)

	resp, err := svc.Cashflow(context.Background(), ledger.Options{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 3)
	assert.True(t, resp.TotalIncome.Equal(decimal.NewFromInt(300)))
	assert.True(t, resp.TotalExpense.Equal(decimal.NewFromInt(50)))
	assert.True(t, resp.Net.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "2024-03-01", resp.Entries[0].Date)
	assert.True(t, resp.Entries[0].RunningBalance.Equal(resp.Net))
	assert.Equal(t, 50, resp.RowCap)
}

func TestCashflowUpstreamFailureIsSingleError(t *testing.T) {
	srv, repo := newSheets(t)
	srv.Fail(schema.Expenses, http.StatusInternalServerError)
	svc := NewReportService(repo, supplier.StaticMetrics{}, DefaultCaps())

	resp, err := svc.Cashflow(context.Background(), ledger.Options{})
	assert.Nil(t, resp)
	var upErr *infra.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, schema.Expenses, upErr.Sheet)
}

func TestCashflowSchemaFailure(t *testing.T) {
	srv, repo := newSheets(t)
	srv.Seed(schema.Sales, []any{"only", "three", "columns"})
	svc := NewReportService(repo, supplier.StaticMetrics{}, DefaultCaps())

	_, err := svc.Cashflow(context.Background(), ledger.Options{})
	var schemaErr *schema.Error
	require.ErrorAs(t, err, &schemaErr)
}

func TestExportCashflowWorkbook(t *testing.T) {
	svc := seedLedger(t)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCashflow(context.Background(), ledger.Options{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(cashflowSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, cashflowHeadings, rows[0])
	assert.Equal(t, "2024-03-01", rows[1][0])
	assert.Equal(t, "Sale: Tea", rows[1][2])

	net, err := f.GetCellValue(cashflowSheet, "F8")
	require.NoError(t, err)
	assert.Equal(t, "250", net)

	styleID, err := f.GetCellStyle(cashflowSheet, "G1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	width, err := f.GetColWidth(cashflowSheet, "C")
	require.NoError(t, err)
	assert.Equal(t, 36.0, width)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportCashflowReportsWriteFailure(t *testing.T) {
	err := writeCashflowWorkbook(ledger.Cashflow{}, brokenWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: write workbook")
}

func TestMovementsAndStock(t *testing.T) {
	srv, repo := newSheets(t)
	seed(srv, schema.Purchases,
		row(schema.Purchases, map[schema.Field]any{schema.Date: "2024-01-01", schema.Product: "Sugar", schema.Quantity: "10", schema.Cost: "5000"}),
	)
	seed(srv, schema.Sales,
		row(schema.Sales, map[schema.Field]any{schema.Date: "2024-01-02", schema.Product: "Sugar", schema.Quantity: "7", schema.UnitPrice: "700"}),
	)
	seed(srv, schema.Products,
		row(schema.Products, map[schema.Field]any{schema.Name: "Sugar", schema.SellingPrice: "700", schema.ReorderLevel: "5"}),
	)
	svc := NewReportService(repo, supplier.StaticMetrics{}, DefaultCaps())
	ctx := context.Background()

	moves, err := svc.Movements(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, moves.Count)
	assert.Equal(t, model.DirectionOut, moves.Movements[0].Direction)

	stock, err := svc.StockLevels(ctx, true)
	require.NoError(t, err)
	require.Len(t, stock.Items, 1)
	assert.Equal(t, 3, stock.Items[0].OnHand)
	assert.Equal(t, 1, stock.LowCount)
	assert.True(t, stock.TotalValue.Equal(decimal.NewFromInt(2100)))
}

func TestSuppliersReport(t *testing.T) {
	srv, repo := newSheets(t)
	seed(srv, schema.Purchases,
		row(schema.Purchases, map[schema.Field]any{schema.Supplier: "Acme", schema.Cost: "100", schema.Date: "2024-01-01"}),
		row(schema.Purchases, map[schema.Field]any{schema.Supplier: "Acme", schema.Cost: "200", schema.Date: "2024-01-05"}),
		row(schema.Purchases, map[schema.Field]any{schema.Supplier: "Zed", schema.Cost: "10"}),
	)
	svc := NewReportService(repo, supplier.StaticMetrics{Default: supplier.Metrics{OnTimeDelivery: 95, QualityRating: 4.5}}, DefaultCaps())

	resp, err := svc.Suppliers(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Suppliers, 2)
	acme := resp.Suppliers[0]
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, 2, acme.TotalPurchases)
	assert.True(t, acme.TotalSpent.Equal(decimal.NewFromInt(300)))
	assert.True(t, acme.AverageOrderValue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, resp.Summary.Active)
	assert.True(t, resp.Summary.TotalSpent.Equal(decimal.NewFromInt(310)))
}

func TestAuditReport(t *testing.T) {
	srv, repo := newSheets(t)
	seed(srv, schema.Sales,
		row(schema.Sales, map[schema.Field]any{schema.Date: "2024-01-02", schema.Product: "Tea", schema.Quantity: "1", schema.Reference: "R-1"}),
	)
	svc := NewReportService(repo, supplier.StaticMetrics{}, DefaultCaps())

	resp, err := svc.Audit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, model.ActionSale, resp.Records[0].Action)
	assert.Equal(t, "-1", resp.Records[0].NewValue)
}

func TestSheetPassthrough(t *testing.T) {
	svc := seedLedger(t)

	resp, err := svc.Sheet(context.Background(), "sales")
	require.NoError(t, err)
	assert.Len(t, resp.Values, 3)

	_, err = svc.Sheet(context.Background(), "Secrets")
	assert.Error(t, err)
}
