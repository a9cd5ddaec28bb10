package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"sheetpos/internal/dto"
	"sheetpos/internal/infra"
	"sheetpos/internal/model"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditSpy struct {
	records []model.AuditRecord
	err     error
}

func (s *auditSpy) Record(_ context.Context, rec model.AuditRecord) error {
	s.records = append(s.records, rec)
	return s.err
}

func fixedClock() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }

func newEntryService(t *testing.T, audit AuditWriter) (*entryService, func(string) [][]any) {
	t.Helper()
	srv, repo := newSheets(t)
	svc := NewEntryService(repo, audit).(*entryService)
	svc.now = fixedClock
	return svc, srv.Rows
}

func TestRecordSale(t *testing.T) {
	spy := &auditSpy{}
	svc, rows := newEntryService(t, spy)

	resp, err := svc.RecordSale(context.Background(), "amina", dto.SaleRequest{
		Product: "Sugar", Customer: "Juma", UnitPrice: decimal.NewFromInt(700),
		Discount: decimal.NewFromInt(100), Quantity: 3, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, "2024-06-01", resp.Date)
	assert.Regexp(t, `^SAL-[0-9A-F]{8}$`, resp.Reference)

	sales := rows(schema.Sales)
	require.Len(t, sales, 2)
	s := registry.MustGet(schema.Sales)
	got := sales[1]
	assert.Equal(t, "Sugar", got[s.Index(schema.Product)])
	assert.Equal(t, "2000", got[s.Index(schema.Revenue)])
	assert.Equal(t, float64(3), got[s.Index(schema.Quantity)])
	assert.Equal(t, "amina", got[s.Index(schema.User)])

	require.Len(t, spy.records, 1)
	rec := spy.records[0]
	assert.Equal(t, model.ActionSale, rec.Action)
	assert.Equal(t, "-3", rec.NewValue)
	assert.Equal(t, resp.Reference, rec.Reference)
	assert.Equal(t, "2024-06-01T09:30:00Z", rec.Timestamp)
}

func TestRecordSaleRejectsNegativeTotal(t *testing.T) {
	svc, rows := newEntryService(t, nil)
	_, err := svc.RecordSale(context.Background(), "amina", dto.SaleRequest{
		Product: "Sugar", UnitPrice: decimal.NewFromInt(10), Discount: decimal.NewFromInt(50), Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrNegativeTotal)
	assert.Len(t, rows(schema.Sales), 1, "nothing appended")
}

func TestRecordPurchaseDerivesUnitCost(t *testing.T) {
	spy := &auditSpy{}
	svc, rows := newEntryService(t, spy)

	resp, err := svc.RecordPurchase(context.Background(), "juma", dto.PurchaseRequest{
		Date: "2024-05-30", Reference: "PO-7", Product: "Rice", Quantity: 3,
		Cost: decimal.NewFromInt(1000), Supplier: "Acme", Location: "Warehouse",
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-7", resp.Reference)

	s := registry.MustGet(schema.Purchases)
	got := rows(schema.Purchases)[1]
	assert.Equal(t, "333.33", got[s.Index(schema.UnitCost)])
	assert.Equal(t, "Acme", got[s.Index(schema.Supplier)])
	assert.Equal(t, "2024-05-30", got[s.Index(schema.Date)])

	require.Len(t, spy.records, 1)
	assert.Equal(t, "+3", spy.records[0].NewValue)
	assert.Equal(t, "Purchase from Acme", spy.records[0].Reason)
}

func TestRecordExpenseSurvivesAuditFailure(t *testing.T) {
	spy := &auditSpy{err: errors.New("queue down")}
	svc, rows := newEntryService(t, spy)

	resp, err := svc.RecordExpense(context.Background(), "amina", dto.ExpenseRequest{
		Category: "Rent", Description: "June", Amount: decimal.NewFromInt(150000),
	})
	require.NoError(t, err)
	assert.Equal(t, schema.Expenses, resp.Sheet)
	assert.Len(t, rows(schema.Expenses), 2)
	assert.Len(t, spy.records, 1)
}

func TestRecordEntryUpstreamFailure(t *testing.T) {
	srv, repo := newSheets(t)
	srv.Fail(schema.Expenses, http.StatusBadGateway)
	spy := &auditSpy{}
	svc := NewEntryService(repo, spy)

	_, err := svc.RecordExpense(context.Background(), "amina", dto.ExpenseRequest{
		Category: "Rent", Description: "June", Amount: decimal.NewFromInt(1),
	})
	var upErr *infra.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Empty(t, spy.records, "no audit entry for a row that was not written")
}

func TestSyncAuditWriterAppendsToAuditLog(t *testing.T) {
	srv, repo := newSheets(t)
	audit := AuditWriterFunc(repository.NewAuditRepository(repo).Append)
	svc := NewEntryService(repo, audit)

	_, err := svc.RecordExpense(context.Background(), "amina", dto.ExpenseRequest{
		Category: "Rent", Description: "June", Amount: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	logRows := srv.Rows(schema.AuditLog)
	require.Len(t, logRows, 2)
	s := registry.MustGet(schema.AuditLog)
	assert.Equal(t, model.ActionExpense, logRows[1][s.Index(schema.Action)])
}
