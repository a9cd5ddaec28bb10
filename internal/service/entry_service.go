package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sheetpos/internal/dto"
	"sheetpos/internal/model"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrNegativeTotal is returned when a sale's discount exceeds its gross value.
var ErrNegativeTotal = errors.New("discount exceeds the sale total")

// EntryService appends new business rows to the sheets and records an audit
// entry for each one.
type EntryService interface {
	RecordSale(ctx context.Context, actor string, req dto.SaleRequest) (*dto.EntryResponse, error)
	RecordPurchase(ctx context.Context, actor string, req dto.PurchaseRequest) (*dto.EntryResponse, error)
	RecordExpense(ctx context.Context, actor string, req dto.ExpenseRequest) (*dto.EntryResponse, error)
}

type entryService struct {
	sheets repository.SheetRepository
	audit  AuditWriter
	now    func() time.Time
}

func NewEntryService(sheets repository.SheetRepository, audit AuditWriter) EntryService {
	return &entryService{sheets: sheets, audit: audit, now: time.Now}
}

func (s *entryService) RecordSale(ctx context.Context, actor string, req dto.SaleRequest) (*dto.EntryResponse, error) {
	revenue := req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Sub(req.Discount)
	if revenue.IsNegative() {
		return nil, ErrNegativeTotal
	}

	id, ref, date := s.identify("SAL", req.Reference, req.Date)
	err := s.sheets.Append(ctx, schema.Sales, map[schema.Field]any{
		schema.ID:            id,
		schema.Reference:     ref,
		schema.Date:          date,
		schema.Customer:      req.Customer,
		schema.Category:      req.Category,
		schema.Product:       req.Product,
		schema.UnitPrice:     req.UnitPrice.String(),
		schema.Discount:      req.Discount.String(),
		schema.Quantity:      req.Quantity,
		schema.Revenue:       revenue.String(),
		schema.PaymentMethod: req.PaymentMethod,
		schema.User:          actor,
	})
	if err != nil {
		return nil, err
	}

	reason := "Sale"
	if req.Customer != "" {
		reason = "Sale to " + req.Customer
	}
	s.record(ctx, model.AuditRecord{
		User: actor, Action: model.ActionSale, Product: req.Product,
		NewValue: fmt.Sprintf("-%d", req.Quantity), Reason: reason, Reference: ref,
	})
	return &dto.EntryResponse{ID: id, Sheet: schema.Sales, Reference: ref, Date: date, Amount: revenue}, nil
}

func (s *entryService) RecordPurchase(ctx context.Context, actor string, req dto.PurchaseRequest) (*dto.EntryResponse, error) {
	unitCost := req.Cost.Div(decimal.NewFromInt(int64(req.Quantity))).Round(2)

	id, ref, date := s.identify("PUR", req.Reference, req.Date)
	err := s.sheets.Append(ctx, schema.Purchases, map[schema.Field]any{
		schema.ID:        id,
		schema.Reference: ref,
		schema.Date:      date,
		schema.User:      actor,
		schema.Product:   req.Product,
		schema.Category:  req.Category,
		schema.Quantity:  req.Quantity,
		schema.Cost:      req.Cost.String(),
		schema.UnitCost:  unitCost.String(),
		schema.Location:  req.Location,
		schema.Supplier:  req.Supplier,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, model.AuditRecord{
		User: actor, Action: model.ActionPurchase, Product: req.Product,
		NewValue: fmt.Sprintf("+%d", req.Quantity), Reason: "Purchase from " + req.Supplier, Reference: ref,
	})
	return &dto.EntryResponse{ID: id, Sheet: schema.Purchases, Reference: ref, Date: date, Amount: req.Cost}, nil
}

func (s *entryService) RecordExpense(ctx context.Context, actor string, req dto.ExpenseRequest) (*dto.EntryResponse, error) {
	id, ref, date := s.identify("EXP", req.Reference, req.Date)
	err := s.sheets.Append(ctx, schema.Expenses, map[schema.Field]any{
		schema.ID:            id,
		schema.Reference:     ref,
		schema.Date:          date,
		schema.Category:      req.Category,
		schema.Description:   req.Description,
		schema.Amount:        req.Amount.String(),
		schema.PaymentMethod: req.PaymentMethod,
		schema.User:          actor,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, model.AuditRecord{
		User: actor, Action: model.ActionExpense, NewValue: req.Amount.String(),
		Reason: req.Category + ": " + req.Description, Reference: ref,
	})
	return &dto.EntryResponse{ID: id, Sheet: schema.Expenses, Reference: ref, Date: date, Amount: req.Amount}, nil
}

// identify assigns a row id and fills in the reference and date defaults.
func (s *entryService) identify(prefix, ref, date string) (string, string, string) {
	id := uuid.NewString()
	if ref == "" {
		ref = prefix + "-" + strings.ToUpper(id[:8])
	}
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	return id, ref, date
}

// record writes the audit entry. The business row is already in the sheet, so
// a failure here is logged rather than returned.
func (s *entryService) record(ctx context.Context, rec model.AuditRecord) {
	if s.audit == nil {
		return
	}
	rec.Timestamp = s.now().UTC().Format(time.RFC3339)
	if err := s.audit.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Str("action", rec.Action).Str("reference", rec.Reference).Msg("audit entry not recorded")
	}
}
