package service

import (
	"context"
	"io"

	"sheetpos/internal/dto"
	"sheetpos/internal/ledger"
	"sheetpos/internal/model"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"
	"sheetpos/internal/supplier"

	"github.com/shopspring/decimal"
)

// Caps bounds how many data rows of each source sheet a view reads.
type Caps struct {
	Cashflow  int
	Movements int
	Audit     int
	Suppliers int
	Stock     int
}

func DefaultCaps() Caps {
	return Caps{Cashflow: 50, Movements: 30, Audit: 20, Suppliers: 100, Stock: 100}
}

// ReportService builds the read-only views. Every call refetches its sheets;
// nothing derived is stored.
type ReportService interface {
	Cashflow(ctx context.Context, opts ledger.Options) (*dto.CashflowResponse, error)
	ExportCashflow(ctx context.Context, opts ledger.Options, w io.Writer) error
	Movements(ctx context.Context) (*dto.MovementsResponse, error)
	StockLevels(ctx context.Context, lowOnly bool) (*dto.StockResponse, error)
	Audit(ctx context.Context) (*dto.AuditResponse, error)
	Suppliers(ctx context.Context) (*dto.SuppliersResponse, error)
	Sheet(ctx context.Context, sheet string) (*dto.SheetResponse, error)
}

type reportService struct {
	sheets  repository.SheetRepository
	metrics supplier.MetricsProvider
	caps    Caps
}

func NewReportService(sheets repository.SheetRepository, metrics supplier.MetricsProvider, caps Caps) ReportService {
	return &reportService{sheets: sheets, metrics: metrics, caps: caps}
}

func (s *reportService) cashflow(ctx context.Context, opts ledger.Options) (ledger.Cashflow, error) {
	t, err := s.sheets.FetchAll(ctx,
		repository.Fetch{Sheet: schema.Sales, Limit: s.caps.Cashflow},
		repository.Fetch{Sheet: schema.Purchases, Limit: s.caps.Cashflow},
		repository.Fetch{Sheet: schema.Expenses, Limit: s.caps.Cashflow},
	)
	if err != nil {
		return ledger.Cashflow{}, err
	}
	return ledger.DeriveCashflow(t[schema.Sales], t[schema.Purchases], t[schema.Expenses], opts), nil
}

func (s *reportService) Cashflow(ctx context.Context, opts ledger.Options) (*dto.CashflowResponse, error) {
	cf, err := s.cashflow(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &dto.CashflowResponse{
		Entries:      cf.Entries,
		TotalIncome:  cf.TotalIncome,
		TotalExpense: cf.TotalExpense,
		Net:          cf.Net,
		RowCap:       s.caps.Cashflow,
		LegacyFold:   opts.LegacyFold,
	}, nil
}

func (s *reportService) ExportCashflow(ctx context.Context, opts ledger.Options, w io.Writer) error {
	cf, err := s.cashflow(ctx, opts)
	if err != nil {
		return err
	}
	return writeCashflowWorkbook(cf, w)
}

func (s *reportService) Movements(ctx context.Context) (*dto.MovementsResponse, error) {
	t, err := s.sheets.FetchAll(ctx,
		repository.Fetch{Sheet: schema.Purchases, Limit: s.caps.Movements},
		repository.Fetch{Sheet: schema.Sales, Limit: s.caps.Movements},
	)
	if err != nil {
		return nil, err
	}
	moves := ledger.DeriveMovements(t[schema.Purchases], t[schema.Sales])
	return &dto.MovementsResponse{Movements: moves, Count: len(moves)}, nil
}

func (s *reportService) StockLevels(ctx context.Context, lowOnly bool) (*dto.StockResponse, error) {
	t, err := s.sheets.FetchAll(ctx,
		repository.Fetch{Sheet: schema.Purchases, Limit: s.caps.Stock},
		repository.Fetch{Sheet: schema.Sales, Limit: s.caps.Stock},
		repository.Fetch{Sheet: schema.Products, Limit: s.caps.Stock},
	)
	if err != nil {
		return nil, err
	}
	levels := ledger.DeriveStockLevels(ledger.DeriveMovements(t[schema.Purchases], t[schema.Sales]), t[schema.Products])

	resp := &dto.StockResponse{TotalValue: decimal.Zero}
	for _, l := range levels {
		if l.Low {
			resp.LowCount++
		}
		resp.TotalValue = resp.TotalValue.Add(l.StockValue)
	}
	if lowOnly {
		levels = ledger.LowStock(levels)
	}
	resp.Items = levels
	return resp, nil
}

func (s *reportService) Audit(ctx context.Context) (*dto.AuditResponse, error) {
	t, err := s.sheets.FetchAll(ctx,
		repository.Fetch{Sheet: schema.AuditLog, Limit: s.caps.Audit},
		repository.Fetch{Sheet: schema.Sales, Limit: s.caps.Audit},
		repository.Fetch{Sheet: schema.Purchases, Limit: s.caps.Audit},
	)
	if err != nil {
		return nil, err
	}
	records := ledger.DeriveAudit(t[schema.AuditLog], t[schema.Sales], t[schema.Purchases])
	return &dto.AuditResponse{Records: records, Count: len(records)}, nil
}

func (s *reportService) Suppliers(ctx context.Context) (*dto.SuppliersResponse, error) {
	purchases, err := s.sheets.Fetch(ctx, schema.Purchases, s.caps.Suppliers)
	if err != nil {
		return nil, err
	}
	perf := supplier.Aggregate(purchases, s.metrics)

	sum := dto.SupplierSummary{Suppliers: len(perf), TotalSpent: decimal.Zero}
	for _, p := range perf {
		switch p.Status {
		case model.SupplierPreferred:
			sum.Preferred++
		case model.SupplierActive:
			sum.Active++
		case model.SupplierInactive:
			sum.Inactive++
		}
		sum.TotalSpent = sum.TotalSpent.Add(p.TotalSpent)
	}
	return &dto.SuppliersResponse{Suppliers: perf, Summary: sum}, nil
}

func (s *reportService) Sheet(ctx context.Context, sheet string) (*dto.SheetResponse, error) {
	values, err := s.sheets.Raw(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = [][]any{}
	}
	return &dto.SheetResponse{Sheet: sheet, Values: values}, nil
}
