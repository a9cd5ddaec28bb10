package dto

import (
	"sheetpos/internal/model"

	"github.com/shopspring/decimal"
)

// CashflowQuery is bound from the query string of GET /v1/cashflow.
type CashflowQuery struct {
	LegacyFold bool `form:"legacy_fold"`
}

type StockQuery struct {
	Low bool `form:"low"`
}

type CashflowResponse struct {
	Entries      []model.LedgerEntry `json:"entries"`
	TotalIncome  decimal.Decimal     `json:"total_income"`
	TotalExpense decimal.Decimal     `json:"total_expense"`
	Net          decimal.Decimal     `json:"net"`
	RowCap       int                 `json:"row_cap"`
	LegacyFold   bool                `json:"legacy_fold"`
}

type MovementsResponse struct {
	Movements []model.MovementRecord `json:"movements"`
	Count     int                    `json:"count"`
}

type StockResponse struct {
	Items      []model.StockLevel `json:"items"`
	LowCount   int                `json:"low_count"`
	TotalValue decimal.Decimal    `json:"total_value"`
}

type AuditResponse struct {
	Records []model.AuditRecord `json:"records"`
	Count   int                 `json:"count"`
}

type SupplierSummary struct {
	Suppliers  int             `json:"suppliers"`
	Preferred  int             `json:"preferred"`
	Active     int             `json:"active"`
	Inactive   int             `json:"inactive"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

type SuppliersResponse struct {
	Suppliers []model.SupplierPerformance `json:"suppliers"`
	Summary   SupplierSummary             `json:"summary"`
}

type SheetResponse struct {
	Sheet  string  `json:"sheet"`
	Values [][]any `json:"values"`
}
