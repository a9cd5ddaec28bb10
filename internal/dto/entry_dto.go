package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────
// Date is optional everywhere and defaults to today (YYYY-MM-DD).

type SaleRequest struct {
	Date          string          `json:"date"           validate:"omitempty,datetime=2006-01-02"`
	Reference     string          `json:"reference"      validate:"omitempty,max=100"`
	Customer      string          `json:"customer"       validate:"omitempty,max=200"`
	Category      string          `json:"category"       validate:"omitempty,max=100"`
	Product       string          `json:"product"        validate:"required,max=200"`
	UnitPrice     decimal.Decimal `json:"unit_price"     validate:"required,gt=0"`
	Discount      decimal.Decimal `json:"discount"       validate:"min=0"`
	Quantity      int             `json:"quantity"       validate:"required,min=1"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cash card mobile_money credit"`
}

type PurchaseRequest struct {
	Date      string          `json:"date"      validate:"omitempty,datetime=2006-01-02"`
	Reference string          `json:"reference" validate:"omitempty,max=100"`
	Product   string          `json:"product"   validate:"required,max=200"`
	Category  string          `json:"category"  validate:"omitempty,max=100"`
	Quantity  int             `json:"quantity"  validate:"required,min=1"`
	Cost      decimal.Decimal `json:"cost"      validate:"required,gt=0"` // total for the line
	Location  string          `json:"location"  validate:"omitempty,max=100"`
	Supplier  string          `json:"supplier"  validate:"required,max=200"`
}

type ExpenseRequest struct {
	Date          string          `json:"date"           validate:"omitempty,datetime=2006-01-02"`
	Reference     string          `json:"reference"      validate:"omitempty,max=100"`
	Category      string          `json:"category"       validate:"required,max=100"`
	Description   string          `json:"description"    validate:"required,max=500"`
	Amount        decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cash card mobile_money credit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EntryResponse struct {
	ID        string          `json:"id"`
	Sheet     string          `json:"sheet"`
	Reference string          `json:"reference"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
}
