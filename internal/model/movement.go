package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// MovementRecord is one stock movement derived from a purchase (in) or a sale (out).
// TotalValue is always Quantity × UnitPrice.
type MovementRecord struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	Product    string          `json:"product"`
	Category   string          `json:"category"`
	Direction  Direction       `json:"direction"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalValue decimal.Decimal `json:"total_value"`
	Reason     string          `json:"reason"`
	Reference  string          `json:"reference"`
	Location   string          `json:"location"`

	At      time.Time `json:"-"`
	HasDate bool      `json:"-"`
}

// StockLevel is the on-hand position of one product, folded from its movements.
type StockLevel struct {
	Product      string          `json:"product"`
	Category     string          `json:"category"`
	QuantityIn   int             `json:"quantity_in"`
	QuantityOut  int             `json:"quantity_out"`
	OnHand       int             `json:"on_hand"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	StockValue   decimal.Decimal `json:"stock_value"`
	ReorderLevel int             `json:"reorder_level"`
	Low          bool            `json:"low"`
}
