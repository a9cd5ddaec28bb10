package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierStatus classifies a supplier by purchase volume and service metrics.
type SupplierStatus string

const (
	SupplierActive    SupplierStatus = "active"
	SupplierPreferred SupplierStatus = "preferred"
	SupplierInactive  SupplierStatus = "inactive"
)

// SupplierPerformance aggregates the purchases made from one supplier.
// OnTimeDelivery and QualityRating come from a metrics provider, not from the
// purchase rows.
type SupplierPerformance struct {
	Name              string          `json:"name"`
	TotalPurchases    int             `json:"total_purchases"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	LastOrderDate     *time.Time      `json:"last_order_date"`
	OnTimeDelivery    float64         `json:"on_time_delivery"` // percent, 0-100
	QualityRating     float64         `json:"quality_rating"`   // 0-5
	Status            SupplierStatus  `json:"status"`
}
