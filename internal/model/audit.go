package model

import "time"

// Audit actions written to, or derived for, the audit trail.
const (
	ActionSale     = "SALE"
	ActionPurchase = "PURCHASE"
	ActionExpense  = "EXPENSE"
	ActionLogin    = "LOGIN"
	ActionLogout   = "LOGOUT"
)

// AuditRecord is one line of the audit trail.
type AuditRecord struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
	Product   string `json:"product"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`

	At      time.Time `json:"-"`
	HasDate bool      `json:"-"`
}
