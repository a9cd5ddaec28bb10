package ledger

import (
	"fmt"
	"time"

	"sheetpos/internal/coerce"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"
)

// DeriveAudit combines the explicit AuditLog sheet with records derived from
// sales and purchases. A sale or purchase already logged under the same action
// and reference is not repeated.
func DeriveAudit(auditLog, sales, purchases schema.Table) []model.AuditRecord {
	out := make([]model.AuditRecord, 0, auditLog.Len()+sales.Len()+purchases.Len())
	logged := make(map[string]bool, auditLog.Len())

	for _, r := range auditLog.Rows {
		rec := model.AuditRecord{
			ID:        rowID(auditLog, r),
			Timestamp: coerce.Text(auditLog.Cell(r, schema.Timestamp), coerce.UnknownDate),
			User:      coerce.Text(auditLog.Cell(r, schema.User), coerce.UnknownUser),
			Action:    coerce.Text(auditLog.Cell(r, schema.Action), "UNKNOWN"),
			Product:   coerce.Text(auditLog.Cell(r, schema.Product), ""),
			OldValue:  coerce.Text(auditLog.Cell(r, schema.OldValue), ""),
			NewValue:  coerce.Text(auditLog.Cell(r, schema.NewValue), ""),
			Reason:    coerce.Text(auditLog.Cell(r, schema.Reason), ""),
			Reference: coerce.Text(auditLog.Cell(r, schema.Reference), ""),
		}
		rec.At, rec.HasDate = coerce.Date(auditLog.Cell(r, schema.Timestamp))
		if rec.Reference != "" {
			logged[rec.Action+"|"+rec.Reference] = true
		}
		out = append(out, rec)
	}

	for _, r := range sales.Rows {
		rec := derivedAudit(sales, r, model.ActionSale)
		if logged[rec.Action+"|"+rec.Reference] {
			continue
		}
		rec.NewValue = fmt.Sprintf("-%d", coerce.Quantity(sales.Cell(r, schema.Quantity)))
		rec.Reason = ReasonSale
		out = append(out, rec)
	}

	for _, r := range purchases.Rows {
		rec := derivedAudit(purchases, r, model.ActionPurchase)
		if logged[rec.Action+"|"+rec.Reference] {
			continue
		}
		rec.NewValue = fmt.Sprintf("+%d", coerce.Quantity(purchases.Cell(r, schema.Quantity)))
		rec.Reason = ReasonPurchase + " from " +
			coerce.Text(purchases.Cell(r, schema.Supplier), coerce.UnknownSupplier)
		out = append(out, rec)
	}

	newestFirst(out, func(a model.AuditRecord) (time.Time, bool) { return a.At, a.HasDate })
	return out
}

func derivedAudit(t schema.Table, r schema.Row, action string) model.AuditRecord {
	rec := model.AuditRecord{
		ID:        rowID(t, r),
		Timestamp: coerce.Text(t.Cell(r, schema.Date), coerce.UnknownDate),
		User:      coerce.Text(t.Cell(r, schema.User), coerce.UnknownUser),
		Action:    action,
		Product:   coerce.Text(t.Cell(r, schema.Product), coerce.UnknownProduct),
		Reference: reference(t, r),
	}
	rec.At, rec.HasDate = coerce.Date(t.Cell(r, schema.Date))
	return rec
}
