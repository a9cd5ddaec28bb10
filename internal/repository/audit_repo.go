package repository

import (
	"context"

	"sheetpos/internal/model"
	"sheetpos/internal/schema"
)

// AuditRepository appends explicit entries to the AuditLog sheet.
type AuditRepository interface {
	Append(ctx context.Context, rec model.AuditRecord) error
}

type auditRepo struct{ sheets SheetRepository }

func NewAuditRepository(sheets SheetRepository) AuditRepository { return &auditRepo{sheets: sheets} }

func (r *auditRepo) Append(ctx context.Context, rec model.AuditRecord) error {
	return r.sheets.Append(ctx, schema.AuditLog, map[schema.Field]any{
		schema.Timestamp: rec.Timestamp,
		schema.User:      rec.User,
		schema.Action:    rec.Action,
		schema.Product:   rec.Product,
		schema.OldValue:  rec.OldValue,
		schema.NewValue:  rec.NewValue,
		schema.Reason:    rec.Reason,
		schema.Reference: rec.Reference,
	})
}
