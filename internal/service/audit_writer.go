package service

import (
	"context"

	"sheetpos/internal/model"
)

// AuditWriter records an explicit audit entry. The router chooses between the
// Redis job queue and a direct AuditLog append.
type AuditWriter interface {
	Record(ctx context.Context, rec model.AuditRecord) error
}

// AuditWriterFunc adapts a function, such as worker.Dispatcher.EnqueueAudit or
// repository.AuditRepository.Append, to AuditWriter.
type AuditWriterFunc func(ctx context.Context, rec model.AuditRecord) error

func (f AuditWriterFunc) Record(ctx context.Context, rec model.AuditRecord) error {
	return f(ctx, rec)
}
