package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"sheetpos/internal/model"
	"sheetpos/internal/repository"
)

// AuditHandler appends the job's audit record to the AuditLog sheet.
func AuditHandler(repo repository.AuditRepository) HandlerFunc {
	return func(ctx context.Context, job Job) error {
		var rec model.AuditRecord
		if err := json.Unmarshal(job.Payload, &rec); err != nil {
			return fmt.Errorf("audit: decode payload: %w", err)
		}
		return repo.Append(ctx, rec)
	}
}
