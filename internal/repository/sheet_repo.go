package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sheetpos/internal/infra"
	"sheetpos/internal/schema"

	"golang.org/x/sync/errgroup"
)

// ErrUnknownSheet is returned for a logical sheet name with no schema.
var ErrUnknownSheet = errors.New("unknown sheet")

// Fetch names one sheet to read and how many data rows to keep (0 = all).
type Fetch struct {
	Sheet string
	Limit int
}

// Tables holds fetched sheets keyed by logical name.
type Tables map[string]schema.Table

// SheetRepository defines data access over the sheets API. Services depend on
// this interface so tests can substitute an in-memory implementation.
type SheetRepository interface {
	Fetch(ctx context.Context, sheet string, limit int) (schema.Table, error)
	// FetchAll reads every requested sheet concurrently. The first failure
	// cancels the remaining reads and no partial result is returned.
	FetchAll(ctx context.Context, reqs ...Fetch) (Tables, error)
	Append(ctx context.Context, sheet string, records ...map[schema.Field]any) error
	Raw(ctx context.Context, sheet string) ([][]any, error)
	Registry() *schema.Registry
}

type sheetRepo struct {
	sheets   infra.Sheets
	registry *schema.Registry
}

func NewSheetRepository(sheets infra.Sheets, registry *schema.Registry) SheetRepository {
	return &sheetRepo{sheets: sheets, registry: registry}
}

func (r *sheetRepo) Registry() *schema.Registry { return r.registry }

func (r *sheetRepo) lookup(sheet string) (schema.Schema, error) {
	s, ok := r.registry.Get(sheet)
	if !ok {
		return schema.Schema{}, fmt.Errorf("%w: %s", ErrUnknownSheet, sheet)
	}
	return s, nil
}

func (r *sheetRepo) Fetch(ctx context.Context, sheet string, limit int) (schema.Table, error) {
	s, err := r.lookup(sheet)
	if err != nil {
		return schema.Table{}, err
	}
	values, err := r.sheets.Values(ctx, s.Sheet)
	if err != nil {
		return schema.Table{}, err
	}
	t, err := schema.NewTable(s, values)
	if err != nil {
		return schema.Table{}, err
	}
	return t.Limit(limit), nil
}

func (r *sheetRepo) FetchAll(ctx context.Context, reqs ...Fetch) (Tables, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(Tables, len(reqs))

	for _, req := range reqs {
		req := req
		g.Go(func() error {
			t, err := r.Fetch(gctx, req.Sheet, req.Limit)
			if err != nil {
				return err
			}
			mu.Lock()
			out[req.Sheet] = t
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sheetRepo) Append(ctx context.Context, sheet string, records ...map[schema.Field]any) error {
	if len(records) == 0 {
		return nil
	}
	s, err := r.lookup(sheet)
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.Encode(rec))
	}
	return r.sheets.Append(ctx, s.Sheet, rows)
}

// Raw returns the unvalidated values of a known sheet.
func (r *sheetRepo) Raw(ctx context.Context, sheet string) ([][]any, error) {
	s, err := r.lookup(sheet)
	if err != nil {
		return nil, err
	}
	return r.sheets.Values(ctx, s.Sheet)
}
