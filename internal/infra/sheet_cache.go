package infra

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Sheets is the set of sheet operations shared by SheetsClient and SheetCache.
type Sheets interface {
	Values(ctx context.Context, sheet string) ([][]any, error)
	Range(ctx context.Context, sheet, rng string) ([][]any, error)
	Append(ctx context.Context, sheet string, rows [][]any) error
	Update(ctx context.Context, sheet, rng string, rows [][]any) error
	Clear(ctx context.Context, sheet string) error
}

var (
	_ Sheets = (*SheetsClient)(nil)
	_ Sheets = (*SheetCache)(nil)
)

const sheetCachePrefix = "sheets:values:"

// SheetCache keeps whole-sheet reads in Redis for a short TTL. Any write to a
// sheet drops its cached copy. Redis errors degrade to a direct upstream read.
type SheetCache struct {
	next Sheets
	rdb  *redis.Client
	ttl  time.Duration
}

func NewSheetCache(next Sheets, rdb *redis.Client, ttl time.Duration) *SheetCache {
	return &SheetCache{next: next, rdb: rdb, ttl: ttl}
}

func sheetCacheKey(sheet string) string {
	return sheetCachePrefix + strings.ToLower(sheet)
}

func (c *SheetCache) Values(ctx context.Context, sheet string) ([][]any, error) {
	key := sheetCacheKey(sheet)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rows [][]any
		if derr := unmarshalNumber(raw, &rows); derr == nil {
			log.Debug().Str("sheet", sheet).Msg("sheet cache hit")
			return rows, nil
		}
		log.Warn().Str("sheet", sheet).Msg("sheet cache: discarding undecodable entry")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("sheet", sheet).Msg("sheet cache: read failed")
	}

	rows, err := c.next.Values(ctx, sheet)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(rows); merr == nil {
		if serr := c.rdb.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			log.Warn().Err(serr).Str("sheet", sheet).Msg("sheet cache: write failed")
		}
	}
	return rows, nil
}

func (c *SheetCache) Range(ctx context.Context, sheet, rng string) ([][]any, error) {
	return c.next.Range(ctx, sheet, rng)
}

func (c *SheetCache) Append(ctx context.Context, sheet string, rows [][]any) error {
	defer c.Invalidate(ctx, sheet)
	return c.next.Append(ctx, sheet, rows)
}

func (c *SheetCache) Update(ctx context.Context, sheet, rng string, rows [][]any) error {
	defer c.Invalidate(ctx, sheet)
	return c.next.Update(ctx, sheet, rng, rows)
}

func (c *SheetCache) Clear(ctx context.Context, sheet string) error {
	defer c.Invalidate(ctx, sheet)
	return c.next.Clear(ctx, sheet)
}

// Invalidate drops the cached copy of sheet. A failed write may still have
// reached the sheet, so callers invalidate regardless of the outcome.
func (c *SheetCache) Invalidate(ctx context.Context, sheet string) {
	if err := c.rdb.Del(ctx, sheetCacheKey(sheet)).Err(); err != nil {
		log.Warn().Err(err).Str("sheet", sheet).Msg("sheet cache: invalidate failed")
	}
}
