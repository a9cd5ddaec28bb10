package ledger

import (
	"sort"
	"time"
)

// newestFirst stable-sorts items by date descending. Items without a parsable
// date go after every dated item and keep their relative order.
func newestFirst[T any](items []T, date func(T) (time.Time, bool)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, okI := date(items[i])
		tj, okJ := date(items[j])
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}
