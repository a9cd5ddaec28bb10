// Package coerce turns loosely typed spreadsheet cells into typed values.
// None of these functions fail: malformed input degrades into a zero value or
// a sentinel string so a single bad cell never rejects a row.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinels substituted for absent or empty text cells.
const (
	UnknownProduct  = "Unknown Product"
	UnknownDate     = "Unknown Date"
	UnknownCategory = "Unknown Category"
	UnknownSupplier = "Unknown Supplier"
	UnknownUser     = "Unknown User"
	UnknownLocation = "Unknown Location"
)

// CurrencyPrefix is stripped from money cells before parsing.
const CurrencyPrefix = "TSh"

// Currency parses a money cell such as "TSh12,345.50", "12345" or 12345.5.
// Anything unparsable yields zero.
func Currency(cell any) decimal.Decimal {
	switch v := cell.(type) {
	case nil:
		return decimal.Zero
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case float32:
		return Currency(float64(v))
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case decimal.Decimal:
		return v
	case string:
		return currencyString(v)
	default:
		return currencyString(fmt.Sprint(v))
	}
}

func currencyString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, CurrencyPrefix)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// Fall back to the longest numeric prefix, the way a float parser
		// reading "12.5kg" would still yield 12.5.
		if p := numericPrefix(s); p != "" {
			if d, err = decimal.NewFromString(p); err == nil {
				return d
			}
		}
		return decimal.Zero
	}
	return d
}

// Quantity parses an integer cell in base 10. Decimal strings keep their
// integer part; anything else yields zero.
func Quantity(cell any) int {
	switch v := cell.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case float32:
		return Quantity(float64(v))
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		return Quantity(v.String())
	case string:
		return quantityString(v)
	default:
		return quantityString(fmt.Sprint(v))
	}
}

func quantityString(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	p := integerPrefix(s)
	if p == "" || p == "-" || p == "+" {
		return 0
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0
	}
	return n
}

// Text returns the trimmed string form of a cell, or fallback when the cell
// is absent or blank.
func Text(cell any, fallback string) string {
	var s string
	switch v := cell.(type) {
	case nil:
		return fallback
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// Date parses a date cell. The boolean is false when no layout matched.
func Date(cell any) (time.Time, bool) {
	s := Text(cell, "")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func numericPrefix(s string) string {
	end := 0
	seenDot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			return strings.TrimSuffix(s[:end], ".")
		}
	}
	return strings.TrimSuffix(s[:end], ".")
}

func integerPrefix(s string) string {
	end := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case (r == '-' || r == '+') && i == 0:
			end = i + 1
		default:
			return s[:end]
		}
	}
	return s[:end]
}
