// Package importer implements the CSV reconciliation-import pipeline: header
// resolution, preview conflict detection, operator resolution handling, and
// the transactional import itself.
package importer

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// amountJunk matches every character that carries no numeric meaning in a
// currency cell ("R$", spaces, letters). Comma, dot, and minus survive so the
// separator heuristic can run on what is left.
var amountJunk = regexp.MustCompile(`[^\d,.\-]`)

// literalZero matches raw amount text that spells an explicit zero, like
// "0", "0.0", "0,00", or "-0". Anything else that still parses to zero is
// treated as a data defect by the row builder.
var literalZero = regexp.MustCompile(`^-?0([.,]0+)?$`)

// ParseAmount parses a locale-ambiguous currency string into a decimal.
// It is total: unparseable input yields zero, never an error.
func ParseAmount(raw string) decimal.Decimal {
	amount, ok := ParseAmountStrict(raw)
	if !ok {
		return decimal.Zero
	}
	return amount
}

// ParseAmountStrict parses like ParseAmount but reports failure, so callers
// that need to distinguish an invalid cell from a genuine zero can.
//
// Disambiguation rule for mixed separators: the separator that occurs last in
// the string is the decimal separator, the other is thousands and is dropped.
// That handles Brazilian "1.234,56" and US "1,234.56" with one heuristic.
func ParseAmountStrict(raw string) (decimal.Decimal, bool) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, false
	}

	sanitized := amountJunk.ReplaceAllString(raw, "")

	lastComma := strings.LastIndex(sanitized, ",")
	lastDot := strings.LastIndex(sanitized, ".")

	if lastComma >= 0 && lastComma > lastDot {
		sanitized = strings.ReplaceAll(sanitized, ".", "")
		sanitized = strings.ReplaceAll(sanitized, ",", ".")
	} else {
		sanitized = strings.ReplaceAll(sanitized, ",", "")
	}

	amount, err := decimal.NewFromString(sanitized)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// IsLiteralZero reports whether raw is an explicit zero spelling rather than
// text that merely degraded to zero during parsing.
func IsLiteralZero(raw string) bool {
	return literalZero.MatchString(strings.TrimSpace(raw))
}

// Date layouts accepted by ParseDate, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
}

// ParseDate parses a date string, preferring ISO form and falling back to the
// long month-name form spreadsheets sometimes export ("August 19, 2024").
// The second return is false when no layout matched.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseISODate parses strictly ISO YYYY-MM-DD dates. The preview stage uses
// this stricter form so that conflicts report the format the importer
// documents, while the row builder stays lenient.
func ParseISODate(raw string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
