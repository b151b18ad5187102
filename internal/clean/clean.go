// Package clean provides cell-level cleaning and type coercion for SheetSync.
package clean

import (
	"regexp"
	"strconv"
	"strings"
)

// Decimal values outside this range are flagged by callers as suspicious
// but never rejected.
const (
	DecimalRangeMin = 0
	DecimalRangeMax = 1000000
)

var (
	multiSpaceRegex  = regexp.MustCompile(`\s+`)
	controlCharRegex = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	nonDecimalRegex  = regexp.MustCompile(`[^\d,.\-]`)
	nonIntegerRegex  = regexp.MustCompile(`[^\d\-]`)

	dateISORegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateDMYSlash = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	dateDMYDash  = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	dateYMDSlash = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
)

// Text trims the cell, collapses whitespace runs to a single space, and
// strips control characters. Returns ok=false when nothing remains.
func Text(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}

	text = multiSpaceRegex.ReplaceAllString(text, " ")
	text = controlCharRegex.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", false
	}
	return text, true
}

// Decimal parses a decimal cell, tolerating currency symbols, thousands
// separators and comma decimal points ("R$ 1.234,56" -> 1234.56).
// Returns ok=false for unparsable input.
func Decimal(raw string) (float64, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, false
	}

	text = nonDecimalRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, ",", ".")

	// More than one dot: all but the last are thousands separators.
	if parts := strings.Split(text, "."); len(parts) > 2 {
		text = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// DecimalInRange reports whether a cleaned decimal falls inside the advisory
// sanity range. Out-of-range values are flagged by callers, not rejected.
func DecimalInRange(value float64) bool {
	return value >= DecimalRangeMin && value <= DecimalRangeMax
}

// Integer parses an integer cell after stripping everything except digits
// and the minus sign. Returns ok=false for unparsable or empty input.
func Integer(raw string) (int64, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, false
	}

	text = nonIntegerRegex.ReplaceAllString(text, "")
	if text == "" || text == "-" {
		return 0, false
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Date normalizes a calendar date cell to YYYY-MM-DD. Accepted input formats:
// YYYY-MM-DD, DD/MM/YYYY, DD-MM-YYYY and YYYY/MM/DD. Anything else is null.
// No timezone handling, pure textual normalization.
func Date(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}

	switch {
	case dateISORegex.MatchString(text):
		return text, true
	case dateDMYSlash.MatchString(text):
		p := strings.Split(text, "/")
		return p[2] + "-" + p[1] + "-" + p[0], true
	case dateDMYDash.MatchString(text):
		p := strings.Split(text, "-")
		return p[2] + "-" + p[1] + "-" + p[0], true
	case dateYMDSlash.MatchString(text):
		return strings.ReplaceAll(text, "/", "-"), true
	default:
		return "", false
	}
}

// NormalizeHeader converts an observed header cell to its canonical form:
// trimmed, lowercased, inner spaces replaced with underscores.
func NormalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = multiSpaceRegex.ReplaceAllString(h, " ")
	return strings.ReplaceAll(h, " ", "_")
}

// MatchKey reduces a column or header name to the form used for
// case-insensitive, underscore-insensitive matching.
func MatchKey(name string) string {
	return strings.ReplaceAll(NormalizeHeader(name), "_", "")
}
