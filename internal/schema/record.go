package schema

import (
	"fmt"
	"strings"
)

// Record is the cleaned, typed projection of one raw row. Only columns whose
// cleaned value was non-null are present; values are string, float64 or int64
// per the column's declared type (dates are ISO strings).
type Record map[string]interface{}

// Has reports whether the record carries a value for the column.
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// StringValue returns the trimmed string form of a column's value, which is
// the form primary-key and foreign-key comparisons are made on.
func (r Record) StringValue(column string) string {
	v, ok := r[column]
	if !ok {
		return ""
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
