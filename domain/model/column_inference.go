package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultNullMarkers are the raw strings treated as missing when a table is read.
var DefaultNullMarkers = []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "#N/A"}

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern, tried in order
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
		[]string{"2006-01-02", "2006-1-2"},
	},
	// Year first with slashes
	{
		regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`),
		[]string{"2006/1/2", "2006/01/02"},
	},
	// US formats, day first when the month does not fit
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "2/1/2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "2/1/2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),
		[]string{"1-2-2006", "2-1-2006"},
	},
	// European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4} \d{1,2}:\d{2}:\d{2}$`),
		[]string{"2.1.2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006"},
	},
	// Month name formats
	{
		regexp.MustCompile(`^[A-Za-z]+\.? \d{1,2},? \d{4}$`),
		[]string{"January 2, 2006", "Jan 2, 2006", "January 2 2006", "Jan 2 2006", "Jan. 2, 2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2} [A-Za-z]+,? \d{4}$`),
		[]string{"2 January 2006", "2 Jan 2006", "2 January, 2006"},
	},
}

// ParseDatetime parses s under the first matching known layout.
func ParseDatetime(s string) (time.Time, bool) {
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		// Try each format for this pattern
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseNumber parses s as a finite real number.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isNullMarker reports whether the trimmed value is one of the markers
func isNullMarker(value string, nullMarkers []string) bool {
	value = strings.TrimSpace(value)
	for _, m := range nullMarkers {
		if value == m {
			return true
		}
	}
	return false
}

// InferKind infers the column kind from raw string values: numeric when every
// non-null value is a number, text otherwise. Date-like strings stay text, so
// raw input is never reinterpreted as a date outside the type normalizer.
func InferKind(values []string, nullMarkers []string) Kind {
	hasNumeric := false

	for _, value := range values {
		if isNullMarker(value, nullMarkers) {
			continue
		}
		if _, ok := ParseNumber(value); !ok {
			// If any value is text, the whole column is text
			return KindText
		}
		hasNumeric = true
	}

	if hasNumeric {
		return KindNumeric
	}
	return KindUnknown
}

// ParseValue converts a raw string to a Value of the given kind.
// Null markers and values that do not fit the kind become null.
func ParseValue(raw string, kind Kind, nullMarkers []string) Value {
	if isNullMarker(raw, nullMarkers) {
		return Null()
	}
	switch kind {
	case KindNumeric:
		if f, ok := ParseNumber(raw); ok {
			return Number(f)
		}
	case KindDatetime:
		if t, ok := ParseDatetime(raw); ok {
			return Datetime(t)
		}
	case KindText:
		return Text(raw)
	}
	return Null()
}

// NewTableFromRecords builds a typed table from a header and raw records.
// The kind of every column is inferred once, then every cell is converted.
func NewTableFromRecords(name string, header Header, records []Record, nullMarkers []string) (*Table, error) {
	return NewTableFromTypedRecords(name, header, records, nil, nullMarkers)
}

// NewTableFromTypedRecords is NewTableFromRecords for sources that carry a schema.
// kinds[c] is the declared kind of column c; KindUnknown or a missing entry
// falls back to inference.
func NewTableFromTypedRecords(name string, header Header, records []Record, kinds []Kind, nullMarkers []string) (*Table, error) {
	if len(kinds) > len(header) {
		return nil, fmt.Errorf("%w: %d kinds for %d columns", ErrColumnLength, len(kinds), len(header))
	}
	for i, r := range records {
		if len(r) != len(header) {
			return nil, fmt.Errorf("%w: record %d has %d fields, header has %d", ErrColumnLength, i+1, len(r), len(header))
		}
	}

	columns := make([]*Column, len(header))
	raw := make([]string, len(records))
	for c, colName := range header {
		for r, record := range records {
			raw[r] = record[c]
		}
		kind := KindUnknown
		if c < len(kinds) {
			kind = kinds[c]
		}
		if kind == KindUnknown {
			kind = InferKind(raw, nullMarkers)
		}
		values := make([]Value, len(records))
		for r, s := range raw {
			values[r] = ParseValue(s, kind, nullMarkers)
		}
		columns[c] = &Column{name: colName, kind: kind, values: values}
	}
	return NewTable(name, columns...)
}
