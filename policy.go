package fileclean

import (
	"slices"
	"strings"
	"time"
)

// Default policy values
const (
	// DefaultNumericFillThreshold is the missing percentage below which numeric columns are filled
	DefaultNumericFillThreshold = 30.0
	// DefaultTextFillThreshold is the missing percentage below which other columns are filled
	DefaultTextFillThreshold = 50.0
	// DefaultDateMarker selects date columns by case-insensitive substring
	DefaultDateMarker = "date"
	// DefaultEmailMarker selects email columns by case-insensitive substring
	DefaultEmailMarker = "email"
	// unknownFill fills non-numeric columns without any observed value
	unknownFill = "Unknown"
)

// Policy holds the decision rules applied by the cleaning stages.
type Policy struct {
	// NumericFillThreshold: numeric columns with a lower missing percentage are filled, others dropped.
	NumericFillThreshold float64
	// TextFillThreshold: non-numeric columns with a lower missing percentage are filled, others dropped.
	TextFillThreshold float64
	// FallbackDate fills date columns that have no parsable value.
	FallbackDate time.Time
	// NumericColumns are coerced to integers. Matching is exact and case-sensitive.
	NumericColumns []string
	// DateMarker selects date columns.
	DateMarker string
	// EmailMarker selects columns that are lowercased instead of title-cased.
	EmailMarker string
}

// DefaultPolicy returns the canonical policy.
func DefaultPolicy() Policy {
	return Policy{
		NumericFillThreshold: DefaultNumericFillThreshold,
		TextFillThreshold:    DefaultTextFillThreshold,
		FallbackDate:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		NumericColumns:       []string{"age"},
		DateMarker:           DefaultDateMarker,
		EmailMarker:          DefaultEmailMarker,
	}
}

func (p Policy) isNumericColumn(name string) bool {
	return slices.Contains(p.NumericColumns, name)
}

func (p Policy) isDateColumn(name string) bool {
	return containsFold(name, p.DateMarker)
}

func (p Policy) isEmailColumn(name string) bool {
	return containsFold(name, p.EmailMarker)
}

// containsFold reports whether substr is within s, ignoring case. An empty marker never matches.
func containsFold(s, substr string) bool {
	if substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
