// Package model provides domain model for fileclean
package model

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// Header is table header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Record is a raw row as read from a file, one string per column.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// Kind represents the semantic category of a column or a value.
type Kind int

const (
	// KindUnknown is the kind of a null value, or of a column without any non-null value
	KindUnknown Kind = iota
	// KindNumeric represents integer and real numbers
	KindNumeric
	// KindText represents free text
	KindText
	// KindDatetime represents calendar dates with an optional clock part
	KindDatetime
)

const (
	// sqlTypeText is the SQL TEXT type string
	sqlTypeText = "TEXT"
	// sqlTypeInteger is the SQL INTEGER type string
	sqlTypeInteger = "INTEGER"
	// sqlTypeReal is the SQL REAL type string
	sqlTypeReal = "REAL"
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	case KindDatetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// SQLType returns the SQL column type used to store values of this kind
func (k Kind) SQLType() string {
	switch k {
	case KindNumeric:
		return sqlTypeReal
	case KindDatetime:
		return sqlTypeText // datetime is stored as TEXT in ISO8601 format
	default:
		return sqlTypeText
	}
}

// Datetime rendering layouts
const (
	// DateLayout is used for datetimes without a clock part
	DateLayout = "2006-01-02"
	// DatetimeLayout is used for datetimes with a clock part
	DatetimeLayout = "2006-01-02 15:04:05"
)

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	tm   time.Time
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumeric, num: f}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, str: s}
}

// Datetime returns a datetime value.
func Datetime(t time.Time) Value {
	return Value{kind: KindDatetime, tm: t}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindUnknown
}

// Kind returns the kind of v. Null values are KindUnknown.
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumeric
}

// Str returns the text payload.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindText
}

// Time returns the datetime payload.
func (v Value) Time() (time.Time, bool) {
	return v.tm, v.kind == KindDatetime
}

// String renders v the way sinks persist it. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.str
	case KindDatetime:
		if v.tm.Hour() == 0 && v.tm.Minute() == 0 && v.tm.Second() == 0 && v.tm.Nanosecond() == 0 {
			return v.tm.Format(DateLayout)
		}
		return v.tm.Format(DatetimeLayout)
	default:
		return ""
	}
}

// Equal compares kind and payload. Two nulls are equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumeric:
		return v.num == other.num
	case KindText:
		return v.str == other.str
	case KindDatetime:
		return v.tm.Equal(other.tm)
	default:
		return true
	}
}

// Key returns a string identity usable as a map key. Equal values share a key.
func (v Value) Key() string {
	var b strings.Builder
	b.WriteByte(byte('0' + v.kind))
	switch v.kind {
	case KindNumeric:
		f := v.num
		if f == 0 {
			f = 0 // -0 equals 0
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case KindText:
		b.WriteString(v.str)
	case KindDatetime:
		b.WriteString(v.tm.UTC().Format(time.RFC3339Nano))
	}
	return b.String()
}

// Compare orders values: nulls first, then by kind, then by payload.
func (v Value) Compare(other Value) int {
	if c := cmp.Compare(v.kind, other.kind); c != 0 {
		return c
	}
	switch v.kind {
	case KindNumeric:
		return cmp.Compare(v.num, other.num)
	case KindText:
		return strings.Compare(v.str, other.str)
	case KindDatetime:
		return v.tm.Compare(other.tm)
	default:
		return 0
	}
}
