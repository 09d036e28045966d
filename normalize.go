package fileclean

import (
	"math"
	"strings"

	"github.com/nao1215/fileclean/domain/model"
	"github.com/spf13/cast"
)

// NormalizeResult summarizes NormalizeTypes.
type NormalizeResult struct {
	// Converted lists the columns coerced to integers
	Converted []string
	// Parsed lists the columns parsed as datetimes
	Parsed []string
	// Failed lists the columns left unmodified because they could not be interpreted
	Failed []string
	// Nullified counts values that failed coercion
	Nullified int
	// Filled counts nulls replaced by a median or modal date
	Filled int
}

// NormalizeTypes coerces the policy's numeric columns to integers and parses date columns.
// Other columns are untouched and the row count never changes.
func NormalizeTypes(t *model.Table, policy Policy, j *Journal) (*model.Table, NormalizeResult) {
	var result NormalizeResult

	j.Add("")
	j.Add("Original Data Types:")
	logKinds(t, j)

	for _, name := range policy.NumericColumns {
		i := t.ColumnIndex(name)
		if i < 0 {
			continue
		}
		j.Add("")
		j.Add("--- Fixing '%s' column ---", name)
		t = coerceInteger(t, i, j, &result)
	}

	header := false
	for i := range t.NumColumns() {
		name := t.ColumnAt(i).Name()
		if !policy.isDateColumn(name) {
			continue
		}
		if !header {
			j.Add("")
			j.Add("--- Parsing Date Columns ---")
			header = true
		}
		t = parseDates(t, i, model.Datetime(policy.FallbackDate), j, &result)
	}

	j.Add("")
	j.Add("Updated Data Types:")
	logKinds(t, j)
	return t, result
}

func logKinds(t *model.Table, j *Journal) {
	for _, c := range t.Columns() {
		j.Add("  %s: %s", c.Name(), c.Kind())
	}
}

// toNumber coerces one value; ok is false when it must become null
func toNumber(v model.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	s, ok := v.Str()
	if !ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceInteger converts the i-th column to whole numbers, filling failures with the median
func coerceInteger(t *model.Table, i int, j *Journal, result *NormalizeResult) *model.Table {
	col := t.ColumnAt(i)
	values := make([]model.Value, col.Len())
	parsed := make([]float64, 0, col.Len())
	nullified := 0

	for r := range col.Len() {
		v := col.Value(r)
		if v.IsNull() {
			continue
		}
		f, ok := toNumber(v)
		if !ok {
			nullified++
			continue
		}
		values[r] = model.Number(f)
		parsed = append(parsed, f)
	}

	med, ok := median(parsed)
	if !ok {
		result.Failed = append(result.Failed, col.Name())
		j.Add("✗ Could not convert '%s' to integer: no numeric values", col.Name())
		return t
	}

	filled := 0
	for r, v := range values {
		if v.IsNull() {
			values[r] = model.Number(math.Trunc(med))
			filled++
			continue
		}
		f, _ := v.Float()
		values[r] = model.Number(math.Trunc(f))
	}

	out, err := t.ReplaceColumn(i, model.NewColumn(col.Name(), model.KindNumeric, values))
	if err != nil {
		result.Failed = append(result.Failed, col.Name())
		j.Add("✗ Could not convert '%s' to integer: %v", col.Name(), err)
		return t
	}
	result.Converted = append(result.Converted, col.Name())
	result.Nullified += nullified
	result.Filled += filled
	j.Add("✓ Converted '%s' to integer (filled invalid values with median: %d)", col.Name(), int64(med))
	return out
}

// parseDates converts the i-th column to datetimes, filling failures with the modal date
func parseDates(t *model.Table, i int, fallback model.Value, j *Journal, result *NormalizeResult) *model.Table {
	col := t.ColumnAt(i)
	if col.Kind() == model.KindNumeric {
		result.Failed = append(result.Failed, col.Name())
		j.Add("✗ Could not parse '%s': numeric values are not dates", col.Name())
		return t
	}

	values := make([]model.Value, col.Len())
	nonNull, nullified := 0, 0
	for r := range col.Len() {
		v := col.Value(r)
		if v.IsNull() {
			continue
		}
		nonNull++
		if _, ok := v.Time(); ok {
			values[r] = v
			continue
		}
		s, _ := v.Str()
		tm, ok := model.ParseDatetime(s)
		if !ok {
			nullified++
			continue
		}
		values[r] = model.Datetime(tm)
	}

	if nonNull > 0 && nullified == nonNull {
		result.Failed = append(result.Failed, col.Name())
		j.Add("✗ Could not parse '%s': no value is a recognizable date", col.Name())
		return t
	}

	fill, ok := mode(values)
	if !ok {
		fill = fallback
	}
	parsedCol, filled := fillNulls(model.NewColumn(col.Name(), model.KindDatetime, values), fill)

	out, err := t.ReplaceColumn(i, parsedCol)
	if err != nil {
		result.Failed = append(result.Failed, col.Name())
		j.Add("✗ Could not parse '%s': %v", col.Name(), err)
		return t
	}
	result.Parsed = append(result.Parsed, col.Name())
	result.Nullified += nullified
	result.Filled += filled
	j.Add("✓ Parsed '%s' as datetime", col.Name())
	return out
}
