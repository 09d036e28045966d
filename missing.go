package fileclean

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/nao1215/fileclean/domain/model"
)

// Strategy selects how missing values are handled.
type Strategy string

const (
	// StrategySmart fills or drops per column depending on kind and missing percentage
	StrategySmart Strategy = "smart"
	// StrategyDrop removes every row with at least one null
	StrategyDrop Strategy = "drop"
	// StrategyFillMean fills numeric columns with their mean
	StrategyFillMean Strategy = "fill_mean"
	// StrategyFillMedian fills numeric columns with their median
	StrategyFillMedian Strategy = "fill_median"
	// StrategyFillMode fills non-numeric columns with their mode
	StrategyFillMode Strategy = "fill_mode"
)

// Strategies lists every known strategy.
func Strategies() []Strategy {
	return []Strategy{StrategySmart, StrategyDrop, StrategyFillMean, StrategyFillMedian, StrategyFillMode}
}

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	return slices.Contains(Strategies(), s)
}

// MissingColumn is one row of a missing-value report.
type MissingColumn struct {
	// Name is the column name
	Name string
	// Count is the number of null values
	Count int
	// Percent is Count relative to the row count, rounded to two decimals
	Percent float64
}

// MissingReport lists columns with at least one null, most nulls first.
type MissingReport []MissingColumn

// Total returns the number of nulls over all reported columns.
func (r MissingReport) Total() int {
	total := 0
	for _, c := range r {
		total += c.Count
	}
	return total
}

// lines renders the report as an aligned text table
func (r MissingReport) lines() []string {
	width := len("Column")
	for _, c := range r {
		width = max(width, len(c.Name))
	}
	lines := []string{fmt.Sprintf("%-*s %13s %15s", width, "Column", "Missing_Count", "Missing_Percent")}
	for _, c := range r {
		lines = append(lines, fmt.Sprintf("%-*s %13d %15.2f", width, c.Name, c.Count, c.Percent))
	}
	return lines
}

// DetectMissing computes the per column null count and percentage.
func DetectMissing(t *model.Table) MissingReport {
	rows := t.NumRows()
	report := MissingReport{}
	if rows == 0 {
		return report
	}
	for _, c := range t.Columns() {
		n := c.NullCount()
		if n == 0 {
			continue
		}
		report = append(report, MissingColumn{
			Name:    c.Name(),
			Count:   n,
			Percent: roundTo2(float64(n) / float64(rows) * 100),
		})
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Count > report[j].Count
	})
	return report
}

// Fill records one filled column.
type Fill struct {
	// Column is the column name
	Column string
	// Method is median, mean or mode
	Method string
	// Value is the value written into null cells
	Value model.Value
	// Count is the number of cells filled
	Count int
}

// MissingResult summarizes HandleMissing.
type MissingResult struct {
	// Strategy is the requested strategy
	Strategy Strategy
	// Applied is false when the strategy was not recognized
	Applied bool
	// RowsDropped is the number of rows removed
	RowsDropped int
	// Fills lists every filled column in processing order
	Fills []Fill
	// DroppedFor lists the columns whose nulls caused row drops
	DroppedFor []string
}

// HandleMissing applies strategy to t and returns the new table.
// Under StrategySmart the missing percentage of each column is computed
// against the table left by the previous columns.
func HandleMissing(t *model.Table, strategy Strategy, policy Policy, j *Journal) (*model.Table, MissingResult) {
	result := MissingResult{Strategy: strategy, Applied: true}
	rowsBefore := t.NumRows()

	j.Add("")
	j.Add("--- HANDLING MISSING VALUES ---")
	j.Add("Strategy: %s", strategy)

	switch strategy {
	case StrategyDrop:
		t = dropRowsWithNull(t, -1)
		j.Add("Dropped all rows with missing values")
		j.Add("Rows removed: %d", rowsBefore-t.NumRows())

	case StrategySmart:
		t = handleSmart(t, policy, j, &result)

	case StrategyFillMean, StrategyFillMedian, StrategyFillMode:
		t = handleFill(t, strategy, j, &result)

	default:
		result.Applied = false
		j.Add("Unknown strategy: %s", strategy)
	}

	result.RowsDropped = rowsBefore - t.NumRows()
	j.Add("")
	j.Add("Rows after handling missing values: %d", t.NumRows())
	return t, result
}

func handleSmart(t *model.Table, policy Policy, j *Journal, result *MissingResult) *model.Table {
	for i := range t.NumColumns() {
		col := t.ColumnAt(i)
		missing := col.NullCount()
		if missing == 0 || t.NumRows() == 0 {
			continue
		}
		pct := float64(missing) / float64(t.NumRows()) * 100

		if col.Kind() == model.KindNumeric {
			if pct < policy.NumericFillThreshold {
				median, ok := columnMedian(col)
				if !ok {
					continue
				}
				if out, ok := fillColumn(t, col.Name(), "median", model.Number(median), j, result); ok {
					t = out
					j.Add("  ✓ Filled '%s' with median: %.2f", col.Name(), median)
				}
				continue
			}
			t = dropRowsWithNull(t, i)
			result.DroppedFor = append(result.DroppedFor, col.Name())
			j.Add("  ✓ Dropped rows with missing '%s' (%g%% or more missing)", col.Name(), policy.NumericFillThreshold)
			continue
		}

		if pct < policy.TextFillThreshold {
			mode, ok := columnMode(col)
			if !ok {
				mode = model.Text(unknownFill)
			}
			if out, ok := fillColumn(t, col.Name(), "mode", mode, j, result); ok {
				t = out
				j.Add("  ✓ Filled '%s' with mode: %s", col.Name(), mode)
			}
			continue
		}
		t = dropRowsWithNull(t, i)
		result.DroppedFor = append(result.DroppedFor, col.Name())
		j.Add("  ✓ Dropped rows with missing '%s' (%g%% or more missing)", col.Name(), policy.TextFillThreshold)
	}
	return t
}

func handleFill(t *model.Table, strategy Strategy, j *Journal, result *MissingResult) *model.Table {
	for i := range t.NumColumns() {
		col := t.ColumnAt(i)
		if col.NullCount() == 0 {
			continue
		}
		numeric := col.Kind() == model.KindNumeric

		switch {
		case strategy == StrategyFillMean && numeric:
			mean, ok := columnMean(col)
			if !ok {
				continue
			}
			if out, ok := fillColumn(t, col.Name(), "mean", model.Number(mean), j, result); ok {
				t = out
				j.Add("  ✓ Filled '%s' with mean: %.2f", col.Name(), mean)
			}

		case strategy == StrategyFillMedian && numeric:
			median, ok := columnMedian(col)
			if !ok {
				continue
			}
			if out, ok := fillColumn(t, col.Name(), "median", model.Number(median), j, result); ok {
				t = out
				j.Add("  ✓ Filled '%s' with median: %.2f", col.Name(), median)
			}

		case strategy == StrategyFillMode && !numeric:
			mode, ok := columnMode(col)
			if !ok {
				mode = model.Text(unknownFill)
			}
			if out, ok := fillColumn(t, col.Name(), "mode", mode, j, result); ok {
				t = out
				j.Add("  ✓ Filled '%s' with mode: %s", col.Name(), mode)
			}
		}
	}
	return t
}

// fillColumn replaces nulls of the named column with v. On failure the error is
// journaled and t is returned unchanged.
func fillColumn(t *model.Table, name, method string, v model.Value, j *Journal, result *MissingResult) (*model.Table, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		j.Add("  ✗ Could not fill '%s': %v", name, ErrUnknownColumn)
		return t, false
	}
	filled, n := fillNulls(t.ColumnAt(i), v)
	out, err := t.ReplaceColumn(i, filled)
	if err != nil {
		j.Add("  ✗ Could not fill '%s': %v", name, err)
		return t, false
	}
	result.Fills = append(result.Fills, Fill{Column: name, Method: method, Value: v, Count: n})
	return out, true
}

// fillNulls returns a copy of c where every null is v. A column without kind takes the kind of v.
func fillNulls(c *model.Column, v model.Value) (*model.Column, int) {
	values := c.Values()
	n := 0
	for i, x := range values {
		if x.IsNull() {
			values[i] = v
			n++
		}
	}
	kind := c.Kind()
	if kind == model.KindUnknown {
		kind = v.Kind()
	}
	return model.NewColumn(c.Name(), kind, values), n
}

// dropRowsWithNull keeps rows where the i-th column is not null; i < 0 checks every column
func dropRowsWithNull(t *model.Table, i int) *model.Table {
	keep := make([]int, 0, t.NumRows())
	for r := range t.NumRows() {
		if i >= 0 {
			if !t.ColumnAt(i).Value(r).IsNull() {
				keep = append(keep, r)
			}
			continue
		}
		if !slices.ContainsFunc(t.Row(r), model.Value.IsNull) {
			keep = append(keep, r)
		}
	}
	if len(keep) == t.NumRows() {
		return t
	}
	return t.SelectRows(keep)
}

// numbers returns the non-null numeric payloads of c
func numbers(c *model.Column) []float64 {
	nums := make([]float64, 0, c.Len())
	for i := range c.Len() {
		if f, ok := c.Value(i).Float(); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

func columnMedian(c *model.Column) (float64, bool) {
	return median(numbers(c))
}

func columnMean(c *model.Column) (float64, bool) {
	nums := numbers(c)
	if len(nums) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, f := range nums {
		sum += f
	}
	return sum / float64(len(nums)), true
}

// median averages the two middle values of an even sized sample
func median(nums []float64) (float64, bool) {
	if len(nums) == 0 {
		return 0, false
	}
	sorted := slices.Clone(nums)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// columnMode returns the most frequent non-null value, the smallest one on ties.
func columnMode(c *model.Column) (model.Value, bool) {
	return mode(c.Values())
}

func mode(values []model.Value) (model.Value, bool) {
	counts := make(map[string]int, len(values))
	var best model.Value
	bestCount := 0
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		counts[k]++
		n := counts[k]
		if n > bestCount || (n == bestCount && v.Compare(best) < 0) {
			best, bestCount = v, n
		}
	}
	return best, bestCount > 0
}

func roundTo2(f float64) float64 {
	return math.Round(f*100) / 100
}
