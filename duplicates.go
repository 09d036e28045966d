package fileclean

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/fileclean/domain/model"
)

// Keep selects which occurrence of a duplicated key survives.
type Keep string

const (
	// KeepFirst keeps the earliest occurrence
	KeepFirst Keep = "first"
	// KeepLast keeps the latest occurrence
	KeepLast Keep = "last"
	// KeepNone removes every row sharing a repeated key
	KeepNone Keep = "none"
)

// IsValid reports whether k is a known retention rule.
func (k Keep) IsValid() bool {
	return k == KeepFirst || k == KeepLast || k == KeepNone
}

// DuplicateResult summarizes RemoveDuplicates.
type DuplicateResult struct {
	// Applied is false when the key or the retention rule was rejected
	Applied bool
	// Involved counts every row whose key appears at least twice
	Involved int
	// Removed counts the rows actually removed
	Removed int
}

// RemoveDuplicates removes rows sharing a key. The key is the projection on
// keyColumns, or the whole row when keyColumns is empty.
func RemoveDuplicates(t *model.Table, keep Keep, keyColumns []string, j *Journal) (*model.Table, DuplicateResult) {
	var result DuplicateResult

	j.Add("")
	if len(keyColumns) > 0 {
		j.Add("Checking duplicates based on: [%s]", strings.Join(keyColumns, ", "))
	} else {
		j.Add("Checking duplicates based on all columns")
	}

	if !keep.IsValid() {
		j.Add("Unknown keep rule: %s", keep)
		j.Add("Rows after removing duplicates: %d", t.NumRows())
		return t, result
	}

	indices, err := keyIndices(t, keyColumns)
	if err != nil {
		j.Add("✗ Could not check duplicates: %v", err)
		j.Add("Rows after removing duplicates: %d", t.NumRows())
		return t, result
	}
	result.Applied = true

	keys := make([]string, t.NumRows())
	counts := make(map[string]int, t.NumRows())
	for r := range t.NumRows() {
		keys[r] = rowKey(t, r, indices)
		counts[keys[r]]++
	}

	var involved []int
	for r, k := range keys {
		if counts[k] > 1 {
			involved = append(involved, r)
		}
	}
	result.Involved = len(involved)

	if result.Involved == 0 {
		j.Add("")
		j.Add("✓ No duplicate rows found")
		j.Add("Rows after removing duplicates: %d", t.NumRows())
		return t, result
	}

	j.Add("Found %d duplicate rows:", result.Involved)
	for _, line := range renderRows(t, involved) {
		j.Add("%s", line)
	}

	keepRows := retainedRows(keys, counts, keep)
	out := t.SelectRows(keepRows)
	result.Removed = t.NumRows() - out.NumRows()

	j.Add("")
	j.Add("✓ Removed %d duplicate rows (keeping '%s')", result.Removed, keep)
	j.Add("Rows after removing duplicates: %d", out.NumRows())
	return out, result
}

// keyIndices resolves key column names; empty means every column
func keyIndices(t *model.Table, keyColumns []string) ([]int, error) {
	if len(keyColumns) == 0 {
		indices := make([]int, t.NumColumns())
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}
	indices := make([]int, 0, len(keyColumns))
	for _, name := range keyColumns {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// rowKey joins the value keys of row r. Each key is prefixed with its length
// so that no text value can shift the boundary between two cells.
func rowKey(t *model.Table, r int, indices []int) string {
	var b strings.Builder
	for _, i := range indices {
		k := t.ColumnAt(i).Value(r).Key()
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}

// retainedRows returns, in order, the rows that survive under keep
func retainedRows(keys []string, counts map[string]int, keep Keep) []int {
	rows := make([]int, 0, len(keys))
	seen := make(map[string]int, len(counts))
	for r, k := range keys {
		seen[k]++
		switch keep {
		case KeepFirst:
			if seen[k] == 1 {
				rows = append(rows, r)
			}
		case KeepLast:
			if seen[k] == counts[k] {
				rows = append(rows, r)
			}
		case KeepNone:
			if counts[k] == 1 {
				rows = append(rows, r)
			}
		}
	}
	return rows
}

// renderRows renders a header and the given rows as aligned text
func renderRows(t *model.Table, rows []int) []string {
	header := append([]string{""}, t.Header()...)
	cells := [][]string{header}
	for _, r := range rows {
		line := []string{fmt.Sprint(r)}
		for _, v := range t.Row(r) {
			line = append(line, v.String())
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(header))
	for _, line := range cells {
		for c, s := range line {
			widths[c] = max(widths[c], len([]rune(s)))
		}
	}

	lines := make([]string, 0, len(cells))
	for _, line := range cells {
		padded := slices.Clone(line)
		for c, s := range padded {
			padded[c] = s + strings.Repeat(" ", widths[c]-len([]rune(s)))
		}
		lines = append(lines, strings.TrimRight(strings.Join(padded, "  "), " "))
	}
	return lines
}
