package fileclean

import (
	"strings"

	"github.com/nao1215/fileclean/domain/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextResult summarizes StandardizeText.
type TextResult struct {
	// Lowercased lists the email columns
	Lowercased []string
	// TitleCased lists the other text columns
	TitleCased []string
	// Changed counts the values that differ after standardization
	Changed int
}

// StandardizeText trims every value of the text columns, then lowercases
// email columns and title-cases the others. Nulls and other kinds are untouched.
func StandardizeText(t *model.Table, policy Policy, j *Journal) (*model.Table, TextResult) {
	var result TextResult
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	j.Add("")
	for i := range t.NumColumns() {
		col := t.ColumnAt(i)
		if col.Kind() != model.KindText {
			continue
		}

		email := policy.isEmailColumn(col.Name())
		values := col.Values()
		for r, v := range values {
			s, ok := v.Str()
			if !ok {
				continue
			}
			trimmed := strings.TrimSpace(s)
			if email {
				trimmed = lower.String(trimmed)
			} else {
				trimmed = title.String(trimmed)
			}
			if trimmed != s {
				result.Changed++
			}
			values[r] = model.Text(trimmed)
		}

		out, err := t.ReplaceColumn(i, model.NewColumn(col.Name(), col.Kind(), values))
		if err != nil {
			j.Add("✗ Could not standardize '%s': %v", col.Name(), err)
			continue
		}
		t = out

		if email {
			result.Lowercased = append(result.Lowercased, col.Name())
			j.Add("✓ Standardized '%s' (lowercase, trimmed)", col.Name())
		} else {
			result.TitleCased = append(result.TitleCased, col.Name())
			j.Add("✓ Standardized '%s' (title case, trimmed)", col.Name())
		}
	}
	if len(result.Lowercased)+len(result.TitleCased) == 0 {
		j.Add("✓ No text columns to standardize")
	}
	return t, result
}
