package fileclean

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nao1215/fileclean/domain/model"
)

// NameChange is one renamed column.
type NameChange struct {
	Old string
	New string
}

// NameResult summarizes StandardizeNames.
type NameResult struct {
	// Changes lists the renamed columns in column order
	Changes []NameChange
	// Collisions lists the names that had to be suffixed
	Collisions []string
}

// StandardizeName trims, lowercases, turns spaces and hyphens into
// underscores and strips anything that is not a letter, digit or underscore.
func StandardizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ' || r == '-':
			b.WriteRune('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StandardizeNames renames every column at once. When two names collapse to
// the same identifier the later columns get _2, _3, ... suffixes.
func StandardizeNames(t *model.Table, j *Journal) (*model.Table, NameResult) {
	var result NameResult
	header := t.Header()

	j.Add("")
	j.Add("Original Column Names:")
	j.Add("  %s", formatNames(header))

	names := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, old := range header {
		taken[StandardizeName(old)] = true
		names[i] = StandardizeName(old)
	}

	used := make(map[string]bool, len(header))
	for i, name := range names {
		if !used[name] {
			used[name] = true
			continue
		}
		candidate := name
		for n := 2; used[candidate] || taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[candidate] = true
		names[i] = candidate
		result.Collisions = append(result.Collisions, header[i])
	}

	out, err := t.Rename(names)
	if err != nil {
		// names are unique by construction
		j.Add("✗ Could not rename columns: %v", err)
		return t, NameResult{}
	}

	j.Add("")
	j.Add("Standardized Column Names:")
	j.Add("  %s", formatNames(out.Header()))

	for i, old := range header {
		if old != names[i] {
			result.Changes = append(result.Changes, NameChange{Old: old, New: names[i]})
		}
	}
	if len(result.Changes) > 0 {
		j.Add("")
		j.Add("Changes made:")
		for _, c := range result.Changes {
			j.Add("  '%s' → '%s'", c.Old, c.New)
		}
	}
	for _, old := range result.Collisions {
		j.Add("  ⚠ '%s' collides with another column after standardization, suffix added", old)
	}
	return out, result
}

func formatNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
