package fileclean

import (
	"fmt"
	"strings"
)

// banner separates journal sections
var banner = strings.Repeat("=", 70)

// Journal is an append-only list of human readable audit lines.
// A nil *Journal discards everything written to it.
type Journal struct {
	lines []string
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Add appends one formatted line.
func (j *Journal) Add(format string, args ...any) {
	if j == nil {
		return
	}
	j.lines = append(j.lines, fmt.Sprintf(format, args...))
}

// section appends a banner framed title
func (j *Journal) section(title string) {
	j.Add("")
	j.Add("%s", banner)
	j.Add("%s", title)
	j.Add("%s", banner)
}

// Len returns the number of lines.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.lines)
}

// Lines returns a copy of the journal.
func (j *Journal) Lines() []string {
	if j == nil {
		return nil
	}
	lines := make([]string, len(j.lines))
	copy(lines, j.lines)
	return lines
}

// String renders the journal newline-joined.
func (j *Journal) String() string {
	return strings.Join(j.Lines(), "\n")
}
