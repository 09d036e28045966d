package fileclean

import (
	"time"

	"github.com/nao1215/fileclean/domain/model"
)

// timestampLayout renders journal timestamps
const timestampLayout = "2006-01-02 15:04:05"

// Report compares the original and the cleaned table.
type Report struct {
	OriginalRows    int
	OriginalColumns int
	OriginalMissing int

	CleanedRows    int
	CleanedColumns int
	CleanedMissing int

	// RowsRemoved is OriginalRows minus CleanedRows
	RowsRemoved int
	// RowsRemovedPercent is relative to OriginalRows; 0 when the original is empty
	RowsRemovedPercent float64

	StartedAt  time.Time
	FinishedAt time.Time
}

// NewReport builds a report from the two snapshots.
func NewReport(original, cleaned *model.Table, startedAt, finishedAt time.Time) Report {
	r := Report{
		OriginalRows:    original.NumRows(),
		OriginalColumns: original.NumColumns(),
		OriginalMissing: original.NullCount(),
		CleanedRows:     cleaned.NumRows(),
		CleanedColumns:  cleaned.NumColumns(),
		CleanedMissing:  cleaned.NullCount(),
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
	}
	r.RowsRemoved = r.OriginalRows - r.CleanedRows
	if r.OriginalRows > 0 {
		r.RowsRemovedPercent = float64(r.RowsRemoved) / float64(r.OriginalRows) * 100
	}
	return r
}

// write appends the summary footer to j
func (r Report) write(j *Journal) {
	j.section("CLEANING SUMMARY")

	j.Add("")
	j.Add("Original Dataset:")
	j.Add("  Rows: %d", r.OriginalRows)
	j.Add("  Columns: %d", r.OriginalColumns)
	j.Add("  Missing Values: %d", r.OriginalMissing)

	j.Add("")
	j.Add("Cleaned Dataset:")
	j.Add("  Rows: %d", r.CleanedRows)
	j.Add("  Columns: %d", r.CleanedColumns)
	j.Add("  Missing Values: %d", r.CleanedMissing)

	j.Add("")
	j.Add("Rows Removed: %d (%.2f%%)", r.RowsRemoved, r.RowsRemovedPercent)

	j.Add("")
	j.Add("Cleaned at: %s", r.FinishedAt.Format(timestampLayout))
	j.Add("%s", banner)
}
