package fileclean

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nao1215/fileclean/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	_ "modernc.org/sqlite" // sqlite driver
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "fileclean.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestSQLSink_WriteTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	core, logs := observer.New(zap.InfoLevel)
	sink := NewSQLSink(db, "sqlite").WithLogger(zap.New(core))

	require.NoError(t, sink.WriteTable(ctx, cleanTable(t, "customers")))
	assert.Equal(t, 1, logs.FilterMessage("Wrote cleaned table").Len())

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count))
	assert.Equal(t, 3, count)

	rows, err := db.QueryContext(ctx, `SELECT typeof(id), typeof(amount), typeof(name), typeof(joined) FROM customers ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var got [][]string
	for rows.Next() {
		row := make([]string, 4)
		require.NoError(t, rows.Scan(&row[0], &row[1], &row[2], &row[3]))
		got = append(got, row)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, [][]string{
		{"integer", "real", "text", "text"},
		{"integer", "null", "text", "null"},
		{"integer", "real", "null", "text"},
	}, got)

	var joined string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT joined FROM customers WHERE id = 1`).Scan(&joined))
	assert.Equal(t, "2023-05-15", joined)

	// writing again replaces the table
	smaller := cleanTable(t, "customers").SelectRows([]int{0})
	require.NoError(t, sink.WriteTable(ctx, smaller))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLSink_WriteTable_LargeIntegers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	sink := NewSQLSink(db, "sqlite")

	table := newTestTable(t, numericColumn("id", 1, 2), numericColumn("big", 1e19, 1.0))
	big, _ := table.Column("big")
	assert.Equal(t, "REAL", sink.columnType(big))
	require.NoError(t, sink.WriteTable(ctx, table))

	var kind string
	var got float64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT typeof(big), big FROM test WHERE id = 1`).Scan(&kind, &got))
	assert.Equal(t, "real", kind)
	assert.InDelta(t, 1e19, got, 1)
	assert.Equal(t, 1e19, sqlValue(model.Number(1e19), big.Integral()))
}

func TestSQLSink_WriteTable_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := NewSQLSink(openTestDB(t), "sqlite")

	empty, err := model.NewTable("nothing")
	require.NoError(t, err)
	require.ErrorIs(t, sink.WriteTable(ctx, empty), ErrEmptyData)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, sink.WriteTable(canceled, cleanTable(t, "customers")))
}

func TestSQLSink_WriteJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	sink := NewSQLSink(db, "sqlite")
	sink.clock = fixedClock(sessionStart)

	s := NewSession(loadDirty(t))
	s.Run(StrategySmart, KeepFirst, "Customer ID")
	lines := s.Log()

	require.NoError(t, sink.WriteJournal(ctx, s.ID().String(), lines))
	require.NoError(t, sink.WriteJournal(ctx, "other-session", []string{"one line"}))

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cleaning_log WHERE session_id = ?`, s.ID().String()).Scan(&count))
	assert.Equal(t, len(lines), count)

	var message, loggedAt string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT message, logged_at FROM cleaning_log WHERE session_id = ? AND line_no = 2`, s.ID().String()).Scan(&message, &loggedAt))
	assert.Equal(t, "DATA CLEANING LOG", message)
	assert.Equal(t, "2024-03-01T09:30:00Z", loggedAt)

	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cleaning_log`).Scan(&count))
	assert.Equal(t, len(lines)+1, count)
}

func TestSQLSink_ColumnType(t *testing.T) {
	t.Parallel()

	fraction := numericColumn("amount", 1.5)
	whole := numericColumn("id", 1)
	text := textColumn("name", "a")

	sqlite := NewSQLSink(nil, "sqlite")
	assert.Equal(t, "REAL", sqlite.columnType(fraction))
	assert.Equal(t, "INTEGER", sqlite.columnType(whole))
	assert.Equal(t, "TEXT", sqlite.columnType(text))

	postgres := NewSQLSink(nil, "postgres")
	assert.Equal(t, "DOUBLE PRECISION", postgres.columnType(fraction))
	assert.Equal(t, "INTEGER", postgres.columnType(whole))

	assert.Equal(t, "?, ?, ?", placeholders(3))
	assert.Equal(t, `"a ""b"""`, quoteIdent(`a "b"`))
}
