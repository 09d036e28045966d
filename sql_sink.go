package fileclean

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nao1215/fileclean/domain/model"
	"go.uber.org/zap"
)

// journalTable stores the audit journal of every session
const journalTable = "cleaning_log"

// SQLSink persists cleaned tables and journals into a SQL database.
// Any database/sql driver works; placeholders are rebound for the driver name
// ("sqlite" and "postgres" are used by the command).
type SQLSink struct {
	db     *sqlx.DB
	logger *zap.Logger
	clock  func() time.Time
}

// NewSQLSink wraps db. driverName is the name db was opened with.
func NewSQLSink(db *sql.DB, driverName string) *SQLSink {
	return &SQLSink{
		db:     sqlx.NewDb(db, driverName),
		logger: zap.NewNop(),
		clock:  time.Now,
	}
}

// WithLogger sets the diagnostics logger.
func (s *SQLSink) WithLogger(l *zap.Logger) *SQLSink {
	if l != nil {
		s.logger = l.Named("sql-sink")
	}
	return s
}

// quoteIdent quotes a SQL identifier
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnType returns the storage type of c for the connected database
func (s *SQLSink) columnType(c *model.Column) string {
	t := c.SQLType()
	if t == "REAL" && sqlx.BindType(s.db.DriverName()) == sqlx.DOLLAR {
		return "DOUBLE PRECISION"
	}
	return t
}

// placeholders returns "?, ?, ..." for n values
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// WriteTable replaces the database table named after t with the rows of t.
// Everything happens in one transaction.
func (s *SQLSink) WriteTable(ctx context.Context, t *model.Table) (err error) {
	ec := NewErrorContext("write table", "").WithTable(t.Name())
	if t.NumColumns() == 0 {
		return ec.Error(ErrEmptyData)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ec.Error(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction", zap.Error(rbErr), zap.NamedError("cause", err))
			}
		}
	}()

	columns := t.Columns()
	integral := make([]bool, len(columns))
	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		integral[i] = c.Kind() == model.KindNumeric && c.Integral()
		names[i] = quoteIdent(c.Name())
		defs[i] = names[i] + " " + s.columnType(c)
	}

	table := quoteIdent(t.Name())
	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return ec.Error(fmt.Errorf("failed to drop table: %w", err))
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return ec.Error(fmt.Errorf("failed to create table: %w", err))
	}

	query := s.db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), placeholders(len(columns))))
	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return ec.Error(fmt.Errorf("failed to prepare statement: %w", err))
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for r := range t.NumRows() {
		for i, v := range t.Row(r) {
			args[i] = sqlValue(v, integral[i])
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return ec.Error(fmt.Errorf("failed to insert row %d: %w", r+1, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return ec.Error(fmt.Errorf("failed to commit transaction: %w", err))
	}
	s.logger.Info("Wrote cleaned table", zap.String("table", t.Name()), zap.Int("rows", t.NumRows()))
	return nil
}

// sqlValue converts a cell to a driver argument
func sqlValue(v model.Value, integral bool) any {
	switch v.Kind() {
	case model.KindNumeric:
		f, _ := v.Float()
		if integral {
			return int64(f)
		}
		return f
	case model.KindText, model.KindDatetime:
		return v.String()
	default:
		return nil
	}
}

// WriteJournal appends the journal lines of one session to the cleaning_log table.
func (s *SQLSink) WriteJournal(ctx context.Context, sessionID string, lines []string) (err error) {
	ec := NewErrorContext("write journal", "").WithTable(journalTable)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ec.Error(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction", zap.Error(rbErr), zap.NamedError("cause", err))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+journalTable+` (
		session_id TEXT NOT NULL,
		line_no INTEGER NOT NULL,
		message TEXT NOT NULL,
		logged_at TEXT NOT NULL
	)`); err != nil {
		return ec.Error(fmt.Errorf("failed to create table: %w", err))
	}

	stmt, err := tx.PreparexContext(ctx, s.db.Rebind(
		`INSERT INTO `+journalTable+` (session_id, line_no, message, logged_at) VALUES (?, ?, ?, ?)`))
	if err != nil {
		return ec.Error(fmt.Errorf("failed to prepare statement: %w", err))
	}
	defer stmt.Close()

	loggedAt := s.clock().UTC().Format(time.RFC3339)
	for i, line := range lines {
		if _, err = stmt.ExecContext(ctx, sessionID, i+1, line, loggedAt); err != nil {
			return ec.Error(fmt.Errorf("failed to insert journal line: %w", err))
		}
	}

	if err = tx.Commit(); err != nil {
		return ec.Error(fmt.Errorf("failed to commit transaction: %w", err))
	}
	s.logger.Info("Recorded cleaning journal", zap.String("session", sessionID), zap.Int("count", len(lines)))
	return nil
}
