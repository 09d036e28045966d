package fileclean

import (
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/fileclean/domain/model"
	"go.uber.org/zap"
)

// State is the last stage a session executed. Stages may run in any order,
// the state only records what happened last.
type State int

const (
	// StateInitialized is the state of a new session
	StateInitialized State = iota
	// StateMissingHandled follows HandleMissingValues
	StateMissingHandled
	// StateTypesFixed follows FixDataTypes
	StateTypesFixed
	// StateDeduplicated follows RemoveDuplicates
	StateDeduplicated
	// StateNamesStandardized follows StandardizeColumnNames
	StateNamesStandardized
	// StateTextStandardized follows StandardizeTextData
	StateTextStandardized
	// StateReported follows GenerateReport
	StateReported
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateMissingHandled:
		return "missing_handled"
	case StateTypesFixed:
		return "types_fixed"
	case StateDeduplicated:
		return "deduplicated"
	case StateNamesStandardized:
		return "names_standardized"
	case StateTextStandardized:
		return "text_standardized"
	case StateReported:
		return "reported"
	default:
		return "unknown"
	}
}

// Session is one cleaning run over one table. It keeps the original table,
// the current table and the audit journal. A Session is not safe for concurrent use.
type Session struct {
	id       uuid.UUID
	original *model.Table
	table    *model.Table
	journal  *Journal
	state    State

	policy  Policy
	logger  *zap.Logger
	metrics *Metrics
	clock   func() time.Time

	startedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithPolicy sets the cleaning policy.
func WithPolicy(p Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithLogger sets the diagnostics logger. The journal is not affected.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithClock sets the time source used for journal timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSession starts a cleaning run over t and writes the journal header.
func NewSession(t *model.Table, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		original: t,
		table:    t,
		journal:  NewJournal(),
		state:    StateInitialized,
		policy:   DefaultPolicy(),
		logger:   zap.NewNop(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("fileclean").With(zap.String("session", s.id.String()))
	s.startedAt = s.clock()

	rows, cols := t.Shape()
	s.journal.Add("%s", banner)
	s.journal.Add("DATA CLEANING LOG")
	s.journal.Add("Started at: %s", s.startedAt.Format(timestampLayout))
	s.journal.Add("Session: %s", s.id)
	s.journal.Add("%s", banner)
	s.journal.Add("")
	s.journal.Add("Original Dataset Shape: (%d, %d)", rows, cols)
	s.journal.Add("Original Columns: %s", formatNames(t.Header()))

	s.logger.Info("cleaning session started", zap.Int("rows", rows), zap.Int("columns", cols))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Table returns the current table.
func (s *Session) Table() *model.Table {
	return s.table
}

// Original returns the table the session started with.
func (s *Session) Original() *model.Table {
	return s.original
}

// Log returns a copy of the journal lines.
func (s *Session) Log() []string {
	return s.journal.Lines()
}

// State returns the last executed stage.
func (s *Session) State() State {
	return s.state
}

// done records diagnostics for a finished stage
func (s *Session) done(stage string, start time.Time, rowsBefore int) {
	s.logger.Debug("stage finished",
		zap.String("stage", stage),
		zap.Int("rows_before", rowsBefore),
		zap.Int("rows_after", s.table.NumRows()),
		zap.Duration("duration", time.Since(start)))
}

// DetectMissingValues logs and returns the missing value report of the current table.
func (s *Session) DetectMissingValues() MissingReport {
	s.journal.section("1. DETECTING MISSING VALUES")

	report := DetectMissing(s.table)
	s.journal.Add("")
	if len(report) == 0 {
		s.journal.Add("✓ No missing values found")
		return report
	}
	s.journal.Add("Found missing values in %d columns:", len(report))
	for _, line := range report.lines() {
		s.journal.Add("%s", line)
	}
	return report
}

// HandleMissingValues applies strategy to the current table.
func (s *Session) HandleMissingValues(strategy Strategy) MissingResult {
	start, before := time.Now(), s.table.NumRows()

	table, result := HandleMissing(s.table, strategy, s.policy, s.journal)
	s.table = table
	s.state = StateMissingHandled

	filled := 0
	for _, f := range result.Fills {
		filled += f.Count
	}
	if !result.Applied {
		s.logger.Warn("unknown missing value strategy", zap.String("strategy", string(strategy)))
	}
	s.metrics.observe(stageMissing, result.RowsDropped, filled, 0)
	s.done(stageMissing, start, before)
	return result
}

// FixDataTypes coerces numeric columns and parses date columns.
func (s *Session) FixDataTypes() NormalizeResult {
	start, before := time.Now(), s.table.NumRows()
	s.journal.section("2. FIXING INCORRECT DATA TYPES")

	table, result := NormalizeTypes(s.table, s.policy, s.journal)
	s.table = table
	s.state = StateTypesFixed

	for _, name := range result.Failed {
		s.logger.Warn("column left unmodified", zap.String("column", name))
	}
	s.metrics.observe(stageTypes, 0, result.Filled, result.Nullified)
	s.done(stageTypes, start, before)
	return result
}

// RemoveDuplicates removes rows sharing the key built from keyColumns, or the whole row.
func (s *Session) RemoveDuplicates(keep Keep, keyColumns ...string) DuplicateResult {
	start, before := time.Now(), s.table.NumRows()
	s.journal.section("3. REMOVING DUPLICATES")

	table, result := RemoveDuplicates(s.table, keep, keyColumns, s.journal)
	s.table = table
	s.state = StateDeduplicated

	s.metrics.observe(stageDuplicates, result.Removed, 0, 0)
	s.done(stageDuplicates, start, before)
	return result
}

// StandardizeColumnNames rewrites every column name.
func (s *Session) StandardizeColumnNames() NameResult {
	start, before := time.Now(), s.table.NumRows()
	s.journal.section("4. STANDARDIZING COLUMN NAMES")

	table, result := StandardizeNames(s.table, s.journal)
	s.table = table
	s.state = StateNamesStandardized

	if len(result.Collisions) > 0 {
		s.logger.Warn("column names collide after standardization", zap.Strings("columns", result.Collisions))
	}
	s.metrics.observe(stageNames, 0, 0, 0)
	s.done(stageNames, start, before)
	return result
}

// StandardizeTextData trims and re-cases every text column.
func (s *Session) StandardizeTextData() TextResult {
	start, before := time.Now(), s.table.NumRows()
	s.journal.section("5. STANDARDIZING TEXT DATA")

	table, result := StandardizeText(s.table, s.policy, s.journal)
	s.table = table
	s.state = StateTextStandardized

	s.metrics.observe(stageText, 0, 0, 0)
	s.done(stageText, start, before)
	return result
}

// GenerateReport compares the original and the current table and logs the summary footer.
func (s *Session) GenerateReport() Report {
	report := NewReport(s.original, s.table, s.startedAt, s.clock())
	report.write(s.journal)
	s.state = StateReported

	s.metrics.observe(stageReport, 0, 0, 0)
	s.logger.Info("cleaning session finished",
		zap.Int("rows_removed", report.RowsRemoved),
		zap.Int("missing_values", report.CleanedMissing))
	return report
}

// Run executes the canonical pipeline: detect and handle missing values,
// fix types, remove duplicates, standardize names and text, then report.
func (s *Session) Run(strategy Strategy, keep Keep, keyColumns ...string) Report {
	s.DetectMissingValues()
	s.HandleMissingValues(strategy)
	s.FixDataTypes()
	s.RemoveDuplicates(keep, keyColumns...)
	s.StandardizeColumnNames()
	s.StandardizeTextData()
	return s.GenerateReport()
}
