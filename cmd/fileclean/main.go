// Command fileclean cleans a tabular file and writes the cleaned table and a cleaning log.
//
// Usage:
//
//	fileclean [flags] INPUT OUTPUT
//
// Settings are read from defaults, the -config YAML file, the -env file,
// FILECLEAN_* environment variables and flags, the later overriding the earlier.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // postgres driver
	"github.com/nao1215/fileclean"
	"github.com/nao1215/fileclean/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite" // sqlite driver
)

// Version is set at build time.
var Version = "dev"

// Exit codes
const (
	exitOK    = 0
	exitIO    = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds the command line values. Only flags given explicitly override the configuration.
type flags struct {
	configPath  string
	envPath     string
	logPath     string
	strategy    string
	keep        string
	key         string
	sqlDriver   string
	sqlDSN      string
	metricsFile string
	version     bool
	set         map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	f := &flags{set: map[string]bool{}}
	fset := flag.NewFlagSet("fileclean", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprintln(stderr, "usage: fileclean [flags] INPUT OUTPUT")
		fset.PrintDefaults()
	}

	fset.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fset.StringVar(&f.envPath, "env", ".env", "dotenv file loaded into the environment when it exists")
	fset.StringVar(&f.logPath, "log", "", "cleaning log file (empty with -log= disables it)")
	fset.StringVar(&f.strategy, "strategy", "", "missing value strategy: smart, drop, fill_mean, fill_median or fill_mode")
	fset.StringVar(&f.keep, "keep", "", "duplicate retention: first, last or none")
	fset.StringVar(&f.key, "key", "", "comma separated duplicate key columns (empty means every column)")
	fset.StringVar(&f.sqlDriver, "sql-driver", "", "also write the table and log to a database: sqlite or postgres")
	fset.StringVar(&f.sqlDSN, "sql-dsn", "", "data source name for -sql-driver")
	fset.StringVar(&f.metricsFile, "metrics-file", "", "write stage metrics in the Prometheus text format")
	fset.BoolVar(&f.version, "version", false, "print the version and exit")

	if err := fset.Parse(args); err != nil {
		return nil, nil, err
	}
	fset.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return f, fset.Args(), nil
}

// apply overrides cfg with the flags given on the command line
func (f *flags) apply(cfg *config.Config) {
	if f.set["log"] {
		cfg.Output.LogPath = f.logPath
	}
	if f.set["strategy"] {
		cfg.Cleaning.Strategy = fileclean.Strategy(f.strategy)
	}
	if f.set["keep"] {
		cfg.Cleaning.Keep = fileclean.Keep(f.keep)
	}
	if f.set["key"] {
		cfg.Cleaning.KeyColumns = splitList(f.key)
	}
	if f.set["sql-driver"] {
		cfg.Output.SQLDriver = f.sqlDriver
	}
	if f.set["sql-dsn"] {
		cfg.Output.SQLDSN = f.sqlDSN
	}
	if f.set["metrics-file"] {
		cfg.Output.MetricsFile = f.metricsFile
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// newLogger builds the diagnostics logger from the logging configuration
func newLogger(cfg config.LoggingConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if f.version {
		fmt.Fprintf(stdout, "fileclean %s\n", Version)
		return exitOK
	}
	if len(rest) != 2 {
		fmt.Fprintln(stderr, "usage: fileclean [flags] INPUT OUTPUT")
		return exitUsage
	}
	input, output := rest[0], rest[1]

	if err := loadDotEnv(f.envPath); err != nil {
		fmt.Fprintf(stderr, "fileclean: failed to load %s: %v\n", f.envPath, err)
		return exitUsage
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "fileclean: %v\n", err)
		return exitUsage
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "fileclean: invalid flags: %v\n", err)
		return exitUsage
	}
	policy, err := cfg.Policy()
	if err != nil {
		fmt.Fprintf(stderr, "fileclean: %v\n", err)
		return exitUsage
	}

	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "fileclean: %v\n", err)
		return exitUsage
	}
	defer func() {
		_ = logger.Sync() // Ignore sync errors on console outputs
	}()

	opts := []fileclean.Option{
		fileclean.WithPolicy(policy),
		fileclean.WithLogger(logger),
	}
	var registry *prometheus.Registry
	if cfg.Output.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, fileclean.WithMetrics(fileclean.NewMetrics(registry)))
	}

	session, report, err := fileclean.CleanFile(fileclean.CleanFileOptions{
		Input:      input,
		Output:     output,
		LogPath:    cfg.Output.LogPath,
		Strategy:   cfg.Cleaning.Strategy,
		Keep:       cfg.Cleaning.Keep,
		KeyColumns: cfg.Cleaning.KeyColumns,
		Load:       cfg.LoadOptions(),
	}, opts...)
	if err != nil {
		logger.Error("cleaning failed", zap.Error(err))
		fmt.Fprintf(stderr, "%v\n", err)
		return exitIO
	}

	if cfg.Output.SQLDriver != "" {
		if err := writeSQL(ctx, cfg.Output, session, logger); err != nil {
			logger.Error("failed to write to database", zap.String("driver", cfg.Output.SQLDriver), zap.Error(err))
			fmt.Fprintf(stderr, "%v\n", err)
			return exitIO
		}
	}
	if registry != nil {
		if err := prometheus.WriteToTextfile(cfg.Output.MetricsFile, registry); err != nil {
			fmt.Fprintf(stderr, "fileclean: failed to write metrics: %v\n", err)
			return exitIO
		}
	}

	fmt.Fprintf(stdout, "cleaned %s -> %s: %d rows, %d columns (%d rows removed, %.2f%%)\n",
		input, output, report.CleanedRows, report.CleanedColumns, report.RowsRemoved, report.RowsRemovedPercent)
	return exitOK
}

// writeSQL stores the cleaned table and the journal of session in the configured database
func writeSQL(ctx context.Context, cfg config.OutputConfig, session *fileclean.Session, logger *zap.Logger) error {
	db, err := sql.Open(cfg.SQLDriver, cfg.SQLDSN)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", cfg.SQLDriver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", cfg.SQLDriver, err)
	}

	sink := fileclean.NewSQLSink(db, cfg.SQLDriver).WithLogger(logger)
	if err := sink.WriteTable(ctx, session.Table()); err != nil {
		return err
	}
	return sink.WriteJournal(ctx, session.ID().String(), session.Log())
}
