// Package config loads the fileclean command configuration from defaults,
// an optional YAML file and FILECLEAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/nao1215/fileclean"
	"github.com/nao1215/fileclean/domain/model"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "FILECLEAN"

// dateLayout is the layout of Cleaning.FallbackDate
const dateLayout = "2006-01-02"

// Config represents the complete command configuration
type Config struct {
	Cleaning CleaningConfig `yaml:"cleaning" envconfig:"CLEANING"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// CleaningConfig contains the pipeline parameters and the decision policy
type CleaningConfig struct {
	Strategy             fileclean.Strategy `yaml:"strategy" envconfig:"STRATEGY" validate:"oneof=smart drop fill_mean fill_median fill_mode"`
	Keep                 fileclean.Keep     `yaml:"keep" envconfig:"KEEP" validate:"oneof=first last none"`
	KeyColumns           []string           `yaml:"key_columns" envconfig:"KEY_COLUMNS" validate:"dive,required"`
	NumericFillThreshold float64            `yaml:"numeric_fill_threshold" envconfig:"NUMERIC_FILL_THRESHOLD" validate:"min=0,max=100"`
	TextFillThreshold    float64            `yaml:"text_fill_threshold" envconfig:"TEXT_FILL_THRESHOLD" validate:"min=0,max=100"`
	FallbackDate         string             `yaml:"fallback_date" envconfig:"FALLBACK_DATE" validate:"datetime=2006-01-02"`
	NumericColumns       []string           `yaml:"numeric_columns" envconfig:"NUMERIC_COLUMNS"`
	DateMarker           string             `yaml:"date_marker" envconfig:"DATE_MARKER"`
	EmailMarker          string             `yaml:"email_marker" envconfig:"EMAIL_MARKER"`
	NullMarkers          []string           `yaml:"null_markers" envconfig:"NULL_MARKERS"`
	Encoding             string             `yaml:"encoding" envconfig:"ENCODING"`
}

// OutputConfig contains the optional sinks besides the output file
type OutputConfig struct {
	LogPath     string `yaml:"log_path" envconfig:"LOG_PATH"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SQLDriver   string `yaml:"sql_driver" envconfig:"SQL_DRIVER" validate:"omitempty,oneof=sqlite postgres"`
	SQLDSN      string `yaml:"sql_dsn" envconfig:"SQL_DSN" validate:"required_with=SQLDriver"`
}

// LoggingConfig contains diagnostic logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json console"`
}

// Default returns the configuration of the canonical cleaning run.
func Default() Config {
	policy := fileclean.DefaultPolicy()
	return Config{
		Cleaning: CleaningConfig{
			Strategy:             fileclean.StrategySmart,
			Keep:                 fileclean.KeepFirst,
			KeyColumns:           []string{"Customer ID"},
			NumericFillThreshold: policy.NumericFillThreshold,
			TextFillThreshold:    policy.TextFillThreshold,
			FallbackDate:         policy.FallbackDate.Format(dateLayout),
			NumericColumns:       slices.Clone(policy.NumericColumns),
			DateMarker:           policy.DateMarker,
			EmailMarker:          policy.EmailMarker,
			NullMarkers:          slices.Clone(model.DefaultNullMarkers),
		},
		Output: OutputConfig{
			LogPath: "cleaning_log.txt",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration. Values are taken from Default, then from the
// YAML file at path when path is not empty, then from environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		msgs := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("%s: failed on '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

// Policy maps the cleaning section to a fileclean.Policy.
func (c *Config) Policy() (fileclean.Policy, error) {
	fallback, err := time.ParseInLocation(dateLayout, c.Cleaning.FallbackDate, time.UTC)
	if err != nil {
		return fileclean.Policy{}, fmt.Errorf("invalid fallback date %q: %w", c.Cleaning.FallbackDate, err)
	}
	return fileclean.Policy{
		NumericFillThreshold: c.Cleaning.NumericFillThreshold,
		TextFillThreshold:    c.Cleaning.TextFillThreshold,
		FallbackDate:         fallback,
		NumericColumns:       c.Cleaning.NumericColumns,
		DateMarker:           c.Cleaning.DateMarker,
		EmailMarker:          c.Cleaning.EmailMarker,
	}, nil
}

// LoadOptions maps the null markers and the encoding to fileclean.LoadOptions.
func (c *Config) LoadOptions() fileclean.LoadOptions {
	return fileclean.NewLoadOptions().
		WithNullMarkers(c.Cleaning.NullMarkers...).
		WithEncoding(c.Cleaning.Encoding)
}
