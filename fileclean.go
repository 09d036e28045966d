package fileclean

import "github.com/nao1215/fileclean/domain/model"

// CleanFileOptions describes one run of the canonical pipeline over files.
type CleanFileOptions struct {
	// Input is the dirty table
	Input string
	// Output receives the cleaned table; its extension selects the format
	Output string
	// LogPath receives the cleaning log; empty skips the log file
	LogPath string
	// Strategy is the missing value strategy
	Strategy Strategy
	// Keep is the duplicate retention rule
	Keep Keep
	// KeyColumns is the duplicate key; empty means every column
	KeyColumns []string
	// Load configures the input reader. Nil null markers mean model.DefaultNullMarkers.
	Load LoadOptions
}

// CleanFile loads Input, runs the canonical pipeline and writes Output and LogPath.
// The session is returned so that callers can persist its table or journal elsewhere.
func CleanFile(opts CleanFileOptions, sessionOpts ...Option) (*Session, Report, error) {
	load := opts.Load
	if load.NullMarkers == nil {
		load.NullMarkers = model.DefaultNullMarkers
	}
	table, err := Load(opts.Input, load)
	if err != nil {
		return nil, Report{}, err
	}

	session := NewSession(table, sessionOpts...)
	report := session.Run(opts.Strategy, opts.Keep, opts.KeyColumns...)

	if err := Dump(session.Table(), opts.Output); err != nil {
		return session, report, err
	}
	if opts.LogPath != "" {
		if err := SaveLog(session.Log(), opts.LogPath); err != nil {
			return session, report, err
		}
	}
	return session, report, nil
}
