package fileclean

import (
	"fmt"
	"io"
	"strings"
)

// SaveLog writes the journal lines newline-joined to path.
// A compression extension (.gz, .xz, .zst) compresses the log.
func SaveLog(lines []string, path string) error {
	ec := NewErrorContext("save log", path)
	if err := validateOutputPath(path); err != nil {
		return ec.Error(err)
	}

	writer, err := createFileWriter(path, detectCompressionType(path))
	if err != nil {
		return ec.Error(err)
	}
	if err := WriteLog(writer, lines); err != nil {
		_ = writer.Close()
		return ec.Error(err)
	}
	if err := writer.Close(); err != nil {
		return ec.Error(err)
	}
	return nil
}

// WriteLog writes the journal lines newline-joined to w.
func WriteLog(w io.Writer, lines []string) error {
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}
