package fileclean

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// validatePath validates a single input file path
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	if detectFileType(path) == FileTypeUnsupported {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// validateReader validates a reader input
func validateReader(reader any, tableName string, fileType FileType) error {
	if reader == nil {
		return errors.New("reader cannot be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return errors.New("table name must be specified for reader input")
	}
	if fileType == FileTypeUnsupported {
		return fmt.Errorf("%w: file type must be specified for reader input", ErrUnsupportedFormat)
	}

	// Peek only where it does not consume the reader
	if stringReader, ok := reader.(*strings.Reader); ok && stringReader.Len() == 0 {
		return fmt.Errorf("%w: empty %s data", ErrEmptyData, strings.ToUpper(fileType.String()))
	}
	return nil
}

// validateOutputPath validates that a file can be created at path
func validateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", path)
	}
	return nil
}
