package fileclean

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/fileclean/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("fileclean: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("fileclean: unsupported file format")

	// ErrInvalidData indicates malformed or invalid data
	ErrInvalidData = errors.New("fileclean: invalid data format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("fileclean: file not found")

	// ErrUnsupportedEncoding indicates an unknown character encoding label
	ErrUnsupportedEncoding = errors.New("fileclean: unsupported character encoding")

	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = model.ErrDuplicateColumnName

	// ErrColumnLength is returned when records and header disagree in width
	ErrColumnLength = model.ErrColumnLength

	// ErrUnknownColumn is returned when a referenced column does not exist
	ErrUnknownColumn = model.ErrUnknownColumn
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	parts := []string{fmt.Sprintf("fileclean: %s failed", ec.Operation)}

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}
	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return errors.New(context)
}
