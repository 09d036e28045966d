// Package model provides domain model for fileclean
package model

import "errors"

var (
	// ErrDuplicateColumnName is returned when a table would contain duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrColumnLength is returned when columns of one table differ in row count
	ErrColumnLength = errors.New("column length mismatch")

	// ErrUnknownColumn is returned when a referenced column does not exist
	ErrUnknownColumn = errors.New("unknown column")
)
