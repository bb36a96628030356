package common

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the input holds no records at all.
	ErrEmptyInput = errors.New("empty CSV input")

	// ErrUnterminatedQuote means an opening quote was never closed.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	// ErrBareQuote means a quote appeared inside an unquoted field.
	ErrBareQuote = errors.New(`bare quote in non-quoted field`)
	// ErrExtraneousQuote means text followed a closing quote.
	ErrExtraneousQuote = errors.New(`extraneous or missing quote in quoted field`)

	// ErrSchemaConflict is matched by every SchemaConflictError.
	ErrSchemaConflict = errors.New("table already exists")
	// ErrStoreWrite is matched by every StoreWriteError.
	ErrStoreWrite = errors.New("store write failed")
)

// ParseError reports malformed CSV syntax.
// StartLine is the line on which the record began, Line and Column locate
// the point where parsing failed.
type ParseError struct {
	StartLine int
	Line      int
	Column    int
	Err       error
}

func (e *ParseError) Error() string {
	if e.StartLine != e.Line {
		return fmt.Sprintf("parse error on line %d, column %d (record started on line %d): %v", e.Line, e.Column, e.StartLine, e.Err)
	}
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowShapeError reports a data row whose field count differs from the header.
type RowShapeError struct {
	Line int
	Got  int
	Want int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row on line %d has %d fields, header has %d", e.Line, e.Got, e.Want)
}

// SchemaConflictError is returned when the destination table exists and
// overwriting was not requested.
type SchemaConflictError struct {
	Table string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("table %q already exists (use --force to overwrite)", e.Table)
}

func (e *SchemaConflictError) Is(target error) bool { return target == ErrSchemaConflict }

// StoreWriteError is returned when the destination rejects an operation.
// Line and Column are set when the failure is tied to a specific value.
type StoreWriteError struct {
	Op     string
	Table  string
	Line   int
	Column string
	Err    error
}

func (e *StoreWriteError) Error() string {
	msg := fmt.Sprintf("failed to %s table %s", e.Op, e.Table)
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %s", e.Column)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

func (e *StoreWriteError) Is(target error) bool { return target == ErrStoreWrite }
