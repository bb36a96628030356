package common

import "io"

// RowProvider defines the interface for providing data to be inserted into SQLite
type RowProvider interface {
	GetTableNames() []string
	GetHeaders(tableName string) []string
	// GetSchema returns the inferred column specs, in header order.
	GetSchema(tableName string) Schema
	// ScanRows iterates over rows for the given table, already converted to
	// their column types (nil for NULL).
	// It calls the yield function for each row with the line the row started on.
	// If yield returns an error, iteration stops and that error is returned.
	ScanRows(tableName string, yield func(line int, row []any) error) error
}

// Driver defines the interface that must be implemented by a converter package.
type Driver interface {
	// Open reads the whole input and returns a RowProvider for it.
	Open(source io.Reader, config *ConversionConfig) (RowProvider, error)
}
