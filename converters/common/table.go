package common

import (
	"fmt"
	"log/slog"
)

// RawRow is one parsed record and the line it started on (1-based).
type RawRow struct {
	Line   int
	Fields []string
}

// Table is a fully buffered input table together with its inferred schema.
// Every source format produces one, so sizing and typing rules are shared.
// The whole input lives in memory: type inference must see every value of
// a column before the first row can be written.
type Table struct {
	name      string
	schema    Schema
	rows      []RawRow
	nullValue string
}

// Ensure Table implements RowProvider
var _ RowProvider = (*Table)(nil)

// NewTable validates row shapes, sanitizes column names and infers the schema.
// header holds the raw column names; when config.NoHeader is set header may be
// nil and names are synthesized from the first row's width.
// With config.Lenient short rows are padded with empty fields and long rows
// are truncated; otherwise the first mismatched row fails with RowShapeError.
func NewTable(header []string, rows []RawRow, config *ConversionConfig) (*Table, error) {
	if config == nil {
		config = &ConversionConfig{}
	}
	config.Normalize()

	width := len(header)
	if config.NoHeader {
		if len(rows) == 0 {
			return nil, ErrEmptyInput
		}
		width = len(rows[0].Fields)
		header = make([]string, width)
	}
	if width == 0 {
		return nil, ErrEmptyInput
	}

	for i := range rows {
		got := len(rows[i].Fields)
		if got == width {
			continue
		}
		if !config.Lenient {
			return nil, &RowShapeError{Line: rows[i].Line, Got: got, Want: width}
		}
		config.Logger.Warn("adjusting row width",
			slog.Int("line", rows[i].Line),
			slog.Int("fields", got),
			slog.Int("want", width))
		rows[i].Fields = padRow(rows[i].Fields, width)
	}

	names := GenColumnNames(header)
	schema := InferSchema(names, rows, config.NullValue)
	config.Logger.Info("schema inferred",
		slog.String("table", config.TableName),
		slog.Int("rows", len(rows)),
		slog.String("schema", schema.String()))

	return &Table{
		name:      config.TableName,
		schema:    schema,
		rows:      rows,
		nullValue: config.NullValue,
	}, nil
}

var emptyPadding = make([]string, 1024)

// padRow pads or truncates the row to match the target length.
func padRow(row []string, targetLen int) []string {
	if len(row) < targetLen {
		needed := targetLen - len(row)
		if needed <= len(emptyPadding) {
			row = append(row, emptyPadding[:needed]...)
		} else {
			row = append(row, make([]string, needed)...)
		}
	} else if len(row) > targetLen {
		row = row[:targetLen]
	}
	return row
}

// Name returns the destination table name.
func (t *Table) Name() string { return t.name }

// Schema returns the inferred schema.
func (t *Table) Schema() Schema { return t.schema }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// GetTableNames implements RowProvider
func (t *Table) GetTableNames() []string {
	return []string{t.name}
}

// GetHeaders implements RowProvider
func (t *Table) GetHeaders(tableName string) []string {
	if tableName != t.name {
		return nil
	}
	return t.schema.Names()
}

// GetSchema implements RowProvider
func (t *Table) GetSchema(tableName string) Schema {
	if tableName != t.name {
		return nil
	}
	return t.schema
}

// ScanRows implements RowProvider. The slice passed to yield is reused
// between calls.
func (t *Table) ScanRows(tableName string, yield func(line int, row []any) error) error {
	if tableName != t.name {
		return fmt.Errorf("unknown table %q", tableName)
	}
	var buf []any
	for _, raw := range t.rows {
		row, err := ConvertRow(t.schema, raw, t.nullValue, buf)
		if err != nil {
			return err
		}
		buf = row
		if err := yield(raw.Line, row); err != nil {
			return err
		}
	}
	return nil
}
