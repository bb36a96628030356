package common

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ColumnType is the storage affinity inferred for a column.
// The values are the SQLite affinity names and are used verbatim in DDL.
type ColumnType string

const (
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"
	TypeText    ColumnType = "TEXT"
)

// rank orders types by restrictiveness: a higher rank can hold every lower one.
func (t ColumnType) rank() int {
	switch t {
	case TypeInteger:
		return 1
	case TypeReal:
		return 2
	default:
		return 3
	}
}

// ColumnSpec describes one destination column.
type ColumnSpec struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

func (c ColumnSpec) String() string {
	if c.Nullable {
		return fmt.Sprintf("%s:%s?", c.Name, c.Type)
	}
	return fmt.Sprintf("%s:%s", c.Name, c.Type)
}

// Schema is the ordered list of columns, in header order.
type Schema []ColumnSpec

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Numeric grammar. Leading zeros are rejected so that "007" stays text,
// and a bare "." or a trailing "5." is not a number.
var (
	integerPattern = regexp.MustCompile(`^[+-]?(0|[1-9][0-9]*)$`)
	realPattern    = regexp.MustCompile(`^[+-]?((0|[1-9][0-9]*)(\.[0-9]+)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// IsNull reports whether v is NULL by convention.
func IsNull(v, nullValue string) bool {
	return v == "" || (nullValue != "" && v == nullValue)
}

// ClassifyValue returns the narrowest type able to hold v without losing
// information. v must not be NULL.
func ClassifyValue(v string) ColumnType {
	if integerPattern.MatchString(v) {
		if v == "-0" {
			// An integer column would store the sign-less 0.
			return TypeText
		}
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return TypeInteger
		}
		// Out of int64 range: a float would drop digits.
		return TypeText
	}
	if realPattern.MatchString(v) && exactFloat(v) {
		return TypeReal
	}
	return TypeText
}

// exactFloat reports whether v survives a float64 round trip with all of
// its significant digits. Exponent form and trailing zeros do not count.
func exactFloat(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) {
		return false
	}
	return significantDigits(v) == significantDigits(strconv.FormatFloat(f, 'e', -1, 64))
}

// significantDigits returns the digits of a numeric literal's mantissa
// without sign, decimal point, leading or trailing zeros.
// "-0012.3400e5" gives "1234".
func significantDigits(s string) string {
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimLeft(s, "+-")
	s = strings.Replace(s, ".", "", 1)
	return strings.Trim(s, "0")
}

// InferColumn derives the spec of one column from every one of its values.
func InferColumn(name string, values []string, nullValue string) ColumnSpec {
	spec := ColumnSpec{Name: name}
	var best ColumnType
	// inexact is set by an integer that a REAL column would round.
	inexact := false
	for _, v := range values {
		if IsNull(v, nullValue) {
			spec.Nullable = true
			continue
		}
		if best == TypeText {
			// Nothing can widen TEXT; only nullability is left to learn.
			continue
		}
		t := ClassifyValue(v)
		if t == TypeInteger && !inexact && !exactFloat(v) {
			inexact = true
		}
		if best == "" || t.rank() > best.rank() {
			best = t
		}
	}
	if best == TypeReal && inexact {
		best = TypeText
	}
	if best == "" {
		// Empty or all-NULL column.
		best = TypeText
		spec.Nullable = true
	}
	spec.Type = best
	return spec
}

// InferSchema runs InferColumn over every column of rows.
// Rows must already have len(names) fields.
func InferSchema(names []string, rows []RawRow, nullValue string) Schema {
	schema := make(Schema, len(names))
	values := make([]string, len(rows))
	for col, name := range names {
		for i, row := range rows {
			values[i] = row.Fields[col]
		}
		schema[col] = InferColumn(name, values, nullValue)
	}
	return schema
}

// ConvertField converts a raw field to the Go value stored for the column.
// NULL becomes nil, INTEGER int64, REAL float64 and TEXT the unchanged string.
func ConvertField(col ColumnSpec, raw, nullValue string) (any, error) {
	if IsNull(raw, nullValue) {
		return nil, nil
	}
	switch col.Type {
	case TypeInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || !integerPattern.MatchString(raw) {
			return nil, fmt.Errorf("value %q is not an INTEGER", raw)
		}
		return v, nil
	case TypeReal:
		if !realPattern.MatchString(raw) {
			return nil, fmt.Errorf("value %q is not a REAL", raw)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a REAL: %w", raw, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// ValueError locates a field that could not be converted to its column type.
type ValueError struct {
	Line   int
	Column string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("line %d column %s: %v", e.Line, e.Column, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// ConvertRow converts every field of row according to schema, reusing dst
// when it is large enough.
func ConvertRow(schema Schema, row RawRow, nullValue string, dst []any) ([]any, error) {
	if cap(dst) < len(schema) {
		dst = make([]any, len(schema))
	}
	dst = dst[:len(schema)]
	for i, col := range schema {
		v, err := ConvertField(col, row.Fields[i], nullValue)
		if err != nil {
			return nil, &ValueError{Line: row.Line, Column: col.Name, Err: err}
		}
		dst[i] = v
	}
	return dst, nil
}
