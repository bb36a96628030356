package common

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultTableName is used when no table name was configured or derived.
	DefaultTableName = "tb0"
	// DefaultDelimiter is the field separator of the excel dialect.
	DefaultDelimiter = ','
	// DefaultQuote is the quote character of every built-in dialect.
	DefaultQuote = '"'
)

// ConversionConfig stores configuration options for the conversion process.
// It is passed explicitly to every reader so that no component consults
// process-wide state.
type ConversionConfig struct {
	Delimiter       rune   // Field separator; 0 means DefaultDelimiter
	DetectDelimiter bool   // Detect the delimiter from the first line
	Quote           rune   // Quote character; 0 means DefaultQuote
	NoHeader        bool   // First record is data, names are synthesized
	TrimSpace       bool   // Trim whitespace around fields
	Lenient         bool   // Pad or truncate rows whose width differs from the header
	NullValue       string // Extra NULL sentinel besides the empty string
	TableName       string // Name of the destination table
	SheetName       string // Sheet to read for spreadsheet inputs; empty means the first
	Logger          *slog.Logger
}

// Normalize fills defaults in place and returns the receiver.
func (c *ConversionConfig) Normalize() *ConversionConfig {
	if c.Delimiter == 0 {
		c.Delimiter = DefaultDelimiter
	}
	if c.Quote == 0 {
		c.Quote = DefaultQuote
	}
	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate reports dialect combinations the reader cannot honor.
func (c *ConversionConfig) Validate() error {
	if c.Delimiter == c.Quote {
		return fmt.Errorf("delimiter and quote must differ, both are %q", c.Delimiter)
	}
	if c.Delimiter == '\n' || c.Delimiter == '\r' || c.Quote == '\n' || c.Quote == '\r' {
		return fmt.Errorf("delimiter and quote cannot be line terminators")
	}
	return nil
}

// Dialect is a named delimiter/quote preset.
type Dialect struct {
	Name      string
	Delimiter rune
	Quote     rune
}

var dialects = map[string]Dialect{
	"excel":     {Name: "excel", Delimiter: ',', Quote: '"'},
	"excel-tab": {Name: "excel-tab", Delimiter: '\t', Quote: '"'},
	"unix":      {Name: "unix", Delimiter: ',', Quote: '"'},
}

// LookupDialect returns the preset registered under name (case-insensitive).
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, fmt.Errorf("invalid CSV dialect %q (want one of excel, excel-tab, unix)", name)
	}
	return d, nil
}

// ParseDelimiter turns a user supplied delimiter into a rune.
// It accepts a single character, the escapes `\t` and `tab`, and "auto"
// which requests detection.
func ParseDelimiter(s string) (delim rune, detect bool, err error) {
	switch strings.ToLower(s) {
	case "":
		return 0, false, nil
	case "auto":
		return 0, true, nil
	case `\t`, "tab":
		return '\t', false, nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, false, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], false, nil
}
