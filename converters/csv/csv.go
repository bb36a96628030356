package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/csv2sqlite/converters"
	"github.com/darianmavgo/csv2sqlite/converters/common"
)

func init() {
	converters.Register("csv", &csvDriver{})
}

type csvDriver struct{}

func (d *csvDriver) Open(source io.Reader, config *common.ConversionConfig) (common.RowProvider, error) {
	return NewCSVConverterWithConfig(source, config)
}

// CSVConverter holds a fully read CSV input and its inferred schema.
type CSVConverter struct {
	*common.Table
	Config common.ConversionConfig
}

// Ensure CSVConverter implements RowProvider
var _ common.RowProvider = (*CSVConverter)(nil)

// NewCSVConverter reads r with the default dialect.
func NewCSVConverter(r io.Reader) (*CSVConverter, error) {
	return NewCSVConverterWithConfig(r, nil)
}

// NewCSVConverterWithConfig reads every record of r, checks row shapes and
// infers the schema. Nothing is written anywhere; a ParseError or
// RowShapeError therefore leaves no trace in any store.
func NewCSVConverterWithConfig(r io.Reader, config *common.ConversionConfig) (*CSVConverter, error) {
	if config == nil {
		config = &common.ConversionConfig{}
	}

	br := bufio.NewReaderSize(r, 65536)

	if config.DetectDelimiter {
		peekBytes, _ := br.Peek(2048)
		sample := string(peekBytes)
		if idx := strings.IndexAny(sample, "\r\n"); idx != -1 {
			sample = sample[:idx]
		}
		config.Delimiter = common.DetectDelimiter(sample)
	}
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	reader := NewReader(br)
	reader.Comma = config.Delimiter
	reader.Quote = config.Quote
	reader.TrimSpace = config.TrimSpace
	reader.Logger = config.Logger

	var header []string
	if !config.NoHeader {
		h, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, common.ErrEmptyInput
			}
			return nil, fmt.Errorf("failed to read CSV headers: %w", err)
		}
		header = h.Fields
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV row: %w", err)
	}

	table, err := common.NewTable(header, rows, config)
	if err != nil {
		return nil, err
	}

	return &CSVConverter{
		Table:  table,
		Config: *config,
	}, nil
}
