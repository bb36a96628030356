package excel

import (
	"fmt"
	"io"
	"slices"

	"github.com/darianmavgo/csv2sqlite/converters"
	"github.com/darianmavgo/csv2sqlite/converters/common"

	"github.com/xuri/excelize/v2"
)

func init() {
	converters.Register("excel", &excelDriver{})
}

type excelDriver struct{}

func (d *excelDriver) Open(source io.Reader, config *common.ConversionConfig) (common.RowProvider, error) {
	return NewExcelConverterWithConfig(source, config)
}

// ExcelConverter reads one worksheet as a table. The sheet goes through the
// same shape checks and type inference as CSV input; cells are read as their
// formatted text.
type ExcelConverter struct {
	*common.Table
	Sheet string
}

// Ensure ExcelConverter implements RowProvider
var _ common.RowProvider = (*ExcelConverter)(nil)

// NewExcelConverter creates a new ExcelConverter from an io.Reader
func NewExcelConverter(r io.Reader) (*ExcelConverter, error) {
	return NewExcelConverterWithConfig(r, nil)
}

// NewExcelConverterWithConfig reads config.SheetName (the first sheet when
// empty). Spreadsheets drop trailing empty cells, so rows shorter than the
// header are always padded; longer rows follow config.Lenient.
func NewExcelConverterWithConfig(r io.Reader, config *common.ConversionConfig) (*ExcelConverter, error) {
	if config == nil {
		config = &common.ConversionConfig{}
	}
	config.Normalize()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel stream: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheet := sheets[0]
	if config.SheetName != "" {
		if !slices.Contains(sheets, config.SheetName) {
			return nil, fmt.Errorf("sheet %q not found (have %v)", config.SheetName, sheets)
		}
		sheet = config.SheetName
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows iterator for sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var records []common.RawRow
	line := 0
	for rows.Next() {
		line++
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of sheet %s: %w", line, sheet, err)
		}
		if len(cols) == 0 {
			continue
		}
		records = append(records, common.RawRow{Line: line, Fields: cols})
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, common.ErrEmptyInput
	}

	var header []string
	if !config.NoHeader {
		header = records[0].Fields
		records = records[1:]
	}

	width := len(header)
	if config.NoHeader {
		for _, rec := range records {
			width = max(width, len(rec.Fields))
		}
	}
	for i := range records {
		if n := len(records[i].Fields); n < width {
			records[i].Fields = append(records[i].Fields, make([]string, width-n)...)
		}
	}

	table, err := common.NewTable(header, records, config)
	if err != nil {
		return nil, err
	}
	return &ExcelConverter{Table: table, Sheet: sheet}, nil
}
