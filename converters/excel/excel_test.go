package excel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/darianmavgo/csv2sqlite/converters"
	"github.com/darianmavgo/csv2sqlite/converters/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx. Each sheet's rows start at A1.
func workbook(t testing.TB, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func quietConfig(cfg common.ConversionConfig) *common.ConversionConfig {
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return &cfg
}

func scanAll(t *testing.T, p common.RowProvider, table string) [][]any {
	t.Helper()
	var out [][]any
	require.NoError(t, p.ScanRows(table, func(_ int, row []any) error {
		out = append(out, append([]any(nil), row...))
		return nil
	}))
	return out
}

func TestExcelConverter(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"People": {
			{"id", "name", "score"},
			{1, "Ann", 9.5},
			{2, "Bob"},
		},
	}, "People")

	c, err := NewExcelConverterWithConfig(buf, quietConfig(common.ConversionConfig{TableName: "people"}))
	require.NoError(t, err)

	assert.Equal(t, "People", c.Sheet)
	assert.Equal(t, "id:INTEGER name:TEXT score:REAL?", c.Schema().String())
	assert.Equal(t, [][]any{
		{int64(1), "Ann", 9.5},
		{int64(2), "Bob", nil},
	}, scanAll(t, c, "people"))
}

func TestExcelConverterSheetSelection(t *testing.T) {
	sheets := map[string][][]any{
		"First":  {{"a"}, {"x"}},
		"Second": {{"b", "c"}, {1, 2}},
	}

	c, err := NewExcelConverterWithConfig(workbook(t, sheets, "First", "Second"), quietConfig(common.ConversionConfig{SheetName: "Second"}))
	require.NoError(t, err)
	assert.Equal(t, "Second", c.Sheet)
	assert.Equal(t, []string{"b", "c"}, c.Schema().Names())

	_, err = NewExcelConverterWithConfig(workbook(t, sheets, "First", "Second"), quietConfig(common.ConversionConfig{SheetName: "Third"}))
	assert.ErrorContains(t, err, `sheet "Third" not found`)
}

func TestExcelConverterNoHeader(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"S": {{1, "a"}, {2}},
	}, "S")
	c, err := NewExcelConverterWithConfig(buf, quietConfig(common.ConversionConfig{NoHeader: true}))
	require.NoError(t, err)
	assert.Equal(t, "col_1:INTEGER col_2:TEXT?", c.Schema().String())
}

func TestExcelConverterEmptySheet(t *testing.T) {
	buf := workbook(t, map[string][][]any{"Empty": nil}, "Empty")
	_, err := NewExcelConverterWithConfig(buf, quietConfig(common.ConversionConfig{}))
	assert.True(t, errors.Is(err, common.ErrEmptyInput))
}

func TestExcelConverterRowShape(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"S": {{"a"}, {1, 2}},
	}, "S")
	_, err := NewExcelConverterWithConfig(buf, quietConfig(common.ConversionConfig{}))
	var shapeErr *common.RowShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 2, shapeErr.Line)
}

func TestExcelConverterNotAWorkbook(t *testing.T) {
	_, err := NewExcelConverter(bytes.NewBufferString("a,b\n1,2\n"))
	assert.Error(t, err)
}

func TestRegisteredDriver(t *testing.T) {
	assert.Contains(t, converters.Drivers(), "excel")
	assert.Equal(t, "excel", converters.DriverForPath("report.xlsx"))
	assert.Equal(t, "csv", converters.DriverForPath("report.csv.gz"))
}

func BenchmarkExcelConverter(b *testing.B) {
	rows := [][]any{{"id", "label", "value"}}
	for i := 0; i < 2000; i++ {
		rows = append(rows, []any{i, fmt.Sprintf("row %d", i), float64(i) / 4})
	}
	content := workbook(b, map[string][][]any{"Data": rows}, "Data").Bytes()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewExcelConverterWithConfig(bytes.NewReader(content), &common.ConversionConfig{Logger: logger}); err != nil {
			b.Fatalf("NewExcelConverter failed: %v", err)
		}
	}
}
