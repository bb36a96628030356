package converters

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/darianmavgo/csv2sqlite/converters/common"
)

// ExportSQL writes the CREATE TABLE statement and one INSERT per row for
// every table of provider. Values are rendered as typed literals so that
// replaying the script yields the same table as ImportToSQLite.
func ExportSQL(provider common.RowProvider, writer io.Writer) error {
	w := bufio.NewWriter(writer)

	for _, tableName := range provider.GetTableNames() {
		schema := provider.GetSchema(tableName)
		if len(schema) == 0 {
			continue
		}

		createTableSQL := common.GenCreateTableSQLWithTypes(tableName, schema)
		if _, err := fmt.Fprintf(w, "%s;\n\n", createTableSQL); err != nil {
			return fmt.Errorf("failed to write CREATE TABLE: %w", err)
		}

		quoted := make([]string, len(schema))
		for i, col := range schema {
			quoted[i] = common.QuoteIdent(col.Name)
		}
		prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES (", common.QuoteIdent(tableName), strings.Join(quoted, ", "))

		err := provider.ScanRows(tableName, func(_ int, row []any) error {
			if _, err := io.WriteString(w, prefix); err != nil {
				return fmt.Errorf("failed to write INSERT start: %w", err)
			}
			for i, val := range row {
				if i > 0 {
					if _, err := io.WriteString(w, ", "); err != nil {
						return fmt.Errorf("failed to write value separator: %w", err)
					}
				}
				if _, err := io.WriteString(w, sqlLiteral(val)); err != nil {
					return fmt.Errorf("failed to write value: %w", err)
				}
			}
			if _, err := io.WriteString(w, ");\n"); err != nil {
				return fmt.Errorf("failed to write statement end: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("failed to write table separator: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush SQL output: %w", err)
	}
	return nil
}

func sqlLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			// Keep REAL affinity visible in the literal.
			s += ".0"
		}
		return s
	case string:
		return common.QuoteLiteral(v)
	default:
		return common.QuoteLiteral(fmt.Sprint(v))
	}
}
