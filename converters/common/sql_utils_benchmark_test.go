package common

import (
	"fmt"
	"testing"
)

func BenchmarkGenCreateTableSQLWithTypes(b *testing.B) {
	numCols := 1000
	schema := make(Schema, numCols)
	for i := 0; i < numCols; i++ {
		schema[i] = ColumnSpec{Name: fmt.Sprintf("col_%d", i), Type: TypeText, Nullable: i%2 == 0}
	}
	tableName := "bench_table"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenCreateTableSQLWithTypes(tableName, schema)
	}
}

func BenchmarkGenCompliantNames(b *testing.B) {
	// Mix of normal names and keywords
	rawNames := []string{
		"id", "user_name", "created_at", // normal
		"select", "from", "where", // keywords
		"Group", "Order", "Limit", // keywords mixed case
		"   spaced   ", "with.dots", // needs cleaning
		"123start", // starts with digit
	}
	var bigList []string
	for i := 0; i < 100; i++ {
		bigList = append(bigList, rawNames...)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenCompliantNames(bigList, "cl")
	}
}

func BenchmarkInferSchema(b *testing.B) {
	names := []string{"id", "price", "label"}
	rows := make([]RawRow, 10000)
	for i := range rows {
		rows[i] = RawRow{Line: i + 2, Fields: []string{fmt.Sprint(i), fmt.Sprintf("%d.5", i), "x"}}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		InferSchema(names, rows, "")
	}
}
