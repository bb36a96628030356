package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenTableName(t *testing.T) {
	tests := map[string]string{
		"Organized":   "Organized",
		"Raw Content": "Raw_Content",
		"sales-2024":  "sales_2024",
		"2024 sales":  "tb_2024_sales",
		"":            "tb_1",
		"order":       "order_",
	}
	for in, want := range tests {
		assert.Equal(t, want, GenTableName(in), "GenTableName(%q)", in)
	}
}

func TestGenCompliantNamesDigits(t *testing.T) {
	rawnames := []string{"4658.25", "123", "abc"}
	expected := []string{"cl4658_25", "cl123", "abc"}
	clean := GenCompliantNames(rawnames, "cl")
	for i, v := range clean {
		if v != expected[i] {
			t.Errorf("at index %d: got %s, want %s", i, v, expected[i])
		}
	}
}

func TestGenCompliantNamesKeywords(t *testing.T) {
	rawnames := []string{"group", "Order", "select", "table", "where"}
	expected := []string{"group_", "Order_", "select_", "table_", "where_"}
	clean := GenCompliantNames(rawnames, "cl")
	for i, v := range clean {
		if v != expected[i] {
			t.Errorf("at index %d: got %s, want %s", i, v, expected[i])
		}
	}
}

func TestGenColumnNames(t *testing.T) {
	got := GenColumnNames([]string{" id ", "first name", "", "---", "id", "ID", "e-mail"})
	assert.Equal(t, []string{"id", "first_name", "col_3", "col_4", "id_2", "ID_3", "e_mail"}, got)
}

func TestGenColumnNamesUnicode(t *testing.T) {
	got := GenColumnNames([]string{"café", "名前", "größe (m²)", "٣rd", "cafe\u0301", "Straße-Nr"})
	assert.Equal(t, []string{"café", "名前", "größe_m²_", "col_٣rd", "cafe\u0301", "Straße_Nr"}, got)
}

func TestGenColumnNamesDuplicateOfSuffix(t *testing.T) {
	got := GenColumnNames([]string{"a", "a_2", "a"})
	assert.Equal(t, []string{"a", "a_2", "a_3"}, got)
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"plain"`, QuoteIdent("plain"))
	assert.Equal(t, `"say ""hi"""`, QuoteIdent(`say "hi"`))
	assert.Equal(t, `'it''s'`, QuoteLiteral("it's"))
}

func TestGenPreparedStmt(t *testing.T) {
	insert, err := GenPreparedStmt("t", []string{"a", "b"}, InsertStmt)
	require.NoError(t, err)
	assert.Contains(t, insert, `INSERT INTO "t"`)
	assert.Contains(t, insert, `"a","b"`)
	assert.Contains(t, insert, "VALUES (?,?)")

	drop, err := GenPreparedStmt("t", nil, DropStmt)
	require.NoError(t, err)
	assert.Equal(t, `DROP TABLE IF EXISTS "t"`, drop)

	_, err = GenPreparedStmt("", []string{"a"}, InsertStmt)
	assert.Error(t, err)
	_, err = GenPreparedStmt("t", nil, InsertStmt)
	assert.Error(t, err)
	_, err = GenPreparedStmt("t", nil, SQLStmtType("UPSERT"))
	assert.Error(t, err)
}

func TestGenCreateTableSQLWithTypes(t *testing.T) {
	schema := Schema{
		{Name: "id", Type: TypeInteger},
		{Name: "price", Type: TypeReal, Nullable: true},
		{Name: "note", Type: TypeText, Nullable: true},
	}
	got := GenCreateTableSQLWithTypes("items", schema)
	assert.Equal(t, `CREATE TABLE "items" ("id" INTEGER NOT NULL, "price" REAL, "note" TEXT)`, got)
}
