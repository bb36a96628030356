package common

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SQLStmtType defines the type of SQL statement to generate
type SQLStmtType string

const (
	InsertStmt SQLStmtType = "INSERT"
	DropStmt   SQLStmtType = "DROP"

	TBPRE = "tb_"
	CLPRE = "col_"
)

var disallowed = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)

var keywordSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(KEYWORDS_LOWER))
	for _, k := range KEYWORDS_LOWER {
		m[k] = struct{}{}
	}
	return m
}()

/*
	GenCompliantNames generates names that can be used in sqlite.

The rules for column names and table names are the same, so one function
takes a prefix as input. Case is kept; letters and digits of any script are
kept, every other run of characters becomes a single underscore. A name left empty becomes
{prefix}{idx+1}, a name starting with a digit gets the prefix, a keyword
gets a trailing underscore and duplicates get _2, _3, ...
*/
func GenCompliantNames(rawnames []string, prefix string) []string {
	gorgeous := make([]string, len(rawnames))

	taken := make(map[string]bool, len(rawnames))
	for idx, item := range rawnames {
		item = strings.TrimSpace(item)
		item = disallowed.ReplaceAllString(item, "_")

		switch {
		case item == "" || strings.Trim(item, "_") == "":
			item = fmt.Sprintf("%s%d", prefix, idx+1)
		case startsWithDigit(item):
			// specific sqlite rule: cannot start with a number
			item = prefix + item
		}
		if _, ok := keywordSet[strings.ToLower(item)]; ok {
			item += "_"
		}

		// SQLite identifiers are case-insensitive.
		key := strings.ToLower(item)
		if taken[key] {
			base := item
			for n := 2; ; n++ {
				item = fmt.Sprintf("%s_%d", base, n)
				key = strings.ToLower(item)
				if !taken[key] {
					break
				}
			}
		}
		taken[key] = true
		gorgeous[idx] = item
	}
	return gorgeous
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

// GenColumnNames generates sanitized SQL column names from raw headers.
// Headers that are complete junk become col_1, col_2, etc.
func GenColumnNames(rawheaders []string) []string {
	return GenCompliantNames(rawheaders, CLPRE)
}

// GenTableName sanitizes a single table name.
func GenTableName(raw string) string {
	return GenCompliantNames([]string{raw}, TBPRE)[0]
}

// QuoteIdent quotes an identifier for SQLite.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral renders a string as an SQL literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// GenPreparedStmt generates a prepared statement for the specified operation
func GenPreparedStmt(table string, fields []string, stmtType SQLStmtType) (string, error) {
	if table == "" {
		return "", fmt.Errorf("table name is required")
	}

	var stmtSQL string
	switch stmtType {
	case InsertStmt:
		if len(fields) == 0 {
			return "", fmt.Errorf("fields are required for %s", stmtType)
		}
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = QuoteIdent(f)
		}
		stmtSQL = fmt.Sprintf(`
INSERT INTO %s (
	%s
) VALUES (%s)`,
			QuoteIdent(table),
			strings.Join(quoted, ","),
			strings.Repeat("?,", len(fields)-1)+"?",
		)

	case DropStmt:
		stmtSQL = "DROP TABLE IF EXISTS " + QuoteIdent(table)

	default:
		return "", fmt.Errorf("unsupported statement type: %s", stmtType)
	}

	return strings.TrimSpace(stmtSQL), nil
}

// GenCreateTableSQLWithTypes generates a CREATE TABLE statement from a schema.
// Columns that held no NULL get a NOT NULL constraint.
func GenCreateTableSQLWithTypes(tableName string, schema Schema) string {
	var builder strings.Builder
	builder.Grow(len(tableName) + len(schema)*24)

	builder.WriteString("CREATE TABLE ")
	builder.WriteString(QuoteIdent(tableName))
	builder.WriteString(" (")
	for i, col := range schema {
		builder.WriteString(QuoteIdent(col.Name))
		builder.WriteByte(' ')
		builder.WriteString(string(col.Type))
		if !col.Nullable {
			builder.WriteString(" NOT NULL")
		}
		if i < len(schema)-1 {
			builder.WriteString(", ")
		}
	}
	builder.WriteByte(')')
	return builder.String()
}

// TableExistsSQL counts tables with a given name; it takes the name as its only argument.
const TableExistsSQL = `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE`

// KEYWORDS_LOWER is the hardcoded lowercase version of KEYWORDS.
var KEYWORDS_LOWER = []string{
	"abort", "action", "add", "after", "all", "alter", "always", "analyze", "and", "as",
	"asc", "attach", "autoincrement", "before", "begin", "between", "by", "cascade", "case", "cast",
	"check", "collate", "column", "commit", "conflict", "constraint", "create", "cross", "current", "current_date",
	"current_time", "current_timestamp", "database", "default", "deferrable", "deferred", "delete", "desc", "detach", "distinct",
	"do", "drop", "each", "else", "end", "escape", "except", "exclude", "exclusive", "exists",
	"explain", "fail", "filter", "first", "following", "for", "foreign", "from", "full", "generated",
	"glob", "group", "groups", "having", "if", "ignore", "immediate", "in", "index", "indexed",
	"initially", "inner", "insert", "instead", "intersect", "into", "is", "isnull", "join", "key",
	"last", "left", "like", "limit", "match", "materialized", "natural", "no", "not", "nothing",
	"notnull", "null", "nulls", "of", "offset", "on", "or", "order", "others", "outer",
	"over", "partition", "plan", "pragma", "preceding", "primary", "query", "raise", "range", "recursive",
	"references", "regexp", "reindex", "release", "rename", "replace", "restrict", "returning", "right", "rollback",
	"row", "rows", "savepoint", "select", "set", "table", "temp", "temporary", "then", "ties",
	"to", "transaction", "trigger", "unbounded", "union", "unique", "update", "using", "vacuum", "values",
	"view", "virtual", "when", "where", "window", "with", "without",
}
