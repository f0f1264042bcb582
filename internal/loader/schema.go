package loader

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Kind is the storage type of a target column.
type Kind int

const (
	KindText Kind = iota
	KindFloat
	KindInt
	KindDate
	KindTimestamp
)

// SQLType returns the column's DDL type.
func (k Kind) SQLType() string {
	switch k {
	case KindFloat:
		return "FLOAT"
	case KindInt:
		return "INT"
	case KindDate:
		return "DATE"
	case KindTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// Column maps a frame field onto a table column. KeepEmpty text columns
// store "" instead of NULL.
type Column struct {
	Name      string
	Source    string
	Kind      Kind
	KeepEmpty bool
}

func col(name string, kind Kind) Column {
	return Column{Name: name, Source: name, Kind: kind}
}

// Columns is the fixed target layout, in table order, after the surrogate id.
var Columns = []Column{
	col("start", KindTimestamp),
	{Name: "end_time", Source: "end", Kind: KindTimestamp},
	col("date", KindDate),
	col("outlet_code", KindText),
	col("outlet_name", KindText),
	col("province", KindText),
	col("outlet_type", KindText),
	col("contact_name", KindText),
	{Name: "phone", Source: "phone", Kind: KindText, KeepEmpty: true},
	col("product", KindText),
	col("address", KindText),
	col("sku_code", KindText),
	col("availability", KindText),
	col("price", KindFloat),
	col("stock_on_hand", KindInt),
	col("facing_count", KindInt),
	col("posm_available", KindText),
	col("posm_condition", KindText),
	col("competitor", KindText),
	col("competitor_price", KindFloat),
	col("competitor_promotion", KindText),
	col("sales_trend", KindText),
	col("estimated_weekly_sales", KindFloat),
	col("satisfaction_score", KindInt),
	col("issue_flag", KindText),
	col("feedback", KindText),
	col("total_sales", KindFloat),
}

// ColumnNames returns the target column names in table order.
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

func qualified(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

func createSchemaSQL(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize()
}

func dropTableSQL(schema, table string) string {
	return "DROP TABLE IF EXISTS " + qualified(schema, table)
}

func createTableSQL(schema, table string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(qualified(schema, table))
	b.WriteString(" (\n    id SERIAL PRIMARY KEY")
	for _, c := range Columns {
		b.WriteString(",\n    ")
		b.WriteString(pgx.Identifier{c.Name}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(c.Kind.SQLType())
	}
	b.WriteString("\n)")
	return b.String()
}

func insertSQL(schema, table string) string {
	names := make([]string, len(Columns))
	params := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = pgx.Identifier{c.Name}.Sanitize()
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return "INSERT INTO " + qualified(schema, table) +
		" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
}
