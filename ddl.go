package whloader

import (
	"fmt"
	"strings"
)

// DefaultMaxTextWidth is the maximum VARCHAR length of Snowflake.
const DefaultMaxTextWidth = 16777216

// TablePath is a fully qualified table. For BigQuery, Database is the project and
// Schema is the dataset.
type TablePath struct {
	Database string
	Schema   string
	Table    string
}

func (p TablePath) String() string {
	return p.Database + "." + p.Schema + "." + p.Table
}

// Dialect renders statements for a warehouse.
type Dialect interface {
	Name() string
	QualifiedName(TablePath) string
	TextType(width int) string
	DropTableIfExists(TablePath) string
	CreateTable(p TablePath, columns []string, width int) string
}

// Snowflake is the Snowflake dialect.
var Snowflake Dialect = snowflakeDialect{}

// BigQuery is the BigQuery standard SQL dialect.
var BigQuery Dialect = bigqueryDialect{}

type snowflakeDialect struct{}

func (snowflakeDialect) Name() string { return "snowflake" }

func (snowflakeDialect) QualifiedName(p TablePath) string {
	return p.String()
}

func (snowflakeDialect) TextType(width int) string {
	if width <= 0 {
		width = DefaultMaxTextWidth
	}
	return fmt.Sprintf("VARCHAR(%d)", width)
}

func (d snowflakeDialect) DropTableIfExists(p TablePath) string {
	return dropTable(d, p)
}

func (d snowflakeDialect) CreateTable(p TablePath, columns []string, width int) string {
	return createTable(d, p, columns, width)
}

// stage returns the table stage of p.
func (snowflakeDialect) stage(p TablePath) string {
	return fmt.Sprintf("@%s.%s.%%%s", p.Database, p.Schema, p.Table)
}

type bigqueryDialect struct{}

func (bigqueryDialect) Name() string { return "bigquery" }

func (bigqueryDialect) QualifiedName(p TablePath) string {
	return "`" + p.String() + "`"
}

// TextType ignores width: STRING is unbounded.
func (bigqueryDialect) TextType(int) string {
	return "STRING"
}

func (d bigqueryDialect) DropTableIfExists(p TablePath) string {
	return dropTable(d, p)
}

func (d bigqueryDialect) CreateTable(p TablePath, columns []string, width int) string {
	return createTable(d, p, columns, width)
}

func dropTable(d Dialect, p TablePath) string {
	return "DROP TABLE IF EXISTS " + d.QualifiedName(p)
}

func createTable(d Dialect, p TablePath, columns []string, width int) string {
	typ := d.TextType(width)

	clauses := make([]string, len(columns))
	for i, c := range columns {
		clauses[i] = c + " " + typ
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", d.QualifiedName(p), strings.Join(clauses, ", "))
}

// DialectFor returns the dialect named name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "snowflake":
		return Snowflake, nil
	case "bigquery":
		return BigQuery, nil
	}

	return nil, fmt.Errorf("unsupported platform %q", name)
}
