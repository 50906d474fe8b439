package whloader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	p := TablePath{Database: "DB", Schema: "WATER_QUALITY", Table: "LAB_RESULTS"}
	columns := []string{"SITE_ID", "SAMPLE_DATE", "PH"}

	tests := []struct {
		name    string
		dialect Dialect
		width   int
		want    string
	}{
		{
			name:    "snowflake with default width",
			dialect: Snowflake,
			want:    "CREATE TABLE DB.WATER_QUALITY.LAB_RESULTS (SITE_ID VARCHAR(16777216), SAMPLE_DATE VARCHAR(16777216), PH VARCHAR(16777216))",
		},
		{
			name:    "snowflake with custom width",
			dialect: Snowflake,
			width:   256,
			want:    "CREATE TABLE DB.WATER_QUALITY.LAB_RESULTS (SITE_ID VARCHAR(256), SAMPLE_DATE VARCHAR(256), PH VARCHAR(256))",
		},
		{
			name:    "bigquery ignores width",
			dialect: BigQuery,
			width:   256,
			want:    "CREATE TABLE `DB.WATER_QUALITY.LAB_RESULTS` (SITE_ID STRING, SAMPLE_DATE STRING, PH STRING)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.dialect.CreateTable(p, columns, tt.width)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialect_CreateTable_ClausesInOrder(t *testing.T) {
	t.Parallel()

	columns := make([]string, 40)
	for i := range columns {
		columns[i] = NormalizeIdentifier("col " + strings.Repeat("x", i+1))
	}

	ddl := Snowflake.CreateTable(TablePath{Database: "D", Schema: "S", Table: "T"}, columns, 0)

	body := ddl[strings.Index(ddl, "(")+1 : strings.LastIndex(ddl, ")")]
	clauses := strings.Split(body, ", ")
	require.Len(t, clauses, len(columns))

	for i, c := range clauses {
		assert.Equal(t, columns[i]+" VARCHAR(16777216)", c)
	}
}

func TestDialect_DropTableIfExists(t *testing.T) {
	t.Parallel()

	p := TablePath{Database: "proj", Schema: "ds", Table: "t"}

	assert.Equal(t, "DROP TABLE IF EXISTS proj.ds.t", Snowflake.DropTableIfExists(p))
	assert.Equal(t, "DROP TABLE IF EXISTS `proj.ds.t`", BigQuery.DropTableIfExists(p))
	assert.Equal(t, "@proj.ds.%t", snowflakeDialect{}.stage(p))
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	d, err := DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, Snowflake, d)

	d, err = DialectFor("BigQuery")
	require.NoError(t, err)
	assert.Equal(t, BigQuery, d)

	_, err = DialectFor("redshift")
	require.Error(t, err)
}
