package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.nownabe.dev/whloader"
	"go.nownabe.dev/whloader/contrib/handlers"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(nil)
	require.NoError(t, err)

	assert.Equal(t, handlers.LabResultsURL, s.URL)
	assert.Equal(t, handlers.BrowserUserAgent, s.UserAgent)
	assert.Equal(t, "WATER_QUALITY", s.Schema)
	assert.Equal(t, "LAB_RESULTS_TEST_2026", s.Table)
	assert.Equal(t, whloader.DefaultMaxTextWidth, s.MaxTextWidth)
	assert.Equal(t, "snowflake", s.Platform)
}

func TestLoadSettings_EnvAndFlags(t *testing.T) {
	t.Setenv("SNOWFLAKE_ACCOUNT", "my-account")
	t.Setenv("SNOWFLAKE_USER", "loader")
	t.Setenv("SNOWFLAKE_AUTHENTICATOR", "externalbrowser")
	t.Setenv("SNOWFLAKE_DATABASE", "analytics")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "compute_wh")
	t.Setenv("SNOWFLAKE_ROLE", "loader_role")
	t.Setenv("WHLOAD_MAX_TEXT_WIDTH", "1024")
	t.Setenv("WHLOAD_TABLE", "from_env")

	cmd := NewRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--table", "from_flag", "--on-collision", "suffix"}))

	s, err := LoadSettings(cmd.Flags())
	require.NoError(t, err)

	assert.Equal(t, "my-account", s.Account)
	assert.Equal(t, "loader", s.User)
	assert.Equal(t, "externalbrowser", s.Authenticator)
	assert.Equal(t, "analytics", s.Database)
	assert.Equal(t, "compute_wh", s.Warehouse)
	assert.Equal(t, "loader_role", s.Role)
	assert.Equal(t, 1024, s.MaxTextWidth)
	assert.Equal(t, "from_flag", s.Table)

	h, err := s.Handler()
	require.NoError(t, err)
	assert.Equal(t, whloader.CollisionSuffix, h.OnCollision)
	assert.Equal(t, 1024, h.MaxTextWidth)
	assert.Nil(t, h.Notifier)

	dest := h.Destination
	dest.Normalize()
	assert.Equal(t, whloader.TablePath{Database: "ANALYTICS", Schema: "WATER_QUALITY", Table: "FROM_FLAG"}, dest.TablePath())
	assert.Equal(t, "COMPUTE_WH", dest.Warehouse)
	assert.Equal(t, "LOADER_ROLE", dest.Role)
}

func TestLoadSettings_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WHLOAD_SLACK_TOKEN=xoxb-test\nWHLOAD_SLACK_CHANNEL=#loads\n"), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("WHLOAD_SLACK_TOKEN")
		os.Unsetenv("WHLOAD_SLACK_CHANNEL")
	})

	s, err := LoadSettings(nil, path)
	require.NoError(t, err)

	h, err := s.Handler()
	require.NoError(t, err)

	n, ok := h.Notifier.(*whloader.SlackNotifier)
	require.True(t, ok)
	assert.Equal(t, "#loads", n.Channel)
}

func TestSettings_Handler_PartialCSV(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--skip-head", "2", "--skip-tail", "1"}))

	s, err := LoadSettings(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, uint(2), s.SkipHead)

	h, err := s.Handler()
	require.NoError(t, err)

	records, err := h.Parser(context.Background(), strings.NewReader("exported at 2026-01-01\n\nA,B\n1,2\ntotal 1\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}, {"1", "2"}}, records)
}

func TestSettings_Handler_Errors(t *testing.T) {
	s := &Settings{Format: "parquet"}
	_, err := s.Handler()
	require.Error(t, err)

	s = &Settings{OnCollision: "rename"}
	_, err = s.Handler()
	require.Error(t, err)
}

func TestRootCmd_FetchFailure(t *testing.T) {
	srv := newStatusServer(t, 404)

	t.Setenv("SNOWFLAKE_ACCOUNT", "acct")
	t.Setenv("SNOWFLAKE_USER", "loader")
	t.Setenv("SNOWFLAKE_DATABASE", "db")

	cmd := NewRootCmd()
	stderr := &bytes.Buffer{}
	cmd.SetErr(stderr)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--url", srv.URL + "/lab_results.csv", "--env-file", filepath.Join(t.TempDir(), "missing.env")})

	err := cmd.Execute()

	var serr *whloader.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 404, serr.StatusCode)
	assert.NotContains(t, stderr.String(), "attempted to load to")
}
