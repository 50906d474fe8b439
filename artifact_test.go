package whloader

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifact(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	f := &Frame{
		Columns: []string{"SITE_ID", "NOTE"},
		Rows: [][]string{
			{"S1", "plain"},
			{"S2", "has, comma"},
			{"S3", `has "quote"`},
			{"S4", ""},
		},
	}

	path, err := writeArtifact(fs, "/tmp/whloader", f)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/whloader", filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	assert.Equal(t, "S1,plain\nS2,\"has, comma\"\nS3,\"has \"\"quote\"\"\"\nS4,\n", string(b))
}

func TestWriteArtifact_UniqueNames(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	f := &Frame{Columns: []string{"A"}, Rows: [][]string{{"1"}}}

	a, err := writeArtifact(fs, "/tmp", f)
	require.NoError(t, err)
	b, err := writeArtifact(fs, "/tmp", f)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
