package whloader

import (
	"encoding/csv"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// writeArtifact writes the rows of f without a header to a new CSV file in dir
// and returns its path. Fields are double-quoted only when needed.
func writeArtifact(fs afero.Fs, dir string, f *Frame) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", xerrors.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, "whloader_"+uuid.NewString()+".csv")

	file, err := fs.Create(path)
	if err != nil {
		return "", xerrors.Errorf("failed to create %s: %w", path, err)
	}

	if err := csv.NewWriter(file).WriteAll(f.Rows); err != nil {
		file.Close()
		_ = fs.Remove(path)
		return "", xerrors.Errorf("failed to write csv: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = fs.Remove(path)
		return "", xerrors.Errorf("failed to close %s: %w", path, err)
	}

	return path, nil
}
