package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

const fileSuffix = "_gee_subset.csv"

// FileName returns the output path of a site: <dir>/<site>_<product>_gee_subset.csv
func FileName(dir, siteID, productBase string) string {
	return filepath.Join(dir, siteID+"_"+productBase+fileSuffix)
}

// DirectorySink writes one CSV file per location into a directory.
type DirectorySink struct {
	dir string
}

func NewDirectorySink(dir string) *DirectorySink {
	return &DirectorySink{dir: dir}
}

func (s *DirectorySink) Write(ctx context.Context, r Result) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := FileName(s.dir, r.Location.SiteID, r.Query.ProductBase())
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.WriteAll(r.Table.Records()); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	return path, nil
}
