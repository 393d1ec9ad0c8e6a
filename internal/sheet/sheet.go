// Package sheet writes the daily activity table to disk.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"daysheet/internal/activity"
)

// ErrUnknownFormat is returned for an output path with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown output format")

// WriteFunc renders rows to w.
type WriteFunc func(w io.Writer, rows []activity.Row) error

var writers = map[string]WriteFunc{
	".xlsx": WriteXLSX,
	".csv":  WriteCSV,
	".html": WriteHTML,
	".htm":  WriteHTML,
}

// ForPath picks the writer matching path's extension.
func ForPath(path string) (WriteFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := writers[ext]
	if !ok {
		return nil, fmt.Errorf("sheet: %q: %w", ext, ErrUnknownFormat)
	}
	return fn, nil
}

// Write renders rows to path atomically, choosing the format by extension.
func Write(path string, rows []activity.Row) error {
	fn, err := ForPath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".daysheet-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := fn(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("sheet: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
