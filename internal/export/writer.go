// Package export writes projection tables to CSV, XLSX or JSON files.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stwalsh4118/ll97/internal/metrics"
	"github.com/stwalsh4118/ll97/internal/models"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// ErrUnsupportedFormat is returned by ForFormat for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Writer writes one table to a file.
type Writer interface {
	// Format returns the format name, which is also the file extension.
	Format() string
	// Write replaces path with the encoded table. On error no file is left at path.
	Write(path string, t *models.Table) error
}

// ForFormat returns the writer for a format name.
func ForFormat(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return CSVWriter{}, nil
	case FormatXLSX:
		return XLSXWriter{}, nil
	case FormatJSON:
		return JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Path returns the output path for a table name in dir.
func Path(dir, name string, w Writer) string {
	return filepath.Join(dir, name+"."+w.Format())
}

// WriteTable writes t into dir using w and returns the file path.
func WriteTable(dir string, w Writer, t *models.Table) (string, error) {
	path := Path(dir, t.Name, w)
	start := time.Now()

	if err := w.Write(path, t); err != nil {
		metrics.ObserveExport(w.Format(), metrics.ResultError, time.Since(start))
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	metrics.ObserveExport(w.Format(), metrics.ResultSuccess, time.Since(start))
	return path, nil
}

// writeAtomic streams into a temp file next to path and renames it into place.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// textColumns marks the columns that are always written as text, whatever
// their content. The building key is an identifier, not a quantity.
func textColumns(t *models.Table) []bool {
	text := make([]bool, len(t.Header))
	for i, name := range t.Header {
		text[i] = name == models.KeyColumn
	}
	return text
}

// numericCell reports whether a cell should be written as a number.
// Values with leading zeros stay text so identifiers keep their digits.
func numericCell(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	digits := strings.TrimPrefix(s, "-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
