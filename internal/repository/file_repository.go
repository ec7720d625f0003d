package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stwalsh4118/ll97/internal/models"
)

// fileRepository reads delimited text files.
type fileRepository struct {
	comma rune
}

// FileOption configures a file-backed TableRepository.
type FileOption func(*fileRepository)

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) FileOption {
	return func(f *fileRepository) {
		f.comma = r
	}
}

// NewFileRepository creates a TableRepository that reads CSV files from disk.
func NewFileRepository(opts ...FileOption) TableRepository {
	f := &fileRepository{comma: ','}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load reads the CSV file at path. The first record is the header; ragged rows
// are padded or truncated to the header width.
func (r *fileRepository) Load(ctx context.Context, path string) (*models.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = r.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source %s is empty", path)
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, record)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return models.NewTable(name, header, rows), nil
}
