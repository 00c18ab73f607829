package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
)

// Writer appends prepared rows to a CSV file. The header is taken from the
// first batch. It implements pipeline.BatchLoader and is safe for concurrent
// use.
type Writer struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	writer  *csv.Writer
	columns []string
}

// NewWriter creates (or truncates) the CSV file at path. Intermediate
// directories are created automatically.
func NewWriter(path string, delimiter rune) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if delimiter != 0 {
		w.Comma = delimiter
	}
	return &Writer{path: path, file: f, writer: w}, nil
}

func (w *Writer) Name() string { return "csv" }

// LoadBatch writes the batch rows, preceded by the header on the first call.
// Every batch must carry the same columns.
func (w *Writer) LoadBatch(_ context.Context, batch dataset.Batch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.columns == nil {
		if err := w.writer.Write(batch.Columns); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
		w.columns = batch.Columns
	} else if !slices.Equal(w.columns, batch.Columns) {
		return fmt.Errorf("csv: batch columns %v do not match header %v", batch.Columns, w.columns)
	}

	for _, rec := range batch.Records {
		if err := w.writer.Write(rec.Strings(w.columns)); err != nil {
			return fmt.Errorf("csv: write row %d: %w", rec.Index, err)
		}
	}

	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("csv: flush %q: %w", w.path, err)
	}
	return w.file.Close()
}
