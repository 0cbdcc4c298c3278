package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"trademe-scraper/models"
)

// CSVWriter appends listing records to one CSV file per output name.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	dir    string
	logger Logger
}

// NewCSVWriter creates dir if needed and returns a writer rooted there.
func NewCSVWriter(dir string, logger Logger) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir, logger: logger}, nil
}

// Path returns the CSV path for an output name.
func (c *CSVWriter) Path(name string) string {
	return filepath.Join(c.dir, name+".csv")
}

// Append adds records to the end of the file, writing the header first when
// the file is new or empty.
func (c *CSVWriter) Append(name string, records []models.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.Path(name)
	info, err := os.Stat(path)
	fresh := err != nil || info.Size() == 0
	if !fresh {
		c.checkHeader(path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("csv: open file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(models.Columns); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush %q: %w", path, err)
	}
	return f.Close()
}

// checkHeader warns when an existing file was written with a different schema.
func (c *CSVWriter) checkHeader(path string) {
	f, err := os.Open(path)
	if err != nil {
		c.logger.Warn("[csv] Could not read existing file %s: %v", path, err)
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		c.logger.Warn("[csv] Could not read header of %s: %v", path, err)
		return
	}
	if !slices.Equal(header, models.Columns) {
		c.logger.Warn("[csv] Header of %s does not match the listing schema; appending positionally", path)
	}
}

// Close is a no-op; files are opened and closed per Append.
func (c *CSVWriter) Close() error { return nil }
