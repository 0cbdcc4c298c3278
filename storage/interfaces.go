package storage

import (
	"errors"
	"fmt"

	"trademe-scraper/models"
)

// RecordWriter is the interface any output backend must satisfy. Append adds
// records under the named output (a file name without extension, or a source
// tag) and must never drop rows already stored there.
type RecordWriter interface {
	Append(name string, records []models.ListingRecord) error
	Close() error
}

// MultiWriter fans every call out to several writers. A failing writer does
// not stop the others; all errors are returned joined.
type MultiWriter []RecordWriter

func (m MultiWriter) Append(name string, records []models.ListingRecord) error {
	var errs []error
	for _, w := range m {
		if err := w.Append(name, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiWriter) Close() error {
	var errs []error
	for _, w := range m {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewFileWriter returns the file sink for format ("xlsx" or "csv") rooted at dir.
func NewFileWriter(format, dir string, logger Logger) (RecordWriter, error) {
	switch format {
	case "xlsx", "":
		return NewXLSXWriter(dir, logger)
	case "csv":
		return NewCSVWriter(dir, logger)
	}
	return nil, fmt.Errorf("storage: unknown output format %q", format)
}

// Logger is the subset of utils.Logger the writers use.
type Logger interface {
	Warn(format string, args ...any)
	Debug(format string, args ...any)
}
