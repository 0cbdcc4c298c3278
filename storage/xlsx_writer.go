package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"trademe-scraper/models"
)

// XLSXWriter keeps one workbook per output name under dir. Each Append
// rewrites the workbook with the existing rows followed by the new ones.
type XLSXWriter struct {
	dir    string
	logger Logger
}

// NewXLSXWriter creates dir if needed and returns a writer rooted there.
func NewXLSXWriter(dir string, logger Logger) (*XLSXWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	return &XLSXWriter{dir: dir, logger: logger}, nil
}

// Path returns the workbook path for an output name.
func (w *XLSXWriter) Path(name string) string {
	return filepath.Join(w.dir, name+".xlsx")
}

// Append writes records after any rows already in the workbook. An existing
// workbook that cannot be read is logged and replaced.
func (w *XLSXWriter) Append(name string, records []models.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}
	path := w.Path(name)

	rows := w.loadExisting(path)
	for _, r := range records {
		rows = append(rows, r.Row())
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := models.Columns
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", path, err)
	}
	return nil
}

// Rows returns the data rows currently stored for name, header excluded.
func (w *XLSXWriter) Rows(name string) ([][]string, error) {
	return readRows(w.Path(name))
}

func readRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, models.RecordFromRow(row).Row())
	}
	return out, nil
}

func (w *XLSXWriter) loadExisting(path string) [][]string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	rows, err := readRows(path)
	if err != nil {
		w.logger.Warn("[xlsx] Could not read existing file %s: %v", path, err)
		return nil
	}
	w.logger.Debug("[xlsx] Loaded %d existing rows from %s", len(rows), path)
	return rows
}

func (w *XLSXWriter) Close() error { return nil }
