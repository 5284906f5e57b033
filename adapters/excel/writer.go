package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"setsplit/domain/dataset"
	"setsplit/internal"
	"setsplit/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataWriter writes datasets as delimited text or XLSX, chosen by extension
type DataWriter struct {
	// Delimiter forces the CSV separator; zero reuses the one the dataset was
	// read with, falling back to a comma
	Delimiter rune
	Sheet     string
	logger    *internal.Logger
}

// NewDataWriter creates a writer that keeps the input's separator
func NewDataWriter(logger *internal.Logger) *DataWriter {
	return &DataWriter{
		Sheet:  "Sheet1",
		logger: internal.OrDefault(logger).With("DataWriter"),
	}
}

// WriteDataset writes the dataset to path. The file is written to a temporary
// sibling first and renamed, so a failed write never leaves a partial artifact.
func (w *DataWriter) WriteDataset(ctx context.Context, path string, d *dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.OutputError("failed to create output directory", err)
		}
	}

	tmp := partialPath(path)
	var err error
	switch DetectFileType(path) {
	case FileTypeXLSX:
		err = w.writeExcel(tmp, d)
	default:
		err = w.writeCSV(tmp, d)
	}
	if err != nil {
		os.Remove(tmp)
		return errors.OutputError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.OutputError(fmt.Sprintf("failed to move %s into place", path), err)
	}
	w.logger.Info("Wrote %d rows to %s", d.Len(), path)
	return nil
}

func (w *DataWriter) writeCSV(path string, d *dataset.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	switch {
	case w.Delimiter != 0:
		writer.Comma = w.Delimiter
	case d.Delimiter != 0:
		writer.Comma = d.Delimiter
	}
	if err := writer.Write(d.Headers); err != nil {
		return err
	}
	if err := writer.WriteAll(d.Rows); err != nil {
		return err
	}
	return file.Sync()
}

func (w *DataWriter) writeExcel(path string, d *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := w.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := w.writeExcelRow(f, sheet, 1, d.Headers); err != nil {
		return err
	}
	for i, row := range d.Rows {
		if err := w.writeExcelRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// partialPath names the temporary sibling; it keeps the extension because the
// workbook encoder refuses unknown extensions.
func partialPath(path string) string {
	return filepath.Join(filepath.Dir(path), ".partial-"+filepath.Base(path))
}

// writeExcelRow keeps numeric cells numeric so the workbook stays sortable
func (w *DataWriter) writeExcelRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, cell := range cells {
		if v, ok := dataset.ParseNumber(cell); ok && cell == trimmedNumber(cell) {
			values[i] = v
		} else {
			values[i] = cell
		}
	}
	ref, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, ref, &values)
}

// trimmedNumber returns cell only when it is written in plain dot-decimal form,
// so values like "7,5" or "007" are kept as text exactly as they were read.
func trimmedNumber(cell string) string {
	if len(cell) > 1 && cell[0] == '0' && cell[1] != '.' {
		return ""
	}
	for _, c := range cell {
		if c == ',' || c == ' ' {
			return ""
		}
	}
	return cell
}
