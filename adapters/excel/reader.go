// Package excel reads and writes the tabular files the partitioner consumes and
// produces: delimited text (CSV, semicolon or tab separated) and XLSX workbooks.
package excel

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"setsplit/domain/dataset"
	"setsplit/internal"
	"setsplit/internal/errors"

	"github.com/xuri/excelize/v2"
)

// FileType distinguishes the supported formats
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// DetectFileType picks the format from the file extension. Anything that is not
// a workbook is read as delimited text.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	default:
		return FileTypeCSV
	}
}

// DataReader handles reading Excel and delimited text files
type DataReader struct {
	// Delimiter forces the CSV field separator; zero means auto-detect
	Delimiter rune
	// Sheet selects the workbook sheet; empty means the first sheet
	Sheet  string
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(logger *internal.Logger) *DataReader {
	return &DataReader{logger: internal.OrDefault(logger).With("DataReader")}
}

// ReadDataset reads a file into a dataset. Any failure is an InputError.
func (r *DataReader) ReadDataset(ctx context.Context, path string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fileType := DetectFileType(path)
	r.logger.Info("Starting to read %s file: %s", fileType, path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputError(fmt.Sprintf("%s file not found: %s", strings.ToUpper(string(fileType)), path), err)
		}
		return nil, errors.InputError("cannot access input file", err)
	}

	var (
		rows      [][]string
		delimiter rune
		err       error
	)
	start := time.Now()
	switch fileType {
	case FileTypeXLSX:
		rows, err = r.readExcelRows(path)
	default:
		rows, delimiter, err = r.readCSVRows(path)
	}
	if err != nil {
		return nil, errors.InputError(fmt.Sprintf("failed to read %s", path), err)
	}
	r.logger.Info("%s file read in %.2fms (%d rows)",
		strings.ToUpper(string(fileType)), float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	rows = dropBlankRows(rows)
	if len(rows) < 2 {
		return nil, errors.InputError(fmt.Sprintf("%s must have at least a header row and one data row", path), nil)
	}

	d, err := dataset.New(path, rows[0], rows[1:])
	if err != nil {
		return nil, errors.InputError(fmt.Sprintf("failed to parse %s", path), err)
	}
	if delimiter != 0 {
		d = d.WithDelimiter(delimiter)
	}
	r.logger.Info("%s file processed (%d columns, %d rows)",
		strings.ToUpper(string(fileType)), len(d.Headers), d.Len())
	return d, nil
}

// readExcelRows reads every row of the configured (or first) sheet
func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// readCSVRows reads delimited text, sniffing the separator from the header line
// unless one is forced, and returns the separator it used
func (r *DataReader) readCSVRows(path string) ([][]string, rune, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	delimiter := r.Delimiter
	if delimiter == 0 {
		delimiter = SniffDelimiter(raw)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return rows, delimiter, nil
}

// SniffDelimiter picks the most frequent of comma, semicolon and tab in the first line
func SniffDelimiter(raw []byte) rune {
	line, err := bufio.NewReader(bytes.NewReader(raw)).ReadString('\n')
	if err != nil && err != io.EOF {
		return ','
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

// DetectLabelColumn suggests the identifier column: a well-known id name, or
// the first column when its values are non-empty and mostly unique.
func DetectLabelColumn(d *dataset.Dataset) (string, bool) {
	commonLabelColumns := []string{"id", "item", "item_id", "word", "stimulus", "label", "name"}
	for _, colName := range commonLabelColumns {
		for _, header := range d.Headers {
			if strings.ToLower(header) == colName && isValidLabelColumn(d, header) {
				return header, true
			}
		}
	}
	if len(d.Headers) > 0 && isValidLabelColumn(d, d.Headers[0]) {
		return d.Headers[0], true
	}
	return "", false
}

// isValidLabelColumn checks for mostly non-empty, mostly unique, non-numeric values
func isValidLabelColumn(d *dataset.Dataset, column string) bool {
	cells, err := d.Column(column)
	if err != nil || len(cells) == 0 {
		return false
	}
	if dataset.IsNumericColumn(cells) {
		return false
	}
	values := make(map[string]bool)
	emptyCount := 0
	for _, v := range cells {
		if v == "" {
			emptyCount++
		} else {
			values[v] = true
		}
	}
	emptyRatio := float64(emptyCount) / float64(len(cells))
	uniqueRatio := float64(len(values)) / float64(len(cells))
	return emptyRatio < 0.5 && uniqueRatio > 0.9
}

// SuggestRoles proposes a role per column: the detected label column, numeric
// columns as continuous, everything else categorical.
func SuggestRoles(d *dataset.Dataset) map[string]dataset.Role {
	suggestions := make(map[string]dataset.Role, len(d.Headers))
	label, hasLabel := DetectLabelColumn(d)
	for _, header := range d.Headers {
		if hasLabel && header == label {
			suggestions[header] = dataset.RoleLabel
			continue
		}
		cells, _ := d.Column(header)
		if dataset.IsNumericColumn(cells) {
			suggestions[header] = dataset.RoleContinuous
		} else {
			suggestions[header] = dataset.RoleCategorical
		}
	}
	return suggestions
}
