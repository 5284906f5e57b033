// Package dataset holds the immutable tabular input and the column role metadata
// supplied alongside it.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"setsplit/domain/core"
)

// Dataset is an ordered collection of items. Every row keeps the ItemID it had in
// the file it was loaded from, so selections and strata still refer to the
// original identity space.
type Dataset struct {
	Source    string
	// Delimiter is the field separator of the delimited file the dataset was
	// read from; zero for workbooks and datasets built in memory
	Delimiter rune
	Headers   []string
	Rows      [][]string
	IDs       []core.ItemID

	index map[core.ItemID]int
}

// derive builds a dataset sharing d's provenance, with its position index
// filled up front so a shared dataset is never written after construction
func (d *Dataset) derive(headers []string, rows [][]string, ids []core.ItemID) *Dataset {
	return withIndex(&Dataset{
		Source:    d.Source,
		Delimiter: d.Delimiter,
		Headers:   headers,
		Rows:      rows,
		IDs:       ids,
	})
}

func withIndex(d *Dataset) *Dataset {
	d.index = make(map[core.ItemID]int, len(d.IDs))
	for i, id := range d.IDs {
		d.index[id] = i
	}
	return d
}

// WithDelimiter returns a copy of the dataset recording the separator it was read with
func (d *Dataset) WithDelimiter(delimiter rune) *Dataset {
	out := d.derive(d.Headers, d.Rows, d.IDs)
	out.Delimiter = delimiter
	return out
}

// New builds a dataset from a header row and data rows. Short rows are padded
// with empty cells; cells beyond the header are dropped.
func New(source string, headers []string, rows [][]string) (*Dataset, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no header row", core.ErrEmptyDataset)
	}
	seen := make(map[string]bool, len(headers))
	cleanHeaders := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column name %q", h)
		}
		seen[h] = true
		cleanHeaders[i] = h
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: header only", core.ErrEmptyDataset)
	}

	cleanRows := make([][]string, len(rows))
	ids := make([]core.ItemID, len(rows))
	for i, row := range rows {
		cells := make([]string, len(cleanHeaders))
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		cleanRows[i] = cells
		ids[i] = core.ItemID(i)
	}

	return withIndex(&Dataset{
		Source:  source,
		Headers: cleanHeaders,
		Rows:    cleanRows,
		IDs:     ids,
	}), nil
}

// Len returns the number of items
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of a named column
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, h := range d.Headers {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// HasColumn reports whether the column exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.ColumnIndex(name)
	return ok
}

// Column returns the raw cells of a column in row order
func (d *Dataset) Column(name string) ([]string, error) {
	j, ok := d.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownColumn, name)
	}
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[j]
	}
	return values, nil
}

// NumericColumn parses a column as numbers. Empty cells become NaN; any other
// unparseable cell is an error.
func (d *Dataset) NumericColumn(name string) ([]float64, error) {
	cells, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(cells))
	for i, cell := range cells {
		if IsMissing(cell) {
			values[i] = math.NaN()
			continue
		}
		v, ok := ParseNumber(cell)
		if !ok {
			return nil, fmt.Errorf("%w: column %q row %d value %q",
				core.ErrNonNumeric, name, d.IDs[i].Row(), cell)
		}
		values[i] = v
	}
	return values, nil
}

// Position returns the row position of an item in this dataset
func (d *Dataset) Position(id core.ItemID) (int, bool) {
	pos, ok := d.index[id]
	return pos, ok
}

// Select returns a dataset restricted to the given items, in the given order
func (d *Dataset) Select(ids []core.ItemID) (*Dataset, error) {
	rows := make([][]string, 0, len(ids))
	kept := make([]core.ItemID, 0, len(ids))
	for _, id := range ids {
		pos, ok := d.Position(id)
		if !ok {
			return nil, fmt.Errorf("item %d not present in dataset", id)
		}
		rows = append(rows, d.Rows[pos])
		kept = append(kept, id)
	}
	return d.derive(d.Headers, rows, kept), nil
}

// WithoutColumn returns a copy of the dataset with one column removed
func (d *Dataset) WithoutColumn(name string) (*Dataset, error) {
	j, ok := d.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownColumn, name)
	}
	headers := make([]string, 0, len(d.Headers)-1)
	headers = append(headers, d.Headers[:j]...)
	headers = append(headers, d.Headers[j+1:]...)

	rows := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		cells := make([]string, 0, len(row)-1)
		cells = append(cells, row[:j]...)
		cells = append(cells, row[j+1:]...)
		rows[i] = cells
	}
	return d.derive(headers, rows, d.IDs), nil
}

// WithColumn returns a copy of the dataset with one column appended. values must
// be in row order. An existing column of the same name is replaced.
func (d *Dataset) WithColumn(name string, values []string) (*Dataset, error) {
	if len(values) != len(d.Rows) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(d.Rows))
	}
	base := d
	if d.HasColumn(name) {
		var err error
		if base, err = d.WithoutColumn(name); err != nil {
			return nil, err
		}
	}
	headers := append(append([]string{}, base.Headers...), name)
	rows := make([][]string, len(base.Rows))
	for i, row := range base.Rows {
		rows[i] = append(append([]string{}, row...), values[i])
	}
	return d.derive(headers, rows, d.IDs), nil
}

// IsMissing reports whether a cell counts as a missing value
func IsMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}

// ParseNumber parses a numeric cell. A lone comma is read as a decimal
// separator, except where it could group thousands ("1,000"), which is rejected
// rather than guessed. A zero integer part ("0,125") is always a decimal.
func ParseNumber(cell string) (float64, bool) {
	clean := strings.TrimSpace(cell)
	if clean == "" {
		return 0, false
	}
	if strings.Count(clean, ",") == 1 && !strings.Contains(clean, ".") {
		whole, frac, _ := strings.Cut(clean, ",")
		if len(frac) == 3 && strings.TrimLeft(whole, "+-") != "0" {
			return 0, false
		}
		clean = whole + "." + frac
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// IsNumericColumn reports whether every non-missing cell parses as a number.
// A column with no values at all is not numeric.
func IsNumericColumn(cells []string) bool {
	seen := false
	for _, cell := range cells {
		if IsMissing(cell) {
			continue
		}
		if _, ok := ParseNumber(cell); !ok {
			return false
		}
		seen = true
	}
	return seen
}
