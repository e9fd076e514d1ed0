// ABOUTME: Labelled float table with NaN for missing cells and CSV persistence
// ABOUTME: CSV layout is index-first: empty header cell, then column labels; each line starts with its row label

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is a rows x columns grid of float64 cells. Missing cells read as NaN.
type Table struct {
	rows  []string
	cols  []string
	cells map[string]map[string]float64
}

// NewTable returns an empty table with the given labels
func NewTable(rows, cols []string) *Table {
	t := &Table{cells: make(map[string]map[string]float64)}
	for _, r := range rows {
		t.AddRow(r)
	}
	for _, c := range cols {
		t.AddCol(c)
	}
	return t
}

// AddRow appends a row label if it is new
func (t *Table) AddRow(label string) {
	if !t.HasRow(label) {
		t.rows = append(t.rows, label)
	}
}

// AddCol appends a column label if it is new
func (t *Table) AddCol(label string) {
	if !t.HasCol(label) {
		t.cols = append(t.cols, label)
	}
}

// Rows returns the row labels in order
func (t *Table) Rows() []string { return append([]string(nil), t.rows...) }

// Cols returns the column labels in order
func (t *Table) Cols() []string { return append([]string(nil), t.cols...) }

func (t *Table) HasRow(label string) bool { return indexOf(t.rows, label) >= 0 }

func (t *Table) HasCol(label string) bool { return indexOf(t.cols, label) >= 0 }

// Set stores v, adding the row and column when missing
func (t *Table) Set(row, col string, v float64) {
	t.AddRow(row)
	t.AddCol(col)
	if t.cells[row] == nil {
		t.cells[row] = make(map[string]float64)
	}
	t.cells[row][col] = v
}

// Get returns the cell or NaN
func (t *Table) Get(row, col string) float64 {
	if v, ok := t.cells[row][col]; ok {
		return v
	}
	return math.NaN()
}

// Col returns the column values in row order
func (t *Table) Col(col string) []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = t.Get(r, col)
	}
	return out
}

// Row returns the row values in column order
func (t *Table) Row(row string) []float64 {
	out := make([]float64, len(t.cols))
	for i, c := range t.cols {
		out[i] = t.Get(row, c)
	}
	return out
}

// DropRows removes row labels; unknown labels are ignored
func (t *Table) DropRows(labels ...string) {
	for _, l := range labels {
		if i := indexOf(t.rows, l); i >= 0 {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			delete(t.cells, l)
		}
	}
}

// DropCols removes column labels; unknown labels are ignored
func (t *Table) DropCols(labels ...string) {
	for _, l := range labels {
		if i := indexOf(t.cols, l); i >= 0 {
			t.cols = append(t.cols[:i], t.cols[i+1:]...)
			for _, byCol := range t.cells {
				delete(byCol, l)
			}
		}
	}
}

// WriteCSV writes the header row (empty index cell, then columns) and one line per row
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, t.cols...)); err != nil {
		return err
	}
	for _, r := range t.rows {
		rec := make([]string, 0, len(t.cols)+1)
		rec = append(rec, r)
		for _, c := range t.cols {
			rec = append(rec, formatCell(t.Get(r, c)))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV or any index-first CSV writer
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	header := records[0]
	if len(header) == 0 {
		return nil, fmt.Errorf("table has no header")
	}
	t := NewTable(nil, header[1:])
	for n, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		row := rec[0]
		t.AddRow(row)
		for i, cell := range rec[1:] {
			if i >= len(t.cols) {
				return nil, fmt.Errorf("line %d: %d cells for %d columns", n+2, len(rec)-1, len(t.cols))
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", n+2, t.cols[i], err)
			}
			if !math.IsNaN(v) {
				t.Set(row, t.cols[i], v)
			}
		}
	}
	return t, nil
}

// WriteFile writes the table as CSV to path
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTable reads a CSV table from path
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan":
		return math.NaN(), nil
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

// FormatMult renders a multiplier as a row label
func FormatMult(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

func indexOf(labels []string, l string) int {
	for i, s := range labels {
		if s == l {
			return i
		}
	}
	return -1
}
