// Package table loads the row-oriented CSV exports both sides of a
// comparison produce: the solver's measure tables (values.csv) and the
// visualization pipeline's descriptive statistics.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

// Table is an immutable CSV table with a header row.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// Read loads a table from path.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadOptional loads an optional reference table. Missing or unreadable
// files are reported as absent so the caller can skip the validation that
// depends on them.
func ReadOptional(path string) (*Table, bool) {
	t, err := Read(path)
	if err != nil {
		return nil, false
	}
	return t, true
}

// Parse reads CSV from r. Input that is not valid UTF-8 is decoded as
// ISO-8859-1, which is what some exporters write unit labels in. Header and
// cells are trimmed and NFC-normalized.
func Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode latin-1: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	for _, rec := range records {
		for i, cell := range rec {
			rec[i] = normalize(cell)
		}
	}
	return build(records[0], records[1:]), nil
}

func build(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[normalize(name)]
	return ok
}

// Cell returns the raw string at column and row.
func (t *Table) Cell(column string, row int) (string, error) {
	i, ok := t.index[normalize(column)]
	if !ok {
		return "", ferrors.NotFound("column", column)
	}
	if row < 0 || row >= len(t.Rows) {
		return "", ferrors.NotFound("row", strconv.Itoa(row))
	}
	if i >= len(t.Rows[row]) {
		return "", fmt.Errorf("row %d has no value for column %q", row, column)
	}
	return t.Rows[row][i], nil
}

// Float parses the value at column and row.
func (t *Table) Float(column string, row int) (float64, error) {
	s, err := t.Cell(column, row)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q row %d: %w", column, row, err)
	}
	return v, nil
}

// Where returns the rows whose column equals value. An unknown column gives
// an empty table with the same header.
func (t *Table) Where(column, value string) *Table {
	var rows [][]string
	i, ok := t.index[normalize(column)]
	if ok {
		want := normalize(value)
		for _, r := range t.Rows {
			if i < len(r) && r[i] == want {
				rows = append(rows, r)
			}
		}
	}
	return build(t.Header, rows)
}

// ExportsSegment is the part of an export directory path that names the
// visualization exports; measure tables live in a sibling directory.
const ExportsSegment = "cfpdes.exports/paraview.exports"

// MeasuresPath returns the values.csv written by the solver's kind toolbox
// (e.g. "heat", "elastic") for the export directory basedir.
func MeasuresPath(basedir, kind string) string {
	return strings.Replace(basedir, ExportsSegment, kind+".measures/values.csv", 1)
}
