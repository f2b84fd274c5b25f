package sheet

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidInput is returned (wrapped) when a path does not reference a
// readable spreadsheet.
var ErrInvalidInput = errors.New("invalid input")

// Reader produces the data rows of one spreadsheet.
type Reader interface {
	Read(ctx context.Context, path string) ([]Row, error)
}

// Row is one data row.
type Row struct {
	// Line is the 1-based spreadsheet row number; the first data row is 2.
	Line int

	// Fields maps normalized header text to the raw cell value.
	// Cells past the end of a short row are present with "".
	Fields map[string]string
}

// Get returns the value under header and whether the header exists.
func (r Row) Get(header string) (string, bool) {
	v, ok := r.Fields[NormalizeHeader(header)]
	return v, ok
}

// NormalizeHeader trims surrounding whitespace and applies Unicode NFC.
func NormalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

// buildRows pairs each record with the header row. Blank records are skipped
// but still advance the line counter. Empty header cells are ignored; when two
// headers normalize to the same text, the rightmost column wins.
func buildRows(header []string, records [][]string, firstLine int) []Row {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeHeader(h)
	}

	rows := []Row{}
	for i, record := range records {
		if isBlank(record) {
			continue
		}
		fields := make(map[string]string, len(keys))
		for col, key := range keys {
			if key == "" {
				continue
			}
			if col < len(record) {
				fields[key] = record[col]
			} else {
				fields[key] = ""
			}
		}
		rows = append(rows, Row{Line: firstLine + i, Fields: fields})
	}
	return rows
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
