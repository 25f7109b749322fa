package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// HeaderScanLines bounds the preamble search. TabNet preambles are 3-6 lines.
const HeaderScanLines = 30

// Delimiter is the TabNet field separator.
const Delimiter = ';'

var (
	// ErrNoHeader is returned when no table header appears within HeaderScanLines.
	ErrNoHeader = errors.New("no table header found")

	// ErrMissingKeyColumn is returned when the requested key column is not in the header.
	ErrMissingKeyColumn = errors.New("key column not found")
)

// footerMarkers open the annotation block that TabNet appends after the data.
var footerMarkers = []string{"Fonte", "Notas", "Source:", "Notes:"}

// RawRecord maps a column name to the raw cell text.
type RawRecord map[string]string

// Table is a parsed export: the header columns in file order and the data records.
type Table struct {
	Columns []string
	Records []RawRecord
}

// ExtractTable strips the metadata preamble from a raw export and returns the
// table text starting at the header line. Line endings are normalized to "\n".
func ExtractTable(text string) (string, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	limit := min(len(lines), HeaderScanLines)
	for i := 0; i < limit; i++ {
		if looksLikeHeader(lines[i]) {
			return strings.Join(lines[i:], "\n"), nil
		}
	}
	return "", fmt.Errorf("%w in first %d lines", ErrNoHeader, limit)
}

// looksLikeHeader matches `"<col>";...`.
func looksLikeHeader(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, `"`) && strings.Contains(line, `"`+string(Delimiter))
}

// ParseTable extracts and parses an export into records keyed by header column.
// Footer annotation rows, and everything after the first one, are dropped.
func ParseTable(text string) (*Table, error) {
	body, err := ExtractTable(text)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(body))
	r.Comma = Delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	table := &Table{Columns: columns}
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if isBlank(fields) {
			continue
		}
		if isFooter(fields[0]) {
			break
		}
		rec := make(RawRecord, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				rec[col] = fields[i]
			}
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func isFooter(first string) bool {
	first = strings.TrimSpace(first)
	for _, m := range footerMarkers {
		if strings.HasPrefix(first, m) {
			return true
		}
	}
	return false
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
