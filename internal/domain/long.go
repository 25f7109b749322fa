package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Months are the column labels of the age band table, in calendar order.
var Months = []string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Point is one labelled value of a chart series.
type Point struct {
	Label string `json:"label"`
	Value Value  `json:"value"`
}

// Series is a labelled sequence of points ready for a chart.
type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// LongSeries is a "one row per year, one column per category" export, such as
// cases by sex. It is consumed as-is, without re-indexing.
type LongSeries struct {
	Years      []int
	Categories []string

	rows []RawRecord
}

// BuildLongSeries reads a long table whose rows are keyed by yearColumn.
// Rows whose year does not parse (blank lines, stray annotations) are skipped.
// Categories keep file order with Total moved last.
func BuildLongSeries(t *Table, yearColumn string) (*LongSeries, error) {
	if !t.HasColumn(yearColumn) {
		return nil, fmt.Errorf("%w: %q", ErrMissingKeyColumn, yearColumn)
	}

	ls := &LongSeries{}
	hasTotal := false
	for _, c := range t.Columns {
		switch c {
		case yearColumn:
		case TotalKey:
			hasTotal = true
		default:
			ls.Categories = append(ls.Categories, c)
		}
	}
	if hasTotal {
		ls.Categories = append(ls.Categories, TotalKey)
	}

	for _, rec := range t.Records {
		y, err := strconv.Atoi(strings.TrimSpace(rec[yearColumn]))
		if err != nil {
			continue
		}
		ls.Years = append(ls.Years, y)
		ls.rows = append(ls.rows, rec)
	}
	return ls, nil
}

// HasCategory reports whether category is one of the table's columns.
func (ls *LongSeries) HasCategory(category string) bool {
	for _, c := range ls.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Series returns the per-year values of one category, in file order.
func (ls *LongSeries) Series(category string) Series {
	s := Series{Label: category, Points: make([]Point, len(ls.rows))}
	for i, rec := range ls.rows {
		s.Points[i] = Point{Label: strconv.Itoa(ls.Years[i]), Value: ParseNumber(rec[category])}
	}
	return s
}

// Seasonality is the age band by notification month export.
type Seasonality struct {
	Bands []string

	rows map[string]RawRecord
}

// BuildSeasonality indexes the age band table by bandColumn.
func BuildSeasonality(t *Table, bandColumn string) (*Seasonality, error) {
	if !t.HasColumn(bandColumn) {
		return nil, fmt.Errorf("%w: %q", ErrMissingKeyColumn, bandColumn)
	}
	s := &Seasonality{rows: make(map[string]RawRecord, len(t.Records))}
	for _, rec := range t.Records {
		band := strings.TrimSpace(rec[bandColumn])
		if band == "" {
			continue
		}
		if _, dup := s.rows[band]; dup {
			continue
		}
		s.Bands = append(s.Bands, band)
		s.rows[band] = rec
	}
	return s, nil
}

// Months returns the monthly values of one age band.
func (s *Seasonality) Months(band string) (Series, bool) {
	rec, ok := s.rows[band]
	if !ok {
		return Series{}, false
	}
	out := Series{Label: band, Points: make([]Point, len(Months))}
	for i, m := range Months {
		out.Points[i] = Point{Label: m, Value: ParseNumber(rec[m])}
	}
	return out, true
}

// DefaultBand prefers the 20-39 band the dashboard opens with, falling back
// to the first band.
func (s *Seasonality) DefaultBand() string {
	for _, b := range s.Bands {
		if strings.Contains(b, "20") {
			return b
		}
	}
	if len(s.Bands) > 0 {
		return s.Bands[0]
	}
	return ""
}

// Total returns the band's Total column.
func (s *Seasonality) Total(band string) Value {
	rec, ok := s.rows[band]
	if !ok {
		return Missing
	}
	return ParseNumber(rec[TotalKey])
}
