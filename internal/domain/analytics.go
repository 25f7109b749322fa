package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrNoSeries is returned when a chart has nothing to draw.
var ErrNoSeries = errors.New("no series data")

// ShareOfTotal returns value/total as a percentage. It is missing when either
// side is missing or the total is zero.
func ShareOfTotal(value, total Value) Value {
	if !value.Valid || !total.Valid || total.Num == 0 {
		return Missing
	}
	return finiteOrMissing(value.Num / total.Num * 100)
}

// Trend returns the year-over-year change in percent. A zero previous value
// has no meaningful ratio, so the trend is missing rather than infinite.
func Trend(current, previous Value) Value {
	if !current.Valid || !previous.Valid || previous.Num == 0 {
		return Missing
	}
	return finiteOrMissing((current.Num - previous.Num) / previous.Num * 100)
}

func finiteOrMissing(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Known(f)
}

// Summary is the key figure panel for a selection.
type Summary struct {
	Place        string `json:"place"`
	Level        Level  `json:"level"`
	Year         int    `json:"year"`
	Cases        Value  `json:"cases"`
	BrazilTotal  Value  `json:"brazil_total"`
	Share        Value  `json:"share"`
	PreviousYear int    `json:"previous_year"`
	Previous     Value  `json:"previous"`
	Trend        Value  `json:"trend"`
}

// Summarize derives the figures for sel. The previous year's value is found by
// name, like the current one; the index is only read.
func Summarize(d *Dataset, sel Selection) Summary {
	sum := Summary{
		Place:        placeName(sel),
		Level:        sel.Level,
		Year:         sel.Year,
		PreviousYear: sel.Year - 1,
		Cases:        Missing,
		Previous:     Missing,
		BrazilTotal:  d.States.Total(sel.Year),
	}
	if idx, key, ok := d.ResolveSelected(sel); ok {
		sum.Cases = idx.Value(key, sel.Year)
		sum.Previous = idx.Value(key, sel.Year-1)
	}
	sum.Share = ShareOfTotal(sum.Cases, sum.BrazilTotal)
	sum.Trend = Trend(sum.Cases, sum.Previous)
	return sum
}

func placeName(sel Selection) string {
	switch {
	case sel.Scope == LevelMunicipality && sel.SelectedName != "":
		return fmt.Sprintf("%s / %s", sel.SelectedName, sel.StateName)
	case sel.SelectedName != "":
		return sel.SelectedName
	case sel.Level == LevelMunicipality:
		return sel.StateName
	}
	return BrazilName
}

// SeriesFor returns the yearly series for the selected dimension. The total
// dimension reads the national row of the state table from minYear on; the
// others read the selected category of their long table.
func SeriesFor(d *Dataset, sel Selection, minYear int) (Series, error) {
	if sel.Dimension == DimensionTotal || sel.Dimension == "" {
		s := Series{Label: BrazilName + " (" + TotalKey + ")"}
		for _, y := range d.Years(minYear) {
			s.Points = append(s.Points, Point{Label: strconv.Itoa(y), Value: d.States.Total(y)})
		}
		if len(s.Points) == 0 {
			return Series{}, fmt.Errorf("%w: no years from %d", ErrNoSeries, minYear)
		}
		return s, nil
	}

	ls, ok := d.Long(sel.Dimension)
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownDimension, sel.Dimension)
	}
	if !ls.HasCategory(sel.Category) {
		return Series{}, fmt.Errorf("%w: %q for %q", ErrUnknownCategory, sel.Category, sel.Dimension)
	}
	return ls.Series(sel.Category), nil
}

// SeasonalityFor returns the monthly values of the selected age band.
func SeasonalityFor(d *Dataset, sel Selection) (Series, error) {
	if d.AgeBands == nil {
		return Series{}, ErrNoSeries
	}
	s, ok := d.AgeBands.Months(sel.AgeBand)
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownAgeBand, sel.AgeBand)
	}
	return s, nil
}
