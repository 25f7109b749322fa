package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var yearColumnRe = regexp.MustCompile(`^\d{4}$`)

// YearSeries maps a four-digit year to its value.
type YearSeries map[int]Value

// Cell is one entity's value for a given year.
type Cell struct {
	Key   EntityKey `json:"key"`
	Value Value     `json:"value"`
}

// WideIndex is a "one row per entity, one column per year" export indexed by
// raw row key. It is immutable once built.
type WideIndex struct {
	Years []int
	Keys  []string

	keyColumn string
	rows      map[string]YearSeries
	parsed    map[string]EntityKey
}

// BuildWideIndex indexes a wide table by the given key column. Years come from
// the header columns that look like four-digit years.
func BuildWideIndex(t *Table, keyColumn string) (*WideIndex, error) {
	if !t.HasColumn(keyColumn) {
		return nil, fmt.Errorf("%w: %q", ErrMissingKeyColumn, keyColumn)
	}

	idx := &WideIndex{
		Years:     yearsFromColumns(t.Columns),
		keyColumn: keyColumn,
		rows:      make(map[string]YearSeries, len(t.Records)),
		parsed:    make(map[string]EntityKey, len(t.Records)),
	}

	for _, rec := range t.Records {
		key := strings.TrimSpace(rec[keyColumn])
		if key == "" {
			continue
		}
		if _, dup := idx.rows[key]; dup {
			continue
		}
		series := make(YearSeries, len(idx.Years))
		for _, y := range idx.Years {
			series[y] = ParseNumber(rec[strconv.Itoa(y)])
		}
		idx.Keys = append(idx.Keys, key)
		idx.rows[key] = series
		idx.parsed[key] = ParseEntityKey(key)
	}
	return idx, nil
}

func yearsFromColumns(columns []string) []int {
	var years []int
	for _, c := range columns {
		if !yearColumnRe.MatchString(c) {
			continue
		}
		y, err := strconv.Atoi(c)
		if err == nil {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// KeyColumn returns the column the index was keyed by.
func (w *WideIndex) KeyColumn() string { return w.keyColumn }

// Len returns the number of indexed rows, Total included.
func (w *WideIndex) Len() int { return len(w.Keys) }

// Row returns the full series for a raw key. The returned map is a copy.
func (w *WideIndex) Row(key string) (YearSeries, bool) {
	s, ok := w.rows[key]
	if !ok {
		return nil, false
	}
	out := make(YearSeries, len(s))
	for y, v := range s {
		out[y] = v
	}
	return out, true
}

// Entity returns the decomposed key for a raw key.
func (w *WideIndex) Entity(key string) (EntityKey, bool) {
	k, ok := w.parsed[key]
	return k, ok
}

// Value returns the cell for key and year; unknown keys or years are missing.
func (w *WideIndex) Value(key string, year int) Value {
	s, ok := w.rows[key]
	if !ok {
		return Missing
	}
	return s[year]
}

// Total returns the national aggregate for a year.
func (w *WideIndex) Total(year int) Value {
	return w.Value(TotalKey, year)
}

// HasYear reports whether year is one of the indexed columns.
func (w *WideIndex) HasYear(year int) bool {
	for _, y := range w.Years {
		if y == year {
			return true
		}
	}
	return false
}

// Column returns every non-Total entity's value for a year, in file order.
func (w *WideIndex) Column(year int) []Cell {
	cells := make([]Cell, 0, len(w.Keys))
	for _, key := range w.Keys {
		if key == TotalKey {
			continue
		}
		cells = append(cells, Cell{Key: w.parsed[key], Value: w.rows[key][year]})
	}
	return cells
}

// Entities returns the decomposed keys of all non-Total rows accepted by keep,
// in file order. A nil keep accepts everything.
func (w *WideIndex) Entities(keep func(EntityKey) bool) []EntityKey {
	out := make([]EntityKey, 0, len(w.Keys))
	for _, key := range w.Keys {
		if key == TotalKey {
			continue
		}
		k := w.parsed[key]
		if keep == nil || keep(k) {
			out = append(out, k)
		}
	}
	return out
}

// LookupByName finds the first non-Total row whose name matches (see NameKey)
// and that keep accepts.
func (w *WideIndex) LookupByName(name string, keep func(EntityKey) bool) (EntityKey, bool) {
	target := NameKey(name)
	if target == "" {
		return EntityKey{}, false
	}
	for _, key := range w.Keys {
		if key == TotalKey {
			continue
		}
		k := w.parsed[key]
		if keep != nil && !keep(k) {
			continue
		}
		if NameKey(k.Raw) == target {
			return k, true
		}
	}
	return EntityKey{}, false
}

// InState returns a filter accepting municipalities of the given state.
func InState(stateCode int) func(EntityKey) bool {
	return func(k EntityKey) bool {
		return k.IsMunicipality() && ParentStateCode(k.Code) == stateCode
	}
}
