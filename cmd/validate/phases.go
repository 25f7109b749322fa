package main

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// validateParsing fetches and parses every export. The dataset is nil when
// any export fails.
func validateParsing(ctx context.Context, fetcher domain.SourceFetcher, locations map[domain.Kind]string, cols domain.Columns) (*domain.Dataset, *phase) {
	p := &phase{name: "Export parsing"}

	raw := make(map[domain.Kind]string, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		loc, ok := locations[kind]
		if !ok {
			p.errorf("%s: no location configured", kind)
			continue
		}
		text, err := fetcher.Fetch(ctx, loc)
		if err != nil {
			p.errorf("%s: %v", kind, err)
			continue
		}
		raw[kind] = text
	}
	if !p.passed() {
		return nil, p
	}

	ds, err := domain.BuildDataset(raw, cols)
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}
	return ds, p
}

func validateYearCoverage(ds *domain.Dataset, minYear int) *phase {
	p := &phase{name: "Year coverage"}
	if len(ds.Years(minYear)) == 0 {
		p.errorf("state table has no year at or after %d (years: %v)", minYear, ds.States.Years)
	}
	for _, y := range ds.Municipalities.Years {
		if !ds.States.HasYear(y) {
			p.errorf("municipality year %d is missing from the state table", y)
		}
	}
	return p
}

// validateWideTotals checks that every Total row equals the sum of its rows.
func validateWideTotals(ds *domain.Dataset, tolerance float64) *phase {
	p := &phase{name: "Wide table totals"}
	for _, level := range []domain.Level{domain.LevelState, domain.LevelMunicipality} {
		idx := ds.Index(level)
		for _, y := range idx.Years {
			total := idx.Total(y)
			if !total.Valid {
				continue
			}
			sum := 0.0
			for _, c := range idx.Column(y) {
				if c.Value.Valid {
					sum += c.Value.Num
				}
			}
			if !within(sum, total.Num, tolerance) {
				p.errorf("%s %d: rows sum to %s, Total is %s", level, y, format(sum), format(total.Num))
			}
		}
	}
	return p
}

// validateLevelTotals checks that both wide tables report the same national total.
func validateLevelTotals(ds *domain.Dataset, tolerance float64) *phase {
	p := &phase{name: "State vs municipality totals"}
	for _, y := range ds.States.Years {
		st, mun := ds.States.Total(y), ds.Municipalities.Total(y)
		if !st.Valid || !mun.Valid {
			continue
		}
		if !within(st.Num, mun.Num, tolerance) {
			p.errorf("%d: state Total %s, municipality Total %s", y, format(st.Num), format(mun.Num))
		}
	}
	return p
}

// validateBreakdownTotals checks the Total column of each long table against
// the state table.
func validateBreakdownTotals(ds *domain.Dataset, tolerance float64) *phase {
	p := &phase{name: "Breakdown totals"}
	for _, dim := range domain.Dimensions {
		ls, ok := ds.Long(dim)
		if !ok || !ls.HasCategory(domain.TotalKey) {
			continue
		}
		for _, pt := range ls.Series(domain.TotalKey).Points {
			y, err := strconv.Atoi(pt.Label)
			if err != nil || !pt.Value.Valid {
				continue
			}
			want := ds.States.Total(y)
			if !want.Valid {
				continue
			}
			if !within(pt.Value.Num, want.Num, tolerance) {
				p.errorf("%s %d: Total %s, state table %s", dim, y, format(pt.Value.Num), format(want.Num))
			}
		}
	}
	return p
}

// validateSeasonalityTotals checks that each age band's months add up to its Total.
func validateSeasonalityTotals(ds *domain.Dataset, tolerance float64) *phase {
	p := &phase{name: "Age band monthly totals"}
	for _, band := range ds.AgeBands.Bands {
		total := ds.AgeBands.Total(band)
		if !total.Valid {
			continue
		}
		months, _ := ds.AgeBands.Months(band)
		sum := 0.0
		for _, pt := range months.Points {
			if pt.Value.Valid {
				sum += pt.Value.Num
			}
		}
		if !within(sum, total.Num, tolerance) {
			p.errorf("%s: months sum to %s, Total is %s", band, format(sum), format(total.Num))
		}
	}
	return p
}

func within(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
