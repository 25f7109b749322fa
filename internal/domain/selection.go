package domain

import (
	"errors"
	"fmt"
)

// BrazilName is the place name of the national selection.
const BrazilName = "Brasil"

// Level is the geographic granularity of the map.
type Level string

const (
	LevelState        Level = "UF"
	LevelMunicipality Level = "MUN"
)

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelState, LevelMunicipality:
		return Level(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Dimension selects the breakdown used by the time series chart.
type Dimension string

const (
	DimensionTotal     Dimension = "total"
	DimensionSex       Dimension = "sexo"
	DimensionRace      Dimension = "raca"
	DimensionEducation Dimension = "escolaridade"
)

// Dimensions lists the dimensions in selector order.
var Dimensions = []Dimension{DimensionTotal, DimensionSex, DimensionRace, DimensionEducation}

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// Label returns the pt-BR label of a dimension.
func (d Dimension) Label() string {
	switch d {
	case DimensionSex:
		return "Sexo"
	case DimensionRace:
		return "Raça/cor"
	case DimensionEducation:
		return "Escolaridade"
	}
	return "Total"
}

var (
	ErrUnknownLevel     = errors.New("unknown level")
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownYear      = errors.New("unknown year")
	ErrUnknownState     = errors.New("unknown state")
	ErrUnknownAgeBand   = errors.New("unknown age band")
)

// Selection is the dashboard session: what the user is looking at. It is
// owned by one controller and passed explicitly to every computation.
type Selection struct {
	Level        Level  `json:"level"`
	Year         int    `json:"year"`
	StateCode    int    `json:"state_code"`
	StateName    string `json:"state_name"`
	SelectedName string `json:"selected_name"`
	// Scope is the level of the selected entity, which differs from Level
	// when a whole state is selected on the municipality map.
	Scope         Level     `json:"scope"`
	SelectedValue Value     `json:"selected_value"`
	Dimension     Dimension `json:"dimension"`
	Category      string    `json:"category"`
	AgeBand       string    `json:"age_band"`
}

// DefaultSelection opens the dashboard on the latest year at or after
// minYear, the national view, the preferred state when present and the
// preferred age band.
func DefaultSelection(d *Dataset, minYear, preferredState int) Selection {
	s := Selection{
		Level:        LevelState,
		SelectedName: BrazilName,
		Scope:        LevelState,
		Dimension:    DimensionTotal,
		Category:     TotalKey,
	}
	if years := d.Years(minYear); len(years) > 0 {
		s.Year = years[len(years)-1]
	}

	states := d.StateOptions()
	for _, st := range states {
		if st.Code == preferredState {
			s.StateCode, s.StateName = st.Code, st.Name
			break
		}
	}
	if s.StateName == "" && len(states) > 0 {
		s.StateCode, s.StateName = states[0].Code, states[0].Name
	}

	if d.AgeBands != nil {
		s.AgeBand = d.AgeBands.DefaultBand()
	}
	s.Refresh(d)
	return s
}

// Refresh re-resolves the selected value for the active year.
func (s *Selection) Refresh(d *Dataset) {
	idx, key, ok := d.ResolveSelected(*s)
	if !ok {
		s.SelectedValue = Missing
		return
	}
	s.SelectedValue = idx.Value(key, s.Year)
}

// SetYear switches the active year.
func (s *Selection) SetYear(d *Dataset, year int) error {
	if !d.States.HasYear(year) {
		return fmt.Errorf("%w: %d", ErrUnknownYear, year)
	}
	s.Year = year
	s.Refresh(d)
	return nil
}

// SetLevel switches the map level and clears the selected entity: the
// national view at state level, the active state at municipality level.
func (s *Selection) SetLevel(d *Dataset, level Level) error {
	if _, err := ParseLevel(string(level)); err != nil {
		return err
	}
	s.Level = level
	s.Scope = LevelState
	if level == LevelState {
		s.SelectedName = BrazilName
	} else {
		s.SelectedName = s.StateName
	}
	s.Refresh(d)
	return nil
}

// SetState changes the active state. At municipality level the selection
// moves to the new state as a whole.
func (s *Selection) SetState(d *Dataset, code int) error {
	st, ok := d.State(code)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownState, code)
	}
	s.StateCode, s.StateName = st.Code, st.Name
	if s.Level == LevelMunicipality {
		s.SelectedName, s.Scope = s.StateName, LevelState
		s.Refresh(d)
	}
	return nil
}

// SetDimension changes the series breakdown and picks its first category.
func (s *Selection) SetDimension(d *Dataset, dim Dimension) error {
	if _, err := ParseDimension(string(dim)); err != nil {
		return err
	}
	cats := d.Categories(dim)
	if len(cats) == 0 {
		return fmt.Errorf("%w: no categories for %q", ErrUnknownCategory, dim)
	}
	s.Dimension, s.Category = dim, cats[0]
	return nil
}

// SetCategory picks a category of the active dimension.
func (s *Selection) SetCategory(d *Dataset, category string) error {
	for _, c := range d.Categories(s.Dimension) {
		if c == category {
			s.Category = category
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %q", ErrUnknownCategory, category, s.Dimension)
}

// SetAgeBand picks the age band of the seasonality chart.
func (s *Selection) SetAgeBand(d *Dataset, band string) error {
	if d.AgeBands == nil {
		return fmt.Errorf("%w: %q", ErrUnknownAgeBand, band)
	}
	if _, ok := d.AgeBands.Months(band); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAgeBand, band)
	}
	s.AgeBand = band
	return nil
}

// SelectFeature records a map click. A state resolved by code also becomes the
// active state, so switching to municipality level drills into it.
func (s *Selection) SelectFeature(d *Dataset, m FeatureMatch) {
	s.Scope = s.Level
	if m.Strategy == MatchUnresolved {
		s.SelectedName = m.Name
		s.SelectedValue = Missing
		return
	}
	s.SelectedName = m.Entity.Name
	if s.Level == LevelState && m.Entity.HasCode {
		if st, ok := d.State(m.Entity.Code); ok {
			s.StateCode, s.StateName = st.Code, st.Name
		}
	}
	s.Refresh(d)
}
