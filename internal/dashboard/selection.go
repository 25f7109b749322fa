package dashboard

import (
	"fmt"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
)

// SelectionUpdate is a partial change of the selection. Nil fields are left
// untouched; fields apply in declaration order.
type SelectionUpdate struct {
	Level     *domain.Level     `json:"level,omitempty"`
	Year      *int              `json:"year,omitempty"`
	StateCode *int              `json:"state_code,omitempty"`
	Dimension *domain.Dimension `json:"dimension,omitempty"`
	Category  *string           `json:"category,omitempty"`
	AgeBand   *string           `json:"age_band,omitempty"`
}

// DimensionChoice is one entry of the dimension selector.
type DimensionChoice struct {
	Value domain.Dimension `json:"value"`
	Label string           `json:"label"`
}

// Choices lists what every selector may offer for the current selection.
type Choices struct {
	Years      []int                `json:"years"`
	Levels     []domain.Level       `json:"levels"`
	States     []domain.StateOption `json:"states"`
	Dimensions []DimensionChoice    `json:"dimensions"`
	Categories []string             `json:"categories"`
	AgeBands   []string             `json:"age_bands"`
}

// Selection returns a copy of the current selection.
func (d *Dashboard) Selection() (domain.Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.loaded(); err != nil {
		return domain.Selection{}, err
	}
	return d.sel, nil
}

// Choices returns the selector options.
func (d *Dashboard) Choices() (Choices, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return Choices{}, err
	}

	c := Choices{
		Years:      ds.Years(d.settings.MinYear),
		Levels:     []domain.Level{domain.LevelState, domain.LevelMunicipality},
		States:     ds.StateOptions(),
		Categories: ds.Categories(d.sel.Dimension),
	}
	for _, dim := range domain.Dimensions {
		c.Dimensions = append(c.Dimensions, DimensionChoice{Value: dim, Label: dim.Label()})
	}
	if ds.AgeBands != nil {
		c.AgeBands = append([]string(nil), ds.AgeBands.Bands...)
	}
	return c, nil
}

// Update applies a partial change atomically: if any field is invalid the
// selection is left as it was.
func (d *Dashboard) Update(u SelectionUpdate) (domain.Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return domain.Selection{}, err
	}

	next := d.sel
	if u.Level != nil {
		if err := next.SetLevel(ds, *u.Level); err != nil {
			return d.sel, err
		}
	}
	if u.Year != nil {
		if *u.Year < d.settings.MinYear {
			return d.sel, fmt.Errorf("%w: %d is before %d", domain.ErrUnknownYear, *u.Year, d.settings.MinYear)
		}
		if err := next.SetYear(ds, *u.Year); err != nil {
			return d.sel, err
		}
	}
	if u.StateCode != nil {
		if err := next.SetState(ds, *u.StateCode); err != nil {
			return d.sel, err
		}
	}
	if u.Dimension != nil {
		if err := next.SetDimension(ds, *u.Dimension); err != nil {
			return d.sel, err
		}
	}
	if u.Category != nil {
		if err := next.SetCategory(ds, *u.Category); err != nil {
			return d.sel, err
		}
	}
	if u.AgeBand != nil {
		if err := next.SetAgeBand(ds, *u.AgeBand); err != nil {
			return d.sel, err
		}
	}

	d.sel = next
	d.token++
	return next, nil
}

// Reset restores the selection the dashboard opens with.
func (d *Dashboard) Reset() (domain.Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return domain.Selection{}, err
	}
	d.sel = domain.DefaultSelection(ds, d.settings.MinYear, d.settings.DefaultState)
	d.token++
	return d.sel, nil
}

// SelectFeature records a click on a map feature. The map layer itself does
// not depend on the clicked entity, so no new request token is issued.
func (d *Dashboard) SelectFeature(props map[string]any) (domain.Selection, domain.FeatureMatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return domain.Selection{}, domain.FeatureMatch{}, err
	}
	m := domain.MatchFeature(ds, d.sel, props)
	d.logMatch(string(d.sel.Level), featureID(props), m)
	d.sel.SelectFeature(ds, m)
	return d.sel, m, nil
}

func featureID(props map[string]any) string {
	if id, ok := props["id"]; ok {
		return fmt.Sprint(id)
	}
	return ""
}
