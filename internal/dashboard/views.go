package dashboard

import (
	"context"
	"fmt"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
)

// SummaryView is the insights panel: figures plus their pt-BR sentences.
type SummaryView struct {
	domain.Summary
	Narrative []string `json:"narrative"`
}

// Summary computes the insights panel for the current selection.
func (d *Dashboard) Summary() (SummaryView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return SummaryView{}, err
	}
	sum := domain.Summarize(ds, d.sel)
	return SummaryView{Summary: sum, Narrative: domain.Narrative(sum)}, nil
}

// Series returns the time series of the selected dimension and category.
func (d *Dashboard) Series() (domain.Series, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return domain.Series{}, err
	}
	return domain.SeriesFor(ds, d.sel, d.settings.MinYear)
}

// Seasonality returns the monthly values of the selected age band.
func (d *Dashboard) Seasonality() (domain.Series, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return domain.Series{}, err
	}
	return domain.SeasonalityFor(ds, d.sel)
}

// Index returns the wide index behind a level, for exports.
func (d *Dashboard) Index(level domain.Level) (*domain.WideIndex, error) {
	if _, err := domain.ParseLevel(string(level)); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.loaded()
	if err != nil {
		return nil, err
	}
	return ds.Index(level), nil
}

// MapLayer builds the choropleth for the current selection. Each call takes a
// new request token; if a newer call or a selection change lands while the
// geometry is being fetched, the result is discarded with ErrStaleResponse.
// Geometry failures are reported on the map panel only.
func (d *Dashboard) MapLayer(ctx context.Context) (*domain.Layer, error) {
	d.mu.Lock()
	ds, err := d.loaded()
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	sel := d.sel
	d.token++
	token := d.token
	d.mu.Unlock()

	level := string(sel.Level)
	var features []domain.Feature
	if sel.Level == domain.LevelMunicipality {
		features, err = d.geometry.Municipalities(ctx, sel.StateCode)
	} else {
		features, err = d.geometry.States(ctx)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if token != d.token {
		d.metrics.StaleResponses.Inc()
		d.metrics.GeometryRequests.WithLabelValues(level, "stale").Inc()
		d.logger.Debug("stale map response discarded", "token", token, "latest", d.token)
		return nil, ErrStaleResponse
	}
	if err != nil {
		d.metrics.GeometryRequests.WithLabelValues(level, "error").Inc()
		d.status.MapError = err.Error()
		d.logger.Warn("geometry fetch failed", "level", level, "state", sel.StateCode, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGeometryUnavailable, err)
	}

	d.status.MapError = ""
	d.metrics.GeometryRequests.WithLabelValues(level, "success").Inc()
	layer := domain.BuildChoropleth(ds, sel, features, d.settings.Bins)
	for strategy, n := range layer.Matches() {
		d.metrics.FeatureMatches.WithLabelValues(level, string(strategy)).Add(float64(n))
	}
	for _, f := range layer.Features {
		d.logMatch(level, f.ID, f.Match)
	}
	return layer, nil
}

// logMatch records features that did not resolve by code.
func (d *Dashboard) logMatch(level, featureID string, m domain.FeatureMatch) {
	switch m.Strategy {
	case domain.MatchName:
		d.logger.Debug("feature matched by name fallback",
			"level", level, "feature", featureID, "name", m.Name, "entity", m.Entity.Raw)
	case domain.MatchUnresolved:
		d.logger.Debug("feature unresolved", "level", level, "feature", featureID, "name", m.Name)
	}
}
