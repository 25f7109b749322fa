package domain

import (
	"github.com/twpayne/go-geom"
)

// Feature is a map region as delivered by a geometry source: an opaque shape
// plus an untyped property bag.
type Feature struct {
	ID         string
	Geometry   geom.T
	Properties map[string]any
}

// StyledFeature is a feature with its resolved entity, value and fill.
type StyledFeature struct {
	Feature
	Match FeatureMatch
	Value Value
	Fill  string
}

// Layer is one rendering of the choropleth map.
type Layer struct {
	Level     Level
	Year      int
	StateCode int
	StateName string
	Breaks    []float64
	Legend    []LegendItem
	Features  []StyledFeature
}

// Matches counts the features resolved by each strategy.
func (l *Layer) Matches() map[MatchStrategy]int {
	out := make(map[MatchStrategy]int, 3)
	for _, f := range l.Features {
		out[f.Match.Strategy]++
	}
	return out
}

// BuildChoropleth colors features for the active level and year. At state
// level the breaks come from every coded state; at municipality level from the
// active state's municipalities. Features that resolve to nothing keep the
// no-data fill and stay on the map.
func BuildChoropleth(d *Dataset, sel Selection, features []Feature, bins int) *Layer {
	if bins < 1 {
		bins = DefaultBins
	}
	idx, keep := layerScope(d, sel)

	var values []Value
	for _, e := range idx.Entities(keep) {
		if e.HasCode {
			values = append(values, idx.Value(e.Raw, sel.Year))
		}
	}
	breaks := QuantileBreaks(values, bins)

	layer := &Layer{
		Level:    sel.Level,
		Year:     sel.Year,
		Breaks:   breaks,
		Legend:   Legend(breaks),
		Features: make([]StyledFeature, 0, len(features)),
	}
	if sel.Level == LevelMunicipality {
		layer.StateCode, layer.StateName = sel.StateCode, sel.StateName
	}

	probes := ProbesFor(sel.Level)
	for _, f := range features {
		m := ResolveFeature(f.Properties, probes, idx, keep)
		v := Missing
		if m.Strategy != MatchUnresolved {
			v = idx.Value(m.Entity.Raw, sel.Year)
		}
		layer.Features = append(layer.Features, StyledFeature{
			Feature: f,
			Match:   m,
			Value:   v,
			Fill:    ColorFor(v, breaks),
		})
	}
	return layer
}

// layerScope returns the index and entity filter the active level draws from.
func layerScope(d *Dataset, sel Selection) (*WideIndex, func(EntityKey) bool) {
	if sel.Level == LevelMunicipality {
		return d.Municipalities, InState(sel.StateCode)
	}
	return d.States, isState
}

// MatchFeature resolves the properties of a clicked feature against the
// entities the active layer draws.
func MatchFeature(d *Dataset, sel Selection, props map[string]any) FeatureMatch {
	idx, keep := layerScope(d, sel)
	return ResolveFeature(props, ProbesFor(sel.Level), idx, keep)
}
