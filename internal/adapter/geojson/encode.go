package geojson

import (
	"encoding/json"
	"maps"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Properties added to every styled feature.
const (
	PropFill  = "fill"
	PropValue = "value"
	PropCode  = "code"
	PropName  = "name"
	PropMatch = "match"
)

// EncodeLayer renders a styled layer as a FeatureCollection whose bbox covers
// every feature with a geometry.
func EncodeLayer(layer *domain.Layer) ([]byte, error) {
	fc := geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(layer.Features)),
	}

	bounds := geom.NewBounds(geom.XY)
	hasGeometry := false
	for _, f := range layer.Features {
		if f.Geometry != nil {
			bounds.Extend(f.Geometry)
			hasGeometry = true
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   f.Geometry,
			Properties: styledProperties(f),
		})
	}
	if hasGeometry {
		fc.BBox = bounds
	}
	return json.Marshal(&fc)
}

func styledProperties(f domain.StyledFeature) map[string]any {
	props := make(map[string]any, len(f.Properties)+5)
	maps.Copy(props, f.Properties)

	props[PropFill] = f.Fill
	props[PropValue] = f.Value
	props[PropMatch] = string(f.Match.Strategy)
	if f.Match.Strategy != domain.MatchUnresolved {
		props[PropName] = f.Match.Entity.Name
		if f.Match.Entity.HasCode {
			props[PropCode] = f.Match.Entity.Code
		}
	} else if f.Match.Name != "" {
		props[PropName] = f.Match.Name
	}
	return props
}
