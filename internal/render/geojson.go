package render

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/housing-transit/internal/model"
)

// featureCollection encodes neighborhood outlines keyed by name, the id
// plotly matches choropleth locations against.
func featureCollection(scores []model.ScoredNeighborhood) (json.RawMessage, error) {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(scores))}
	for _, s := range scores {
		if s.Geometry == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       s.Name,
			Geometry: s.Geometry,
			Properties: map[string]interface{}{
				"name": s.Name,
			},
		})
	}
	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "render: encode geojson")
	}
	return data, nil
}
