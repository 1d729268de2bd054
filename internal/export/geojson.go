package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/housing-transit/internal/model"
)

// WriteGeoJSON writes one feature per neighborhood with its scored
// properties.
func WriteGeoJSON(path string, scores []model.ScoredNeighborhood) error {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(scores))}
	for i, s := range scores {
		if s.Geometry == nil {
			continue
		}
		names := make([]string, len(s.Stations))
		for j, st := range s.Stations {
			names[j] = st.Name
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       s.Name,
			Geometry: s.Geometry,
			Properties: map[string]interface{}{
				"pri_neigh":             s.Name,
				"rank":                  i + 1,
				"housing_units":         s.HousingUnits,
				"conn_dist":             s.ConnDist,
				"adj_conn_dist":         s.AdjConnDist,
				"housing_transit_score": s.ScoreInt(),
				"stations":              names,
			},
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}
