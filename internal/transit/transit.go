// Package transit derives per-station connectivity from directional rail-stop
// entries.
package transit

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/model"
	"github.com/sells-group/housing-transit/internal/overrides"
)

// LineCount returns the number of counted lines serving a stop entry.
func LineCount(s model.RailStop) int {
	return s.Lines.Count()
}

// DropEndpoints removes stop entries whose id is in the endpoint set.
func DropEndpoints(stops []model.RailStop, endpoints map[int]bool) []model.RailStop {
	out := make([]model.RailStop, 0, len(stops))
	for _, s := range stops {
		if endpoints[s.StopID] {
			continue
		}
		out = append(out, s)
	}
	return out
}

type groupKey struct {
	name string
	id   int
	lat  float64
	lon  float64
}

// Aggregate drops endpoint entries, sums line counts per physical station and
// applies the connectivity overrides. Stations are ordered by name, id,
// latitude and longitude.
func Aggregate(stops []model.RailStop, t *overrides.Tables) ([]model.Station, error) {
	log := zap.L().With(zap.String("component", "transit"))

	kept := DropEndpoints(stops, t.EndpointSet())
	if len(kept) == 0 {
		return nil, eris.New("transit: no stops left after endpoint removal")
	}
	log.Debug("endpoint entries dropped", zap.Int("dropped", len(stops)-len(kept)))

	sums := make(map[groupKey]int)
	for _, s := range kept {
		sums[groupKey{name: s.StationName, id: s.StationID, lat: s.Lat, lon: s.Lon}] += LineCount(s)
	}

	stations := make([]model.Station, 0, len(sums))
	for k, n := range sums {
		stations = append(stations, model.Station{
			StationID:    k.id,
			Name:         k.name,
			Lat:          k.lat,
			Lon:          k.lon,
			Connectivity: n,
		})
	}
	sort.Slice(stations, func(i, j int) bool {
		a, b := stations[i], stations[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.StationID != b.StationID {
			return a.StationID < b.StationID
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		return a.Lon < b.Lon
	})

	applyOverrides(stations, t)

	rows := make(map[int]int, len(stations))
	for _, st := range stations {
		rows[st.StationID]++
		if st.Connectivity < 1 {
			log.Warn("station has no counted lines",
				zap.Int("station_id", st.StationID),
				zap.String("station", st.Name),
			)
		}
	}
	for _, st := range stations {
		if n := rows[st.StationID]; n > 1 {
			log.Warn("station id spans several grouped rows",
				zap.Int("station_id", st.StationID),
				zap.String("station", st.Name),
				zap.Int("rows", n),
			)
			rows[st.StationID] = 0
		}
	}

	return stations, nil
}

// applyOverrides corrects one grouped row per override: the first row for the
// station id in sorted order. Further rows sharing the id keep their sums.
func applyOverrides(stations []model.Station, t *overrides.Tables) {
	byStation := t.ConnectivityByStation()
	applied := make(map[int]bool, len(byStation))
	for i := range stations {
		o, ok := byStation[stations[i].StationID]
		if !ok || applied[o.StationID] {
			continue
		}
		zap.L().Debug("transit: connectivity override",
			zap.Int("station_id", o.StationID),
			zap.String("station", stations[i].Name),
			zap.Int("computed", stations[i].Connectivity),
			zap.Int("override", o.Connectivity),
		)
		stations[i].Connectivity = o.Connectivity
		stations[i].Overridden = true
		applied[o.StationID] = true
	}
	for _, o := range t.ConnectivityOverrides {
		if !applied[o.StationID] {
			zap.L().Warn("transit: override targets an absent station",
				zap.Int("station_id", o.StationID),
				zap.String("name", o.Name),
			)
		}
	}
}

// DedupeLocations returns one join point per station id, taken from the last
// stop entry for that id in input order.
func DedupeLocations(stops []model.RailStop) map[int]model.Point {
	points := make(map[int]model.Point)
	for _, s := range stops {
		points[s.StationID] = model.Point{Lat: s.Lat, Lon: s.Lon}
	}
	return points
}
