// Package scorer computes the housing-transit score per neighborhood and
// ranks the results.
package scorer

import (
	"sort"

	"github.com/sells-group/housing-transit/internal/model"
	"github.com/sells-group/housing-transit/internal/spatial"
)

// TransitWeight scales conn_dist so its spread is comparable with housing
// unit counts.
const TransitWeight = 4.5

// ConnDist groups stations by connectivity level and sums level × count.
// An empty set scores 0.
func ConnDist(stations []model.Station) int {
	levels := make(map[int]int)
	for _, st := range stations {
		levels[st.Connectivity]++
	}
	total := 0
	for conn, n := range levels {
		total += conn * n
	}
	return total
}

// AdjConnDist returns (c + 1) * TransitWeight.
func AdjConnDist(c int) float64 {
	return float64(c+1) * TransitWeight
}

// Score returns (h + 1) * AdjConnDist(c) - TransitWeight. A neighborhood with
// no housing and no stations scores exactly 0.
func Score(h, c int) float64 {
	return float64(h+1)*AdjConnDist(c) - TransitWeight
}

// Build produces one scored row per neighborhood, in boundary order. Missing
// housing counts and stations default to zero; counts for names absent from
// hoods are ignored.
func Build(hoods []model.Neighborhood, counts map[string]int, a spatial.Assignment) []model.ScoredNeighborhood {
	out := make([]model.ScoredNeighborhood, 0, len(hoods))
	for _, h := range hoods {
		stations := a.ByNeighborhood[h.Name]
		units := counts[h.Name]
		cd := ConnDist(stations)
		out = append(out, model.ScoredNeighborhood{
			Name:         h.Name,
			Geometry:     h.Geometry,
			HousingUnits: units,
			ConnDist:     cd,
			AdjConnDist:  AdjConnDist(cd),
			Score:        Score(units, cd),
			Stations:     stations,
		})
	}
	return out
}

// Rank returns a copy sorted by exact score, highest first. Equal scores are
// ordered by name.
func Rank(scores []model.ScoredNeighborhood) []model.ScoredNeighborhood {
	ranked := make([]model.ScoredNeighborhood, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// Top returns the first n ranked rows, or all of them when fewer exist.
func Top(ranked []model.ScoredNeighborhood, n int) []model.ScoredNeighborhood {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
