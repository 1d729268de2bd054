package scorer

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/housing-transit/internal/model"
)

// Summary describes the distribution of scored neighborhoods.
type Summary struct {
	Neighborhoods int     `json:"neighborhoods"`
	TotalUnits    int     `json:"total_units"`
	TotalStations int     `json:"total_stations"`
	ZeroHousing   int     `json:"zero_housing"`
	ZeroTransit   int     `json:"zero_transit"`
	MeanUnits     float64 `json:"mean_units"`
	MedianUnits   float64 `json:"median_units"`
	MeanConnDist  float64 `json:"mean_conn_dist"`
	MedianConn    float64 `json:"median_conn_dist"`
	MeanScore     float64 `json:"mean_score"`
	MedianScore   float64 `json:"median_score"`

	// Correlation is the Pearson coefficient between housing units and
	// conn_dist. It is NaN when either series is constant.
	Correlation float64 `json:"correlation"`
}

// MarshalJSON encodes an undefined correlation as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	out := struct {
		plain
		Correlation *float64 `json:"correlation"`
	}{plain: plain(s)}
	if !math.IsNaN(s.Correlation) {
		c := s.Correlation
		out.Correlation = &c
	}
	return json.Marshal(out)
}

// Summarize computes descriptive statistics over the scored rows.
func Summarize(scores []model.ScoredNeighborhood) Summary {
	s := Summary{Neighborhoods: len(scores), Correlation: math.NaN()}
	if len(scores) == 0 {
		return s
	}

	units := make([]float64, len(scores))
	conn := make([]float64, len(scores))
	score := make([]float64, len(scores))
	for i, sc := range scores {
		units[i] = float64(sc.HousingUnits)
		conn[i] = float64(sc.ConnDist)
		score[i] = sc.Score
		s.TotalUnits += sc.HousingUnits
		s.TotalStations += len(sc.Stations)
		if sc.HousingUnits == 0 {
			s.ZeroHousing++
		}
		if sc.ConnDist == 0 {
			s.ZeroTransit++
		}
	}

	s.MeanUnits = stat.Mean(units, nil)
	s.MeanConnDist = stat.Mean(conn, nil)
	s.MeanScore = stat.Mean(score, nil)
	s.MedianUnits = median(units)
	s.MedianConn = median(conn)
	s.MedianScore = median(score)
	if len(scores) > 1 {
		s.Correlation = stat.Correlation(units, conn, nil)
	}
	return s
}

// median sorts x in place and returns its midpoint, averaging the two middle
// values for even lengths.
func median(x []float64) float64 {
	sort.Float64s(x)
	n := len(x)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, x, nil)
	}
	return (x[n/2-1] + x[n/2]) / 2
}
