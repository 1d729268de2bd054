package export

import (
	"encoding/csv"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-transit/internal/model"
)

// ScoreRow is one neighborhood as written to tabular exports. Metrics are
// truncated to integers.
type ScoreRow struct {
	Rank         int    `csv:"rank"`
	Neighborhood string `csv:"neighborhood"`
	HousingUnits int    `csv:"housing_units"`
	ConnDist     int    `csv:"conn_dist"`
	Score        int    `csv:"housing_transit_score"`
	Stations     int    `csv:"stations"`
}

// Rows flattens ranked scores into ScoreRows numbered from 1.
func Rows(scores []model.ScoredNeighborhood) []ScoreRow {
	rows := make([]ScoreRow, len(scores))
	for i, s := range scores {
		rows[i] = ScoreRow{
			Rank:         i + 1,
			Neighborhood: s.Name,
			HousingUnits: s.HousingUnits,
			ConnDist:     s.ConnDist,
			Score:        s.ScoreInt(),
			Stations:     len(s.Stations),
		}
	}
	return rows
}

// WriteCSV writes ranked scores with a header row.
func WriteCSV(path string, scores []model.ScoredNeighborhood) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(ScoreRow{}); err != nil {
		return eris.Wrap(err, "export: csv header")
	}
	for _, r := range Rows(scores) {
		if err := enc.Encode(r); err != nil {
			return eris.Wrapf(err, "export: csv row %s", r.Neighborhood)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(f.Close(), "export: close csv")
}
