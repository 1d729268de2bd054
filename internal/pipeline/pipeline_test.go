package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-transit/internal/config"
	"github.com/sells-group/housing-transit/internal/overrides"
	"github.com/sells-group/housing-transit/internal/reconcile"
	"github.com/sells-group/housing-transit/internal/shapetest"
)

const housingCSV = "Community Area Name,Community Area Number,Property Type,Address,Units\n" +
	"Loop,32,Senior,1 N State St,40\n" +
	"Loop,32,ARO,2 N State St,12\n" +
	"Lakeview,6,Multifamily,3 W Belmont Ave,20\n" +
	"West Garfield Park,26,Multifamily,4 S Pulaski Rd,8\n" +
	"Nowhere,99,Senior,5 Main St,1\n"

const stopsCSV = "STOP_ID,DIRECTION_ID,STOP_NAME,STATION_NAME,STATION_DESCRIPTIVE_NAME,MAP_ID,ADA,RED,BLUE,G,BRN,P,Pexp,Y,Pnk,O,Location\n" +
	`30131,E,Clark/Lake (Inner Loop),Clark/Lake,Clark/Lake,40380,true,false,true,true,true,true,true,false,true,true,"(41.885, -87.630)"` + "\n" +
	`30255,N,Belmont (Kimball-Linden),Belmont,Belmont,41320,true,true,false,false,true,true,true,false,false,false,"(41.940, -87.653)"` + "\n" +
	`30173,N,Howard (Terminal arrival),Howard,Howard,40900,true,true,false,false,false,false,true,true,false,false,"(42.019, -87.672)"` + "\n" +
	`30174,S,Howard (95th-bound),Howard,Howard,40900,true,true,false,false,false,false,true,true,false,false,"(42.019, -87.672)"` + "\n" +
	`30900,E,Harlem (Forest Pk-bound),Harlem,Harlem,40980,true,false,true,false,false,false,false,false,false,false,"(41.870, -87.800)"` + "\n"

type hood struct {
	name           string
	x0, y0, x1, y1 float64
}

var hoods = []hood{
	{"Loop", -87.64, 41.87, -87.62, 41.89},
	{"Lake View", -87.68, 41.93, -87.64, 41.95},
	{"Rogers Park", -87.69, 42.00, -87.65, 42.03},
	{"Garfield Park", -87.73, 41.87, -87.70, 41.89},
}

func writeFixtures(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(in, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(in, "Housing.csv"), []byte(housingCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "L_Stops.csv"), []byte(stopsCSV), 0o644))

	features := make([]shapetest.Feature, len(hoods))
	for i, h := range hoods {
		features[i] = shapetest.Feature{Name: h.name, Parts: [][]shp.Point{shapetest.Square(h.x0, h.y0, h.x1, h.y1)}}
	}
	shapetest.Write(t, filepath.Join(in, "Neighborhoods.shp"), "pri_neigh", features)

	cfg := &config.Config{}
	cfg.Input = config.InputConfig{
		Dir:        in,
		Housing:    "Housing.csv",
		Boundaries: "Neighborhoods.shp",
		NameField:  "pri_neigh",
		Stops:      "L_Stops.csv",
	}
	cfg.Output = config.OutputConfig{
		Dir:        filepath.Join(dir, "out"),
		HousingMap: "housing.html",
		TransitMap: "transit-housing.html",
		ScoreMap:   "transit-housing-score.html",
	}
	cfg.Export.Formats = []string{"csv", "geojson"}
	cfg.Scoring.TopN = 2
	return cfg
}

func newTestPipeline(t *testing.T, cfg *config.Config) *Pipeline {
	t.Helper()
	tables, err := overrides.Default()
	require.NoError(t, err)
	return New(cfg, tables)
}

func TestLoad(t *testing.T) {
	cfg := writeFixtures(t)

	in, err := newTestPipeline(t, cfg).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, in.Housing, 5)
	assert.Len(t, in.Hoods, 4)
	assert.Len(t, in.Stops, 5)
}

func TestLoad_MissingInput(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.Input.Stops = "missing.csv"

	_, err := newTestPipeline(t, cfg).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: load inputs")
}

func TestReconcile(t *testing.T) {
	cfg := writeFixtures(t)
	p := newTestPipeline(t, cfg)
	in, err := p.Load(context.Background())
	require.NoError(t, err)

	rec := p.Reconcile(in)

	assert.Equal(t, []reconcile.Orphan{
		{Name: "Lakeview", Units: 1},
		{Name: "Nowhere", Units: 1},
		{Name: "West Garfield Park", Units: 1},
	}, rec.Before.RightOnly)
	assert.Equal(t, []string{"Garfield Park", "Lake View", "Rogers Park"}, rec.Before.LeftOnly)

	assert.Equal(t, []reconcile.Orphan{{Name: "Nowhere", Units: 1}}, rec.After.RightOnly)
	assert.Equal(t, []string{"Rogers Park"}, rec.After.LeftOnly)

	assert.Len(t, rec.Records, 4)
	assert.Equal(t, map[string]int{"Loop": 1, "Lake View": 1, "Garfield Park": 1, "Nowhere": 1}, rec.Counts)
}

func TestScore(t *testing.T) {
	cfg := writeFixtures(t)

	res, err := newTestPipeline(t, cfg).Score(context.Background())
	require.NoError(t, err)

	// Every neighborhood appears once, in boundary order.
	require.Len(t, res.Scores, len(hoods))
	for i, h := range hoods {
		assert.Equal(t, h.name, res.Scores[i].Name)
	}

	byName := make(map[string]float64)
	conn := make(map[string]int)
	for _, s := range res.Scores {
		byName[s.Name] = s.Score
		conn[s.Name] = s.ConnDist
	}
	assert.InDelta(t, 58.5, byName["Loop"], 1e-9)
	assert.InDelta(t, 31.5, byName["Lake View"], 1e-9)
	// Howard is overridden to 4 and its terminal-arrival entry dropped.
	assert.Equal(t, 4, conn["Rogers Park"])
	assert.InDelta(t, 18.0, byName["Rogers Park"], 1e-9)
	assert.InDelta(t, 4.5, byName["Garfield Park"], 1e-9)

	names := make([]string, len(res.Ranked))
	for i, s := range res.Ranked {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Loop", "Lake View", "Rogers Park", "Garfield Park"}, names)

	require.Len(t, res.Assignment.Outside, 1)
	assert.Equal(t, "Harlem", res.Assignment.Outside[0].Name)

	top := res.Top(cfg.Scoring.TopN)
	require.Len(t, top, 2)
	assert.Equal(t, "Loop", top[0].Name)

	assert.Equal(t, 4, res.Summary.Neighborhoods)
	var phases []string
	for _, ph := range res.Phases {
		phases = append(phases, ph.Name)
	}
	assert.Equal(t, []string{"load", "reconcile", "aggregate", "join"}, phases)
}

func TestStations(t *testing.T) {
	cfg := writeFixtures(t)
	p := newTestPipeline(t, cfg)
	in, err := p.Load(context.Background())
	require.NoError(t, err)

	stations, err := p.Stations(in)
	require.NoError(t, err)
	require.Len(t, stations, 4)

	for _, st := range stations {
		if st.StationID == 40900 {
			assert.Equal(t, 4, st.Connectivity)
			assert.True(t, st.Overridden)
		}
	}
}

func TestRun(t *testing.T) {
	cfg := writeFixtures(t)

	res, err := newTestPipeline(t, cfg).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Maps, 3)
	require.Len(t, res.Exports, 2)
	for _, p := range append(res.Maps, res.Exports...) {
		info, statErr := os.Stat(p)
		require.NoError(t, statErr, p)
		assert.Positive(t, info.Size(), p)
	}
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "scores.csv"), res.Exports[0])
}

func TestScore_CancelledReturnsError(t *testing.T) {
	cfg := writeFixtures(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestPipeline(t, cfg).Score(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestRun_Cancelled(t *testing.T) {
	cfg := writeFixtures(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(t, cfg).Run(ctx)
	assert.Error(t, err)
}
