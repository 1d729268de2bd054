package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Input.Dir)
	assert.Equal(t, "Housing.csv", cfg.Input.Housing)
	assert.Equal(t, "Neighborhoods.shp", cfg.Input.Boundaries)
	assert.Equal(t, "pri_neigh", cfg.Input.NameField)
	assert.Equal(t, "L_Stops.csv", cfg.Input.Stops)
	assert.Empty(t, cfg.Input.Overrides)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "housing.html", cfg.Output.HousingMap)
	assert.Equal(t, "transit-housing.html", cfg.Output.TransitMap)
	assert.Equal(t, "transit-housing-score.html", cfg.Output.ScoreMap)
	assert.Equal(t, []string{"csv", "xlsx", "geojson"}, cfg.Export.Formats)
	assert.Equal(t, 10, cfg.Scoring.TopN)
	assert.Contains(t, cfg.Fetch.HousingURL, "data.cityofchicago.org")
	assert.Equal(t, 60, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
input:
  dir: /srv/chicago
  boundaries: Neighborhoods.geojson
log:
  level: debug
  format: json
scoring:
  top_n: 5
export:
  formats: [csv, sqlite]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/chicago", cfg.Input.Dir)
	assert.Equal(t, "/srv/chicago/Neighborhoods.geojson", cfg.Input.BoundariesPath())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Scoring.TopN)
	assert.Equal(t, []string{"csv", "sqlite"}, cfg.Export.Formats)
	// Defaults still apply for unset values
	assert.Equal(t, "Housing.csv", cfg.Input.Housing)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
output:
  dir: maps
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("HOUSING_OUTPUT_DIR", "public")
	t.Setenv("HOUSING_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "public", cfg.Output.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("HOUSING_SCORING_TOP_N", "3")
	t.Setenv("HOUSING_INPUT_OVERRIDES", "patches.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scoring.TopN)
	assert.Equal(t, filepath.Join("data", "patches.yaml"), cfg.Input.OverridesPath())
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("input: [\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInputPaths(t *testing.T) {
	in := InputConfig{Dir: "data", Housing: "Housing.csv", Stops: "/abs/L_Stops.csv"}
	assert.Equal(t, filepath.Join("data", "Housing.csv"), in.HousingPath())
	assert.Equal(t, "/abs/L_Stops.csv", in.StopsPath())
	assert.Empty(t, in.OverridesPath())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Input = InputConfig{Dir: "data", Housing: "Housing.csv", Boundaries: "Neighborhoods.shp", Stops: "L_Stops.csv"}
	cfg.Output = OutputConfig{Dir: "out", HousingMap: "a.html", TransitMap: "b.html", ScoreMap: "c.html"}
	cfg.Export.Formats = []string{"csv", "xlsx", "geojson"}
	cfg.Scoring.TopN = 10
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "sqlite allowed", mutate: func(c *Config) { c.Export.Formats = []string{"SQLite"} }},
		{name: "no formats", mutate: func(c *Config) { c.Export.Formats = nil }},
		{name: "missing housing", mutate: func(c *Config) { c.Input.Housing = "" }, wantErr: "input.housing"},
		{name: "missing boundaries", mutate: func(c *Config) { c.Input.Boundaries = "" }, wantErr: "input.boundaries"},
		{name: "missing stops", mutate: func(c *Config) { c.Input.Stops = "" }, wantErr: "input.stops"},
		{name: "missing output dir", mutate: func(c *Config) { c.Output.Dir = "" }, wantErr: "output.dir"},
		{name: "missing map name", mutate: func(c *Config) { c.Output.ScoreMap = "" }, wantErr: "map names"},
		{name: "zero top n", mutate: func(c *Config) { c.Scoring.TopN = 0 }, wantErr: "top_n"},
		{name: "unknown format", mutate: func(c *Config) { c.Export.Formats = []string{"csv", "parquet"} }, wantErr: "parquet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
