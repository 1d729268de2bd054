// Package config loads the housing-transit configuration from config.yaml and
// HOUSING_* environment variables and sets up the global logger.
package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input" mapstructure:"input"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the three source datasets and the optional override
// tables. Relative file names resolve against Dir.
type InputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	Housing    string `yaml:"housing" mapstructure:"housing"`
	Boundaries string `yaml:"boundaries" mapstructure:"boundaries"`
	NameField  string `yaml:"name_field" mapstructure:"name_field"`
	Stops      string `yaml:"stops" mapstructure:"stops"`
	Overrides  string `yaml:"overrides" mapstructure:"overrides"`
}

// OutputConfig names the rendered maps.
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	HousingMap string `yaml:"housing_map" mapstructure:"housing_map"`
	TransitMap string `yaml:"transit_map" mapstructure:"transit_map"`
	ScoreMap   string `yaml:"score_map" mapstructure:"score_map"`
}

// ExportConfig selects the static export formats.
type ExportConfig struct {
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// ScoringConfig holds ranking parameters.
type ScoringConfig struct {
	TopN int `yaml:"top_n" mapstructure:"top_n"`
}

// FetchConfig holds download sources and HTTP behaviour.
type FetchConfig struct {
	HousingURL    string `yaml:"housing_url" mapstructure:"housing_url"`
	BoundariesURL string `yaml:"boundaries_url" mapstructure:"boundaries_url"`
	StopsURL      string `yaml:"stops_url" mapstructure:"stops_url"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// KnownFormats lists the export formats Validate accepts.
var KnownFormats = []string{"csv", "xlsx", "geojson", "sqlite"}

// Path resolves name against the input directory unless it is absolute.
func (c InputConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// HousingPath returns the resolved housing dataset path.
func (c InputConfig) HousingPath() string { return c.Path(c.Housing) }

// BoundariesPath returns the resolved boundary dataset path.
func (c InputConfig) BoundariesPath() string { return c.Path(c.Boundaries) }

// StopsPath returns the resolved rail-stop dataset path.
func (c InputConfig) StopsPath() string { return c.Path(c.Stops) }

// OverridesPath returns the resolved override-table path, or "" for the
// built-in tables.
func (c InputConfig) OverridesPath() string { return c.Path(c.Overrides) }

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []string

	if c.Input.Housing == "" {
		errs = append(errs, "input.housing is required")
	}
	if c.Input.Boundaries == "" {
		errs = append(errs, "input.boundaries is required")
	}
	if c.Input.Stops == "" {
		errs = append(errs, "input.stops is required")
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output.dir is required")
	}
	if c.Output.HousingMap == "" || c.Output.TransitMap == "" || c.Output.ScoreMap == "" {
		errs = append(errs, "output map names are required")
	}
	if c.Scoring.TopN <= 0 {
		errs = append(errs, "scoring.top_n must be positive")
	}
	for _, f := range c.Export.Formats {
		if !known(f) {
			errs = append(errs, "unknown export format "+f)
		}
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func known(format string) bool {
	for _, k := range KnownFormats {
		if strings.EqualFold(k, format) {
			return true
		}
	}
	return false
}

// Load reads configuration from config.yaml and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HOUSING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.dir", "data")
	v.SetDefault("input.housing", "Housing.csv")
	v.SetDefault("input.boundaries", "Neighborhoods.shp")
	v.SetDefault("input.name_field", "pri_neigh")
	v.SetDefault("input.stops", "L_Stops.csv")
	v.SetDefault("input.overrides", "")
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.housing_map", "housing.html")
	v.SetDefault("output.transit_map", "transit-housing.html")
	v.SetDefault("output.score_map", "transit-housing-score.html")
	v.SetDefault("export.formats", []string{"csv", "xlsx", "geojson"})
	v.SetDefault("scoring.top_n", 10)
	v.SetDefault("fetch.housing_url", "https://data.cityofchicago.org/api/views/s6ha-ppgi/rows.csv?accessType=DOWNLOAD")
	v.SetDefault("fetch.boundaries_url", "https://data.cityofchicago.org/api/geospatial/bbvz-uum9?method=export&format=Shapefile")
	v.SetDefault("fetch.stops_url", "https://data.cityofchicago.org/api/views/8pix-ypme/rows.csv?accessType=DOWNLOAD")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "housing-transit/1.0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
