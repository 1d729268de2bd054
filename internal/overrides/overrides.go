// Package overrides holds the hand-maintained patch tables that reconcile the
// housing, boundary and rail-stop datasets. A default set is embedded; a file
// may replace it wholesale.
package overrides

import (
	_ "embed"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var defaultYAML []byte

// Tables is the full set of patch tables.
type Tables struct {
	Typos                 map[string]string      `yaml:"typos"`
	Remaps                map[string]string      `yaml:"remaps"`
	ExcludedPropertyTypes []string               `yaml:"excluded_property_types"`
	EndpointStops         []EndpointStop         `yaml:"endpoint_stops"`
	ConnectivityOverrides []ConnectivityOverride `yaml:"connectivity_overrides"`
}

// EndpointStop is a terminus stop entry to discard before aggregation.
type EndpointStop struct {
	StopID int    `yaml:"stop_id"`
	Note   string `yaml:"note"`
}

// ConnectivityOverride replaces the computed connectivity of one station.
type ConnectivityOverride struct {
	StationID    int    `yaml:"station_id"`
	Name         string `yaml:"name"`
	Connectivity int    `yaml:"connectivity"`
	Note         string `yaml:"note"`
}

// Default returns the embedded tables.
func Default() (*Tables, error) {
	return Parse(defaultYAML)
}

// Load reads tables from path, or returns the embedded defaults when path is
// empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "overrides: read %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "overrides: %s", path)
	}
	return t, nil
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "overrides: parse")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects tables that would make name cleaning non-idempotent or
// produce an invalid connectivity.
func (t *Tables) Validate() error {
	for _, from := range sortedKeys(t.Typos) {
		if from == "" {
			return eris.New("overrides: empty typo key")
		}
		if _, chained := t.Typos[t.Typos[from]]; chained {
			return eris.Errorf("overrides: typo %q -> %q is itself a typo key", from, t.Typos[from])
		}
	}
	for _, from := range sortedKeys(t.Remaps) {
		to := t.Remaps[from]
		if from == "" {
			return eris.New("overrides: empty remap key")
		}
		if _, chained := t.Remaps[to]; chained {
			return eris.Errorf("overrides: remap chain %q -> %q -> %q", from, to, t.Remaps[to])
		}
		if _, chained := t.Typos[to]; chained {
			return eris.Errorf("overrides: remap target %q is a typo key", to)
		}
	}

	seenStops := make(map[int]bool, len(t.EndpointStops))
	for _, s := range t.EndpointStops {
		if seenStops[s.StopID] {
			return eris.Errorf("overrides: duplicate endpoint stop %d", s.StopID)
		}
		seenStops[s.StopID] = true
	}

	seenStations := make(map[int]bool, len(t.ConnectivityOverrides))
	for _, o := range t.ConnectivityOverrides {
		if o.Connectivity < 1 {
			return eris.Errorf("overrides: station %d (%s): connectivity %d must be at least 1", o.StationID, o.Name, o.Connectivity)
		}
		if seenStations[o.StationID] {
			return eris.Errorf("overrides: duplicate connectivity override for station %d", o.StationID)
		}
		seenStations[o.StationID] = true
	}
	return nil
}

// EndpointSet returns the endpoint stop ids as a lookup set.
func (t *Tables) EndpointSet() map[int]bool {
	set := make(map[int]bool, len(t.EndpointStops))
	for _, s := range t.EndpointStops {
		set[s.StopID] = true
	}
	return set
}

// ConnectivityByStation returns the overrides keyed by station id.
func (t *Tables) ConnectivityByStation() map[int]ConnectivityOverride {
	m := make(map[int]ConnectivityOverride, len(t.ConnectivityOverrides))
	for _, o := range t.ConnectivityOverrides {
		m[o.StationID] = o
	}
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
