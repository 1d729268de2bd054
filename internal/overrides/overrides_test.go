package overrides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Lake View", tbl.Typos["Lakeview"])
	assert.Equal(t, "East Garfield Park", tbl.Typos["East Garfiled Park"])
	assert.Len(t, tbl.Remaps, 7)
	assert.Equal(t, "Little Italy, UIC", tbl.Remaps["Near West Side"])
	assert.Equal(t, []string{"ARO"}, tbl.ExcludedPropertyTypes)

	endpoints := tbl.EndpointSet()
	assert.Len(t, endpoints, 13)
	for _, id := range []int{30077, 30171, 30249, 30182, 30203, 30089, 30173, 30176, 30026, 30139, 30057, 30114, 30004} {
		assert.True(t, endpoints[id], "stop %d", id)
	}

	byStation := tbl.ConnectivityByStation()
	require.Len(t, byStation, 2)
	assert.Equal(t, 4, byStation[40900].Connectivity)
	assert.Equal(t, 3, byStation[40510].Connectivity)
}

func TestLoad(t *testing.T) {
	tbl, err := Load("")
	require.NoError(t, err)
	assert.Len(t, tbl.EndpointStops, 13)

	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
remaps:
  Near South Side: South Loop
endpoint_stops:
  - {stop_id: 1}
connectivity_overrides:
  - {station_id: 7, name: Test, connectivity: 2}
`), 0o644))

	tbl, err = Load(path)
	require.NoError(t, err)
	assert.Empty(t, tbl.Typos)
	assert.Equal(t, "South Loop", tbl.Remaps["Near South Side"])
	assert.True(t, tbl.EndpointSet()[1])

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "remap chain", doc: "remaps: {A: B, B: C}", wantErr: "remap chain"},
		{name: "remap target is typo", doc: "typos: {C: D}\nremaps: {A: C}", wantErr: "typo key"},
		{name: "typo chain", doc: "typos: {A: B, B: C}", wantErr: "itself a typo key"},
		{name: "empty remap key", doc: "remaps: {'': B}", wantErr: "empty remap key"},
		{name: "duplicate stop", doc: "endpoint_stops: [{stop_id: 1}, {stop_id: 1}]", wantErr: "duplicate endpoint stop"},
		{name: "zero connectivity", doc: "connectivity_overrides: [{station_id: 1, connectivity: 0}]", wantErr: "at least 1"},
		{name: "duplicate station", doc: "connectivity_overrides: [{station_id: 1, connectivity: 2}, {station_id: 1, connectivity: 3}]", wantErr: "duplicate connectivity"},
		{name: "malformed yaml", doc: "remaps: [", wantErr: "parse"},
		{name: "typo into remap key is fine", doc: "typos: {A: B}\nremaps: {B: C}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
