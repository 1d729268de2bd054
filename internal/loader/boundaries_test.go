package loader

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/housing-transit/internal/shapetest"
)

func writeShapefile(t *testing.T, dir, field string, features []shapetest.Feature) string {
	t.Helper()
	return shapetest.Write(t, filepath.Join(dir, "Neighborhoods.shp"), field, features)
}

func TestReadShapefile(t *testing.T) {
	path := writeShapefile(t, t.TempDir(), "pri_neigh", []shapetest.Feature{
		{Name: "Loop", Parts: [][]shp.Point{shapetest.Square(0, 0, 1, 1)}},
		{Name: "Garfield Park", Parts: [][]shp.Point{
			shapetest.Square(2, 0, 4, 2),
			shapetest.Reversed(shapetest.Square(2.5, 0.5, 3.5, 1.5)),
			shapetest.Square(5, 0, 6, 1),
		}},
	})

	hoods, err := LoadBoundaries(context.Background(), path, "")
	require.NoError(t, err)
	require.Len(t, hoods, 2)

	assert.Equal(t, "Loop", hoods[0].Name)
	assert.Equal(t, 1, hoods[0].Geometry.NumPolygons())
	assert.Equal(t, 4326, hoods[0].Geometry.SRID())

	gp := hoods[1].Geometry
	assert.Equal(t, "Garfield Park", hoods[1].Name)
	require.Equal(t, 2, gp.NumPolygons())
	assert.Equal(t, 2, gp.Polygon(0).NumLinearRings(), "hole attached to first exterior")
	assert.Equal(t, 1, gp.Polygon(1).NumLinearRings())

	hole := gp.Polygon(0).LinearRing(1)
	assert.True(t, xy.IsRingCounterClockwise(geom.XY, hole.FlatCoords()))
}

func TestReadShapefile_MissingNameField(t *testing.T) {
	path := writeShapefile(t, t.TempDir(), "community", []shapetest.Feature{
		{Name: "Loop", Parts: [][]shp.Point{shapetest.Square(0, 0, 1, 1)}},
	})

	_, err := LoadBoundaries(context.Background(), path, DefaultNameField)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, DefaultNameField, se.Field)
}

func TestReadShapefile_CustomNameField(t *testing.T) {
	path := writeShapefile(t, t.TempDir(), "community", []shapetest.Feature{
		{Name: "Loop", Parts: [][]shp.Point{shapetest.Square(0, 0, 1, 1)}},
	})

	hoods, err := LoadBoundaries(context.Background(), path, "community")
	require.NoError(t, err)
	require.Len(t, hoods, 1)
	assert.Equal(t, "Loop", hoods[0].Name)
}

func TestLoadBoundaries_MergesDuplicateNames(t *testing.T) {
	path := writeShapefile(t, t.TempDir(), "pri_neigh", []shapetest.Feature{
		{Name: "Loop", Parts: [][]shp.Point{shapetest.Square(0, 0, 1, 1)}},
		{Name: "Uptown", Parts: [][]shp.Point{shapetest.Square(3, 3, 4, 4)}},
		{Name: "Loop", Parts: [][]shp.Point{shapetest.Square(1, 0, 2, 1)}},
	})

	hoods, err := LoadBoundaries(context.Background(), path, "")
	require.NoError(t, err)
	require.Len(t, hoods, 2)
	assert.Equal(t, "Loop", hoods[0].Name)
	assert.Equal(t, 2, hoods[0].Geometry.NumPolygons())
	assert.Equal(t, "Uptown", hoods[1].Name)
}

func TestLoadBoundaries_ZippedBundle(t *testing.T) {
	src := t.TempDir()
	writeShapefile(t, src, "pri_neigh", []shapetest.Feature{
		{Name: "Loop", Parts: [][]shp.Point{shapetest.Square(0, 0, 1, 1)}},
	})

	zipPath := filepath.Join(t.TempDir(), "Boundaries.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		in, err := os.Open(filepath.Join(src, "Neighborhoods"+ext))
		require.NoError(t, err)
		out, err := zw.Create("Neighborhoods" + ext)
		require.NoError(t, err)
		_, err = io.Copy(out, in)
		require.NoError(t, err)
		require.NoError(t, in.Close())
	}
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	hoods, err := LoadBoundaries(context.Background(), zipPath, "")
	require.NoError(t, err)
	require.Len(t, hoods, 1)
	assert.Equal(t, "Loop", hoods[0].Name)
}

func TestLoadBoundaries_GeoJSON(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"pri_neigh":"Loop"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
{"type":"Feature","properties":{"pri_neigh":"Uptown"},"geometry":{"type":"MultiPolygon","coordinates":[[[[3,3],[4,3],[4,4],[3,4],[3,3]]]]}}
]}`
	path := filepath.Join(t.TempDir(), "Neighborhoods.geojson")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	hoods, err := LoadBoundaries(context.Background(), path, "")
	require.NoError(t, err)
	require.Len(t, hoods, 2)
	assert.Equal(t, "Loop", hoods[0].Name)
	assert.Equal(t, 1, hoods[0].Geometry.NumPolygons())
	assert.Equal(t, "Uptown", hoods[1].Name)
}

func TestLoadBoundaries_GeoJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: "nope"},
		{name: "missing name", doc: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`},
		{name: "point geometry", doc: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"pri_neigh":"Loop"},"geometry":{"type":"Point","coordinates":[0,0]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "b.geojson")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))

			_, err := LoadBoundaries(context.Background(), path, "")
			var se *SchemaError
			assert.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestLoadBoundaries_UnsupportedFormat(t *testing.T) {
	_, err := LoadBoundaries(context.Background(), "boundaries.kml", "")
	assert.Error(t, err)
}

func TestPolygonToMultiPolygon_Degenerate(t *testing.T) {
	assert.Nil(t, PolygonToMultiPolygon(nil))

	tiny := shp.Polygon(*shp.NewPolyLine([][]shp.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}}}))
	assert.Nil(t, PolygonToMultiPolygon(&tiny))
}
