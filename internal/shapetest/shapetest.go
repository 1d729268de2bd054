// Package shapetest writes polygon shapefile fixtures for tests.
package shapetest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

// Feature is one named polygon. Exterior rings run clockwise; a
// counter-clockwise ring is a hole in the preceding exterior.
type Feature struct {
	Name  string
	Parts [][]shp.Point
}

// Square returns a clockwise closed ring.
func Square(x0, y0, x1, y1 float64) []shp.Point {
	return []shp.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}, {X: x0, Y: y0}}
}

// Reversed returns the ring in the opposite orientation.
func Reversed(ring []shp.Point) []shp.Point {
	out := make([]shp.Point, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// Write creates path (a .shp file) with its .shx and .dbf sidecars, storing
// each feature's name in a single string attribute called field.
func Write(t testing.TB, path, field string, features []Feature) string {
	t.Helper()
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField(field, 64)}))

	for _, f := range features {
		poly := shp.Polygon(*shp.NewPolyLine(f.Parts))
		n := w.Write(&poly)
		require.NoError(t, w.WriteAttribute(int(n), 0, f.Name))
	}
	w.Close()

	FixDBFName(t, path)
	return path
}

// FixDBFName moves the attribute table go-shp's writer leaves at "<stem>dbf"
// (no dot) to "<stem>.dbf", where readers look for it.
func FixDBFName(t testing.TB, path string) {
	t.Helper()
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	written := stem + "dbf"
	if _, err := os.Stat(written); os.IsNotExist(err) {
		return
	}
	require.NoError(t, os.Rename(written, stem+".dbf"))
}
