// Package export writes the scored neighborhoods to static files: CSV, XLSX,
// GeoJSON and a SQLite snapshot.
package export

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/model"
	"github.com/sells-group/housing-transit/internal/reconcile"
	"github.com/sells-group/housing-transit/internal/scorer"
)

// Supported export formats.
const (
	FormatCSV     = "csv"
	FormatXLSX    = "xlsx"
	FormatGeoJSON = "geojson"
	FormatSQLite  = "sqlite"
)

// Formats lists every supported format.
var Formats = []string{FormatCSV, FormatXLSX, FormatGeoJSON, FormatSQLite}

// File names written inside the output directory.
const (
	CSVFile     = "scores.csv"
	XLSXFile    = "scores.xlsx"
	GeoJSONFile = "scores.geojson"
	SQLiteFile  = "snapshot.sqlite"
)

// Input is everything an export may draw on.
type Input struct {
	Scores   []model.ScoredNeighborhood // ranked, highest score first
	TopN     int
	Stations []model.Station
	Orphans  []reconcile.Orphan
	Summary  scorer.Summary
}

// Top returns the first TopN rows of Scores.
func (in Input) Top() []model.ScoredNeighborhood {
	return scorer.Top(in.Scores, in.TopN)
}

// Known reports whether f is a supported format name.
func Known(f string) bool {
	for _, k := range Formats {
		if strings.EqualFold(k, f) {
			return true
		}
	}
	return false
}

// Write produces one file per requested format in dir and returns the paths
// written.
func Write(ctx context.Context, dir string, formats []string, in Input) ([]string, error) {
	var paths []string
	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return paths, eris.Wrap(err, "export: cancelled")
		}

		var (
			path string
			err  error
		)
		switch strings.ToLower(f) {
		case FormatCSV:
			path = filepath.Join(dir, CSVFile)
			err = WriteCSV(path, in.Scores)
		case FormatXLSX:
			path = filepath.Join(dir, XLSXFile)
			err = WriteXLSX(path, in)
		case FormatGeoJSON:
			path = filepath.Join(dir, GeoJSONFile)
			err = WriteGeoJSON(path, in.Scores)
		case FormatSQLite:
			path = filepath.Join(dir, SQLiteFile)
			err = WriteSnapshot(ctx, path, in)
		default:
			return paths, eris.Errorf("export: unknown format %q", f)
		}
		if err != nil {
			return paths, err
		}

		zap.L().Info("export: file written", zap.String("format", f), zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}
