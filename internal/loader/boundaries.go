package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/fetcher"
	"github.com/sells-group/housing-transit/internal/model"
)

// DefaultNameField is the primary neighborhood-name attribute of the city
// boundary dataset.
const DefaultNameField = "pri_neigh"

// LoadBoundaries reads neighborhood polygons from a shapefile, a zipped
// shapefile bundle or a GeoJSON FeatureCollection, chosen by extension.
// Polygons sharing a name are merged so every name appears once.
func LoadBoundaries(ctx context.Context, path, nameField string) ([]model.Neighborhood, error) {
	if nameField == "" {
		nameField = DefaultNameField
	}

	var (
		hoods []model.Neighborhood
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".shp":
		hoods, err = ReadShapefile(path, nameField)
	case ".zip":
		hoods, err = readZippedShapefile(ctx, path, nameField)
	case ".geojson", ".json":
		hoods, err = ReadGeoJSON(path, nameField)
	default:
		return nil, eris.Errorf("loader: unsupported boundary format %q (%s)", ext, path)
	}
	if err != nil {
		return nil, err
	}

	hoods = mergeDuplicates(hoods)
	zap.L().Debug("loader: neighborhoods read",
		zap.String("file", path),
		zap.Int("neighborhoods", len(hoods)),
	)
	return hoods, nil
}

// ReadShapefile reads polygon features from a .shp file (with its .dbf
// sidecar) keyed by nameField.
func ReadShapefile(path, nameField string) ([]model.Neighborhood, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	file := filepath.Base(path)
	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, &SchemaError{File: file, Field: nameField, Reason: "missing attribute field"}
	}

	var hoods []model.Neighborhood
	row := 0
	for reader.Next() {
		row++
		_, shape := reader.Shape()

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			return nil, &SchemaError{File: file, Field: nameField, Row: row, Reason: "empty neighborhood name"}
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			return nil, &SchemaError{File: file, Field: "geometry", Row: row, Reason: fmt.Sprintf("expected polygon, got %T", shape)}
		}
		mp := PolygonToMultiPolygon(poly)
		if mp == nil {
			return nil, &SchemaError{File: file, Field: "geometry", Row: row, Reason: "polygon has no usable rings"}
		}

		hoods = append(hoods, model.Neighborhood{Name: name, Geometry: mp})
	}
	return hoods, nil
}

func readZippedShapefile(ctx context.Context, path, nameField string) ([]model.Neighborhood, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "loader: boundaries cancelled")
	}

	dir, err := os.MkdirTemp("", "boundaries-*")
	if err != nil {
		return nil, eris.Wrap(err, "loader: create extract dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	files, err := fetcher.ExtractZIP(path, dir)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: extract %s", path)
	}
	if shpPath, ok := fetcher.FindByExt(files, ".shp"); ok {
		return ReadShapefile(shpPath, nameField)
	}
	return nil, &SchemaError{File: filepath.Base(path), Field: "geometry", Reason: "archive contains no .shp file"}
}

// ReadGeoJSON reads Polygon and MultiPolygon features from a GeoJSON
// FeatureCollection keyed by the nameField property.
func ReadGeoJSON(path, nameField string) ([]model.Neighborhood, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read %s", path)
	}

	file := filepath.Base(path)
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, &SchemaError{File: file, Reason: "invalid GeoJSON: " + err.Error()}
	}

	hoods := make([]model.Neighborhood, 0, len(fc.Features))
	for i, f := range fc.Features {
		row := i + 1
		name, _ := f.Properties[nameField].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &SchemaError{File: file, Field: nameField, Row: row, Reason: "missing or empty neighborhood name"}
		}

		var mp *geom.MultiPolygon
		switch g := f.Geometry.(type) {
		case *geom.MultiPolygon:
			mp = g
		case *geom.Polygon:
			mp = geom.NewMultiPolygon(g.Layout())
			if err := mp.Push(g); err != nil {
				return nil, &SchemaError{File: file, Field: "geometry", Row: row, Reason: err.Error()}
			}
		default:
			return nil, &SchemaError{File: file, Field: "geometry", Row: row, Reason: fmt.Sprintf("expected polygon, got %T", f.Geometry)}
		}
		hoods = append(hoods, model.Neighborhood{Name: name, Geometry: mp})
	}
	return hoods, nil
}

// PolygonToMultiPolygon converts a shapefile polygon to a go-geom
// MultiPolygon. Shapefile exterior rings run clockwise; a counter-clockwise
// ring is a hole in the preceding exterior.
func PolygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("loader: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(p.Points) {
			zap.L().Debug("loader: skipping out-of-range ring", zap.Int32("part", i))
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		// A closed ring needs at least four points.
		if len(flat) < 8 {
			zap.L().Debug("loader: skipping degenerate ring", zap.Int32("part", i))
			continue
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if current != nil && xy.IsRingCounterClockwise(geom.XY, flat) {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("loader: skipping malformed hole", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		flush()
		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			zap.L().Debug("loader: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			current = nil
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// fieldIndex returns the index of a named DBF field, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// mergeDuplicates folds polygons that share a name into the first entry with
// that name, preserving file order.
func mergeDuplicates(hoods []model.Neighborhood) []model.Neighborhood {
	index := make(map[string]int, len(hoods))
	out := make([]model.Neighborhood, 0, len(hoods))
	for _, n := range hoods {
		i, seen := index[n.Name]
		if !seen {
			index[n.Name] = len(out)
			out = append(out, n)
			continue
		}

		zap.L().Warn("loader: duplicate neighborhood name, merging polygons", zap.String("name", n.Name))
		merged := out[i].Geometry
		if merged.Layout() != n.Geometry.Layout() {
			continue
		}
		combined := geom.NewMultiPolygon(merged.Layout()).SetSRID(merged.SRID())
		for _, src := range []*geom.MultiPolygon{merged, n.Geometry} {
			for j := 0; j < src.NumPolygons(); j++ {
				if err := combined.Push(src.Polygon(j)); err != nil {
					zap.L().Debug("loader: skipping polygon during merge", zap.Error(err))
				}
			}
		}
		out[i].Geometry = combined
	}
	return out
}
