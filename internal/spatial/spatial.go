// Package spatial assigns rail stations to the neighborhood polygons that
// contain them.
package spatial

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/model"
)

type entry struct {
	name   string
	geom   *geom.MultiPolygon
	bounds *geom.Bounds
}

// Index answers point-in-neighborhood queries over a fixed polygon set.
type Index struct {
	entries []entry
}

// NewIndex precomputes bounding boxes for each neighborhood, keeping file
// order.
func NewIndex(hoods []model.Neighborhood) *Index {
	idx := &Index{entries: make([]entry, 0, len(hoods))}
	for _, h := range hoods {
		if h.Geometry == nil {
			continue
		}
		idx.entries = append(idx.entries, entry{name: h.Name, geom: h.Geometry, bounds: h.Geometry.Bounds()})
	}
	return idx
}

// Locate returns the neighborhood containing the point. A polygon holding
// the point in its interior wins; otherwise the first polygon, in file order,
// whose boundary touches the point is chosen.
func (idx *Index) Locate(lon, lat float64) (string, bool) {
	p := geom.Coord{lon, lat}
	touched := ""
	for _, e := range idx.entries {
		if !e.bounds.OverlapsPoint(geom.XY, p) {
			continue
		}
		switch locateInMultiPolygon(e.geom, p) {
		case location.Interior:
			return e.name, true
		case location.Boundary:
			if touched == "" {
				touched = e.name
			}
		}
	}
	return touched, touched != ""
}

func locateInMultiPolygon(mp *geom.MultiPolygon, p geom.Coord) location.Type {
	result := location.Exterior
	for i := 0; i < mp.NumPolygons(); i++ {
		switch locateInPolygon(mp.Polygon(i), p) {
		case location.Interior:
			return location.Interior
		case location.Boundary:
			result = location.Boundary
		}
	}
	return result
}

// locateInPolygon treats a point on a hole ring as on the polygon boundary.
func locateInPolygon(poly *geom.Polygon, p geom.Coord) location.Type {
	if poly.NumLinearRings() == 0 {
		return location.Exterior
	}
	layout := poly.Layout()
	loc := xy.LocatePointInRing(layout, p, poly.LinearRing(0).FlatCoords())
	if loc != location.Interior {
		return loc
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		switch xy.LocatePointInRing(layout, p, poly.LinearRing(i).FlatCoords()) {
		case location.Interior:
			return location.Exterior
		case location.Boundary:
			return location.Boundary
		}
	}
	return location.Interior
}

// Assignment is the result of joining stations to neighborhoods.
type Assignment struct {
	ByNeighborhood map[string][]model.Station
	Outside        []model.Station
}

// Join places each station in at most one neighborhood. A station's point
// comes from points keyed by station id when present, else from the station
// itself.
func Join(idx *Index, stations []model.Station, points map[int]model.Point) Assignment {
	a := Assignment{ByNeighborhood: make(map[string][]model.Station)}
	for _, st := range stations {
		pt, ok := points[st.StationID]
		if !ok {
			pt = model.Point{Lat: st.Lat, Lon: st.Lon}
		}
		name, ok := idx.Locate(pt.Lon, pt.Lat)
		if !ok {
			a.Outside = append(a.Outside, st)
			continue
		}
		a.ByNeighborhood[name] = append(a.ByNeighborhood[name], st)
	}

	if len(a.Outside) > 0 {
		names := make([]string, len(a.Outside))
		for i, st := range a.Outside {
			names[i] = st.Name
		}
		zap.L().Info("spatial: stations outside every neighborhood",
			zap.Int("count", len(a.Outside)),
			zap.Strings("stations", names),
		)
	}
	return a
}
