// Package render writes the interactive neighborhood maps as self-contained
// HTML pages.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/MetalBlueberry/go-plotly/offline"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/model"
)

// Chicago map framing.
const (
	centerLat = 41.8358
	centerLon = -87.6877
	zoom      = 9.6
	mapStyle  = "carto-positron"
)

// Files names the three map outputs inside Dir.
type Files struct {
	Dir        string
	HousingMap string
	TransitMap string
	ScoreMap   string
}

// Paths returns the full output paths in render order.
func (f Files) Paths() []string {
	return []string{
		filepath.Join(f.Dir, f.HousingMap),
		filepath.Join(f.Dir, f.TransitMap),
		filepath.Join(f.Dir, f.ScoreMap),
	}
}

// All renders the three maps and returns the written paths.
func All(f Files, scores []model.ScoredNeighborhood, stations []model.Station) ([]string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "render: create %s", f.Dir)
	}

	housing, err := HousingFigure(scores)
	if err != nil {
		return nil, err
	}
	transit, err := TransitFigure(scores, stations)
	if err != nil {
		return nil, err
	}
	score, err := ScoreFigure(scores)
	if err != nil {
		return nil, err
	}

	paths := f.Paths()
	for i, fig := range []*grob.Fig{housing, transit, score} {
		if err := write(fig, paths[i]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// write saves fig and checks that the page landed; offline.ToHtml reports no
// errors of its own.
func write(fig *grob.Fig, path string) error {
	_ = os.Remove(path)
	offline.ToHtml(fig, path)

	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "render: %s was not written", path)
	}
	if info.Size() == 0 {
		return eris.Errorf("render: %s is empty", path)
	}
	zap.L().Info("render: map written", zap.String("path", path), zap.Int64("bytes", info.Size()))
	return nil
}

// HousingFigure is the housing-units choropleth.
func HousingFigure(scores []model.ScoredNeighborhood) (*grob.Fig, error) {
	trace, err := housingTrace(scores)
	if err != nil {
		return nil, err
	}
	fig := &grob.Fig{Layout: layout("Affordable Housing Units by Chicago Neighborhood")}
	fig.AddTraces(trace)
	return fig, nil
}

// TransitFigure overlays L stations, sized by connectivity, on the housing
// choropleth.
func TransitFigure(scores []model.ScoredNeighborhood, stations []model.Station) (*grob.Fig, error) {
	trace, err := housingTrace(scores)
	if err != nil {
		return nil, err
	}
	lay := layout("Affordable Housing Rapid Transit Access in Chicago")
	lay.Showlegend = grob.False
	fig := &grob.Fig{Layout: lay}
	fig.AddTraces(trace)
	for _, st := range stationTraces(stations) {
		fig.AddTraces(st)
	}
	return fig, nil
}

// ScoreFigure is the composite-score choropleth.
func ScoreFigure(scores []model.ScoredNeighborhood) (*grob.Fig, error) {
	raw := make([]float64, len(scores))
	text := make([]string, len(scores))
	for i, s := range scores {
		raw[i] = s.Score
		text[i] = fmt.Sprintf("Neighborhood: %s<br>Score: %d<br>No. of Housing Units: %d<br>Transit Score: %d",
			s.Name, s.ScoreInt(), s.HousingUnits, s.ConnDist)
	}
	trace, err := choropleth(scores, scoreScale, raw, text)
	if err != nil {
		return nil, err
	}
	fig := &grob.Fig{Layout: layout("Optimal Neighborhoods in Chicago by Housing and Transit Access")}
	fig.AddTraces(trace)
	return fig, nil
}

func housingTrace(scores []model.ScoredNeighborhood) (*grob.Choroplethmapbox, error) {
	raw := make([]float64, len(scores))
	text := make([]string, len(scores))
	for i, s := range scores {
		raw[i] = float64(s.HousingUnits)
		text[i] = fmt.Sprintf("Neighborhood: %s<br>Housing Units: %d", s.Name, s.HousingUnits)
	}
	return choropleth(scores, housingScale, raw, text)
}

func choropleth(scores []model.ScoredNeighborhood, scale logScale, raw []float64, text []string) (*grob.Choroplethmapbox, error) {
	fc, err := featureCollection(scores)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(scores))
	for i, s := range scores {
		names[i] = s.Name
	}

	return &grob.Choroplethmapbox{
		Type:          grob.TraceTypeChoroplethmapbox,
		Geojson:       fc,
		Locations:     names,
		Z:             scale.values(raw),
		Zauto:         grob.False,
		Zmin:          0,
		Zmax:          scale.zmax(),
		Colorscale:    scale.colorscale(),
		Text:          text,
		Hovertemplate: "%{text}<extra></extra>",
		Marker: &grob.ChoroplethmapboxMarker{
			Line:    &grob.ChoroplethmapboxMarkerLine{Color: "gray", Width: 0.25},
			Opacity: 1,
		},
		Colorbar: &grob.ChoroplethmapboxColorbar{
			Title:    &grob.ChoroplethmapboxColorbarTitle{Text: scale.Title},
			Tickmode: grob.ChoroplethmapboxColorbarTickmodeArray,
			Tickvals: scale.tickvals(),
			Ticktext: scale.Labels,
		},
	}, nil
}

// stationTraces returns one marker trace per connectivity level. Marker size
// is a scalar per trace, so stations are grouped by connectivity and each
// group is drawn at connectivity * 2.5.
func stationTraces(stations []model.Station) []*grob.Scattermapbox {
	byConn := make(map[int][]model.Station)
	var levels []int
	for _, st := range stations {
		if _, ok := byConn[st.Connectivity]; !ok {
			levels = append(levels, st.Connectivity)
		}
		byConn[st.Connectivity] = append(byConn[st.Connectivity], st)
	}
	sort.Ints(levels)

	traces := make([]*grob.Scattermapbox, 0, len(levels))
	for _, c := range levels {
		group := byConn[c]
		lat := make([]float64, len(group))
		lon := make([]float64, len(group))
		text := make([]string, len(group))
		for i, st := range group {
			lat[i] = st.Lat
			lon[i] = st.Lon
			text[i] = fmt.Sprintf("Stop: %s<br>Connectivity: %d", st.Name, st.Connectivity)
		}
		traces = append(traces, &grob.Scattermapbox{
			Type:          grob.TraceTypeScattermapbox,
			Name:          fmt.Sprintf("L Stations (%d)", c),
			Legendgroup:   "stations",
			Lat:           lat,
			Lon:           lon,
			Mode:          grob.ScattermapboxModeMarkers,
			Text:          text,
			Hovertemplate: "%{text}<extra></extra>",
			Marker: &grob.ScattermapboxMarker{
				Size:    markerSize(c),
				Color:   "#FF0000",
				Opacity: 0.6,
			},
		})
	}
	return traces
}

func markerSize(connectivity int) float64 {
	return float64(connectivity) * 2.5
}

func layout(title string) *grob.Layout {
	return &grob.Layout{
		Title:  &grob.LayoutTitle{Text: title},
		Height: 800,
		Margin: &grob.LayoutMargin{L: 0, R: 0, T: 48, B: 0},
		Mapbox: &grob.LayoutMapbox{
			Style:  mapStyle,
			Center: &grob.LayoutMapboxCenter{Lat: centerLat, Lon: centerLon},
			Zoom:   zoom,
		},
	}
}
