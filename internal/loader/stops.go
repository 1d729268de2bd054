package loader

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/model"
)

// Rail-stop dataset column names.
const (
	ColStopID      = "STOP_ID"
	ColStationID   = "MAP_ID"
	ColStationName = "STATION_NAME"
	ColLocation    = "Location"
)

// stopRow mirrors one CSV row; Location is parsed separately.
type stopRow struct {
	StopID      int    `csv:"STOP_ID"`
	StationID   int    `csv:"MAP_ID"`
	StationName string `csv:"STATION_NAME"`
	Location    string `csv:"Location"`
	model.LineFlags
}

func stopColumns() []string {
	cols := []string{ColStopID, ColStationID, ColStationName, ColLocation}
	for _, l := range model.Lines {
		cols = append(cols, string(l))
	}
	return cols
}

// LoadStops reads the rail-stop table at path (CSV or XLSX).
func LoadStops(ctx context.Context, path string) ([]model.RailStop, error) {
	rows, closeFn, err := openTable(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open stops file %s", path)
	}
	defer closeFn()

	stops, err := decodeStops(ctx, rows, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	zap.L().Debug("loader: rail stops read",
		zap.String("file", path),
		zap.Int("stops", len(stops)),
	)
	return stops, nil
}

// DecodeStops decodes directional stop entries from r.
func DecodeStops(ctx context.Context, r io.Reader, name string) ([]model.RailStop, error) {
	return decodeStops(ctx, csvReader(r), name)
}

func decodeStops(ctx context.Context, rows csvutil.Reader, name string) ([]model.RailStop, error) {
	dec, err := csvutil.NewDecoder(rows)
	if err != nil {
		if err == io.EOF {
			return nil, &SchemaError{File: name, Reason: "file is empty"}
		}
		return nil, eris.Wrapf(err, "loader: read header of %s", name)
	}
	if missing := missingColumns(dec.Header(), stopColumns()); len(missing) > 0 {
		return nil, &SchemaError{File: name, Field: missing[0], Reason: "missing column"}
	}

	var stops []model.RailStop
	for row := 1; ; row++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "loader: stops decode cancelled")
		}
		var sr stopRow
		if err := dec.Decode(&sr); err == io.EOF {
			break
		} else if err != nil {
			return nil, decodeErr(name, row, err)
		}

		lat, lon, err := ParseLocation(sr.Location)
		if err != nil {
			return nil, &SchemaError{File: name, Field: ColLocation, Row: row, Reason: err.Error()}
		}

		stops = append(stops, model.RailStop{
			StopID:      sr.StopID,
			StationID:   sr.StationID,
			StationName: strings.TrimSpace(sr.StationName),
			Lat:         lat,
			Lon:         lon,
			Lines:       sr.LineFlags,
		})
	}
	return stops, nil
}

// ParseLocation parses a combined "(lat, lon)" coordinate string.
func ParseLocation(s string) (lat, lon float64, err error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")

	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, eris.Errorf("expected \"(lat, lon)\", got %q", s)
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "parse latitude %q", parts[0])
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "parse longitude %q", parts[1])
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, eris.Errorf("coordinate (%g, %g) out of range", lat, lon)
	}
	return lat, lon, nil
}
