package model

// Line identifies one rail line flag column in the stops dataset.
type Line string

// The eight line flags counted toward connectivity. The local Purple column
// ("P") is not counted; only the express service is.
const (
	LineRed       Line = "RED"
	LineBlue      Line = "BLUE"
	LineGreen     Line = "G"
	LineBrown     Line = "BRN"
	LinePurpleExp Line = "Pexp"
	LineYellow    Line = "Y"
	LinePink      Line = "Pnk"
	LineOrange    Line = "O"
)

// Lines lists every counted line in dataset column order.
var Lines = []Line{LineRed, LineBlue, LineGreen, LineBrown, LinePurpleExp, LineYellow, LinePink, LineOrange}

// LineFlags records which lines serve a stop.
type LineFlags struct {
	Red       bool `csv:"RED"`
	Blue      bool `csv:"BLUE"`
	Green     bool `csv:"G"`
	Brown     bool `csv:"BRN"`
	PurpleExp bool `csv:"Pexp"`
	Yellow    bool `csv:"Y"`
	Pink      bool `csv:"Pnk"`
	Orange    bool `csv:"O"`
}

// Serves reports whether the given line serves the stop.
func (f LineFlags) Serves(l Line) bool {
	switch l {
	case LineRed:
		return f.Red
	case LineBlue:
		return f.Blue
	case LineGreen:
		return f.Green
	case LineBrown:
		return f.Brown
	case LinePurpleExp:
		return f.PurpleExp
	case LineYellow:
		return f.Yellow
	case LinePink:
		return f.Pink
	case LineOrange:
		return f.Orange
	}
	return false
}

// Count returns the number of lines serving the stop.
func (f LineFlags) Count() int {
	n := 0
	for _, l := range Lines {
		if f.Serves(l) {
			n++
		}
	}
	return n
}

// RailStop is one directional stop entry. Several entries share a StationID
// when a physical station serves more than one direction.
type RailStop struct {
	StopID      int
	StationID   int
	StationName string
	Lat         float64
	Lon         float64
	Lines       LineFlags
}

// Station is one physical station with its derived connectivity.
type Station struct {
	StationID    int     `json:"station_id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Connectivity int     `json:"connectivity"`
	Overridden   bool    `json:"overridden"`
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
