package render

import "math"

// logScale is a colour scale applied to log10(value + 1), with labelled
// ticks placed at representative raw values.
type logScale struct {
	Title   string
	Palette []string // light to dark
	High    float64
	Ticks   []float64
	Labels  []string
}

var housingScale = logScale{
	Title:   "Number of Affordable Housing Units",
	Palette: []string{"#edf8fb", "#ccece6", "#99d8c9", "#66c2a4", "#2ca25f", "#006d2c"},
	High:    40,
	Ticks:   []float64{1.35, 2.5, 4.6, 8.5, 16, 30},
	Labels:  []string{"0", "1-2", "3-5", "6-10", "11-19", "20+"},
}

var scoreScale = logScale{
	Title:   "Housing-Transit Score",
	Palette: []string{"#fee5d9", "#fcbba1", "#fc9272", "#fb6a4a", "#de2d26", "#a50f15"},
	High:    1400,
	Ticks:   []float64{1.8, 6.2, 21, 70, 225, 760},
	Labels:  []string{"0-5", "5-20", "20-45", "45-100", "100-300", "300+"},
}

func logValue(v float64) float64 {
	if v < 0 {
		v = 0
	}
	return math.Log10(v + 1)
}

// colorscale returns a stepped plotly colorscale: each palette entry fills an
// equal band of the normalized range.
func (s logScale) colorscale() [][]interface{} {
	n := len(s.Palette)
	out := make([][]interface{}, 0, 2*n)
	for i, c := range s.Palette {
		out = append(out,
			[]interface{}{float64(i) / float64(n), c},
			[]interface{}{float64(i+1) / float64(n), c},
		)
	}
	return out
}

func (s logScale) zmax() float64 {
	return logValue(s.High)
}

func (s logScale) tickvals() []float64 {
	out := make([]float64, len(s.Ticks))
	for i, t := range s.Ticks {
		out[i] = logValue(t)
	}
	return out
}

func (s logScale) values(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = math.Min(logValue(v), s.zmax())
	}
	return out
}
