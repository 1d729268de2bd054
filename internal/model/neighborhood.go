package model

import "github.com/twpayne/go-geom"

// Neighborhood is one named boundary polygon. Its name is the canonical join
// key every other dataset is reconciled to.
type Neighborhood struct {
	Name     string
	Geometry *geom.MultiPolygon
}

// ScoredNeighborhood is the pipeline's final per-neighborhood output.
type ScoredNeighborhood struct {
	Name         string
	Geometry     *geom.MultiPolygon
	HousingUnits int
	ConnDist     int
	AdjConnDist  float64
	Score        float64
	Stations     []Station
}

// ScoreInt returns the composite score truncated toward zero for display.
func (s ScoredNeighborhood) ScoreInt() int {
	return int(s.Score)
}
