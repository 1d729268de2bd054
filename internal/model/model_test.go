package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineFlagsCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags LineFlags
		want  int
	}{
		{"none", LineFlags{}, 0},
		{"red only", LineFlags{Red: true}, 1},
		{"howard", LineFlags{Red: true, PurpleExp: true, Yellow: true}, 3},
		{"all", LineFlags{true, true, true, true, true, true, true, true}, 8},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.flags.Count())
		})
	}
}

func TestLineFlagsServes(t *testing.T) {
	t.Parallel()

	f := LineFlags{Brown: true, Pink: true}
	for _, l := range Lines {
		assert.Equal(t, l == LineBrown || l == LinePink, f.Serves(l), string(l))
	}
	assert.False(t, f.Serves(Line("P")))
}

func TestScoreInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 193, ScoredNeighborhood{Score: 193.5}.ScoreInt())
	assert.Equal(t, 0, ScoredNeighborhood{Score: 0}.ScoreInt())
	assert.Equal(t, 4, ScoredNeighborhood{Score: 4.5}.ScoreInt())
}
