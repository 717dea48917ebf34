package priority

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInViewConeTrueWhenFacingChunk(t *testing.T) {
	center := Coord{}
	coord := Coord{CX: 5}
	view := View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.7}
	require.True(t, InViewCone(coord, center, view))
}

func TestInViewConeFalseWhenBehindViewer(t *testing.T) {
	center := Coord{}
	coord := Coord{CX: -5}
	view := View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.7}
	require.False(t, InViewCone(coord, center, view))
}

func TestInViewConeTrueAtCenter(t *testing.T) {
	center := Coord{CX: 3, CY: 2, CZ: 1}
	require.True(t, InViewCone(center, center, View{Forward: [3]float32{0, 0, 1}, FOVCosine: 0.9}))
}

func TestScoreHigherForCloserChunk(t *testing.T) {
	center := Coord{}
	view := View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.5}
	w := defaultWeights()

	near := Score(Coord{CX: 1}, center, view, w)
	far := Score(Coord{CX: 20}, center, view, w)
	require.Greater(t, near, far)
}

func TestScoreSurfaceBandBonusExceedsAboveAndBelow(t *testing.T) {
	w := ScoreWeights{SurfaceBand: 16, BaseHeight: 64} // band at CY=4
	view := View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.5}
	center := Coord{CX: 100, CY: 100, CZ: 100} // distance/dot weights are zero, so only the band term differs

	onBand := Score(Coord{CY: 4}, center, view, w)
	above := Score(Coord{CY: 5}, center, view, w)
	below := Score(Coord{CY: 3}, center, view, w)

	require.Greater(t, onBand, above)
	require.Greater(t, above, below)
}
