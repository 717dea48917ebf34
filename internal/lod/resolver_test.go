package lod

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func s4Resolver() *Resolver {
	levels := []LodLevel{
		{MinDist: 0, MaxDist: 4, LodStep: 1, Hysteresis: 2, Mode: ModeMesh},
		{MinDist: 5, MaxDist: 12, LodStep: 2, Hysteresis: 2, Mode: ModeMesh},
		{MinDist: 13, MaxDist: 1e9, LodStep: 1, Hysteresis: 2, Mode: ModeSvo},
	}
	return NewResolver(levels, levels[0], 2)
}

func TestResolveScenarioS4MovingOutKeepsStepUntilPastHysteresisBand(t *testing.T) {
	r := s4Resolver()
	current := Current{Level: r.Levels[0], Valid: true}

	atSix := r.Resolve(6, current)
	require.Equal(t, int32(1), atSix.LodStep, "dist=6 should stay at step=1 within max_dist(4)+hysteresis(2)")

	atSeven := r.Resolve(7, current)
	require.Equal(t, int32(2), atSeven.LodStep, "dist=7 should switch to step=2")
}

func TestResolveScenarioS4MovingInUsesHalfHysteresis(t *testing.T) {
	r := s4Resolver()
	current := Current{Level: r.Levels[1], Valid: true}

	atFive := r.Resolve(5, current)
	require.Equal(t, int32(2), atFive.LodStep, "dist=5 should stay at step=2 (within min_dist(5) - hysteresis/2(1))")

	atThree := r.Resolve(3, current)
	require.Equal(t, int32(1), atThree.LodStep, "dist=3 should fall back to step=1")
}

func TestResolveFirstCallHasNoHysteresis(t *testing.T) {
	r := s4Resolver()
	level := r.Resolve(6, Current{})
	require.Equal(t, int32(2), level.LodStep)
}

func TestResolveFallsThroughGapToDefaultLevel(t *testing.T) {
	levels := []LodLevel{
		{MinDist: 0, MaxDist: 4, LodStep: 1, Mode: ModeMesh},
		{MinDist: 10, MaxDist: 20, LodStep: 2, Mode: ModeMesh},
	}
	fallback := LodLevel{MinDist: -1, MaxDist: -1, LodStep: 99, Mode: ModeNone}
	r := NewResolver(levels, fallback, 1)

	got := r.Resolve(7, Current{})
	require.Equal(t, int32(99), got.LodStep)
}

func TestValidateFlagsOverlapGapDuplicateAndHysteresis(t *testing.T) {
	levels := []LodLevel{
		{MinDist: 0, MaxDist: 10, Hysteresis: 1},
		{MinDist: 5, MaxDist: 15, Hysteresis: 1},  // overlaps first
		{MinDist: 20, MaxDist: 30, Hysteresis: 1}, // gap after [5..15]
		{MinDist: 20, MaxDist: 30, Hysteresis: 1}, // duplicate of previous
		{MinDist: 40, MaxDist: 50, Hysteresis: MaxHysteresis + 1},
	}
	issues := Validate(levels)

	var kinds []string
	for _, i := range issues {
		kinds = append(kinds, i.Kind)
	}
	require.Contains(t, kinds, "overlap")
	require.Contains(t, kinds, "gap")
	require.Contains(t, kinds, "duplicate")
	require.Contains(t, kinds, "hysteresis")
}

func TestValidateCleanTableReportsNoIssues(t *testing.T) {
	levels := []LodLevel{
		{MinDist: 0, MaxDist: 4, Hysteresis: 2},
		{MinDist: 5, MaxDist: 12, Hysteresis: 2},
	}
	require.Empty(t, Validate(levels))
}
