package priority

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func defaultWeights() ScoreWeights {
	return ScoreWeights{DistanceWeight: 1, DotWeight: 1, SurfaceBand: 16, BaseHeight: 64}
}

func TestQueueDequeuesHighestScoreFirst(t *testing.T) {
	q := NewQueue(defaultWeights())
	center := Coord{CX: 0, CY: 4, CZ: 0}
	view := View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.5}

	near := Coord{CX: 1, CY: 4, CZ: 0}
	far := Coord{CX: 10, CY: 4, CZ: 0}
	q.Enqueue(far, center, view)
	q.Enqueue(near, center, view)

	got, ok := q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, near, got, "the closer chunk should score higher and dequeue first")
}

func TestQueueEnqueueIsIdempotentPerCoord(t *testing.T) {
	q := NewQueue(defaultWeights())
	center := Coord{}
	view := View{Forward: [3]float32{0, 0, 1}, FOVCosine: 0.5}
	coord := Coord{CX: 1}

	q.Enqueue(coord, center, view)
	q.Enqueue(coord, center, view)
	require.Equal(t, 1, q.Len())
}

func TestQueueContainsReflectsMembership(t *testing.T) {
	q := NewQueue(defaultWeights())
	coord := Coord{CX: 2}
	require.False(t, q.Contains(coord))
	q.Enqueue(coord, Coord{}, View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.5})
	require.True(t, q.Contains(coord))

	q.TryDequeue()
	require.False(t, q.Contains(coord))
}

func TestQueueTryRemoveLowestPriorityEvictsWorst(t *testing.T) {
	q := NewQueue(defaultWeights())
	view := View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.5}
	center := Coord{}
	best := Coord{CX: 1}
	worst := Coord{CX: 100}
	q.Enqueue(best, center, view)
	q.Enqueue(worst, center, view)

	removed, ok := q.TryRemoveLowestPriority()
	require.True(t, ok)
	require.Equal(t, worst, removed)
	require.Equal(t, 1, q.Len())

	remaining, _ := q.TryDequeue()
	require.Equal(t, best, remaining)
}

func TestQueueClearEmptiesQueue(t *testing.T) {
	q := NewQueue(defaultWeights())
	q.Enqueue(Coord{CX: 1}, Coord{}, View{Forward: [3]float32{1, 0, 0}, FOVCosine: 0.5})
	q.Clear()
	require.Equal(t, 0, q.Len())
	require.False(t, q.Contains(Coord{CX: 1}))
}

func TestQueueTryDequeueOnEmptyReportsFalse(t *testing.T) {
	q := NewQueue(defaultWeights())
	_, ok := q.TryDequeue()
	require.False(t, ok)
}
