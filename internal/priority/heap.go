// Package priority implements the view-cone priority queue MaintainRadius
// feeds: a binary max-heap over pending chunk coordinates, ordered by a
// composite score of distance, view alignment, and surface-band bias.
// Grounded on NebulousLabs/Sia's upload-repair heap (container/heap over
// a slice of pointers, guarded by a mutex, with a managedPush/managedPop
// pair), generalized from repair priority to the view-cone score below.
package priority

import (
	"container/heap"
	"sync"

	"voxelstream/internal/voxel"
)

// View describes the viewer's facing, used to score a candidate
// coordinate's priority; the viewer's position is passed separately as a
// center coordinate.
type View struct {
	Forward   [3]float32 // unit vector
	FOVCosine float32    // cos(half the view-cone angle); dot >= this is "in cone"
}

// ScoreWeights tunes the composite score's three terms.
type ScoreWeights struct {
	DistanceWeight float32
	DotWeight      float32
	SurfaceBand    float32 // world-chunk size N, used to locate the surface band
	BaseHeight     float32 // approximate terrain height in world units
}

// item is one heap entry: a chunk coordinate plus its score, computed
// once at enqueue time (spec: "score computed once at insert").
type item struct {
	coord Coord
	score float64
	index int
}

// Coord is the queue's payload identity, an alias of voxel.Coord.
type Coord = voxel.Coord

// itemHeap implements heap.Interface as a max-heap (Less inverted).
type itemHeap []*item

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return h[i].score > h[j].score }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *itemHeap) Push(x interface{}) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// Queue is the mutex-guarded max-heap of pending coordinates.
type Queue struct {
	mu      sync.Mutex
	heap    itemHeap
	present map[Coord]*item
	weights ScoreWeights
}

// NewQueue creates an empty queue scored with the given weights.
func NewQueue(weights ScoreWeights) *Queue {
	return &Queue{present: make(map[Coord]*item), weights: weights}
}

// Enqueue scores coord against center/view and pushes it, unless it's
// already present (a coord already queued keeps its original score).
func (q *Queue) Enqueue(coord Coord, center Coord, view View) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.present[coord]; exists {
		return
	}
	score := Score(coord, center, view, q.weights)
	it := &item{coord: coord, score: score}
	heap.Push(&q.heap, it)
	q.present[coord] = it
}

// TryDequeue pops the highest-priority coordinate, or reports empty.
func (q *Queue) TryDequeue() (Coord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.heap.Len() == 0 {
		return Coord{}, false
	}
	it := heap.Pop(&q.heap).(*item)
	delete(q.present, it.coord)
	return it.coord, true
}

// TryRemoveLowestPriority evicts the single worst-scored entry (an O(n)
// scan, acceptable since this only runs when the queue is over its cap).
func (q *Queue) TryRemoveLowestPriority() (Coord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.heap.Len() == 0 {
		return Coord{}, false
	}
	worst := 0
	for i := 1; i < len(q.heap); i++ {
		if q.heap[i].score < q.heap[worst].score {
			worst = i
		}
	}
	it := heap.Remove(&q.heap, worst).(*item)
	delete(q.present, it.coord)
	return it.coord, true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.heap = nil
	q.present = make(map[Coord]*item)
}

// Len reports the number of queued coordinates.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Contains reports whether coord is currently queued (the pending_set
// membership check MaintainRadius needs before enqueuing).
func (q *Queue) Contains(coord Coord) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.present[coord]
	return ok
}
