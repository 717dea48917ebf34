package scheduler

import (
	"voxelstream/internal/voxel"
)

// genJob is a chunk generation request dispatched to a worker goroutine.
// The pool always runs a job's full range in one pass (generator.FullRange):
// generator.SliceRange-chaining across several frames is a capability the
// generator package itself exposes, but the scheduler's one-job-per-spawn
// model doesn't need it at this budget share (see DESIGN.md).
type genJob struct {
	coord     voxel.Coord
	epoch     uint64
	chunkSize int32
}

type genResult struct {
	coord voxel.Coord
	epoch uint64
	buf   *voxel.Buffer
}
