package generator

import (
	"math"

	"voxelstream/internal/voxel"
)

// Config carries the per-world generation parameters the scheduler passes
// to every Generate call.
type Config struct {
	DefaultMaterial  voxel.MaterialID
	GeneratorVersion int32
}

// SliceRange identifies a contiguous run of flat buffer indices
// [Start, Start+Count). Generate only touches indices in this range, so
// several slices of the same chunk can fill one target buffer in turn.
// The scheduler does not chain slices: it generates every chunk as a
// single FullRange job.
type SliceRange struct {
	Start int32
	Count int32
}

// FullRange covers an entire buffer in one slice.
func FullRange(buf *voxel.Buffer) SliceRange {
	return SliceRange{Start: 0, Count: int32(len(buf.Materials))}
}

// Generate fills buf.Materials[i] for i in the slice's range: compute the
// voxel's world position, sample the height at its column, and set it to
// config.DefaultMaterial if wy <= floor(h), else air. Calling Generate
// again with a disjoint slice range on the same buffer composes
// correctly since each call only ever writes indices inside its own
// range.
func Generate(buf *voxel.Buffer, coord voxel.Coord, config Config, sampler HeightSampler, slice SliceRange) {
	n := buf.Size
	if n <= 0 {
		return
	}
	end := slice.Start + slice.Count
	total := int32(len(buf.Materials))
	if end > total {
		end = total
	}
	for i := slice.Start; i < end; i++ {
		x := i % n
		y := (i / n) % n
		z := i / (n * n)

		wx := coord.CX*n + x
		wy := coord.CY*n + y
		wz := coord.CZ*n + z

		h := sampler.HeightAt(wx, wz)
		if float32(wy) <= float32(math.Floor(float64(h))) {
			buf.Materials[i] = config.DefaultMaterial
		} else {
			buf.Materials[i] = voxel.MaterialAir
		}
	}
}

// IsComplete reports whether slice covers the whole buffer, i.e. whether
// this was the final (or only) slice in a chain.
func IsComplete(buf *voxel.Buffer, slice SliceRange) bool {
	return slice.Start+slice.Count >= int32(len(buf.Materials))
}
