package meshing

import "voxelstream/internal/voxel"

// Downsample maps an L^3 block of buf to one output voxel: the first
// non-air voxel encountered in scan order z, y, x wins; all-air blocks
// stay air. Used by Mesh whenever lodStep > 1, both for the target
// chunk's own buffer and for each present neighbor slab, so both sides of
// a boundary check are compared at the same resolution.
func Downsample(buf *voxel.Buffer, step int32) *voxel.Buffer {
	if buf == nil || step <= 1 {
		return buf
	}
	n := buf.Size
	outN := n / step
	if outN < 1 {
		outN = 1
	}
	out := voxel.NewBuffer(outN)
	for oz := int32(0); oz < outN; oz++ {
		for oy := int32(0); oy < outN; oy++ {
			for ox := int32(0); ox < outN; ox++ {
				out.Set(ox, oy, oz, firstNonAirInBlock(buf, ox, oy, oz, step))
			}
		}
	}
	return out
}

func firstNonAirInBlock(buf *voxel.Buffer, ox, oy, oz, step int32) voxel.MaterialID {
	baseX, baseY, baseZ := ox*step, oy*step, oz*step
	for z := int32(0); z < step; z++ {
		for y := int32(0); y < step; y++ {
			for x := int32(0); x < step; x++ {
				if m := buf.At(baseX+x, baseY+y, baseZ+z); m != voxel.MaterialAir {
					return m
				}
			}
		}
	}
	return voxel.MaterialAir
}
