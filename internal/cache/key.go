package cache

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"voxelstream/internal/voxel"
)

// ContentHash computes the 64-bit FNV-1a mesh-cache key spec.md §4.5
// requires: a hash over the chunk's materials, each present neighbor's
// boundary slab, lod_step, the materials length, and density if present.
// hash/fnv is stdlib and is used here because the cache key algorithm is
// specified exactly (FNV-1a-64), not left to the implementer's choice of
// hashing library (see DESIGN.md).
func ContentHash(materials []voxel.MaterialID, neighbors [6]*voxel.Buffer, lodStep int32, density []float32) uint64 {
	h := fnv.New64a()
	var scratch [8]byte

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:4], v)
		h.Write(scratch[:4])
	}
	writeMaterials := func(m []voxel.MaterialID) {
		for _, v := range m {
			binary.LittleEndian.PutUint16(scratch[:2], v)
			h.Write(scratch[:2])
		}
	}

	writeU32(uint32(len(materials)))
	writeMaterials(materials)

	for _, nb := range neighbors {
		if nb == nil {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		writeMaterials(nb.Materials)
	}

	writeU32(uint32(lodStep))

	if density == nil {
		h.Write([]byte{0})
	} else {
		h.Write([]byte{1})
		for _, d := range density {
			binary.LittleEndian.PutUint32(scratch[:4], math.Float32bits(d))
			h.Write(scratch[:4])
		}
	}

	return h.Sum64()
}
