package scheduler

import (
	"hash/fnv"
	"math"

	"voxelstream/internal/meshing"
	"voxelstream/internal/svo"
	"voxelstream/internal/voxel"
)

// scheduleSVO replaces coord's mesh with a sparse-voxel-octree
// synthesis, built and cached independently of the greedy mesher's
// content hash: an SVO needs no cross-chunk boundary slabs, so its
// cache key is simply the chunk's own materials and voxel scale.
func (s *Scheduler) scheduleSVO(coord voxel.Coord) {
	chunk, ok := s.active[coord]
	if !ok {
		return
	}

	key := svoContentHash(chunk.Buffer.Materials, s.cfg.VoxelSize)

	if mesh, _, hit := s.svoCache.Get(key); hit {
		s.applySVO(coord, chunk, mesh, key)
		return
	}

	root := svo.BuildFromBuffer(chunk.Buffer)
	mesh := svo.SynthesizeMesh(root, s.cfg.VoxelSize)
	s.svoCache.Insert(key, root, mesh, nil)
	s.applySVO(coord, chunk, mesh, key)
}

func (s *Scheduler) applySVO(coord voxel.Coord, chunk *voxel.Chunk, mesh meshing.MeshData, key uint64) {
	s.uploadMesh(coord, chunk, mesh)
	if prev, tracked := s.svoKeys[coord]; tracked {
		if prev == key {
			// The Get/Insert that produced this call's mesh already
			// bumped key's ref count, but coord already held a
			// reference to it — cancel out the redundant bump.
			s.svoCache.Release(key)
		} else {
			s.svoCache.Release(prev)
		}
	}
	s.svoKeys[coord] = key
}

func svoContentHash(materials []voxel.MaterialID, voxelSize float32) uint64 {
	h := fnv.New64a()
	for _, m := range materials {
		h.Write([]byte{byte(m), byte(m >> 8)})
	}
	bits := math.Float32bits(voxelSize)
	h.Write([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})
	return h.Sum64()
}
