package scheduler

import (
	"math"
	"time"

	"voxelstream/internal/lod"
	"voxelstream/internal/voxel"
)

// lodTransitions resolves every active chunk's level of detail against
// its distance from the viewer. When the resolved step or the SVO/non-SVO
// representation changes, an SVO level rebuilds the chunk's SVO mesh and
// a Mesh level queues a remesh; Billboard and None levels trigger
// neither.
func (s *Scheduler) lodTransitions(view View) {
	n := float64(s.cfg.ChunkSize) * float64(s.cfg.VoxelSize)
	for coord, chunk := range s.active {
		dist := chunkDistance(coord, view.PlayerPos, n)
		current := s.lodCurrent[coord]
		next := s.resolver.Resolve(float32(dist), current)
		s.lodCurrent[coord] = lod.Current{Level: next, Valid: true}

		changedStep := chunk.LODStep != next.LodStep
		changedRepresentation := chunk.UsesSVO != (next.Mode == lod.ModeSvo)
		chunk.LODStep = next.LodStep
		chunk.UsesSVO = next.Mode == lod.ModeSvo
		chunk.IsLowLOD = next.Mode != lod.ModeMesh

		if changedStep || changedRepresentation {
			chunk.LODStartTime = time.Now()
			switch next.Mode {
			case lod.ModeSvo:
				s.scheduleSVO(coord)
			case lod.ModeMesh:
				if changedRepresentation {
					if prev, tracked := s.svoKeys[coord]; tracked {
						s.svoCache.Release(prev)
						delete(s.svoKeys, coord)
					}
				}
				s.queueRemesh(coord)
			}
		}
	}
}

// chunkDistance is the world-space distance from pos to coord's center,
// in chunk-size units (n = chunk_size * voxel_size).
func chunkDistance(coord voxel.Coord, pos [3]float32, n float64) float64 {
	cx := (float64(coord.CX) + 0.5) * n
	cy := (float64(coord.CY) + 0.5) * n
	cz := (float64(coord.CZ) + 0.5) * n
	dx := cx - float64(pos[0])
	dy := cy - float64(pos[1])
	dz := cz - float64(pos[2])
	return math.Sqrt(dx*dx+dy*dy+dz*dz) / n
}
