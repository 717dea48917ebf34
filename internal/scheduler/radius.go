package scheduler

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/priority"
	"voxelstream/internal/voxel"
)

// centerFromPlayerPos converts a world-space player position into the
// chunk coordinate it currently occupies: floor(pos / (N * voxel_size)).
func (s *Scheduler) centerFromPlayerPos(pos [3]float32) voxel.Coord {
	n := float32(s.cfg.ChunkSize) * s.cfg.VoxelSize
	return voxel.Coord{
		CX: int32(math.Floor(float64(pos[0] / n))),
		CY: int32(math.Floor(float64(pos[1] / n))),
		CZ: int32(math.Floor(float64(pos[2] / n))),
	}
}

// keepRadius is the distance beyond which an active chunk is queued for
// removal: the widest of unload_radius, load_radius+1, and preload_radius.
func (s *Scheduler) keepRadius() int32 {
	keep := s.cfg.UnloadRadius
	if s.cfg.LoadRadius+1 > keep {
		keep = s.cfg.LoadRadius + 1
	}
	if s.cfg.PreloadRadius > keep {
		keep = s.cfg.PreloadRadius
	}
	return keep
}

func maxAbs(a, b int32) int32 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

// maintainRadius enqueues missing in-range coords into pending, enqueues
// farther-but-still-relevant coords into preload, and queues out-of-range
// active chunks for removal, sorted by descending squared XZ distance
// (farthest evicted first).
func (s *Scheduler) maintainRadius(view View) {
	center := s.centerFromPlayerPos(view.PlayerPos)
	s.maybeBumpEpoch(center, view.Forward)
	s.maybeRebuildPending(center)

	for dx := -s.cfg.LoadRadius; dx <= s.cfg.LoadRadius; dx++ {
		for dz := -s.cfg.LoadRadius; dz <= s.cfg.LoadRadius; dz++ {
			for dy := int32(0); dy < s.cfg.ColumnChunks; dy++ {
				coord := voxel.Coord{CX: center.CX + dx, CY: dy, CZ: center.CZ + dz}
				if s.coordSpokenFor(coord) {
					continue
				}
				s.enqueuePending(coord, center, view)
			}
		}
	}

	if s.cfg.PreloadRadius > s.cfg.LoadRadius {
		for dx := -s.cfg.PreloadRadius; dx <= s.cfg.PreloadRadius; dx++ {
			for dz := -s.cfg.PreloadRadius; dz <= s.cfg.PreloadRadius; dz++ {
				d := maxAbs(dx, dz)
				if d <= s.cfg.LoadRadius || d > s.cfg.PreloadRadius {
					continue
				}
				for dy := int32(0); dy < s.cfg.ColumnChunks; dy++ {
					coord := voxel.Coord{CX: center.CX + dx, CY: dy, CZ: center.CZ + dz}
					if s.coordSpokenFor(coord) {
						continue
					}
					if _, pre := s.preloadSet[coord]; pre {
						continue
					}
					s.preloadSet[coord] = struct{}{}
					s.preloadFIFO = append(s.preloadFIFO, coord)
				}
			}
		}
	}

	keep := s.keepRadius()
	type distCoord struct {
		coord voxel.Coord
		dist  int64
	}
	var candidates []distCoord
	for coord := range s.active {
		if maxAbs(coord.CX-center.CX, coord.CZ-center.CZ) > keep {
			candidates = append(candidates, distCoord{coord, coord.DistSqXZ(center)})
		}
	}
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].dist > candidates[i].dist {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	for _, c := range candidates {
		s.queueRemoval(c.coord)
	}
}

// coordSpokenFor reports whether coord already belongs to one of the
// mutually-exclusive membership sets invariant I2 requires: active,
// pending, gen_jobs, or mesh_jobs. maintainRadius must not re-enqueue a
// coord that's already anywhere in that pipeline.
func (s *Scheduler) coordSpokenFor(coord voxel.Coord) bool {
	if _, ok := s.active[coord]; ok {
		return true
	}
	if _, ok := s.pendingSet[coord]; ok {
		return true
	}
	if _, ok := s.genJobsSet[coord]; ok {
		return true
	}
	if _, ok := s.meshJobsSet[coord]; ok {
		return true
	}
	return false
}

func (s *Scheduler) enqueuePending(coord, center voxel.Coord, view View) {
	s.pendingSet[coord] = struct{}{}
	if s.cfg.UseViewConePrioritizer {
		s.pending.Enqueue(coord, center, priority.View{Forward: view.Forward, FOVCosine: view.FOVCosine})
	} else {
		s.pendingFIFO = append(s.pendingFIFO, coord)
	}
}

func (s *Scheduler) queueRemoval(coord voxel.Coord) {
	for _, c := range s.removeQueue {
		if c == coord {
			return
		}
	}
	s.removeQueue = append(s.removeQueue, coord)
}

// maybeRebuildPending clears and refills pending when it's grown past
// its cap or the center has moved far enough that the queue's relative
// priorities are stale.
func (s *Scheduler) maybeRebuildPending(center voxel.Coord) {
	count := len(s.pendingSet)
	moved := maxAbs(center.CX-s.lastRebuildCenter.CX, center.CZ-s.lastRebuildCenter.CZ)
	if count <= s.cfg.PendingQueueCap && moved <= s.cfg.PendingResetDistance {
		return
	}
	s.pending.Clear()
	s.pendingSet = make(map[voxel.Coord]struct{})
	s.pendingFIFO = nil
	s.lastRebuildCenter = center
}

// maybeBumpEpoch increments the epoch and clears pending/preload/removals
// /integration (preserving remesh membership and in-flight jobs) when the
// center has moved or turned sharply enough, subject to a cooldown.
func (s *Scheduler) maybeBumpEpoch(center voxel.Coord, forward [3]float32) {
	now := s.clock.NowSeconds()
	if !s.haveEpochHistory {
		s.lastEpochCenter = center
		s.lastEpochForward = forward
		s.lastEpochBumpSeconds = now
		s.haveEpochHistory = true
		return
	}

	if now-s.lastEpochBumpSeconds < s.cfg.WorkDropCooldown.Seconds() {
		return
	}

	moved := maxAbs(center.CX-s.lastEpochCenter.CX, center.CZ-s.lastEpochCenter.CZ)
	turned := angleBetweenDeg(s.lastEpochForward, forward)

	if float32(moved) <= float32(s.cfg.WorkDropDistance) && turned < s.cfg.WorkDropAngleDeg {
		return
	}

	s.epoch++
	s.pending.Clear()
	s.pendingSet = make(map[voxel.Coord]struct{})
	s.pendingFIFO = nil
	s.preloadSet = make(map[voxel.Coord]struct{})
	s.preloadFIFO = nil
	s.removeQueue = nil
	s.integrationQueue = nil

	s.lastEpochCenter = center
	s.lastEpochForward = forward
	s.lastEpochBumpSeconds = now
}

func angleBetweenDeg(a, b [3]float32) float32 {
	dot := float64(mgl32.Vec3(a).Dot(mgl32.Vec3(b)))
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return float32(math.Acos(dot) * 180 / math.Pi)
}
