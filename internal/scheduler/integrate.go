package scheduler

import "voxelstream/internal/voxel"

// integrateMeshes applies queued mesh results up to
// max_integrations_per_frame, expanded 3x when the backlog exceeds half
// the cap so a sudden burst (e.g. after an epoch bump) drains faster
// than it would under the steady-state cap alone.
func (s *Scheduler) integrateMeshes() {
	defer s.meshCache.EvictUpTo(s.cfg.MeshCacheEvictPerFrame, destroyMeshHandle)
	defer s.svoCache.EvictUpTo(s.cfg.MeshCacheEvictPerFrame, destroyMeshHandle)

	if len(s.integrationQueue) == 0 {
		return
	}
	start := s.clock.NowSeconds()

	limit := s.cfg.MaxIntegrationsPerFrame
	if len(s.integrationQueue) > limit/2 {
		limit *= 3
	}

	n := len(s.integrationQueue)
	if n > limit {
		n = limit
	}
	batch := s.integrationQueue[:n]
	s.integrationQueue = s.integrationQueue[n:]

	for _, pi := range batch {
		chunk, ok := s.active[pi.coord]
		if !ok || pi.epoch != s.epoch {
			continue
		}

		s.applyMesh(pi.coord, chunk, pi.mesh, nil, pi.key, false)

		if _, already := s.integratedOnce[pi.coord]; !already {
			s.integratedOnce[pi.coord] = struct{}{}
			s.requestNeighborRemesh(pi.coord, 0)
		}
	}

	s.lastIntegrationMs = (s.clock.NowSeconds() - start) * 1000
}

// destroyMeshHandle releases a host mesh resource evicted from the mesh
// cache. Entries inserted with a nil handle (freshly meshed geometry not
// yet applied to any chunk's own handle) have nothing to destroy.
func destroyMeshHandle(handle any) {
	if mh, ok := handle.(interface{ Destroy() }); ok {
		mh.Destroy()
	}
}

// requestNeighborRemesh queues every active direct neighbor of coord for
// a remesh pass (the newly-integrated chunk may now supply a boundary
// slab those neighbors were missing). It does not recurse: depth is only
// compared against RemeshDepthCap, so a cap of 0 disables the fan-out.
func (s *Scheduler) requestNeighborRemesh(coord voxel.Coord, depth int) {
	if depth >= s.cfg.RemeshDepthCap {
		return
	}
	for _, nc := range coord.Neighbors() {
		if _, active := s.active[nc]; !active {
			continue
		}
		s.queueRemesh(nc)
	}
}

func (s *Scheduler) queueRemesh(coord voxel.Coord) {
	if _, already := s.remeshSet[coord]; already {
		return
	}
	s.remeshSet[coord] = struct{}{}
	s.remeshFIFO = append(s.remeshFIFO, coord)
}
