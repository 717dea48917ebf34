package scheduler

import "voxelstream/internal/voxel"

// processRemovals tears down active chunks queued by maintainRadius, up
// to max_removals_per_frame and removal_budget_ms, whichever is hit
// first.
func (s *Scheduler) processRemovals() {
	if len(s.removeQueue) == 0 {
		return
	}
	start := s.clock.NowSeconds()
	budget := s.cfg.RemovalBudget.Seconds()

	removed := 0
	for removed < s.cfg.MaxRemovalsPerFrame && len(s.removeQueue) > 0 {
		if budget > 0 && s.clock.NowSeconds()-start > budget {
			break
		}
		coord := s.removeQueue[0]
		s.removeQueue = s.removeQueue[1:]
		s.removeChunk(coord, true)
		delete(s.integratedOnce, coord)
		removed++
	}
}

// processRemesh re-submits mesh jobs for chunks whose neighbor
// availability changed since they were last meshed, up to
// max_remesh_per_frame.
func (s *Scheduler) processRemesh() {
	processed := 0
	for processed < s.cfg.MaxRemeshPerFrame && len(s.remeshFIFO) > 0 {
		coord := s.remeshFIFO[0]
		s.remeshFIFO = s.remeshFIFO[1:]
		delete(s.remeshSet, coord)
		if _, active := s.active[coord]; !active {
			continue
		}
		if _, inFlight := s.meshJobsSet[coord]; inFlight {
			continue
		}
		s.scheduleMesh(coord)
		processed++
	}
}

// RequestRemesh lets callers outside the per-frame radius/integration
// bookkeeping (e.g. a player edit) ask for a chunk to be remeshed, and
// optionally its immediate neighbors too.
func (s *Scheduler) RequestRemesh(coord voxel.Coord, includeNeighbors bool) {
	if _, active := s.active[coord]; !active {
		return
	}
	s.queueRemesh(coord)
	if includeNeighbors {
		s.requestNeighborRemesh(coord, 0)
	}
}
