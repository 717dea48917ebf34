package scheduler

import (
	"github.com/rs/zerolog/log"

	"voxelstream/internal/voxel"
)

// processPending starts generation jobs for queued coordinates up to
// max_spawns_per_frame and max_gen_jobs_in_flight, preferring the
// highest-priority coord when the view-cone prioritizer is enabled.
func (s *Scheduler) processPending(view View) {
	started := 0
	for started < s.cfg.MaxSpawnsPerFrame && len(s.genJobsSet) < s.cfg.MaxGenJobsInFlight {
		coord, ok := s.nextPending()
		if !ok {
			break
		}
		delete(s.pendingSet, coord)
		if _, active := s.active[coord]; active {
			continue
		}
		s.startGeneration(coord)
		started++
	}
}

func (s *Scheduler) nextPending() (voxel.Coord, bool) {
	if s.cfg.UseViewConePrioritizer {
		return s.pending.TryDequeue()
	}
	if len(s.pendingFIFO) == 0 {
		return voxel.Coord{}, false
	}
	coord := s.pendingFIFO[0]
	s.pendingFIFO = s.pendingFIFO[1:]
	return coord, true
}

// processPreload promotes coords out of preload into pending up to
// max_preloads_per_frame, so a viewer approaching the edge of the load
// radius already has generation queued by the time it matters.
func (s *Scheduler) processPreload(view View) {
	center := s.centerFromPlayerPos(view.PlayerPos)
	moved := 0
	for moved < s.cfg.MaxPreloadsPerFrame && len(s.preloadFIFO) > 0 {
		coord := s.preloadFIFO[0]
		s.preloadFIFO = s.preloadFIFO[1:]
		delete(s.preloadSet, coord)
		if s.coordSpokenFor(coord) {
			continue
		}
		s.enqueuePending(coord, center, view)
		moved++
	}
}

// startGeneration checks the data cache before spawning a generation job,
// and submits a job only when no cached buffer already satisfies the
// request. Persisted snapshots and deltas are applied later, in
// spawnChunk.
func (s *Scheduler) startGeneration(coord voxel.Coord) {
	if buf, ok := s.dataCache.Take(coord, s.cfg.ChunkSize); ok {
		s.spawnChunk(coord, buf)
		return
	}

	s.genJobsSet[coord] = struct{}{}
	if !s.genPool.submit(genJob{coord: coord, epoch: s.epoch, chunkSize: s.cfg.ChunkSize}) {
		delete(s.genJobsSet, coord)
		log.Warn().Str("coord", coord.String()).Msg("scheduler: generation queue full, dropping job")
	}
}
