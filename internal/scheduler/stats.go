package scheduler

// Stats is a point-in-time snapshot of the scheduler's internal queue
// depths and caches, meant for periodic logging/telemetry — the CLI
// harness prints it every N frames instead of reaching into
// unexported fields.
type Stats struct {
	Epoch                uint64
	ActiveChunks         int
	PendingCount         int
	PreloadCount         int
	GenJobsInFlight      int
	MeshJobsInFlight     int
	IntegrationQueueLen  int
	RemoveQueueLen       int
	RemeshQueueLen       int
	MeshCacheEntries     int
	SVOCacheEntries      int
	Throttled            bool
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		Epoch:               s.epoch,
		ActiveChunks:        len(s.active),
		PendingCount:        len(s.pendingSet),
		PreloadCount:        len(s.preloadSet),
		GenJobsInFlight:     len(s.genJobsSet),
		MeshJobsInFlight:    len(s.meshJobsSet),
		IntegrationQueueLen: len(s.integrationQueue),
		RemoveQueueLen:      len(s.removeQueue),
		RemeshQueueLen:      len(s.remeshFIFO),
		MeshCacheEntries:    s.meshCache.Len(),
		SVOCacheEntries:     s.svoCache.Len(),
		Throttled:           s.throttled,
	}
}
