package scheduler

// adaptLimits halves gen/mesh/integration caps when their own last-frame
// timing exceeds the configured slow thresholds, halves every cap under
// process memory pressure, and halves mesh+integration specifically
// under graphics memory pressure. Recovery back to baseCfg only happens
// once AdaptiveCooldown has elapsed since the last time any throttle
// applied, so the scheduler doesn't thrash between throttled and
// recovered every other frame.
func (s *Scheduler) adaptLimits() {
	throttleNow := false

	cfg := s.baseCfg

	if s.lastGenMs > float64(s.cfg.GenSlow.Milliseconds()) {
		cfg.MaxGenJobsInFlight = half(cfg.MaxGenJobsInFlight)
		throttleNow = true
	}
	if s.lastMeshMs > float64(s.cfg.MeshSlow.Milliseconds()) {
		cfg.MaxMeshJobsInFlight = half(cfg.MaxMeshJobsInFlight)
		throttleNow = true
	}
	if s.lastIntegrationMs > float64(s.cfg.IntegrationSlow.Milliseconds()) {
		cfg.MaxIntegrationsPerFrame = half(cfg.MaxIntegrationsPerFrame)
		throttleNow = true
	}

	if s.memProbe != nil {
		if s.memProbe.ProcessMB() > s.baseCfg.MemoryPressureThresholdMB {
			cfg.MaxGenJobsInFlight = half(cfg.MaxGenJobsInFlight)
			cfg.MaxMeshJobsInFlight = half(cfg.MaxMeshJobsInFlight)
			cfg.MaxIntegrationsPerFrame = half(cfg.MaxIntegrationsPerFrame)
			cfg.MaxSpawnsPerFrame = half(cfg.MaxSpawnsPerFrame)
			cfg.MaxRemeshPerFrame = half(cfg.MaxRemeshPerFrame)
			cfg.MaxRemovalsPerFrame = half(cfg.MaxRemovalsPerFrame)
			cfg.MaxPreloadsPerFrame = half(cfg.MaxPreloadsPerFrame)
			throttleNow = true
		}
		if s.memProbe.GraphicsMB() > s.baseCfg.GraphicsMemoryThresholdMB {
			cfg.MaxMeshJobsInFlight = half(cfg.MaxMeshJobsInFlight)
			cfg.MaxIntegrationsPerFrame = half(cfg.MaxIntegrationsPerFrame)
			throttleNow = true
		}
	}

	now := s.clock.NowSeconds()
	if throttleNow {
		s.throttled = true
		s.throttledSince = now
		s.cfg = cfg
		s.dataCache.SetInsertCap(half(s.baseCfg.DataCacheInsertCapPerFrame))
		return
	}

	if s.throttled && now-s.throttledSince < s.cfg.AdaptiveCooldown.Seconds() {
		return
	}

	s.throttled = false
	s.cfg = s.baseCfg
	s.dataCache.SetInsertCap(s.baseCfg.DataCacheInsertCapPerFrame)
}

func half(n int) int {
	if n <= 1 {
		return 1
	}
	return n / 2
}
