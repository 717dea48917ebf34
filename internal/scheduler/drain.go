package scheduler

// drainGenJobs pulls every generation result that's ready without
// blocking. A result whose epoch no longer matches the current epoch, or
// whose coord is already active, is dropped per the "never retries
// implicitly, disposes stale outputs" failure rule.
func (s *Scheduler) drainGenJobs() {
	start := s.clock.NowSeconds()
	drained := 0
	for {
		select {
		case res := <-s.genPool.results:
			delete(s.genJobsSet, res.coord)
			drained++
			if res.epoch != s.epoch {
				continue
			}
			if _, active := s.active[res.coord]; active {
				continue
			}
			s.spawnChunk(res.coord, res.buf)
		default:
			if drained > 0 {
				s.lastGenMs = (s.clock.NowSeconds() - start) * 1000
			}
			return
		}
	}
}

// drainMeshJobs pulls every completed mesh result without blocking and
// queues it for integration under the key computed at submit time;
// integrateMeshes is what actually inserts the geometry into the mesh
// cache. A stale-epoch result is dropped without queuing it.
func (s *Scheduler) drainMeshJobs() {
	start := s.clock.NowSeconds()
	drained := 0
	for {
		select {
		case res := <-s.meshResults:
			delete(s.meshJobsSet, res.Coord)
			key, hadKey := s.meshJobKeys[res.Coord]
			delete(s.meshJobKeys, res.Coord)
			drained++

			if res.Epoch != s.epoch {
				continue
			}
			if _, active := s.active[res.Coord]; !active {
				continue
			}
			if !hadKey {
				continue
			}

			s.integrationQueue = append(s.integrationQueue, pendingIntegration{
				coord: res.Coord, epoch: res.Epoch, mesh: res.Mesh, key: key,
			})
		default:
			if drained > 0 {
				s.lastMeshMs = (s.clock.NowSeconds() - start) * 1000
			}
			return
		}
	}
}
