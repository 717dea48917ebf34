package scheduler

// physicsTick enables colliders only for chunks close enough to matter
// for simulation (half the load radius) and disables the rest, so the
// physics engine never has to sweep against geometry far outside
// interaction range.
func (s *Scheduler) physicsTick(view View) {
	physicsRadius := s.cfg.LoadRadius / 2
	if physicsRadius < 1 {
		physicsRadius = 1
	}
	center := s.centerFromPlayerPos(view.PlayerPos)

	for coord, chunk := range s.active {
		if chunk.ColliderHandle == nil {
			continue
		}
		ch, ok := chunk.ColliderHandle.(interface{ SetEnabled(bool) })
		if !ok {
			continue
		}
		near := maxAbs(coord.CX-center.CX, coord.CZ-center.CZ) <= physicsRadius
		ch.SetEnabled(near)
	}
}
