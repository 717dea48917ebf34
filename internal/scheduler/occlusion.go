package scheduler

import (
	"voxelstream/internal/priority"
	"voxelstream/internal/voxel"
)

func inViewCone(coord, center voxel.Coord, view View) bool {
	return priority.InViewCone(coord, center, priority.View{Forward: view.Forward, FOVCosine: view.FOVCosine})
}

// occlusionTick toggles each active chunk's renderer visibility using the
// same view-cone test the priority queue uses to score candidates: a
// chunk well outside the viewer's field of view gets disabled rather
// than paying draw cost for geometry nobody's looking at.
func (s *Scheduler) occlusionTick(view View) {
	if !s.cfg.UseViewConePrioritizer {
		return
	}
	center := s.centerFromPlayerPos(view.PlayerPos)
	for coord, chunk := range s.active {
		rh, ok := chunk.MeshHandle.(interface{ SetEnabled(bool) })
		if !ok {
			continue
		}
		visible := coord == center || inViewCone(coord, center, view)
		rh.SetEnabled(visible)
	}
}
