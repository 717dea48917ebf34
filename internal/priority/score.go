package priority

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Score computes the composite priority for coord as seen from center
// with the given view:
//
//	score = distance_weight · 1/(1+dist)
//	      + dot_weight · max((dot(forward, toward_chunk)+1)/2, 0.5 if in_cone)
//	      + visual_bias
//
// visual_bias rewards chunks near the surface band (base_height / N),
// a smaller reward above it, and a penalty below it.
func Score(coord, center Coord, view View, w ScoreWeights) float64 {
	dx := float64(coord.CX - center.CX)
	dz := float64(coord.CZ - center.CZ)
	dist := math.Sqrt(dx*dx + dz*dz)

	distanceTerm := float64(w.DistanceWeight) * (1 / (1 + dist))

	dot := dotTowardChunk(coord, center, view.Forward)
	alignment := (dot + 1) / 2
	if InViewCone(coord, center, view) && alignment < 0.5 {
		alignment = 0.5
	}
	dotTerm := float64(w.DotWeight) * alignment

	return distanceTerm + dotTerm + visualBias(coord, w)
}

func dotTowardChunk(coord, center Coord, forward [3]float32) float64 {
	toward := mgl32.Vec3{
		float32(coord.CX - center.CX),
		float32(coord.CY - center.CY),
		float32(coord.CZ - center.CZ),
	}
	if toward.Len() == 0 {
		return 1
	}
	return float64(toward.Normalize().Dot(mgl32.Vec3(forward)))
}

// InViewCone reports whether coord lies within view's field of view from
// center.
func InViewCone(coord, center Coord, view View) bool {
	if coord == center {
		return true
	}
	return dotTowardChunk(coord, center, view.Forward) >= float64(view.FOVCosine)
}

// visualBias gives the surface band bonus/penalty described above.
// SurfaceBand is the chunk edge size N; the band sits at chunk-Y index
// floor(base_height / N).
func visualBias(coord Coord, w ScoreWeights) float64 {
	if w.SurfaceBand <= 0 {
		return 0
	}
	bandY := int32(math.Floor(float64(w.BaseHeight / w.SurfaceBand)))
	switch {
	case coord.CY == bandY:
		return 1.0
	case coord.CY > bandY:
		return 0.25
	default:
		return -0.5
	}
}
