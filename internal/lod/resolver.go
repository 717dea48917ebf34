// Package lod maps a chunk's distance from the viewer to a level of
// detail, with per-level hysteresis so a chunk doesn't flicker between
// two steps when the viewer hovers near a boundary.
package lod

import "sort"

// Mode is the rendering representation a LodLevel selects.
type Mode int

const (
	ModeMesh Mode = iota
	ModeBillboard
	ModeSvo
	ModeNone
)

// modeWeight orders modes from cheapest to most aggressively simplified,
// used to break detail_rank ties (spec: Mesh=0 < Billboard < SVO < None).
func modeWeight(m Mode) int {
	switch m {
	case ModeMesh:
		return 0
	case ModeBillboard:
		return 1
	case ModeSvo:
		return 2
	default:
		return 3
	}
}

// MaxHysteresis bounds how far a level's hysteresis band may reach; the
// validator flags any level configured beyond it.
const MaxHysteresis = 16.0

// LodLevel is one band of the distance-to-detail table.
type LodLevel struct {
	MinDist    float32
	MaxDist    float32
	LodStep    int32
	Hysteresis float32 // 0 means "use the resolver's default"
	Mode       Mode
}

// detailRank orders levels from finest to coarsest: a higher rank means
// coarser detail. max(1, lod_step) guards against a misconfigured step of 0.
func detailRank(l LodLevel) float64 {
	step := l.LodStep
	if step < 1 {
		step = 1
	}
	return float64(step) * float64(modeWeight(l.Mode)+1)
}

// Current is the resolver's per-chunk state, round-tripped across calls
// to Resolve so hysteresis can compare against where the chunk currently is.
type Current struct {
	Level LodLevel
	Valid bool // false before a chunk has ever been resolved
}

// Resolver holds a validated, sorted table of levels plus the fallback
// used when no level's range covers a distance.
type Resolver struct {
	Levels       []LodLevel
	DefaultLevel LodLevel
	DefaultHyst  float32
}

// NewResolver sorts levels by MinDist and stores them alongside the
// fallback default level and default hysteresis (used by any level whose
// own Hysteresis is 0).
func NewResolver(levels []LodLevel, defaultLevel LodLevel, defaultHysteresis float32) *Resolver {
	sorted := append([]LodLevel(nil), levels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDist < sorted[j].MinDist })
	return &Resolver{Levels: sorted, DefaultLevel: defaultLevel, DefaultHyst: defaultHysteresis}
}

// Resolve picks the level for dist given the chunk's current level,
// applying asymmetric hysteresis: moving to coarser detail keeps the
// current level until dist exceeds current.MaxDist+h, while moving to
// finer detail only switches once dist drops past current.MinDist-h/2
// (detail should appear quickly, coarsening should lag).
func (r *Resolver) Resolve(dist float32, current Current) LodLevel {
	target := r.levelFor(dist)

	if !current.Valid {
		return target
	}
	if target == current.Level {
		return target
	}

	h := current.Level.Hysteresis
	if h == 0 {
		h = r.DefaultHyst
	}

	goingCoarser := detailRank(target) > detailRank(current.Level)
	if goingCoarser {
		if dist <= current.Level.MaxDist+h {
			return current.Level
		}
		return target
	}

	if dist >= current.Level.MinDist-h/2 {
		return current.Level
	}
	return target
}

// levelFor implements the target-selection rule before hysteresis: the
// level whose range contains dist, else the level with the largest
// MaxDist below dist (ties broken toward the coarser detail rank), else
// DefaultLevel.
func (r *Resolver) levelFor(dist float32) LodLevel {
	for _, l := range r.Levels {
		if dist >= l.MinDist && dist <= l.MaxDist {
			return l
		}
	}

	var best LodLevel
	found := false
	for _, l := range r.Levels {
		if l.MaxDist >= dist {
			continue
		}
		if !found || l.MaxDist > best.MaxDist ||
			(l.MaxDist == best.MaxDist && detailRank(l) > detailRank(best)) {
			best = l
			found = true
		}
	}
	if found {
		return best
	}
	return r.DefaultLevel
}
