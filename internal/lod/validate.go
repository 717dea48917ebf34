package lod

import (
	"fmt"
	"sort"
)

// ValidationIssue describes one problem an editor-facing level table check
// found. Kind is one of "overlap", "gap", "duplicate", "hysteresis".
type ValidationIssue struct {
	Kind    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// Validate flags overlapping ranges, gaps between consecutive ranges,
// exact duplicate ranges, and any hysteresis configured above
// MaxHysteresis. Gaps are reported (an editor-time warning) but are not
// fatal: the resolver tolerates them by falling through to DefaultLevel.
func Validate(levels []LodLevel) []ValidationIssue {
	var issues []ValidationIssue
	sorted := append([]LodLevel(nil), levels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDist < sorted[j].MinDist })

	for _, l := range levels {
		if l.Hysteresis > MaxHysteresis {
			issues = append(issues, ValidationIssue{
				Kind:    "hysteresis",
				Message: fmt.Sprintf("level [%g..%g] hysteresis %g exceeds MaxHysteresis %g", l.MinDist, l.MaxDist, l.Hysteresis, MaxHysteresis),
			})
		}
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if a.MinDist == b.MinDist && a.MaxDist == b.MaxDist {
				issues = append(issues, ValidationIssue{
					Kind:    "duplicate",
					Message: fmt.Sprintf("levels [%g..%g] and [%g..%g] are duplicates", a.MinDist, a.MaxDist, b.MinDist, b.MaxDist),
				})
			}
		}
	}

	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		if b.MinDist < a.MaxDist {
			issues = append(issues, ValidationIssue{
				Kind:    "overlap",
				Message: fmt.Sprintf("level [%g..%g] overlaps [%g..%g]", a.MinDist, a.MaxDist, b.MinDist, b.MaxDist),
			})
		} else if b.MinDist-a.MaxDist > 1 {
			// Consecutive integer-distance bands (e.g. [0..4], [5..12])
			// are treated as touching, not a gap; only a jump larger
			// than one unit is flagged.
			issues = append(issues, ValidationIssue{
				Kind:    "gap",
				Message: fmt.Sprintf("gap between [%g..%g] and [%g..%g]", a.MinDist, a.MaxDist, b.MinDist, b.MaxDist),
			})
		}
	}

	return issues
}
