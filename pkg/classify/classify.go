// Package classify defines the member-role classifier contract. The
// engine consumes (role, confidence) pairs opaquely: an external ML
// classifier and the deterministic geometric fallback here are
// interchangeable.
package classify

import (
	"math"

	"github.com/mpache/ferrite/pkg/geom"
	"github.com/mpache/ferrite/pkg/model"
)

// Classifier assigns a structural role to a member. Confidence is in
// [0,1]; the engine treats any pair as valid input regardless of how it
// was produced.
type Classifier interface {
	Classify(m model.Member) (model.Role, float64)
}

// Compile-time interface check.
var _ Classifier = Geometric{}

// Geometric is the deterministic fallback classifier. It assigns roles
// from member direction alone: near-vertical members are columns,
// near-horizontal members are beams, everything between is a brace.
type Geometric struct{}

// verticalCos and horizontalCos are the |cos| thresholds against the Z
// axis for column and beam classification.
const (
	verticalCos   = 0.9
	horizontalCos = 0.25
)

// Classify returns the role implied by the member's direction. Members
// with no usable direction stay unknown at zero confidence.
func (Geometric) Classify(m model.Member) (model.Role, float64) {
	dir, ok := geom.Direction(m.Start, m.End)
	if !ok {
		return model.RoleUnknown, 0
	}

	vert := math.Abs(dir.Z)
	switch {
	case vert >= verticalCos:
		return model.RoleColumn, scaled(vert, verticalCos)
	case vert <= horizontalCos:
		return model.RoleBeam, scaled(1-vert, 1-horizontalCos)
	default:
		return model.RoleBrace, 0.5
	}
}

// scaled maps a value in [threshold,1] onto confidence [0.5,1].
func scaled(v, threshold float64) float64 {
	if threshold >= 1 {
		return 1
	}
	return 0.5 + 0.5*(v-threshold)/(1-threshold)
}
