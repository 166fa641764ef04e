package model

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Severity
// ---------------------------------------------------------------------------

// Severity ranks a clash. CRITICAL means the geometry is unusable by
// downstream consumers; MAJOR is a standards violation; MODERATE is
// advisory.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityMajor
	SeverityModerate
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityMajor:
		return "major"
	case SeverityModerate:
		return "moderate"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ---------------------------------------------------------------------------
// Clash taxonomy
// ---------------------------------------------------------------------------

// ClashType enumerates the detectable violation kinds.
type ClashType int

const (
	ClashInvalidCoordinates ClashType = iota // NaN/Inf component
	ClashPlateOrphaned                       // plate parent id absent or dangling
	ClashPlateElevation                      // plate z off its parent member's base z
	ClashBoltOrphaned                        // bolt parent plate id absent or dangling
	ClashBoltOutsideBounds                   // bolt outside the plate's inset rectangle
	ClashPlateUndersized                     // width/length below role minimum
	ClashPlateThin                           // thickness below role minimum
	ClashBoltNonStandard                     // diameter not in the standard-size set
	ClashBoltSpacing                         // spacing/edge distance below formula minimum
	ClashJointSuspectOrigin                  // joint at (0,0,0) while members imply otherwise
	ClashMemberDegenerate                    // near-zero-length member
	ClashJointOrphan                         // joint with no incident members
)

func (t ClashType) String() string {
	switch t {
	case ClashInvalidCoordinates:
		return "invalid-coordinates"
	case ClashPlateOrphaned:
		return "plate-orphaned"
	case ClashPlateElevation:
		return "plate-elevation"
	case ClashBoltOrphaned:
		return "bolt-orphaned"
	case ClashBoltOutsideBounds:
		return "bolt-outside-bounds"
	case ClashPlateUndersized:
		return "plate-undersized"
	case ClashPlateThin:
		return "plate-thin"
	case ClashBoltNonStandard:
		return "bolt-non-standard"
	case ClashBoltSpacing:
		return "bolt-spacing"
	case ClashJointSuspectOrigin:
		return "joint-suspect-origin"
	case ClashMemberDegenerate:
		return "member-degenerate"
	case ClashJointOrphan:
		return "joint-orphan"
	default:
		return "unknown"
	}
}

// Severity returns the fixed severity band for the clash type.
func (t ClashType) Severity() Severity {
	switch t {
	case ClashInvalidCoordinates, ClashPlateOrphaned, ClashPlateElevation,
		ClashBoltOrphaned, ClashBoltOutsideBounds:
		return SeverityCritical
	case ClashPlateUndersized, ClashPlateThin, ClashBoltNonStandard, ClashBoltSpacing:
		return SeverityMajor
	default:
		return SeverityModerate
	}
}

// correctionKinds maps each clash type to its suggested repair.
var correctionKinds = map[ClashType]string{
	ClashInvalidCoordinates: "recompute position from parent geometry",
	ClashPlateOrphaned:      "none: dangling parent must be fixed upstream",
	ClashPlateElevation:     "move plate to parent member base elevation",
	ClashBoltOrphaned:       "none: dangling parent must be fixed upstream",
	ClashBoltOutsideBounds:  "reposition bolt into the plate pattern",
	ClashPlateUndersized:    "grow plate to role minimum about its center",
	ClashPlateThin:          "increase thickness to role minimum",
	ClashBoltNonStandard:    "round diameter up to nearest standard size",
	ClashBoltSpacing:        "regenerate bolt pattern",
	ClashJointSuspectOrigin: "recompute joints from member endpoints",
	ClashMemberDegenerate:   "none: advisory",
	ClashJointOrphan:        "none: advisory",
}

// Clash is one detected violation. Clashes are transient: the rule
// engine regenerates them on every scan and they are never persisted.
type Clash struct {
	ID          EntityID   `json:"id"`
	Type        ClashType  `json:"type"`
	Severity    Severity   `json:"severity"`
	Entities    []EntityID `json:"entities"`
	Description string     `json:"description"`
	Correction  string     `json:"correction"`
}

// NewClash builds a clash with a content-derived id so identical scans
// yield identical reports.
func NewClash(t ClashType, description string, entities ...EntityID) Clash {
	parts := make([]string, 0, len(entities)+1)
	parts = append(parts, t.String())
	for _, e := range entities {
		parts = append(parts, string(e))
	}
	return Clash{
		ID:          NewEntityID("clash/" + strings.Join(parts, "|")),
		Type:        t,
		Severity:    t.Severity(),
		Entities:    entities,
		Description: description,
		Correction:  correctionKinds[t],
	}
}

// Entity returns the first involved entity id, or the zero id.
func (c Clash) Entity() EntityID {
	if len(c.Entities) == 0 {
		return ""
	}
	return c.Entities[0]
}

// ---------------------------------------------------------------------------
// Summary and corrections
// ---------------------------------------------------------------------------

// Summary counts clashes by severity band.
type Summary struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Moderate int `json:"moderate"`
}

// Summarize tallies a clash list.
func Summarize(clashes []Clash) Summary {
	var s Summary
	for _, c := range clashes {
		switch c.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityMajor:
			s.Major++
		default:
			s.Moderate++
		}
	}
	return s
}

// Total returns the number of clashes in all bands.
func (s Summary) Total() int {
	return s.Critical + s.Major + s.Moderate
}

// Blocking reports whether any clash in the summary blocks export.
// Moderate findings are advisory and do not block.
func (s Summary) Blocking() bool {
	return s.Critical+s.Major > 0
}

// ReadyForExport is the explicit "zero clashes" signal: a snapshot
// whose report is empty is safe to serialize.
func (s Summary) ReadyForExport() bool {
	return s.Total() == 0
}

// Correction is one applied repair, recorded for audit. Err is set
// instead of Old/New when the repair could not be applied, e.g. a
// dangling parent reference; such entries fail loudly rather than
// guessing.
type Correction struct {
	Entity EntityID `json:"entity"`
	Field  string   `json:"field"`
	Old    string   `json:"old,omitempty"`
	New    string   `json:"new,omitempty"`
	Err    string   `json:"err,omitempty"`
}

func (c Correction) String() string {
	if c.Err != "" {
		return fmt.Sprintf("%s %s: error: %s", c.Entity.Short(), c.Field, c.Err)
	}
	return fmt.Sprintf("%s %s: %s -> %s", c.Entity.Short(), c.Field, c.Old, c.New)
}
