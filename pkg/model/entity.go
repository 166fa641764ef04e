package model

import (
	"errors"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// Role classifies a member's structural function.
type Role int

const (
	RoleUnknown Role = iota
	RoleBeam
	RoleColumn
	RoleBrace
)

func (r Role) String() string {
	switch r {
	case RoleBeam:
		return "beam"
	case RoleColumn:
		return "column"
	case RoleBrace:
		return "brace"
	default:
		return "unknown"
	}
}

// ProfileSpec is the section descriptor attached by the external
// classifier. Opaque to the engine.
type ProfileSpec struct {
	Name       string  `json:"name"`       // e.g. "W310x97", "HSS100x100x6"
	Confidence float64 `json:"confidence"` // [0,1]
}

// MaterialSpec is the material descriptor attached by the external
// classifier. Opaque to the engine.
type MaterialSpec struct {
	Grade      string  `json:"grade"` // e.g. "S355", "A992"
	Confidence float64 `json:"confidence"`
}

// Member is a straight-line structural element between two endpoints.
// Geometry is in millimeters. Once its geometry has been resolved the
// member is treated as immutable.
type Member struct {
	ID             EntityID      `json:"id"`
	Start          v3.Vec        `json:"start"`
	End            v3.Vec        `json:"end"`
	Role           Role          `json:"role"`
	RoleConfidence float64       `json:"role_confidence"`
	Profile        *ProfileSpec  `json:"profile,omitempty"`
	Material       *MaterialSpec `json:"material,omitempty"`
}

// BaseZ returns the lower endpoint elevation of the member.
func (m Member) BaseZ() float64 {
	if m.End.Z < m.Start.Z {
		return m.End.Z
	}
	return m.Start.Z
}

// ---------------------------------------------------------------------------
// Joints
// ---------------------------------------------------------------------------

// Joint is a point where two or more members meet. Members lists the
// incident member ids in ascending order. A joint with no incident
// members is an orphan; orphans are flagged, never dropped.
type Joint struct {
	ID       EntityID   `json:"id"`
	Position v3.Vec     `json:"position"`
	Members  []EntityID `json:"members,omitempty"`
	Orphan   bool       `json:"orphan,omitempty"`
}

// SortMembers normalizes the incident member list to ascending order.
func (j *Joint) SortMembers() {
	sort.Slice(j.Members, func(a, b int) bool { return j.Members[a] < j.Members[b] })
}

// ---------------------------------------------------------------------------
// Plates
// ---------------------------------------------------------------------------

// ErrPlateParent is returned when a plate does not reference exactly
// one parent (a member or a joint).
var ErrPlateParent = errors.New("model: plate must reference exactly one parent")

// Plate is a rectangular connection plate centered on its Position,
// axis-aligned, Width along X and Length along Y. Sizes in mm.
type Plate struct {
	ID        EntityID `json:"id"`
	Position  v3.Vec   `json:"position"`
	Width     float64  `json:"width"`
	Length    float64  `json:"length"`
	Thickness float64  `json:"thickness"`
	Member    EntityID `json:"member,omitempty"` // parent member, or
	Joint     EntityID `json:"joint,omitempty"`  // parent joint (exactly one set)
	Base      bool     `json:"base,omitempty"`   // base plate at a support
}

// NewPlate builds a plate and enforces the exactly-one-parent rule.
func NewPlate(id EntityID, pos v3.Vec, width, length, thickness float64, member, joint EntityID) (Plate, error) {
	p := Plate{
		ID:        id,
		Position:  pos,
		Width:     width,
		Length:    length,
		Thickness: thickness,
		Member:    member,
		Joint:     joint,
	}
	if member.IsZero() == joint.IsZero() {
		return Plate{}, ErrPlateParent
	}
	return p, nil
}

// Parent returns whichever parent reference is set.
func (p Plate) Parent() EntityID {
	if !p.Member.IsZero() {
		return p.Member
	}
	return p.Joint
}

// ---------------------------------------------------------------------------
// Bolts and welds
// ---------------------------------------------------------------------------

// Bolt is a fastener positioned in world coordinates. The parent plate
// reference is mandatory; a bolt with no resolvable parent is a hard
// error, never an auto-fix target.
type Bolt struct {
	ID       EntityID `json:"id"`
	Position v3.Vec   `json:"position"`
	Diameter float64  `json:"diameter"` // shank diameter mm
	Plate    EntityID `json:"plate"`
}

// Weld joins a plate to a member. Size is a derived, non-positional
// attribute and is not subject to spatial clash rules.
type Weld struct {
	ID     EntityID `json:"id"`
	Size   float64  `json:"size"` // fillet leg size mm, 0 = unsized
	Plate  EntityID `json:"plate"`
	Member EntityID `json:"member"`
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// Snapshot is one complete model handed to the engine. The engine never
// retains a snapshot across calls; every pass takes ownership of its
// input and returns new collections.
type Snapshot struct {
	Members []Member `json:"members"`
	Joints  []Joint  `json:"joints,omitempty"`
	Plates  []Plate  `json:"plates,omitempty"`
	Bolts   []Bolt   `json:"bolts,omitempty"`
	Welds   []Weld   `json:"welds,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Members: append([]Member(nil), s.Members...),
		Joints:  make([]Joint, len(s.Joints)),
		Plates:  append([]Plate(nil), s.Plates...),
		Bolts:   append([]Bolt(nil), s.Bolts...),
		Welds:   append([]Weld(nil), s.Welds...),
	}
	for i, j := range s.Joints {
		j.Members = append([]EntityID(nil), j.Members...)
		out.Joints[i] = j
	}
	for i, m := range s.Members {
		if m.Profile != nil {
			p := *m.Profile
			out.Members[i].Profile = &p
		}
		if m.Material != nil {
			mt := *m.Material
			out.Members[i].Material = &mt
		}
	}
	return out
}

// MemberByID returns the member with the given id, or nil.
func (s *Snapshot) MemberByID(id EntityID) *Member {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return &s.Members[i]
		}
	}
	return nil
}

// JointByID returns the joint with the given id, or nil.
func (s *Snapshot) JointByID(id EntityID) *Joint {
	for i := range s.Joints {
		if s.Joints[i].ID == id {
			return &s.Joints[i]
		}
	}
	return nil
}

// PlateByID returns the plate with the given id, or nil.
func (s *Snapshot) PlateByID(id EntityID) *Plate {
	for i := range s.Plates {
		if s.Plates[i].ID == id {
			return &s.Plates[i]
		}
	}
	return nil
}

// BoltsOfPlate returns the bolts parented to the given plate, in
// ascending id order.
func (s *Snapshot) BoltsOfPlate(plate EntityID) []*Bolt {
	var out []*Bolt
	for i := range s.Bolts {
		if s.Bolts[i].Plate == plate {
			out = append(out, &s.Bolts[i])
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
