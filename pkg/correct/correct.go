// Package correct applies one deterministic repair transform per clash
// type. Correction never deletes an entity; it repositions or resizes,
// preserving ids and non-spatial attributes. Applying the corrector to
// an already-clean snapshot makes no changes, so one detect-correct
// cycle at a fixed point is a no-op.
package correct

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/connect"
	"github.com/mpache/ferrite/pkg/model"
)

// Result bundles the corrected snapshot with the audit log.
type Result struct {
	Snapshot model.Snapshot
	Log      []model.Correction

	// Changed reports whether any repair actually mutated an entity.
	// Error-only log entries (dangling references) do not count: they
	// surface problems this engine has no authority to fix.
	Changed bool
}

// Apply repairs the given clashes on their own snapshot copy. Clashes
// must be in detection order; repairs run sequentially because later
// corrections depend on earlier ones.
func Apply(snap model.Snapshot, clashes []model.Clash, cfg config.Config) Result {
	res := Result{Snapshot: snap.Clone()}
	s := &res.Snapshot

	regen := false
	for _, c := range clashes {
		switch c.Type {
		case model.ClashPlateElevation:
			res.repairPlatePosition(s, c)

		case model.ClashInvalidCoordinates:
			res.repairInvalid(s, c)

		case model.ClashPlateOrphaned, model.ClashBoltOrphaned:
			// Dangling references fail loudly; inventing a parent is
			// not this engine's call.
			res.log(model.Correction{
				Entity: c.Entity(),
				Field:  "parent",
				Err:    c.Description,
			})

		case model.ClashBoltOutsideBounds, model.ClashBoltSpacing:
			regen = true

		case model.ClashPlateUndersized:
			res.repairPlateSize(s, c, cfg)

		case model.ClashPlateThin:
			res.repairPlateThickness(s, c, cfg)

		case model.ClashBoltNonStandard:
			if res.repairBoltDiameter(s, c, cfg) {
				regen = true // a larger shank needs more edge and spacing room
			}

		case model.ClashJointSuspectOrigin:
			// Deferred to the resolver's recompute pass; never patched
			// in place, which could overwrite a legitimate origin joint.

		case model.ClashMemberDegenerate, model.ClashJointOrphan:
			// Advisory only.
		}
	}

	if regen {
		mapper := connect.NewMapper(cfg, s.Members, s.Joints)
		bolts, moved := mapper.PositionBolts(s.Bolts, s.Plates)
		s.Bolts = bolts
		for _, c := range moved {
			if c.Err == "" {
				res.Changed = true
			}
			res.log(c)
		}
	}
	return res
}

// repairPlatePosition moves a plate back onto its parent: the member's
// base elevation, or the joint's position.
func (r *Result) repairPlatePosition(s *model.Snapshot, c model.Clash) {
	plate := s.PlateByID(c.Entity())
	if plate == nil {
		return
	}

	if !plate.Member.IsZero() {
		m := s.MemberByID(plate.Member)
		if m == nil {
			r.log(model.Correction{Entity: plate.ID, Field: "position.z",
				Err: fmt.Sprintf("parent member %s not in snapshot", plate.Member.Short())})
			return
		}
		old := plate.Position.Z
		if old == m.BaseZ() {
			return
		}
		plate.Position.Z = m.BaseZ()
		r.logChange(plate.ID, "position.z", fmt.Sprintf("%.3f", old), fmt.Sprintf("%.3f", plate.Position.Z))
		return
	}

	j := s.JointByID(plate.Joint)
	if j == nil {
		r.log(model.Correction{Entity: plate.ID, Field: "position",
			Err: fmt.Sprintf("parent joint %s not in snapshot", plate.Joint.Short())})
		return
	}
	old := plate.Position
	plate.Position = j.Position
	r.logChange(plate.ID, "position", vec(old), vec(plate.Position))
}

// repairInvalid recomputes a position from parent geometry. Entities
// with no parent are left uncorrected and the error surfaced.
func (r *Result) repairInvalid(s *model.Snapshot, c model.Clash) {
	id := c.Entity()

	if plate := s.PlateByID(id); plate != nil {
		if pos, ok := parentPosition(s, *plate); ok {
			old := plate.Position
			plate.Position = pos
			r.logChange(plate.ID, "position", vec(old), vec(pos))
		} else {
			r.log(model.Correction{Entity: id, Field: "position",
				Err: "no resolvable parent to recompute from"})
		}
		return
	}

	for i := range s.Bolts {
		if s.Bolts[i].ID != id {
			continue
		}
		plate := s.PlateByID(s.Bolts[i].Plate)
		if plate == nil {
			r.log(model.Correction{Entity: id, Field: "position",
				Err: "no resolvable parent to recompute from"})
			return
		}
		old := s.Bolts[i].Position
		s.Bolts[i].Position = plate.Position // pattern center; regen refines
		r.logChange(id, "position", vec(old), vec(plate.Position))
		return
	}

	// Members and joints carry no parent to recompute from. Joints are
	// the resolver's to rebuild; members are the caller's.
	r.log(model.Correction{Entity: id, Field: "position",
		Err: "no resolvable parent to recompute from"})
}

func parentPosition(s *model.Snapshot, p model.Plate) (v3.Vec, bool) {
	if !p.Member.IsZero() {
		if m := s.MemberByID(p.Member); m != nil {
			if m.End.Z < m.Start.Z {
				return m.End, true
			}
			return m.Start, true
		}
		return v3.Vec{}, false
	}
	if j := s.JointByID(p.Joint); j != nil {
		return j.Position, true
	}
	return v3.Vec{}, false
}

// repairPlateSize grows the plate to the role minimum, keeping its
// center fixed.
func (r *Result) repairPlateSize(s *model.Snapshot, c model.Clash, cfg config.Config) {
	plate := s.PlateByID(c.Entity())
	if plate == nil {
		return
	}
	minW, minL, _ := cfg.Standards.MinPlate(plate.Base)
	if plate.Width < minW {
		r.logChange(plate.ID, "width", fmt.Sprintf("%g", plate.Width), fmt.Sprintf("%g", minW))
		plate.Width = minW
	}
	if plate.Length < minL {
		r.logChange(plate.ID, "length", fmt.Sprintf("%g", plate.Length), fmt.Sprintf("%g", minL))
		plate.Length = minL
	}
}

func (r *Result) repairPlateThickness(s *model.Snapshot, c model.Clash, cfg config.Config) {
	plate := s.PlateByID(c.Entity())
	if plate == nil {
		return
	}
	_, _, minT := cfg.Standards.MinPlate(plate.Base)
	if plate.Thickness < minT {
		r.logChange(plate.ID, "thickness", fmt.Sprintf("%g", plate.Thickness), fmt.Sprintf("%g", minT))
		plate.Thickness = minT
	}
}

// repairBoltDiameter rounds the diameter up to the nearest standard
// size. Returns true when the bolt changed.
func (r *Result) repairBoltDiameter(s *model.Snapshot, c model.Clash, cfg config.Config) bool {
	for i := range s.Bolts {
		if s.Bolts[i].ID != c.Entity() {
			continue
		}
		std := cfg.Standards.NearestBoltDiameter(s.Bolts[i].Diameter)
		if std == s.Bolts[i].Diameter {
			return false
		}
		r.logChange(s.Bolts[i].ID, "diameter", fmt.Sprintf("%g", s.Bolts[i].Diameter), fmt.Sprintf("%g", std))
		s.Bolts[i].Diameter = std
		return true
	}
	return false
}

func (r *Result) log(c model.Correction) {
	r.Log = append(r.Log, c)
}

func (r *Result) logChange(id model.EntityID, field, oldVal, newVal string) {
	r.Log = append(r.Log, model.Correction{Entity: id, Field: field, Old: oldVal, New: newVal})
	r.Changed = true
}

func vec(v v3.Vec) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
