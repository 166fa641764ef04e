package clash

import (
	"fmt"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/connect"
	"github.com/mpache/ferrite/pkg/geom"
	"github.com/mpache/ferrite/pkg/model"
)

// ---------------------------------------------------------------------------
// Member rules
// ---------------------------------------------------------------------------

func memberClashes(snap model.Snapshot, cfg config.Config) []model.Clash {
	var clashes []model.Clash

	for _, m := range snap.Members {
		if !geom.IsFinite(m.Start) || !geom.IsFinite(m.End) {
			clashes = append(clashes, model.NewClash(model.ClashInvalidCoordinates,
				fmt.Sprintf("member %s has NaN or infinite coordinates", m.ID.Short()), m.ID))
			continue
		}
		if geom.IsDegenerate(m.Start, m.End, cfg.Tolerance) {
			clashes = append(clashes, model.NewClash(model.ClashMemberDegenerate,
				fmt.Sprintf("member %s is shorter than the %gmm tolerance", m.ID.Short(), cfg.Tolerance), m.ID))
		}
	}
	return clashes
}

// ---------------------------------------------------------------------------
// Joint rules
// ---------------------------------------------------------------------------

func jointClashes(snap model.Snapshot, cfg config.Config) []model.Clash {
	var clashes []model.Clash

	for _, j := range snap.Joints {
		if !geom.IsFinite(j.Position) {
			clashes = append(clashes, model.NewClash(model.ClashInvalidCoordinates,
				fmt.Sprintf("joint %s has NaN or infinite coordinates", j.ID.Short()), j.ID))
			continue
		}
		if len(j.Members) == 0 {
			clashes = append(clashes, model.NewClash(model.ClashJointOrphan,
				fmt.Sprintf("joint %s has no incident members", j.ID.Short()), j.ID))
			continue
		}
		if cfg.SuspectOriginJoints && geom.IsOrigin(j.Position, cfg.Tolerance) && impliesNonOrigin(snap, j, cfg) {
			clashes = append(clashes, model.NewClash(model.ClashJointSuspectOrigin,
				fmt.Sprintf("joint %s sits at the origin while its members end elsewhere", j.ID.Short()), j.ID))
		}
	}
	return clashes
}

// impliesNonOrigin reports whether the joint's incident member geometry
// places no endpoint near the origin, making an origin position
// implausible.
func impliesNonOrigin(snap model.Snapshot, j model.Joint, cfg config.Config) bool {
	sawMember := false
	for _, mid := range j.Members {
		m := snap.MemberByID(mid)
		if m == nil || !geom.IsFinite(m.Start) || !geom.IsFinite(m.End) {
			continue
		}
		sawMember = true
		if geom.IsOrigin(m.Start, cfg.Tolerance) || geom.IsOrigin(m.End, cfg.Tolerance) {
			return false
		}
	}
	return sawMember
}

// ---------------------------------------------------------------------------
// Plate rules
// ---------------------------------------------------------------------------

func plateClashes(snap model.Snapshot, cfg config.Config) []model.Clash {
	var clashes []model.Clash

	for _, p := range snap.Plates {
		if !geom.IsFinite(p.Position) {
			clashes = append(clashes, model.NewClash(model.ClashInvalidCoordinates,
				fmt.Sprintf("plate %s has NaN or infinite coordinates", p.ID.Short()), p.ID))
		}

		switch {
		case p.Parent().IsZero():
			clashes = append(clashes, model.NewClash(model.ClashPlateOrphaned,
				fmt.Sprintf("plate %s has no parent reference", p.ID.Short()), p.ID))
		case !p.Member.IsZero():
			m := snap.MemberByID(p.Member)
			if m == nil {
				clashes = append(clashes, model.NewClash(model.ClashPlateOrphaned,
					fmt.Sprintf("plate %s references missing member %s", p.ID.Short(), p.Member.Short()), p.ID))
				break
			}
			clashes = append(clashes, plateElevation(p, *m, cfg)...)
		default:
			j := snap.JointByID(p.Joint)
			if j == nil {
				clashes = append(clashes, model.NewClash(model.ClashPlateOrphaned,
					fmt.Sprintf("plate %s references missing joint %s", p.ID.Short(), p.Joint.Short()), p.ID))
				break
			}
			if geom.IsFinite(p.Position) && !geom.WithinTolerance(p.Position, j.Position, cfg.Tolerance) {
				clashes = append(clashes, model.NewClash(model.ClashPlateElevation,
					fmt.Sprintf("plate %s is off its parent joint position", p.ID.Short()), p.ID, j.ID))
			}
		}

		minW, minL, minT := cfg.Standards.MinPlate(p.Base)
		if p.Width < minW || p.Length < minL {
			clashes = append(clashes, model.NewClash(model.ClashPlateUndersized,
				fmt.Sprintf("plate %s is %gx%gmm, minimum %gx%gmm", p.ID.Short(), p.Width, p.Length, minW, minL), p.ID))
		}
		if p.Thickness < minT {
			clashes = append(clashes, model.NewClash(model.ClashPlateThin,
				fmt.Sprintf("plate %s is %gmm thick, minimum %gmm", p.ID.Short(), p.Thickness, minT), p.ID))
		}
	}
	return clashes
}

// plateElevation checks a member-parented plate against its member's
// base elevation. The rule binds base and column plates; plates on
// inclined members legitimately sit away from the base z.
func plateElevation(p model.Plate, m model.Member, cfg config.Config) []model.Clash {
	if !p.Base && m.Role != model.RoleColumn {
		return nil
	}
	if !geom.IsFinite(p.Position) || !geom.IsFinite(m.Start) || !geom.IsFinite(m.End) {
		return nil
	}
	dz := p.Position.Z - m.BaseZ()
	if dz < 0 {
		dz = -dz
	}
	if dz < cfg.Tolerance {
		return nil
	}
	return []model.Clash{model.NewClash(model.ClashPlateElevation,
		fmt.Sprintf("plate %s at z=%.1f, parent member base z=%.1f", p.ID.Short(), p.Position.Z, m.BaseZ()), p.ID, m.ID)}
}

// ---------------------------------------------------------------------------
// Bolt rules
// ---------------------------------------------------------------------------

func boltClashes(snap model.Snapshot, cfg config.Config) []model.Clash {
	var clashes []model.Clash
	checkedPlates := make(map[model.EntityID]bool)

	for _, b := range snap.Bolts {
		if !geom.IsFinite(b.Position) {
			clashes = append(clashes, model.NewClash(model.ClashInvalidCoordinates,
				fmt.Sprintf("bolt %s has NaN or infinite coordinates", b.ID.Short()), b.ID))
		}

		if !cfg.Standards.IsStandardBolt(b.Diameter) {
			clashes = append(clashes, model.NewClash(model.ClashBoltNonStandard,
				fmt.Sprintf("bolt %s diameter %gmm is not a standard size", b.ID.Short(), b.Diameter), b.ID))
		}

		plate := snap.PlateByID(b.Plate)
		if b.Plate.IsZero() || plate == nil {
			clashes = append(clashes, model.NewClash(model.ClashBoltOrphaned,
				fmt.Sprintf("bolt %s has no resolvable parent plate", b.ID.Short()), b.ID))
			continue
		}

		if geom.IsFinite(b.Position) && !connect.Contained(b, *plate, cfg) {
			clashes = append(clashes, model.NewClash(model.ClashBoltOutsideBounds,
				fmt.Sprintf("bolt %s lies outside plate %s inset bounds", b.ID.Short(), plate.ID.Short()), b.ID, plate.ID))
		}

		if !checkedPlates[plate.ID] {
			checkedPlates[plate.ID] = true
			clashes = append(clashes, plateGroupClashes(snap, *plate, cfg)...)
		}
	}
	return clashes
}

// plateGroupClashes checks a plate's bolt group as a whole: pairwise
// spacing and whether the plate can hold the group at all.
func plateGroupClashes(snap model.Snapshot, plate model.Plate, cfg config.Config) []model.Clash {
	var clashes []model.Clash
	group := snap.BoltsOfPlate(plate.ID)

	for i, a := range group {
		for _, b := range group[i+1:] {
			need := cfg.Standards.MinSpacing(maxOf(a.Diameter, b.Diameter))
			d := geom.Distance(a.Position, b.Position)
			if d < need {
				clashes = append(clashes, model.NewClash(model.ClashBoltSpacing,
					fmt.Sprintf("bolts %s and %s are %.1fmm apart, minimum %.1fmm", a.ID.Short(), b.ID.Short(), d, need),
					a.ID, b.ID))
			}
		}
	}

	dia := 0.0
	for _, b := range group {
		if b.Diameter > dia {
			dia = b.Diameter
		}
	}
	if _, err := connect.Pattern(plate.Width, plate.Length, dia, len(group), cfg.Standards); err != nil {
		clashes = append(clashes, model.NewClash(model.ClashBoltSpacing,
			fmt.Sprintf("plate %s cannot hold %d bolts of diameter %gmm within edge and spacing limits",
				plate.ID.Short(), len(group), dia), plate.ID))
	}
	return clashes
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
