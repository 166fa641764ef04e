// Package connect associates plates and bolts with resolved joints.
// Member bounding regions are indexed in an R-tree; a joint's incident
// members are the members whose region contains the joint within
// tolerance, and plates are repositioned onto the joint their parent
// member meets. Bolts are then laid out inside their plate with the
// deterministic pattern generator.
package connect

import (
	"fmt"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/geom"
	"github.com/mpache/ferrite/pkg/model"
)

// memberEntry is a member's bounding region in the spatial index.
type memberEntry struct {
	id     model.EntityID
	bounds rtreego.Rect
}

func (e *memberEntry) Bounds() rtreego.Rect {
	return e.bounds
}

// Mapper resolves plate and bolt positions against a fixed member and
// joint set. It is read-only over members and joints; Assign and
// Position return new slices.
type Mapper struct {
	cfg     config.Config
	members map[model.EntityID]model.Member
	joints  []model.Joint
	tree    *rtreego.Rtree

	// incident[mid] lists indices into joints for the joints sitting on
	// member mid, built from R-tree overlap queries.
	incident map[model.EntityID][]int
}

// NewMapper indexes the members and precomputes joint incidence.
func NewMapper(cfg config.Config, members []model.Member, joints []model.Joint) *Mapper {
	m := &Mapper{
		cfg:      cfg,
		members:  make(map[model.EntityID]model.Member, len(members)),
		joints:   joints,
		tree:     rtreego.NewTree(3, 4, 8),
		incident: make(map[model.EntityID][]int),
	}

	for _, mem := range members {
		m.members[mem.ID] = mem
		if geom.IsDegenerate(mem.Start, mem.End, cfg.Tolerance) {
			continue // excluded from spatial queries, reported by the rule engine
		}
		lo, hi := geom.SegmentBounds(mem.Start, mem.End, cfg.Tolerance)
		rect, err := rtreego.NewRect(
			rtreego.Point{lo.X, lo.Y, lo.Z},
			[]float64{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z},
		)
		if err != nil {
			continue
		}
		m.tree.Insert(&memberEntry{id: mem.ID, bounds: rect})
	}

	for i, j := range joints {
		if !geom.IsFinite(j.Position) {
			continue
		}
		probe := rtreego.Point{j.Position.X, j.Position.Y, j.Position.Z}
		for _, hit := range m.tree.SearchIntersect(probe.ToRect(cfg.Tolerance)) {
			entry := hit.(*memberEntry)
			m.incident[entry.id] = append(m.incident[entry.id], i)
		}
	}
	for _, idxs := range m.incident {
		sort.Ints(idxs)
	}

	return m
}

// AssignPlates moves every plate without a valid parent-position match
// onto its owning joint. Base plates sit at the joint; intermediate
// plates stand off along the member axis. Repositioning is recorded in
// the returned correction log; dangling parents produce explicit error
// entries, never a guessed position.
func (m *Mapper) AssignPlates(plates []model.Plate) ([]model.Plate, []model.Correction) {
	out := append([]model.Plate(nil), plates...)
	var log []model.Correction

	for i := range out {
		plate := &out[i]

		expected, base, err := m.expectedPlatePosition(*plate)
		if err != nil {
			log = append(log, model.Correction{
				Entity: plate.ID,
				Field:  "position",
				Err:    err.Error(),
			})
			continue
		}

		plate.Base = base
		if geom.IsFinite(plate.Position) && geom.WithinTolerance(plate.Position, expected, m.cfg.Tolerance) {
			continue
		}
		log = append(log, model.Correction{
			Entity: plate.ID,
			Field:  "position",
			Old:    formatVec(plate.Position),
			New:    formatVec(expected),
		})
		plate.Position = expected
	}
	return out, log
}

// expectedPlatePosition computes where a plate belongs given its parent.
func (m *Mapper) expectedPlatePosition(p model.Plate) (pos v3.Vec, base bool, err error) {
	if !p.Joint.IsZero() {
		j := m.jointByID(p.Joint)
		if j == nil {
			return v3.Vec{}, false, fmt.Errorf("connect: plate %s references missing joint %s", p.ID.Short(), p.Joint.Short())
		}
		return j.Position, m.isBaseJoint(*j), nil
	}

	mem, ok := m.members[p.Member]
	if !ok {
		return v3.Vec{}, false, fmt.Errorf("connect: plate %s references missing member %s", p.ID.Short(), p.Member.Short())
	}

	j := m.owningJoint(mem, p)
	if j == nil {
		// No resolved joint sits on this member; anchor at the base
		// endpoint so the plate at least stays on the member.
		return baseEnd(mem), mem.Role == model.RoleColumn, nil
	}

	if mem.Role == model.RoleColumn && m.isLowestJoint(mem, *j) {
		return j.Position, true, nil
	}

	// Intermediate connection: stand off from the joint along the
	// member axis toward the member interior.
	dir, ok := geom.Direction(j.Position, geom.Midpoint(mem.Start, mem.End))
	if !ok {
		return j.Position, false, nil
	}
	return j.Position.Add(dir.MulScalar(m.cfg.PlateStandOff)), false, nil
}

// owningJoint picks the joint a member-parented plate belongs to: the
// lowest joint for a column, otherwise the joint nearest the plate's
// declared position (nearest the member midpoint when that position is
// unusable). Ties break on ascending joint id.
func (m *Mapper) owningJoint(mem model.Member, p model.Plate) *model.Joint {
	idxs := m.incident[mem.ID]
	if len(idxs) == 0 {
		return nil
	}

	if mem.Role == model.RoleColumn {
		best := idxs[0]
		for _, i := range idxs[1:] {
			if lessJoint(m.joints[i], m.joints[best]) {
				best = i
			}
		}
		return &m.joints[best]
	}

	ref := p.Position
	if !geom.IsFinite(ref) || geom.IsOrigin(ref, m.cfg.Tolerance) {
		ref = geom.Midpoint(mem.Start, mem.End)
	}
	best := idxs[0]
	bestDist := geom.Distance(ref, m.joints[best].Position)
	for _, i := range idxs[1:] {
		d := geom.Distance(ref, m.joints[i].Position)
		if d < bestDist || (d == bestDist && m.joints[i].ID < m.joints[best].ID) {
			best = i
			bestDist = d
		}
	}
	return &m.joints[best]
}

// lessJoint orders joints by elevation, then id.
func lessJoint(a, b model.Joint) bool {
	if a.Position.Z != b.Position.Z {
		return a.Position.Z < b.Position.Z
	}
	return a.ID < b.ID
}

// isLowestJoint reports whether j is the lowest joint on the member.
func (m *Mapper) isLowestJoint(mem model.Member, j model.Joint) bool {
	for _, i := range m.incident[mem.ID] {
		if m.joints[i].ID != j.ID && lessJoint(m.joints[i], j) {
			return false
		}
	}
	return true
}

// isBaseJoint reports whether the joint is the lowest endpoint of an
// incident column member, i.e. a support.
func (m *Mapper) isBaseJoint(j model.Joint) bool {
	for _, mid := range j.Members {
		mem, ok := m.members[mid]
		if !ok || mem.Role != model.RoleColumn {
			continue
		}
		if geom.WithinTolerance(j.Position, baseEnd(mem), m.cfg.Tolerance) {
			return true
		}
	}
	return false
}

// baseEnd returns the member endpoint with the lower elevation.
func baseEnd(mem model.Member) v3.Vec {
	if mem.End.Z < mem.Start.Z {
		return mem.End
	}
	return mem.Start
}

func (m *Mapper) jointByID(id model.EntityID) *model.Joint {
	for i := range m.joints {
		if m.joints[i].ID == id {
			return &m.joints[i]
		}
	}
	return nil
}

// PositionBolts lays out bolts inside their (possibly just-moved)
// parent plates. Bolt groups already satisfying containment and spacing
// are left alone, which keeps the pass idempotent. Dangling parent
// references fail loudly in the log; plates too small for their bolt
// count are left for the rule engine to report.
func (m *Mapper) PositionBolts(bolts []model.Bolt, plates []model.Plate) ([]model.Bolt, []model.Correction) {
	out := append([]model.Bolt(nil), bolts...)
	var log []model.Correction

	plateByID := make(map[model.EntityID]model.Plate, len(plates))
	for _, p := range plates {
		plateByID[p.ID] = p
	}

	groups := make(map[model.EntityID][]int)
	for i, b := range out {
		if b.Plate.IsZero() {
			log = append(log, model.Correction{
				Entity: b.ID,
				Field:  "plate",
				Err:    "bolt has no parent plate reference",
			})
			continue
		}
		if _, ok := plateByID[b.Plate]; !ok {
			log = append(log, model.Correction{
				Entity: b.ID,
				Field:  "plate",
				Err:    fmt.Sprintf("bolt references missing plate %s", b.Plate.Short()),
			})
			continue
		}
		groups[b.Plate] = append(groups[b.Plate], i)
	}

	plateIDs := make([]model.EntityID, 0, len(groups))
	for pid := range groups {
		plateIDs = append(plateIDs, pid)
	}
	sort.Slice(plateIDs, func(a, b int) bool { return plateIDs[a] < plateIDs[b] })

	for _, pid := range plateIDs {
		idxs := groups[pid]
		sort.Slice(idxs, func(a, b int) bool { return out[idxs[a]].ID < out[idxs[b]].ID })
		plate := plateByID[pid]

		if groupPlaced(out, idxs, plate, m.cfg) {
			continue
		}

		dia := maxDiameter(out, idxs)
		slots, err := Pattern(plate.Width, plate.Length, dia, len(idxs), m.cfg.Standards)
		if err != nil {
			continue // reported as a clash by the rule engine
		}
		for n, i := range idxs {
			want := plate.Position.Add(slots[n])
			if geom.WithinTolerance(out[i].Position, want, m.cfg.Tolerance) {
				continue
			}
			log = append(log, model.Correction{
				Entity: out[i].ID,
				Field:  "position",
				Old:    formatVec(out[i].Position),
				New:    formatVec(want),
			})
			out[i].Position = want
		}
	}
	return out, log
}

// groupPlaced reports whether every bolt of a plate group is already
// inside the inset rectangle with legal pairwise spacing.
func groupPlaced(bolts []model.Bolt, idxs []int, plate model.Plate, cfg config.Config) bool {
	for n, i := range idxs {
		b := bolts[i]
		if !Contained(b, plate, cfg) {
			return false
		}
		for _, k := range idxs[n+1:] {
			minSpacing := cfg.Standards.MinSpacing(maxPair(b.Diameter, bolts[k].Diameter))
			if geom.Distance(b.Position, bolts[k].Position) < minSpacing-patternEpsilon {
				return false
			}
		}
	}
	return true
}

func maxDiameter(bolts []model.Bolt, idxs []int) float64 {
	var dia float64
	for _, i := range idxs {
		if bolts[i].Diameter > dia {
			dia = bolts[i].Diameter
		}
	}
	return dia
}

func maxPair(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func formatVec(v v3.Vec) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
