// Package resolver reconstructs joint positions from member geometry.
// Pre-existing joints that validate against their incident members are
// authoritative and returned untouched; otherwise joints are recomputed
// by clustering member endpoints. Resolution is deterministic and
// permutation-invariant: joint ids derive from the member endpoints a
// cluster contains, not from input ordering.
package resolver

import (
	"sort"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/geom"
	"github.com/mpache/ferrite/pkg/model"
)

// Result is the output of one resolution pass.
type Result struct {
	// Joints is the validated or recomputed joint set, ascending by id.
	Joints []model.Joint

	// Recomputed is true when the validation pass failed, joints were
	// absent, or the origin heuristic fired, and the joint set was
	// rebuilt from member endpoints.
	Recomputed bool

	// Orphans lists joints retained with zero incident members.
	Orphans []model.EntityID

	// Excluded lists members left out of clustering because their
	// geometry is degenerate or has invalid coordinates. The rule
	// engine reports these; exclusion here only keeps them from
	// poisoning cluster formation.
	Excluded []model.EntityID
}

// endpoint is one member end participating in clustering.
type endpoint struct {
	label  string // member id + end tag, the deterministic sort key
	member model.EntityID
	pos    v3.Vec
}

// Resolve derives a consistent joint set for the given members.
func Resolve(members []model.Member, existing []model.Joint, cfg config.Config) Result {
	var res Result

	usable := make([]model.Member, 0, len(members))
	for _, m := range members {
		if geom.IsDegenerate(m.Start, m.End, cfg.Tolerance) {
			res.Excluded = append(res.Excluded, m.ID)
			continue
		}
		usable = append(usable, m)
	}
	sort.Slice(res.Excluded, func(a, b int) bool { return res.Excluded[a] < res.Excluded[b] })

	if len(existing) > 0 && validateExisting(existing, usable, cfg) {
		res.Joints = make([]model.Joint, len(existing))
		for i, j := range existing {
			j.Members = append([]model.EntityID(nil), j.Members...)
			j.Orphan = len(j.Members) == 0
			if j.Orphan {
				res.Orphans = append(res.Orphans, j.ID)
			}
			(&j).SortMembers()
			res.Joints[i] = j
		}
		sortJoints(res.Joints)
		return res
	}

	res.Recomputed = true
	res.Joints = cluster(usable, cfg.Tolerance)

	// Declared joints that end up with zero incident members are
	// retained and flagged; deleting them is outside this engine's
	// authority.
	for _, j := range existing {
		if len(j.Members) > 0 || nearAnyEndpoint(j.Position, usable, cfg.Tolerance) {
			continue
		}
		res.Joints = append(res.Joints, model.Joint{
			ID:       j.ID,
			Position: j.Position,
			Orphan:   true,
		})
		res.Orphans = append(res.Orphans, j.ID)
	}

	sortJoints(res.Joints)
	sort.Slice(res.Orphans, func(a, b int) bool { return res.Orphans[a] < res.Orphans[b] })
	return res
}

// validateExisting reports whether the declared joint set is
// authoritative: every joint's position coincides with an endpoint of
// each incident member it claims, and at least one joint sits away from
// the coordinate origin. An all-origin joint set is a heuristic signal
// of "never computed" and triggers recomputation unless the heuristic
// is disabled in the configuration.
func validateExisting(existing []model.Joint, members []model.Member, cfg config.Config) bool {
	byID := make(map[model.EntityID]model.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	anyNonOrigin := false
	for _, j := range existing {
		if !geom.IsFinite(j.Position) {
			return false
		}
		if !geom.IsOrigin(j.Position, cfg.Tolerance) {
			anyNonOrigin = true
		}
		for _, mid := range j.Members {
			m, ok := byID[mid]
			if !ok {
				return false
			}
			if !geom.WithinTolerance(j.Position, m.Start, cfg.Tolerance) &&
				!geom.WithinTolerance(j.Position, m.End, cfg.Tolerance) {
				return false
			}
		}
	}

	if cfg.SuspectOriginJoints && !anyNonOrigin && len(members) > 0 {
		return false
	}
	return true
}

// cluster groups member endpoints with union-find: two endpoints merge
// when they are within tolerance of each other. Each cluster becomes
// one joint at the centroid of its endpoints; centroid, not first-seen
// endpoint, avoids bias toward input ordering.
func cluster(members []model.Member, tol float64) []model.Joint {
	pts := make([]endpoint, 0, len(members)*2)
	for _, m := range members {
		pts = append(pts,
			endpoint{label: string(m.ID) + "#start", member: m.ID, pos: m.Start},
			endpoint{label: string(m.ID) + "#end", member: m.ID, pos: m.End},
		)
	}
	// Deterministic base order regardless of how members arrived.
	sort.Slice(pts, func(a, b int) bool { return pts[a].label < pts[b].label })

	uf := newUnionFind(len(pts))
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if geom.WithinTolerance(pts[i].pos, pts[j].pos, tol) {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]endpoint)
	for i, p := range pts {
		root := uf.find(i)
		groups[root] = append(groups[root], p)
	}

	joints := make([]model.Joint, 0, len(groups))
	for _, group := range groups {
		sort.Slice(group, func(a, b int) bool { return group[a].label < group[b].label })

		labels := make([]string, 0, len(group))
		positions := make([]v3.Vec, 0, len(group))
		memberSet := make(map[model.EntityID]struct{})
		for _, p := range group {
			labels = append(labels, p.label)
			positions = append(positions, p.pos)
			memberSet[p.member] = struct{}{}
		}

		j := model.Joint{
			ID:       model.NewEntityID("joint/" + strings.Join(labels, ",")),
			Position: geom.Centroid(positions),
		}
		for mid := range memberSet {
			j.Members = append(j.Members, mid)
		}
		(&j).SortMembers()
		joints = append(joints, j)
	}
	return joints
}

// nearAnyEndpoint reports whether pos coincides with any member endpoint.
func nearAnyEndpoint(pos v3.Vec, members []model.Member, tol float64) bool {
	for _, m := range members {
		if geom.WithinTolerance(pos, m.Start, tol) || geom.WithinTolerance(pos, m.End, tol) {
			return true
		}
	}
	return false
}

func sortJoints(joints []model.Joint) {
	sort.Slice(joints, func(a, b int) bool { return joints[a].ID < joints[b].ID })
}
