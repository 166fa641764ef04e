package resolver

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/geom"
	"github.com/mpache/ferrite/pkg/model"
)

// portalFrame returns four members forming a 6000x3000 rectangular
// frame in the XZ plane.
func portalFrame() []model.Member {
	return []model.Member{
		{ID: "col-a", Start: v3.Vec{}, End: v3.Vec{Z: 3000}, Role: model.RoleColumn},
		{ID: "col-b", Start: v3.Vec{X: 6000}, End: v3.Vec{X: 6000, Z: 3000}, Role: model.RoleColumn},
		{ID: "beam-top", Start: v3.Vec{Z: 3000}, End: v3.Vec{X: 6000, Z: 3000}, Role: model.RoleBeam},
		{ID: "beam-bottom", Start: v3.Vec{}, End: v3.Vec{X: 6000}, Role: model.RoleBeam},
	}
}

// frameCorners lists the four expected joint positions.
func frameCorners() []v3.Vec {
	return []v3.Vec{
		{},
		{X: 6000},
		{Z: 3000},
		{X: 6000, Z: 3000},
	}
}

func findJointAt(joints []model.Joint, pos v3.Vec, tol float64) *model.Joint {
	for i := range joints {
		if geom.WithinTolerance(joints[i].Position, pos, tol) {
			return &joints[i]
		}
	}
	return nil
}

func TestResolveRecomputesOriginJoints(t *testing.T) {
	cfg := config.Default()
	existing := []model.Joint{
		{ID: "j1", Members: []model.EntityID{"col-a", "beam-bottom"}},
		{ID: "j2", Members: []model.EntityID{"col-b", "beam-bottom"}},
		{ID: "j3", Members: []model.EntityID{"col-a", "beam-top"}},
		{ID: "j4", Members: []model.EntityID{"col-b", "beam-top"}},
	}

	res := Resolve(portalFrame(), existing, cfg)
	if !res.Recomputed {
		t.Fatal("all-origin joints should trigger recomputation")
	}
	if len(res.Joints) != 4 {
		t.Fatalf("got %d joints, want 4", len(res.Joints))
	}
	for _, corner := range frameCorners() {
		j := findJointAt(res.Joints, corner, cfg.Tolerance)
		if j == nil {
			t.Errorf("no joint resolved at corner %v", corner)
			continue
		}
		if len(j.Members) != 2 {
			t.Errorf("joint at %v has %d members, want 2", corner, len(j.Members))
		}
	}
}

func TestResolveNoExistingJoints(t *testing.T) {
	cfg := config.Default()
	res := Resolve(portalFrame(), nil, cfg)
	if !res.Recomputed {
		t.Fatal("absent joints should trigger recomputation")
	}
	if len(res.Joints) != 4 {
		t.Fatalf("got %d joints, want 4", len(res.Joints))
	}
}

func TestResolvePermutationInvariance(t *testing.T) {
	cfg := config.Default()
	members := portalFrame()
	reversed := make([]model.Member, len(members))
	for i, m := range members {
		reversed[len(members)-1-i] = m
	}

	a := Resolve(members, nil, cfg)
	b := Resolve(reversed, nil, cfg)

	if len(a.Joints) != len(b.Joints) {
		t.Fatalf("joint counts differ: %d vs %d", len(a.Joints), len(b.Joints))
	}
	for i := range a.Joints {
		if a.Joints[i].ID != b.Joints[i].ID {
			t.Errorf("joint %d id differs: %s vs %s", i, a.Joints[i].ID.Short(), b.Joints[i].ID.Short())
		}
		if a.Joints[i].Position != b.Joints[i].Position {
			t.Errorf("joint %d position differs: %v vs %v", i, a.Joints[i].Position, b.Joints[i].Position)
		}
	}
}

func TestResolveKeepsValidJoints(t *testing.T) {
	cfg := config.Default()
	corners := frameCorners()
	existing := []model.Joint{
		{ID: "j1", Position: corners[0], Members: []model.EntityID{"col-a", "beam-bottom"}},
		{ID: "j2", Position: corners[1], Members: []model.EntityID{"col-b", "beam-bottom"}},
		{ID: "j3", Position: corners[2], Members: []model.EntityID{"col-a", "beam-top"}},
		{ID: "j4", Position: corners[3], Members: []model.EntityID{"col-b", "beam-top"}},
	}

	res := Resolve(portalFrame(), existing, cfg)
	if res.Recomputed {
		t.Fatal("validated joints are authoritative and must not be recomputed")
	}
	if len(res.Joints) != 4 {
		t.Fatalf("got %d joints, want 4", len(res.Joints))
	}
	for _, j := range res.Joints {
		switch j.ID {
		case "j1", "j2", "j3", "j4":
		default:
			t.Errorf("unexpected joint id %s", j.ID)
		}
		if j.Orphan {
			t.Errorf("joint %s incorrectly flagged orphan", j.ID)
		}
	}
}

func TestResolveFlagsOrphanJoint(t *testing.T) {
	cfg := config.Default()
	corners := frameCorners()
	existing := []model.Joint{
		{ID: "j1", Position: corners[3], Members: []model.EntityID{"col-b", "beam-top"}},
		{ID: "stray", Position: v3.Vec{X: 99999, Y: 99999, Z: 99999}},
	}

	res := Resolve(portalFrame(), existing, cfg)
	var stray *model.Joint
	for i := range res.Joints {
		if res.Joints[i].ID == "stray" {
			stray = &res.Joints[i]
		}
	}
	if stray == nil {
		t.Fatal("orphan joint was dropped; it must be retained and flagged")
	}
	if !stray.Orphan {
		t.Error("stray joint not flagged as orphan")
	}
	if len(res.Orphans) != 1 || res.Orphans[0] != "stray" {
		t.Errorf("orphans = %v, want [stray]", res.Orphans)
	}
}

func TestResolveExcludesDegenerateMember(t *testing.T) {
	cfg := config.Default()
	members := append(portalFrame(), model.Member{
		ID:    "stub",
		Start: v3.Vec{X: 100, Y: 100, Z: 100},
		End:   v3.Vec{X: 100, Y: 100, Z: 100},
	})

	res := Resolve(members, nil, cfg)
	if len(res.Excluded) != 1 || res.Excluded[0] != "stub" {
		t.Fatalf("excluded = %v, want [stub]", res.Excluded)
	}
	if len(res.Joints) != 4 {
		t.Errorf("degenerate member changed the joint count: got %d", len(res.Joints))
	}
	for _, j := range res.Joints {
		for _, mid := range j.Members {
			if mid == "stub" {
				t.Error("degenerate member leaked into a cluster")
			}
		}
	}
}

func TestResolveDisabledOriginHeuristic(t *testing.T) {
	cfg := config.Default()
	cfg.SuspectOriginJoints = false

	// A single joint legitimately at the origin, where a member ends.
	members := []model.Member{
		{ID: "m1", Start: v3.Vec{}, End: v3.Vec{X: 4000}},
	}
	existing := []model.Joint{
		{ID: "j1", Members: []model.EntityID{"m1"}},
	}

	res := Resolve(members, existing, cfg)
	if res.Recomputed {
		t.Error("origin-centered joints must survive when the heuristic is off")
	}
	if len(res.Joints) != 1 || res.Joints[0].ID != "j1" {
		t.Errorf("joints = %v", res.Joints)
	}
}
