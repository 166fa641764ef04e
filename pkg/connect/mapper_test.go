package connect

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/geom"
	"github.com/mpache/ferrite/pkg/model"
)

// testFrame is a column with a beam framing into its top.
func testFrame() ([]model.Member, []model.Joint) {
	members := []model.Member{
		{ID: "col-1", Start: v3.Vec{}, End: v3.Vec{Z: 3000}, Role: model.RoleColumn},
		{ID: "beam-1", Start: v3.Vec{Z: 3000}, End: v3.Vec{X: 4000, Z: 3000}, Role: model.RoleBeam},
	}
	joints := []model.Joint{
		{ID: "j-base", Position: v3.Vec{}, Members: []model.EntityID{"col-1"}},
		{ID: "j-top", Position: v3.Vec{Z: 3000}, Members: []model.EntityID{"beam-1", "col-1"}},
	}
	return members, joints
}

func TestAssignPlatesBasePlate(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	plates, log := m.AssignPlates([]model.Plate{
		{ID: "p-base", Member: "col-1", Position: v3.Vec{X: 500, Y: 500}, Width: 300, Length: 300, Thickness: 12.7},
	})
	if len(log) != 1 || log[0].Field != "position" || log[0].Err != "" {
		t.Fatalf("log = %v, want one position correction", log)
	}
	p := plates[0]
	if !p.Base {
		t.Error("column plate at the lowest joint should be a base plate")
	}
	if !geom.WithinTolerance(p.Position, v3.Vec{}, cfg.Tolerance) {
		t.Errorf("position = %v, want the support joint", p.Position)
	}
}

func TestAssignPlatesJointParent(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	plates, _ := m.AssignPlates([]model.Plate{
		{ID: "p-top", Joint: "j-top", Position: v3.Vec{X: 1, Y: 1, Z: 2900}, Width: 100, Length: 100, Thickness: 6.35},
	})
	p := plates[0]
	if p.Base {
		t.Error("a beam-to-column connection plate is not a base plate")
	}
	if !geom.WithinTolerance(p.Position, v3.Vec{Z: 3000}, cfg.Tolerance) {
		t.Errorf("position = %v, want the joint position", p.Position)
	}
}

func TestAssignPlatesStandOff(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	// Beam-parented plate with an unusable declared position: it lands
	// at the owning joint, stood off along the beam axis.
	plates, _ := m.AssignPlates([]model.Plate{
		{ID: "p-conn", Member: "beam-1", Width: 100, Length: 100, Thickness: 6.35},
	})
	want := v3.Vec{X: cfg.PlateStandOff, Z: 3000}
	if !geom.WithinTolerance(plates[0].Position, want, 1e-6) {
		t.Errorf("position = %v, want %v", plates[0].Position, want)
	}
}

func TestAssignPlatesIdempotent(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	in := []model.Plate{
		{ID: "p-base", Member: "col-1", Position: v3.Vec{X: 500}, Width: 300, Length: 300, Thickness: 12.7},
	}
	once, _ := m.AssignPlates(in)
	twice, log := m.AssignPlates(once)
	if len(log) != 0 {
		t.Errorf("second pass produced corrections: %v", log)
	}
	if twice[0].Position != once[0].Position {
		t.Errorf("position drifted between passes: %v vs %v", once[0].Position, twice[0].Position)
	}
}

func TestAssignPlatesDanglingParent(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	orig := v3.Vec{X: 123, Y: 456}
	plates, log := m.AssignPlates([]model.Plate{
		{ID: "p-lost", Member: "no-such-member", Position: orig, Width: 100, Length: 100},
	})
	if len(log) != 1 || log[0].Err == "" {
		t.Fatalf("log = %v, want one error entry", log)
	}
	if plates[0].Position != orig {
		t.Error("dangling parent must not move the plate")
	}
}

func TestPositionBoltsLaysOutGroup(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	plate := model.Plate{ID: "p-base", Position: v3.Vec{}, Width: 300, Length: 300, Thickness: 12.7, Base: true}
	bolts := []model.Bolt{
		{ID: "b1", Plate: "p-base", Diameter: 20},
		{ID: "b2", Plate: "p-base", Diameter: 20},
		{ID: "b3", Plate: "p-base", Diameter: 20},
		{ID: "b4", Plate: "p-base", Diameter: 20},
	}

	out, log := m.PositionBolts(bolts, []model.Plate{plate})
	if len(log) != 4 {
		t.Fatalf("got %d corrections, want 4", len(log))
	}
	minSpacing := cfg.Standards.MinSpacing(20)
	for i, b := range out {
		if !Contained(b, plate, cfg) {
			t.Errorf("bolt %s placed outside plate bounds at %v", b.ID, b.Position)
		}
		for _, other := range out[i+1:] {
			if geom.Distance(b.Position, other.Position) < minSpacing-patternEpsilon {
				t.Errorf("bolts %s and %s closer than %g", b.ID, other.ID, minSpacing)
			}
		}
	}
}

func TestPositionBoltsSkipsPlacedGroup(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	plate := model.Plate{ID: "p-base", Position: v3.Vec{}, Width: 300, Length: 300, Base: true}
	bolts := []model.Bolt{
		{ID: "b1", Plate: "p-base", Position: v3.Vec{X: -50, Y: -50}, Diameter: 20},
		{ID: "b2", Plate: "p-base", Position: v3.Vec{X: 50, Y: 50}, Diameter: 20},
	}

	out, log := m.PositionBolts(bolts, []model.Plate{plate})
	if len(log) != 0 {
		t.Errorf("legal group was disturbed: %v", log)
	}
	for i, b := range out {
		if b.Position != bolts[i].Position {
			t.Errorf("bolt %s moved from %v to %v", b.ID, bolts[i].Position, b.Position)
		}
	}
}

func TestPositionBoltsDanglingPlate(t *testing.T) {
	cfg := config.Default()
	members, joints := testFrame()
	m := NewMapper(cfg, members, joints)

	_, log := m.PositionBolts([]model.Bolt{
		{ID: "b1", Plate: "no-such-plate", Diameter: 16},
		{ID: "b2", Diameter: 16},
	}, nil)
	if len(log) != 2 {
		t.Fatalf("got %d entries, want 2", len(log))
	}
	for _, c := range log {
		if c.Err == "" {
			t.Errorf("entry for %s lacks an error", c.Entity)
		}
	}
}
