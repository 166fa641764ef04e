package standards

import "testing"

func TestNearestBoltDiameter(t *testing.T) {
	std := Default()
	tests := []struct {
		in, want float64
	}{
		{12, 12},
		{14, 16},
		{18, 20},
		{20, 20},
		{25, 27},
		{33, 36},
		{40, 36}, // beyond the table clamps to the largest size
	}
	for _, tt := range tests {
		if got := std.NearestBoltDiameter(tt.in); got != tt.want {
			t.Errorf("NearestBoltDiameter(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestIsStandardBolt(t *testing.T) {
	std := Default()
	if !std.IsStandardBolt(20) {
		t.Error("M20 is standard")
	}
	if std.IsStandardBolt(18) {
		t.Error("18mm is not standard")
	}
	if !std.IsStandardBolt(20 + 1e-9) {
		t.Error("float noise should not defeat the table lookup")
	}
}

func TestEdgeDistanceAndSpacing(t *testing.T) {
	std := Default()
	if got := std.EdgeDistance(20); got != 30 {
		t.Errorf("EdgeDistance(20) = %g, want 30", got)
	}
	if got := std.EdgeDistance(24); got != 36 {
		t.Errorf("EdgeDistance(24) = %g, want 1.5d = 36", got)
	}
	if got := std.EdgeDistance(12); got != 30 {
		t.Errorf("EdgeDistance(12) = %g, want floor 30", got)
	}
	if got := std.MinSpacing(20); got != 60 {
		t.Errorf("MinSpacing(20) = %g, want 60", got)
	}
}

func TestMinPlate(t *testing.T) {
	std := Default()
	w, l, th := std.MinPlate(true)
	if w != 300 || l != 300 || th != 12.7 {
		t.Errorf("base minima = %g x %g x %g", w, l, th)
	}
	w, l, th = std.MinPlate(false)
	if w != 100 || l != 100 || th != 6.35 {
		t.Errorf("plate minima = %g x %g x %g", w, l, th)
	}
}

func TestMinFilletWeld(t *testing.T) {
	std := Default()
	tests := []struct {
		thickness, want float64
	}{
		{5, 3},
		{6.35, 3},
		{10, 5},
		{12.7, 5},
		{16, 6},
		{25, 8},
	}
	for _, tt := range tests {
		if got := std.MinFilletWeld(tt.thickness); got != tt.want {
			t.Errorf("MinFilletWeld(%g) = %g, want %g", tt.thickness, got, tt.want)
		}
	}
}
