// Package standards holds the structural-connection standards tables:
// standard bolt diameters, role-specific plate minima, and the edge
// distance and spacing formulas. The tables are plain data threaded
// through the engine via its configuration; nothing here is mutable
// process-wide state.
package standards

import "math"

// sizeEpsilon absorbs float noise when comparing against table entries.
const sizeEpsilon = 1e-6

// Table bundles the standards constraints the rule engine and the
// corrector share. All dimensions in mm.
type Table struct {
	// BoltDiameters is the ascending set of standard shank diameters.
	BoltDiameters []float64 `yaml:"bolt_diameters"`

	// MinEdgeDistance is the absolute floor for bolt edge distance.
	// The effective edge distance is max(1.5 x diameter, this value).
	MinEdgeDistance float64 `yaml:"min_edge_distance"`

	// Base plate minima (plates at a column support).
	BasePlateWidth     float64 `yaml:"base_plate_width"`
	BasePlateLength    float64 `yaml:"base_plate_length"`
	BasePlateThickness float64 `yaml:"base_plate_thickness"`

	// Minima for every other connection plate.
	PlateWidth     float64 `yaml:"plate_width"`
	PlateLength    float64 `yaml:"plate_length"`
	PlateThickness float64 `yaml:"plate_thickness"`
}

// Default returns the metric standards table.
func Default() Table {
	return Table{
		BoltDiameters:      []float64{12, 16, 20, 24, 27, 30, 36},
		MinEdgeDistance:    30,
		BasePlateWidth:     300,
		BasePlateLength:    300,
		BasePlateThickness: 12.7,
		PlateWidth:         100,
		PlateLength:        100,
		PlateThickness:     6.35,
	}
}

// IsStandardBolt reports whether d matches an entry in the diameter set.
func (t Table) IsStandardBolt(d float64) bool {
	for _, s := range t.BoltDiameters {
		if math.Abs(d-s) < sizeEpsilon {
			return true
		}
	}
	return false
}

// NearestBoltDiameter rounds d up to the nearest standard diameter.
// Diameters beyond the largest entry clamp to it.
func (t Table) NearestBoltDiameter(d float64) float64 {
	if len(t.BoltDiameters) == 0 {
		return d
	}
	for _, s := range t.BoltDiameters {
		if d <= s+sizeEpsilon {
			return s
		}
	}
	return t.BoltDiameters[len(t.BoltDiameters)-1]
}

// EdgeDistance returns the required bolt-to-plate-edge distance for a
// bolt of diameter d.
func (t Table) EdgeDistance(d float64) float64 {
	return math.Max(1.5*d, t.MinEdgeDistance)
}

// MinSpacing returns the required center-to-center bolt spacing for a
// bolt of diameter d.
func (t Table) MinSpacing(d float64) float64 {
	return 3 * d
}

// MinPlate returns the minimum width, length, and thickness for a plate
// in the given role.
func (t Table) MinPlate(base bool) (width, length, thickness float64) {
	if base {
		return t.BasePlateWidth, t.BasePlateLength, t.BasePlateThickness
	}
	return t.PlateWidth, t.PlateLength, t.PlateThickness
}

// MinFilletWeld returns the minimum fillet leg size for the thinner
// joined part thickness, per the prequalified minimum-size table.
func (t Table) MinFilletWeld(thickness float64) float64 {
	switch {
	case thickness <= 6.35:
		return 3
	case thickness <= 12.7:
		return 5
	case thickness <= 19:
		return 6
	default:
		return 8
	}
}
