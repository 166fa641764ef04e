package connect

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/geom"
	"github.com/mpache/ferrite/pkg/model"
	"github.com/mpache/ferrite/pkg/standards"
)

// patternEpsilon absorbs float noise in the grid feasibility checks.
const patternEpsilon = 1e-6

// Pattern computes local bolt slot offsets (relative to the plate
// center, z = 0) for count bolts of the given diameter inside a
// width x length plate. Slots keep the required edge distance from
// every plate edge and the minimum center-to-center spacing.
//
// Selection is deterministic: the smallest grid with enough cells wins,
// ties broken by fewer rows, and slots are emitted in ascending (x, y)
// order. An error means the plate cannot hold the bolts; the caller
// reports that as a clash instead of silently violating the constraints.
func Pattern(width, length, diameter float64, count int, std standards.Table) ([]v3.Vec, error) {
	if count <= 0 {
		return nil, nil
	}

	edge := std.EdgeDistance(diameter)
	spacing := std.MinSpacing(diameter)
	usableW := width - 2*edge
	usableL := length - 2*edge
	if usableW < -patternEpsilon || usableL < -patternEpsilon {
		return nil, fmt.Errorf("connect: plate %gx%g leaves no room inside %g edge distance", width, length, edge)
	}

	bestRows, bestCols := 0, 0
	for rows := 1; rows <= count; rows++ {
		cols := (count + rows - 1) / rows
		if float64(cols-1)*spacing > usableW+patternEpsilon {
			continue
		}
		if float64(rows-1)*spacing > usableL+patternEpsilon {
			continue
		}
		if bestRows == 0 || rows*cols < bestRows*bestCols {
			bestRows, bestCols = rows, cols
		}
	}
	if bestRows == 0 {
		return nil, fmt.Errorf("connect: plate %gx%g cannot hold %d bolts of diameter %g at %g spacing",
			width, length, count, diameter, spacing)
	}

	slots := make([]v3.Vec, 0, bestRows*bestCols)
	for c := 0; c < bestCols; c++ {
		x := (float64(c) - float64(bestCols-1)/2) * spacing
		for r := 0; r < bestRows; r++ {
			y := (float64(r) - float64(bestRows-1)/2) * spacing
			slots = append(slots, v3.Vec{X: x, Y: y})
		}
	}
	sort.Slice(slots, func(a, b int) bool {
		if slots[a].X != slots[b].X {
			return slots[a].X < slots[b].X
		}
		return slots[a].Y < slots[b].Y
	})
	return slots[:count], nil
}

// slotFits reports whether a local offset keeps the edge distance
// inside the plate rectangle.
func slotFits(offset v3.Vec, width, length, edge float64) bool {
	return math.Abs(offset.X) <= width/2-edge+patternEpsilon &&
		math.Abs(offset.Y) <= length/2-edge+patternEpsilon
}

// Contained reports whether the bolt sits inside its plate's rectangle
// inset by the required edge distance, at the plate's elevation.
func Contained(b model.Bolt, plate model.Plate, cfg config.Config) bool {
	if !geom.IsFinite(b.Position) {
		return false
	}
	edge := cfg.Standards.EdgeDistance(b.Diameter)
	if !slotFits(b.Position.Sub(plate.Position), plate.Width, plate.Length, edge) {
		return false
	}
	return math.Abs(b.Position.Z-plate.Position.Z) < cfg.Tolerance
}
