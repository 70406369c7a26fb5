package pathfind

import "github.com/navzen/navigation/internal/navmap"

// SegmentStride is the number of steps reported per full segment.
const SegmentStride = 10

// Segment is one compressed run of a route.
type Segment struct {
	Start navmap.Point `json:"start"`
	End   navmap.Point `json:"end"`
	// Surface is the display label of the terrain at End.
	Surface string `json:"surface"`
	// Cost is the movement cost accumulated over the run.
	Cost float64 `json:"cost"`
	// LineNumber is the source line of End, 0 when unknown.
	LineNumber int `json:"line_number"`
	// Terrain is the terrain at End.
	Terrain navmap.Terrain `json:"-"`
}

// TotalCost sums the cost of every segment.
func TotalCost(segments []Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += s.Cost
	}
	return total
}

type predecessorFunc func(navmap.Point) (navmap.Point, bool)

// reconstruct walks predecessors from goal back to start, cutting a segment
// every SegmentStride steps. The trailing run back to start is always emitted,
// even when it is shorter than the stride or empty.
//
// Postcondition: the result is ordered start to goal and consecutive segments
// share their boundary cell.
func reconstruct(grid *navmap.Grid, prev predecessorFunc, start, goal navmap.Point) []Segment {
	var out []Segment
	anchor := goal
	current := goal
	cost := 0.0
	steps := 0

	emit := func(from navmap.Point) {
		t := grid.TerrainAt(anchor.X, anchor.Y)
		out = append(out, Segment{
			Start:      from,
			End:        anchor,
			Surface:    t.String(),
			Cost:       cost,
			LineNumber: grid.LineNumber(anchor.X, anchor.Y),
			Terrain:    t,
		})
	}

	for current != start {
		p, ok := prev(current)
		if !ok {
			break
		}
		cost += StepCost(p, current, grid.TerrainAt(current.X, current.Y))
		steps++
		current = p

		if steps == SegmentStride {
			emit(current)
			anchor = current
			cost = 0
			steps = 0
		}
	}
	emit(start)

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
