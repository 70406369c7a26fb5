package pathfind

import "github.com/navzen/navigation/internal/navmap"

// Base movement costs on the 8-connected grid.
const (
	OrthogonalCost = 1.0
	DiagonalCost   = 1.4
)

// heuristicScale keeps the estimate below the cheapest step so the search
// stays close to optimal while still pulling toward the goal.
const heuristicScale = 0.75

type move struct {
	dx, dy int
	cost   float64
}

var moves = [8]move{
	{1, 0, OrthogonalCost}, {-1, 0, OrthogonalCost}, {0, 1, OrthogonalCost}, {0, -1, OrthogonalCost},
	{1, 1, DiagonalCost}, {-1, 1, DiagonalCost}, {1, -1, DiagonalCost}, {-1, -1, DiagonalCost},
}

// Multiplier returns the cost factor for entering terrain t. Walls have no
// multiplier because they are never entered.
func Multiplier(t navmap.Terrain) float64 {
	switch t.Kind {
	case navmap.KindCorridor, navmap.KindRoom:
		return 1.0
	case navmap.KindStairs, navmap.KindElevator:
		return 2.0
	default:
		return 1.5
	}
}

// StepCost is the cost of moving from a to the adjacent cell b whose terrain is t.
func StepCost(a, b navmap.Point, t navmap.Terrain) float64 {
	base := OrthogonalCost
	if a.X != b.X && a.Y != b.Y {
		base = DiagonalCost
	}
	return base * Multiplier(t)
}

// Heuristic estimates the remaining cost from a to b as a scaled Manhattan
// distance. With diagonal steps and terrain multipliers it is not provably
// admissible, so results are near-optimal rather than guaranteed shortest.
func Heuristic(a, b navmap.Point) float64 {
	return float64(abs(a.X-b.X)+abs(a.Y-b.Y)) * heuristicScale
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
