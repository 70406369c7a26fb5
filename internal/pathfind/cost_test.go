package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/navzen/navigation/internal/navmap"
)

func TestMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, Multiplier(navmap.Corridor))
	assert.Equal(t, 1.0, Multiplier(navmap.Room(4)))
	assert.Equal(t, 2.0, Multiplier(navmap.Stairs))
	assert.Equal(t, 2.0, Multiplier(navmap.Elevator))
	assert.Equal(t, 1.5, Multiplier(navmap.Outdoor))
}

func TestStepCost(t *testing.T) {
	assert.InDelta(t, 1.0, StepCost(navmap.Pt(0, 0), navmap.Pt(1, 0), navmap.Corridor), 1e-9)
	assert.InDelta(t, 1.4, StepCost(navmap.Pt(0, 0), navmap.Pt(1, 1), navmap.Corridor), 1e-9)
	assert.InDelta(t, 2.8, StepCost(navmap.Pt(2, 2), navmap.Pt(1, 1), navmap.Stairs), 1e-9)
	assert.InDelta(t, 1.5, StepCost(navmap.Pt(2, 2), navmap.Pt(2, 3), navmap.Outdoor), 1e-9)
}

func TestHeuristic(t *testing.T) {
	assert.Equal(t, 0.0, Heuristic(navmap.Pt(3, 3), navmap.Pt(3, 3)))
	assert.InDelta(t, 5.25, Heuristic(navmap.Pt(0, 0), navmap.Pt(3, 4)), 1e-9)
}

// Property: the heuristic is symmetric and never exceeds the orthogonal
// corridor distance.
func TestPropertyHeuristicBelowOrthogonalDistance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := navmap.Pt(rapid.IntRange(0, 200).Draw(t, "ax"), rapid.IntRange(0, 300).Draw(t, "ay"))
		b := navmap.Pt(rapid.IntRange(0, 200).Draw(t, "bx"), rapid.IntRange(0, 300).Draw(t, "by"))
		h := Heuristic(a, b)
		if h != Heuristic(b, a) {
			t.Fatalf("heuristic not symmetric for %v, %v", a, b)
		}
		manhattan := float64(abs(a.X-b.X) + abs(a.Y-b.Y))
		if h > manhattan {
			t.Fatalf("heuristic %v exceeds manhattan %v", h, manhattan)
		}
	})
}

func TestFrontier_OrdersByFThenInsertion(t *testing.T) {
	var q frontier
	q.push(navmap.Pt(1, 0), 0, 5)
	q.push(navmap.Pt(2, 0), 0, 3)
	q.push(navmap.Pt(3, 0), 0, 5)
	q.push(navmap.Pt(2, 0), 0, 1)

	var got []navmap.Point
	for q.Len() > 0 {
		got = append(got, q.pop().pos)
	}
	assert.Equal(t, []navmap.Point{
		navmap.Pt(2, 0), navmap.Pt(2, 0), navmap.Pt(1, 0), navmap.Pt(3, 0),
	}, got)
}
