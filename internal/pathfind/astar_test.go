package pathfind

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/navzen/navigation/internal/navmap"
)

// gridFromRows builds a grid from ASCII rows:
// '#' wall, '.' corridor, 'o' outdoor, 's' stairs, 'e' elevator, '1'-'9' rooms.
func gridFromRows(t testing.TB, rows ...string) *navmap.Grid {
	t.Helper()
	w := len(rows[0])
	cells := make([]navmap.Terrain, 0, w*len(rows))
	for _, row := range rows {
		require.Len(t, row, w, "rows must be rectangular")
		for _, c := range row {
			switch {
			case c == '#':
				cells = append(cells, navmap.Wall)
			case c == '.':
				cells = append(cells, navmap.Corridor)
			case c == 'o':
				cells = append(cells, navmap.Outdoor)
			case c == 's':
				cells = append(cells, navmap.Stairs)
			case c == 'e':
				cells = append(cells, navmap.Elevator)
			case c >= '1' && c <= '9':
				cells = append(cells, navmap.Room(uint32(c-'0')))
			default:
				t.Fatalf("unknown fixture cell %q", c)
			}
		}
	}
	return navmap.NewGrid(w, len(rows), cells, nil)
}

func requireContiguous(t testing.TB, segments []Segment, start, goal navmap.Point) {
	t.Helper()
	require.NotEmpty(t, segments)
	require.Equal(t, start, segments[0].Start)
	require.Equal(t, goal, segments[len(segments)-1].End)
	for i := 1; i < len(segments); i++ {
		require.Equal(t, segments[i-1].End, segments[i].Start, "segment %d not contiguous", i)
	}
}

func TestSearch_StartEqualsGoal(t *testing.T) {
	g := gridFromRows(t, "...", "...")
	segments, ok := NewEngine(zaptest.NewLogger(t)).Search(g, navmap.Pt(1, 1), navmap.Pt(1, 1))
	require.True(t, ok)
	require.Len(t, segments, 1)
	assert.Equal(t, navmap.Pt(1, 1), segments[0].Start)
	assert.Equal(t, navmap.Pt(1, 1), segments[0].End)
	assert.Zero(t, segments[0].Cost)
	assert.Equal(t, "Corridor", segments[0].Surface)
}

func TestSearch_EnclosedGoalIsNoPath(t *testing.T) {
	g := gridFromRows(t,
		".......",
		"..###..",
		"..#.#..",
		"..###..",
		".......",
	)
	segments, ok := NewEngine(nil).Search(g, navmap.Pt(0, 0), navmap.Pt(3, 2))
	assert.False(t, ok)
	assert.Nil(t, segments)
}

func TestSearch_WallGoalIsNoPath(t *testing.T) {
	g := gridFromRows(t, "..#")
	_, ok := NewEngine(nil).Search(g, navmap.Pt(0, 0), navmap.Pt(2, 0))
	assert.False(t, ok)
}

func TestSearch_OutOfBoundsEndpoints(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := NewEngine(zap.New(core))
	g := gridFromRows(t, "...", "...")

	_, ok := e.Search(g, navmap.Pt(0, 0), navmap.Pt(3, 0))
	assert.False(t, ok)
	_, ok = e.Search(g, navmap.Pt(-1, 0), navmap.Pt(1, 1))
	assert.False(t, ok)
	assert.Equal(t, 2, logs.FilterMessage("search endpoint out of bounds").Len())
}

func TestSearch_StraightCorridorOfTwenty(t *testing.T) {
	g := gridFromRows(t, strings.Repeat(".", 20))
	start, goal := navmap.Pt(0, 0), navmap.Pt(19, 0)

	segments, ok := NewEngine(nil).Search(g, start, goal)
	require.True(t, ok)
	require.Len(t, segments, 2)
	requireContiguous(t, segments, start, goal)

	assert.Equal(t, navmap.Pt(9, 0), segments[0].End)
	assert.InDelta(t, 9.0, segments[0].Cost, 1e-9)
	assert.InDelta(t, 10.0, segments[1].Cost, 1e-9)
	assert.InDelta(t, 19.0, TotalCost(segments), 1e-9)
}

func TestSearch_DiagonalOnly(t *testing.T) {
	rows := make([]string, 8)
	for y := range rows {
		b := []byte(strings.Repeat("#", 8))
		b[y] = '.'
		rows[y] = string(b)
	}
	g := gridFromRows(t, rows...)

	for n := 1; n <= 7; n++ {
		segments, ok := NewEngine(nil).Search(g, navmap.Pt(0, 0), navmap.Pt(n, n))
		require.True(t, ok, "n=%d", n)
		requireContiguous(t, segments, navmap.Pt(0, 0), navmap.Pt(n, n))
		assert.InDelta(t, 1.4*float64(n), TotalCost(segments), 1e-9, "n=%d", n)
	}
}

func TestSearch_TerrainMultipliers(t *testing.T) {
	cases := []struct {
		name string
		row  string
		want float64
	}{
		{"corridor", "...", 2.0},
		{"room", ".11", 2.0},
		{"stairs", ".ss", 4.0},
		{"elevator", ".e.", 3.0},
		{"outdoor", ".oo", 3.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := gridFromRows(t, tc.row)
			segments, ok := NewEngine(nil).Search(g, navmap.Pt(0, 0), navmap.Pt(2, 0))
			require.True(t, ok)
			assert.InDelta(t, tc.want, TotalCost(segments), 1e-9)
		})
	}
}

func TestSearch_RoutesAroundWalls(t *testing.T) {
	g := gridFromRows(t,
		"..#..",
		"..#..",
		"..#..",
		".....",
	)
	start, goal := navmap.Pt(0, 0), navmap.Pt(4, 0)
	segments, ok := NewEngine(nil).Search(g, start, goal)
	require.True(t, ok)
	requireContiguous(t, segments, start, goal)
	// Down around the wall and back up costs more than the blocked straight line.
	assert.Greater(t, TotalCost(segments), 4.0)
}

func TestSearch_SurfaceAndLineNumberFromLoadedMap(t *testing.T) {
	lines := make([]string, 0, 12)
	for i := 0; i < 11; i++ {
		lines = append(lines, "1 1 1")
	}
	lines = append(lines, "0 0.7 0")
	g := navmap.Parse(strings.NewReader(strings.Join(lines, "\n")), navmap.WithDimensions(12, 1))

	start, goal := navmap.Pt(0, 0), navmap.Pt(11, 0)
	segments, ok := NewEngine(nil).Search(g, start, goal)
	require.True(t, ok)
	require.Len(t, segments, 2)
	requireContiguous(t, segments, start, goal)

	assert.Equal(t, navmap.Pt(1, 0), segments[0].End)
	assert.Equal(t, "Corridor", segments[0].Surface)
	assert.Equal(t, 1, segments[0].LineNumber)
	assert.InDelta(t, 1.0, segments[0].Cost, 1e-9)

	assert.Equal(t, "Room 7", segments[1].Surface)
	assert.Equal(t, navmap.Room(7), segments[1].Terrain)
	assert.Equal(t, 11, segments[1].LineNumber)
	assert.InDelta(t, 10.0, segments[1].Cost, 1e-9)
}

func TestSearch_ExactStrideLeavesEmptyTrailingSegment(t *testing.T) {
	g := gridFromRows(t, strings.Repeat(".", 11))
	segments, ok := NewEngine(nil).Search(g, navmap.Pt(0, 0), navmap.Pt(10, 0))
	require.True(t, ok)
	require.Len(t, segments, 2)
	assert.Equal(t, navmap.Pt(0, 0), segments[0].Start)
	assert.Equal(t, navmap.Pt(0, 0), segments[0].End)
	assert.Zero(t, segments[0].Cost)
	assert.InDelta(t, 10.0, segments[1].Cost, 1e-9)
}

func TestSearch_ConcurrentSearchesAgree(t *testing.T) {
	g := gridFromRows(t,
		"..........",
		".####.###.",
		".#......#.",
		".#.#..#.#.",
		"...#..#...",
	)
	e := NewEngine(nil)
	want, ok := e.Search(g, navmap.Pt(0, 0), navmap.Pt(4, 4))
	require.True(t, ok)

	var wg sync.WaitGroup
	results := make([][]Segment, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = e.Search(g, navmap.Pt(0, 0), navmap.Pt(4, 4))
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestSearch_LogsStatsOnSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := gridFromRows(t, "....", "....")
	_, ok := NewEngine(zap.New(core)).Search(g, navmap.Pt(0, 0), navmap.Pt(3, 1))
	require.True(t, ok)
	entries := logs.FilterMessage("path found").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "expanded")
}

// Property: any found route is contiguous, starts and ends at the requested
// cells, and every full-stride segment costs at least one unit per step.
func TestPropertySegmentsContiguous(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(2, 24).Draw(rt, "w")
		h := rapid.IntRange(2, 24).Draw(rt, "h")
		walls := rapid.SliceOfN(rapid.Float64Range(0, 1), w*h, w*h).Draw(rt, "walls")
		cells := make([]navmap.Terrain, w*h)
		for i, r := range walls {
			switch {
			case r < 0.25:
				cells[i] = navmap.Wall
			case r < 0.35:
				cells[i] = navmap.Stairs
			case r < 0.45:
				cells[i] = navmap.Outdoor
			default:
				cells[i] = navmap.Corridor
			}
		}
		g := navmap.NewGrid(w, h, cells, nil)
		start := navmap.Pt(rapid.IntRange(0, w-1).Draw(rt, "sx"), rapid.IntRange(0, h-1).Draw(rt, "sy"))
		goal := navmap.Pt(rapid.IntRange(0, w-1).Draw(rt, "gx"), rapid.IntRange(0, h-1).Draw(rt, "gy"))

		segments, ok := NewEngine(nil).Search(g, start, goal)
		if !ok {
			if start == goal {
				rt.Fatalf("start equals goal but no path")
			}
			return
		}
		if len(segments) == 0 || segments[0].Start != start || segments[len(segments)-1].End != goal {
			rt.Fatalf("route does not span %v -> %v: %+v", start, goal, segments)
		}
		for i, s := range segments {
			if s.Cost < 0 {
				rt.Fatalf("segment %d has negative cost %v", i, s.Cost)
			}
			if i > 0 {
				if segments[i-1].End != s.Start {
					rt.Fatalf("segment %d not contiguous", i)
				}
				if s.Cost < SegmentStride*OrthogonalCost-1e-9 {
					rt.Fatalf("full segment %d costs %v", i, s.Cost)
				}
			}
			if !g.TerrainAt(s.End.X, s.End.Y).Passable() && s.End != start {
				rt.Fatalf("segment %d ends on a wall", i)
			}
		}
	})
}
