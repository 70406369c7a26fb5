package navmap

import (
	"encoding/json"

	"go.uber.org/zap"
)

// DefaultWidth and DefaultHeight are the logical dimensions of the facility
// floor plan. They are a fixed contract, never inferred from the source file.
const (
	DefaultWidth  = 175
	DefaultHeight = 245
)

const (
	wideCorridorRange     = 3
	wideCorridorThreshold = 3
)

// Point is a cell coordinate. It encodes to JSON as [x, y].
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// MarshalJSON encodes p as a two-element array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element array into p.
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// LoadStats summarises how a grid was built from its source.
type LoadStats struct {
	// Lines is the number of source lines read.
	Lines int
	// Records is the number of lines that produced a cell.
	Records int
	// Malformed is the number of lines skipped for not holding three numbers.
	Malformed int
	// Unknown is the number of records whose triple matched no terrain rule.
	Unknown int
	// Expected is width*height.
	Expected int
}

// Grid is the immutable terrain map. It has no mutation API and is safe for
// concurrent use by any number of readers.
type Grid struct {
	width  int
	height int
	cells  []Terrain
	lines  map[Point]int
	stats  LoadStats
	logger *zap.Logger
}

// NewGrid builds a grid from row-major cells with no source-line associations.
// Missing cells are Wall; extra cells are ignored.
//
// Precondition: width and height must be positive.
func NewGrid(width, height int, cells []Terrain, logger *zap.Logger) *Grid {
	g := newWallGrid(width, height, logger)
	copy(g.cells, cells)
	g.stats.Records = len(cells)
	return g
}

func newWallGrid(width, height int, logger *zap.Logger) *Grid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Terrain, width*height),
		lines:  make(map[Point]int),
		stats:  LoadStats{Expected: width * height},
		logger: logger,
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Stats returns the load diagnostics.
func (g *Grid) Stats() LoadStats { return g.stats }

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// TerrainAt returns the terrain at (x, y).
//
// Postcondition: Out-of-bounds coordinates yield Wall and a warning; the call
// never fails.
func (g *Grid) TerrainAt(x, y int) Terrain {
	if !g.InBounds(x, y) {
		g.logger.Warn("terrain lookup out of bounds",
			zap.Int("x", x),
			zap.Int("y", y),
			zap.Int("width", g.width),
			zap.Int("height", g.height),
		)
		return Wall
	}
	return g.cells[y*g.width+x]
}

// SourceLine returns the zero-based source line that produced (x, y).
//
// Postcondition: Returns (line, true) when the cell was populated from the
// source, or (0, false) otherwise.
func (g *Grid) SourceLine(x, y int) (int, bool) {
	line, ok := g.lines[Point{X: x, Y: y}]
	return line, ok
}

// LineNumber is SourceLine without the presence flag: absent associations
// read as 0, indistinguishable from a genuine line 0.
func (g *Grid) LineNumber(x, y int) int {
	line, _ := g.SourceLine(x, y)
	return line
}

// IsWideCorridor reports whether at least three of the twelve cells lying one
// to three steps away along the four axis directions are corridor.
func (g *Grid) IsWideCorridor(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	count := 0
	for i := 1; i <= wideCorridorRange; i++ {
		for _, d := range [4][2]int{{-i, 0}, {i, 0}, {0, -i}, {0, i}} {
			nx, ny := x+d[0], y+d[1]
			if g.InBounds(nx, ny) && g.cells[ny*g.width+nx].Kind == KindCorridor {
				count++
			}
		}
	}
	return count >= wideCorridorThreshold
}
