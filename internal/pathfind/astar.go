// Package pathfind implements weighted A* over a navmap.Grid and compresses
// the resulting cell path into fixed-stride segments for turn-by-turn display.
//
// Moves are 8-connected: orthogonal steps cost 1.0 and diagonal steps 1.4,
// scaled by the multiplier of the terrain being entered. Walls are never
// entered. The frontier allows duplicate entries and skips positions that were
// already expanded, in place of a decrease-key operation.
//
// The heuristic is a Manhattan distance scaled by 0.75. It is not provably
// admissible once diagonal costs and multipliers are combined, so a returned
// path is near-optimal but not guaranteed to be the cheapest.
package pathfind

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/navzen/navigation/internal/navmap"
)

// Stats counts the work done by one search.
type Stats struct {
	Expanded  int
	Pushed    int
	StalePops int
}

// Engine runs searches. It holds no per-search state and is safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an Engine that logs through logger.
//
// Postcondition: Returns a non-nil Engine; a nil logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// search holds the mutable state of a single run.
type search struct {
	grid     *navmap.Grid
	goal     navmap.Point
	open     frontier
	g        []float64
	cameFrom []int
	explored []bool
	stats    Stats
}

// Search finds a route from start to goal on grid.
//
// Precondition: grid must be non-nil.
// Postcondition: Returns (segments, true) with a non-empty, start-to-goal
// ordered slice when the goal is reachable, or (nil, false) otherwise. It
// never mutates grid.
func (e *Engine) Search(grid *navmap.Grid, start, goal navmap.Point) ([]Segment, bool) {
	began := time.Now()
	log := e.logger.With(
		zap.Ints("start", []int{start.X, start.Y}),
		zap.Ints("goal", []int{goal.X, goal.Y}),
	)

	if !grid.InBounds(start.X, start.Y) || !grid.InBounds(goal.X, goal.Y) {
		log.Warn("search endpoint out of bounds",
			zap.Int("width", grid.Width()),
			zap.Int("height", grid.Height()),
		)
		return nil, false
	}

	log.Debug("starting search")
	s := newSearch(grid, start, goal)
	found := s.run(start)

	fields := []zap.Field{
		zap.Int("expanded", s.stats.Expanded),
		zap.Int("pushed", s.stats.Pushed),
		zap.Int("stale_pops", s.stats.StalePops),
		zap.Duration("elapsed", time.Since(began)),
	}
	if !found {
		log.Info("no path found", fields...)
		return nil, false
	}

	segments := reconstruct(grid, s.predecessor, start, goal)
	log.Debug("path found", append(fields, zap.Int("segments", len(segments)))...)
	return segments, true
}

func newSearch(grid *navmap.Grid, start, goal navmap.Point) *search {
	n := grid.Width() * grid.Height()
	s := &search{
		grid:     grid,
		goal:     goal,
		g:        make([]float64, n),
		cameFrom: make([]int, n),
		explored: make([]bool, n),
	}
	for i := range s.g {
		s.g[i] = math.Inf(1)
		s.cameFrom[i] = -1
	}
	s.g[s.index(start)] = 0
	return s
}

func (s *search) index(p navmap.Point) int {
	return p.Y*s.grid.Width() + p.X
}

func (s *search) point(i int) navmap.Point {
	w := s.grid.Width()
	return navmap.Point{X: i % w, Y: i / w}
}

// predecessor returns the cell the path entered p from.
func (s *search) predecessor(p navmap.Point) (navmap.Point, bool) {
	i := s.cameFrom[s.index(p)]
	if i < 0 {
		return navmap.Point{}, false
	}
	return s.point(i), true
}

func (s *search) run(start navmap.Point) bool {
	s.open.push(start, 0, Heuristic(start, s.goal))
	s.stats.Pushed++

	for s.open.Len() > 0 {
		cur := s.open.pop()
		if cur.pos == s.goal {
			return true
		}
		ci := s.index(cur.pos)
		if s.explored[ci] {
			s.stats.StalePops++
			continue
		}
		s.explored[ci] = true
		s.stats.Expanded++
		s.expand(cur.pos, ci)
	}
	return false
}

func (s *search) expand(pos navmap.Point, ci int) {
	for _, m := range moves {
		nx, ny := pos.X+m.dx, pos.Y+m.dy
		if !s.grid.InBounds(nx, ny) {
			continue
		}
		t := s.grid.TerrainAt(nx, ny)
		if !t.Passable() {
			continue
		}
		next := navmap.Point{X: nx, Y: ny}
		ni := s.index(next)
		tentative := s.g[ci] + m.cost*Multiplier(t)
		if tentative < s.g[ni] {
			s.cameFrom[ni] = ci
			s.g[ni] = tentative
			s.open.push(next, tentative, tentative+Heuristic(next, s.goal))
			s.stats.Pushed++
		}
	}
}
