package navmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrMapUnreadable is returned when the map source cannot be opened. It is the
// only failure the loader reports; malformed content shapes the grid instead.
var ErrMapUnreadable = errors.New("map source unreadable")

// Option customises a load.
type Option func(*loadOptions)

type loadOptions struct {
	width  int
	height int
	logger *zap.Logger
}

// WithLogger routes load and lookup diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDimensions overrides the logical grid size. Non-positive values are
// ignored and the default dimension is kept.
func WithDimensions(width, height int) Option {
	return func(o *loadOptions) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

type record struct {
	terrain Terrain
	line    int
}

// LoadFile reads the map at path.
//
// Postcondition: Returns a grid, or an error wrapping ErrMapUnreadable when the
// file cannot be opened.
func LoadFile(path string, opts ...Option) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map %s: %w: %w", path, ErrMapUnreadable, err)
	}
	defer f.Close()

	o := buildOptions(opts)
	o.logger.Info("loading map", zap.String("path", path))
	return parse(f, o), nil
}

// Parse builds a grid from a map stream. It never fails: malformed lines are
// skipped, unknown triples become Wall, and a short or long stream is fitted
// to the grid row-major with the remainder left as Wall.
func Parse(r io.Reader, opts ...Option) *Grid {
	return parse(r, buildOptions(opts))
}

func buildOptions(opts []Option) loadOptions {
	o := loadOptions{width: DefaultWidth, height: DefaultHeight, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func parse(r io.Reader, o loadOptions) *Grid {
	g := newWallGrid(o.width, o.height, o.logger)
	log := o.logger

	var records []record
	br := bufio.NewReader(r)
	for lineIndex := 0; ; lineIndex++ {
		text, err := br.ReadString('\n')
		if text == "" && err != nil {
			if !errors.Is(err, io.EOF) {
				log.Error("map read interrupted", zap.Int("line", lineIndex), zap.Error(err))
			}
			break
		}
		g.stats.Lines++

		values, ok := parseTriple(text)
		if !ok {
			g.stats.Malformed++
			log.Warn("skipping malformed map line",
				zap.Int("line", lineIndex),
				zap.String("content", strings.TrimSpace(text)),
			)
		} else {
			terrain, known := Classify(values[0], values[1], values[2])
			if !known {
				g.stats.Unknown++
				log.Warn("unknown terrain triple, using wall",
					zap.Int("line", lineIndex),
					zap.Float64s("rgb", values[:]),
				)
			}
			records = append(records, record{terrain: terrain, line: lineIndex})
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Error("map read interrupted", zap.Int("line", lineIndex), zap.Error(err))
			}
			break
		}
	}

	g.stats.Records = len(records)
	if len(records) != g.stats.Expected {
		log.Error("map size mismatch",
			zap.Int("width", g.width),
			zap.Int("height", g.height),
			zap.Int("expected", g.stats.Expected),
			zap.Int("found", len(records)),
		)
	}

	n := min(len(records), len(g.cells))
	for i := 0; i < n; i++ {
		g.cells[i] = records[i].terrain
		g.lines[Point{X: i % g.width, Y: i / g.width}] = records[i].line
	}

	log.Info("map loaded",
		zap.Int("width", g.width),
		zap.Int("height", g.height),
		zap.Int("lines", g.stats.Lines),
		zap.Int("records", g.stats.Records),
		zap.Int("malformed", g.stats.Malformed),
		zap.Int("unknown", g.stats.Unknown),
	)
	return g
}

// parseTriple collects the numeric tokens of a line and accepts it only when
// there are exactly three.
func parseTriple(line string) ([3]float64, bool) {
	var out [3]float64
	n := 0
	for _, tok := range strings.Fields(line) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if n == len(out) {
			return out, false
		}
		out[n] = v
		n++
	}
	return out, n == len(out)
}
