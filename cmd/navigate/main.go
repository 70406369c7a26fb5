// Package main provides a one-shot route query against a map file.
//
// The route is printed to stdout as JSON. The exit status is 0 when a route was
// found, 2 when none exists, and 1 on any other failure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/navzen/navigation/internal/config"
	"github.com/navzen/navigation/internal/navmap"
	"github.com/navzen/navigation/internal/observability"
	"github.com/navzen/navigation/internal/pathfind"
)

const exitNoPath = 2

type output struct {
	Segments  []pathfind.Segment `json:"segments"`
	TotalCost float64            `json:"total_cost"`
	Elapsed   string             `json:"elapsed"`
}

func main() {
	mapPath := flag.String("map", "data/SurfaceInfo.txt", "path to the encoded map file")
	width := flag.Int("width", navmap.DefaultWidth, "grid width in cells")
	height := flag.Int("height", navmap.DefaultHeight, "grid height in cells")
	startX := flag.Uint("start-x", 0, "start column")
	startY := flag.Uint("start-y", 0, "start row")
	endX := flag.Uint("end-x", 0, "goal column")
	endY := flag.Uint("end-y", 0, "goal row")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	start := time.Now()
	grid, err := navmap.LoadFile(*mapPath,
		navmap.WithDimensions(*width, *height),
		navmap.WithLogger(observability.Named(logger, "navmap")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	engine := pathfind.NewEngine(observability.Named(logger, "pathfind"))
	from := navmap.Pt(int(*startX), int(*startY))
	to := navmap.Pt(int(*endX), int(*endY))
	segments, found := engine.Search(grid, from, to)
	if !found {
		logger.Info("no route", zap.Ints("start", []int{from.X, from.Y}), zap.Ints("goal", []int{to.X, to.Y}))
		fmt.Fprintln(os.Stderr, "no path found")
		os.Exit(exitNoPath)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{
		Segments:  segments,
		TotalCost: pathfind.TotalCost(segments),
		Elapsed:   time.Since(start).Round(time.Microsecond).String(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
