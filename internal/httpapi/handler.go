// Package httpapi exposes route queries over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/navzen/navigation/internal/config"
	"github.com/navzen/navigation/internal/navmap"
	"github.com/navzen/navigation/internal/pathfind"
	"github.com/navzen/navigation/internal/rooms"
)

// Response messages.
const (
	MessagePathFound      = "path found"
	MessageNoPath         = "no path found"
	MessageMapUnavailable = "map unavailable"
)

// HealthCheck reports whether a backing dependency is usable.
type HealthCheck func(ctx context.Context) error

// Option configures a Handler.
type Option func(*Handler)

// WithRoomNamer attaches a room directory used to name room segments.
func WithRoomNamer(namer rooms.Namer) Option {
	return func(h *Handler) { h.namer = namer }
}

// WithHealthCheck adds a dependency probed by GET /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		h.checks = append(h.checks, namedCheck{name: name, check: check})
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

type namedCheck struct {
	name  string
	check HealthCheck
}

// Handler serves route queries. The map is read from disk on every query.
type Handler struct {
	mapCfg config.MapConfig
	engine *pathfind.Engine
	namer  rooms.Namer
	checks []namedCheck
	logger *zap.Logger
}

// NewHandler creates a Handler that loads the map described by mapCfg and
// searches it with engine.
//
// Precondition: engine must be non-nil.
// Postcondition: Returns a non-nil Handler.
func NewHandler(mapCfg config.MapConfig, engine *pathfind.Engine, opts ...Option) *Handler {
	h := &Handler{
		mapCfg: mapCfg,
		engine: engine,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SegmentView is a route segment as rendered to clients.
type SegmentView struct {
	pathfind.Segment
	// RoomName is the directory name of a room surface, when known.
	RoomName string `json:"room_name,omitempty"`
}

// NavigateResponse is the body of a completed route query.
type NavigateResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Segments []SegmentView `json:"segments"`
}

// ErrorResponse is the body of a rejected or failed query.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type routeQuery struct {
	start navmap.Point
	goal  navmap.Point
}

// Navigate handles GET /navigate?start_x=&start_y=&end_x=&end_y=.
func (h *Handler) Navigate(c *gin.Context) {
	log := requestLogger(c, h.logger)

	q, err := parseRouteQuery(c)
	if err != nil {
		log.Debug("rejecting route query", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}

	grid, err := navmap.LoadFile(h.mapCfg.Path,
		navmap.WithDimensions(h.mapCfg.Width, h.mapCfg.Height),
		navmap.WithLogger(log),
	)
	if err != nil {
		if errors.Is(err, navmap.ErrMapUnreadable) {
			log.Error("map unavailable", zap.String("path", h.mapCfg.Path), zap.Error(err))
		} else {
			log.Error("loading map", zap.String("path", h.mapCfg.Path), zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: MessageMapUnavailable})
		return
	}

	segments, found := h.engine.Search(grid, q.start, q.goal)
	if !found {
		c.JSON(http.StatusNotFound, NavigateResponse{Message: MessageNoPath})
		return
	}

	c.JSON(http.StatusOK, NavigateResponse{
		Success:  true,
		Message:  MessagePathFound,
		Segments: h.render(c.Request.Context(), log, segments),
	})
}

// render attaches room names to segments. A failing directory only costs the
// names.
func (h *Handler) render(ctx context.Context, log *zap.Logger, segments []pathfind.Segment) []SegmentView {
	views := make([]SegmentView, len(segments))
	for i, s := range segments {
		views[i] = SegmentView{Segment: s}
	}
	if h.namer == nil {
		return views
	}

	ids := roomIDs(segments)
	if len(ids) == 0 {
		return views
	}
	names, err := h.namer.RoomNames(ctx, ids)
	if err != nil {
		log.Warn("room name lookup failed", zap.Int("rooms", len(ids)), zap.Error(err))
		return views
	}
	for i := range views {
		if views[i].Terrain.Kind == navmap.KindRoom {
			views[i].RoomName = names[views[i].Terrain.RoomID]
		}
	}
	return views
}

func roomIDs(segments []pathfind.Segment) []uint32 {
	seen := make(map[uint32]bool)
	var ids []uint32
	for _, s := range segments {
		if s.Terrain.Kind != navmap.KindRoom || seen[s.Terrain.RoomID] {
			continue
		}
		seen[s.Terrain.RoomID] = true
		ids = append(ids, s.Terrain.RoomID)
	}
	return ids
}

func parseRouteQuery(c *gin.Context) (routeQuery, error) {
	var (
		q    routeQuery
		errs []string
	)
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"start_x", &q.start.X},
		{"start_y", &q.start.Y},
		{"end_x", &q.goal.X},
		{"end_y", &q.goal.Y},
	} {
		v, err := parseCoordinate(c, f.name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		*f.dst = v
	}
	if len(errs) > 0 {
		return routeQuery{}, errors.New(strings.Join(errs, "; "))
	}
	return q, nil
}

func parseCoordinate(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned integer, got %q", name, raw)
	}
	return int(v), nil
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for _, nc := range h.checks {
		if err := nc.check(ctx); err != nil {
			requestLogger(c, h.logger).Warn("health check failed",
				zap.String("check", nc.name),
				zap.Error(err),
			)
			checks[nc.name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[nc.name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	c.JSON(status, body)
}
