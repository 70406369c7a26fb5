// Package main provides the navigation HTTP server.
// It wires together configuration, the room directory, the search engine, and
// the HTTP listener.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/navzen/navigation/internal/config"
	"github.com/navzen/navigation/internal/httpapi"
	"github.com/navzen/navigation/internal/observability"
	"github.com/navzen/navigation/internal/pathfind"
	"github.com/navzen/navigation/internal/rooms"
	"github.com/navzen/navigation/internal/server"
	"github.com/navzen/navigation/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults and NAVZEN_ env only when empty)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting navigation server",
		zap.String("map", cfg.Map.Path),
		zap.Int("width", cfg.Map.Width),
		zap.Int("height", cfg.Map.Height),
		zap.String("rooms", cfg.Rooms.Source),
	)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)

	opts := []httpapi.Option{httpapi.WithLogger(observability.Named(logger, "http"))}

	switch cfg.Rooms.Source {
	case config.RoomSourceFile:
		dir, err := rooms.LoadFile(cfg.Rooms.File)
		if err != nil {
			logger.Fatal("loading room directory", zap.Error(err))
		}
		logger.Info("room directory loaded",
			zap.String("file", cfg.Rooms.File),
			zap.Int("rooms", dir.Len()),
		)
		opts = append(opts, httpapi.WithRoomNamer(dir))

	case config.RoomSourcePostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts = append(opts,
			httpapi.WithRoomNamer(postgres.NewRoomRepository(pool.DB())),
			httpapi.WithHealthCheck("database", func(ctx context.Context) error {
				return pool.Health(ctx, time.Second)
			}),
		)

		stop := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func(context.Context) error {
				close(stop)
				pool.Close()
				return nil
			},
		})
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := pathfind.NewEngine(observability.Named(logger, "pathfind"))
	handler := httpapi.NewHandler(cfg.Map, engine, opts...)
	httpServer := httpapi.NewServer(cfg.Server, httpapi.NewRouter(handler), logger)
	lifecycle.Add("http", httpServer)

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadFromViper(config.New())
	}
	return config.Load(path)
}
