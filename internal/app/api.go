package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jaennil/guide_helper/backend/maps/internal/fetch"
	"github.com/jaennil/guide_helper/backend/maps/internal/imaging"
	v1 "github.com/jaennil/guide_helper/backend/maps/internal/infrastructure/http/v1"
	"github.com/jaennil/guide_helper/backend/maps/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/blob"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/settings"
	"github.com/jaennil/guide_helper/backend/maps/internal/usecase"
	"github.com/jaennil/guide_helper/backend/maps/pkg/config"
	"github.com/jaennil/guide_helper/backend/maps/pkg/http_server"
	"github.com/jaennil/guide_helper/backend/maps/pkg/logger"
	"github.com/jaennil/guide_helper/backend/maps/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger)
	defer l.Sync()

	l.Info("app config", "cfg", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithLogger(ctx, l)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
		l.Info("telemetry initialized", "service", cfg.Telemetry.ServiceName)
	}

	paths := usecase.NewPaths(cfg.Cache.DataDir)

	blobs, err := blob.New(ctx, blob.Options{
		Backend:    cfg.Blob.Backend,
		Dir:        paths.Cache,
		SQLitePath: filepath.Join(cfg.Cache.DataDir, cfg.Blob.SQLitePath),
		Redis: blob.RedisConfig{
			Addr:           cfg.Redis.Addr,
			Password:       cfg.Redis.Password,
			DB:             cfg.Redis.DB,
			ConnectTimeout: cfg.Redis.ConnectTimeout,
		},
	}, l)
	if err != nil {
		l.Fatal("failed to initialize blob store", "backend", cfg.Blob.Backend, "error", err)
	}

	viewer := usecase.NewViewer(usecase.ViewerOptions{
		Paths:      paths,
		MemorySize: cfg.Cache.MemorySize,
		Defaults: settings.Config{
			DiskCacheCapacity: cfg.Cache.DiskCapacity,
			EffectsEnabled:    cfg.Cache.Effects,
		},
		TileTimeout: tileTimeout(cfg.HTTP.Server, cfg.Fetch.Timeout),
	}, blobs, fetch.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, l), imaging.NewDecoder(), l)

	h := handler.NewHandler(validator.New(), viewer)
	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName)

	httpServer := http_server.NewServer(ctx, cfg.HTTP.Server, router)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info("starting http server...", "address", httpServer.Addr)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		l.Info("http server stopped", "address", httpServer.Addr)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		l.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		l.Info("shutting down http server...", "address", httpServer.Addr)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			l.Error("http server shutdown failed", "error", err)
			return err
		}
		l.Info("http_server shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		l.Error("http server failed", "error", err)
	}

	if err := viewer.Shutdown(context.Background()); err != nil {
		l.Error("failed to persist viewer state", "error", err)
	}

	l.Info("application shutdown completed")
}

// viewTiles is the number of tiles resolved by the largest request.
const viewTiles = 4

// tileTimeout splits the write budget of a response between the tiles of a
// 2x2 view, keeping one share for encoding, so a view whose upstream hangs
// still answers with placeholders.
func tileTimeout(s config.Server, fetchTimeout time.Duration) time.Duration {
	if s.WriteTimeout <= 0 {
		return fetchTimeout
	}
	budget := s.WriteTimeout / (viewTiles + 1)
	if fetchTimeout > 0 && fetchTimeout < budget {
		return fetchTimeout
	}
	return budget
}
