package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/imoveis/internal/adapters/http"
	natsadapter "github.com/samirrijal/imoveis/internal/adapters/nats"
	"github.com/samirrijal/imoveis/internal/adapters/objectstore"
	"github.com/samirrijal/imoveis/internal/adapters/postgres"
	"github.com/samirrijal/imoveis/internal/adapters/valkey"
	"github.com/samirrijal/imoveis/internal/core/ports"
	"github.com/samirrijal/imoveis/internal/core/usecases"
	"github.com/samirrijal/imoveis/internal/pkg/config"
	"github.com/samirrijal/imoveis/internal/pkg/logging"
	"github.com/samirrijal/imoveis/internal/pkg/metrics"
	"github.com/samirrijal/imoveis/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("imoveis-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		slog.Info("schema ready")
	}

	go reportPoolStats(ctx, db)

	// Object storage
	photos, err := objectstore.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("object storage: %v", err)
	}

	// Cache (optional)
	var cache ports.CacheService
	valkeyCache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer valkeyCache.Close()
		cache = valkeyCache
	}

	// NATS (optional)
	var events ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
		events = publisher
	}

	// Raw NATS connection for WebSocket relay
	var natsConn *nats.Conn
	if publisher != nil {
		if natsConn, err = natsadapter.RawConn(cfg.NATS.URL); err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	listingRepo := postgres.NewListingRepo(db)
	listingSvc := usecases.NewListingService(listingRepo, photos, events, cache)

	deps := &http.Dependencies{
		Listings:       listingSvc,
		NATS:           natsConn,
		DB:             db,
		Photos:         photos,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		UploadTimeout:  time.Duration(cfg.Server.UploadTimeout) * time.Second,
	}
	if valkeyCache != nil {
		deps.Cache = valkeyCache
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "Imoveis API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight uploads up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the connection pool gauges until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
