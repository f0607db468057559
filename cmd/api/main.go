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

	"github.com/bsvalues/TerraFusionMono-sub005/internal/adapters/http"
	natsadapter "github.com/bsvalues/TerraFusionMono-sub005/internal/adapters/nats"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/adapters/valkey"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/geoops"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/legaldesc"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/ports"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/usecases"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/config"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/logging"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("terrafusion-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		RequestTimeout:  time.Duration(cfg.Server.RequestTimeout) * time.Second,
		Version:         version,
		OpenAPIPath:     http.DefaultOpenAPIPath,
	}

	// Valkey: rate limit counters shared by every replica
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, rate limiting per process", "error", err)
		} else {
			defer vc.Close()
			deps.Cache = vc
			deps.RateLimitStorage = valkey.NewLimiterStorage(vc)
		}
	}

	// NATS: parse and analysis events
	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		nc, err := natsadapter.Connect(cfg.NATS.URL, cfg.Telemetry.ServiceName)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "error", err)
		} else if pub, err := natsadapter.NewPublisher(nc); err != nil {
			slog.Warn("jetstream unavailable, events disabled", "error", err)
			nc.Close()
		} else {
			defer pub.Close()
			events = pub
			deps.Events = pub
		}
	}

	// Use cases
	deps.Legal = usecases.NewLegalDescriptionService(legaldesc.NewParser(), events)
	deps.Analysis = usecases.NewAnalysisService(geoops.New(), events)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "TerraFusion Parcel API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
