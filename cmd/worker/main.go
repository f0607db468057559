package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	natsadapter "github.com/bsvalues/TerraFusionMono-sub005/internal/adapters/nats"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/geoops"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/legaldesc"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/ports"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/usecases"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/config"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/logging"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/metrics"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/telemetry"
)

// The worker consumes parse and analysis requests from JetStream and
// publishes the results as events.
func main() {
	cfg, err := config.Load("terrafusion-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	nc, err := natsadapter.Connect(cfg.NATS.URL, cfg.Telemetry.ServiceName)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	pub, err := natsadapter.NewPublisher(nc)
	if err != nil {
		log.Fatalf("publisher: %v", err)
	}
	defer pub.Close()

	sub, err := natsadapter.NewSubscriber(nc)
	if err != nil {
		log.Fatalf("subscriber: %v", err)
	}
	defer sub.Close()

	legal := usecases.NewLegalDescriptionService(legaldesc.NewParser(), pub)
	analysis := usecases.NewAnalysisService(geoops.New(), pub)

	var requests ports.RequestSubscriber = sub
	if err := requests.SubscribeParseRequests(ctx, legal.HandleRequest); err != nil {
		log.Fatalf("subscribe parse requests: %v", err)
	}
	if err := requests.SubscribeAnalysisRequests(ctx, analysis.HandleRequest); err != nil {
		log.Fatalf("subscribe analysis requests: %v", err)
	}

	// Metrics endpoint
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", metrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		if !pub.Connected() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}
		return c.SendString("ok")
	})
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := app.Listen(addr); err != nil {
			slog.Error("metrics listener stopped", "error", err)
		}
	}()

	slog.Info("worker started",
		"parse_subject", natsadapter.SubjectParseRequests,
		"analysis_subject", natsadapter.SubjectAnalysisRequests,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()
	_ = app.Shutdown()
	slog.Info("worker stopped")
}
