package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/usecases"
)

// Pinger is a dependency whose connectivity can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Broker reports message broker connectivity.
type Broker interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Legal    *usecases.LegalDescriptionService
	Analysis *usecases.AnalysisService

	// Optional infrastructure, probed by /v1/ready.
	Events Broker
	Cache  Pinger

	// RateLimitStorage shares limiter counters between replicas. Nil keeps
	// them in process memory.
	RateLimitStorage fiber.Storage
	RateLimitMax     int
	RateLimitWindow  time.Duration
	RequestTimeout   time.Duration
	Version          string
	OpenAPIPath      string
}

func (d *Dependencies) rateLimit() (int, time.Duration) {
	limit, window := d.RateLimitMax, d.RateLimitWindow
	if limit <= 0 {
		limit = 120
	}
	if window <= 0 {
		window = time.Minute
	}
	return limit, window
}

func (d *Dependencies) timeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return d.RequestTimeout
}
