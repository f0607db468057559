package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/metrics"
)

// SetupRoutes registers all REST and GraphQL routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per client IP; counters live in Valkey when configured
	limit, window := deps.rateLimit()
	app.Use(limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		Storage:    deps.RateLimitStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return errTooManyRequests(c)
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/v1/health" || c.Path() == "/v1/ready"
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag and default Cache-Control for GET responses
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	d := deps.timeout()
	v1 := app.Group("/v1")

	// Legal descriptions
	v1.Post("/legal-descriptions/parse", timeout.NewWithContext(ParseDescriptionHandler(deps), d))
	v1.Post("/legal-descriptions/classify", timeout.NewWithContext(ClassifyDescriptionHandler(deps), d))

	// Geometric analysis
	v1.Get("/analysis/operations", timeout.NewWithContext(ListOperationsHandler(deps), d))
	v1.Post("/analysis/:operation", timeout.NewWithContext(RunOperationHandler(deps), d))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), d))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.OpenAPIPath)
}
