package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/ports"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/metrics"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/telemetry"
)

// Precondition failures, reported before the engine runs.
var (
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrNotEnoughFeatures = errors.New("not enough features")
)

// AnalysisService runs geometric operations and announces the results.
type AnalysisService struct {
	engine    ports.GeometryEngine
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewAnalysisService creates a new AnalysisService. publisher may be nil.
func NewAnalysisService(engine ports.GeometryEngine, publisher ports.EventPublisher) *AnalysisService {
	return &AnalysisService{engine: engine, publisher: publisher, now: time.Now}
}

// Operations lists the operation catalog.
func (s *AnalysisService) Operations() []domain.OperationInfo {
	return s.engine.Catalog()
}

// Check validates op and the feature count without running anything.
func (s *AnalysisService) Check(op domain.Operation, n int) error {
	info, ok := s.engine.Describe(op)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownOperation, op)
	}
	if n < info.MinFeatures {
		return fmt.Errorf("%w: %s requires at least %d, got %d", ErrNotEnoughFeatures, op, info.MinFeatures, n)
	}
	return nil
}

// Run executes op. Failures are carried in the result, never returned.
func (s *AnalysisService) Run(ctx context.Context, requestID string, op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanAnalysis)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrOperation, string(op)),
		attribute.Int(telemetry.AttrFeatureCount, len(features)),
	)

	start := time.Now()
	res := s.engine.Run(op, features, params)
	metrics.OperationDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	outcome := metrics.OutcomeOK
	if res.Failed() {
		outcome = metrics.OutcomeError
		span.SetStatus(codes.Error, res.Error)
		slog.Warn("geometric operation failed", "request_id", requestID, "operation", op, "features", len(features), "error", res.Error)
	} else {
		slog.Debug("geometric operation finished", "request_id", requestID, "operation", op, "features", len(features))
	}
	metrics.OperationsRun.WithLabelValues(string(op), outcome).Inc()

	s.publish(ctx, &domain.AnalysisEvent{RequestID: requestID, Result: res, At: s.now().UTC()})
	return res
}

// HandleRequest serves an asynchronous analysis request. Undecodable feature
// payloads still produce a failed result event so the caller is not left
// waiting.
func (s *AnalysisService) HandleRequest(ctx context.Context, req *domain.AnalysisRequest) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanHandleAnalysis)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrRequestID, req.RequestID))

	if s.publisher == nil {
		return fmt.Errorf("analysis request %s: no event publisher configured", req.RequestID)
	}

	features, err := domain.DecodeFeatures(req.Features)
	if err != nil {
		res := domain.AnalysisResult{Operation: req.Operation, Error: err.Error()}
		s.publish(ctx, &domain.AnalysisEvent{RequestID: req.RequestID, Result: res, At: s.now().UTC()})
		return nil
	}
	s.Run(ctx, req.RequestID, req.Operation, features, req.Params)
	return nil
}

func (s *AnalysisService) publish(ctx context.Context, ev *domain.AnalysisEvent) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishAnalysis(ctx, ev)
	metrics.EventsPublished.WithLabelValues("analysis", metrics.Outcome(err)).Inc()
	if err != nil {
		slog.Warn("publish analysis event failed", "request_id", ev.RequestID, "error", err)
	}
}
