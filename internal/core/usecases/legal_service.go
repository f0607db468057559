package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/ports"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/metrics"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/telemetry"
)

// LegalDescriptionService parses legal descriptions and announces the results.
type LegalDescriptionService struct {
	parser    ports.DescriptionParser
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewLegalDescriptionService creates a new LegalDescriptionService. publisher
// may be nil.
func NewLegalDescriptionService(parser ports.DescriptionParser, publisher ports.EventPublisher) *LegalDescriptionService {
	return &LegalDescriptionService{parser: parser, publisher: publisher, now: time.Now}
}

// Classify returns the description type of text.
func (s *LegalDescriptionService) Classify(ctx context.Context, text string) domain.DescriptionType {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanClassify)
	defer span.End()

	kind := s.parser.Classify(text)
	span.SetAttributes(attribute.String(telemetry.AttrDescriptionType, string(kind)))
	return kind
}

// Parse resolves text against ref. requestID tags the published event and
// may be empty.
func (s *LegalDescriptionService) Parse(ctx context.Context, requestID, text string, ref *domain.Coordinate) domain.ParseResult {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanParse)
	defer span.End()

	res := s.parser.Parse(text, ref)

	span.SetAttributes(
		attribute.String(telemetry.AttrDescriptionType, string(res.DescriptionType)),
		attribute.String(telemetry.AttrConfidence, string(res.Confidence)),
		attribute.Int(telemetry.AttrSegments, len(res.Segments)),
	)
	metrics.DescriptionsParsed.WithLabelValues(string(res.DescriptionType), string(res.Confidence)).Inc()
	metrics.ClausesSkipped.Add(float64(len(res.SkippedClauses)))

	log := slog.Default().With("request_id", requestID, "type", res.DescriptionType)
	for _, sc := range res.SkippedClauses {
		log.Warn("traverse clause skipped", "index", sc.Index, "reason", sc.Reason)
	}
	if res.ErrorMessage != "" {
		log.Warn("legal description not resolved", "confidence", res.Confidence, "error", res.ErrorMessage)
	} else {
		log.Debug("legal description parsed", "segments", len(res.Segments))
	}

	s.publish(ctx, &domain.ParseEvent{RequestID: requestID, Result: res, At: s.now().UTC()})
	return res
}

// HandleRequest serves an asynchronous parse request. The result reaches the
// caller through the published event.
func (s *LegalDescriptionService) HandleRequest(ctx context.Context, req *domain.ParseRequest) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanHandleParse)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrRequestID, req.RequestID))

	if s.publisher == nil {
		return fmt.Errorf("parse request %s: no event publisher configured", req.RequestID)
	}
	s.Parse(ctx, req.RequestID, req.Text, req.ReferencePoint)
	return nil
}

func (s *LegalDescriptionService) publish(ctx context.Context, ev *domain.ParseEvent) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishParsed(ctx, ev)
	metrics.EventsPublished.WithLabelValues("parsed", metrics.Outcome(err)).Inc()
	if err != nil {
		slog.Warn("publish parse event failed", "request_id", ev.RequestID, "error", err)
	}
}
