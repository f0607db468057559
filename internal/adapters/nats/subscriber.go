package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/metrics"
)

// Subscriber implements ports.RequestSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing conn.
func NewSubscriber(conn *nats.Conn) (*Subscriber, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStreams(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeParseRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ParseRequest) error) error {
	return s.queueSubscribe(SubjectParseRequests, "parse-workers", func(msg *nats.Msg) {
		settle(msg, dispatch(ctx, "parse", msg.Data, handler))
	})
}

func (s *Subscriber) SubscribeAnalysisRequests(ctx context.Context, handler func(ctx context.Context, req *domain.AnalysisRequest) error) error {
	return s.queueSubscribe(SubjectAnalysisRequests, "analysis-workers", func(msg *nats.Msg) {
		settle(msg, dispatch(ctx, "analysis", msg.Data, handler))
	})
}

func (s *Subscriber) queueSubscribe(subject, group string, cb nats.MsgHandler) error {
	sub, err := s.js.QueueSubscribe(subject, group, cb,
		nats.Durable(group),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// disposition is how a delivered request is settled.
type disposition int

const (
	dispAck disposition = iota
	dispNak
	dispTerm
)

// dispatch decodes one request and runs handler on it.
func dispatch[T any](ctx context.Context, kind string, data []byte, handler func(context.Context, *T) error) disposition {
	var req T
	if err := json.Unmarshal(data, &req); err != nil {
		// redelivery cannot fix a malformed payload
		slog.Warn("dropping malformed request", "kind", kind, "error", err)
		metrics.RequestsConsumed.WithLabelValues(kind, "malformed").Inc()
		return dispTerm
	}
	if err := handler(ctx, &req); err != nil {
		metrics.RequestsConsumed.WithLabelValues(kind, metrics.OutcomeError).Inc()
		return dispNak
	}
	metrics.RequestsConsumed.WithLabelValues(kind, metrics.OutcomeOK).Inc()
	return dispAck
}

func settle(msg *nats.Msg, d disposition) {
	switch d {
	case dispTerm:
		_ = msg.Term()
	case dispNak:
		_ = msg.Nak()
	default:
		_ = msg.Ack()
	}
}

// Close unsubscribes. The connection is owned by the caller.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
}
