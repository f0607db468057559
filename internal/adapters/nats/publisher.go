package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// Subjects and streams.
const (
	SubjectParseRequests    = "parcel.requests.parse"
	SubjectAnalysisRequests = "parcel.requests.analysis"

	subjectParsedPrefix   = "parcel.events.parsed."
	subjectAnalysisPrefix = "parcel.events.analysis."

	StreamEvents   = "PARCEL_EVENTS"
	StreamRequests = "PARCEL_REQUESTS"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect dials NATS with reconnects enabled.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// EnsureStreams creates or updates the parcel streams.
func EnsureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      StreamEvents,
			Subjects:  []string{"parcel.events.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      StreamRequests,
			Subjects:  []string{"parcel.requests.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// NewPublisher enables JetStream on conn and ensures the streams exist.
func NewPublisher(conn *nats.Conn) (*Publisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStreams(js); err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishParsed(ctx context.Context, event *domain.ParseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ParsedSubject(event.Result.DescriptionType), data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishAnalysis(ctx context.Context, event *domain.AnalysisEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(AnalysisSubject(event.Result.Operation), data, nats.Context(ctx))
	return err
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// ParsedSubject is the event subject for a parse of the given type, e.g.
// parcel.events.parsed.metes_and_bounds.
func ParsedSubject(t domain.DescriptionType) string {
	if t == "" {
		t = domain.UnknownDescription
	}
	return subjectParsedPrefix + strings.ToLower(string(t))
}

// AnalysisSubject is the event subject for an operation. Names outside the
// catalog share the "unknown" token so callers cannot inject subject levels.
func AnalysisSubject(op domain.Operation) string {
	for _, known := range domain.Operations {
		if op == known {
			return subjectAnalysisPrefix + string(op)
		}
	}
	return subjectAnalysisPrefix + "unknown"
}
