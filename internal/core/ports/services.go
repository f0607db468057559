package ports

import (
	"context"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// DescriptionParser turns legal description text into a traverse result.
type DescriptionParser interface {
	Parse(text string, ref *domain.Coordinate) domain.ParseResult
	Classify(text string) domain.DescriptionType
}

// GeometryEngine runs catalog operations over parcel features.
type GeometryEngine interface {
	Run(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult
	Catalog() []domain.OperationInfo
	Describe(op domain.Operation) (domain.OperationInfo, bool)
}

// EventPublisher publishes parse and analysis results to a message broker.
type EventPublisher interface {
	PublishParsed(ctx context.Context, event *domain.ParseEvent) error
	PublishAnalysis(ctx context.Context, event *domain.AnalysisEvent) error
}

// RequestSubscriber consumes asynchronous parse and analysis requests.
type RequestSubscriber interface {
	SubscribeParseRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ParseRequest) error) error
	SubscribeAnalysisRequests(ctx context.Context, handler func(ctx context.Context, req *domain.AnalysisRequest) error) error
}
