package usecases_test

import (
	"context"
	"sync"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// --- Mock DescriptionParser ---

type mockParser struct {
	parseFn    func(text string, ref *domain.Coordinate) domain.ParseResult
	classifyFn func(text string) domain.DescriptionType
	calls      int
}

func (m *mockParser) Parse(text string, ref *domain.Coordinate) domain.ParseResult {
	m.calls++
	if m.parseFn != nil {
		return m.parseFn(text, ref)
	}
	return domain.ParseResult{DescriptionType: domain.UnknownDescription, Confidence: domain.ConfidenceUnknown}
}

func (m *mockParser) Classify(text string) domain.DescriptionType {
	if m.classifyFn != nil {
		return m.classifyFn(text)
	}
	return domain.UnknownDescription
}

// --- Mock GeometryEngine ---

type mockEngine struct {
	runFn   func(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult
	catalog []domain.OperationInfo
}

func (m *mockEngine) Run(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult {
	if m.runFn != nil {
		return m.runFn(op, features, params)
	}
	return domain.AnalysisResult{Operation: op}
}

func (m *mockEngine) Catalog() []domain.OperationInfo { return m.catalog }

func (m *mockEngine) Describe(op domain.Operation) (domain.OperationInfo, bool) {
	for _, info := range m.catalog {
		if info.Name == op {
			return info, true
		}
	}
	return domain.OperationInfo{}, false
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	parsed   []*domain.ParseEvent
	analysis []*domain.AnalysisEvent
	err      error
}

func (m *mockPublisher) PublishParsed(ctx context.Context, ev *domain.ParseEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parsed = append(m.parsed, ev)
	return m.err
}

func (m *mockPublisher) PublishAnalysis(ctx context.Context, ev *domain.AnalysisEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysis = append(m.analysis, ev)
	return m.err
}
