// Package geoops is the geometric operation engine: a fixed catalog of
// whole-feature operations over GeoJSON parcels, backed by GEOS.
//
// Every operation is synchronous and free of shared state, so an Engine can
// serve concurrent callers. Failures never escape as panics or errors; they
// are reported in AnalysisResult.Error.
package geoops

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/units"
)

type params struct {
	bufferDistance float64
	bufferUnit     domain.LengthUnit
	tolerance      float64
	preserve       bool
	areaUnit       units.AreaUnit
}

type handler func(e *Engine, features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error)

type entry struct {
	title       string
	minFeatures int
	run         handler
}

var catalog = map[domain.Operation]entry{
	domain.OpBuffer:       {"Buffer Analysis", 1, (*Engine).buffer},
	domain.OpIntersection: {"Intersection Analysis", 2, (*Engine).intersection},
	domain.OpUnion:        {"Union Analysis", 2, (*Engine).union},
	domain.OpDifference:   {"Difference Analysis", 2, (*Engine).difference},
	domain.OpArea:         {"Area Calculation", 1, (*Engine).area},
	domain.OpCentroid:     {"Centroid Calculation", 1, (*Engine).centroid},
	domain.OpDistance:     {"Distance Measurement", 2, (*Engine).distance},
	domain.OpSimplify:     {"Geometry Simplification", 1, (*Engine).simplify},
	domain.OpMerge:        {"Parcel Merge", 2, (*Engine).merge},
	domain.OpSplit:        {"Parcel Split", 2, (*Engine).split},
}

// Engine runs catalog operations. The clock and id generator are only used
// to stamp merge and split results.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how new parcel identifiers are minted.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog lists the supported operations in display order.
func (e *Engine) Catalog() []domain.OperationInfo {
	out := make([]domain.OperationInfo, 0, len(domain.Operations))
	for _, op := range domain.Operations {
		info, _ := e.Describe(op)
		out = append(out, info)
	}
	return out
}

// Describe returns the catalog entry for op.
func (e *Engine) Describe(op domain.Operation) (domain.OperationInfo, bool) {
	ent, ok := catalog[op]
	if !ok {
		return domain.OperationInfo{}, false
	}
	return domain.OperationInfo{Name: op, Title: ent.title, MinFeatures: ent.minFeatures}, true
}

// Run executes op over features.
func (e *Engine) Run(op domain.Operation, features []domain.Feature, p domain.OperationParams) domain.AnalysisResult {
	res := domain.AnalysisResult{Operation: op}

	ent, ok := catalog[op]
	if !ok {
		res.Error = fmt.Sprintf("unsupported operation %q", op)
		return res
	}
	if len(features) < ent.minFeatures {
		res.Error = fmt.Sprintf("%s requires at least %d feature(s), got %d", op, ent.minFeatures, len(features))
		return res
	}

	err := guard(func() error {
		out, meta, err := ent.run(e, features, resolve(p))
		if err != nil {
			return err
		}
		res.Result, res.Metadata = out, meta
		return nil
	})
	if err != nil {
		res.Result, res.Metadata = nil, nil
		res.Error = fmt.Sprintf("%s failed: %v", op, err)
	}
	return res
}

func resolve(p domain.OperationParams) params {
	out := params{
		bufferDistance: domain.DefaultBufferDistance,
		bufferUnit:     units.LengthUnitOrDefault(string(p.BufferUnit), domain.DefaultBufferUnit),
		tolerance:      domain.DefaultToleranceDistance,
		areaUnit:       units.AreaUnitOrDefault(p.AreaUnit),
	}
	if p.BufferDistance != nil {
		out.bufferDistance = *p.BufferDistance
	}
	if p.ToleranceDistance != nil && *p.ToleranceDistance >= 0 {
		out.tolerance = *p.ToleranceDistance
	}
	if p.PreserveProperties != nil {
		out.preserve = *p.PreserveProperties
	}
	return out
}

// output wraps g in a feature, copying src properties when asked to.
func output(g *domain.Geometry, src domain.Feature, p params) domain.Feature {
	props := map[string]any{}
	if p.preserve {
		for k, v := range src.Properties {
			props[k] = v
		}
	}
	return domain.NewFeature(g, props)
}
