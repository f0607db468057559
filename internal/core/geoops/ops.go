package geoops

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geos"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/geospatial"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/units"
)

func (e *Engine) buffer(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	meters := units.ToMeters(p.bufferDistance, p.bufferUnit)
	g, err := bufferMeters(features[0].Geometry, meters)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, errors.New("buffer produced an empty geometry")
	}
	return output(g, features[0], p), &domain.AnalysisMetadata{
		Distance: domain.Float(p.bufferDistance),
		Unit:     string(p.bufferUnit),
	}, nil
}

func (e *Engine) intersection(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	g, err := binary(features[0].Geometry, features[1].Geometry, (*geos.Geom).Intersection)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		// disjoint inputs: no result, no error
		return nil, nil, nil
	}
	return output(g, features[0], p), nil, nil
}

func (e *Engine) union(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	g, err := unionAll(features)
	if err != nil {
		return nil, nil, err
	}
	return output(g, features[0], p), &domain.AnalysisMetadata{
		FeatureCount: domain.Int(len(features)),
	}, nil
}

// Union folds features left to right with pairwise union. A single feature
// is returned unchanged.
func Union(features []domain.Feature) (domain.Feature, error) {
	switch len(features) {
	case 0:
		return domain.Feature{}, domain.ErrNoFeatures
	case 1:
		return features[0], nil
	}
	var g *domain.Geometry
	err := guard(func() error {
		var err error
		g, err = unionAll(features)
		return err
	})
	if err != nil {
		return domain.Feature{}, err
	}
	return domain.NewFeature(g, nil), nil
}

func unionAll(features []domain.Feature) (*domain.Geometry, error) {
	acc := features[0].Geometry
	for i, f := range features[1:] {
		next, err := binary(acc, f.Geometry, (*geos.Geom).Union)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i+1, err)
		}
		if next == nil {
			return nil, errors.New("union produced an empty geometry")
		}
		acc = next
	}
	return acc, nil
}

func (e *Engine) difference(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	g, err := binary(features[0].Geometry, features[1].Geometry, (*geos.Geom).Difference)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, errors.New("difference is empty: the first feature is covered by the second")
	}
	return output(g, features[0], p), nil, nil
}

func (e *Engine) area(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	total := 0.0
	for i, f := range features {
		m2, err := areaMeters(f.Geometry)
		if err != nil {
			return nil, nil, fmt.Errorf("feature %d: %w", i, err)
		}
		total += m2
	}
	v := units.FromSquareMeters(total, p.areaUnit)
	return v, &domain.AnalysisMetadata{
		Area:         domain.Float(v),
		Unit:         string(p.areaUnit),
		UnitLabel:    units.AreaLabel(p.areaUnit),
		FeatureCount: domain.Int(len(features)),
	}, nil
}

func (e *Engine) centroid(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	gm, err := toGeom(features[0].Geometry)
	if err != nil {
		return nil, nil, err
	}
	g, err := fromGeom(gm.Centroid())
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, errors.New("centroid of an empty geometry")
	}
	return output(g, features[0], p), nil, nil
}

func (e *Engine) distance(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	a, err := features[0].Geometry.Point()
	if err != nil {
		return nil, nil, fmt.Errorf("feature 0: %w", err)
	}
	b, err := features[1].Geometry.Point()
	if err != nil {
		return nil, nil, fmt.Errorf("feature 1: %w", err)
	}
	v := units.FromMeters(geospatial.Haversine(a, b), p.bufferUnit)
	return v, &domain.AnalysisMetadata{
		Distance: domain.Float(v),
		Unit:     string(p.bufferUnit),
	}, nil
}

func (e *Engine) simplify(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	gm, err := toGeom(features[0].Geometry)
	if err != nil {
		return nil, nil, err
	}
	g, err := fromGeom(gm.Simplify(p.tolerance))
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, errors.New("simplify collapsed the geometry")
	}
	return output(g, features[0], p), nil, nil
}
