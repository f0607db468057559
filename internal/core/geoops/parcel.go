package geoops

import (
	"errors"
	"fmt"
	"time"

	"github.com/twpayne/go-geos"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/units"
)

// Split widths, in meters. The cut strip is one foot wide and side B is
// whatever lies more than half a foot from side A.
const (
	splitStripMeters = units.MetersPerFoot
	splitGapMeters   = units.MetersPerFoot / 2
)

func (e *Engine) merge(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	original := 0.0
	ids := make([]string, 0, len(features))
	for i, f := range features {
		if !f.Geometry.IsAreal() {
			return nil, nil, fmt.Errorf("feature %d is not a polygon", i)
		}
		m2, err := areaMeters(f.Geometry)
		if err != nil {
			return nil, nil, fmt.Errorf("feature %d: %w", i, err)
		}
		original += m2
		if id := f.ParcelID(); id != "" {
			ids = append(ids, id)
		}
	}

	g, err := unionAll(features)
	if err != nil {
		return nil, nil, err
	}
	merged, err := areaMeters(g)
	if err != nil {
		return nil, nil, err
	}

	mergedArea := units.FromSquareMeters(merged, p.areaUnit)
	originalArea := units.FromSquareMeters(original, p.areaUnit)

	out := output(g, features[0], p)
	out.Properties["parcelId"] = e.newID()
	out.Properties["mergedArea"] = mergedArea
	out.Properties["originalArea"] = originalArea
	out.Properties["originalParcelIds"] = ids
	out.Properties["mergedAt"] = e.now().UTC().Format(time.RFC3339)

	return out, &domain.AnalysisMetadata{
		MergedArea:      domain.Float(mergedArea),
		OriginalArea:    domain.Float(originalArea),
		Unit:            string(p.areaUnit),
		UnitLabel:       units.AreaLabel(p.areaUnit),
		ParcelsAffected: domain.Int(len(features)),
	}, nil
}

func (e *Engine) split(features []domain.Feature, p params) (any, *domain.AnalysisMetadata, error) {
	parcel, line := features[0], features[1]
	if !parcel.Geometry.IsAreal() {
		return nil, nil, errors.New("first feature must be a polygon")
	}
	if line.Geometry == nil || (line.Geometry.Type != domain.GeometryLineString && line.Geometry.Type != domain.GeometryMultiLineString) {
		return nil, nil, errors.New("second feature must be a line")
	}

	plane, err := planeFor(parcel.Geometry)
	if err != nil {
		return nil, nil, err
	}
	sideA, err := projected(plane, func(gs ...*geos.Geom) (*geos.Geom, error) {
		strip := gs[1].Buffer(splitStripMeters, quadSegs)
		return gs[0].Difference(strip), nil
	}, parcel.Geometry, line.Geometry)
	if err != nil {
		return nil, nil, err
	}
	if sideA == nil {
		return nil, nil, errors.New("split line covers the whole parcel")
	}
	sideB, err := projected(plane, func(gs ...*geos.Geom) (*geos.Geom, error) {
		return gs[0].Difference(gs[1].Buffer(splitGapMeters, quadSegs)), nil
	}, parcel.Geometry, sideA)
	if err != nil {
		return nil, nil, err
	}
	if sideB == nil {
		return nil, nil, errors.New("split line does not divide the parcel")
	}

	original, err := areaMeters(parcel.Geometry)
	if err != nil {
		return nil, nil, err
	}
	originalArea := units.FromSquareMeters(original, p.areaUnit)

	parent := parcel.ParcelID()
	if parent == "" {
		parent = e.newID()
	}
	at := e.now().UTC().Format(time.RFC3339)

	out := make([]domain.Feature, 0, 2)
	for i, side := range []*domain.Geometry{sideA, sideB} {
		m2, err := areaMeters(side)
		if err != nil {
			return nil, nil, err
		}
		f := output(side, parcel, p)
		f.Properties["parcelId"] = fmt.Sprintf("%s-%c", parent, 'A'+i)
		f.Properties["parentParcelId"] = parent
		f.Properties["splitArea"] = units.FromSquareMeters(m2, p.areaUnit)
		f.Properties["originalArea"] = originalArea
		f.Properties["splitAt"] = at
		out = append(out, f)
	}

	return domain.NewFeatureCollection(out...), &domain.AnalysisMetadata{
		OriginalArea:    domain.Float(originalArea),
		Unit:            string(p.areaUnit),
		UnitLabel:       units.AreaLabel(p.areaUnit),
		ParcelsAffected: domain.Int(len(out)),
	}, nil
}
