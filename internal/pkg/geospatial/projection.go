package geospatial

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

const metersPerDegree = 111320.0

// LocalPlane is an equirectangular projection tangent at Origin. Planar
// distances are in meters and are good to a fraction of a percent over a
// county-sized extent.
type LocalPlane struct {
	Origin domain.Coordinate
	cosLat float64
}

// NewLocalPlane creates a projection centred on origin.
func NewLocalPlane(origin domain.Coordinate) LocalPlane {
	cos := math.Cos(toRad(origin.Lat))
	if cos < 1e-9 {
		cos = 1e-9
	}
	return LocalPlane{Origin: origin, cosLat: cos}
}

// Forward maps lng/lat to meters east/north of the origin.
func (p LocalPlane) Forward(c domain.Coordinate) domain.Coordinate {
	return domain.Coordinate{
		Lng: (c.Lng - p.Origin.Lng) * metersPerDegree * p.cosLat,
		Lat: (c.Lat - p.Origin.Lat) * metersPerDegree,
	}
}

// Inverse maps meters east/north of the origin back to lng/lat.
func (p LocalPlane) Inverse(c domain.Coordinate) domain.Coordinate {
	return domain.Coordinate{
		Lng: p.Origin.Lng + c.Lng/(metersPerDegree*p.cosLat),
		Lat: p.Origin.Lat + c.Lat/metersPerDegree,
	}
}

// Transform returns a copy of g with fn applied to every position. Extra
// ordinates (z, m) are kept.
func Transform(g *domain.Geometry, fn func(domain.Coordinate) domain.Coordinate) (*domain.Geometry, error) {
	if g == nil {
		return nil, nil
	}
	out := &domain.Geometry{Type: g.Type}

	if len(g.Coordinates) > 0 {
		var raw any
		if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
			return nil, fmt.Errorf("transform %s: %w", g.Type, err)
		}
		mapped, err := json.Marshal(mapPositions(raw, fn))
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", g.Type, err)
		}
		out.Coordinates = mapped
	}

	for i := range g.Geometries {
		child, err := Transform(&g.Geometries[i], fn)
		if err != nil {
			return nil, err
		}
		out.Geometries = append(out.Geometries, *child)
	}
	return out, nil
}

func mapPositions(v any, fn func(domain.Coordinate) domain.Coordinate) any {
	arr, ok := v.([]any)
	if !ok {
		return v
	}
	if len(arr) >= 2 {
		x, xok := arr[0].(float64)
		y, yok := arr[1].(float64)
		if xok && yok {
			c := fn(domain.Coordinate{Lng: x, Lat: y})
			pos := make([]any, len(arr))
			copy(pos, arr)
			pos[0], pos[1] = c.Lng, c.Lat
			return pos
		}
	}
	out := make([]any, len(arr))
	for i, item := range arr {
		out[i] = mapPositions(item, fn)
	}
	return out
}

// Vertices returns every position of g in document order.
func Vertices(g *domain.Geometry) ([]domain.Coordinate, error) {
	var out []domain.Coordinate
	_, err := Transform(g, func(c domain.Coordinate) domain.Coordinate {
		out = append(out, c)
		return c
	})
	return out, err
}
