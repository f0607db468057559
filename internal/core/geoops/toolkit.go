package geoops

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twpayne/go-geos"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/geospatial"
)

// Segments per quarter circle used for buffers.
const quadSegs = 8

var errNoGeometry = errors.New("feature has no geometry")

// guard turns a GEOS panic (invalid input, topology exception) into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geometry toolkit: %v", r)
		}
	}()
	return fn()
}

func toGeom(g *domain.Geometry) (*geos.Geom, error) {
	if g == nil {
		return nil, errNoGeometry
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}
	geom, err := geos.NewGeomFromGeoJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("read %s geometry: %w", g.Type, err)
	}
	if g.IsAreal() && !geom.IsValid() {
		return nil, fmt.Errorf("invalid %s: %s", g.Type, geom.IsValidReason())
	}
	return geom, nil
}

// fromGeom converts back to GeoJSON. Empty geometries map to nil.
func fromGeom(g *geos.Geom) (*domain.Geometry, error) {
	if g == nil || g.IsEmpty() {
		return nil, nil
	}
	var out domain.Geometry
	if err := json.Unmarshal([]byte(g.ToGeoJSON(-1)), &out); err != nil {
		return nil, fmt.Errorf("decode toolkit output: %w", err)
	}
	return &out, nil
}

// planeFor centres a local metric projection on the bounding box of g.
func planeFor(g *domain.Geometry) (geospatial.LocalPlane, error) {
	verts, err := geospatial.Vertices(g)
	if err != nil {
		return geospatial.LocalPlane{}, err
	}
	if len(verts) == 0 {
		return geospatial.LocalPlane{}, errNoGeometry
	}
	minX, minY, maxX, maxY := verts[0].Lng, verts[0].Lat, verts[0].Lng, verts[0].Lat
	for _, v := range verts[1:] {
		minX, maxX = min(minX, v.Lng), max(maxX, v.Lng)
		minY, maxY = min(minY, v.Lat), max(maxY, v.Lat)
	}
	return geospatial.NewLocalPlane(domain.Coordinate{Lng: (minX + maxX) / 2, Lat: (minY + maxY) / 2}), nil
}

// projected runs fn on geometries projected to plane and projects the
// result back to lng/lat.
func projected(plane geospatial.LocalPlane, fn func(gs ...*geos.Geom) (*geos.Geom, error), in ...*domain.Geometry) (*domain.Geometry, error) {
	geoms := make([]*geos.Geom, 0, len(in))
	for _, g := range in {
		p, err := geospatial.Transform(g, plane.Forward)
		if err != nil {
			return nil, err
		}
		geom, err := toGeom(p)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, geom)
	}

	var out *domain.Geometry
	err := guard(func() error {
		res, err := fn(geoms...)
		if err != nil {
			return err
		}
		out, err = fromGeom(res)
		return err
	})
	if err != nil || out == nil {
		return nil, err
	}
	return geospatial.Transform(out, plane.Inverse)
}

// binary applies a set operation in lng/lat space. The local projection is
// affine, so set operations give the same topology either way.
func binary(a, b *domain.Geometry, op func(x, y *geos.Geom) *geos.Geom) (*domain.Geometry, error) {
	ga, err := toGeom(a)
	if err != nil {
		return nil, err
	}
	gb, err := toGeom(b)
	if err != nil {
		return nil, err
	}
	var out *domain.Geometry
	err = guard(func() error {
		out, err = fromGeom(op(ga, gb))
		return err
	})
	return out, err
}

// areaMeters is the toolkit area of g in m², measured in a local plane
// centred on g. Points and lines have zero area.
func areaMeters(g *domain.Geometry) (float64, error) {
	plane, err := planeFor(g)
	if err != nil {
		return 0, err
	}
	p, err := geospatial.Transform(g, plane.Forward)
	if err != nil {
		return 0, err
	}
	geom, err := toGeom(p)
	if err != nil {
		return 0, err
	}
	var m2 float64
	err = guard(func() error {
		m2 = geom.Area()
		return nil
	})
	return m2, err
}

func bufferMeters(g *domain.Geometry, meters float64) (*domain.Geometry, error) {
	plane, err := planeFor(g)
	if err != nil {
		return nil, err
	}
	return projected(plane, func(gs ...*geos.Geom) (*geos.Geom, error) {
		return gs[0].Buffer(meters, quadSegs), nil
	}, g)
}
