package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Coordinate is a planar (lng, lat) position. It serialises as a GeoJSON
// position array.
type Coordinate struct {
	Lng float64
	Lat float64
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lng, c.Lat})
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pos []float64
	if err := json.Unmarshal(data, &pos); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if len(pos) < 2 {
		return fmt.Errorf("coordinate: need [lng, lat], got %d values", len(pos))
	}
	c.Lng, c.Lat = pos[0], pos[1]
	return nil
}

// GeoJSON geometry type names.
const (
	GeometryPoint           = "Point"
	GeometryLineString      = "LineString"
	GeometryPolygon         = "Polygon"
	GeometryMultiPoint      = "MultiPoint"
	GeometryMultiLineString = "MultiLineString"
	GeometryMultiPolygon    = "MultiPolygon"
	GeometryCollection      = "GeometryCollection"
)

// Geometry is a GeoJSON geometry. Coordinates are kept raw so that every
// geometry type round-trips untouched.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []Geometry      `json:"geometries,omitempty"`
}

// NewPolygon builds a single-ring polygon geometry.
func NewPolygon(ring []Coordinate) *Geometry {
	raw, _ := json.Marshal([][]Coordinate{ring})
	return &Geometry{Type: GeometryPolygon, Coordinates: raw}
}

// NewPoint builds a point geometry.
func NewPoint(c Coordinate) *Geometry {
	raw, _ := json.Marshal(c)
	return &Geometry{Type: GeometryPoint, Coordinates: raw}
}

// NewLineString builds a line geometry.
func NewLineString(coords []Coordinate) *Geometry {
	raw, _ := json.Marshal(coords)
	return &Geometry{Type: GeometryLineString, Coordinates: raw}
}

// Point decodes the coordinates of a Point geometry.
func (g *Geometry) Point() (Coordinate, error) {
	var c Coordinate
	if g == nil || g.Type != GeometryPoint {
		return c, fmt.Errorf("expected Point geometry")
	}
	err := json.Unmarshal(g.Coordinates, &c)
	return c, err
}

// PolygonRings returns every polygon of a Polygon or MultiPolygon geometry as
// a list of rings. Other geometry types yield nil.
func (g *Geometry) PolygonRings() ([][][]Coordinate, error) {
	if g == nil {
		return nil, nil
	}
	switch g.Type {
	case GeometryPolygon:
		var rings [][]Coordinate
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("polygon coordinates: %w", err)
		}
		return [][][]Coordinate{rings}, nil
	case GeometryMultiPolygon:
		var polys [][][]Coordinate
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("multipolygon coordinates: %w", err)
		}
		return polys, nil
	case GeometryCollection:
		var out [][][]Coordinate
		for i := range g.Geometries {
			polys, err := g.Geometries[i].PolygonRings()
			if err != nil {
				return nil, err
			}
			out = append(out, polys...)
		}
		return out, nil
	}
	return nil, nil
}

// IsAreal reports whether the geometry can carry an area.
func (g *Geometry) IsAreal() bool {
	return g != nil && (g.Type == GeometryPolygon || g.Type == GeometryMultiPolygon)
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// NewFeature wraps a geometry. A nil props map becomes an empty object.
func NewFeature(g *Geometry, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}
	return Feature{Type: "Feature", Geometry: g, Properties: props}
}

// ParcelID returns the identifier a feature is known by: the parcelId or id
// property, falling back to the feature id.
func (f Feature) ParcelID() string {
	for _, key := range []string{"parcelId", "parcel_id", "id"} {
		if v, ok := f.Properties[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return ""
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features in a collection.
func NewFeatureCollection(features ...Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

var ErrNoFeatures = errors.New("no features supplied")

// DecodeFeatures accepts a JSON array of features, a FeatureCollection or a
// single Feature.
func DecodeFeatures(raw json.RawMessage) ([]Feature, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNoFeatures
	}

	if trimmed[0] == '[' {
		var features []Feature
		if err := json.Unmarshal(trimmed, &features); err != nil {
			return nil, fmt.Errorf("decode feature list: %w", err)
		}
		return features, nil
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		var fc FeatureCollection
		if err := json.Unmarshal(trimmed, &fc); err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		return fc.Features, nil
	case "Feature":
		var f Feature
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, fmt.Errorf("decode feature: %w", err)
		}
		return []Feature{f}, nil
	default:
		return nil, fmt.Errorf("unsupported GeoJSON type %q", probe.Type)
	}
}
