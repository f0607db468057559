package legaldesc

import (
	"math"
	"regexp"
	"strings"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/geospatial"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/units"
)

// Planar step constants, degrees per meter.
const (
	latDegreesPerMeter = 1.0 / 111000.0
	lngDegreesPerMeter = 1.0 / 111321.0
)

const minPolygonSegments = 3

var thenceRe = regexp.MustCompile(`(?i)\bthence\b`)

// MsgMissingReference is reported when a traverse has no starting point.
const MsgMissingReference = "a reference point is required to parse a metes and bounds description"

// Traverse walks every "thence" call of text from ref. Calls lacking a bearing
// or distance are skipped and listed in SkippedClauses.
func Traverse(text string, ref *domain.Coordinate) domain.ParseResult {
	result := domain.ParseResult{
		DescriptionType: domain.MetesAndBounds,
		Segments:        []domain.Segment{},
		RawText:         text,
	}

	if ref == nil {
		result.Confidence = domain.ConfidenceLow
		result.ErrorMessage = MsgMissingReference
		return result
	}
	if !validCoordinate(*ref) {
		result.Confidence = domain.ConfidenceLow
		result.ErrorMessage = "reference point is outside the valid longitude/latitude range"
		return result
	}
	start := *ref
	result.ReferencePoint = &start

	ring := []domain.Coordinate{start}
	current := start

	for i, clause := range clauses(text) {
		bearing, bStart, bEnd, ok := findBearing(clause)
		if !ok {
			result.SkippedClauses = append(result.SkippedClauses, domain.SkippedClause{
				Index: i, Text: clause, Reason: "no bearing found",
			})
			continue
		}

		dist, _, _, ok := findDistance(clause[bEnd:])
		if !ok {
			dist, _, _, ok = findDistance(clause[:bStart])
		}
		if !ok {
			result.SkippedClauses = append(result.SkippedClauses, domain.SkippedClause{
				Index: i, Text: clause, Reason: "no distance found",
			})
			continue
		}

		next := Step(current, bearing, dist)
		result.Segments = append(result.Segments, domain.Segment{
			StartPoint: current,
			EndPoint:   next,
			Bearing:    bearing,
			Distance:   dist,
			Clause:     clause,
		})
		ring = append(ring, next)
		current = next
	}

	result.Confidence = confidenceFor(len(result.Segments))

	if len(result.Segments) >= minPolygonSegments {
		closed := append(ring, start)
		feature := domain.NewFeature(domain.NewPolygon(closed), map[string]any{
			"descriptionType":    string(domain.MetesAndBounds),
			"segmentCount":       len(result.Segments),
			"perimeterMeters":    perimeter(result.Segments),
			"closureErrorMeters": geospatial.Haversine(current, start),
		})
		result.PolygonFeature = &feature
	}

	return result
}

// Step advances from c along bearing b for distance d using the planar
// approximation.
func Step(c domain.Coordinate, b domain.Bearing, d domain.Distance) domain.Coordinate {
	meters := units.ToMeters(d.Magnitude, d.Unit)
	rad := b.Degrees * math.Pi / 180

	cosLat := math.Cos(c.Lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-12 {
		cosLat = 1e-12
	}

	return domain.Coordinate{
		Lng: c.Lng + meters*math.Sin(rad)*lngDegreesPerMeter/cosLat,
		Lat: c.Lat + meters*math.Cos(rad)*latDegreesPerMeter,
	}
}

// clauses returns the text following each "thence" marker.
func clauses(text string) []string {
	parts := thenceRe.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		out = append(out, strings.Trim(p, " \t\r\n;,."))
	}
	return out
}

func confidenceFor(resolved int) domain.Confidence {
	switch {
	case resolved >= minPolygonSegments:
		return domain.ConfidenceHigh
	case resolved > 0:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func perimeter(segments []domain.Segment) float64 {
	var total float64
	for _, s := range segments {
		total += units.ToMeters(s.Distance.Magnitude, s.Distance.Unit)
	}
	return total
}

func validCoordinate(c domain.Coordinate) bool {
	return !math.IsNaN(c.Lng) && !math.IsNaN(c.Lat) &&
		c.Lng >= -180 && c.Lng <= 180 && c.Lat >= -90 && c.Lat <= 90
}
