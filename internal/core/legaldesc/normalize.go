package legaldesc

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/units"
)

var (
	// <number><optional space><unit>. Thousands separators are allowed.
	distanceRe = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?|\.\d+)\s*(feet\b|foot\b|ft\b\.?|meters\b|meter\b|metres\b|metre\b|m\b|')`)

	// Quadrant call: start direction, angle, end direction. The end direction
	// may run straight into the distance ("N45°E100ft"), so it is closed by any
	// non-letter rather than a word boundary.
	quadrantRe = regexp.MustCompile(`(?i)\b(north|south|east|west|[nsew])\.?\s*` +
		`(\d+(?:\.\d+)?)\s*(?:°|º|˚|degrees?|deg\.?|d)?\s*` +
		`(?:(\d+)\s*(?:'|′|’|minutes?|min\.?)\s*)?` +
		`(?:(\d+(?:\.\d+)?)\s*(?:"|″|”|''|seconds?|sec\.?)\s*)?` +
		`(north|south|east|west|[nsew])(?:[^a-z]|$)`)

	// Cardinal call with no end direction. An angle is only consumed when it
	// carries a degree marker, so a following distance stays intact.
	cardinalRe = regexp.MustCompile(`(?i)\b(north|south|east|west|[nsew])` +
		`(\.?(?:\s*\d+(?:\.\d+)?\s*(?:°|º|˚|degrees?\b))?)(?:[^a-z]|$)`)
)

// ParseDistance reads the first "<number> <unit>" pair in tok.
func ParseDistance(tok string) (domain.Distance, bool) {
	d, _, _, ok := findDistance(tok)
	return d, ok
}

// NormalizeLengthUnit maps a raw spelling to feet or meters.
func NormalizeLengthUnit(raw string) (domain.LengthUnit, bool) {
	u, ok := units.ParseLengthUnit(strings.TrimSuffix(raw, "."))
	if !ok || (u != domain.Feet && u != domain.Meters) {
		return "", false
	}
	return u, true
}

func findDistance(s string) (domain.Distance, int, int, bool) {
	m := distanceRe.FindStringSubmatchIndex(s)
	if m == nil {
		return domain.Distance{}, 0, 0, false
	}
	num := strings.ReplaceAll(s[m[2]:m[3]], ",", "")
	mag, err := strconv.ParseFloat(num, 64)
	if err != nil || mag < 0 {
		return domain.Distance{}, 0, 0, false
	}
	unit, ok := NormalizeLengthUnit(s[m[4]:m[5]])
	if !ok {
		return domain.Distance{}, 0, 0, false
	}
	return domain.Distance{Magnitude: mag, Unit: unit}, m[0], m[1], true
}

// ParseBearing reads the first quadrant or cardinal call in tok and resolves
// it to an absolute compass angle.
func ParseBearing(tok string) (domain.Bearing, bool) {
	b, _, _, ok := findBearing(tok)
	return b, ok
}

func findBearing(s string) (domain.Bearing, int, int, bool) {
	if m := quadrantRe.FindStringSubmatchIndex(s); m != nil {
		start, ok := direction(s[m[2]:m[3]])
		if !ok {
			return domain.Bearing{}, 0, 0, false
		}
		end, _ := direction(s[m[10]:m[11]])

		deg, err := strconv.ParseFloat(s[m[4]:m[5]], 64)
		if err != nil {
			return domain.Bearing{}, 0, 0, false
		}
		var minutes int
		if m[6] >= 0 {
			minutes, err = strconv.Atoi(s[m[6]:m[7]])
			if err != nil || minutes > 59 {
				return domain.Bearing{}, 0, 0, false
			}
		}
		var seconds float64
		if m[8] >= 0 {
			seconds, err = strconv.ParseFloat(s[m[8]:m[9]], 64)
			if err != nil || seconds >= 60 {
				return domain.Bearing{}, 0, 0, false
			}
		}

		quadrant := deg + float64(minutes)/60 + seconds/3600
		return domain.Bearing{
			Degrees: ResolveBearing(start, end, quadrant),
			Minutes: minutes,
			Seconds: int(math.Round(seconds)) % 60,
		}, m[0], m[11], true
	}

	if m := cardinalRe.FindStringSubmatchIndex(s); m != nil {
		start, ok := direction(s[m[2]:m[3]])
		if !ok {
			return domain.Bearing{}, 0, 0, false
		}
		return domain.Bearing{Degrees: ResolveBearing(start, 0, 0)}, m[0], m[5], true
	}

	return domain.Bearing{}, 0, 0, false
}

// direction maps a direction word or letter to N, S, E or W.
func direction(s string) (byte, bool) {
	if s == "" {
		return 0, false
	}
	switch c := strings.ToUpper(s)[0]; c {
	case 'N', 'S', 'E', 'W':
		return c, true
	}
	return 0, false
}

// ResolveBearing converts a quadrant angle to an absolute angle in [0,360).
// end is 0 when the call names a single direction.
func ResolveBearing(start, end byte, deg float64) float64 {
	var angle float64
	switch {
	case start == 'N' && end == 'E':
		angle = 90 - deg
	case start == 'S' && end == 'E':
		angle = 90 + deg
	case start == 'S' && end == 'W':
		angle = 270 - deg
	case start == 'N' && end == 'W':
		angle = 270 + deg
	case start == 'E':
		angle = 90
	case start == 'S':
		angle = 180
	case start == 'W':
		angle = 270
	default:
		angle = 0
	}
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}
