// Package units holds the conversion tables shared by the traverse parser and
// the geometry engine. All tables are read-only after init.
package units

import (
	"strings"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// MetersPerFoot is the international foot.
const MetersPerFoot = 0.3048

// AreaUnit names a unit of area.
type AreaUnit string

const (
	Acres        AreaUnit = "acres"
	Hectares     AreaUnit = "hectares"
	SquareFeet   AreaUnit = "sqfeet"
	SquareMiles  AreaUnit = "sqmiles"
	SquareMeters AreaUnit = "sqmeters"
)

// Factors from square meters.
var areaFactors = map[AreaUnit]float64{
	Acres:        0.000247105,
	Hectares:     0.0001,
	SquareFeet:   10.7639,
	SquareMiles:  0.000000386102,
	SquareMeters: 1,
}

var areaLabels = map[AreaUnit]string{
	Acres:        "Acres",
	Hectares:     "Hectares",
	SquareFeet:   "Square Feet",
	SquareMiles:  "Square Miles",
	SquareMeters: "Square Meters",
}

var areaAliases = map[string]AreaUnit{
	"acres":         Acres,
	"acre":          Acres,
	"ac":            Acres,
	"hectares":      Hectares,
	"hectare":       Hectares,
	"ha":            Hectares,
	"sqfeet":        SquareFeet,
	"square_feet":   SquareFeet,
	"squarefeet":    SquareFeet,
	"sqft":          SquareFeet,
	"sqmiles":       SquareMiles,
	"square_miles":  SquareMiles,
	"squaremiles":   SquareMiles,
	"sqmi":          SquareMiles,
	"sqmeters":      SquareMeters,
	"square_meters": SquareMeters,
	"squaremeters":  SquareMeters,
	"sqm":           SquareMeters,
}

// Meters per unit.
var lengthFactors = map[domain.LengthUnit]float64{
	domain.Feet:       MetersPerFoot,
	domain.Meters:     1,
	domain.Yards:      0.9144,
	domain.Miles:      1609.344,
	domain.Kilometers: 1000,
}

var lengthAliases = map[string]domain.LengthUnit{
	"feet":       domain.Feet,
	"foot":       domain.Feet,
	"ft":         domain.Feet,
	"'":          domain.Feet,
	"meters":     domain.Meters,
	"meter":      domain.Meters,
	"metres":     domain.Meters,
	"metre":      domain.Meters,
	"m":          domain.Meters,
	"yards":      domain.Yards,
	"yard":       domain.Yards,
	"yd":         domain.Yards,
	"miles":      domain.Miles,
	"mile":       domain.Miles,
	"mi":         domain.Miles,
	"kilometers": domain.Kilometers,
	"kilometer":  domain.Kilometers,
	"km":         domain.Kilometers,
}

// ParseAreaUnit resolves a spelling; ok is false for unknown units.
func ParseAreaUnit(s string) (AreaUnit, bool) {
	u, ok := areaAliases[strings.ToLower(strings.TrimSpace(s))]
	return u, ok
}

// AreaUnitOrDefault resolves s, falling back to acres.
func AreaUnitOrDefault(s string) AreaUnit {
	if u, ok := ParseAreaUnit(s); ok {
		return u
	}
	return Acres
}

// FromSquareMeters converts m² into unit.
func FromSquareMeters(m2 float64, unit AreaUnit) float64 {
	f, ok := areaFactors[unit]
	if !ok {
		f = areaFactors[Acres]
	}
	return m2 * f
}

// ToSquareMeters is the inverse of FromSquareMeters.
func ToSquareMeters(v float64, unit AreaUnit) float64 {
	f, ok := areaFactors[unit]
	if !ok {
		f = areaFactors[Acres]
	}
	return v / f
}

// AreaLabel returns a display label such as "Square Feet".
func AreaLabel(unit AreaUnit) string {
	if l, ok := areaLabels[unit]; ok {
		return l
	}
	return string(unit)
}

// ParseLengthUnit resolves a spelling; ok is false for unknown units.
func ParseLengthUnit(s string) (domain.LengthUnit, bool) {
	u, ok := lengthAliases[strings.ToLower(strings.TrimSpace(s))]
	return u, ok
}

// LengthUnitOrDefault resolves s. Unsupported units map to meters, empty
// input maps to def.
func LengthUnitOrDefault(s string, def domain.LengthUnit) domain.LengthUnit {
	if strings.TrimSpace(s) == "" {
		return def
	}
	if u, ok := ParseLengthUnit(s); ok {
		return u
	}
	return domain.Meters
}

// ToMeters converts v in unit to meters. Unknown units are taken as meters.
func ToMeters(v float64, unit domain.LengthUnit) float64 {
	if f, ok := lengthFactors[unit]; ok {
		return v * f
	}
	return v
}

// FromMeters converts meters into unit.
func FromMeters(m float64, unit domain.LengthUnit) float64 {
	if f, ok := lengthFactors[unit]; ok {
		return m / f
	}
	return m
}
