package units_test

import (
	"math"
	"testing"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/units"
)

func TestAreaRoundTrip(t *testing.T) {
	for _, unit := range []units.AreaUnit{units.Acres, units.Hectares, units.SquareFeet, units.SquareMiles, units.SquareMeters} {
		m2 := 12345.678
		back := units.ToSquareMeters(units.FromSquareMeters(m2, unit), unit)
		if math.Abs(back-m2) > 1e-9*m2 {
			t.Errorf("%s: round trip %f -> %f", unit, m2, back)
		}
	}
}

func TestFromSquareMeters_Factors(t *testing.T) {
	tests := []struct {
		unit units.AreaUnit
		want float64
	}{
		{units.Acres, 0.247105},
		{units.Hectares, 0.1},
		{units.SquareFeet, 10763.9},
		{units.SquareMiles, 0.000386102},
	}
	for _, tt := range tests {
		got := units.FromSquareMeters(1000, tt.unit)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %g, got %g", tt.unit, tt.want, got)
		}
	}
}

func TestAreaUnitOrDefault(t *testing.T) {
	if got := units.AreaUnitOrDefault(""); got != units.Acres {
		t.Errorf("expected acres default, got %s", got)
	}
	if got := units.AreaUnitOrDefault("Hectares"); got != units.Hectares {
		t.Errorf("expected hectares, got %s", got)
	}
	if got := units.AreaLabel(units.SquareFeet); got != "Square Feet" {
		t.Errorf("unexpected label %q", got)
	}
}

func TestLengthUnitOrDefault(t *testing.T) {
	if got := units.LengthUnitOrDefault("", domain.Feet); got != domain.Feet {
		t.Errorf("empty unit: expected feet, got %s", got)
	}
	if got := units.LengthUnitOrDefault("furlongs", domain.Feet); got != domain.Meters {
		t.Errorf("unsupported unit: expected meters, got %s", got)
	}
	if got := units.LengthUnitOrDefault("ft", domain.Meters); got != domain.Feet {
		t.Errorf("ft: expected feet, got %s", got)
	}
}

func TestLengthConversions(t *testing.T) {
	if got := units.ToMeters(100, domain.Feet); math.Abs(got-30.48) > 1e-9 {
		t.Errorf("100 ft: expected 30.48 m, got %f", got)
	}
	if got := units.FromMeters(1609.344, domain.Miles); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected 1 mile, got %f", got)
	}
	if got := units.ToMeters(5, domain.LengthUnit("cubits")); got != 5 {
		t.Errorf("unknown unit should pass through as meters, got %f", got)
	}
}
