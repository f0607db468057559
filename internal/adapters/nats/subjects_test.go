package natsadapter_test

import (
	"testing"

	natsadapter "github.com/bsvalues/TerraFusionMono-sub005/internal/adapters/nats"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

func TestParsedSubject(t *testing.T) {
	tests := []struct {
		in   domain.DescriptionType
		want string
	}{
		{domain.MetesAndBounds, "parcel.events.parsed.metes_and_bounds"},
		{domain.LotBlock, "parcel.events.parsed.lot_block"},
		{"", "parcel.events.parsed.unknown"},
	}
	for _, tt := range tests {
		if got := natsadapter.ParsedSubject(tt.in); got != tt.want {
			t.Errorf("ParsedSubject(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestAnalysisSubject(t *testing.T) {
	if got := natsadapter.AnalysisSubject(domain.OpMerge); got != "parcel.events.analysis.merge" {
		t.Errorf("unexpected subject %s", got)
	}
	if got := natsadapter.AnalysisSubject("evil.>"); got != "parcel.events.analysis.unknown" {
		t.Errorf("unknown operations must not leak into the subject, got %s", got)
	}
}
