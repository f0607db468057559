package legaldesc_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/legaldesc"
)

const squareDescription = "Commencing at the northwest corner, Beginning at the point of beginning; " +
	"thence North 100 feet; thence East 100 feet; thence South 100 feet; " +
	"thence West 100 feet to the point of beginning."

func origin() *domain.Coordinate { return &domain.Coordinate{Lng: 0, Lat: 0} }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.DescriptionType
	}{
		{"metes and bounds", squareDescription, domain.MetesAndBounds},
		{"quadrant calls", "Beginning at an iron pin; thence N 45°30' E 210.5 feet", domain.MetesAndBounds},
		{"section township range", "The NE 1/4 of Section 12, Township 3 North, Range 5 East, W.M.", domain.SectionTownshipRange},
		{"abbreviated str", "SW quarter of Sec. 4, T2N, R3E", domain.SectionTownshipRange},
		{"lot block", "Lot 5, Block 3, Sunny Acres Subdivision, according to the plat thereof", domain.LotBlock},
		{"ambiguous resolves to metes and bounds", "Lot 5, Block 3 of the recorded plat, beginning at the NE corner; thence South 40 feet", domain.MetesAndBounds},
		{"lot without plat reference", "Lot 5, Block 3", domain.UnknownDescription},
		{"free text", "The old Jenkins farm by the river", domain.UnknownDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := legaldesc.Classify(tt.text); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParse_TwoSegmentsNoPolygon(t *testing.T) {
	text := "Beginning at the point of beginning; thence North 0° East 100 feet; thence South 0° East 100 feet;"
	res := legaldesc.NewParser().Parse(text, origin())

	if res.DescriptionType != domain.MetesAndBounds {
		t.Fatalf("expected METES_AND_BOUNDS, got %s", res.DescriptionType)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	if res.Confidence != domain.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", res.Confidence)
	}
	if res.PolygonFeature != nil {
		t.Error("expected no polygon for two segments")
	}
}

func TestParse_ClosesSquare(t *testing.T) {
	res := legaldesc.NewParser().Parse(squareDescription, origin())

	if len(res.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d (skipped %+v)", len(res.Segments), res.SkippedClauses)
	}
	if res.Confidence != domain.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", res.Confidence)
	}

	last := res.Segments[len(res.Segments)-1].EndPoint
	if math.Abs(last.Lng) > 1e-6 || math.Abs(last.Lat) > 1e-6 {
		t.Errorf("traverse does not close: last point %+v", last)
	}

	if res.PolygonFeature == nil {
		t.Fatal("expected polygon feature")
	}
	rings, err := res.PolygonFeature.Geometry.PolygonRings()
	if err != nil {
		t.Fatalf("decode polygon: %v", err)
	}
	ring := rings[0][0]
	if len(ring) != 6 {
		t.Fatalf("expected 6 ring positions (reference, 4 calls, closing), got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Errorf("ring is not explicitly closed: %+v vs %+v", ring[0], ring[len(ring)-1])
	}
	if closure, ok := res.PolygonFeature.Properties["closureErrorMeters"].(float64); !ok || closure > 0.01 {
		t.Errorf("unexpected closure error %v", res.PolygonFeature.Properties["closureErrorMeters"])
	}
}

func TestParse_StepDistances(t *testing.T) {
	res := legaldesc.NewParser().Parse("Beginning at a stake; thence North 111 meters; thence East 30.48 m; thence South 50 feet", origin())
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(res.Segments))
	}
	north := res.Segments[0].EndPoint
	if math.Abs(north.Lat-0.001) > 1e-12 || math.Abs(north.Lng) > 1e-15 {
		t.Errorf("111 m north should move 0.001°, got %+v", north)
	}
	east := res.Segments[1].EndPoint
	if math.Abs(east.Lng-30.48/111321.0/math.Cos(0.001*math.Pi/180)) > 1e-12 {
		t.Errorf("unexpected east step %+v", east)
	}
}

func TestParse_CompactCalls(t *testing.T) {
	res := legaldesc.NewParser().Parse("Beginning at a point; thence N45°E100ft; thence S45°E 100ft; thence W 50 ft", origin())
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d (skipped %+v)", len(res.Segments), res.SkippedClauses)
	}
	if len(res.SkippedClauses) != 0 {
		t.Errorf("unexpected skipped clauses %+v", res.SkippedClauses)
	}
	if res.Confidence != domain.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", res.Confidence)
	}
	first := res.Segments[0]
	if first.Bearing.Degrees != 45 {
		t.Errorf("expected azimuth 45, got %v", first.Bearing.Degrees)
	}
	if first.Distance != (domain.Distance{Magnitude: 100, Unit: domain.Feet}) {
		t.Errorf("expected 100 feet, got %+v", first.Distance)
	}
	if res.Segments[2].Bearing.Degrees != 270 || res.Segments[2].Distance.Magnitude != 50 {
		t.Errorf("unexpected final call %+v", res.Segments[2])
	}
	if res.PolygonFeature == nil {
		t.Fatal("expected polygon feature")
	}
}

func TestParse_MissingReferencePoint(t *testing.T) {
	res := legaldesc.NewParser().Parse(squareDescription, nil)
	if res.Confidence != domain.ConfidenceLow {
		t.Errorf("expected low confidence, got %s", res.Confidence)
	}
	if res.ErrorMessage == "" {
		t.Error("expected error message")
	}
	if res.PolygonFeature != nil {
		t.Error("expected no polygon without reference point")
	}
}

func TestParse_SkipsUnusableClauses(t *testing.T) {
	text := "Beginning at the point of beginning; thence along the old fence to a stake; " +
		"thence North 100 feet; thence East a short way; thence South 100 feet"
	res := legaldesc.NewParser().Parse(text, origin())

	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	if len(res.SkippedClauses) != 2 {
		t.Fatalf("expected 2 skipped clauses, got %+v", res.SkippedClauses)
	}
	if res.SkippedClauses[0].Reason != "no bearing found" || res.SkippedClauses[0].Index != 0 {
		t.Errorf("unexpected first skip %+v", res.SkippedClauses[0])
	}
	if res.SkippedClauses[1].Reason != "no distance found" || res.SkippedClauses[1].Index != 2 {
		t.Errorf("unexpected second skip %+v", res.SkippedClauses[1])
	}
	if res.ErrorMessage != "" {
		t.Errorf("skipped clauses must not fail the parse, got %q", res.ErrorMessage)
	}
}

func TestParse_ConfidenceMonotonic(t *testing.T) {
	calls := []string{"North 10 feet", "East 10 feet", "South 10 feet", "West 10 feet", "North 5 feet"}
	prev := -1
	for n := 0; n <= len(calls); n++ {
		text := "Beginning at a point 10 feet east of the north corner"
		for _, c := range calls[:n] {
			text += "; thence " + c
		}
		res := legaldesc.NewParser().Parse(text, origin())
		if len(res.Segments) != n {
			t.Fatalf("n=%d: expected %d segments, got %d", n, n, len(res.Segments))
		}
		rank := res.Confidence.Rank()
		if rank < prev {
			t.Errorf("n=%d: confidence dropped to %s", n, res.Confidence)
		}
		prev = rank
	}
}

func TestParse_Stubs(t *testing.T) {
	p := legaldesc.NewParser()

	str := p.Parse("The NE 1/4 of Section 12, Township 3 North, Range 5 East", origin())
	if str.DescriptionType != domain.SectionTownshipRange || str.Confidence != domain.ConfidenceMedium {
		t.Errorf("unexpected STR result %s/%s", str.DescriptionType, str.Confidence)
	}
	if str.ErrorMessage != legaldesc.MsgSectionTownshipRange {
		t.Errorf("unexpected STR message %q", str.ErrorMessage)
	}

	lb := p.Parse("Lot 7, Block 2, Riverside Addition, per plat recorded in Volume 3", nil)
	if lb.DescriptionType != domain.LotBlock || lb.ErrorMessage != legaldesc.MsgLotBlock {
		t.Errorf("unexpected lot/block result %+v", lb)
	}

	unk := p.Parse("somewhere over the rainbow", nil)
	if unk.DescriptionType != domain.UnknownDescription || unk.Confidence != domain.ConfidenceUnknown {
		t.Errorf("unexpected unknown result %+v", unk)
	}

	empty := p.Parse("   ", nil)
	if empty.ErrorMessage != legaldesc.MsgEmptyText {
		t.Errorf("unexpected empty-text result %+v", empty)
	}
}

func TestParseResult_JSON(t *testing.T) {
	res := legaldesc.NewParser().Parse(squareDescription, origin())
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, key := range []string{`"descriptionType":"METES_AND_BOUNDS"`, `"confidence":"high"`, `"polygonFeature"`, `"referencePoint":[0,0]`} {
		if !strings.Contains(body, key) {
			t.Errorf("expected %s in %s", key, body)
		}
	}
}
