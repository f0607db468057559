package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/bsvalues/TerraFusionMono-sub005/internal/adapters/http"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/legaldesc"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/usecases"
)

// ---- Mocks ----

type mockEngine struct {
	runFn func(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult
}

var catalog = []domain.OperationInfo{
	{Name: domain.OpBuffer, Title: "Buffer Analysis", MinFeatures: 1},
	{Name: domain.OpUnion, Title: "Union Analysis", MinFeatures: 2},
	{Name: domain.OpArea, Title: "Area Calculation", MinFeatures: 1},
}

func (m *mockEngine) Run(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult {
	if m.runFn != nil {
		return m.runFn(op, features, params)
	}
	return domain.AnalysisResult{Operation: op}
}

func (m *mockEngine) Catalog() []domain.OperationInfo { return catalog }

func (m *mockEngine) Describe(op domain.Operation) (domain.OperationInfo, bool) {
	for _, info := range catalog {
		if info.Name == op {
			return info, true
		}
	}
	return domain.OperationInfo{}, false
}

type mockBroker struct{ connected bool }

func (m mockBroker) Connected() bool { return m.connected }

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

// ---- Helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Legal:    usecases.NewLegalDescriptionService(legaldesc.NewParser(), nil),
		Analysis: usecases.NewAnalysisService(&mockEngine{}, nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func withEngine(e *mockEngine) func(*handler.Dependencies) {
	return func(d *handler.Dependencies) { d.Analysis = usecases.NewAnalysisService(e, nil) }
}

func post(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

const squareFeature = `{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]},"properties":{}}`

// ---- Legal description handlers ----

func TestParse_MetesAndBounds(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"text":"Beginning at an iron pin; thence North 100 feet; thence East 100 feet; thence South 100 feet; thence West 100 feet","referencePoint":[-122.68,45.52]}`
	status, data := post(t, app, "/v1/legal-descriptions/parse", body)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}

	var res domain.ParseResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.DescriptionType != domain.MetesAndBounds || res.Confidence != domain.ConfidenceHigh {
		t.Errorf("unexpected result %s/%s", res.DescriptionType, res.Confidence)
	}
	if len(res.Segments) != 4 || res.PolygonFeature == nil {
		t.Errorf("expected 4 segments and a polygon, got %d segments", len(res.Segments))
	}
}

func TestParse_MissingReferenceIs422(t *testing.T) {
	app := setupApp(makeDeps())

	status, data := post(t, app, "/v1/legal-descriptions/parse", `{"text":"Beginning at a stake; thence North 10 feet"}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, data)
	}
	var res domain.ParseResult
	_ = json.Unmarshal(data, &res)
	if res.ErrorMessage == "" {
		t.Error("expected errorMessage in body")
	}
}

func TestParse_StubIs200(t *testing.T) {
	app := setupApp(makeDeps())

	status, data := post(t, app, "/v1/legal-descriptions/parse", `{"text":"The NE 1/4 of Section 12, Township 3 North, Range 5 East"}`)
	if status != 200 {
		t.Fatalf("expected 200 for a recognised stub, got %d: %s", status, data)
	}
}

func TestParse_BadBody(t *testing.T) {
	app := setupApp(makeDeps())

	for _, body := range []string{`not json`, `{}`, `{"text":"x","referencePoint":[1]}`} {
		status, data := post(t, app, "/v1/legal-descriptions/parse", body)
		if status != 400 {
			t.Errorf("%s: expected 400, got %d", body, status)
			continue
		}
		var apiErr handler.APIError
		if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Code != "bad_request" {
			t.Errorf("%s: expected bad_request envelope, got %s", body, data)
		}
	}
}

func TestClassify(t *testing.T) {
	app := setupApp(makeDeps())

	status, data := post(t, app, "/v1/legal-descriptions/classify", `{"text":"Lot 5, Block 3, Sunny Acres Subdivision"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res map[string]string
	_ = json.Unmarshal(data, &res)
	if res["descriptionType"] != string(domain.LotBlock) {
		t.Errorf("expected LOT_BLOCK, got %v", res)
	}

	if status, _ := post(t, app, "/v1/legal-descriptions/classify", `{"text":"  "}`); status != 400 {
		t.Errorf("expected 400 for blank text, got %d", status)
	}
}

// ---- Analysis handlers ----

func TestListOperations(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/analysis/operations", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("expected ETag header")
	}
	var ops []domain.OperationInfo
	_ = json.NewDecoder(resp.Body).Decode(&ops)
	if len(ops) != len(catalog) {
		t.Errorf("expected %d operations, got %d", len(catalog), len(ops))
	}
}

func TestRunOperation_Success(t *testing.T) {
	var gotParams domain.OperationParams
	engine := &mockEngine{
		runFn: func(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult {
			gotParams = params
			return domain.AnalysisResult{Operation: op, Result: 247.1, Metadata: &domain.AnalysisMetadata{Unit: "acres", UnitLabel: "Acres"}}
		},
	}
	app := setupApp(makeDeps(withEngine(engine)))

	status, data := post(t, app, "/v1/analysis/area", `{"features":[`+squareFeature+`],"params":{"areaUnit":"acres"}}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	if gotParams.AreaUnit != "acres" {
		t.Errorf("params not forwarded: %+v", gotParams)
	}
	var res domain.AnalysisResult
	_ = json.Unmarshal(data, &res)
	if res.Result != 247.1 {
		t.Errorf("unexpected result %v", res.Result)
	}
	if res.Metadata == nil || res.Metadata.Unit != "acres" || res.Metadata.UnitLabel != "Acres" {
		t.Errorf("unexpected metadata %+v", res.Metadata)
	}
}

func TestRunOperation_Preconditions(t *testing.T) {
	called := false
	engine := &mockEngine{
		runFn: func(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult {
			called = true
			return domain.AnalysisResult{Operation: op}
		},
	}
	app := setupApp(makeDeps(withEngine(engine)))

	tests := []struct {
		name, path, body, code string
	}{
		{"unknown operation", "/v1/analysis/teleport", `{"features":[` + squareFeature + `]}`, "unknown_operation"},
		{"too few features", "/v1/analysis/union", `{"features":[` + squareFeature + `]}`, "bad_request"},
		{"no features", "/v1/analysis/area", `{}`, "bad_request"},
		{"bad geojson", "/v1/analysis/area", `{"features":{"type":"Point"}}`, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := post(t, app, tt.path, tt.body)
			if status != 400 {
				t.Fatalf("expected 400, got %d: %s", status, data)
			}
			var apiErr handler.APIError
			_ = json.Unmarshal(data, &apiErr)
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
		})
	}
	if called {
		t.Error("engine must not run when preconditions fail")
	}
}

func TestRunOperation_ToolkitFailureIs422(t *testing.T) {
	engine := &mockEngine{
		runFn: func(op domain.Operation, features []domain.Feature, params domain.OperationParams) domain.AnalysisResult {
			return domain.AnalysisResult{Operation: op, Error: "buffer failed: geometry toolkit: IllegalArgumentException"}
		},
	}
	app := setupApp(makeDeps(withEngine(engine)))

	status, data := post(t, app, "/v1/analysis/buffer", `{"features":`+squareFeature+`}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, data)
	}
	if !strings.Contains(string(data), "IllegalArgumentException") {
		t.Errorf("expected toolkit error in body, got %s", data)
	}
}

// ---- GraphQL ----

func TestGraphQL_Classify(t *testing.T) {
	app := setupApp(makeDeps())

	status, data := post(t, app, "/graphql", `{"query":"{ classify(text: \"Lot 2, Block 9, Oak Ridge plat\") }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res struct {
		Data struct {
			Classify string `json:"classify"`
		} `json:"data"`
	}
	_ = json.Unmarshal(data, &res)
	if res.Data.Classify != string(domain.LotBlock) {
		t.Errorf("expected LOT_BLOCK, got %s", data)
	}
}

func TestGraphQL_ParseLegalDescription(t *testing.T) {
	app := setupApp(makeDeps())

	q := `{"query":"query($t: String!, $p: [Float!]) { parseLegalDescription(text: $t, referencePoint: $p) { descriptionType confidence segments } }",` +
		`"variables":{"t":"Beginning at a stake; thence North 10 feet; thence East 10 feet; thence South 10 feet","p":[0,0]}}`
	status, data := post(t, app, "/graphql", q)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res struct {
		Data struct {
			Parse struct {
				DescriptionType string           `json:"descriptionType"`
				Confidence      string           `json:"confidence"`
				Segments        []domain.Segment `json:"segments"`
			} `json:"parseLegalDescription"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if res.Data.Parse.Confidence != "high" || len(res.Data.Parse.Segments) != 3 {
		t.Errorf("unexpected parse %s", data)
	}
}

func TestGraphQL_AnalyzePrecondition(t *testing.T) {
	app := setupApp(makeDeps())

	q := `{"query":"query($f: JSON!) { analyze(operation: \"union\", features: $f) { operation error } }","variables":{"f":[` + squareFeature + `]}}`
	_, data := post(t, app, "/graphql", q)
	if !strings.Contains(string(data), "requires at least 2") {
		t.Errorf("expected precondition error, got %s", data)
	}
}

// ---- System ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name string
		opt  func(*handler.Dependencies)
		want int
	}{
		{"nothing configured", func(*handler.Dependencies) {}, 200},
		{"all up", func(d *handler.Dependencies) {
			d.Events = mockBroker{connected: true}
			d.Cache = mockPinger{}
		}, 200},
		{"broker down", func(d *handler.Dependencies) { d.Events = mockBroker{} }, 503},
		{"cache down", func(d *handler.Dependencies) { d.Cache = mockPinger{err: errors.New("dial tcp: refused")} }, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps(tt.opt))
			resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.RateLimitMax = 2 }))

	var last int
	for i := 0; i < 3; i++ {
		resp, _ := app.Test(httptest.NewRequest("GET", "/v1/analysis/operations", nil), -1)
		last = resp.StatusCode
	}
	if last != 429 {
		t.Errorf("expected 429 on the third request, got %d", last)
	}
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Error("expected X-Request-ID header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff header")
	}
}
