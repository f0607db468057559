package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// loadOpenAPI finds api/openapi.yaml above the test directory and parses it.
func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if data, err := os.ReadFile(candidate); err == nil {
			loader := &openapi3.Loader{IsExternalRefsAllowed: false}
			doc, err := loader.LoadFromData(data)
			if err != nil {
				t.Fatalf("parse %s: %v", candidate, err)
			}
			return doc
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return nil
}

func TestOpenAPIDocument_Valid(t *testing.T) {
	doc := loadOpenAPI(t)
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	for _, path := range []string{
		"/v1/health",
		"/v1/ready",
		"/v1/legal-descriptions/parse",
		"/v1/legal-descriptions/classify",
		"/v1/analysis/operations",
		"/v1/analysis/{operation}",
		"/graphql",
	} {
		if doc.Paths.Find(path) == nil {
			t.Errorf("path %s not documented", path)
		}
	}

	for _, schema := range []string{
		"ParseRequest", "ParseResult", "Segment", "Bearing",
		"Feature", "FeatureCollection", "OperationInfo", "OperationParams",
		"AnalysisRequest", "AnalysisResult", "APIError",
	} {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("schema %s not documented", schema)
		}
	}
}

func TestOpenAPIDocument_Info(t *testing.T) {
	doc := loadOpenAPI(t)

	if doc.Info.Title != "TerraFusion Parcel API" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("unexpected version %q", doc.Info.Version)
	}
	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

// The Operation enum must list exactly the catalog.
func TestOpenAPIDocument_OperationEnum(t *testing.T) {
	doc := loadOpenAPI(t)

	documented := map[string]bool{}
	for _, v := range doc.Components.Schemas["Operation"].Value.Enum {
		documented[v.(string)] = true
	}
	for _, op := range domain.Operations {
		if !documented[string(op)] {
			t.Errorf("operation %s missing from the Operation enum", op)
		}
	}
	if len(documented) != len(domain.Operations) {
		t.Errorf("enum lists %d operations, catalog has %d", len(documented), len(domain.Operations))
	}
}

func TestOpenAPIDocument_ParseStatuses(t *testing.T) {
	doc := loadOpenAPI(t)

	op := doc.Paths.Find("/v1/legal-descriptions/parse").Post
	for _, code := range []int{200, 400, 422, 429} {
		if op.Responses.Status(code) == nil {
			t.Errorf("parse: status %d not documented", code)
		}
	}
}
