package natsadapter

import (
	"context"
	"errors"
	"testing"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

func TestDispatch(t *testing.T) {
	var got *domain.ParseRequest
	ok := func(_ context.Context, req *domain.ParseRequest) error {
		got = req
		return nil
	}
	failing := func(context.Context, *domain.ParseRequest) error { return errors.New("engine down") }

	tests := []struct {
		name    string
		data    string
		handler func(context.Context, *domain.ParseRequest) error
		want    disposition
	}{
		{"handled", `{"requestId":"r-1","text":"thence North 10 feet"}`, ok, dispAck},
		{"handler error is retried", `{"requestId":"r-2"}`, failing, dispNak},
		{"malformed payload is dropped", `{"requestId":`, ok, dispTerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := dispatch(context.Background(), "parse", []byte(tt.data), tt.handler); d != tt.want {
				t.Errorf("expected disposition %d, got %d", tt.want, d)
			}
		})
	}

	if got == nil || got.RequestID != "r-1" {
		t.Errorf("handler did not receive the decoded request: %+v", got)
	}
}

func TestDispatch_AnalysisRequest(t *testing.T) {
	d := dispatch(context.Background(), "analysis", []byte(`{"requestId":"a-1","operation":"area"}`),
		func(_ context.Context, req *domain.AnalysisRequest) error {
			if req.Operation != domain.OpArea {
				return errors.New("wrong operation")
			}
			return nil
		})
	if d != dispAck {
		t.Errorf("expected ack, got %d", d)
	}
}
