package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studypal/internal/app/features/health"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestServe(t *testing.T) {
	tests := []struct {
		name         string
		pingErr      error
		wantStatus   int
		wantStatusJS string
		wantDatabase string
	}{
		{"connected", nil, http.StatusOK, "ok", "connected"},
		{"ping fails", errors.New("server selection timeout: 10.0.0.3"), http.StatusServiceUnavailable, "error", "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(fakePinger{err: tt.pingErr}, zap.NewNop())
			rec := httptest.NewRecorder()
			h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if strings.Contains(rec.Body.String(), "10.0.0.3") {
				t.Errorf("response leaked driver error: %s", rec.Body.String())
			}

			var resp struct {
				Status   string `json:"status"`
				Database string `json:"database"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatusJS || resp.Database != tt.wantDatabase {
				t.Errorf("got %+v", resp)
			}
		})
	}
}
