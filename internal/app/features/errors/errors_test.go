package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorLogger_Write(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantField  string
	}{
		{"validation", apierr.Validation("title", "Title is required."), http.StatusBadRequest, "Title is required.", "title"},
		{"conflict", apierr.Conflict("Duplicate material."), http.StatusConflict, "Duplicate material.", ""},
		{"not found", apierr.NotFound("Material not found."), http.StatusNotFound, "Material not found.", ""},
		{"forbidden", apierr.Forbidden("Members only."), http.StatusForbidden, "Members only.", ""},
		{"unauthenticated", apierr.Unauthenticated("Authentication required."), http.StatusUnauthorized, "Authentication required.", ""},
		{"wrapped validation", fmt.Errorf("create: %w", apierr.Validation("url", "Bad URL.")), http.StatusBadRequest, "Bad URL.", "url"},
		{"dependency", apierr.Dependency("insert material", fmt.Errorf("connection reset")), http.StatusInternalServerError, genericMessage, ""},
		{"unclassified", fmt.Errorf("boom"), http.StatusInternalServerError, genericMessage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := NewErrorLogger(zap.NewNop())
			rec := httptest.NewRecorder()
			el.Write(rec, httptest.NewRequest(http.MethodPost, "/materials", nil), "create material", tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMsg)
			}
			if resp.Field != tt.wantField {
				t.Errorf("field = %q, want %q", resp.Field, tt.wantField)
			}
		})
	}
}

func TestErrorLogger_DependencyIsLoggedNotLeaked(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	el := NewErrorLogger(zap.New(core))
	rec := httptest.NewRecorder()

	el.Write(rec, httptest.NewRequest(http.MethodGet, "/materials", nil), "list materials failed",
		apierr.Dependency("find", fmt.Errorf("secret driver detail")))

	if got := logs.FilterMessage("list materials failed").Len(); got != 1 {
		t.Fatalf("logged %d entries, want 1", got)
	}
	if body := rec.Body.String(); strings.Contains(body, "secret driver detail") {
		t.Errorf("response leaked internal error: %s", body)
	}
}

func TestErrorLogger_ClientErrorsAreNotLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := NewErrorLogger(zap.New(core))

	el.Write(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "x", apierr.NotFound("nope"))

	if logs.Len() != 0 {
		t.Errorf("client error logged %d entries, want 0", logs.Len())
	}
}
