package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TestUser is an authenticated caller for handler tests.
type TestUser struct {
	ID    string
	Name  string
	Email string
}

// Student returns a TestUser with a fresh identity-provider subject.
func Student() TestUser {
	return TestUser{
		ID:    "user_" + uuid.NewString()[:8],
		Name:  "Test Student",
		Email: "student@test.com",
	}
}

// WithUser adds a user to the request context, bypassing session and token
// middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

// NewAuthenticatedRequest creates a request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewJSONRequest creates an authenticated request whose body is body
// encoded as JSON. A string body is sent as-is.
func NewJSONRequest(t *testing.T, method, target string, body any, user TestUser) *http.Request {
	t.Helper()

	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		if raw, err = json.Marshal(b); err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return WithUser(req, user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with assertions.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks that the body contains expected.
func (r *ResponseRecorder) AssertContains(t testing.TB, expected string) {
	t.Helper()
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// DecodeJSON decodes the body into v.
func (r *ResponseRecorder) DecodeJSON(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}

// TestTokenSecret signs identity tokens in tests.
const TestTokenSecret = "test-token-secret-0123456789abcdef"

// NewSessionManager returns a SessionManager with fixed test secrets.
func NewSessionManager(t testing.TB) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(auth.Config{
		SessionKey:  "0123456789abcdef0123456789abcdef",
		TokenSecret: TestTokenSecret,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}
