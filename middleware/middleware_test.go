package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	d "github.com/kharioki/skematic/dsl"
	"github.com/kharioki/skematic/middleware"
)

func userSchema() skematic.Schema[map[string]any] {
	return d.Object().
		Field("name", d.String().Min(1)).
		Field("email", d.String().Email()).
		MustBuild()
}

func TestValidateJSON_Success_StoresParsed(t *testing.T) {
	s := userSchema()
	var got skematic.Parsed[map[string]any]
	var found bool

	h := middleware.ValidateJSON(s, skematic.ParseOpt{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = middleware.ParsedFromContext[map[string]any](r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"alice","email":"a@example.com"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !found {
		t.Fatalf("expected Parsed in context")
	}
	if got.Value["name"] != "alice" {
		t.Fatalf("unexpected parsed value: %v", got.Value)
	}
	if got.Presence["/name"]&skematic.PresenceSeen == 0 {
		t.Fatalf("expected presence collected by default opt")
	}
}

func TestValidateJSON_Invalid_Returns400WithIssues(t *testing.T) {
	s := userSchema()
	h := middleware.ValidateJSON(s, skematic.ParseOpt{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run on invalid input")
	}))

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"","email":"nope"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	issues, ok := payload["issues"].([]any)
	if !ok || len(issues) != 2 {
		t.Fatalf("expected two issues, got %v", payload["issues"])
	}
}

func TestValidateJSON_DuplicateKey_RejectedByDefaultOpt(t *testing.T) {
	s := userSchema()
	h := middleware.ValidateJSON(s, skematic.ParseOpt{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run on duplicate keys")
	}))

	body := `{"name":"alice","email":"a@example.com","name":"bob"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate key, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "duplicate_key") {
		t.Fatalf("expected duplicate_key issue, body=%s", rec.Body.String())
	}
}
