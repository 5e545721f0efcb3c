package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/metrics"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// testEnv holds the shared state for integration tests.
type testEnv struct {
	server *Server
	store  *store.Store
}

// newTestEnv creates a fresh test environment with an in-memory store and a
// fully wired Server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.OpenSQLite("")
	if err != nil {
		t.Fatalf("store.OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(DefaultConfig(), st, metrics.New(nil), logger)

	return &testEnv{server: srv, store: st}
}

// do executes an HTTP request against the test server and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

// jsonBody marshals v into a request body reader.
func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("jsonBody: %v", err)
	}
	return bytes.NewReader(data)
}

// decodeJSON unmarshals the recorder body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decodeJSON %q: %v", rr.Body.String(), err)
	}
}

// assertStatus fails the test if the recorded status differs from want.
func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rr.Code, want, rr.Body.String())
	}
}

// createKey issues a key through the HTTP surface and returns the secret.
func (e *testEnv) createKey(t *testing.T) string {
	t.Helper()
	rr := e.do(t, "POST", "/create", nil)
	assertStatus(t, rr, http.StatusOK)

	var resp model.Response
	decodeJSON(t, rr, &resp)
	if resp.APIKey == "" {
		t.Fatal("createKey: empty apiKey in response")
	}
	return resp.APIKey
}

// ---------------------------------------------------------------------------
// Probes, docs, observability
// ---------------------------------------------------------------------------

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	assertStatus(t, env.do(t, "GET", "/healthz", nil), http.StatusOK)

	rr := env.do(t, "GET", "/readyz", nil)
	assertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"store":"ok"`) {
		t.Errorf("readyz body = %s", rr.Body.String())
	}
}

func TestReadyzAfterStoreClose(t *testing.T) {
	env := newTestEnv(t)
	env.store.Close()

	assertStatus(t, env.do(t, "GET", "/readyz", nil), http.StatusServiceUnavailable)
}

func TestRootServesLandingPage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/", nil)
	assertStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "API Key Generator") {
		t.Error("landing page missing title")
	}
}

func TestOpenAPIDocument(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/openapi.json", nil)
	assertStatus(t, rr, http.StatusOK)

	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	decodeJSON(t, rr, &doc)
	if doc.OpenAPI == "" {
		t.Error("missing openapi version field")
	}
	for _, p := range []string{"/create", "/cekapi", "/admin/dashboard"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("openapi document missing path %s", p)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.createKey(t)

	rr := env.do(t, "GET", "/metrics", nil)
	assertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "apikeygen_keys_generated_total") {
		t.Error("metrics output missing key generation counter")
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/healthz", nil)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID on response")
	}
}

// ---------------------------------------------------------------------------
// Key lifecycle scenarios
// ---------------------------------------------------------------------------

func TestKeyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	secret := env.createKey(t)
	if !strings.HasPrefix(secret, "sk-") {
		t.Errorf("secret = %q, want sk- prefix", secret)
	}

	// Save a user bound to the key so it appears on the dashboard.
	rr := env.do(t, "POST", "/user/save", jsonBody(t, map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"apiKey":    secret,
	}))
	assertStatus(t, rr, http.StatusOK)

	// Validate the key, recording one usage event.
	rr = env.do(t, "POST", "/cekapi", jsonBody(t, map[string]string{"apiKey": secret}))
	assertStatus(t, rr, http.StatusOK)

	key, err := env.store.GetAPIKeyBySecret(ctx, secret)
	if err != nil {
		t.Fatalf("GetAPIKeyBySecret: %v", err)
	}
	if n, _ := env.store.CountUsageEvents(ctx, key.ID); n != 1 {
		t.Errorf("usage events = %d, want 1", n)
	}

	// The dashboard reports the key online.
	rr = env.do(t, "GET", "/admin/dashboard", nil)
	assertStatus(t, rr, http.StatusOK)

	var dash model.DashboardResponse
	decodeJSON(t, rr, &dash)
	if len(dash.Data) != 1 {
		t.Fatalf("dashboard rows = %d, want 1", len(dash.Data))
	}
	if dash.Data[0].Status != model.StatusOnline {
		t.Errorf("status = %q, want online", dash.Data[0].Status)
	}
	if dash.Data[0].Key != secret {
		t.Errorf("key = %q, want %q", dash.Data[0].Key, secret)
	}
}

func TestCheckRejectsUnknownKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	secret := env.createKey(t)

	rr := env.do(t, "POST", "/cekapi", jsonBody(t, map[string]string{"apiKey": "sk-not-issued"}))
	assertStatus(t, rr, http.StatusUnauthorized)

	// The rejection leaves no usage trace behind.
	key, err := env.store.GetAPIKeyBySecret(ctx, secret)
	if err != nil {
		t.Fatalf("GetAPIKeyBySecret: %v", err)
	}
	if n, _ := env.store.CountUsageEvents(ctx, key.ID); n != 0 {
		t.Errorf("usage events = %d, want 0", n)
	}
}

func TestCheckRejectsEmptyBody(t *testing.T) {
	env := newTestEnv(t)

	assertStatus(t, env.do(t, "POST", "/cekapi", nil), http.StatusBadRequest)
	assertStatus(t, env.do(t, "POST", "/cekapi", strings.NewReader("{}")), http.StatusBadRequest)
}

func TestUserSaveRequiresValidKey(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/user/save", jsonBody(t, map[string]string{
		"firstName": "Eve",
		"email":     "eve@example.com",
		"apiKey":    "sk-bogus",
	}))
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Admin scenarios
// ---------------------------------------------------------------------------

func TestAdminRegisterAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	creds := map[string]string{"email": "admin@example.com", "password": "supersecret"}

	assertStatus(t, env.do(t, "POST", "/admin/register", jsonBody(t, creds)), http.StatusOK)
	assertStatus(t, env.do(t, "POST", "/admin/login", jsonBody(t, creds)), http.StatusOK)

	rr := env.do(t, "POST", "/admin/login", jsonBody(t, map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	}))
	assertStatus(t, rr, http.StatusUnauthorized)

	var resp model.Response
	decodeJSON(t, rr, &resp)
	if resp.Success {
		t.Error("expected success=false on bad login")
	}
}

func TestAdminDashboardEmpty(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/admin/dashboard", nil)
	assertStatus(t, rr, http.StatusOK)

	var dash model.DashboardResponse
	decodeJSON(t, rr, &dash)
	if !dash.Success {
		t.Error("expected success=true")
	}
	if len(dash.Data) != 0 {
		t.Errorf("rows = %d, want 0", len(dash.Data))
	}
}
