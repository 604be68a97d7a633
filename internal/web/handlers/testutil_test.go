package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Planner: config.PlannerConfig{Provider: config.ProviderNone},
		Engine:  config.EngineConfig{MinAcceptRatio: 0.6},
	}
}

// testCatalog returns the built-in layout catalog
func testCatalog(t *testing.T) *layout.Catalog {
	t.Helper()
	c, err := layout.Builtin()
	if err != nil {
		t.Fatalf("failed to load built-in catalog: %v", err)
	}
	return c
}

// testLogger discards everything
func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestAlbumsHandler creates an albums handler that plans locally
func newTestAlbumsHandler(t *testing.T) *AlbumsHandler {
	t.Helper()
	g := album.NewGenerator(testCatalog(t), album.Options{MinAcceptRatio: 0.6})
	return NewAlbumsHandler(g, NewJobManager(), testLogger())
}

// testPhotos returns two portraits, two landscapes and a near-square photo
func testPhotos() []photo.Photo {
	return []photo.Photo{
		{ID: "p1", Width: 2000, Height: 3000, URL: "https://cdn.example.com/p1.jpg"},
		{ID: "p2", Width: 2000, Height: 3000, URL: "https://cdn.example.com/p2.jpg"},
		{ID: "p3", Width: 3000, Height: 2000, URL: "https://cdn.example.com/p3.jpg"},
		{ID: "p4", Width: 3000, Height: 2000, URL: "https://cdn.example.com/p4.jpg"},
		{ID: "p5", AspectRatio: 1, URL: "https://cdn.example.com/p5.jpg"},
	}
}

// jsonRequest creates a request with a JSON-encoded body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
