package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/charmbracelet/log"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := layout.Builtin()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	g := album.NewGenerator(c, album.Options{MinAcceptRatio: 0.6})
	s := NewServer(&config.Config{}, g, 0, "127.0.0.1", log.New(io.Discard))
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"GET", "/api/v1/health", "", http.StatusOK},
		{"GET", "/api/v1/config", "", http.StatusOK},
		{"GET", "/api/v1/layouts", "", http.StatusOK},
		{"GET", "/api/v1/layouts/layout20", "", http.StatusOK},
		{"GET", "/api/v1/layouts/layout20/template", "", http.StatusOK},
		{"GET", "/api/v1/layouts/layout99", "", http.StatusNotFound},
		{"POST", "/api/v1/albums/generate", `{"photos":[{"id":"a","aspectRatio":1.5}]}`, http.StatusOK},
		{"POST", "/api/v1/albums/edit", `{"operation":"reorder"}`, http.StatusBadRequest},
		{"GET", "/api/v1/albums/jobs/unknown", "", http.StatusNotFound},
		{"DELETE", "/api/v1/albums/jobs/unknown", "", http.StatusNotFound},
		{"GET", "/api/v1/albums/generate", "", http.StatusMethodNotAllowed},
		{"GET", "/nope", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, srv.URL+tc.path, bytes.NewBufferString(tc.body))
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("expected status %d, got %d\nBody: %s", tc.wantStatus, resp.StatusCode, body)
			}
		})
	}
}

func TestRoutes_StartJob(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/albums/jobs", "application/json",
		bytes.NewBufferString(`{"photos":[{"id":"a","width":3000,"height":2000},{"id":"b","width":2000,"height":3000}]}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", resp.StatusCode)
	}
	var started map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id, _ := started["job_id"].(string); id == "" {
		t.Errorf("expected job id, got %v", started)
	}
}
