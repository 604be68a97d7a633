package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLayoutsHandler_List(t *testing.T) {
	c := testCatalog(t)
	handler := NewLayoutsHandler(c)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/layouts", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var result LayoutListResponse
	parseJSONResponse(t, recorder, &result)

	if len(result.Layouts) != c.Len() {
		t.Fatalf("expected %d layouts, got %d", c.Len(), len(result.Layouts))
	}
	if result.Fallback != "layout19" {
		t.Errorf("expected fallback layout19, got %s", result.Fallback)
	}
	fallbacks := 0
	for i, l := range result.Layouts {
		if l.ID != c.All()[i].ID {
			t.Errorf("layout %d: expected %s, got %s", i, c.All()[i].ID, l.ID)
		}
		if l.FrameCount != len(l.Frames) {
			t.Errorf("layout %s: frame count %d but %d frames", l.ID, l.FrameCount, len(l.Frames))
		}
		if l.Fallback {
			fallbacks++
		}
	}
	if fallbacks != 1 {
		t.Errorf("expected exactly one fallback layout, got %d", fallbacks)
	}
}

func TestLayoutsHandler_Get(t *testing.T) {
	handler := NewLayoutsHandler(testCatalog(t))

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"known", "layout20", http.StatusOK},
		{"unknown", "layout99", http.StatusNotFound},
		{"missing", "", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/layouts/x", nil), map[string]string{"id": tc.id})
			recorder := httptest.NewRecorder()
			handler.Get(recorder, req)

			assertStatusCode(t, recorder, tc.wantStatus)
			if tc.wantStatus != http.StatusOK {
				return
			}
			var l LayoutResponse
			parseJSONResponse(t, recorder, &l)
			if l.ID != "layout20" || l.FrameCount != 2 {
				t.Errorf("unexpected layout: %+v", l)
			}
		})
	}
}

func TestLayoutsHandler_Template(t *testing.T) {
	handler := NewLayoutsHandler(testCatalog(t))

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/layouts/layout19/template", nil), map[string]string{"id": "layout19"})
	recorder := httptest.NewRecorder()
	handler.Template(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "image/svg+xml")
	if !strings.Contains(recorder.Body.String(), "<svg") {
		t.Errorf("expected svg markup, got %q", recorder.Body.String())
	}

	req = requestWithChiParams(httptest.NewRequest("GET", "/api/v1/layouts/nope/template", nil), map[string]string{"id": "nope"})
	recorder = httptest.NewRecorder()
	handler.Template(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "layout not found")
}
