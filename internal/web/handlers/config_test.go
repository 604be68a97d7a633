package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Prithvi-997/origin-brew/internal/config"
)

func getConfig(t *testing.T, cfg *config.Config) ConfigResponse {
	t.Helper()
	handler := NewConfigHandler(cfg, testCatalog(t))

	req := httptest.NewRequest("GET", "/api/v1/config", nil)
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")
	var result ConfigResponse
	parseJSONResponse(t, recorder, &result)
	return result
}

func findProvider(providers []ProviderInfo, name string) *ProviderInfo {
	for i := range providers {
		if providers[i].Name == name {
			return &providers[i]
		}
	}
	return nil
}

func TestConfigHandler_Get_ProviderOrder(t *testing.T) {
	result := getConfig(t, &config.Config{})

	expectedOrder := []string{"openai", "gemini", "ollama"}
	if len(result.Providers) != len(expectedOrder) {
		t.Fatalf("expected %d providers, got %d", len(expectedOrder), len(result.Providers))
	}
	for i, expected := range expectedOrder {
		if result.Providers[i].Name != expected {
			t.Errorf("expected provider '%s' at index %d, got '%s'", expected, i, result.Providers[i].Name)
		}
	}
}

func TestConfigHandler_Get_Availability(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		provider  string
		available bool
	}{
		{"openai with token", &config.Config{OpenAI: config.OpenAIConfig{Token: "sk-test"}}, "openai", true},
		{"openai without token", &config.Config{}, "openai", false},
		{"gemini with key", &config.Config{Gemini: config.GeminiConfig{APIKey: "key"}}, "gemini", true},
		{"gemini without key", &config.Config{}, "gemini", false},
		{"ollama is local", &config.Config{}, "ollama", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := getConfig(t, tc.cfg)
			p := findProvider(result.Providers, tc.provider)
			if p == nil {
				t.Fatalf("expected %s provider in response", tc.provider)
			}
			if p.Available != tc.available {
				t.Errorf("expected %s available=%v, got %v", tc.provider, tc.available, p.Available)
			}
		})
	}
}

func TestConfigHandler_Get_ActiveProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{"explicit", &config.Config{Planner: config.PlannerConfig{Provider: "ollama"}, OpenAI: config.OpenAIConfig{Token: "t"}}, "ollama"},
		{"first with credentials", &config.Config{Gemini: config.GeminiConfig{APIKey: "k"}}, "gemini"},
		{"none", &config.Config{}, "none"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := getConfig(t, tc.cfg).ActiveProvider; got != tc.want {
				t.Errorf("expected active provider %q, got %q", tc.want, got)
			}
		})
	}
}

func TestConfigHandler_Get_EngineAndCatalog(t *testing.T) {
	cfg := &config.Config{
		Engine: config.EngineConfig{MinAcceptRatio: 0.7, MaxAspectDiff: 0.5},
		Cache:  config.CacheConfig{RedisURL: "redis://localhost:6379/0"},
	}
	result := getConfig(t, cfg)

	if result.Engine.MinAcceptRatio != 0.7 {
		t.Errorf("expected min accept ratio 0.7, got %v", result.Engine.MinAcceptRatio)
	}
	if result.Engine.MaxAspectDiff != 0.5 {
		t.Errorf("expected max aspect diff 0.5, got %v", result.Engine.MaxAspectDiff)
	}
	if result.Engine.OrientationFactor != 1.1 {
		t.Errorf("expected default orientation factor 1.1, got %v", result.Engine.OrientationFactor)
	}
	if result.LayoutCount != testCatalog(t).Len() {
		t.Errorf("expected %d layouts, got %d", testCatalog(t).Len(), result.LayoutCount)
	}
	if !result.CacheEnabled {
		t.Error("expected cache to be enabled when REDIS_URL is set")
	}
}
