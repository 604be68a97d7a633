package handlers

import (
	"net/http"

	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/layout"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config  *config.Config
	catalog *layout.Catalog
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, catalog *layout.Catalog) *ConfigHandler {
	return &ConfigHandler{
		config:  cfg,
		catalog: catalog,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Providers      []ProviderInfo `json:"providers"`
	ActiveProvider string         `json:"active_provider"`
	Engine         EngineInfo     `json:"engine"`
	LayoutCount    int            `json:"layout_count"`
	CacheEnabled   bool           `json:"cache_enabled"`
}

// ProviderInfo represents information about an AI provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// EngineInfo reports the thresholds the engine runs with.
type EngineInfo struct {
	MinAcceptRatio    float64 `json:"min_accept_ratio"`
	MaxAspectDiff     float64 `json:"max_aspect_diff"`
	OrientationFactor float64 `json:"orientation_factor"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderInfo{
		{
			Name:      config.ProviderOpenAI,
			Available: h.config.OpenAI.Token != "",
		},
		{
			Name:      config.ProviderGemini,
			Available: h.config.Gemini.APIKey != "",
		},
		{
			Name:      config.ProviderOllama,
			Available: true, // Always available (local)
		},
	}

	thresholds := h.config.Engine.Thresholds()
	response := ConfigResponse{
		Providers:      providers,
		ActiveProvider: h.config.PlannerProvider(),
		Engine: EngineInfo{
			MinAcceptRatio:    h.config.Engine.MinAcceptRatio,
			MaxAspectDiff:     thresholds.MaxAspectDiff,
			OrientationFactor: thresholds.OrientationFactor,
		},
		CacheEnabled: h.config.Cache.RedisURL != "",
	}
	if h.catalog != nil {
		response.LayoutCount = h.catalog.Len()
	}

	respondJSON(w, http.StatusOK, response)
}
