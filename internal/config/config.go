package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Prithvi-997/origin-brew/internal/constants"
	"github.com/Prithvi-997/origin-brew/internal/fit"
	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

// Planner providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

type Config struct {
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
	Ollama  OllamaConfig
	Planner PlannerConfig
	Cache   CacheConfig
	Engine  EngineConfig
	Catalog CatalogConfig
	Web     WebConfig
	Prices  PricesConfig
}

type OpenAIConfig struct {
	Token   string
	BaseURL string // OpenAI-compatible gateway; empty for api.openai.com
	Model   string // defaults to gpt-4.1-mini
}

type GeminiConfig struct {
	APIKey string
	Model  string // defaults to gemini-2.5-flash
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.1:8b
}

type PlannerConfig struct {
	// Provider is openai, gemini, ollama or none. Empty picks the first
	// provider with credentials.
	Provider string
	Timeout  time.Duration
}

type CacheConfig struct {
	RedisURL string // empty disables plan caching
	TTL      time.Duration
}

// EngineConfig tunes matching. The orientation factor is not configurable:
// photos and frames are classified with fit.Default everywhere.
type EngineConfig struct {
	MinAcceptRatio float64
	MaxAspectDiff  float64
}

// Thresholds returns the fit thresholds with the configured overrides.
func (c EngineConfig) Thresholds() fit.Thresholds {
	t := fit.DefaultThresholds()
	if c.MaxAspectDiff > 0 {
		t.MaxAspectDiff = c.MaxAspectDiff
	}
	return t
}

type CatalogConfig struct {
	Dir string // overrides the embedded layout catalog
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // besides localhost, which is always allowed
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
	Batch    RequestPricing `yaml:"batch"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	defaults := fit.DefaultThresholds()
	return &Config{
		OpenAI: OpenAIConfig{
			Token:   os.Getenv("OPENAI_TOKEN"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   os.Getenv("OPENAI_MODEL"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  os.Getenv("GEMINI_MODEL"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		Planner: PlannerConfig{
			Provider: strings.ToLower(strings.TrimSpace(os.Getenv("PLANNER_PROVIDER"))),
			Timeout:  time.Duration(envInt("PLANNER_TIMEOUT_SECONDS", int(constants.DefaultPlannerTimeout/time.Second))) * time.Second,
		},
		Cache: CacheConfig{
			RedisURL: os.Getenv("REDIS_URL"),
			TTL:      time.Duration(envInt("PLAN_CACHE_TTL_MINUTES", int(constants.DefaultPlanCacheTTL/time.Minute))) * time.Minute,
		},
		Engine: EngineConfig{
			MinAcceptRatio: envFloat("ENGINE_MIN_ACCEPT_RATIO", 0.6),
			MaxAspectDiff:  envFloat("ENGINE_MAX_ASPECT_DIFF", defaults.MaxAspectDiff),
		},
		Catalog: CatalogConfig{
			Dir: os.Getenv("LAYOUT_CATALOG_DIR"),
		},
		Web: WebConfig{
			Host:           os.Getenv("WEB_HOST"),
			Port:           envInt("WEB_PORT", 0),
			AllowedOrigins: splitList(os.Getenv("WEB_ALLOWED_ORIGINS")),
		},
		Prices: prices,
	}
}

// PlannerProvider resolves which planner to use. An explicit PLANNER_PROVIDER
// wins; otherwise the first provider with credentials, then none.
func (c *Config) PlannerProvider() string {
	if c.Planner.Provider != "" {
		return c.Planner.Provider
	}
	switch {
	case c.OpenAI.Token != "":
		return ProviderOpenAI
	case c.Gemini.APIKey != "":
		return ProviderGemini
	case c.Ollama.URL != "":
		return ProviderOllama
	default:
		return ProviderNone
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
