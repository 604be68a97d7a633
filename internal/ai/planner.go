package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/Prithvi-997/origin-brew/internal/config"
)

// NewPlanner builds the planner selected by cfg. It returns nil, nil when no
// planner is configured; callers then use the deterministic engine only.
func NewPlanner(ctx context.Context, cfg *config.Config) (Planner, error) {
	var p Planner
	switch provider := cfg.PlannerProvider(); provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI:
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		model := cfg.OpenAI.Model
		if model == "" {
			model = chatModel
		}
		pricing := cfg.GetModelPricing(model).Standard
		p = NewOpenAIPlanner(OpenAIOptions{
			APIKey:  cfg.OpenAI.Token,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   model,
			Pricing: RequestPricing{Input: pricing.Input, Output: pricing.Output},
		})
	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		model := cfg.Gemini.Model
		if model == "" {
			model = geminiModel
		}
		pricing := cfg.GetModelPricing(model).Standard
		gp, err := NewGeminiPlanner(ctx, GeminiOptions{
			APIKey:  cfg.Gemini.APIKey,
			Model:   model,
			Pricing: RequestPricing{Input: pricing.Input, Output: pricing.Output},
		})
		if err != nil {
			return nil, err
		}
		p = gp
	case config.ProviderOllama:
		p = NewOllamaPlanner(cfg.Ollama.URL, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown planner provider %q", provider)
	}

	if cfg.Cache.RedisURL == "" {
		return p, nil
	}
	cache, err := NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	return NewCachingPlanner(p, cache), nil
}
