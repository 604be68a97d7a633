package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Prithvi-997/origin-brew/internal/plan"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

type GeminiPlanner struct {
	client      *genai.Client
	model       string
	mu          sync.Mutex
	usage       Usage
	inputPrice  float64 // per 1M tokens
	outputPrice float64 // per 1M tokens
}

// GeminiOptions configures a GeminiPlanner. BaseURL is only set in tests.
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Pricing RequestPricing
}

func NewGeminiPlanner(ctx context.Context, opts GeminiOptions) (*GeminiPlanner, error) {
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = geminiModel
	}
	return &GeminiPlanner{
		client:      client,
		model:       model,
		inputPrice:  opts.Pricing.Input,
		outputPrice: opts.Pricing.Output,
	}, nil
}

func (p *GeminiPlanner) GetUsage() *Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.usage
	return &u
}

func (p *GeminiPlanner) ResetUsage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage = Usage{}
}

func (p *GeminiPlanner) trackUsage(ctx context.Context, inputTokens, outputTokens int32) {
	cost := float64(inputTokens)/1_000_000*p.inputPrice + float64(outputTokens)/1_000_000*p.outputPrice
	RecordCallUsage(ctx, int(inputTokens), int(outputTokens), cost)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage.add(int(inputTokens), int(outputTokens), cost)
}

func (p *GeminiPlanner) Name() string {
	return p.model
}

// geminiPlanSchema mirrors planSchema in Gemini's schema type.
func geminiPlanSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"pages": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"layout_to_use": {Type: genai.TypeString, Description: "Id of the layout template, e.g. layout8"},
						"frames": {
							Type: genai.TypeArray,
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"frame_number": {Type: genai.TypeInteger, Description: "Frame index, 1-based"},
									"image_id":     {Type: genai.TypeString, Description: "Id of the photo placed in this frame"},
								},
								Required: []string{"frame_number", "image_id"},
							},
						},
					},
					Required: []string{"layout_to_use", "frames"},
				},
			},
		},
		Required: []string{"pages"},
	}
}

func (p *GeminiPlanner) Plan(ctx context.Context, req Request) (*plan.Candidate, error) {
	const maxRetries = 5

	systemPrompt, err := buildPlanPrompt(req)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: userMessage}},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiPlanSchema(),
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
		if err != nil {
			return nil, classifyGeminiError(err)
		}

		if result.UsageMetadata != nil {
			p.trackUsage(ctx, result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
		}

		content := result.Text()
		if content == "" {
			return nil, fmt.Errorf("%w: no response from Gemini", ErrMalformedPlan)
		}
		lastResponse = content

		candidate, err := parsePlan(content)
		if err != nil {
			lastError = err

			// Add model response and error feedback to contents for retry
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: fmt.Sprintf("The plan could not be used: %v. Please return the complete plan again as valid JSON.", err)}},
				},
			)
			continue
		}

		return candidate, nil
	}

	return nil, fmt.Errorf("failed to parse plan after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if sentinel := classifyStatus(apiErr.Code); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}
	return fmt.Errorf("gemini API error: %w", err)
}
