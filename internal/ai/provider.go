package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/Prithvi-997/origin-brew/internal/plan"
)

//go:embed prompts/plan_photobook.txt
var planPhotobookPrompt string

// Planner errors. Any planner error makes the caller fall back to the
// deterministic engine; these let it tell the user why.
var (
	ErrRateLimited   = errors.New("planner rate limit exceeded")
	ErrQuotaExceeded = errors.New("planner usage limit reached")
	ErrMalformedPlan = errors.New("planner returned a malformed plan")
)

// Planner asks an external model for a candidate page plan.
type Planner interface {
	Name() string
	Plan(ctx context.Context, req Request) (*plan.Candidate, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

type callUsageKey struct{}

// WithCallUsage returns a context under which a planner also adds the tokens
// one Plan call spends to u. Running totals from GetUsage are shared by every
// caller of the planner; u belongs to this call only.
func WithCallUsage(ctx context.Context, u *Usage) context.Context {
	return context.WithValue(ctx, callUsageKey{}, u)
}

func (u *Usage) add(inputTokens, outputTokens int, cost float64) {
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
	u.TotalCost += cost
}

// RecordCallUsage adds tokens to the Usage carried by ctx, if any. Planners
// call it next to updating their running totals.
func RecordCallUsage(ctx context.Context, inputTokens, outputTokens int, cost float64) {
	if u, ok := ctx.Value(callUsageKey{}).(*Usage); ok && u != nil {
		u.add(inputTokens, outputTokens, cost)
	}
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// PhotoInfo is what a planner learns about a photo.
type PhotoInfo struct {
	ID          string          `json:"id"`
	Orientation fit.Orientation `json:"orientation"`
	AspectRatio float64         `json:"aspectRatio"`
}

// Request is the planner payload.
type Request struct {
	Layouts map[string]layout.Metadata `json:"layouts"`
	Photos  []PhotoInfo                `json:"photos"`
	// PriorityLayouts suit the collection's shape mix.
	PriorityLayouts []string `json:"priorityLayouts,omitempty"`
	// KeepLayouts asks the planner to reuse these layouts when regenerating
	// pages.
	KeepLayouts []string `json:"keepLayouts,omitempty"`
}

// NewRequest builds a planner request for photos against the whole catalog.
func NewRequest(c *layout.Catalog, photos []photo.Photo) Request {
	req := Request{
		Layouts:         c.Metadata(),
		Photos:          make([]PhotoInfo, len(photos)),
		PriorityLayouts: c.Recommend(photo.Distribute(photos)),
	}
	for i, p := range photos {
		req.Photos[i] = PhotoInfo{ID: p.ID, Orientation: p.Orientation, AspectRatio: p.AspectRatio}
	}
	return req
}

// buildPlanPrompt renders the system prompt for req.
func buildPlanPrompt(req Request) (string, error) {
	layoutsJSON, err := json.MarshalIndent(req.Layouts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding layouts: %w", err)
	}
	photosJSON, err := json.MarshalIndent(req.Photos, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding photos: %w", err)
	}

	var hints strings.Builder
	if len(req.PriorityLayouts) > 0 {
		fmt.Fprintf(&hints, "8. These layouts suit this collection well, prefer them: %s.\n", strings.Join(req.PriorityLayouts, ", "))
	}
	if len(req.KeepLayouts) > 0 {
		fmt.Fprintf(&hints, "9. You are regenerating existing pages. Reuse these layouts where the photos allow: %s.\n", strings.Join(req.KeepLayouts, ", "))
	}
	return fmt.Sprintf(planPhotobookPrompt, layoutsJSON, photosJSON, hints.String()), nil
}

const userMessage = "Create a photobook layout plan for these images."

// planSchema is the JSON schema of plan.Candidate.
func planSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pages": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"layout_to_use": map[string]any{
							"type":        "string",
							"description": "Id of the layout template, e.g. layout8",
						},
						"frames": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"frame_number": map[string]any{
										"type":        "integer",
										"minimum":     1,
										"description": "Frame index, 1-based, at most the layout's frameCount",
									},
									"image_id": map[string]any{
										"type":        "string",
										"description": "Id of the photo placed in this frame",
									},
								},
								"required":             []string{"frame_number", "image_id"},
								"additionalProperties": false,
							},
						},
					},
					"required":             []string{"layout_to_use", "frames"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"pages"},
		"additionalProperties": false,
	}
}

// parsePlan decodes a planner answer. Failures wrap ErrMalformedPlan.
func parsePlan(content string) (*plan.Candidate, error) {
	c, err := plan.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
	}
	return c, nil
}

// classifyStatus maps an HTTP status from a planner backend to a sentinel.
func classifyStatus(status int) error {
	switch status {
	case 429:
		return ErrRateLimited
	case 402:
		return ErrQuotaExceeded
	default:
		return nil
	}
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	// Find matching closing brace
	depth := 0
	inString := false
	for i := start; i < len(content); i++ {
		switch c := content[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	// If no matching brace found, return from start
	return content[start:]
}
