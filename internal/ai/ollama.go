package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/Prithvi-997/origin-brew/internal/plan"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.1:8b"
)

type OllamaPlanner struct {
	baseURL string
	model   string
	client  *http.Client
	mu      sync.Mutex
	usage   Usage
}

func NewOllamaPlanner(baseURL, model string) *OllamaPlanner {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaPlanner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OllamaPlanner) Name() string {
	return p.model
}

func (p *OllamaPlanner) GetUsage() *Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.usage
	return &u
}

func (p *OllamaPlanner) ResetUsage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage = Usage{}
}

// ollamaRequest represents a request to the Ollama chat API
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	// Format is a JSON schema constraining the answer.
	Format  any           `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

// ollamaResponse represents a response from the Ollama chat API
type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

// statusError is a non-200 answer from the Ollama API.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

func (p *OllamaPlanner) Plan(ctx context.Context, req Request) (*plan.Candidate, error) {
	const maxRetries = 5

	systemPrompt, err := buildPlanPrompt(req)
	if err != nil {
		return nil, err
	}

	messages := []ollamaMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := p.sendRequest(ctx, messages)
		if err != nil {
			if se, ok := err.(*statusError); ok {
				if sentinel := classifyStatus(se.Status); sentinel != nil {
					return nil, fmt.Errorf("%w: %w", sentinel, err)
				}
			}
			return nil, fmt.Errorf("ollama API error: %w", err)
		}

		// Ollama is free, tokens are tracked for stats only
		RecordCallUsage(ctx, resp.PromptEvalCount, resp.EvalCount, 0)
		p.mu.Lock()
		p.usage.add(resp.PromptEvalCount, resp.EvalCount, 0)
		p.mu.Unlock()

		content := resp.Message.Content
		lastResponse = content

		candidate, err := parsePlan(extractJSON(content))
		if err != nil {
			lastError = err

			// Add assistant response and error feedback for retry
			messages = append(messages,
				ollamaMessage{Role: "assistant", Content: content},
				ollamaMessage{
					Role:    "user",
					Content: fmt.Sprintf("The plan could not be used: %v. Output ONLY the complete plan as valid JSON, no other text.", err),
				},
			)
			continue
		}

		return candidate, nil
	}

	return nil, fmt.Errorf("failed to parse plan after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}

func (p *OllamaPlanner) sendRequest(ctx context.Context, messages []ollamaMessage) (*ollamaResponse, error) {
	reqBody := ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Format:   planSchema(),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{Status: resp.StatusCode, Body: string(body)}
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &ollamaResp, nil
}
