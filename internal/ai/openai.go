package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Prithvi-997/origin-brew/internal/plan"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const chatModel = openai.ChatModelGPT4_1Mini

// planToolName is the function the model is forced to call with its plan.
const planToolName = "create_photobook_plan"

type OpenAIPlanner struct {
	client      *openai.Client
	model       string
	mu          sync.Mutex
	usage       Usage
	inputPrice  float64 // per 1M tokens
	outputPrice float64 // per 1M tokens
}

// OpenAIOptions configures an OpenAIPlanner. BaseURL points at any
// OpenAI-compatible gateway.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Pricing    RequestPricing
	MaxRetries int // SDK retries; 0 keeps the SDK default, negative disables
	HTTPClient *http.Client
}

func NewOpenAIPlanner(opts OpenAIOptions) *OpenAIPlanner {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	switch {
	case opts.MaxRetries > 0:
		reqOpts = append(reqOpts, option.WithMaxRetries(opts.MaxRetries))
	case opts.MaxRetries < 0:
		reqOpts = append(reqOpts, option.WithMaxRetries(0))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	model := opts.Model
	if model == "" {
		model = chatModel
	}
	client := openai.NewClient(reqOpts...)
	return &OpenAIPlanner{
		client:      &client,
		model:       model,
		inputPrice:  opts.Pricing.Input,
		outputPrice: opts.Pricing.Output,
	}
}

func (p *OpenAIPlanner) GetUsage() *Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.usage
	return &u
}

func (p *OpenAIPlanner) ResetUsage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage = Usage{}
}

func (p *OpenAIPlanner) trackUsage(ctx context.Context, inputTokens, outputTokens int64) {
	cost := float64(inputTokens)/1_000_000*p.inputPrice + float64(outputTokens)/1_000_000*p.outputPrice
	RecordCallUsage(ctx, int(inputTokens), int(outputTokens), cost)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage.add(int(inputTokens), int(outputTokens), cost)
}

func (p *OpenAIPlanner) Name() string {
	return p.model
}

// Plan forces a create_photobook_plan tool call and decodes its arguments.
// Undecodable arguments are sent back to the model for another try.
func (p *OpenAIPlanner) Plan(ctx context.Context, req Request) (*plan.Candidate, error) {
	const maxRetries = 5

	systemPrompt, err := buildPlanPrompt(req)
	if err != nil {
		return nil, err
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userMessage),
	}
	tools := []openai.ChatCompletionToolParam{
		{
			Function: shared.FunctionDefinitionParam{
				Name:        planToolName,
				Description: openai.String("Return page layouts with frame assignments for a photobook"),
				Parameters:  shared.FunctionParameters(planSchema()),
			},
		},
	}
	toolChoice := openai.ChatCompletionToolChoiceOptionUnionParam{
		OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
			Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: planToolName},
		},
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:      p.model,
			Messages:   messages,
			Tools:      tools,
			ToolChoice: toolChoice,
		})
		if err != nil {
			return nil, classifyOpenAIError(err)
		}

		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("%w: no choices in response", ErrMalformedPlan)
		}

		if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
			p.trackUsage(ctx, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}

		msg := resp.Choices[0].Message
		var arguments string
		for _, call := range msg.ToolCalls {
			if call.Function.Name == planToolName {
				arguments = call.Function.Arguments
				break
			}
		}
		if arguments == "" {
			// Some gateways ignore tool_choice and answer in plain text.
			arguments = extractJSON(msg.Content)
		}
		lastResponse = arguments

		candidate, err := parsePlan(arguments)
		if err != nil {
			lastError = err

			// Add assistant response and error feedback to messages for retry
			messages = append(messages,
				openai.AssistantMessage(arguments),
				openai.UserMessage(fmt.Sprintf("The plan could not be used: %v. Please return the complete plan again as valid JSON.", err)),
			)
			continue
		}

		return candidate, nil
	}

	return nil, fmt.Errorf("failed to parse plan after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}

// classifyOpenAIError wraps rate-limit and quota responses in their sentinel.
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if sentinel := classifyStatus(apiErr.StatusCode); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}
	return fmt.Errorf("OpenAI API error: %w", err)
}
