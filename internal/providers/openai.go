package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey       string
	defaultModel string
	rps          float64
	maxRetries   int
	client       openai.Client
	limiter      *RateLimiter
}

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	APIKey       string
	DefaultModel string
	RPS          float64
	MaxRetries   int
}

// NewOpenAIClient creates an OpenAI text generation client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 4
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		option.WithMaxRetries(maxRetries),
	)
	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		defaultModel: model,
		rps:          cfg.RPS,
		maxRetries:   maxRetries,
		client:       client,
		limiter:      NewRateLimiter(cfg.RPS),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string { return "openai" }

// Generate sends a completion request to OpenAI. Retries are handled by
// the SDK; rate limiting happens before the call.
func (c *OpenAIClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	result := &GenerateResult{
		Provider:  c.Name(),
		ModelUsed: model,
		RequestID: req.RequestID,
		Attempts:  1,
	}

	if err := c.limiter.Wait(ctx); err != nil {
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	opts := []option.RequestOption{}
	if req.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(req.MaxRetries))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, opts...)
	result.ExecutionTime = time.Since(start)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("openai generate failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		result.ErrorMessage = "no choices in response"
		return result, fmt.Errorf("openai returned no choices")
	}

	result.Success = true
	result.Text = resp.Choices[0].Message.Content
	result.PromptTokens = int(resp.Usage.PromptTokens)
	result.CompletionTokens = int(resp.Usage.CompletionTokens)
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	return result, nil
}

// Verify interface
var _ LLMClient = (*OpenAIClient)(nil)
