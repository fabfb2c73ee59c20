package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent API.
type GeminiClient struct {
	apiKey       string
	defaultModel string
	baseURL      string
	rps          float64
	maxRetries   int
	client       *http.Client
	limiter      *RateLimiter
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey       string
	DefaultModel string
	BaseURL      string // Override for testing
	RPS          float64
	MaxRetries   int
}

// NewGeminiClient creates a Gemini text generation client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 4
	}
	return &GeminiClient{
		apiKey:       cfg.APIKey,
		defaultModel: model,
		baseURL:      baseURL,
		rps:          cfg.RPS,
		maxRetries:   maxRetries,
		client:       &http.Client{Timeout: 120 * time.Second},
		limiter:      NewRateLimiter(cfg.RPS),
	}
}

// Name returns the client identifier.
func (c *GeminiClient) Name() string { return "gemini" }

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends a completion request to Gemini with rate limiting and
// exponential-backoff retries on transient failures.
func (c *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = c.maxRetries
	}

	result := &GenerateResult{
		Provider:  c.Name(),
		ModelUsed: model,
		RequestID: req.RequestID,
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	var resp geminiResponse
	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.doRequest(ctx, model, &body, &resp)
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)

	result.Attempts = attempts
	result.ExecutionTime = time.Since(start)

	if err != nil {
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("gemini generate failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		result.ErrorMessage = "no candidates in response"
		return result, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	result.Success = true
	result.Text = text.String()
	result.PromptTokens = resp.UsageMetadata.PromptTokenCount
	result.CompletionTokens = resp.UsageMetadata.CandidatesTokenCount
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	return result, nil
}

// doRequest performs one generateContent call. Transient failures
// return plain errors so retry.Do tries again; permanent ones are
// wrapped in retry.Unrecoverable.
func (c *GeminiClient) doRequest(ctx context.Context, model string, body *geminiRequest, out *geminiResponse) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.Record429()
		return fmt.Errorf("gemini rate limited (status 429): %s", string(respBody))
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("gemini server error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return retry.Unrecoverable(fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	*out = geminiResponse{}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.Error != nil {
		return retry.Unrecoverable(fmt.Errorf("gemini API error %d: %s", out.Error.Code, out.Error.Message))
	}
	return nil
}

// Verify interface
var _ LLMClient = (*GeminiClient)(nil)
