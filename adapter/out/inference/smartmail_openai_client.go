package inference

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"smartmail_server/core/domain"
	"smartmail_server/pkg/httputil"
)

// OpenAIConfig configures the chat-completion client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

const defaultCompletionModel = "gpt-4o-mini"

// OpenAIClient implements out.CompletionClient over the OpenAI chat API.
// Errors are mapped onto the same ModelCallError reasons as the hosted
// inference client so callers handle both families identically.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	hasKey      bool
}

// NewOpenAIClient creates the client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = defaultCompletionModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient = httputil.OpenAIClient()
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		timeout:     timeout,
		hasKey:      cfg.APIKey != "",
	}
}

// Complete sends a system+user prompt pair and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.hasKey {
		return "", domain.NewModelCallError(domain.FailureAuthMissing, errors.New("no OpenAI API key configured"))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.NewModelCallError(domain.FailureMalformed, errors.New("completion returned no choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// mapOpenAIError folds the SDK error surface into ModelCallError reasons.
func mapOpenAIError(err error) *domain.ModelCallError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return domain.NewModelCallError(domain.FailureAuthMissing, err)
		case 429:
			return domain.NewModelCallError(domain.FailureRateLimited, err)
		case 500, 502, 503:
			return domain.NewModelCallError(domain.FailureServiceUnavailable, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewModelCallError(domain.FailureTimeout, err)
	}
	return domain.NewModelCallError(domain.FailureTimeout, err)
}
