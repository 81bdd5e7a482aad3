package out

import (
	"context"

	"smartmail_server/core/domain"
)

// SummaryParams bound the remote summarization output.
type SummaryParams struct {
	MaxLength int `json:"max_length,omitempty"`
	MinLength int `json:"min_length,omitempty"`
}

// InferenceClient is the remote model boundary for the HuggingFace-style
// endpoint family. Every error returned is a *domain.ModelCallError; callers
// fall back locally and never propagate it.
type InferenceClient interface {
	// Summarize returns the first candidate's summary text.
	Summarize(ctx context.Context, text string, params SummaryParams) (string, error)

	// Sentiment returns all label/score pairs for the text, unsorted.
	Sentiment(ctx context.Context, text string) ([]domain.SentimentScore, error)
}

// CompletionClient is the chat-completion endpoint family (reply drafting,
// optional abstractive summaries). Same error contract as InferenceClient.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
