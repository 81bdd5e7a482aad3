package analysis

import (
	"context"
	"strings"
	"unicode/utf8"

	"smartmail_server/core/port/out"
	"smartmail_server/pkg/logger"
	"smartmail_server/pkg/textutil"
)

// SummarizerConfig bounds the summarization stage.
type SummarizerConfig struct {
	ShortTextRunes    int // below this length the text passes through untouched
	InputCap          int // runes sent to the remote model
	MaxLength         int // remote generation cap
	MinLength         int // remote generation floor
	MinAcceptRunes    int // remote summaries shorter than this are discarded
	FallbackSentences int // sentences joined for the extractive fallback
}

// DefaultSummarizerConfig returns the default bounds.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		ShortTextRunes:    200,
		InputCap:          1000,
		MaxLength:         60,
		MinLength:         15,
		MinAcceptRunes:    20,
		FallbackSentences: 2,
	}
}

// Summarizer produces a short summary, preferring the remote model and
// falling back to first-N-sentence extraction. Summarize never returns an
// empty string for non-empty input.
type Summarizer struct {
	client out.InferenceClient
	config SummarizerConfig
	log    *logger.Logger
}

// NewSummarizer creates a summarizer. client may be nil, in which case every
// summary is extractive.
func NewSummarizer(client out.InferenceClient, cfg SummarizerConfig) *Summarizer {
	if cfg.ShortTextRunes == 0 {
		cfg = DefaultSummarizerConfig()
	}
	return &Summarizer{
		client: client,
		config: cfg,
		log:    logger.Default().WithField("stage", "summarizer"),
	}
}

// Summarize returns a summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	// Already short enough, summarizing would only degrade it.
	if utf8.RuneCountInString(trimmed) < s.config.ShortTextRunes {
		return trimmed
	}

	if s.client != nil {
		input := textutil.TruncateRunes(trimmed, s.config.InputCap)
		summary, err := s.client.Summarize(ctx, input, out.SummaryParams{
			MaxLength: s.config.MaxLength,
			MinLength: s.config.MinLength,
		})
		if err == nil {
			summary = strings.TrimSpace(summary)
			if utf8.RuneCountInString(summary) >= s.config.MinAcceptRunes {
				return summary
			}
			s.log.Debug("remote summary rejected: too short (%d runes)", utf8.RuneCountInString(summary))
		} else {
			s.log.WithError(err).Warn("remote summarization failed, using extractive fallback")
		}
	}

	return s.extractive(trimmed)
}

// extractive joins the first N sentences; the last resort is the first
// sentence or the trimmed input itself.
func (s *Summarizer) extractive(text string) string {
	if summary := textutil.FirstNSentences(text, s.config.FallbackSentences); summary != "" {
		return summary
	}
	return text
}
