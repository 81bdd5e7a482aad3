package analysis

import (
	"context"
	"time"
	"unicode/utf8"

	"smartmail_server/core/domain"
	"smartmail_server/pkg/logger"
	"smartmail_server/pkg/textutil"
)

// PipelineConfig bounds the orchestrator.
type PipelineConfig struct {
	MaxInputRunes      int
	NoContentThreshold int
}

// DefaultPipelineConfig returns the default bounds.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxInputRunes:      2000,
		NoContentThreshold: 5,
	}
}

// Pipeline sequences the analysis stages over a cleaned input and assembles
// the final result. Analyze never fails: every stage degrades to its local
// fallback, and a failure in one stage does not abort the others.
type Pipeline struct {
	summarizer *Summarizer
	classifier *Classifier
	extractor  *KeyPointExtractor
	replier    ReplyGenerator
	config     PipelineConfig
	log        *logger.Logger
}

// NewPipeline wires the stages together.
func NewPipeline(summarizer *Summarizer, classifier *Classifier, extractor *KeyPointExtractor, replier ReplyGenerator, cfg PipelineConfig) *Pipeline {
	if cfg.MaxInputRunes == 0 {
		cfg = DefaultPipelineConfig()
	}
	return &Pipeline{
		summarizer: summarizer,
		classifier: classifier,
		extractor:  extractor,
		replier:    replier,
		config:     cfg,
		log:        logger.Default().WithField("stage", "pipeline"),
	}
}

// noContentResult is the fixed safe result for empty or too-short input.
func noContentResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Summary:        "No content to analyze.",
		Tone:           domain.ToneNeutral,
		Urgency:        domain.UrgencyLow,
		KeyPoints:      []string{},
		SuggestedReply: "Thank you for reaching out. Could you share more detail so we can help?",
	}
}

// Analyze runs the full pipeline over the request text.
func (p *Pipeline) Analyze(ctx context.Context, req domain.AnalysisRequest) *domain.AnalysisResult {
	start := time.Now()

	text := textutil.CleanWhitespace(req.FullText())
	if utf8.RuneCountInString(text) < p.config.NoContentThreshold {
		return noContentResult()
	}
	text = textutil.TruncateRunes(text, p.config.MaxInputRunes)

	summary := p.summarizer.Summarize(ctx, text)
	classification := p.classifier.Classify(ctx, text)
	keyPoints := p.extractor.Extract(text)
	if keyPoints == nil {
		keyPoints = []string{}
	}
	reply := p.replier.Generate(ctx, classification, summary, keyPoints)

	p.log.WithDuration(time.Since(start)).
		WithFields(map[string]any{
			"source":  req.Source,
			"tone":    classification.Tone,
			"urgency": classification.Urgency,
		}).
		Info("analysis complete")

	return &domain.AnalysisResult{
		Summary:        summary,
		Tone:           classification.Tone,
		Urgency:        classification.Urgency,
		KeyPoints:      keyPoints,
		SuggestedReply: reply,
	}
}
