package analysis

import (
	"context"
	"strings"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/out"
	"smartmail_server/pkg/logger"
)

// TonePrecedence selects which signal wins when both the keyword verdict and
// the remote model produce a tone.
type TonePrecedence string

const (
	// PrecedenceKeyword adopts a decisive keyword verdict without calling the
	// remote model. Default policy.
	PrecedenceKeyword TonePrecedence = "keyword"
	// PrecedenceRemote always consults the remote model first and uses the
	// keyword verdict only when the model fails or is unconfident.
	PrecedenceRemote TonePrecedence = "remote"
)

// ClassifierConfig tunes the tone/urgency classifier.
type ClassifierConfig struct {
	ConfidenceFloor float64
	Precedence      TonePrecedence
}

// DefaultClassifierConfig returns the default policy.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		ConfidenceFloor: 0.70,
		Precedence:      PrecedenceKeyword,
	}
}

// Classifier combines the keyword scorer with optional remote sentiment.
// Classify always returns a concrete (tone, urgency) pair; remote failures
// silently degrade to Neutral.
type Classifier struct {
	scorer    *KeywordScorer
	sentiment out.InferenceClient
	config    ClassifierConfig
	log       *logger.Logger
}

// NewClassifier creates a classifier. sentiment may be nil, in which case the
// keyword verdict is the only tone signal.
func NewClassifier(scorer *KeywordScorer, sentiment out.InferenceClient, cfg ClassifierConfig) *Classifier {
	if cfg.ConfidenceFloor == 0 {
		cfg = DefaultClassifierConfig()
	}
	return &Classifier{
		scorer:    scorer,
		sentiment: sentiment,
		config:    cfg,
		log:       logger.Default().WithField("stage", "classifier"),
	}
}

// Classify computes the tone/urgency pair for text.
func (c *Classifier) Classify(ctx context.Context, text string) domain.Classification {
	score := c.scorer.Score(text)
	urgency := c.scorer.Urgency(score)

	result := domain.Classification{Tone: domain.ToneNeutral, Urgency: urgency}

	if c.config.Precedence == PrecedenceRemote {
		if tone, conf, ok := c.remoteTone(ctx, text); ok {
			result.Tone = tone
			result.Confidence = &conf
			return result.Normalize()
		}
		if tone, ok := verdictTone(c.scorer.Verdict(score)); ok {
			result.Tone = tone
		}
		return result.Normalize()
	}

	// Keyword precedence: a decisive lexicon verdict skips the remote call.
	if c.scorer.Decisive(score) {
		if tone, ok := verdictTone(c.scorer.Verdict(score)); ok {
			result.Tone = tone
			return result.Normalize()
		}
	}

	if tone, conf, ok := c.remoteTone(ctx, text); ok {
		result.Tone = tone
		result.Confidence = &conf
	}
	return result.Normalize()
}

// remoteTone asks the sentiment model and accepts its top label only above
// the confidence floor.
func (c *Classifier) remoteTone(ctx context.Context, text string) (domain.Tone, float64, bool) {
	if c.sentiment == nil {
		return "", 0, false
	}

	scores, err := c.sentiment.Sentiment(ctx, text)
	if err != nil {
		c.log.WithError(err).Warn("remote sentiment failed, treating tone as neutral")
		return "", 0, false
	}
	if len(scores) == 0 {
		return "", 0, false
	}

	top := scores[0]
	for _, s := range scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}

	if top.Score < c.config.ConfidenceFloor {
		c.log.Debug("sentiment label %s below confidence floor (%.2f)", top.Label, top.Score)
		return "", 0, false
	}

	tone, ok := labelTone(top.Label)
	return tone, top.Score, ok
}

func verdictTone(v ToneVerdict) (domain.Tone, bool) {
	switch v {
	case VerdictPositive:
		return domain.TonePositive, true
	case VerdictNegative:
		return domain.ToneNegative, true
	default:
		return "", false
	}
}

// labelTone maps model label taxonomies onto the tone enum. The roberta
// sentiment family reports LABEL_0/1/2; other checkpoints report plain words.
func labelTone(label string) (domain.Tone, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "LABEL_0", "NEGATIVE":
		return domain.ToneNegative, true
	case "LABEL_2", "POSITIVE":
		return domain.TonePositive, true
	case "LABEL_1", "NEUTRAL":
		return domain.ToneNeutral, true
	default:
		return "", false
	}
}
