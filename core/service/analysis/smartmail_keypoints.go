package analysis

import (
	"strings"

	"smartmail_server/pkg/textutil"
)

// KeyPointConfig bounds the key-point extraction stage.
type KeyPointConfig struct {
	ScanCap    int // sentences scanned from the start of the text
	DisplayCap int // rune cap per extracted point
	MaxPoints  int
}

// DefaultKeyPointConfig returns the default bounds.
func DefaultKeyPointConfig() KeyPointConfig {
	return KeyPointConfig{
		ScanCap:    12,
		DisplayCap: 110,
		MaxPoints:  3,
	}
}

// actionTriggers mark a sentence as carrying an obligation or deadline.
var actionTriggers = []string{"must", "should", "need", "please", "deadline", "action", "required"}

// KeyPointExtractor flags sentences containing action items or questions.
// Pure and deterministic; no remote calls.
type KeyPointExtractor struct {
	config KeyPointConfig
}

// NewKeyPointExtractor creates an extractor.
func NewKeyPointExtractor(cfg KeyPointConfig) *KeyPointExtractor {
	if cfg.ScanCap == 0 {
		cfg = DefaultKeyPointConfig()
	}
	return &KeyPointExtractor{config: cfg}
}

// Extract returns up to MaxPoints flagged sentences in source order.
// Question sentences are prefixed "Q: ", action sentences "A: ".
func (e *KeyPointExtractor) Extract(text string) []string {
	sentences := textutil.SplitSentences(text)
	if len(sentences) > e.config.ScanCap {
		sentences = sentences[:e.config.ScanCap]
	}

	var points []string
	for _, sentence := range sentences {
		isQuestion := strings.Contains(sentence, "?")
		if !isQuestion && !hasActionTrigger(sentence) {
			continue
		}

		point := textutil.TruncateRunes(strings.TrimSpace(sentence), e.config.DisplayCap)
		if isQuestion {
			points = append(points, "Q: "+point)
		} else {
			points = append(points, "A: "+point)
		}
		if len(points) == e.config.MaxPoints {
			break
		}
	}
	return points
}

func hasActionTrigger(sentence string) bool {
	for _, tok := range textutil.Tokenize(sentence) {
		for _, trigger := range actionTriggers {
			if tok == trigger {
				return true
			}
		}
	}
	return false
}
