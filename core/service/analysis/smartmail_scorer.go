// Package analysis implements the staged text-analysis pipeline: keyword
// scoring, summarization, tone/urgency classification, key-point extraction
// and reply drafting, assembled by the orchestrator.
package analysis

import (
	"smartmail_server/core/domain"
	"smartmail_server/pkg/textutil"
)

// ToneVerdict is the keyword-only tone signal. None means the lexicon did not
// carry a decisive answer and the classifier should consult the remote model.
type ToneVerdict string

const (
	VerdictPositive ToneVerdict = "positive"
	VerdictNegative ToneVerdict = "negative"
	VerdictNone     ToneVerdict = "none"
)

// Lexicons holds the weighted keyword tables the scorer matches against.
type Lexicons struct {
	Urgency  map[string]int
	Positive map[string]int
	Negative map[string]int
}

// DefaultLexicons returns the built-in keyword tables tuned for business
// correspondence.
func DefaultLexicons() Lexicons {
	return Lexicons{
		Urgency: map[string]int{
			"urgent":      2,
			"asap":        2,
			"emergency":   2,
			"critical":    2,
			"immediately": 1,
			"deadline":    1,
			"now":         1,
			"must":        1,
			"required":    1,
			"essential":   1,
		},
		Positive: map[string]int{
			"happy":      1,
			"great":      1,
			"excellent":  1,
			"love":       1,
			"good":       1,
			"thanks":     1,
			"thank":      1,
			"wonderful":  1,
			"best":       1,
			"thrilled":   1,
			"nice":       1,
			"appreciate": 1,
		},
		Negative: map[string]int{
			"unacceptable": 1,
			"angry":        1,
			"frustrated":   1,
			"disappointed": 1,
			"terrible":     1,
			"worst":        1,
			"hate":         1,
			"cancel":       1,
		},
	}
}

// ScorerConfig holds the urgency thresholds and tone dominance margin.
type ScorerConfig struct {
	HighCutoff   int
	MediumCutoff int
	ToneMargin   int
}

// DefaultScorerConfig returns the default thresholds.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		HighCutoff:   4,
		MediumCutoff: 1,
		ToneMargin:   2,
	}
}

// Score is the raw output of one keyword scan.
type Score struct {
	UrgencyWeight  int
	PositiveWeight int
	NegativeWeight int
}

// KeywordScorer computes urgency and tone scores from weighted lexicons.
// It is a pure function of its input; identical text always produces an
// identical score.
type KeywordScorer struct {
	lexicons Lexicons
	config   ScorerConfig
}

// NewKeywordScorer creates a scorer. Zero-value lexicons or config fall back
// to the built-in defaults.
func NewKeywordScorer(lexicons Lexicons, cfg ScorerConfig) *KeywordScorer {
	if lexicons.Urgency == nil {
		lexicons = DefaultLexicons()
	}
	if cfg.HighCutoff == 0 {
		cfg = DefaultScorerConfig()
	}
	return &KeywordScorer{lexicons: lexicons, config: cfg}
}

// Score scans text token by token and sums matched lexicon weights. Matching
// is word-boundary exact: "asapx" never matches "asap".
func (s *KeywordScorer) Score(text string) Score {
	var sc Score
	for _, tok := range textutil.Tokenize(text) {
		if w, ok := s.lexicons.Urgency[tok]; ok {
			sc.UrgencyWeight += w
		}
		if w, ok := s.lexicons.Positive[tok]; ok {
			sc.PositiveWeight += w
		}
		if w, ok := s.lexicons.Negative[tok]; ok {
			sc.NegativeWeight += w
		}
	}
	return sc
}

// Urgency maps a weighted urgency score onto the three-level scale.
func (s *KeywordScorer) Urgency(sc Score) domain.Urgency {
	switch {
	case sc.UrgencyWeight >= s.config.HighCutoff:
		return domain.UrgencyHigh
	case sc.UrgencyWeight >= s.config.MediumCutoff:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// Verdict returns the keyword tone verdict: the dominant side wins, a tie
// yields None.
func (s *KeywordScorer) Verdict(sc Score) ToneVerdict {
	switch {
	case sc.PositiveWeight > sc.NegativeWeight:
		return VerdictPositive
	case sc.NegativeWeight > sc.PositiveWeight:
		return VerdictNegative
	default:
		return VerdictNone
	}
}

// Decisive reports whether the verdict carries a clear margin and should
// override the remote sentiment model.
func (s *KeywordScorer) Decisive(sc Score) bool {
	diff := sc.PositiveWeight - sc.NegativeWeight
	if diff < 0 {
		diff = -diff
	}
	return diff >= s.config.ToneMargin
}
