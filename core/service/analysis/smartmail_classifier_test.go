package analysis

import (
	"context"
	"testing"

	"smartmail_server/core/domain"
)

func newTestClassifier(client *fakeInference, cfg ClassifierConfig) *Classifier {
	scorer := NewKeywordScorer(DefaultLexicons(), DefaultScorerConfig())
	return NewClassifier(scorer, client, cfg)
}

func TestClassifierKeywordDecisiveSkipsRemote(t *testing.T) {
	client := &fakeInference{scores: []domain.SentimentScore{{Label: "LABEL_0", Score: 0.99}}}
	c := newTestClassifier(client, DefaultClassifierConfig())

	got := c.Classify(context.Background(), "thank you so much, excellent service, great work")

	if got.Tone != domain.TonePositive {
		t.Errorf("Tone = %s, want Positive", got.Tone)
	}
	if got.Urgency != domain.UrgencyLow {
		t.Errorf("Urgency = %s, want Low", got.Urgency)
	}
	if client.sentimentCalls != 0 {
		t.Errorf("remote sentiment called %d times for decisive keyword verdict, want 0", client.sentimentCalls)
	}
}

func TestClassifierRemoteFallback(t *testing.T) {
	neutralText := "the report covers q3 figures and the new org chart"

	tests := []struct {
		name     string
		client   *fakeInference
		wantTone domain.Tone
		wantConf bool
	}{
		{
			name:     "confident negative label accepted",
			client:   &fakeInference{scores: []domain.SentimentScore{{Label: "LABEL_0", Score: 0.91}, {Label: "LABEL_1", Score: 0.06}}},
			wantTone: domain.ToneNegative,
			wantConf: true,
		},
		{
			name:     "confident positive label accepted",
			client:   &fakeInference{scores: []domain.SentimentScore{{Label: "LABEL_2", Score: 0.88}}},
			wantTone: domain.TonePositive,
			wantConf: true,
		},
		{
			name:     "below confidence floor treated as neutral",
			client:   &fakeInference{scores: []domain.SentimentScore{{Label: "LABEL_0", Score: 0.55}}},
			wantTone: domain.ToneNeutral,
		},
		{
			name:     "remote failure treated as neutral",
			client:   &fakeInference{sentimentErr: timeoutErr()},
			wantTone: domain.ToneNeutral,
		},
		{
			name:     "unknown label ignored",
			client:   &fakeInference{scores: []domain.SentimentScore{{Label: "LABEL_9", Score: 0.99}}},
			wantTone: domain.ToneNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(tt.client, DefaultClassifierConfig())
			got := c.Classify(context.Background(), neutralText)
			if got.Tone != tt.wantTone {
				t.Errorf("Tone = %s, want %s", got.Tone, tt.wantTone)
			}
			if tt.wantConf && got.Confidence == nil {
				t.Error("Confidence not set for accepted remote label")
			}
			if !tt.wantConf && got.Confidence != nil {
				t.Errorf("Confidence = %v, want nil", *got.Confidence)
			}
		})
	}
}

func TestClassifierUrgentNormalization(t *testing.T) {
	c := newTestClassifier(&fakeInference{sentimentErr: timeoutErr()}, DefaultClassifierConfig())

	got := c.Classify(context.Background(), "URGENT: server is down, please fix ASAP")

	if got.Urgency != domain.UrgencyHigh {
		t.Errorf("Urgency = %s, want High", got.Urgency)
	}
	if got.Tone != domain.ToneUrgent {
		t.Errorf("Tone = %s, want Urgent (neutral promoted by high urgency)", got.Tone)
	}
}

func TestClassifierRemotePrecedence(t *testing.T) {
	client := &fakeInference{scores: []domain.SentimentScore{{Label: "LABEL_0", Score: 0.95}}}
	cfg := DefaultClassifierConfig()
	cfg.Precedence = PrecedenceRemote
	c := newTestClassifier(client, cfg)

	// Keyword verdict says positive, remote says negative; remote wins.
	got := c.Classify(context.Background(), "thank you so much, excellent service, great work")

	if got.Tone != domain.ToneNegative {
		t.Errorf("Tone = %s, want Negative under remote precedence", got.Tone)
	}
	if client.sentimentCalls != 1 {
		t.Errorf("remote sentiment called %d times, want 1", client.sentimentCalls)
	}
}

func TestClassifierNilSentimentClient(t *testing.T) {
	scorer := NewKeywordScorer(DefaultLexicons(), DefaultScorerConfig())
	c := NewClassifier(scorer, nil, DefaultClassifierConfig())

	got := c.Classify(context.Background(), "here is the agenda for monday")
	if got.Tone != domain.ToneNeutral || got.Urgency != domain.UrgencyLow {
		t.Errorf("Classify = (%s, %s), want (Neutral, Low)", got.Tone, got.Urgency)
	}
}
