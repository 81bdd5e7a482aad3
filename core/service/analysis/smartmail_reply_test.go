package analysis

import (
	"context"
	"strings"
	"testing"

	"smartmail_server/core/domain"
)

func TestTemplateReplierBranches(t *testing.T) {
	r := NewTemplateReplier()

	tests := []struct {
		name     string
		cls      domain.Classification
		summary  string
		wantPart string
	}{
		{
			name:     "security topic outranks tone",
			cls:      domain.Classification{Tone: domain.TonePositive, Urgency: domain.UrgencyLow},
			summary:  "A security breach was reported on the VPN gateway.",
			wantPart: "security",
		},
		{
			name:     "server outage topic",
			cls:      domain.Classification{Tone: domain.ToneNeutral, Urgency: domain.UrgencyMedium},
			summary:  "The production server is down since 9am.",
			wantPart: "engineers are investigating",
		},
		{
			name:     "billing topic",
			cls:      domain.Classification{Tone: domain.ToneNegative, Urgency: domain.UrgencyLow},
			summary:  "Customer requests a refund for the duplicate charge.",
			wantPart: "billing matter",
		},
		{
			name:     "urgent tone template",
			cls:      domain.Classification{Tone: domain.ToneUrgent, Urgency: domain.UrgencyHigh},
			summary:  "The contract must be signed today.",
			wantPart: "immediate action",
		},
		{
			name:     "negative tone template",
			cls:      domain.Classification{Tone: domain.ToneNegative, Urgency: domain.UrgencyLow},
			summary:  "The delivery was late again.",
			wantPart: "immediate action",
		},
		{
			name:     "positive tone template",
			cls:      domain.Classification{Tone: domain.TonePositive, Urgency: domain.UrgencyLow},
			summary:  "The customer loved the onboarding experience.",
			wantPart: "positive feedback",
		},
		{
			name:     "neutral default template",
			cls:      domain.Classification{Tone: domain.ToneNeutral, Urgency: domain.UrgencyLow},
			summary:  "Meeting notes from the weekly sync.",
			wantPart: "Received and noted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Generate(context.Background(), tt.cls, tt.summary, nil)
			if got == "" {
				t.Fatal("Generate returned empty reply")
			}
			if !strings.Contains(strings.ToLower(got), strings.ToLower(tt.wantPart)) {
				t.Errorf("Generate = %q, want it to contain %q", got, tt.wantPart)
			}
			if strings.Contains(got, "%s") || strings.Contains(got, "%!") {
				t.Errorf("Generate = %q, contains unfinished interpolation", got)
			}
		})
	}
}

func TestTemplateReplierInterpolatesSummary(t *testing.T) {
	r := NewTemplateReplier()
	summary := "The Q3 budget review is scheduled for Monday."

	got := r.Generate(context.Background(), domain.Classification{Tone: domain.ToneNeutral, Urgency: domain.UrgencyLow}, summary, nil)
	if !strings.Contains(got, summary) {
		t.Errorf("Generate = %q, want summary interpolated", got)
	}
}

func TestGenerativeReplier(t *testing.T) {
	cls := domain.Classification{Tone: domain.ToneNegative, Urgency: domain.UrgencyMedium}
	summary := "The delivery was late again."

	t.Run("success returns trimmed model text", func(t *testing.T) {
		client := &fakeCompletion{reply: "  We are sorry about the delay and are fixing it.  "}
		r := NewGenerativeReplier(client)

		got := r.Generate(context.Background(), cls, summary, []string{"A: Please expedite the order."})
		if got != "We are sorry about the delay and are fixing it." {
			t.Errorf("Generate = %q, want trimmed model reply", got)
		}
		if client.calls != 1 {
			t.Errorf("completion called %d times, want 1", client.calls)
		}
	})

	t.Run("failure falls back to template", func(t *testing.T) {
		r := NewGenerativeReplier(&fakeCompletion{err: timeoutErr()})

		got := r.Generate(context.Background(), cls, summary, nil)
		if !strings.Contains(got, "immediate action") {
			t.Errorf("Generate = %q, want template fallback", got)
		}
	})

	t.Run("empty model reply falls back to template", func(t *testing.T) {
		r := NewGenerativeReplier(&fakeCompletion{reply: "   "})

		got := r.Generate(context.Background(), cls, summary, nil)
		if got == "" || strings.TrimSpace(got) == "" {
			t.Fatal("Generate returned empty reply")
		}
		if !strings.Contains(got, "immediate action") {
			t.Errorf("Generate = %q, want template fallback", got)
		}
	})

	t.Run("nil client uses template", func(t *testing.T) {
		r := NewGenerativeReplier(nil)
		got := r.Generate(context.Background(), cls, summary, nil)
		if got == "" {
			t.Fatal("Generate returned empty reply")
		}
	})
}
