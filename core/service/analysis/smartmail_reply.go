package analysis

import (
	"context"
	"fmt"
	"strings"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/out"
	"smartmail_server/pkg/logger"
)

// ReplyGenerator drafts a reply from the prior pipeline outputs. The template
// and generative strategies are interchangeable behind this interface; the
// orchestrator does not know which is active.
type ReplyGenerator interface {
	Generate(ctx context.Context, cls domain.Classification, summary string, keyPoints []string) string
}

// topicRule maps topic keywords found in the summary to a canned reply.
// Topic rules outrank tone-based templates.
type topicRule struct {
	keywords []string
	render   func(summary string) string
}

var topicRules = []topicRule{
	{
		keywords: []string{"security", "breach"},
		render: func(string) string {
			return "We are addressing this security issue immediately. Our team is deploying the critical patches and will provide updates every 2 hours. All departments have been notified to comply with the security protocols."
		},
	},
	{
		keywords: []string{"server", "down", "outage", "error"},
		render: func(summary string) string {
			return fmt.Sprintf("Our engineers are investigating the reported service disruption. %s We will restore normal operation as quickly as possible and follow up with a status update.", summary)
		},
	},
	{
		keywords: []string{"refund", "billing", "invoice", "charge"},
		render: func(summary string) string {
			return fmt.Sprintf("Thank you for flagging this billing matter. %s Our accounts team is reviewing it and will confirm the resolution with you directly.", summary)
		},
	},
}

// TemplateReplier is the rule-table reply strategy. Every branch terminates
// in a complete, fully interpolated message.
type TemplateReplier struct{}

// NewTemplateReplier creates the template strategy.
func NewTemplateReplier() *TemplateReplier {
	return &TemplateReplier{}
}

// Generate picks the highest-priority matching template.
func (r *TemplateReplier) Generate(_ context.Context, cls domain.Classification, summary string, _ []string) string {
	summary = strings.TrimSpace(summary)

	lower := strings.ToLower(summary)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.render(summary)
			}
		}
	}

	switch {
	case cls.Tone == domain.ToneUrgent || cls.Tone == domain.ToneNegative || cls.Urgency == domain.UrgencyHigh:
		return fmt.Sprintf("We are taking immediate action on this urgent matter. %s Our team is prioritizing this and will provide regular updates.", summary)
	case cls.Tone == domain.TonePositive:
		return fmt.Sprintf("Thank you for the positive feedback! %s We appreciate your kind words and will continue to provide excellent service.", summary)
	default:
		return fmt.Sprintf("Received and noted. %s We will review this and get back to you shortly.", summary)
	}
}

// GenerativeReplier drafts the reply with a chat-completion model and falls
// back to the template strategy on any failure.
type GenerativeReplier struct {
	client   out.CompletionClient
	fallback *TemplateReplier
	log      *logger.Logger
}

// NewGenerativeReplier creates the generative strategy.
func NewGenerativeReplier(client out.CompletionClient) *GenerativeReplier {
	return &GenerativeReplier{
		client:   client,
		fallback: NewTemplateReplier(),
		log:      logger.Default().WithField("stage", "reply"),
	}
}

const replySystemPrompt = "You draft short, professional email replies. Respond with the reply text only, no preamble and no signature placeholders."

// Generate builds an instruction prompt from the classification and summary.
func (r *GenerativeReplier) Generate(ctx context.Context, cls domain.Classification, summary string, keyPoints []string) string {
	if r.client == nil {
		return r.fallback.Generate(ctx, cls, summary, keyPoints)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Draft a reply to a message with tone %s and urgency %s.\n", cls.Tone, cls.Urgency)
	fmt.Fprintf(&b, "Message summary: %s\n", strings.TrimSpace(summary))
	if len(keyPoints) > 0 {
		b.WriteString("Points to address:\n")
		for _, p := range keyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	reply, err := r.client.Complete(ctx, replySystemPrompt, b.String())
	if err != nil {
		r.log.WithError(err).Warn("generative reply failed, using template strategy")
		return r.fallback.Generate(ctx, cls, summary, keyPoints)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return r.fallback.Generate(ctx, cls, summary, keyPoints)
	}
	return reply
}
