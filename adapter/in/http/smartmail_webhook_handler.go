package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/in"
	"smartmail_server/core/service/analysis"
	"smartmail_server/pkg/logger"
)

// WebhookHandler answers SalesIQ chat webhooks. SalesIQ retries on non-200
// responses and shows raw errors to visitors, so this handler always replies
// with a well-formed replies array, whatever the payload looks like.
type WebhookHandler struct {
	pipeline in.AnalysisService
	recorder *analysis.Recorder
}

func NewWebhookHandler(pipeline in.AnalysisService, recorder *analysis.Recorder) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline, recorder: recorder}
}

func (h *WebhookHandler) Register(app fiber.Router) {
	app.Post("/webhook", h.Handle)
}

// webhookPayload covers the payload variants SalesIQ sends depending on the
// channel: a top-level message, an operator-relay under data, or the visitor
// object used by older widget versions.
type webhookPayload struct {
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
		Text    string `json:"text"`
	} `json:"data"`
	Visitor struct {
		Message string `json:"message"`
		Name    string `json:"name"`
		Email   string `json:"email"`
	} `json:"visitor"`
}

type webhookReply struct {
	Text string `json:"text"`
}

func repliesResponse(c *fiber.Ctx, texts ...string) error {
	replies := make([]webhookReply, 0, len(texts))
	for _, t := range texts {
		replies = append(replies, webhookReply{Text: t})
	}
	return c.JSON(fiber.Map{"replies": replies})
}

func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		logger.Default().WithError(err).Warn("webhook: unparseable payload")
		return repliesResponse(c, "Sorry, I could not read that message. Please try again.")
	}

	text := extractWebhookText(payload)
	if text == "" {
		return repliesResponse(c,
			"Hi! Send me any email or message text and I will analyze it for you.",
			"I will tell you the tone, how urgent it is, and suggest a reply.")
	}

	result := h.pipeline.Analyze(c.Context(), domain.AnalysisRequest{
		Text:   text,
		Source: "salesiq-bot",
	})
	h.recorder.Record(result, analysis.RecordMeta{
		FromAddress: payload.Visitor.Email,
		Source:      "salesiq-bot",
		RawBody:     text,
	})

	return repliesResponse(c,
		"Summary: "+result.Summary,
		"Tone: "+string(result.Tone)+" | Urgency: "+string(result.Urgency),
		"Suggested reply: "+result.SuggestedReply)
}

// extractWebhookText walks the known payload shapes in priority order and
// returns the first non-empty message text.
func extractWebhookText(p webhookPayload) string {
	for _, candidate := range []string{
		p.Message,
		p.Data.Message,
		p.Data.Text,
		p.Visitor.Message,
	} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}
