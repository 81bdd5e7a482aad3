package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"smartmail_server/core/port/in"
	"smartmail_server/core/port/out"
	"smartmail_server/pkg/logger"
	"smartmail_server/pkg/textutil"
)

const (
	botListLimit      = 5
	botLabelRunes     = 40
	botDraftRunes     = 100
	botActionAnalyze  = "analyze_specific"
	botActionLoadList = "load_list"
)

// BotHandler drives the Cliq bot conversation. Cliq renders whatever JSON it
// gets, so every path answers 200 with either a message card or a plain text
// fallback. Errors never surface as HTTP failures.
type BotHandler struct {
	sync in.SyncService
	mail out.MailProvider
	log  *logger.Logger
}

func NewBotHandler(sync in.SyncService, mail out.MailProvider) *BotHandler {
	return &BotHandler{sync: sync, mail: mail, log: logger.Default()}
}

func (h *BotHandler) Register(app fiber.Router) {
	app.Post("/zoho-bot", h.Handle)
}

type botEvent struct {
	Action struct {
		Data struct {
			ActionType string `json:"action_type"`
			MsgID      string `json:"msg_id"`
		} `json:"data"`
	} `json:"action"`
}

type botButton struct {
	Label  string         `json:"label"`
	Type   string         `json:"type"`
	Action map[string]any `json:"action"`
}

type botCardRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type botCard struct {
	Title string       `json:"title"`
	Theme string       `json:"theme"`
	Rows  []botCardRow `json:"rows"`
}

func botText(c *fiber.Ctx, text string) error {
	return c.JSON(fiber.Map{"text": text})
}

func invokeButton(label, actionType, msgID string) botButton {
	data := fiber.Map{"action_type": actionType}
	if msgID != "" {
		data["msg_id"] = msgID
	}
	return botButton{
		Label: label,
		Type:  "+",
		Action: map[string]any{
			"type": "invoke.function",
			"data": data,
		},
	}
}

func (h *BotHandler) Handle(c *fiber.Ctx) error {
	var event botEvent
	if err := c.BodyParser(&event); err != nil {
		h.log.WithError(err).Warn("bot: unparseable event")
		return botText(c, "System error. Please try again.")
	}

	switch event.Action.Data.ActionType {
	case botActionAnalyze:
		return h.analyzeMessage(c, event.Action.Data.MsgID)
	case botActionLoadList:
		buttons, err := h.recentButtons(c.Context())
		if err != nil || len(buttons) == 0 {
			return botText(c, "I couldn't fetch emails. Check your Zoho connection.")
		}
		return c.JSON(fiber.Map{
			"text":    "Fetching latest emails...",
			"buttons": buttons,
		})
	default:
		return h.greeting(c)
	}
}

// greeting handles the first contact: any plain message or an unknown action
// gets the intro card plus one button per recent inbox message.
func (h *BotHandler) greeting(c *fiber.Ctx) error {
	buttons, err := h.recentButtons(c.Context())
	if err != nil || len(buttons) == 0 {
		return botText(c, "I couldn't fetch emails. Check your Zoho connection.")
	}
	return c.JSON(fiber.Map{
		"text": "Hello! I am SmartMail.",
		"card": botCard{
			Title: "Inbox Triage",
			Theme: "modern-inline",
			Rows: []botCardRow{
				{Label: "Status", Value: "Ready to Analyze"},
				{Label: "Instruction", Value: "Select an email below to process:"},
			},
		},
		"buttons": buttons,
	})
}

func (h *BotHandler) analyzeMessage(c *fiber.Ctx, msgID string) error {
	rec, err := h.sync.AnalyzeMessage(c.Context(), msgID)
	if err != nil {
		h.log.WithField("message_id", msgID).WithError(err).Error("bot: analysis failed")
		return botText(c, "Analysis failed. Please try another email.")
	}

	title := rec.Subject
	if title == "" {
		title = "Email Analysis"
	}
	return c.JSON(fiber.Map{
		"text": "Analysis Complete",
		"card": botCard{
			Title: title,
			Theme: "modern-inline",
			Rows: []botCardRow{
				{Label: "Summary", Value: rec.Summary},
				{Label: "Tone", Value: string(rec.Tone)},
				{Label: "Urgency", Value: string(rec.Urgency)},
				{Label: "Draft", Value: textutil.TruncateRunes(rec.SuggestedReply, botDraftRunes)},
			},
		},
		"buttons": []botButton{
			invokeButton("Analyze Another Email?", botActionLoadList, ""),
		},
	})
}

func (h *BotHandler) recentButtons(ctx context.Context) ([]botButton, error) {
	messages, err := h.mail.ListRecent(ctx, botListLimit)
	if err != nil {
		h.log.WithError(err).Error("bot: inbox list failed")
		return nil, err
	}
	buttons := make([]botButton, 0, len(messages))
	for _, msg := range messages {
		label := textutil.TruncateRunes(msg.Subject, botLabelRunes)
		if label == "" {
			label = "No Subject"
		}
		buttons = append(buttons, invokeButton(label, botActionAnalyze, msg.MessageID))
	}
	return buttons, nil
}
