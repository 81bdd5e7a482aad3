package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"smartmail_server/core/service/analysis"
)

func newWebhookApp(pipeline *fixedPipeline) *fiber.App {
	app := fiber.New()
	NewWebhookHandler(pipeline, analysis.NewRecorder(nil, nil)).Register(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid json response %q: %v", raw, err)
	}
	return resp.StatusCode, decoded
}

func replyTexts(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["replies"].([]any)
	if !ok {
		t.Fatalf("missing replies array in %v", body)
	}
	texts := make([]string, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			t.Fatalf("reply is not an object: %v", r)
		}
		text, _ := m["text"].(string)
		texts = append(texts, text)
	}
	return texts
}

func TestWebhookExtractsTextFromEveryShape(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"top level message", `{"message": "top level"}`, "top level"},
		{"data message", `{"data": {"message": "nested message"}}`, "nested message"},
		{"data text", `{"data": {"text": "nested text"}}`, "nested text"},
		{"visitor message", `{"visitor": {"message": "visitor text"}}`, "visitor text"},
		{"top level wins", `{"message": "first", "data": {"message": "second"}}`, "first"},
		{"whitespace trimmed", `{"message": "  padded  "}`, "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &fixedPipeline{}
			app := newWebhookApp(pipeline)

			status, _ := postJSON(t, app, "/webhook", tt.body)
			if status != 200 {
				t.Fatalf("status = %d, want 200", status)
			}
			if pipeline.calls != 1 {
				t.Fatalf("pipeline calls = %d, want 1", pipeline.calls)
			}
			if pipeline.lastReq.Text != tt.want {
				t.Errorf("analyzed text = %q, want %q", pipeline.lastReq.Text, tt.want)
			}
			if pipeline.lastReq.Source != "salesiq-bot" {
				t.Errorf("source = %q, want salesiq-bot", pipeline.lastReq.Source)
			}
		})
	}
}

func TestWebhookGreetsWhenNoText(t *testing.T) {
	for _, body := range []string{`{}`, `{"message": "   "}`, `{"visitor": {"name": "Kim"}}`} {
		pipeline := &fixedPipeline{}
		app := newWebhookApp(pipeline)

		status, decoded := postJSON(t, app, "/webhook", body)
		if status != 200 {
			t.Fatalf("status = %d, want 200", status)
		}
		if pipeline.calls != 0 {
			t.Errorf("pipeline called %d times on empty payload %q", pipeline.calls, body)
		}
		texts := replyTexts(t, decoded)
		if len(texts) != 2 {
			t.Fatalf("greeting replies = %d, want 2", len(texts))
		}
	}
}

func TestWebhookRepliesWithAnalysis(t *testing.T) {
	app := newWebhookApp(&fixedPipeline{})

	status, decoded := postJSON(t, app, "/webhook", `{"message": "the server is down"}`)
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	texts := replyTexts(t, decoded)
	if len(texts) != 3 {
		t.Fatalf("replies = %d, want 3", len(texts))
	}
	if !strings.HasPrefix(texts[0], "Summary: ") {
		t.Errorf("first reply = %q, want summary line", texts[0])
	}
	if !strings.Contains(texts[1], "Urgent") || !strings.Contains(texts[1], "High") {
		t.Errorf("second reply = %q, want tone and urgency", texts[1])
	}
	if !strings.HasPrefix(texts[2], "Suggested reply: ") {
		t.Errorf("third reply = %q, want suggested reply line", texts[2])
	}
}

func TestWebhookNeverFailsOnGarbage(t *testing.T) {
	app := newWebhookApp(&fixedPipeline{})

	status, decoded := postJSON(t, app, "/webhook", `{not json`)
	if status != 200 {
		t.Fatalf("status = %d, want 200 even for garbage", status)
	}
	if texts := replyTexts(t, decoded); len(texts) == 0 {
		t.Error("expected a fallback reply for garbage payload")
	}
}
