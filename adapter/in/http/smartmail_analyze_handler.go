// Package http contains the fiber handlers fronting the analysis pipeline.
package http

import (
	"github.com/gofiber/fiber/v2"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/in"
	"smartmail_server/core/service/analysis"
	"smartmail_server/pkg/response"
)

// AnalyzeHandler exposes the pipeline directly for API clients.
type AnalyzeHandler struct {
	pipeline in.AnalysisService
	recorder *analysis.Recorder
}

func NewAnalyzeHandler(pipeline in.AnalysisService, recorder *analysis.Recorder) *AnalyzeHandler {
	return &AnalyzeHandler{pipeline: pipeline, recorder: recorder}
}

func (h *AnalyzeHandler) Register(api fiber.Router) {
	api.Post("/analyze", h.Analyze)
}

// Analyze runs one ad-hoc analysis and persists the record in the background.
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var req struct {
		Text    string `json:"text"`
		Subject string `json:"subject"`
		Source  string `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Text == "" && req.Subject == "" {
		return response.BadRequest(c, "text is required")
	}
	source := req.Source
	if source == "" {
		source = "api"
	}

	result := h.pipeline.Analyze(c.Context(), domain.AnalysisRequest{
		Text:    req.Text,
		Subject: req.Subject,
		Source:  source,
	})

	rec := h.recorder.Record(result, analysis.RecordMeta{
		Subject: req.Subject,
		Source:  source,
		RawBody: req.Text,
	})

	return response.OK(c, fiber.Map{
		"id":       rec.ID,
		"analysis": result,
	})
}
