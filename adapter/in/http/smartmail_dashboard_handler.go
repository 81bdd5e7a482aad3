package http

import (
	"github.com/gofiber/fiber/v2"

	"smartmail_server/core/port/in"
	"smartmail_server/pkg/response"
)

// DashboardHandler serves the read side plus the manual sync trigger.
type DashboardHandler struct {
	report in.ReportService
	sync   in.SyncService
	limit  int
}

func NewDashboardHandler(report in.ReportService, sync in.SyncService, syncBatch int) *DashboardHandler {
	return &DashboardHandler{report: report, sync: sync, limit: syncBatch}
}

func (h *DashboardHandler) Register(api fiber.Router) {
	api.Get("/stats", h.Stats)
	api.Get("/analyses", h.ListAnalyses)
	api.Get("/analyses/:id", h.GetAnalysis)
	api.Post("/sync", h.Sync)
}

func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.report.Stats(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return response.OK(c, stats)
}

func (h *DashboardHandler) ListAnalyses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	records, err := h.report.ListAnalyses(c.Context(), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.OKWithMeta(c, records, &response.Meta{Total: len(records)})
}

func (h *DashboardHandler) GetAnalysis(c *fiber.Ctx) error {
	rec, err := h.report.GetAnalysis(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return response.OK(c, rec)
}

// Sync runs one inbox sweep inline and reports the counts. The periodic
// worker uses the same service; this endpoint backs the dashboard's
// "sync now" button.
func (h *DashboardHandler) Sync(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.limit)
	processed, skipped, err := h.sync.SyncInbox(c.Context(), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.OK(c, fiber.Map{
		"processed": processed,
		"skipped":   skipped,
	})
}
