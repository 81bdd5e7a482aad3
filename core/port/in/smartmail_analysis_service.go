package in

import (
	"context"

	"smartmail_server/core/domain"
)

// AnalysisService is the single inbound boundary of the pipeline. It never
// returns an error: for any input, including empty or garbage text, the
// result is a fully populated AnalysisResult.
type AnalysisService interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) *domain.AnalysisResult
}

// SyncService drives the fetch -> analyze -> persist loop over the inbox.
type SyncService interface {
	// SyncInbox analyzes up to limit unseen messages. Returns how many were
	// analyzed and how many were skipped as already seen.
	SyncInbox(ctx context.Context, limit int) (processed, skipped int, err error)

	// AnalyzeMessage analyzes one mailbox message by ID and persists the result.
	AnalyzeMessage(ctx context.Context, messageID string) (*domain.AnalysisRecord, error)
}

// ReportService serves the dashboard read side.
type ReportService interface {
	Stats(ctx context.Context) (*domain.AnalysisStats, error)
	ListAnalyses(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error)
}
