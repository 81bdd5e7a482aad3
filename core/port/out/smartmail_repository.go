package out

import (
	"context"

	"smartmail_server/core/domain"
)

// AnalysisRepository persists analysis records for the dashboard. Saves are
// fire-and-forget from the pipeline's perspective; a failed save never
// affects the returned result.
type AnalysisRepository interface {
	Save(ctx context.Context, rec *domain.AnalysisRecord) error
	GetByID(ctx context.Context, id string) (*domain.AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error)
	Stats(ctx context.Context, recentLimit int) (*domain.AnalysisStats, error)
	ExistsMessage(ctx context.Context, messageID string) (bool, error)
}

// MessageArchive stores the raw (possibly HTML) message body alongside the
// structured record, best effort.
type MessageArchive interface {
	Archive(ctx context.Context, messageID, subject, rawBody, source string) error
}

// SeenCache remembers which message IDs were already analyzed so inbox sync
// does not burn model credits re-analyzing them.
type SeenCache interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	MarkSeen(ctx context.Context, messageID string) error
}

// MailProvider is the mailbox read boundary (Zoho in production).
type MailProvider interface {
	ListRecent(ctx context.Context, limit int) ([]domain.InboxMessage, error)
	GetContent(ctx context.Context, messageID string) (*domain.MessageContent, error)
	FindMessageIDBySubject(ctx context.Context, userText string) (string, error)
}
