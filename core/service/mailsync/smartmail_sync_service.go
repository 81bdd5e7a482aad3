// Package mailsync drives the fetch -> analyze -> persist loop over the
// connected mailbox.
package mailsync

import (
	"context"
	"fmt"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/in"
	"smartmail_server/core/port/out"
	"smartmail_server/core/service/analysis"
	"smartmail_server/pkg/apperr"
	"smartmail_server/pkg/logger"
)

// Service implements in.SyncService.
type Service struct {
	mail     out.MailProvider
	pipeline in.AnalysisService
	recorder *analysis.Recorder
	repo     out.AnalysisRepository
	seen     out.SeenCache
	log      *logger.Logger
}

// NewService creates the sync service. seen may be nil; the repository is
// then the only dedupe source.
func NewService(mail out.MailProvider, pipeline in.AnalysisService, recorder *analysis.Recorder, repo out.AnalysisRepository, seen out.SeenCache) *Service {
	return &Service{
		mail:     mail,
		pipeline: pipeline,
		recorder: recorder,
		repo:     repo,
		seen:     seen,
		log:      logger.Default().WithField("service", "mailsync"),
	}
}

// SyncInbox lists up to limit recent messages and analyzes the unseen ones.
// Per-message failures are logged and skipped; only a failed listing aborts
// the sync.
func (s *Service) SyncInbox(ctx context.Context, limit int) (processed, skipped int, err error) {
	messages, err := s.mail.ListRecent(ctx, limit)
	if err != nil {
		return 0, 0, apperr.ExternalError("mail provider", err)
	}

	for _, msg := range messages {
		if msg.MessageID == "" {
			continue
		}

		already, checkErr := s.alreadyAnalyzed(ctx, msg.MessageID)
		if checkErr != nil {
			s.log.WithError(checkErr).WithField("message_id", msg.MessageID).Warn("dedupe check failed, analyzing anyway")
		}
		if already {
			skipped++
			continue
		}

		if _, aerr := s.analyzeOne(ctx, msg.MessageID); aerr != nil {
			s.log.WithError(aerr).WithField("message_id", msg.MessageID).Warn("message analysis failed")
			continue
		}
		processed++
	}

	s.log.Info("inbox sync done: %d processed, %d skipped", processed, skipped)
	return processed, skipped, nil
}

// AnalyzeMessage analyzes one mailbox message by ID and persists the result.
func (s *Service) AnalyzeMessage(ctx context.Context, messageID string) (*domain.AnalysisRecord, error) {
	if messageID == "" {
		return nil, apperr.MissingField("message_id")
	}
	return s.analyzeOne(ctx, messageID)
}

func (s *Service) analyzeOne(ctx context.Context, messageID string) (*domain.AnalysisRecord, error) {
	content, err := s.mail.GetContent(ctx, messageID)
	if err != nil {
		return nil, apperr.ExternalError("mail provider", err)
	}
	if content == nil {
		return nil, apperr.NotFound(fmt.Sprintf("message %s", messageID))
	}

	result := s.pipeline.Analyze(ctx, domain.AnalysisRequest{
		Text:    content.Body,
		Subject: content.Subject,
		Source:  "zoho-mail",
	})

	rec, err := s.recorder.RecordSync(ctx, result, analysis.RecordMeta{
		MessageID:   content.MessageID,
		Subject:     content.Subject,
		FromAddress: content.FromAddress,
		Source:      "zoho-mail",
		RawBody:     content.RawBody,
	})
	if err != nil {
		return nil, apperr.DatabaseError("save analysis", err)
	}

	s.markSeen(ctx, messageID)
	return rec, nil
}

// alreadyAnalyzed consults the cache first and falls back to the repository.
func (s *Service) alreadyAnalyzed(ctx context.Context, messageID string) (bool, error) {
	if s.seen != nil {
		hit, err := s.seen.Seen(ctx, messageID)
		if err == nil {
			if hit {
				return true, nil
			}
		} else {
			s.log.WithError(err).Debug("seen cache unavailable, falling back to repository")
		}
	}

	if s.repo != nil {
		return s.repo.ExistsMessage(ctx, messageID)
	}
	return false, nil
}

func (s *Service) markSeen(ctx context.Context, messageID string) {
	if s.seen == nil {
		return
	}
	if err := s.seen.MarkSeen(ctx, messageID); err != nil {
		s.log.WithError(err).WithField("message_id", messageID).Debug("mark seen failed")
	}
}
