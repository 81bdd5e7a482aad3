package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/out"
	"smartmail_server/pkg/logger"
)

// Recorder is the fire-and-forget persistence collaborator. A failed save
// can never affect the analysis result already returned to the caller.
type Recorder struct {
	repo    out.AnalysisRepository
	archive out.MessageArchive
	timeout time.Duration
	log     *logger.Logger
}

// NewRecorder creates a recorder. Either dependency may be nil and is then
// skipped.
func NewRecorder(repo out.AnalysisRepository, archive out.MessageArchive) *Recorder {
	return &Recorder{
		repo:    repo,
		archive: archive,
		timeout: 10 * time.Second,
		log:     logger.Default().WithField("stage", "recorder"),
	}
}

// RecordMeta carries the request metadata persisted alongside the result.
type RecordMeta struct {
	MessageID   string
	Subject     string
	FromAddress string
	Source      string
	RawBody     string
}

// Record builds the persisted record and saves it in the background with a
// detached context. It returns the record immediately so callers can render
// its ID without waiting on storage.
func (r *Recorder) Record(result *domain.AnalysisResult, meta RecordMeta) *domain.AnalysisRecord {
	rec := &domain.AnalysisRecord{
		ID:             uuid.NewString(),
		MessageID:      meta.MessageID,
		Subject:        meta.Subject,
		FromAddress:    meta.FromAddress,
		Source:         meta.Source,
		Summary:        result.Summary,
		Tone:           result.Tone,
		Urgency:        result.Urgency,
		KeyPoints:      result.KeyPoints,
		SuggestedReply: result.SuggestedReply,
		CreatedAt:      time.Now().UTC(),
	}

	go r.persist(rec, meta.RawBody)
	return rec
}

// RecordSync saves the record before returning, for callers that need the
// row visible immediately (inbox sync reporting).
func (r *Recorder) RecordSync(ctx context.Context, result *domain.AnalysisResult, meta RecordMeta) (*domain.AnalysisRecord, error) {
	rec := &domain.AnalysisRecord{
		ID:             uuid.NewString(),
		MessageID:      meta.MessageID,
		Subject:        meta.Subject,
		FromAddress:    meta.FromAddress,
		Source:         meta.Source,
		Summary:        result.Summary,
		Tone:           result.Tone,
		Urgency:        result.Urgency,
		KeyPoints:      result.KeyPoints,
		SuggestedReply: result.SuggestedReply,
		CreatedAt:      time.Now().UTC(),
	}

	if r.repo != nil {
		if err := r.repo.Save(ctx, rec); err != nil {
			return nil, err
		}
	}
	if r.archive != nil && meta.RawBody != "" {
		go r.archiveRaw(rec, meta.RawBody)
	}
	return rec, nil
}

func (r *Recorder) persist(rec *domain.AnalysisRecord, rawBody string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if r.repo != nil {
		if err := r.repo.Save(ctx, rec); err != nil {
			r.log.WithError(err).WithField("analysis_id", rec.ID).Warn("background save failed")
		}
	}
	if r.archive != nil && rawBody != "" {
		if err := r.archive.Archive(ctx, rec.MessageID, rec.Subject, rawBody, rec.Source); err != nil {
			r.log.WithError(err).WithField("analysis_id", rec.ID).Warn("raw archive failed")
		}
	}
}

func (r *Recorder) archiveRaw(rec *domain.AnalysisRecord, rawBody string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.archive.Archive(ctx, rec.MessageID, rec.Subject, rawBody, rec.Source); err != nil {
		r.log.WithError(err).WithField("analysis_id", rec.ID).Warn("raw archive failed")
	}
}
