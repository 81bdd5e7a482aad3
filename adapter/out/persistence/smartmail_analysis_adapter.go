// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"smartmail_server/core/domain"
)

// AnalysisAdapter implements out.AnalysisRepository using PostgreSQL.
type AnalysisAdapter struct {
	db *sqlx.DB
}

// NewAnalysisAdapter creates a new AnalysisAdapter.
func NewAnalysisAdapter(db *sqlx.DB) *AnalysisAdapter {
	return &AnalysisAdapter{db: db}
}

type analysisRow struct {
	ID             string         `db:"id"`
	MessageID      sql.NullString `db:"message_id"`
	Subject        sql.NullString `db:"subject"`
	FromAddress    sql.NullString `db:"from_address"`
	Source         string         `db:"source"`
	Summary        string         `db:"summary"`
	Tone           string         `db:"tone"`
	Urgency        string         `db:"urgency"`
	KeyPoints      pq.StringArray `db:"key_points"`
	SuggestedReply string         `db:"suggested_reply"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r *analysisRow) toEntity() *domain.AnalysisRecord {
	return &domain.AnalysisRecord{
		ID:             r.ID,
		MessageID:      r.MessageID.String,
		Subject:        r.Subject.String,
		FromAddress:    r.FromAddress.String,
		Source:         r.Source,
		Summary:        r.Summary,
		Tone:           domain.Tone(r.Tone),
		Urgency:        domain.Urgency(r.Urgency),
		KeyPoints:      []string(r.KeyPoints),
		SuggestedReply: r.SuggestedReply,
		CreatedAt:      r.CreatedAt,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Save inserts an analysis record. Re-analyzing the same mailbox message
// overwrites the previous row.
func (a *AnalysisAdapter) Save(ctx context.Context, rec *domain.AnalysisRecord) error {
	query := `
		INSERT INTO analyses (id, message_id, subject, from_address, source, summary, tone, urgency, key_points, suggested_reply, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			summary = EXCLUDED.summary,
			tone = EXCLUDED.tone,
			urgency = EXCLUDED.urgency,
			key_points = EXCLUDED.key_points,
			suggested_reply = EXCLUDED.suggested_reply`

	_, err := a.db.ExecContext(ctx, query,
		rec.ID,
		nullable(rec.MessageID),
		nullable(rec.Subject),
		nullable(rec.FromAddress),
		rec.Source,
		rec.Summary,
		string(rec.Tone),
		string(rec.Urgency),
		pq.StringArray(rec.KeyPoints),
		rec.SuggestedReply,
		rec.CreatedAt,
	)
	return err
}

const analysisColumns = `id, message_id, subject, from_address, source, summary, tone, urgency, key_points, suggested_reply, created_at`

// GetByID retrieves one record, nil when absent.
func (a *AnalysisAdapter) GetByID(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	var row analysisRow
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`

	err := a.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return row.toEntity(), nil
}

// List returns the latest records, newest first.
func (a *AnalysisAdapter) List(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	var rows []analysisRow
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC LIMIT $1`

	if err := a.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	records := make([]*domain.AnalysisRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toEntity()
	}
	return records, nil
}

// Stats aggregates the dashboard counters in one round trip plus a recent
// fetch.
func (a *AnalysisAdapter) Stats(ctx context.Context, recentLimit int) (*domain.AnalysisStats, error) {
	var counts struct {
		Total       int `db:"total"`
		HighUrgency int `db:"high_urgency"`
		Negative    int `db:"negative"`
		Positive    int `db:"positive"`
		Neutral     int `db:"neutral"`
	}
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE urgency = 'High') AS high_urgency,
			COUNT(*) FILTER (WHERE tone = 'Negative') AS negative,
			COUNT(*) FILTER (WHERE tone = 'Positive') AS positive,
			COUNT(*) FILTER (WHERE tone = 'Neutral') AS neutral
		FROM analyses`

	if err := a.db.GetContext(ctx, &counts, query); err != nil {
		return nil, err
	}

	recent, err := a.List(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisStats{
		Total:       counts.Total,
		HighUrgency: counts.HighUrgency,
		Negative:    counts.Negative,
		Positive:    counts.Positive,
		Neutral:     counts.Neutral,
		Recent:      recent,
	}, nil
}

// ExistsMessage reports whether a mailbox message was already analyzed.
func (a *AnalysisAdapter) ExistsMessage(ctx context.Context, messageID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM analyses WHERE message_id = $1)`

	if err := a.db.GetContext(ctx, &exists, query, messageID); err != nil {
		return false, err
	}
	return exists, nil
}
