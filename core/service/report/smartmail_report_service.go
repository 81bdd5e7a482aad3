// Package report serves the dashboard read side.
package report

import (
	"context"
	"time"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/out"
	"smartmail_server/pkg/apperr"
	"smartmail_server/pkg/cache"
	"smartmail_server/pkg/logger"
)

const (
	statsCacheKey   = "smartmail:stats"
	recentLimit     = 5
	defaultListSize = 200
)

// Service implements in.ReportService over the analysis repository with a
// short-TTL stats cache.
type Service struct {
	repo     out.AnalysisRepository
	cache    *cache.RedisCache
	statsTTL time.Duration
	log      *logger.Logger
}

// NewService creates the report service. cache may be nil; stats are then
// computed per request.
func NewService(repo out.AnalysisRepository, c *cache.RedisCache, statsTTL time.Duration) *Service {
	if statsTTL <= 0 {
		statsTTL = 30 * time.Second
	}
	return &Service{
		repo:     repo,
		cache:    c,
		statsTTL: statsTTL,
		log:      logger.Default().WithField("service", "report"),
	}
}

// Stats returns the dashboard counters, cached briefly.
func (s *Service) Stats(ctx context.Context) (*domain.AnalysisStats, error) {
	if s.cache != nil {
		var cached domain.AnalysisStats
		if hit, err := s.cache.GetJSON(ctx, statsCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx, recentLimit)
	if err != nil {
		return nil, apperr.DatabaseError("load stats", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, stats, s.statsTTL); err != nil {
			s.log.WithError(err).Debug("stats cache write failed")
		}
	}
	return stats, nil
}

// ListAnalyses returns the latest analyses, newest first.
func (s *Service) ListAnalyses(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	if limit <= 0 || limit > defaultListSize {
		limit = defaultListSize
	}
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperr.DatabaseError("list analyses", err)
	}
	return records, nil
}

// GetAnalysis returns one record by ID.
func (s *Service) GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	if id == "" {
		return nil, apperr.MissingField("id")
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.DatabaseError("get analysis", err)
	}
	if rec == nil {
		return nil, apperr.NotFound("analysis")
	}
	return rec, nil
}
