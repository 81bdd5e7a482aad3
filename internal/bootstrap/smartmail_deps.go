// Package bootstrap wires configuration, stores, adapters and services into
// runnable API and worker instances.
package bootstrap

import (
	"context"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"smartmail_server/adapter/out/inference"
	"smartmail_server/adapter/out/mongodb"
	"smartmail_server/adapter/out/persistence"
	"smartmail_server/adapter/out/zoho"
	"smartmail_server/config"
	"smartmail_server/core/port/in"
	"smartmail_server/core/port/out"
	"smartmail_server/core/service/analysis"
	"smartmail_server/core/service/mailsync"
	"smartmail_server/core/service/report"
	"smartmail_server/infra/database"
	"smartmail_server/pkg/cache"
	"smartmail_server/pkg/logger"
)

// Dependencies holds every shared component. Mongo is optional; when it is
// not configured the raw-message archive is simply skipped.
type Dependencies struct {
	Config *config.Config

	DB    *pgxpool.Pool
	SQLDB *sqlx.DB
	Redis *redis.Client
	Mongo *mongo.Client
	Cache *cache.RedisCache

	Mail     out.MailProvider
	Repo     out.AnalysisRepository
	Recorder *analysis.Recorder

	Pipeline in.AnalysisService
	Sync     in.SyncService
	Report   in.ReportService
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Postgres, via pgxpool for health checks and sqlx for the adapters.
	pool, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = pool
	cleanups = append(cleanups, pool.Close)

	sqlxURL := cfg.DatabaseURL
	if strings.Contains(sqlxURL, "?") {
		sqlxURL += "&default_query_exec_mode=simple_protocol"
	} else {
		sqlxURL += "?default_query_exec_mode=simple_protocol"
	}
	sqlDB, err := sqlx.Connect("pgx", sqlxURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { _ = sqlDB.Close() })

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Redis = redisClient
	cleanups = append(cleanups, func() { _ = redisClient.Close() })
	deps.Cache = cache.NewRedisCache(redisClient)

	var archive out.MessageArchive
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.Mongo = mongoClient
		cleanups = append(cleanups, func() { _ = mongoClient.Disconnect(context.Background()) })

		archiveAdapter := mongodb.NewArchiveAdapter(mongoClient.Database(cfg.MongoDBName))
		if err := archiveAdapter.EnsureIndexes(context.Background()); err != nil {
			logger.Warn("Failed to ensure archive indexes: %v", err)
		}
		archive = archiveAdapter
	} else {
		logger.Warn("MONGODB_URL not set, raw message archive disabled")
	}

	repo := persistence.NewAnalysisAdapter(sqlDB)
	deps.Repo = repo
	deps.Recorder = analysis.NewRecorder(repo, archive)

	seen := persistence.NewSeenCacheAdapter(deps.Cache,
		time.Duration(cfg.SeenTTLDays)*24*time.Hour)

	deps.Mail = zoho.NewAdapter(zoho.Config{
		ClientID:     cfg.ZohoClientID,
		ClientSecret: cfg.ZohoClientSecret,
		RefreshToken: cfg.ZohoRefreshToken,
		AccountsURL:  cfg.ZohoAccountsURL,
		BaseURL:      cfg.ZohoMailBaseURL,
		CacheTTL:     cfg.ZohoCacheTTL,
		ListLimit:    cfg.ZohoEmailLimit,
	})

	deps.Pipeline = newPipeline(cfg)
	deps.Sync = mailsync.NewService(deps.Mail, deps.Pipeline, deps.Recorder, repo, seen)
	deps.Report = report.NewService(repo, deps.Cache,
		time.Duration(cfg.StatsCacheTTLSec)*time.Second)

	return deps, cleanup, nil
}

// newPipeline assembles the analysis stages from config. Every stage
// degrades locally, so missing model credentials still yield a working
// pipeline.
func newPipeline(cfg *config.Config) *analysis.Pipeline {
	hf := inference.NewHFClient(inference.HFConfig{
		APIKey:       cfg.HFAPIKey,
		SummaryURL:   cfg.HFSummaryURL,
		SentimentURL: cfg.HFSentimentURL,
		Timeout:      time.Duration(cfg.HFTimeoutSec) * time.Second,
		MaxRetries:   cfg.HFMaxRetries,
		RetryDelay:   time.Duration(cfg.HFRetryDelaySec) * time.Second,
		WaitCap:      time.Duration(cfg.HFWaitCapSec) * time.Second,
	})

	scorer := analysis.NewKeywordScorer(analysis.DefaultLexicons(), analysis.ScorerConfig{
		HighCutoff:   cfg.UrgencyHighCutoff,
		MediumCutoff: cfg.UrgencyMediumCutoff,
		ToneMargin:   cfg.ToneMargin,
	})

	summarizer := analysis.NewSummarizer(hf, analysis.SummarizerConfig{
		ShortTextRunes:    cfg.ShortTextRunes,
		InputCap:          cfg.SummaryInputCap,
		MaxLength:         cfg.SummaryMaxLength,
		MinLength:         cfg.SummaryMinLength,
		MinAcceptRunes:    cfg.SummaryMinAccept,
		FallbackSentences: cfg.FallbackSentences,
	})

	classifier := analysis.NewClassifier(scorer, hf, analysis.ClassifierConfig{
		ConfidenceFloor: cfg.ConfidenceFloor,
		Precedence:      analysis.TonePrecedence(cfg.TonePrecedence),
	})

	extractor := analysis.NewKeyPointExtractor(analysis.KeyPointConfig{
		ScanCap:    cfg.KeyPointScanCap,
		DisplayCap: cfg.KeyPointDisplayCap,
		MaxPoints:  cfg.KeyPointMax,
	})

	var replier analysis.ReplyGenerator = analysis.NewTemplateReplier()
	if cfg.ReplyStrategy == "generative" {
		replier = analysis.NewGenerativeReplier(inference.NewOpenAIClient(inference.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     time.Duration(cfg.LLMTimeoutSec) * time.Second,
		}))
	}

	return analysis.NewPipeline(summarizer, classifier, extractor, replier, analysis.PipelineConfig{
		MaxInputRunes:      cfg.MaxInputRunes,
		NoContentThreshold: cfg.NoContentThreshold,
	})
}
