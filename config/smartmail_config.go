package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// Hosted inference (HuggingFace-style)
	HFAPIKey          string
	HFSummaryURL      string
	HFSentimentURL    string
	HFTimeoutSec      int
	HFMaxRetries      int
	HFRetryDelaySec   int
	HFWaitCapSec      int

	// OpenAI (generative reply strategy)
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int

	// Pipeline tuning
	MaxInputRunes       int
	NoContentThreshold  int
	ShortTextRunes      int
	SummaryInputCap     int
	SummaryMaxLength    int
	SummaryMinLength    int
	SummaryMinAccept    int
	FallbackSentences   int
	ConfidenceFloor     float64
	UrgencyHighCutoff   int
	UrgencyMediumCutoff int
	ToneMargin          int
	TonePrecedence      string // "keyword" or "remote"
	KeyPointScanCap     int
	KeyPointDisplayCap  int
	KeyPointMax         int
	ReplyStrategy       string // "template" or "generative"

	// Zoho Mail
	ZohoClientID     string
	ZohoClientSecret string
	ZohoRefreshToken string
	ZohoAccountsURL  string
	ZohoMailBaseURL  string
	ZohoEmailLimit   int
	ZohoCacheTTL     time.Duration

	// Sync
	SyncBatchSize   int
	SyncIntervalSec int
	SeenTTLDays     int

	// Cache
	StatsCacheTTLSec int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "smartmail"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Hosted inference
		HFAPIKey:        getEnv("HF_API_KEY", ""),
		HFSummaryURL:    getEnv("HF_SUMMARY_URL", "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"),
		HFSentimentURL:  getEnv("HF_SENTIMENT_URL", "https://api-inference.huggingface.co/models/cardiffnlp/twitter-roberta-base-sentiment"),
		HFTimeoutSec:    getEnvInt("HF_TIMEOUT_SEC", 15),
		HFMaxRetries:    getEnvInt("HF_MAX_RETRIES", 2),
		HFRetryDelaySec: getEnvInt("HF_RETRY_DELAY_SEC", 2),
		HFWaitCapSec:    getEnvInt("HF_WAIT_CAP_SEC", 10),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 256),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 30),

		// Pipeline tuning
		MaxInputRunes:       getEnvInt("MAX_INPUT_RUNES", 2000),
		NoContentThreshold:  getEnvInt("NO_CONTENT_THRESHOLD", 5),
		ShortTextRunes:      getEnvInt("SHORT_TEXT_RUNES", 200),
		SummaryInputCap:     getEnvInt("SUMMARY_INPUT_CAP", 1000),
		SummaryMaxLength:    getEnvInt("SUMMARY_MAX_LENGTH", 60),
		SummaryMinLength:    getEnvInt("SUMMARY_MIN_LENGTH", 15),
		SummaryMinAccept:    getEnvInt("SUMMARY_MIN_ACCEPT", 20),
		FallbackSentences:   getEnvInt("FALLBACK_SENTENCES", 2),
		ConfidenceFloor:     getEnvFloat("CONFIDENCE_FLOOR", 0.70),
		UrgencyHighCutoff:   getEnvInt("URGENCY_HIGH_CUTOFF", 4),
		UrgencyMediumCutoff: getEnvInt("URGENCY_MEDIUM_CUTOFF", 1),
		ToneMargin:          getEnvInt("TONE_MARGIN", 2),
		TonePrecedence:      getEnv("TONE_PRECEDENCE", "keyword"),
		KeyPointScanCap:     getEnvInt("KEYPOINT_SCAN_CAP", 12),
		KeyPointDisplayCap:  getEnvInt("KEYPOINT_DISPLAY_CAP", 110),
		KeyPointMax:         getEnvInt("KEYPOINT_MAX", 3),
		ReplyStrategy:       getEnv("REPLY_STRATEGY", "template"),

		// Zoho Mail
		ZohoClientID:     getEnv("ZOHO_CLIENT_ID", ""),
		ZohoClientSecret: getEnv("ZOHO_CLIENT_SECRET", ""),
		ZohoRefreshToken: getEnv("ZOHO_REFRESH_TOKEN", ""),
		ZohoAccountsURL:  getEnv("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.com"),
		ZohoMailBaseURL:  getEnv("ZOHO_MAIL_BASE_URL", "https://mail.zoho.com/api"),
		ZohoEmailLimit:   getEnvInt("ZOHO_EMAIL_LIMIT", 10),
		ZohoCacheTTL:     time.Duration(getEnvInt("ZOHO_CACHE_TTL_SEC", 300)) * time.Second,

		// Sync
		SyncBatchSize:   getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncIntervalSec: getEnvInt("SYNC_INTERVAL_SEC", 300),
		SeenTTLDays:     getEnvInt("SEEN_TTL_DAYS", 30),

		// Cache
		StatsCacheTTLSec: getEnvInt("STATS_CACHE_TTL_SEC", 30),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
