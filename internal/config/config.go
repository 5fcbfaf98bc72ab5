package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Claude merge analysis
	AnthropicAPIKey string
	AnthropicModel  string

	// Table merge analysis
	MergeStrategy    string // rule | llm | off
	MaxGap           float64
	MaxCrossGap      float64
	MinColumnOverlap float64
	MinConfidence    float64
	LLMTimeout       time.Duration
	LLMWorkers       int
	LLMQueueSize     int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Markdown output
	BreadcrumbComments bool

	// Storage
	DBPath string

	// ArangoDB sink. Disabled when the endpoint is empty.
	ArangoEndpoint   string
	ArangoDatabase   string
	ArangoCollection string
	ArangoToken      string

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCSTRUCT_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		MergeStrategy:    strings.ToLower(envOr("MERGE_STRATEGY", "rule")),
		MaxGap:           envFloat("MERGE_MAX_GAP", 50),
		MaxCrossGap:      envFloat("MERGE_MAX_CROSS_GAP", 200),
		MinColumnOverlap: envFloat("MERGE_MIN_COLUMN_OVERLAP", 0.75),
		MinConfidence:    envFloat("MERGE_MIN_CONFIDENCE", 0.7),
		LLMTimeout:       envDuration("LLM_TIMEOUT", 30*time.Second),
		LLMWorkers:       envInt("LLM_WORKERS", 4),
		LLMQueueSize:     envInt("LLM_QUEUE_SIZE", 64),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		BreadcrumbComments: envBool("BREADCRUMB_COMMENTS", false),

		DBPath: envOr("DB_PATH", "docstruct.db"),

		ArangoEndpoint:   os.Getenv("ARANGO_ENDPOINT"),
		ArangoDatabase:   envOr("ARANGO_DATABASE", "docstruct"),
		ArangoCollection: envOr("ARANGO_COLLECTION", "sections"),
		ArangoToken:      os.Getenv("ARANGO_TOKEN"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.MaxGap <= 0 {
		cfg.MaxGap = 50
	}
	if cfg.MaxCrossGap <= 0 {
		cfg.MaxCrossGap = 200
	}
	if cfg.MinColumnOverlap <= 0 || cfg.MinColumnOverlap > 1 {
		cfg.MinColumnOverlap = 0.75
	}
	if cfg.MinConfidence <= 0 || cfg.MinConfidence > 1 {
		cfg.MinConfidence = 0.7
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 30 * time.Second
	}
	if cfg.LLMWorkers <= 0 {
		cfg.LLMWorkers = 4
	}
	if cfg.LLMQueueSize <= 0 {
		cfg.LLMQueueSize = 64
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCSTRUCT_API_KEY is required")
	}
	switch c.MergeStrategy {
	case "rule", "llm", "off":
	default:
		return fmt.Errorf("MERGE_STRATEGY must be rule, llm, or off (got %q)", c.MergeStrategy)
	}
	if c.MergeStrategy == "llm" && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when MERGE_STRATEGY=llm")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
