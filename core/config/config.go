package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"basegraph.app/arena/core/db"
)

type Config struct {
	OTel    OTelConfig
	Queue   QueueConfig
	Debate  DebateConfig
	Catalog CatalogConfig
	CLI     CLIConfig
	Env     string
	Port    string
	DB      db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string
	// SampleRatio is the share of root traces kept, 0..1. Every debate phase opens a span.
	SampleRatio float64
}

// QueueConfig drives both the async job stream and the per-debate broadcast streams.
type QueueConfig struct {
	RedisURL        string
	JobStream       string
	JobGroup        string
	JobDLQStream    string
	JobConsumer     string
	EventStreamTTL  time.Duration
	EventStreamLen  int64
	MaxAttempts     int
	ReclaimMinIdle  time.Duration
	ReclaimInterval time.Duration
	MaxDeliveries   int64
	TraceHeaderName string
}

type DebateConfig struct {
	Language      string
	MaxChars      int
	DefaultRounds int
	LLMTimeout    time.Duration
	LLMRetries    int
}

type CatalogConfig struct {
	// Path to a YAML catalogue replacing the embedded one. Empty keeps the default.
	File string
}

// CLIConfig holds the default model profiles used by the terminal demo.
type CLIConfig struct {
	JudgeProfile string
	ProProfiles  [4]string
	ConProfile   string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.worker for the background worker
//   - .env.cli for the terminal demo
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("ARENA_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("ARENA_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 4),
			MinConns: getEnvInt32("DB_MIN_CONNS", 1),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "arena-"+string(serviceType)),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("ARENA_ENV", "development"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
		Queue: QueueConfig{
			RedisURL:        getEnv("REDIS_URL", ""),
			JobStream:       getEnv("ARENA_JOB_STREAM", "arena_debates"),
			JobGroup:        getEnv("ARENA_JOB_GROUP", "arena_workers"),
			JobDLQStream:    getEnv("ARENA_JOB_DLQ_STREAM", "arena_debates_dlq"),
			JobConsumer:     getEnv("ARENA_JOB_CONSUMER", hostname()),
			EventStreamTTL:  getEnvDuration("ARENA_EVENT_STREAM_TTL", time.Hour),
			EventStreamLen:  int64(getEnvInt("ARENA_EVENT_STREAM_MAXLEN", 500)),
			MaxAttempts:     getEnvInt("ARENA_JOB_MAX_ATTEMPTS", 2),
			ReclaimMinIdle:  getEnvDuration("ARENA_JOB_RECLAIM_MIN_IDLE", 15*time.Minute),
			ReclaimInterval: getEnvDuration("ARENA_JOB_RECLAIM_INTERVAL", time.Minute),
			MaxDeliveries:   int64(getEnvInt("ARENA_JOB_MAX_DELIVERIES", 3)),
			TraceHeaderName: getEnv("TRACE_HEADER_NAME", "X-Trace-Id"),
		},
		Debate: DebateConfig{
			Language:      getEnv("ARENA_LANGUAGE", "English"),
			MaxChars:      getEnvInt("ARENA_MAX_CHARS", 400),
			DefaultRounds: getEnvInt("ARENA_DEFAULT_ROUNDS", 2),
			LLMTimeout:    getEnvDuration("ARENA_LLM_TIMEOUT", 0),
			LLMRetries:    getEnvInt("ARENA_LLM_RETRIES", 0),
		},
		Catalog: CatalogConfig{
			File: getEnv("ARENA_CATALOG_FILE", ""),
		},
		CLI: CLIConfig{
			JudgeProfile: getEnv("ARENA_CLI_JUDGE_PROFILE", "deepseek-chat"),
			ProProfiles: [4]string{
				getEnv("ARENA_CLI_PRO1_PROFILE", "qwen3-max"),
				getEnv("ARENA_CLI_PRO2_PROFILE", "deepseek-reasoner"),
				getEnv("ARENA_CLI_PRO3_PROFILE", "glm-4.5"),
				getEnv("ARENA_CLI_PRO4_PROFILE", "kimi-k2-turbo-preview"),
			},
			ConProfile: getEnv("ARENA_CLI_CON_PROFILE", "gpt4.1"),
		},
	}

	if cfg.Debate.DefaultRounds < 1 || cfg.Debate.DefaultRounds > 10 {
		return Config{}, fmt.Errorf("ARENA_DEFAULT_ROUNDS must be between 1 and 10, got %d", cfg.Debate.DefaultRounds)
	}

	if cfg.Debate.MaxChars <= 0 {
		return Config{}, fmt.Errorf("ARENA_MAX_CHARS must be positive, got %d", cfg.Debate.MaxChars)
	}

	if cfg.OTel.SampleRatio < 0 || cfg.OTel.SampleRatio > 1 {
		return Config{}, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be between 0 and 1, got %v", cfg.OTel.SampleRatio)
	}

	if serviceType == ServiceTypeWorker && !cfg.Queue.Enabled() {
		return Config{}, fmt.Errorf("REDIS_URL is required for the worker")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c QueueConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "arena-worker"
	}
	return name
}
