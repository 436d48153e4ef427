package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DocumentsBackendFS = "fs"
	DocumentsBackendS3 = "s3"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey         string        `envconfig:"OPENAI_API_KEY"`
	OpenAIEmbeddingModel string        `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	OpenAIChatModel      string        `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	GenerationTimeout    time.Duration `envconfig:"GENERATION_TIMEOUT" default:"20s"`
	EmbeddingTimeout     time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"30s"`

	DocumentsBackend string `envconfig:"DOCUMENTS_BACKEND" default:"fs"`
	DocumentsDir     string `envconfig:"DOCUMENTS_DIR" default:"documents"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"shopdesk-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Shared across instances so an upload on one invalidates every index
	RedisURL string `envconfig:"REDIS_URL"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// 0 disables the periodic index warm-up
	IndexWarmInterval time.Duration `envconfig:"INDEX_WARM_INTERVAL" default:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SHOPDESK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.DocumentsBackend {
	case DocumentsBackendFS:
	case DocumentsBackendS3:
		if !cfg.HasS3() {
			return nil, fmt.Errorf("documents backend s3 needs S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY")
		}
	default:
		return nil, fmt.Errorf("unknown documents backend %q", cfg.DocumentsBackend)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}
