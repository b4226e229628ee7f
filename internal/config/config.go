package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort         string        `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseURL      string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL         string        `envconfig:"REDIS_URL" required:"true"`
	NotifyWebhookURL string        `envconfig:"NOTIFY_WEBHOOK_URL" default:"http://localhost:9090"`
	APIKey           string        `envconfig:"API_KEY"`
	StoreTimeout     time.Duration `envconfig:"STORE_TIMEOUT" default:"3s"`
	HelpRequestTTL   time.Duration `envconfig:"HELP_REQUEST_TTL" default:"10m"`
	ExpireSchedule   string        `envconfig:"EXPIRE_SCHEDULE" default:"@every 1m"`
	WorkerMaxRetries int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}
	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}
	if cfg.WorkerMaxRetries < 1 {
		return nil, fmt.Errorf("WORKER_MAX_RETRIES must be at least 1, got %d", cfg.WorkerMaxRetries)
	}
	return &cfg, nil
}
