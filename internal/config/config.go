package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Server      ServerConfig
	Inference   InferenceConfig
	UI          UIConfig
	Upload      UploadConfig
	Log         LogConfig
	RedisConfig RedisConfig
	CacheEnable bool `env:"CACHE_ENABLE"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"redis:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"50"`
}

// InferenceConfig points at the external prediction service.
type InferenceConfig struct {
	BaseURL        string        `env:"INFERENCE_BASE_URL" envDefault:"http://127.0.0.1:5000"`
	PredictTimeout time.Duration `env:"INFERENCE_PREDICT_TIMEOUT" envDefault:"30s"`
	CompareTimeout time.Duration `env:"INFERENCE_COMPARE_TIMEOUT" envDefault:"60s"`
}

// UIConfig holds display policy. Threshold and entry cap are tunables, not domain invariants.
type UIConfig struct {
	LowConfidenceThreshold float64       `env:"UI_LOW_CONFIDENCE_THRESHOLD" envDefault:"70"`
	MaxProbabilityEntries  int           `env:"UI_MAX_PROBABILITY_ENTRIES" envDefault:"10"`
	BannerDismiss          time.Duration `env:"UI_BANNER_DISMISS" envDefault:"5s"`
	SessionIdleTTL         time.Duration `env:"UI_SESSION_IDLE_TTL" envDefault:"30m"`
	JanitorSchedule        string        `env:"UI_JANITOR_SCHEDULE" envDefault:"@every 1m"`
}

type UploadConfig struct {
	MaxBytes int64 `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Inference.BaseURL) == "" {
		return errors.New("INFERENCE_BASE_URL is empty")
	}
	if c.Inference.PredictTimeout <= 0 {
		return fmt.Errorf("INFERENCE_PREDICT_TIMEOUT must be positive, got %s", c.Inference.PredictTimeout)
	}
	if c.Inference.CompareTimeout <= 0 {
		return fmt.Errorf("INFERENCE_COMPARE_TIMEOUT must be positive, got %s", c.Inference.CompareTimeout)
	}
	if c.UI.LowConfidenceThreshold < 0 || c.UI.LowConfidenceThreshold > 100 {
		return fmt.Errorf("UI_LOW_CONFIDENCE_THRESHOLD must be within [0,100], got %v", c.UI.LowConfidenceThreshold)
	}
	if c.UI.MaxProbabilityEntries < 1 {
		return fmt.Errorf("UI_MAX_PROBABILITY_ENTRIES must be >= 1, got %d", c.UI.MaxProbabilityEntries)
	}
	if _, err := cron.ParseStandard(c.UI.JanitorSchedule); err != nil {
		return fmt.Errorf("UI_JANITOR_SCHEDULE %q: %w", c.UI.JanitorSchedule, err)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}
	return nil
}
