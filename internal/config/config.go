// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port        int           `yaml:"port"`
	AdminSecret string        `yaml:"admin_secret"` // HMAC secret for admin JWTs
	RateLimit   int           `yaml:"rate_limit"`   // generate submissions per client per window
	RateWindow  time.Duration `yaml:"rate_window"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	AnthropicKey    string            `yaml:"anthropic_key"`
	AnthropicURL    string            `yaml:"anthropic_url"`
	OpenAIKey       string            `yaml:"openai_key"`
	GeminiKey       string            `yaml:"gemini_key"`
	GeminiURL       string            `yaml:"gemini_url"`
	DefaultModel    string            `yaml:"default_model"`
	MaxTokens       int               `yaml:"max_tokens"`
	Timeout         time.Duration     `yaml:"timeout"`
	ConcurrentLimit int               `yaml:"concurrent_limit"` // max concurrent generation calls
	ModelProviders  map[string]string `yaml:"model_providers"`  // model -> provider override
}

// PipelineConfig carries the quality-gate policy. The threshold and the
// tracked dimension set deliberately live here, not in code.
type PipelineConfig struct {
	Dimensions    []string `yaml:"dimensions"`
	PassThreshold float64  `yaml:"pass_threshold"`
	ScaleMax      float64  `yaml:"scale_max"`
	FloorScore    float64  `yaml:"floor_score"`
	MaxIterations int      `yaml:"max_iterations"`
	Workers       int      `yaml:"workers"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Telegram TelegramConfig `yaml:"telegram"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = 5
	}
	if cfg.Server.RateWindow <= 0 {
		cfg.Server.RateWindow = time.Minute
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "claude-sonnet-4-20250514"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 8192
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 120 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 8
	}
	if len(cfg.Pipeline.Dimensions) == 0 {
		cfg.Pipeline.Dimensions = []string{"novelty", "quality", "clarity"}
	}
	if cfg.Pipeline.ScaleMax <= 0 {
		cfg.Pipeline.ScaleMax = 10
	}
	if cfg.Pipeline.PassThreshold <= 0 {
		cfg.Pipeline.PassThreshold = 9.0
	}
	if cfg.Pipeline.FloorScore <= 0 {
		cfg.Pipeline.FloorScore = 1.0
	}
	if cfg.Pipeline.MaxIterations <= 0 {
		cfg.Pipeline.MaxIterations = 5
	}
	if cfg.Pipeline.Workers <= 0 {
		cfg.Pipeline.Workers = 4
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Pipeline.PassThreshold > cfg.Pipeline.ScaleMax {
		return nil, fmt.Errorf("pipeline.pass_threshold %.1f exceeds scale_max %.1f", cfg.Pipeline.PassThreshold, cfg.Pipeline.ScaleMax)
	}
	if cfg.Pipeline.FloorScore >= cfg.Pipeline.PassThreshold {
		// an unparseable review must never satisfy the quality gate
		return nil, fmt.Errorf("pipeline.floor_score %.1f must stay below pass_threshold %.1f", cfg.Pipeline.FloorScore, cfg.Pipeline.PassThreshold)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
