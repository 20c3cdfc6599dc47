package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	LLM        LLMConfig        `yaml:"llm"`
	Summary    SummaryConfig    `yaml:"summary"`
	Extract    ExtractConfig    `yaml:"extract"`
	Credential CredentialConfig `yaml:"credential"`
	Capture    CaptureConfig    `yaml:"capture"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address     string        `yaml:"address"`
	ReadTimeout time.Duration `yaml:"readTimeout"`
	// WriteTimeout of zero keeps summary streams from being cut off
	// mid-flight; set it only when streaming is not in use.
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains completion endpoint settings.
type LLMConfig struct {
	BaseURL       string        `yaml:"baseUrl"`
	Model         string        `yaml:"model"`
	Temperature   float32       `yaml:"temperature"`
	StreamTimeout time.Duration `yaml:"streamTimeout"`
}

// SummaryConfig defines the summarization prompt behavior.
type SummaryConfig struct {
	SystemPrompt    string `yaml:"systemPrompt"`
	MaxPromptTokens int    `yaml:"maxPromptTokens"`
}

// ExtractConfig controls the page extraction service.
type ExtractConfig struct {
	UserAgent   string         `yaml:"userAgent"`
	Timeout     time.Duration  `yaml:"timeout"`
	SnapshotTTL time.Duration  `yaml:"snapshotTtl"`
	Postgres    PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings for the snapshot cache.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CredentialConfig controls API credential storage.
type CredentialConfig struct {
	EncryptionSecret string       `yaml:"encryptionSecret"`
	Valkey           ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the credential store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// CaptureConfig controls the optional raw-page archive.
type CaptureConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_STREAM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.StreamTimeout = parsed
		}
	}
	if v := os.Getenv("SUMMARY_SYSTEM_PROMPT"); v != "" {
		cfg.Summary.SystemPrompt = v
	}
	if v := os.Getenv("SUMMARY_MAX_PROMPT_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Summary.MaxPromptTokens = parsed
		}
	}
	if v := os.Getenv("EXTRACT_USER_AGENT"); v != "" {
		cfg.Extract.UserAgent = v
	}
	if v := os.Getenv("EXTRACT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Extract.Timeout = parsed
		}
	}
	if v := os.Getenv("EXTRACT_SNAPSHOT_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Extract.SnapshotTTL = parsed
		}
	}
	if v := os.Getenv("EXTRACT_POSTGRES_DSN"); v != "" {
		cfg.Extract.Postgres.DSN = v
	}
	if v := os.Getenv("EXTRACT_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Extract.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("EXTRACT_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Extract.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("CREDENTIAL_ENCRYPTION_SECRET"); v != "" {
		cfg.Credential.EncryptionSecret = v
	}
	if v := os.Getenv("CREDENTIAL_VALKEY_ENABLED"); v != "" {
		cfg.Credential.Valkey.Enabled = isTruthy(v)
	}
	if v := os.Getenv("CREDENTIAL_VALKEY_ADDR"); v != "" {
		cfg.Credential.Valkey.Addr = v
	}
	if v := os.Getenv("CAPTURE_ENABLED"); v != "" {
		cfg.Capture.Enabled = isTruthy(v)
	}
	if v := os.Getenv("CAPTURE_ENDPOINT"); v != "" {
		cfg.Capture.Endpoint = v
	}
	if v := os.Getenv("CAPTURE_ACCESS_KEY"); v != "" {
		cfg.Capture.AccessKey = v
	}
	if v := os.Getenv("CAPTURE_SECRET_KEY"); v != "" {
		cfg.Capture.SecretKey = v
	}
	if v := os.Getenv("CAPTURE_BUCKET"); v != "" {
		cfg.Capture.Bucket = v
	}
	if v := os.Getenv("CAPTURE_REGION"); v != "" {
		cfg.Capture.Region = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:     ":8080",
			ReadTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/summaries/stream",
				},
			},
		},
		LLM: LLMConfig{
			Model:         "gpt-4o-mini",
			Temperature:   0.3,
			StreamTimeout: 2 * time.Minute,
		},
		Summary: SummaryConfig{
			MaxPromptTokens: 120000,
		},
		Extract: ExtractConfig{
			Timeout:     15 * time.Second,
			SnapshotTTL: 30 * time.Minute,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.StreamTimeout < 0 {
		return errors.New("llm.streamTimeout cannot be negative")
	}
	if c.Extract.SnapshotTTL < 0 {
		return errors.New("extract.snapshotTtl cannot be negative")
	}
	if c.Credential.Valkey.Enabled && strings.TrimSpace(c.Credential.Valkey.Addr) == "" {
		return errors.New("credential.valkey.addr cannot be empty when the valkey store is enabled")
	}
	if c.Capture.Enabled {
		if strings.TrimSpace(c.Capture.Endpoint) == "" {
			return errors.New("capture.endpoint cannot be empty when capture is enabled")
		}
		if strings.TrimSpace(c.Capture.Bucket) == "" {
			return errors.New("capture.bucket cannot be empty when capture is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
