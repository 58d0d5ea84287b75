// Package config provides configuration loading and validation for the API server and CLI.
// Values come from defaults, then an optional JSON or YAML file, then the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Providers accepted for LLMProvider
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// DefaultMaxUploadBytes is the largest accepted resume upload
const DefaultMaxUploadBytes int64 = 5 << 20

// RateLimitConfig holds the per-client request budgets
type RateLimitConfig struct {
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	UploadPerHour    int      `json:"upload_per_hour,omitempty" yaml:"upload_per_hour,omitempty"`
	ExportPerMinute  int      `json:"export_per_minute,omitempty" yaml:"export_per_minute,omitempty"`
	DefaultPerMinute int      `json:"default_per_minute,omitempty" yaml:"default_per_minute,omitempty"`
	Whitelist        []string `json:"whitelist,omitempty" yaml:"whitelist,omitempty"`
}

// Config is the process configuration, built once at start up and passed down explicitly.
type Config struct {
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`
	LogLevel    string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// Model
	LLMProvider   string `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	OpenAIAPIKey  string `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty" yaml:"openai_base_url,omitempty"`
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`

	// Requests
	RequestTimeoutSeconds int      `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty"`
	MaxUploadBytes        int64    `json:"max_upload_bytes,omitempty" yaml:"max_upload_bytes,omitempty"`
	AllowedOrigins        []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`

	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

// Default returns the configuration used when nothing else is given
func Default() Config {
	return Config{
		Port:                  5000,
		Environment:           "development",
		LogLevel:              "info",
		LLMProvider:           ProviderGemini,
		RequestTimeoutSeconds: 120,
		MaxUploadBytes:        DefaultMaxUploadBytes,
		AllowedOrigins:        []string{"*"},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			UploadPerHour:    20,
			ExportPerMinute:  30,
			DefaultPerMinute: 300,
		},
	}
}

// LoadConfig loads a configuration file on top of the defaults.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
// Fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// LoadDotEnv loads environment files into the process environment.
// Existing variables are never overwritten and missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}

	env.setInt("PORT", &c.Port)
	env.setString("ENVIRONMENT", &c.Environment)
	env.setString("LOG_LEVEL", &c.LogLevel)
	env.setString("LLM_PROVIDER", &c.LLMProvider)
	env.setString("GEMINI_API_KEY", &c.GeminiAPIKey)
	env.setString("OPENAI_API_KEY", &c.OpenAIAPIKey)
	env.setString("OPENAI_BASE_URL", &c.OpenAIBaseURL)
	env.setString("LLM_MODEL", &c.Model)
	env.setInt("REQUEST_TIMEOUT_SECONDS", &c.RequestTimeoutSeconds)
	env.setInt64("MAX_UPLOAD_BYTES", &c.MaxUploadBytes)
	env.setList("ALLOWED_ORIGINS", &c.AllowedOrigins)
	env.setBool("RATE_LIMIT_ENABLED", &c.RateLimit.Enabled)
	env.setInt("RATE_LIMIT_UPLOAD_PER_HOUR", &c.RateLimit.UploadPerHour)
	env.setInt("RATE_LIMIT_EXPORT_PER_MINUTE", &c.RateLimit.ExportPerMinute)
	env.setInt("RATE_LIMIT_DEFAULT_PER_MINUTE", &c.RateLimit.DefaultPerMinute)
	env.setList("RATE_LIMIT_WHITELIST", &c.RateLimit.Whitelist)

	return errors.Join(env.errs...)
}

// Load builds the configuration from defaults, the optional file at path and the environment
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// A missing API key is not an error: the server starts and reports it per request.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch strings.ToLower(c.LLMProvider) {
	case "", ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("config error: unknown 'llm_provider' %q", c.LLMProvider)
	}

	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'request_timeout_seconds' must be non-negative")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}
	if c.RateLimit.UploadPerHour < 0 || c.RateLimit.ExportPerMinute < 0 || c.RateLimit.DefaultPerMinute < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}

	return nil
}

// Provider returns the normalized provider name
func (c *Config) Provider() string {
	if p := strings.ToLower(c.LLMProvider); p != "" {
		return p
	}
	return ProviderGemini
}

// APIKey returns the credential of the selected provider
func (c *Config) APIKey() string {
	if c.Provider() == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// RequestTimeout returns the per-request deadline, or zero for none
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// UploadLimit returns the upload size limit, falling back to the default
func (c *Config) UploadLimit() int64 {
	if c.MaxUploadBytes > 0 {
		return c.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// IsProduction reports whether the environment is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) setString(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) setInt(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("config error: %s must be an integer: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) setInt64(key string, dst *int64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("config error: %s must be an integer: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) setBool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("config error: %s must be a boolean: %w", key, err))
			return
		}
		*dst = b
	}
}

func (e *envReader) setList(key string, dst *[]string) {
	if v, ok := e.get(key); ok {
		var items []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*dst = items
	}
}
