package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"port": 8080,
		"llm_provider": "openai",
		"model": "gpt-4o",
		"rate_limit": {"enabled": false, "upload_per_hour": 5}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.UploadPerHour)
	// absent fields keep their defaults
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.RateLimit.ExportPerMinute)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
port: 9000
environment: production
allowed_origins:
  - https://resume.example.com
rate_limit:
  enabled: true
  export_per_minute: 10
  whitelist: ["10.0.0.1"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://resume.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimit.ExportPerMinute)
	assert.Equal(t, 20, cfg.RateLimit.UploadPerHour)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.RateLimit.Whitelist)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "config path is empty")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeFile(t, "config.json", `{ invalid json }`))
	assert.ErrorContains(t, err, "failed to parse config JSON")

	_, err = LoadConfig(writeFile(t, "config.yml", "port: [1, 2"))
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PORT":                       "7000",
		"GEMINI_API_KEY":             " key-123 ",
		"LLM_MODEL":                  "gemini-2.5-pro",
		"ALLOWED_ORIGINS":            "https://a.example, ,https://b.example",
		"RATE_LIMIT_ENABLED":         "false",
		"RATE_LIMIT_UPLOAD_PER_HOUR": "3",
		"LOG_LEVEL":                  "",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "key-123", cfg.GeminiAPIKey)
	assert.Equal(t, "key-123", cfg.APIKey())
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.RateLimit.UploadPerHour)
	assert.Equal(t, "info", cfg.LogLevel, "blank variables are ignored")
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PORT":               "eighty",
		"RATE_LIMIT_ENABLED": "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT must be an integer")
	assert.Contains(t, err.Error(), "RATE_LIMIT_ENABLED must be a boolean")
	assert.Equal(t, 5000, cfg.Port)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "config.json", `{"port": 8080, "log_level": "debug"}`)

	cfg, err := Load(path, envMap(map[string]string{"PORT": "9090"}))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port, "environment beats file")
	assert.Equal(t, "debug", cfg.LogLevel, "file beats defaults")

	cfg, err = Load("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	_, err := Load("", envMap(map[string]string{"LLM_PROVIDER": "anthropic"}))
	assert.ErrorContains(t, err, "unknown 'llm_provider'")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"negative port", func(c *Config) { c.Port = -1 }, "'port'"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "'port'"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "llama" }, "llm_provider"},
		{"negative timeout", func(c *Config) { c.RequestTimeoutSeconds = -5 }, "request_timeout_seconds"},
		{"negative upload limit", func(c *Config) { c.MaxUploadBytes = -1 }, "max_upload_bytes"},
		{"negative rate", func(c *Config) { c.RateLimit.ExportPerMinute = -1 }, "rate limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	t.Run("missing api key is allowed", func(t *testing.T) {
		cfg := Default()
		cfg.GeminiAPIKey = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestAccessors(t *testing.T) {
	cfg := Default()
	cfg.LLMProvider = "OpenAI"
	cfg.OpenAIAPIKey = "sk-test"
	cfg.RequestTimeoutSeconds = 30
	cfg.MaxUploadBytes = 0

	assert.Equal(t, ProviderOpenAI, cfg.Provider())
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, DefaultMaxUploadBytes, cfg.UploadLimit())

	cfg.LLMProvider = ""
	assert.Equal(t, ProviderGemini, cfg.Provider())
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "RESUME_GENIE_TEST_KEY=from-file\n")
	t.Setenv("RESUME_GENIE_TEST_PRESET", "kept")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	t.Cleanup(func() { _ = os.Unsetenv("RESUME_GENIE_TEST_KEY") })

	assert.Equal(t, "from-file", os.Getenv("RESUME_GENIE_TEST_KEY"))
	assert.Equal(t, "kept", os.Getenv("RESUME_GENIE_TEST_PRESET"))
}
