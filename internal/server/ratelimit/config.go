package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/resume-genie/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window, 0 for unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused client limiter is kept
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings builds the limiter configuration from the application settings
func FromSettings(s config.RateLimitConfig) *Config {
	return &Config{
		Enabled:         s.Enabled,
		DefaultLimit:    s.DefaultPerMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       ipSet(s.Whitelist),
		Blacklist:       map[string]bool{},
		EndpointConfigs: EndpointConfigs(s.UploadPerHour, s.ExportPerMinute),
	}
}

// EndpointConfigs returns the endpoint table.
// Uploads call the model and get the strictest budget; exports render documents.
func EndpointConfigs(uploadPerHour, exportPerMinute int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/upload", Method: http.MethodPost, Limit: uploadPerHour, Window: time.Hour, Burst: min(uploadPerHour, 3)},
		{Path: "/api/export/", Method: http.MethodPost, Limit: exportPerMinute, Window: time.Minute, Burst: min(exportPerMinute, 10)},
		{Path: "/api/health", Method: http.MethodGet, Limit: 0},
		{Path: "/", Method: http.MethodGet, Limit: 0},
	}
}

// ipSet turns a list of addresses into a lookup set, skipping blanks
func ipSet(list []string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
