package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-genie/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	l.now = clock.Now
	return l, clock
}

func testConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: EndpointConfigs(6, 30),
	}
}

func TestLimiter_UploadBurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("1.2.3.4", "/api/upload", "POST")
		if !allowed {
			t.Fatalf("Expected upload %d to be allowed", i+1)
		}
		if info.Limit != 6 {
			t.Errorf("Expected limit 6, got %d", info.Limit)
		}
		if info.Remaining != 2-i {
			t.Errorf("Expected %d remaining after upload %d, got %d", 2-i, i+1, info.Remaining)
		}
	}

	allowed, info := l.Allow("1.2.3.4", "/api/upload", "POST")
	if allowed {
		t.Fatal("Expected fourth upload within the burst to be denied")
	}
	// 6 per hour refills one token every 10 minutes
	if info.RetryAfter <= 9*time.Minute || info.RetryAfter > 10*time.Minute+time.Second {
		t.Errorf("Expected retry after about 10m, got %v", info.RetryAfter)
	}
	if info.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", info.Remaining)
	}
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("client", "/api/upload", "POST")
	}
	if allowed, _ := l.Allow("client", "/api/upload", "POST"); allowed {
		t.Fatal("Expected request to be denied with an empty bucket")
	}

	clock.Advance(10*time.Minute + time.Second)
	if allowed, _ := l.Allow("client", "/api/upload", "POST"); !allowed {
		t.Error("Expected request to be allowed after one refill interval")
	}
	if allowed, _ := l.Allow("client", "/api/upload", "POST"); allowed {
		t.Error("Expected request to be denied after consuming the refilled token")
	}
}

func TestLimiter_DeniedRequestDoesNotConsume(t *testing.T) {
	l, clock := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("client", "/api/upload", "POST")
	}
	for i := 0; i < 5; i++ {
		l.Allow("client", "/api/upload", "POST")
	}

	clock.Advance(10*time.Minute + time.Second)
	if allowed, _ := l.Allow("client", "/api/upload", "POST"); !allowed {
		t.Error("Expected denied requests not to push back the next token")
	}
}

func TestLimiter_ClientsAndEndpointsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("a", "/api/upload", "POST")
	}
	if allowed, _ := l.Allow("a", "/api/upload", "POST"); allowed {
		t.Fatal("Expected client a to be limited")
	}
	if allowed, _ := l.Allow("b", "/api/upload", "POST"); !allowed {
		t.Error("Expected client b to have its own budget")
	}
	if allowed, _ := l.Allow("a", "/api/export/latex", "POST"); !allowed {
		t.Error("Expected exports to have their own budget")
	}
}

func TestLimiter_ExportPrefixSharesBudget(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Allow("c", "/api/export/latex", "POST")
		l.Allow("c", "/api/export/download", "POST")
	}
	if allowed, _ := l.Allow("c", "/api/export/latex", "POST"); allowed {
		t.Error("Expected both export routes to draw from one burst of 10")
	}
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 500; i++ {
		if allowed, _ := l.Allow("c", "/api/health", "GET"); !allowed {
			t.Fatalf("Expected health check %d to be allowed", i+1)
		}
		if allowed, _ := l.Allow("c", "/", "GET"); !allowed {
			t.Fatalf("Expected welcome request %d to be allowed", i+1)
		}
	}
	if l.Size() != 0 {
		t.Errorf("Expected unlimited endpoints to track no limiters, got %d", l.Size())
	}
}

func TestLimiter_DefaultLimit(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 2
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	l.Allow("c", "/api/extract", "POST")
	l.Allow("c", "/api/extract", "POST")
	allowed, info := l.Allow("c", "/api/extract", "POST")
	if allowed {
		t.Error("Expected default limit to apply to unlisted endpoints")
	}
	if info.Limit != 2 {
		t.Errorf("Expected limit 2, got %d", info.Limit)
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["10.0.0.1"] = true
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		if allowed, _ := l.Allow("10.0.0.1", "/api/upload", "POST"); !allowed {
			t.Fatalf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	cfg := testConfig()
	cfg.Blacklist["6.6.6.6"] = true
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	if allowed, _ := l.Allow("6.6.6.6", "/api/health", "GET"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		if allowed, _ := l.Allow("c", "/api/upload", "POST"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointConfigs = []EndpointConfig{{Path: "/api/upload", Method: "POST", Limit: 50, Window: time.Hour, Burst: 50}}
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("shared", "/api/upload", "POST"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed requests, got %d", allowed)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTTL = 30 * time.Minute
	l, clock := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("client-%d", i), "/api/upload", "POST")
	}
	clock.Advance(20 * time.Minute)
	l.Allow("client-0", "/api/upload", "POST")

	clock.Advance(15 * time.Minute)
	l.evictIdle()

	if l.Size() != 1 {
		t.Errorf("Expected only the recently used limiter to survive, got %d", l.Size())
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := EndpointConfigs(10, 20)

	tests := []struct {
		path, method string
		want         string
	}{
		{"/api/upload", "POST", "/api/upload"},
		{"/api/upload", "GET", ""},
		{"/api/export/latex", "POST", "/api/export/"},
		{"/api/export/download", "POST", "/api/export/"},
		{"/api/health", "GET", "/api/health"},
		{"/", "GET", "/"},
		{"/api/extract", "POST", ""},
		{"/anything", "GET", ""},
	}

	for _, tt := range tests {
		got := MatchEndpoint(tt.path, tt.method, configs)
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("%s %s: expected no match, got %s", tt.method, tt.path, got.Path)
		case tt.want != "" && (got == nil || got.Path != tt.want):
			t.Errorf("%s %s: expected %s, got %v", tt.method, tt.path, tt.want, got)
		}
	}
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.RateLimitConfig{
		Enabled:          true,
		UploadPerHour:    12,
		ExportPerMinute:  4,
		DefaultPerMinute: 60,
		Whitelist:        []string{" 127.0.0.1 ", ""},
	})

	if !cfg.Enabled || cfg.DefaultLimit != 60 || cfg.DefaultWindow != time.Minute {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if !cfg.Whitelist["127.0.0.1"] || len(cfg.Whitelist) != 1 {
		t.Errorf("Expected trimmed whitelist, got %v", cfg.Whitelist)
	}

	upload := MatchEndpoint("/api/upload", "POST", cfg.EndpointConfigs)
	if upload == nil || upload.Limit != 12 || upload.Window != time.Hour || upload.Burst != 3 {
		t.Errorf("Unexpected upload config: %+v", upload)
	}
	export := MatchEndpoint("/api/export/latex", "POST", cfg.EndpointConfigs)
	if export == nil || export.Limit != 4 || export.Burst != 4 {
		t.Errorf("Unexpected export config: %+v", export)
	}
}
