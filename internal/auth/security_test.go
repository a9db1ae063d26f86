package auth

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRateLimiter(now *time.Time) *RateLimiter {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: 5 * time.Minute,
		CleanupInterval: time.Hour,
	})
	rl.now = func() time.Time { return *now }
	return rl
}

func TestRateLimiter_AllowsInitialAttempts(t *testing.T) {
	now := time.Now()
	rl := newTestRateLimiter(&now)
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := rl.Allow("1.2.3.4", "ann@x.com")
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
		locked, _ := rl.RecordFailure("1.2.3.4", "ann@x.com")
		assert.False(t, locked)
	}

	allowed, _ := rl.Allow("1.2.3.4", "ann@x.com")
	assert.True(t, allowed)
}

func TestRateLimiter_LocksOutAfterMaxFailures(t *testing.T) {
	now := time.Now()
	rl := newTestRateLimiter(&now)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "ann@x.com")
	rl.RecordFailure("1.2.3.4", "ann@x.com")
	locked, lockout := rl.RecordFailure("1.2.3.4", "ann@x.com")
	assert.True(t, locked)
	assert.Equal(t, 5*time.Minute, lockout)

	now = now.Add(2 * time.Minute)
	allowed, retryAfter := rl.Allow("1.2.3.4", "ann@x.com")
	assert.False(t, allowed)
	assert.Equal(t, 3*time.Minute, retryAfter)

	now = now.Add(3*time.Minute + time.Second)
	allowed, _ = rl.Allow("1.2.3.4", "ann@x.com")
	assert.True(t, allowed)

	locked, _ = rl.RecordFailure("1.2.3.4", "ann@x.com")
	assert.False(t, locked, "a served lockout starts a fresh window")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	now := time.Now()
	rl := newTestRateLimiter(&now)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "ann@x.com")
	rl.RecordFailure("1.2.3.4", "ann@x.com")

	now = now.Add(2 * time.Minute)
	locked, _ := rl.RecordFailure("1.2.3.4", "ann@x.com")
	assert.False(t, locked)
}

func TestRateLimiter_EmailIsCaseInsensitive(t *testing.T) {
	now := time.Now()
	rl := newTestRateLimiter(&now)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "Ann@X.com")
	rl.RecordFailure("1.2.3.4", " ann@x.com")
	rl.RecordFailure("1.2.3.4", "ANN@X.COM")

	allowed, _ := rl.Allow("1.2.3.4", "ann@x.com")
	assert.False(t, allowed)
}

func TestRateLimiter_SuccessResetsCounter(t *testing.T) {
	now := time.Now()
	rl := newTestRateLimiter(&now)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "ann@x.com")
	rl.RecordFailure("1.2.3.4", "ann@x.com")
	rl.RecordSuccess("1.2.3.4", "ann@x.com")

	rl.RecordFailure("1.2.3.4", "ann@x.com")
	locked, _ := rl.RecordFailure("1.2.3.4", "ann@x.com")
	assert.False(t, locked)
}

func TestRateLimiter_DifferentClientsAreIndependent(t *testing.T) {
	now := time.Now()
	rl := newTestRateLimiter(&now)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("1.2.3.4", "ann@x.com")
	}

	allowed, _ := rl.Allow("1.2.3.4", "bob@x.com")
	assert.True(t, allowed, "other email from the same IP")
	allowed, _ = rl.Allow("5.6.7.8", "ann@x.com")
	assert.True(t, allowed, "same email from another IP")
}

func TestRateLimiter_CleanupDropsExpiredRecords(t *testing.T) {
	now := time.Now()
	rl := newTestRateLimiter(&now)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("1.2.3.4", "ann@x.com")
	}
	rl.RecordFailure("5.6.7.8", "bob@x.com")

	now = now.Add(7 * time.Minute)
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Empty(t, rl.attempts)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	rl.Stop()

	assert.Equal(t, 5, rl.maxAttempts)
	assert.Equal(t, 15*time.Minute, rl.windowDuration)
	assert.Equal(t, 30*time.Minute, rl.lockoutDuration)
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	expected := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, want := range expected {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("Header %s = %q, want %q", header, got, want)
		}
	}

	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Contains(t, rr.Header().Get("Permissions-Policy"), "camera=()")
}

func TestHSTSHeader(t *testing.T) {
	router := gin.New()
	router.Use(StrictTransportSecurityMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	plain := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, plain)
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	proxied := httptest.NewRequest(http.MethodGet, "/test", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, proxied)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rr.Header().Get("Strict-Transport-Security"))

	direct := httptest.NewRequest(http.MethodGet, "/test", nil)
	direct.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, direct)
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}
