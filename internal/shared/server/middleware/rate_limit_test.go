package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/shared/telemetry"
)

func newLimitedRouter(t *testing.T, limiter *RateLimiter, rule RateLimitRule) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(io.Discard)
	t.Cleanup(restore)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDKey, c.GetHeader("X-Test-User"))
		c.Next()
	})
	limited := RateLimit(RateLimitConfig{
		DefaultGroup: "UPLOAD",
		Limiter:      limiter,
		Rules:        map[string]RateLimitRule{"UPLOAD": rule},
	})
	r.POST("/api/v1/contracts/analyze", limited, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/v1/contracts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func serve(r *gin.Engine, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Test-User", user)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitAppliesPerUser(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(t, NewRateLimiter(func() time.Time { return now }), RateLimitRule{Rate: 1, Burst: 2})

	for i := 0; i < 2; i++ {
		if resp := serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-1"); resp.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, resp.Code)
		}
	}
	if resp := serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-1"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-2"); resp.Code != http.StatusOK {
		t.Fatalf("other user expected 200, got %d", resp.Code)
	}
	for i := 0; i < 5; i++ {
		if resp := serve(r, http.MethodGet, "/api/v1/contracts", "user-1"); resp.Code != http.StatusOK {
			t.Fatalf("unlimited route expected 200, got %d", resp.Code)
		}
	}
}

func TestRateLimitRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(t, NewRateLimiter(func() time.Time { return now }), PerMinute(60, 1))

	if resp := serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-1"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-1"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	now = now.Add(time.Second)
	if resp := serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-1"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 after refill, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(t, NewRateLimiter(func() time.Time { return now }), RateLimitRule{Rate: 1, Burst: 1})

	_ = serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-1")
	resp := serve(r, http.MethodPost, "/api/v1/contracts/analyze", "user-1")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp.Header().Get("Retry-After"))
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected code rate_limited, got %q", payload.Error.Code)
	}
	if payload.Error.Details["retryAfterMs"] != float64(1000) {
		t.Fatalf("expected retryAfterMs 1000, got %v", payload.Error.Details["retryAfterMs"])
	}
}
