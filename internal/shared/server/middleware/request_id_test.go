package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contract-backend/internal/shared/telemetry"
)

func requestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		*seen = telemetry.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRequestIDReusesInboundHeader(t *testing.T) {
	var seen string
	router := requestIDRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "edge-42.a:b_c")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("X-Request-Id"); got != "edge-42.a:b_c" {
		t.Fatalf("expected inbound id echoed, got %q", got)
	}
	if seen != "edge-42.a:b_c" {
		t.Fatalf("expected id on request context, got %q", seen)
	}
}

func TestRequestIDReplacesUnsafeInboundHeader(t *testing.T) {
	for _, inbound := range []string{"", "has space", `{"json":1}`, strings.Repeat("a", maxRequestIDBytes+1)} {
		var seen string
		router := requestIDRouter(&seen)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if inbound != "" {
			req.Header.Set("X-Request-Id", inbound)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		got := resp.Header().Get("X-Request-Id")
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("inbound %q: expected generated uuid, got %q", inbound, got)
		}
		if seen != got {
			t.Fatalf("inbound %q: context id %q does not match header %q", inbound, seen, got)
		}
	}
}
