package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contract-backend/internal/llm"
	"contract-backend/internal/shared/telemetry"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	oldURL := apiURL
	apiURL = server.URL
	restore := telemetry.SetOutput(io.Discard)
	t.Cleanup(func() {
		apiURL = oldURL
		restore()
		server.Close()
	})
}

func TestGenerateSendsPromptAndReturnsText(t *testing.T) {
	var got chatRequest
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Lease Agreement \n"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	})

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.Generate(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text() != "  Lease Agreement \n" {
		t.Fatalf("expected untrimmed text, got %q", resp.Text())
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "classify this" || got.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages %#v", got.Messages)
	}
	if got.Temperature == nil || *got.Temperature != 0 {
		t.Fatalf("expected temperature 0, got %v", got.Temperature)
	}
}

func TestGenerateOmitsTemperatureForGPT5(t *testing.T) {
	var raw map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	client, _ := NewClient("test-key", "gpt-5-mini")
	if _, err := client.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := raw["temperature"]; ok {
		t.Fatal("expected temperature to be omitted")
	}
}

func TestGenerateSurfacesHTTPErrors(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})

	client, _ := NewClient("test-key", "gpt-4o-mini")
	_, err := client.Generate(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerateRejectsEmptyContent(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	})

	client, _ := NewClient("test-key", "gpt-4o-mini")
	if _, err := client.Generate(context.Background(), "p"); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected missing key error")
	}
	if _, err := NewClient("k", " "); err == nil {
		t.Fatal("expected missing model error")
	}
}
