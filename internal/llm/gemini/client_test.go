package gemini

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

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	restore := telemetry.SetOutput(io.Discard)
	t.Cleanup(func() {
		restore()
		server.Close()
	})
	client, err := NewClient(context.Background(), "test-key", "gemini-2.5-flash", Options{BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGenerateReturnsCandidateText(t *testing.T) {
	var path string
	var prompt string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && len(body.Contents) > 0 && len(body.Contents[0].Parts) > 0 {
			prompt = body.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Employment"}]}}],"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":1,"totalTokenCount":5}}`))
	})

	resp, err := client.Generate(context.Background(), "what type is this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text() != "Employment" {
		t.Fatalf("unexpected text %q", resp.Text())
	}
	if !strings.HasSuffix(path, "gemini-2.5-flash:generateContent") {
		t.Fatalf("unexpected path %q", path)
	}
	if prompt != "what type is this" {
		t.Fatalf("unexpected prompt %q", prompt)
	}
}

func TestGenerateRejectsEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	if _, err := client.Generate(context.Background(), "p"); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateSurfacesAPIErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	})

	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "gemini-2.5-flash", Options{}); err == nil {
		t.Fatal("expected missing key error")
	}
}
