// Package gemini invokes Google Gemini models through google.golang.org/genai.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"contract-backend/internal/llm"
	"contract-backend/internal/shared/telemetry"
)

// Client implements llm.Client over the Gemini API backend.
type Client struct {
	model  string
	models *genai.Models
}

// Options tune client construction. BaseURL overrides the API endpoint.
type Options struct {
	BaseURL string
}

// NewClient builds a Gemini client for model.
func NewClient(ctx context.Context, apiKey, model string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = opts.BaseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	return &Client{model: model, models: client.Models}, nil
}

// Generate sends prompt as a single user turn and returns the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (llm.Response, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate model=%s: %w", c.model, err)
	}
	fields := map[string]any{"provider": "gemini", "model": c.model}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)

	if strings.TrimSpace(resp.Text()) == "" {
		return nil, llm.ErrEmptyResponse
	}
	return resp, nil
}

var _ llm.Client = (*Client)(nil)
