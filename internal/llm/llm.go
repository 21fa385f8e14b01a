package llm

import (
	"context"
	"errors"
	"fmt"
)

// Response is a model reply. Its text is untrusted free text.
type Response interface {
	Text() string
}

// Client sends one prompt to a generative model and waits for the reply.
// Implementations do not retry.
type Client interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// TextResponse is a Response backed by a plain string.
type TextResponse string

func (r TextResponse) Text() string { return string(r) }

// ErrNotConfigured is returned by Unconfigured.
var ErrNotConfigured = errors.New("llm provider not configured")

// Unconfigured stands in for a provider whose credentials are missing in development.
type Unconfigured struct {
	Provider string
}

func (u Unconfigured) Generate(ctx context.Context, prompt string) (Response, error) {
	return nil, fmt.Errorf("%w: %s", ErrNotConfigured, u.Provider)
}
