package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"contract-backend/internal/bootstrap"
	"contract-backend/internal/extract"
	"contract-backend/internal/llm"
	"contract-backend/internal/pipeline"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/staging"
)

type commandContext struct {
	configFlag   string
	providerFlag string
	modelFlag    string
	userFlag     string

	configOnce sync.Once
	config     config.Config
	profile    profile
	configErr  error

	// newLLM and extractor are replaced in tests.
	newLLM    func(ctx context.Context, cfg config.Config) (llm.Client, error)
	extractor pipeline.Extractor
}

func newCommandContext() *commandContext {
	return &commandContext{newLLM: bootstrap.BuildLLM}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		p, err := loadProfile(c.configFlag)
		if err != nil {
			c.configErr = err
			return
		}
		c.profile = p
		cfg := p.apply(config.Load())
		if v := strings.TrimSpace(c.providerFlag); v != "" {
			cfg.LLMProvider = strings.ToLower(v)
		}
		if v := strings.TrimSpace(c.modelFlag); v != "" {
			cfg.LLMModel = v
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// user resolves the staging key owner from the flag, then the profile.
func (c *commandContext) user() string {
	if u := strings.TrimSpace(c.userFlag); u != "" {
		return u
	}
	if u := strings.TrimSpace(c.profile.User); u != "" {
		return u
	}
	return defaultUser
}

// orchestrator runs the real pipeline over an in-memory staging cache.
func (c *commandContext) orchestrator(ctx context.Context) (*pipeline.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := c.newLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &pipeline.Orchestrator{
		Staging: staging.NewMemoryCache(nil),
		LLM:     client,
		Extract: c.extractor,
		Model:   cfg.LLMModel,
		TTL:     cfg.StagingTTL,
	}, nil
}

func (c *commandContext) extract(ctx context.Context, file []byte) (string, error) {
	extractor := c.extractor
	if extractor == nil {
		extractor = extract.Text
	}
	return extractor(ctx, staging.Raw(file))
}

func readContract(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file does not exist: %s", path)
		}
		return nil, fmt.Errorf("read contract: %w", err)
	}
	return data, nil
}
