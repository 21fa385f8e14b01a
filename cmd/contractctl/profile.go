package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"contract-backend/internal/shared/config"
)

const defaultUser = "cli"

// profile is the optional contractctl.toml. Values override the environment; flags
// override both.
type profile struct {
	User      string     `toml:"user"`
	JWTSecret string     `toml:"jwt_secret"`
	LLM       profileLLM `toml:"llm"`
}

type profileLLM struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	GeminiAPIKey string `toml:"gemini_api_key"`
	OpenAIAPIKey string `toml:"openai_api_key"`
}

// loadProfile reads path, or the first of ~/.config/contractctl/config.toml and
// ./contractctl.toml when path is empty. A missing default file is not an error.
func loadProfile(path string) (profile, error) {
	var p profile
	resolved, exists, err := resolveProfilePath(path)
	if err != nil {
		return p, err
	}
	if !exists {
		if path != "" {
			return p, fmt.Errorf("config file does not exist: %s", resolved)
		}
		return p, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return p, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return p, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	return p, nil
}

func resolveProfilePath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		return statProfile(expanded)
	}

	candidates := []string{"contractctl.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append([]string{filepath.Join(home, ".config", "contractctl", "config.toml")}, candidates...)
	}
	for _, candidate := range candidates {
		resolved, exists, err := statProfile(candidate)
		if err != nil || exists {
			return resolved, exists, err
		}
	}
	return "", false, nil
}

func statProfile(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path is a directory: %s", path)
	}
	return path, true, nil
}

func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// apply overlays non-empty profile values onto cfg.
func (p profile) apply(cfg config.Config) config.Config {
	if v := strings.TrimSpace(p.LLM.Provider); v != "" {
		cfg.LLMProvider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(p.LLM.Model); v != "" {
		cfg.LLMModel = v
	}
	if v := strings.TrimSpace(p.LLM.GeminiAPIKey); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := strings.TrimSpace(p.LLM.OpenAIAPIKey); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := strings.TrimSpace(p.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	return cfg
}
