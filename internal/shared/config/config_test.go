package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "LLM_PROVIDER", "LLM_MODEL", "STAGING_TTL_SECONDS", "RESULT_CACHE_TTL_SECONDS", "MAX_UPLOAD_BYTES", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected provider gemini, got %q", cfg.LLMProvider)
	}
	if cfg.LLMModel != defaultGeminiModel {
		t.Fatalf("expected model %q, got %q", defaultGeminiModel, cfg.LLMModel)
	}
	if cfg.StagingTTL != time.Hour {
		t.Fatalf("expected staging ttl 1h, got %s", cfg.StagingTTL)
	}
	if cfg.MaxUploadBytes != defaultMaxUploadBytes {
		t.Fatalf("expected max upload %d, got %d", defaultMaxUploadBytes, cfg.MaxUploadBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("STAGING_TTL_SECONDS", "120")
	t.Setenv("RESULT_CACHE_TTL_SECONDS", "not-a-number")

	cfg := Load()

	if cfg.Env != "production" {
		t.Fatalf("expected env production, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "openai" || cfg.LLMModel != defaultOpenAIModel {
		t.Fatalf("unexpected provider/model %q/%q", cfg.LLMProvider, cfg.LLMModel)
	}
	if cfg.StagingTTL != 2*time.Minute {
		t.Fatalf("expected staging ttl 2m, got %s", cfg.StagingTTL)
	}
	if cfg.ResultCacheTTL != time.Hour {
		t.Fatalf("expected fallback result ttl 1h, got %s", cfg.ResultCacheTTL)
	}
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nexport CONTRACT_TEST_A=\"from-file\"\nCONTRACT_TEST_B=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CONTRACT_TEST_B", "from-env")
	os.Unsetenv("CONTRACT_TEST_A")
	t.Cleanup(func() { os.Unsetenv("CONTRACT_TEST_A") })

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("CONTRACT_TEST_A"); got != "from-file" {
		t.Fatalf("expected CONTRACT_TEST_A from file, got %q", got)
	}
	if got := os.Getenv("CONTRACT_TEST_B"); got != "from-env" {
		t.Fatalf("expected CONTRACT_TEST_B to keep env value, got %q", got)
	}
}
