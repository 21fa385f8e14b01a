package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string
	RedisURL        string
	StagingTTL      time.Duration
	ResultCacheTTL  time.Duration
	LLMProvider     string
	LLMModel        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	MaxUploadBytes  int64
	JWTSecret       string

	// UploadRatePerMinute and UploadBurst feed the per-user token bucket on upload routes.
	UploadRatePerMinute float64
	UploadBurst         int
}

const (
	defaultStagingTTLSeconds = 3600
	defaultResultTTLSeconds  = 3600
	defaultMaxUploadBytes    = 10 << 20
	defaultUploadPerMinute   = 10
	defaultUploadBurst       = 5
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultOpenAIModel       = "gpt-4o-mini"
)

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	if env == "production" && redisURL == "" {
		log.Printf("REDIS_URL is required in production")
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", "gemini"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:             env,
		DatabaseURL:     dbURL,
		RedisURL:        redisURL,
		StagingTTL:      getSeconds("STAGING_TTL_SECONDS", defaultStagingTTLSeconds),
		ResultCacheTTL:  getSeconds("RESULT_CACHE_TTL_SECONDS", defaultResultTTLSeconds),
		LLMProvider:     provider,
		LLMModel:        getEnv("LLM_MODEL", defaultModel(provider)),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		MaxUploadBytes:  getInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		JWTSecret:       os.Getenv("JWT_SECRET"),

		UploadRatePerMinute: float64(getInt64("UPLOAD_RATE_PER_MINUTE", defaultUploadPerMinute)),
		UploadBurst:         int(getInt64("UPLOAD_RATE_BURST", defaultUploadBurst)),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getSeconds(key string, def int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Second
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config %s invalid seconds %q, using %d", key, raw, def)
		return time.Duration(def) * time.Second
	}
	return time.Duration(parsed) * time.Second
}

func getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}

// IsDevLike reports whether env tolerates missing infrastructure.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
