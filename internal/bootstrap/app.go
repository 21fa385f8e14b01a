// Package bootstrap assembles the API's dependencies from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/contracts"
	"contract-backend/internal/llm"
	"contract-backend/internal/llm/gemini"
	"contract-backend/internal/llm/openai"
	"contract-backend/internal/pipeline"
	"contract-backend/internal/shared/auth"
	"contract-backend/internal/shared/cache"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/server"
	"contract-backend/internal/shared/storage/db"
	"contract-backend/internal/staging"
)

const memorySweepInterval = time.Minute

// App holds shared dependencies and the configured router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Redis            *cache.Client
	Keys             *auth.Keyring
	Staging          staging.Cache
	LLM              llm.Client
	Orchestrator     *pipeline.Orchestrator
	ContractsRepo    contracts.Repo
	ContractsService *contracts.Service
	ContractsHandler *contracts.Handler

	stop context.CancelFunc
}

// Build prepares every dependency and the router. Development tolerates missing
// infrastructure by falling back to in-memory implementations.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	runCtx, stop := context.WithCancel(context.Background())
	app := &App{Config: cfg, stop: stop}

	keys, err := auth.NewKeyring(cfg.JWTSecret, cfg.Env)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Keys = keys

	if app.DB, err = buildDB(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}
	if app.Redis, err = buildRedis(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}
	app.Staging = buildStaging(runCtx, app.Redis)
	if app.LLM, err = BuildLLM(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	buildServices(app)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		Keys:             app.Keys,
		ContractsHandler: app.ContractsHandler,
		Ready:            app.Ready,
	})
	return app, nil
}

// Ready checks the backing stores that are configured.
func (a *App) Ready(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close stops background work and releases connections.
func (a *App) Close() error {
	if a.stop != nil {
		a.stop()
	}
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*cache.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: REDIS_URL empty; using in-memory staging cache")
			return nil, nil
		}
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: redis connect failed; using in-memory staging cache: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

func buildStaging(ctx context.Context, client *cache.Client) staging.Cache {
	if client != nil {
		return staging.NewRedisCache(client)
	}
	mem := staging.NewMemoryCache(nil)
	go mem.Run(ctx, memorySweepInterval)
	return mem
}

// BuildLLM selects the model invoker for cfg.LLMProvider. Missing credentials are an
// error outside development.
func BuildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case "openai":
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	default:
		client, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, gemini.Options{})
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: %s client unavailable; model calls will fail: %v", cfg.LLMProvider, err)
			return llm.Unconfigured{Provider: cfg.LLMProvider}, nil
		}
		return nil, err
	}
	return client, nil
}

func buildServices(app *App) {
	var repo contracts.Repo
	if app.DB != nil {
		repo = &contracts.PGRepo{DB: app.DB}
	} else {
		repo = contracts.NewMemoryRepo()
	}

	app.Orchestrator = &pipeline.Orchestrator{
		Staging: app.Staging,
		LLM:     app.LLM,
		Model:   app.Config.LLMModel,
		TTL:     app.Config.StagingTTL,
	}
	svc := &contracts.Service{
		Pipeline: app.Orchestrator,
		Repo:     repo,
		CacheTTL: app.Config.ResultCacheTTL,
	}
	if app.Redis != nil {
		svc.Cache = contracts.NewRedisResultCache(app.Redis)
	}

	app.ContractsRepo = repo
	app.ContractsService = svc
	app.ContractsHandler = contracts.NewHandler(svc, app.Config.MaxUploadBytes)
}
