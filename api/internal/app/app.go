package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"lecture-quiz/api/internal/config"
	"lecture-quiz/api/internal/db"
	"lecture-quiz/api/internal/generate"
	"lecture-quiz/api/internal/httpserver"
	"lecture-quiz/api/internal/llm"
	"lecture-quiz/api/internal/llm/gemini"
	"lecture-quiz/api/internal/llm/gpt"
	"lecture-quiz/api/internal/prompt"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/session"
	"lecture-quiz/api/internal/store"
)

// App is the dependency graph shared by the HTTP API and the bot.
type App struct {
	Config    *config.Config
	Log       *slog.Logger
	Catalog   *quiz.Catalog
	Engines   *llm.Engines
	Repo      store.QuizRepo
	Generator *generate.Service

	db    *sql.DB
	redis *redis.Client
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	cat, err := catalog(cfg.ExtraKinds)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	a.Engines = &llm.Engines{Default: cfg.LLMEngine}
	if cfg.GeminiAPIKey != "" {
		a.Engines.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.OpenAIAPIKey != "" {
		a.Engines.OpenAI = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	prompts, err := prompt.NewBuilder(cfg.PromptDir)
	if err != nil {
		return nil, err
	}

	if err := a.openRepo(ctx); err != nil {
		return nil, err
	}

	a.Generator = generate.NewService(a.Engines, generate.Config{
		MaxSourceChars:   cfg.MaxSourceChars,
		MinQuestions:     cfg.MinQuestions,
		MaxQuestions:     cfg.MaxQuestions,
		RateLimitRetries: cfg.RateLimitRetries,
		RetryDelay:       cfg.RetryDelay,
	},
		generate.WithRepo(a.Repo),
		generate.WithPrompts(prompts),
		generate.WithCatalog(cat),
		generate.WithLogger(log),
	)
	return a, nil
}

func catalog(extra string) (*quiz.Catalog, error) {
	c := quiz.DefaultCatalog()
	specs, err := quiz.ParseKindSpecs(extra)
	if err != nil {
		return nil, fmt.Errorf("QUIZ_EXTRA_KINDS: %w", err)
	}
	for _, s := range specs {
		if err := c.Register(s); err != nil {
			return nil, fmt.Errorf("QUIZ_EXTRA_KINDS: %w", err)
		}
	}
	return c, nil
}

// openRepo uses SQL when a driver or DSN is configured, memory otherwise.
func (a *App) openRepo(ctx context.Context) error {
	cfg := a.Config
	if cfg.DatabaseDriver == "" && cfg.DatabaseURL == "" {
		a.Log.Warn("no database configured, quiz sets are kept in memory")
		a.Repo = store.NewMemoryRepo()
		return nil
	}
	drv, err := db.ParseDriver(cfg.DatabaseDriver)
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, err := db.Open(pingCtx, drv, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if drv == db.DriverPostgres {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(time.Hour)
	}
	a.Log.Info("db connected", "driver", drv, "dsn", config.SafeDSNSummary(cfg.DatabaseURL))
	a.db = conn
	a.Repo = store.NewSQLRepo(conn)
	return nil
}

// Sessions returns a Redis store when REDIS_URL is set, memory otherwise.
func (a *App) Sessions(ctx context.Context) (session.Store, error) {
	if a.Config.RedisURL == "" {
		return session.NewMemoryStore(), nil
	}
	client, err := session.NewRedisClient(ctx, a.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.Log.Info("redis connected")
	return session.NewRedisStore(client, a.Config.SessionTTL), nil
}

// Limits is the question count range for interactive sessions.
func (a *App) Limits() session.Limits {
	return session.Limits{Min: a.Config.MinQuestions, Max: a.Config.MaxQuestions, Default: a.Config.DefaultQuestions}
}

func (a *App) Checks() map[string]httpserver.Check {
	checks := map[string]httpserver.Check{}
	if a.db != nil {
		checks["db"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	return checks
}

// PurgeLoop deletes stored sets older than the retention window, hourly.
func (a *App) PurgeLoop(ctx context.Context) {
	if a.Config.QuizRetention <= 0 {
		return
	}
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		n, err := a.Repo.PurgeOlderThan(ctx, a.Config.QuizRetention)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.Log.Warn("purge failed", "error", err)
		} else if n > 0 {
			a.Log.Info("purged quiz sets", "count", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
