package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lecture-quiz/api/internal/app"
	"lecture-quiz/api/internal/config"
	"lecture-quiz/api/internal/extract"
	"lecture-quiz/api/internal/handle"
	"lecture-quiz/api/internal/httpserver"
	"lecture-quiz/api/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	go a.PurgeLoop(ctx)

	h := handle.New(a.Generator, extract.PDF{}, a.Repo, log, handle.Options{
		MaxUploadBytes:    cfg.MaxUploadBytes,
		DefaultQuestions:  cfg.DefaultQuestions,
		GenerationTimeout: cfg.GenerationTimeout,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
	})

	log.Info("quiz api starting", "engine", cfg.LLMEngine, "engines", a.Engines.Names(), "env", cfg.Environment)
	if err := httpserver.Run(ctx, ":"+cfg.Port, h.Routes(), log); err != nil {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
