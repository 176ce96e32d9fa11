package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecture-quiz/api/internal/app"
	"lecture-quiz/api/internal/config"
	"lecture-quiz/api/internal/extract"
	"lecture-quiz/api/internal/httpserver"
	"lecture-quiz/api/internal/logger"
	"lecture-quiz/api/internal/telegram"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Error("TELEGRAM_BOT_TOKEN is empty")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	sessions, err := a.Sessions(ctx)
	if err != nil {
		log.Error("session store failed", "error", err)
		os.Exit(1)
	}
	go a.PurgeLoop(ctx)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Error("telegram login failed", "error", err)
		os.Exit(1)
	}
	bot.Debug = false
	log.Info("telegram bot authorized", "username", bot.Self.UserName)

	r := &telegram.Router{
		Bot:               bot,
		Gen:               a.Generator,
		Extractor:         extract.PDF{},
		Sessions:          sessions,
		Engines:           a.Engines,
		Limits:            a.Limits(),
		Log:               log,
		GenerationTimeout: cfg.GenerationTimeout,
		MaxUploadBytes:    cfg.MaxUploadBytes,
	}

	addr := "0.0.0.0:" + cfg.Port
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		runWebhook(ctx, addr, bot, r, a, webhookURL, log)
		return
	}
	runPolling(ctx, addr, bot, r, a, log)
}

func runWebhook(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, a *app.App, baseURL string, log *slog.Logger) {
	path := telegram.WebhookPath(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Error("bad webhook url", "error", err)
		os.Exit(1)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Error("set webhook failed", "error", err)
		os.Exit(1)
	}

	handler := telegram.WebhookHandler(log, func(upd tgbotapi.Update) { r.Dispatch(ctx, upd) })
	log.Info("webhook mode", "addr", addr)
	if err := httpserver.Run(ctx, addr, httpserver.BotRoutes(a.Checks(), path, handler), log); err != nil {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func runPolling(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, a *app.App, log *slog.Logger) {
	// a webhook left from an earlier deployment would block getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn("delete webhook failed", "error", err)
	}
	go func() {
		if err := httpserver.Run(ctx, addr, httpserver.BotRoutes(a.Checks(), "", nil), log); err != nil {
			log.Error("health server failed", "error", err)
		}
	}()
	log.Info("polling mode")
	telegram.RunPolling(ctx, bot, log, func(upd tgbotapi.Update) { r.Dispatch(ctx, upd) })
}
