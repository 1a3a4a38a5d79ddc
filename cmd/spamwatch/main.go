// Package main contains the entrypoint for the channel moderation bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/spamwatch/internal/bot"
	"github.com/edgard/spamwatch/internal/config"
	"github.com/edgard/spamwatch/internal/database"
	"github.com/edgard/spamwatch/internal/logger"
	"github.com/edgard/spamwatch/internal/moderation"
	"github.com/edgard/spamwatch/internal/ocr"
	"github.com/edgard/spamwatch/internal/spam"
	"github.com/edgard/spamwatch/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, starts the bot, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	ruleSet := spam.DefaultRuleSet()
	if cfg.Rules.Path != "" {
		ruleSet, err = spam.LoadRuleSet(cfg.Rules.Path)
		if err != nil {
			log.Error("Failed to load rules file", "path", cfg.Rules.Path, "error", err)
			return 1
		}
		log.Info("Loaded rules file", "path", cfg.Rules.Path)
	}

	recognizer, err := ocr.NewRecognizer(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize OCR recognizer", "error", err)
		return 1
	}

	// The bot, actions, watcher, and pipeline form a dependency cycle across
	// the update handler, so the handler is bound after construction through
	// a small indirection.
	var watcher *telegram.Watcher
	handler := func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		watcher.Handle(ctx, b, update)
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handler),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	actions := telegram.NewActions(tg, cfg.Telegram.LogChannelID, cfg.Telegram.ReportChannelID, log)
	downloader := telegram.NewDownloader(tg, cfg.Telegram.Token, cfg.Media.DownloadLimit)
	resolver := moderation.NewResolver(actions, log)
	orchestrator := moderation.NewOrchestrator(actions, resolver, store, log)

	pipeline, err := moderation.NewPipeline(
		spam.NewClassifier(ruleSet),
		orchestrator,
		downloader,
		recognizer,
		cfg.Telegram.AdminIDs,
		cfg.Media.Dir,
		log,
	)
	if err != nil {
		log.Error("Failed to create moderation pipeline", "error", err)
		return 1
	}

	watcher = telegram.NewWatcher(pipeline, actions, cfg.Telegram.MonitoredChats, log)

	sched, err := bot.NewScheduler(log)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	sched.AddTask("media_cleanup", cfg.Scheduler.MediaCleanup,
		bot.NewMediaCleanupTask(cfg.Media.Dir, cfg.Media.RetentionDays, log))
	sched.AddTask("db_maintenance", cfg.Scheduler.DBMaintenance,
		bot.NewDBMaintenanceTask(store))

	app := bot.NewBot(log, tg, sched)

	log.Info("Starting bot...", "monitored_chats", len(cfg.Telegram.MonitoredChats))
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
