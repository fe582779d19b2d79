// Package main contains the entrypoint for the broadcast bot application.
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

	"github.com/Jamshid2204/msg-sender-bot/internal/bot"
	"github.com/Jamshid2204/msg-sender-bot/internal/bot/handlers"
	"github.com/Jamshid2204/msg-sender-bot/internal/bot/tasks"
	"github.com/Jamshid2204/msg-sender-bot/internal/broadcast"
	"github.com/Jamshid2204/msg-sender-bot/internal/config"
	"github.com/Jamshid2204/msg-sender-bot/internal/database"
	"github.com/Jamshid2204/msg-sender-bot/internal/logger"
	"github.com/Jamshid2204/msg-sender-bot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// telegram client, fan-out engine, scheduler), handles graceful shutdown, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	// The default handler needs the fan-out engine, which in turn needs the
	// bot's identity; bind it through an indirection that is filled in below,
	// before polling starts.
	var dispatch tgbot.HandlerFunc
	defaultHandler := func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if dispatch != nil {
			dispatch(ctx, b, update)
		}
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithAllowedUpdates(telegram.AllowedUpdates),
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(defaultHandler),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// The bot's own identity is needed for per-destination admin checks.
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	api := telegram.NewAPI(tg, cfg.Telegram.BotInfo.ID)
	engine := broadcast.NewEngine(log, api, store, broadcast.EngineConfig{
		OperatorIDs:        cfg.Telegram.OperatorIDs,
		AttemptTimeout:     cfg.Broadcast.AttemptTimeout,
		AdminWarningFormat: cfg.Messages.AdminWarning,
	})
	albums := broadcast.NewAggregator(log, cfg.Broadcast.AlbumWindow,
		handlers.NewAlbumFlush(log, cfg, engine, api))

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Store:  store,
		Engine: engine,
		Albums: albums,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	dispatch = handlers.NewUpdateDispatcher(hDeps)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, db, store, tg, albums, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
