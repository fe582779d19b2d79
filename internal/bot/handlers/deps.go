package handlers

import (
	"log/slog"

	"github.com/Jamshid2204/msg-sender-bot/internal/broadcast"
	"github.com/Jamshid2204/msg-sender-bot/internal/config"
	"github.com/Jamshid2204/msg-sender-bot/internal/database"
)

// HandlerDeps provides dependencies for Telegram update handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	Engine *broadcast.Engine
	Albums *broadcast.Aggregator
}
