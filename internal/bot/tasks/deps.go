// Package tasks implements scheduled maintenance tasks for the broadcast bot.
package tasks

import (
	"log/slog"

	"github.com/Jamshid2204/msg-sender-bot/internal/config"
	"github.com/Jamshid2204/msg-sender-bot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
