package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jamshid2204/msg-sender-bot/internal/broadcast"
	"github.com/Jamshid2204/msg-sender-bot/internal/config"
)

// FormatSummary composes the operator-facing confirmation for one broadcast:
// the delivered count plus a 1-indexed list of destination names, or the
// "none delivered" warning line.
func FormatSummary(msgs config.MessagesConfig, result broadcast.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, msgs.Broadcasted, len(result.Delivered))

	if len(result.Delivered) == 0 {
		sb.WriteString("\n\n")
		sb.WriteString(msgs.NoneDelivered)
		return sb.String()
	}

	sb.WriteString("\n")
	for i, name := range result.Delivered {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, name)
	}
	return sb.String()
}

// NewAlbumFlush builds the aggregator callback that broadcasts a completed
// album and sends the summary back to the submitting operator. It runs on a
// timer goroutine, outside any update handler, so it carries its own context.
func NewAlbumFlush(logger *slog.Logger, cfg *config.Config, engine *broadcast.Engine, api broadcast.TelegramAPI) broadcast.FlushFunc {
	log := logger.With("handler", "album_flush")

	return func(albumID string, items []broadcast.Item, meta broadcast.AlbumMeta) {
		ctx := context.Background()

		result, err := engine.Broadcast(ctx, broadcast.Album(items), meta.OperatorID)
		if err != nil {
			log.Error("Album broadcast failed", "album_id", albumID, "error", err)
			return
		}

		summaryCtx, cancel := context.WithTimeout(ctx, cfg.Broadcast.AttemptTimeout)
		defer cancel()
		if _, err := api.SendText(summaryCtx, meta.ReplyChatID, FormatSummary(cfg.Messages, result)); err != nil {
			log.Error("Failed to send album broadcast summary",
				"album_id", albumID, "chat_id", meta.ReplyChatID, "error", err)
		}
	}
}
