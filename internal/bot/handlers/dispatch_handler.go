package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Jamshid2204/msg-sender-bot/internal/broadcast"
	"github.com/Jamshid2204/msg-sender-bot/internal/database"
)

// NewUpdateDispatcher returns the default update handler. It routes the
// bot's own membership changes to the membership handler and private-chat
// messages, gated on the operator set, to the content router.
func NewUpdateDispatcher(deps HandlerDeps) bot.HandlerFunc {
	membership := NewMembershipHandler(deps)
	router := OperatorOnly(deps)(contentRouter{deps}.Handle)

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		switch {
		case update.MyChatMember != nil:
			membership(ctx, b, update)
		case update.Message != nil:
			router(ctx, b, update)
		}
	}
}

// contentRouter classifies authorized private-chat messages into control
// commands (list destinations, retract last broadcast) or content
// submissions headed for the fan-out engine.
type contentRouter struct {
	deps HandlerDeps
}

func (h contentRouter) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "content_router")
	msg := update.Message

	upsertOperatorProfile(ctx, h.deps, msg.From)

	msgs := h.deps.Config.Messages
	switch msg.Text {
	case msgs.ButtonList:
		h.handleListDestinations(ctx, b, msg.Chat.ID)
		return
	case msgs.ButtonRetract:
		h.handleRetract(ctx, b, msg.Chat.ID)
		return
	}

	item, ok := normalizeContent(msg)
	if !ok {
		log.DebugContext(ctx, "Ignoring unclassifiable private message",
			"chat_id", msg.Chat.ID, "message_id", msg.ID)
		return
	}

	// Media that belongs to an album is debounced by the aggregator; the
	// flush callback broadcasts it and notifies the operator.
	if msg.MediaGroupID != "" && item.Kind != broadcast.KindText {
		h.deps.Albums.Observe(msg.MediaGroupID, item, broadcast.AlbumMeta{
			OperatorID:  msg.From.ID,
			ReplyChatID: msg.Chat.ID,
		})
		return
	}

	result, err := h.deps.Engine.Broadcast(ctx, broadcast.Single(item), msg.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Broadcast failed", "error", err, "user_id", msg.From.ID)
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   FormatSummary(msgs, result),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send broadcast summary", "error", err, "chat_id", msg.Chat.ID)
	}
}

func (h contentRouter) handleListDestinations(ctx context.Context, b *bot.Bot, chatID int64) {
	log := h.deps.Logger.With("handler", "list_destinations")

	destinations, err := h.deps.Store.ListDestinations(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list destinations", "error", err)
		return
	}

	msgs := h.deps.Config.Messages
	text := msgs.NoDestinations
	if len(destinations) > 0 {
		text = msgs.ListHeader
		for i, dest := range destinations {
			text += fmt.Sprintf("\n%d. %s", i+1, dest.DisplayName)
		}
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send destination list", "error", err, "chat_id", chatID)
	}
}

func (h contentRouter) handleRetract(ctx context.Context, b *bot.Bot, chatID int64) {
	log := h.deps.Logger.With("handler", "retract")

	retracted, err := h.deps.Engine.RetractLast(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Retraction failed", "error", err)
		return
	}

	text := fmt.Sprintf(h.deps.Config.Messages.Retracted, retracted)
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send retraction summary", "error", err, "chat_id", chatID)
	}
}

// upsertOperatorProfile caches the sender's identity attributes. This is
// best-effort telemetry: a failure is logged and never blocks the main flow.
func upsertOperatorProfile(ctx context.Context, deps HandlerDeps, from *models.User) {
	if from == nil {
		return
	}

	profile := &database.OperatorProfile{
		UserID:    from.ID,
		Username:  from.Username,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		IsBot:     from.IsBot,
	}
	if err := deps.Store.UpsertOperatorProfile(ctx, profile); err != nil {
		deps.Logger.WarnContext(ctx, "Failed to upsert operator profile", "user_id", from.ID, "error", err)
	}
}
