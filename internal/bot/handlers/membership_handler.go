package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Jamshid2204/msg-sender-bot/internal/database"
)

// membershipAction is the destination-set effect of a chat member update.
type membershipAction int

const (
	membershipNone membershipAction = iota
	membershipJoin
	membershipLeave
)

// classifyMembership maps the bot's new chat member status to its effect on
// the destination set. Transitions between joined statuses (for example
// member to administrator) have no effect on the record's existence.
func classifyMembership(status models.ChatMemberType) membershipAction {
	switch status {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return membershipJoin
	case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
		return membershipLeave
	default:
		return membershipNone
	}
}

// NewMembershipHandler returns the handler for my_chat_member updates. It
// keeps the destination set synchronized with the group chats the bot
// belongs to.
func NewMembershipHandler(deps HandlerDeps) bot.HandlerFunc {
	return membershipHandler{deps}.Handle
}

type membershipHandler struct {
	deps HandlerDeps
}

func (h membershipHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "membership")
	ev := update.MyChatMember

	if ev.Chat.Type != models.ChatTypeGroup && ev.Chat.Type != models.ChatTypeSupergroup {
		return
	}

	switch classifyMembership(ev.NewChatMember.Type) {
	case membershipJoin:
		exists, err := h.deps.Store.DestinationExists(ctx, ev.Chat.ID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to check destination existence",
				"chat_id", ev.Chat.ID, "error", err)
			return
		}
		if exists {
			log.DebugContext(ctx, "Destination already recorded", "chat_id", ev.Chat.ID)
			return
		}

		dest := &database.Destination{ChatID: ev.Chat.ID, DisplayName: ev.Chat.Title}
		if err := h.deps.Store.CreateDestination(ctx, dest); err != nil {
			log.ErrorContext(ctx, "Failed to create destination", "chat_id", ev.Chat.ID, "error", err)
			return
		}
		log.InfoContext(ctx, "Bot joined group, destination recorded",
			"chat_id", ev.Chat.ID, "display_name", dest.DisplayName)

	case membershipLeave:
		if err := h.deps.Store.DeleteDestination(ctx, ev.Chat.ID); err != nil {
			log.ErrorContext(ctx, "Failed to delete destination", "chat_id", ev.Chat.ID, "error", err)
			return
		}
		log.InfoContext(ctx, "Bot left group, destination removed", "chat_id", ev.Chat.ID)
	}
}
