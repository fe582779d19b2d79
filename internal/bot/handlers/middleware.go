// Package handlers contains Telegram bot update handlers for the broadcast
// relay, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// OperatorOnly creates a middleware that gates private-chat interactions on
// the configured operator set. Non-operators get a fixed rejection message
// and nothing else happens. Messages from group chats are dropped silently:
// group chats are never a source of operator commands.
func OperatorOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}

			if update.Message.Chat.Type != models.ChatTypePrivate {
				return
			}

			userID := update.Message.From.ID
			if !deps.Config.Telegram.IsOperator(userID) {
				chatID := update.Message.Chat.ID
				log := deps.Logger.With("middleware", "OperatorOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)

				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   deps.Config.Messages.NotAuthorized,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
				return
			}

			next(ctx, bot, update)
		}
	}
}
