package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Jamshid2204/msg-sender-bot/internal/broadcast"
)

// API adapts *bot.Bot to the broadcast.TelegramAPI interface so the engine
// stays independent of the concrete platform client.
type API struct {
	bot   *bot.Bot
	botID int64
}

// NewAPI wraps the Telegram client for use by the broadcast engine.
// botID is the bot's own user ID, needed for admin checks.
func NewAPI(b *bot.Bot, botID int64) *API {
	return &API{bot: b, botID: botID}
}

// SendText sends a plain text message and returns its message ID.
func (a *API) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	msg, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// SendPhoto sends a photo by file ID and returns its message ID.
func (a *API) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	msg, err := a.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileString{Data: fileID},
		Caption: caption,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// SendVideo sends a video by file ID and returns its message ID.
func (a *API) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	msg, err := a.bot.SendVideo(ctx, &bot.SendVideoParams{
		ChatID:  chatID,
		Video:   &models.InputFileString{Data: fileID},
		Caption: caption,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// SendAlbum sends the items as one media group and returns the resulting
// message IDs in item order.
func (a *API) SendAlbum(ctx context.Context, chatID int64, items []broadcast.Item) ([]int, error) {
	media := make([]models.InputMedia, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case broadcast.KindPhoto:
			media = append(media, &models.InputMediaPhoto{
				Media:   item.Payload,
				Caption: item.Caption,
			})
		case broadcast.KindVideo:
			media = append(media, &models.InputMediaVideo{
				Media:   item.Payload,
				Caption: item.Caption,
			})
		default:
			return nil, fmt.Errorf("content kind %q cannot be part of a media group", item.Kind)
		}
	}

	messages, err := a.bot.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
		ChatID: chatID,
		Media:  media,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	return ids, nil
}

// DeleteMessage deletes a previously sent message.
func (a *API) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ok, err := a.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("telegram declined to delete message %d in chat %d", messageID, chatID)
	}
	return nil
}

// IsAdmin reports whether the bot itself is administrator or creator of the chat.
func (a *API) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	member, err := a.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: a.botID,
	})
	if err != nil {
		return false, err
	}

	switch member.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator:
		return true, nil
	default:
		return false, nil
	}
}
