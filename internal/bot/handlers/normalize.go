package handlers

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Jamshid2204/msg-sender-bot/internal/broadcast"
)

// normalizeContent converts an inbound message into one tagged content item:
// plain text (commands excluded), the largest size of a photo, or a video.
// Photo and video keep the caption. Anything else is not broadcastable.
func normalizeContent(msg *models.Message) (broadcast.Item, bool) {
	switch {
	case msg.Text != "" && !strings.HasPrefix(msg.Text, "/"):
		return broadcast.Item{Kind: broadcast.KindText, Payload: msg.Text}, true
	case len(msg.Photo) > 0:
		// Telegram orders photo sizes ascending; the last one is the original.
		return broadcast.Item{
			Kind:    broadcast.KindPhoto,
			Payload: msg.Photo[len(msg.Photo)-1].FileID,
			Caption: msg.Caption,
		}, true
	case msg.Video != nil:
		return broadcast.Item{
			Kind:    broadcast.KindVideo,
			Payload: msg.Video.FileID,
			Caption: msg.Caption,
		}, true
	default:
		return broadcast.Item{}, false
	}
}
