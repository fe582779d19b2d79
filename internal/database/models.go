package database

import (
	"database/sql"
	"time"
)

// Destination represents a group chat the bot can broadcast into.
// A row exists while the bot is a member of the chat and is removed
// when the bot leaves or is kicked.
type Destination struct {
	ChatID      int64     `db:"chat_id"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// DeliveryRecord is durable proof of one successful send to one destination.
// Records are append-only: created after a confirmed send, never updated,
// never deleted. The newest record per destination is the retraction target.
type DeliveryRecord struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	OperatorID        int64          `db:"operator_id"`
	DestinationChatID int64          `db:"destination_chat_id"`
	ContentKind       string         `db:"content_kind"`
	Payload           string         `db:"payload"`
	Caption           sql.NullString `db:"caption"`
	PlatformMessageID int            `db:"platform_message_id"`
	SentAt            time.Time      `db:"sent_at"`
}

// OperatorProfile is a best-effort cache of an operator's Telegram identity,
// upserted on every inbound private message.
type OperatorProfile struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	IsBot     bool      `db:"is_bot"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
