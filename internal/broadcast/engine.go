package broadcast

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jamshid2204/msg-sender-bot/internal/database"
)

// TelegramAPI is the narrow slice of the platform client the engine needs.
// Implementations return the platform message ID(s) of successful sends.
type TelegramAPI interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	// SendAlbum sends one media group and returns the message IDs in item order.
	SendAlbum(ctx context.Context, chatID int64, items []Item) ([]int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// IsAdmin reports whether the bot itself is administrator or creator of the chat.
	IsAdmin(ctx context.Context, chatID int64) (bool, error)
}

// Result summarizes one fan-out invocation.
type Result struct {
	// Attempted is the number of destinations in the batch.
	Attempted int
	// Delivered holds the display names of destinations that received the
	// content, in delivery order.
	Delivered []string
}

// EngineConfig carries the engine's operating parameters.
type EngineConfig struct {
	OperatorIDs []int64
	// AttemptTimeout bounds each outbound platform call so a hung
	// destination cannot stall the batch.
	AttemptTimeout time.Duration
	// AdminWarningFormat is the operator warning template with one %s verb
	// for the destination display name.
	AdminWarningFormat string
}

// Engine fans content out to every destination, records successful sends in
// the delivery ledger, and retracts the last broadcast on demand. It makes
// exactly one delivery attempt per destination per invocation.
type Engine struct {
	logger *slog.Logger
	api    TelegramAPI
	store  database.Store
	cfg    EngineConfig
}

// NewEngine creates a fan-out engine.
func NewEngine(logger *slog.Logger, api TelegramAPI, store database.Store, cfg EngineConfig) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	return &Engine{
		logger: logger.With("component", "fanout_engine"),
		api:    api,
		store:  store,
		cfg:    cfg,
	}
}

// Broadcast delivers content to every destination where the bot holds admin
// rights. Destinations without confirmed admin status are skipped and every
// configured operator is warned. One destination's failure never aborts the
// batch. The returned error is non-nil only when the destination set itself
// could not be read.
func (e *Engine) Broadcast(ctx context.Context, content Content, operatorID int64) (Result, error) {
	if len(content.Items) == 0 {
		return Result{}, fmt.Errorf("cannot broadcast empty content")
	}

	destinations, err := e.store.ListDestinations(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read destination set: %w", err)
	}

	result := Result{Attempted: len(destinations)}

	for _, dest := range destinations {
		if !e.confirmAdmin(ctx, dest) {
			e.warnOperators(ctx, dest)
			continue
		}

		messageIDs, err := e.deliver(ctx, dest.ChatID, content)
		if err != nil {
			e.logger.ErrorContext(ctx, "Delivery failed, continuing batch",
				"chat_id", dest.ChatID, "display_name", dest.DisplayName, "error", err)
			continue
		}

		result.Delivered = append(result.Delivered, dest.DisplayName)
		e.recordDeliveries(ctx, dest, content, operatorID, messageIDs)
	}

	e.logger.InfoContext(ctx, "Broadcast finished",
		"operator_id", operatorID, "attempted", result.Attempted, "delivered", len(result.Delivered))
	return result, nil
}

// confirmAdmin checks the bot's own membership status in the destination.
// A failed status check is treated the same as "not admin": the engine never
// posts where admin status is unconfirmed.
func (e *Engine) confirmAdmin(ctx context.Context, dest database.Destination) bool {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	admin, err := e.api.IsAdmin(callCtx, dest.ChatID)
	if err != nil {
		e.logger.WarnContext(ctx, "Admin status check failed, skipping destination",
			"chat_id", dest.ChatID, "display_name", dest.DisplayName, "error", err)
		return false
	}
	return admin
}

// warnOperators notifies every configured operator that the destination was
// skipped. Warning failures are logged and swallowed.
func (e *Engine) warnOperators(ctx context.Context, dest database.Destination) {
	warning := fmt.Sprintf(e.cfg.AdminWarningFormat, dest.DisplayName)

	for _, operatorID := range e.cfg.OperatorIDs {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		_, err := e.api.SendText(callCtx, operatorID, warning)
		cancel()
		if err != nil {
			e.logger.WarnContext(ctx, "Failed to deliver admin warning to operator",
				"operator_id", operatorID, "chat_id", dest.ChatID, "error", err)
		}
	}
}

// deliver makes the single delivery attempt for one destination and returns
// the platform message IDs in item order.
func (e *Engine) deliver(ctx context.Context, chatID int64, content Content) ([]int, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	if content.IsAlbum() {
		return e.api.SendAlbum(callCtx, chatID, content.Items)
	}

	item := content.Items[0]
	var (
		messageID int
		err       error
	)
	switch item.Kind {
	case KindText:
		messageID, err = e.api.SendText(callCtx, chatID, item.Payload)
	case KindPhoto:
		messageID, err = e.api.SendPhoto(callCtx, chatID, item.Payload, item.Caption)
	case KindVideo:
		messageID, err = e.api.SendVideo(callCtx, chatID, item.Payload, item.Caption)
	default:
		return nil, fmt.Errorf("unknown content kind %q", item.Kind)
	}
	if err != nil {
		return nil, err
	}
	return []int{messageID}, nil
}

// recordDeliveries appends one ledger record per sent message. The send
// already happened, so a ledger write failure is logged loudly but cannot
// undo the delivery.
func (e *Engine) recordDeliveries(ctx context.Context, dest database.Destination, content Content, operatorID int64, messageIDs []int) {
	sentAt := time.Now().UTC()

	for i, messageID := range messageIDs {
		if i >= len(content.Items) {
			break
		}
		item := content.Items[i]

		record := &database.DeliveryRecord{
			OperatorID:        operatorID,
			DestinationChatID: dest.ChatID,
			ContentKind:       string(item.Kind),
			Payload:           item.Payload,
			Caption:           sql.NullString{String: item.Caption, Valid: item.Caption != ""},
			PlatformMessageID: messageID,
			SentAt:            sentAt,
		}
		if err := e.store.SaveDeliveryRecord(ctx, record); err != nil {
			e.logger.ErrorContext(ctx, "DATA LOSS RISK: sent message has no delivery record",
				"chat_id", dest.ChatID, "platform_message_id", messageID, "error", err)
		}
	}
}

// RetractLast deletes, per destination, the platform message of its most
// recent delivery record and returns how many deletions succeeded. Missing
// records and failed deletions (already deleted, too old) are silently
// tolerated; records themselves stay untouched for audit.
func (e *Engine) RetractLast(ctx context.Context) (int, error) {
	destinations, err := e.store.ListDestinations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read destination set: %w", err)
	}

	retracted := 0
	for _, dest := range destinations {
		record, err := e.store.LatestDeliveryRecord(ctx, dest.ChatID)
		if err != nil {
			e.logger.WarnContext(ctx, "Failed to look up retraction target",
				"chat_id", dest.ChatID, "error", err)
			continue
		}
		if record == nil {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		err = e.api.DeleteMessage(callCtx, dest.ChatID, record.PlatformMessageID)
		cancel()
		if err != nil {
			e.logger.DebugContext(ctx, "Retraction delete failed, tolerated",
				"chat_id", dest.ChatID, "platform_message_id", record.PlatformMessageID, "error", err)
			continue
		}
		retracted++
	}

	e.logger.InfoContext(ctx, "Retraction finished", "retracted", retracted, "destinations", len(destinations))
	return retracted, nil
}
