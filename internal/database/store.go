package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// DestinationExists reports whether a destination with the given chat ID is recorded.
	DestinationExists(ctx context.Context, chatID int64) (bool, error)

	// CreateDestination inserts a new destination record.
	CreateDestination(ctx context.Context, dest *Destination) error

	// DeleteDestination removes a destination by chat ID. Deleting an absent
	// destination is a no-op.
	DeleteDestination(ctx context.Context, chatID int64) error

	// ListDestinations retrieves all destinations ordered by creation time.
	ListDestinations(ctx context.Context) ([]Destination, error)

	// SaveDeliveryRecord appends a new delivery record to the ledger.
	SaveDeliveryRecord(ctx context.Context, record *DeliveryRecord) error

	// LatestDeliveryRecord retrieves the most recent delivery record for a
	// destination by sent_at descending. Returns nil, nil when none exists.
	LatestDeliveryRecord(ctx context.Context, destinationChatID int64) (*DeliveryRecord, error)

	// UpsertOperatorProfile inserts or updates an operator profile.
	UpsertOperatorProfile(ctx context.Context, profile *OperatorProfile) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DestinationExists reports whether a destination with the given chat ID is recorded.
func (s *sqlxStore) DestinationExists(ctx context.Context, chatID int64) (bool, error) {
	if chatID == 0 {
		return false, fmt.Errorf("chat_id cannot be zero")
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM destinations WHERE chat_id = ?);`
	if err := s.db.GetContext(ctx, &exists, query, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Error checking destination existence", "chat_id", chatID, "error", err)
		return false, fmt.Errorf("failed to check destination %d: %w", chatID, err)
	}
	return exists, nil
}

// CreateDestination inserts a new destination record.
func (s *sqlxStore) CreateDestination(ctx context.Context, dest *Destination) error {
	if dest == nil {
		return fmt.Errorf("cannot create nil destination")
	}
	if dest.ChatID == 0 {
		return fmt.Errorf("destination must have a non-zero chat_id")
	}
	if dest.DisplayName == "" {
		dest.DisplayName = "No name"
	}

	now := time.Now().UTC()
	dest.CreatedAt = now
	dest.UpdatedAt = now

	query := `
        INSERT INTO destinations (chat_id, display_name, created_at, updated_at)
        VALUES (:chat_id, :display_name, :created_at, :updated_at);
    `
	if _, err := s.db.NamedExecContext(ctx, query, dest); err != nil {
		s.logger.ErrorContext(ctx, "Error creating destination", "chat_id", dest.ChatID, "error", err)
		return fmt.Errorf("failed to create destination %d: %w", dest.ChatID, err)
	}

	s.logger.DebugContext(ctx, "Destination created", "chat_id", dest.ChatID, "display_name", dest.DisplayName)
	return nil
}

// DeleteDestination removes a destination by chat ID.
func (s *sqlxStore) DeleteDestination(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM destinations WHERE chat_id = ?;`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting destination", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to delete destination %d: %w", chatID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		s.logger.DebugContext(ctx, "Delete for unknown destination was a no-op", "chat_id", chatID)
	}
	return nil
}

// ListDestinations retrieves all destinations ordered by creation time.
func (s *sqlxStore) ListDestinations(ctx context.Context) ([]Destination, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var destinations []Destination
	query := `
        SELECT chat_id, display_name, created_at, updated_at
        FROM destinations
        ORDER BY created_at ASC;
    `
	if err := s.db.SelectContext(ctx, &destinations, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing destinations", "error", err)
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}
	return destinations, nil
}

// SaveDeliveryRecord appends a new delivery record to the ledger.
func (s *sqlxStore) SaveDeliveryRecord(ctx context.Context, record *DeliveryRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil delivery record")
	}
	if record.DestinationChatID == 0 {
		return fmt.Errorf("delivery record must have a non-zero destination_chat_id")
	}
	if record.PlatformMessageID == 0 {
		return fmt.Errorf("delivery record must have a non-zero platform_message_id")
	}
	if record.SentAt.IsZero() {
		return fmt.Errorf("delivery record must have a non-zero sent_at")
	}

	record.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO delivery_records
            (operator_id, destination_chat_id, content_kind, payload, caption, platform_message_id, sent_at, created_at)
        VALUES
            (:operator_id, :destination_chat_id, :content_kind, :payload, :caption, :platform_message_id, :sent_at, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving delivery record",
			"destination_chat_id", record.DestinationChatID, "platform_message_id", record.PlatformMessageID, "error", err)
		return fmt.Errorf("failed to save delivery record (chat %d, message %d): %w",
			record.DestinationChatID, record.PlatformMessageID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		record.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving delivery record",
			"destination_chat_id", record.DestinationChatID, "error", err)
	}

	s.logger.DebugContext(ctx, "Delivery record saved",
		"id", record.ID, "destination_chat_id", record.DestinationChatID, "platform_message_id", record.PlatformMessageID)
	return nil
}

// LatestDeliveryRecord retrieves the most recent delivery record for a destination.
func (s *sqlxStore) LatestDeliveryRecord(ctx context.Context, destinationChatID int64) (*DeliveryRecord, error) {
	if destinationChatID == 0 {
		return nil, fmt.Errorf("destination_chat_id cannot be zero")
	}

	var record DeliveryRecord
	query := `
        SELECT id, operator_id, destination_chat_id, content_kind, payload, caption, platform_message_id, sent_at, created_at
        FROM delivery_records
        WHERE destination_chat_id = ?
        ORDER BY sent_at DESC, id DESC
        LIMIT 1;
    `
	err := s.db.GetContext(ctx, &record, query, destinationChatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Error fetching latest delivery record",
			"destination_chat_id", destinationChatID, "error", err)
		return nil, fmt.Errorf("failed to fetch latest delivery record for chat %d: %w", destinationChatID, err)
	}
	return &record, nil
}

// UpsertOperatorProfile inserts or updates an operator profile.
func (s *sqlxStore) UpsertOperatorProfile(ctx context.Context, profile *OperatorProfile) error {
	if profile == nil {
		return fmt.Errorf("cannot upsert nil operator profile")
	}
	if profile.UserID == 0 {
		return fmt.Errorf("operator profile must have a non-zero user_id")
	}

	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
        INSERT INTO operator_profiles (user_id, username, first_name, last_name, is_bot, created_at, updated_at)
        VALUES (:user_id, :username, :first_name, :last_name, :is_bot, :created_at, :updated_at)
        ON CONFLICT (user_id) DO UPDATE SET
            username   = excluded.username,
            first_name = excluded.first_name,
            last_name  = excluded.last_name,
            is_bot     = excluded.is_bot,
            updated_at = excluded.updated_at;
    `
	if _, err := s.db.NamedExecContext(ctx, query, profile); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting operator profile", "user_id", profile.UserID, "error", err)
		return fmt.Errorf("failed to upsert operator profile %d: %w", profile.UserID, err)
	}

	s.logger.DebugContext(ctx, "Operator profile upserted", "user_id", profile.UserID)
	return nil
}

// RunSQLMaintenance performs database maintenance: checkpoints the WAL,
// rebuilds the database file, and refreshes query planner statistics.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	statements := []string{
		`PRAGMA wal_checkpoint(TRUNCATE);`,
		`VACUUM;`,
		`ANALYZE;`,
	}

	for _, stmt := range statements {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.ErrorContext(ctx, "SQL maintenance statement failed", "statement", stmt, "error", err)
			return fmt.Errorf("maintenance statement %q failed: %w", stmt, err)
		}
	}

	s.logger.InfoContext(ctx, "SQL maintenance completed")
	return nil
}
