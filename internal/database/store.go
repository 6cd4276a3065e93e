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

// ErrUnavailable indicates the backing store could not be reached at all,
// as opposed to a query-level failure. Callers surface it as a transient
// user-visible error instead of crashing.
var ErrUnavailable = errors.New("database unavailable")

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new message record.
	SaveMessage(ctx context.Context, message *Message) error

	// GetMessagesInRange retrieves messages for a chat within [start, end),
	// ordered ascending by timestamp.
	GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]MessageRow, error)

	// GetUserMessagesByName retrieves messages for one display name within a
	// chat within [start, end), ordered ascending by timestamp.
	GetUserMessagesByName(ctx context.Context, chatID int64, userName string, start, end time.Time) ([]MessageRow, error)

	// GetDailyUsage returns the usage count for a chat on the given date
	// (formatted YYYY-MM-DD). Missing rows count as zero.
	GetDailyUsage(ctx context.Context, chatID int64, usageDate string) (int, error)

	// IncrementDailyUsage atomically creates or bumps the usage counter for
	// a chat on the given date and returns the new count.
	IncrementDailyUsage(ctx context.Context, chatID int64, usageDate string) (int, error)

	// PruneDailyUsage deletes usage counters with a usage_date strictly
	// before the given date and returns how many rows were removed.
	PruneDailyUsage(ctx context.Context, before string) (int64, error)

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
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SaveMessage inserts a new message record. The message log is append-only;
// a failed insert is reported to the caller, who degrades gracefully.
func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("message must have a non-zero chat_id")
	}
	if message.Text == "" {
		return fmt.Errorf("message must have non-empty text")
	}
	if message.Timestamp.IsZero() {
		return fmt.Errorf("message must have a non-zero timestamp")
	}
	if message.ChatTitle == "" {
		message.ChatTitle = "Private Chat"
	}

	query := `
        INSERT INTO messages (chat_id, user_id, user_name, text, timestamp, chat_title)
        VALUES (:chat_id, :user_id, :user_name, :text, :timestamp, :chat_title);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", message.ChatID, "user_id", message.UserID, "error", err)
		return fmt.Errorf("failed to save message (chat %d, user %d): %w", message.ChatID, message.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		message.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"chat_id", message.ChatID, "user_id", message.UserID, "error", err)
	}

	s.logger.DebugContext(ctx, "Message saved successfully",
		"chat_id", message.ChatID, "user_id", message.UserID, "message_id", message.ID)
	return nil
}

// GetMessagesInRange retrieves messages for a chat within [start, end).
func (s *sqlxStore) GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]MessageRow, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	rows := []MessageRow{}
	query := `
        SELECT user_name, text, timestamp
        FROM messages
        WHERE chat_id = ? AND timestamp >= ? AND timestamp < ?
        ORDER BY timestamp ASC;
    `

	s.logger.DebugContext(ctx, "Fetching messages in range", "chat_id", chatID, "start", start, "end", end)
	err := s.db.SelectContext(ctx, &rows, query, chatID, start, end)
	if err != nil {
		return nil, s.rangeQueryError(ctx, chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched messages in range", "chat_id", chatID, "count", len(rows))
	return rows, nil
}

// GetUserMessagesByName retrieves messages for one display name within a chat
// within [start, end). Commands address users by @handle, so display name is
// the only key available to them.
func (s *sqlxStore) GetUserMessagesByName(ctx context.Context, chatID int64, userName string, start, end time.Time) ([]MessageRow, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if userName == "" {
		return nil, fmt.Errorf("user_name cannot be empty")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	rows := []MessageRow{}
	query := `
        SELECT user_name, text, timestamp
        FROM messages
        WHERE chat_id = ? AND user_name = ? AND timestamp >= ? AND timestamp < ?
        ORDER BY timestamp ASC;
    `

	err := s.db.SelectContext(ctx, &rows, query, chatID, userName, start, end)
	if err != nil {
		return nil, s.rangeQueryError(ctx, chatID, err)
	}

	return rows, nil
}

func (s *sqlxStore) rangeQueryError(ctx context.Context, chatID int64, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching messages",
			"chat_id", chatID, "error", err)
		return err
	case errors.Is(err, sql.ErrConnDone):
		s.logger.ErrorContext(ctx, "Database connection lost while fetching messages", "chat_id", chatID, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		s.logger.ErrorContext(ctx, "Error fetching messages", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to get messages for chat %d: %w", chatID, err)
	}
}

// GetDailyUsage returns the usage count for a chat on the given date.
// A missing row reads as zero usage.
func (s *sqlxStore) GetDailyUsage(ctx context.Context, chatID int64, usageDate string) (int, error) {
	if chatID == 0 {
		return 0, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	var count int
	query := `SELECT usage_count FROM daily_ai_usage WHERE chat_id = ? AND usage_date = ?`

	err := s.db.GetContext(ctx, &count, query, chatID, usageDate)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error reading daily usage", "chat_id", chatID, "usage_date", usageDate, "error", err)
		return 0, fmt.Errorf("failed to read daily usage for chat %d: %w", chatID, err)
	}

	return count, nil
}

// IncrementDailyUsage atomically creates or bumps the usage counter for a chat
// on the given date. The single conditional write avoids lost updates under
// concurrent increments for the same key.
func (s *sqlxStore) IncrementDailyUsage(ctx context.Context, chatID int64, usageDate string) (int, error) {
	if chatID == 0 {
		return 0, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO daily_ai_usage (chat_id, usage_date, usage_count, updated_at)
        VALUES (?, ?, 1, ?)
        ON CONFLICT (chat_id, usage_date)
        DO UPDATE SET usage_count = usage_count + 1, updated_at = excluded.updated_at
        RETURNING usage_count;
    `

	var count int
	err := s.db.GetContext(ctx, &count, query, chatID, usageDate, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error incrementing daily usage", "chat_id", chatID, "usage_date", usageDate, "error", err)
		return 0, fmt.Errorf("failed to increment daily usage for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Incremented daily usage", "chat_id", chatID, "usage_date", usageDate, "usage_count", count)
	return count, nil
}

// PruneDailyUsage deletes usage counters older than the given date. Usage
// rows only matter for the current day; anything older is bookkeeping debris.
func (s *sqlxStore) PruneDailyUsage(ctx context.Context, before string) (int64, error) {
	if before == "" {
		return 0, fmt.Errorf("cutoff date cannot be empty")
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM daily_ai_usage WHERE usage_date < ?`, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning daily usage rows", "before", before, "error", err)
		return 0, fmt.Errorf("failed to prune daily usage rows before %s: %w", before, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not read affected row count after usage prune", "error", err)
		return 0, nil
	}

	s.logger.InfoContext(ctx, "Pruned stale daily usage rows", "before", before, "deleted", deleted)
	return deleted, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
// VACUUM must run outside a transaction in SQLite.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
