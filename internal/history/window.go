package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tszkin/gabbot/internal/database"
)

// Builder renders message-log slices into a single text block for the AI.
type Builder struct {
	store       database.Store
	logger      *slog.Logger
	placeholder string
}

// NewBuilder creates a window builder. placeholder is the fixed sentence used
// for an empty window; prompts must never be sent empty.
func NewBuilder(store database.Store, logger *slog.Logger, placeholder string) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:       store,
		logger:      logger.With("component", "window_builder"),
		placeholder: placeholder,
	}
}

// Build fetches the chat's messages in [start, end) and renders them as
// "name: text" lines in ascending time order. Rows whose raw text equals
// excludeText are dropped, so a triggering message is not echoed back into
// its own context. Returns the rendered window and the number of rows kept;
// an empty window renders as the placeholder sentence.
func (b *Builder) Build(ctx context.Context, chatID int64, start, end time.Time, excludeText string) (string, int, error) {
	rows, err := b.store.GetMessagesInRange(ctx, chatID, start, end)
	if err != nil {
		return "", 0, fmt.Errorf("failed to build window for chat %d: %w", chatID, err)
	}
	return b.render(ctx, chatID, rows, excludeText)
}

// BuildForUser is Build restricted to one display name within the chat.
func (b *Builder) BuildForUser(ctx context.Context, chatID int64, userName string, start, end time.Time) (string, int, error) {
	rows, err := b.store.GetUserMessagesByName(ctx, chatID, userName, start, end)
	if err != nil {
		return "", 0, fmt.Errorf("failed to build user window for chat %d: %w", chatID, err)
	}
	return b.render(ctx, chatID, rows, "")
}

func (b *Builder) render(ctx context.Context, chatID int64, rows []database.MessageRow, excludeText string) (string, int, error) {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if excludeText != "" && row.Text == excludeText {
			continue
		}
		lines = append(lines, row.UserName+": "+row.Text)
	}

	if len(lines) == 0 {
		b.logger.DebugContext(ctx, "Empty conversation window, using placeholder", "chat_id", chatID)
		return b.placeholder, 0, nil
	}

	return strings.Join(lines, "\n"), len(lines), nil
}
