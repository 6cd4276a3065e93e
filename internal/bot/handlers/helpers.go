package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/config"
	"github.com/tszkin/gabbot/internal/database"
	"github.com/tszkin/gabbot/internal/llm"
	"github.com/tszkin/gabbot/internal/render"
)

const dbSaveTimeout = 5 * time.Second

// unknownUserName is the fixed placeholder for senders with no visible name.
const unknownUserName = "唔知邊條粉蛋"

// DisplayName renders a user the way the message log and prompts refer to
// them: first name, last name appended with a space.
func DisplayName(u *models.User) string {
	if u == nil {
		return unknownUserName
	}
	name := strings.TrimSpace(u.FirstName)
	if u.LastName != "" {
		name = strings.TrimSpace(name + " " + u.LastName)
	}
	if name == "" {
		return unknownUserName
	}
	return name
}

func chatTitle(chat models.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	return "Private Chat"
}

// SaveMessageWithRetry attempts to save a message with retry logic. The
// returned error reports that all retries ran out; callers decide whether
// that is worth telling the user about.
func SaveMessageWithRetry(ctx context.Context, deps HandlerDeps, msg *database.Message, msgType string) error {
	log := deps.Logger.With("component", "message_log")
	const maxRetries = 3
	var err error

	for i := range [maxRetries]struct{}{} {
		if ctx.Err() != nil {
			log.WarnContext(ctx, fmt.Sprintf("Context cancelled, aborting %s save attempts", msgType),
				"error", ctx.Err(), "chat_id", msg.ChatID, "attempt", i+1)
			return ctx.Err()
		}

		dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
		err = deps.Store.SaveMessage(dbCtx, msg)
		cancel()

		if err == nil {
			log.DebugContext(ctx, fmt.Sprintf("%s saved successfully", msgType), "db_message_id", msg.ID, "chat_id", msg.ChatID)
			return nil
		}

		log.ErrorContext(ctx, fmt.Sprintf("Failed to save %s, retrying", msgType), "error", err, "chat_id", msg.ChatID, "attempt", i+1)

		time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
	}

	log.ErrorContext(ctx, fmt.Sprintf("Failed to save %s after %d retries", msgType, maxRetries), "last_error", err, "chat_id", msg.ChatID)
	return fmt.Errorf("failed to save %s after %d retries: %w", msgType, maxRetries, err)
}

// userFacingError maps a generation failure to the fixed sentence shown in
// chat. Raw provider errors never reach users.
func userFacingError(err error, msgs config.MessagesConfig) string {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return msgs.TimeoutError
	case errors.Is(err, llm.ErrToolLimit):
		return msgs.ToolLoopCap
	case errors.Is(err, llm.ErrEmptyResponse):
		return msgs.EmptyReply
	case errors.Is(err, database.ErrUnavailable):
		return msgs.StoreReadError
	default:
		return msgs.GeneralError
	}
}

// commandArgs returns the text after the command token, trimmed.
// "/ask@gabbot  who?" yields "who?".
func commandArgs(text string) string {
	_, rest, found := strings.Cut(text, " ")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}

// bestPhotoID picks the highest-resolution photo size.
func bestPhotoID(photos []models.PhotoSize) string {
	bestQuality := 0
	fileID := ""
	for _, p := range photos {
		if q := p.Width * p.Height; q > bestQuality {
			bestQuality = q
			fileID = p.FileID
		}
	}
	return fileID
}

// runEdited implements the shared slow-reply flow: show typing, post the
// waiting placeholder as a reply, run produce, then swap the placeholder for
// the outcome. Failures in produce surface as the mapped fixed sentence.
func runEdited(ctx context.Context, m Messenger, deps HandlerDeps, log *slog.Logger, chatID int64, replyTo int, produce func(context.Context) (string, error)) {
	m.SendTyping(ctx, chatID)

	placeholderID, placeholderErr := m.SendReply(ctx, chatID, replyTo, deps.Config.Messages.Waiting)
	if placeholderErr != nil {
		log.WarnContext(ctx, "Failed to send waiting placeholder", "chat_id", chatID, "error", placeholderErr)
	}

	text, err := produce(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Generation failed", "chat_id", chatID, "error", err)
		text = userFacingError(err, deps.Config.Messages)
	} else {
		text = render.PlainText(text)
	}

	deliverEdited(ctx, m, log, chatID, placeholderID, replyTo, text)
}

// deliverEdited edits the placeholder into the final text, falling back to a
// fresh reply when there is no placeholder or the edit fails.
func deliverEdited(ctx context.Context, m Messenger, log *slog.Logger, chatID int64, placeholderID, replyTo int, text string) {
	if placeholderID > 0 {
		err := m.EditMessage(ctx, chatID, placeholderID, text)
		if err == nil {
			return
		}
		log.WarnContext(ctx, "Failed to edit placeholder, sending fresh reply", "chat_id", chatID, "error", err)
	}
	if _, err := m.SendReply(ctx, chatID, replyTo, text); err != nil {
		log.ErrorContext(ctx, "Failed to deliver reply", "chat_id", chatID, "error", err)
	}
}

// sendHint sends a fixed usage hint as a reply.
func sendHint(ctx context.Context, m Messenger, log *slog.Logger, chatID int64, replyTo int, hint string) {
	if _, err := m.SendReply(ctx, chatID, replyTo, hint); err != nil {
		log.ErrorContext(ctx, "Failed to send usage hint", "chat_id", chatID, "error", err)
	}
}
