package handlers

import (
	"context"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/database"
)

// MessageLogger returns a middleware that appends every inbound text message
// to the message log before routing. Logging happens regardless of whether
// the message is a command, a mention, or plain chatter.
func MessageLogger(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if msg := update.Message; msg != nil && msg.From != nil {
				logIncoming(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), deps, msg)
			}

			next(ctx, b, update)
		}
	}
}

// logIncoming persists one inbound message. When every save attempt fails
// the sender gets the store-write error so a silently dropped log does not
// masquerade as a recorded one.
func logIncoming(ctx context.Context, m Messenger, deps HandlerDeps, msg *models.Message) {
	text := messageText(msg)
	if text == "" {
		return
	}

	record := &database.Message{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		UserName:  DisplayName(msg.From),
		Text:      text,
		Timestamp: time.Unix(int64(msg.Date), 0).In(deps.Location),
		ChatTitle: chatTitle(msg.Chat),
	}

	if err := SaveMessageWithRetry(ctx, deps, record, "incoming message"); err != nil {
		log := deps.Logger.With("component", "message_log")
		sendHint(ctx, m, log, msg.Chat.ID, msg.ID, deps.Config.Messages.StoreWriteError)
	}
}
