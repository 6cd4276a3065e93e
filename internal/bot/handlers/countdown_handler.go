package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/render"
)

// NewCountdownHandler returns the /countdown handler: it computes the days
// remaining until a date and has the AI embellish the sentence. When the
// embellishment fails the plain sentence is still sent.
func NewCountdownHandler(deps HandlerDeps) bot.HandlerFunc {
	h := countdownHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type countdownHandler struct {
	deps HandlerDeps
}

func (h countdownHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "countdown")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	dateArg, event, ok := parseCountdownArgs(msg.Text)
	if !ok {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.CountdownUsage)
		return
	}

	target, err := time.ParseInLocation("2006-01-02", dateArg, deps.Location)
	if err != nil {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.CountdownUsage)
		return
	}

	now := deps.HomeNow()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, deps.Location)
	days := int(target.Sub(today).Hours() / 24)
	if days < 0 {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.CountdownFailure)
		return
	}

	var sentence string
	if days == 0 {
		sentence = fmt.Sprintf("今日就係%s喇！", event)
	} else {
		sentence = fmt.Sprintf("距離%s仲有%d日", event, days)
	}

	log.InfoContext(ctx, "Handling countdown command", "chat_id", chatID, "event", event, "days", days)

	m.SendTyping(ctx, chatID)
	systemPrompt := render.BaseStyle.Merge(render.CountdownStyle).SystemPrompt()

	embellished, err := deps.LLMClient.Generate(ctx, systemPrompt, sentence)
	if err != nil {
		log.WarnContext(ctx, "Countdown embellishment failed, sending plain sentence", "chat_id", chatID, "error", err)
		embellished = sentence
	} else {
		embellished = render.PlainText(embellished)
	}

	if _, err := m.SendReply(ctx, chatID, msg.ID, embellished); err != nil {
		log.ErrorContext(ctx, "Failed to send countdown reply", "chat_id", chatID, "error", err)
	}
}

// parseCountdownArgs splits "/countdown 2026-12-25 聖誕節" into date and event.
func parseCountdownArgs(text string) (date, event string, ok bool) {
	args := commandArgs(text)
	if args == "" {
		return "", "", false
	}
	date, event, found := strings.Cut(args, " ")
	if !found || strings.TrimSpace(event) == "" {
		return "", "", false
	}
	return date, strings.TrimSpace(event), true
}
