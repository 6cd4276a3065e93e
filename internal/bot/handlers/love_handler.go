package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/history"
	"github.com/tszkin/gabbot/internal/render"
)

// NewLoveHandler returns the /love handler: a cheesy pickup line for the
// author of the replied-to message, built from what they said today. The
// reply always carries the entertainment disclaimer.
func NewLoveHandler(deps HandlerDeps) bot.HandlerFunc {
	h := loveHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type loveHandler struct {
	deps HandlerDeps
}

func (h loveHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "love")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	target := msg.ReplyToMessage
	if target == nil || target.From == nil {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.NoContentHint)
		return
	}

	targetName := DisplayName(target.From)
	r := history.TodaySoFar(deps.HomeNow())

	log.InfoContext(ctx, "Handling love command", "chat_id", chatID, "target", targetName)

	m.SendTyping(ctx, chatID)
	placeholderID, placeholderErr := m.SendReply(ctx, chatID, target.ID, deps.Config.Messages.Thinking)
	if placeholderErr != nil {
		log.WarnContext(ctx, "Failed to send thinking placeholder", "chat_id", chatID, "error", placeholderErr)
	}

	window, _, err := deps.Window.BuildForUser(ctx, chatID, targetName, r.Start, r.End)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build target window", "chat_id", chatID, "error", err)
		deliverEdited(ctx, m, log, chatID, placeholderID, target.ID, deps.Config.Messages.StoreReadError)
		return
	}

	userPrompt := fmt.Sprintf("目標用戶係 %s，佢今日講過:\n%s", targetName, window)
	if targetText := messageText(target); targetText != "" {
		userPrompt += fmt.Sprintf("\n你回覆緊佢呢句: %s", targetText)
	}
	systemPrompt := render.BaseStyle.Merge(render.LoveStyle).SystemPrompt()

	quote, err := deps.LLMClient.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.ErrorContext(ctx, "Love quote generation failed", "chat_id", chatID, "error", err)
		deliverEdited(ctx, m, log, chatID, placeholderID, target.ID, deps.Config.Messages.LoveFallback)
		return
	}

	deliverEdited(ctx, m, log, chatID, placeholderID, target.ID, render.WithDisclaimer(render.PlainText(quote), render.LoveDisclaimer))
}
