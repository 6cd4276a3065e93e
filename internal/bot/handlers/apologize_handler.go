package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/render"
)

// NewApologizeHandler returns the /apologize handler: a joke apology on the
// sender's behalf, aimed at the replied-to message when one exists. The reply
// always carries the mooncake disclaimer.
func NewApologizeHandler(deps HandlerDeps) bot.HandlerFunc {
	h := apologizeHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type apologizeHandler struct {
	deps HandlerDeps
}

func (h apologizeHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "apologize")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	replyTo := msg.ID

	userPrompt := fmt.Sprintf("幫 %s 道歉", DisplayName(msg.From))
	if target := msg.ReplyToMessage; target != nil && target.From != nil {
		replyTo = target.ID
		userPrompt += fmt.Sprintf("，道歉對象係 %s", DisplayName(target.From))
		if targetText := messageText(target); targetText != "" {
			userPrompt += fmt.Sprintf("，佢講咗: %s", targetText)
		}
	}

	log.InfoContext(ctx, "Handling apologize command", "chat_id", chatID)

	m.SendTyping(ctx, chatID)
	placeholderID, placeholderErr := m.SendReply(ctx, chatID, replyTo, deps.Config.Messages.Thinking)
	if placeholderErr != nil {
		log.WarnContext(ctx, "Failed to send thinking placeholder", "chat_id", chatID, "error", placeholderErr)
	}

	systemPrompt := render.BaseStyle.Merge(render.ApologyStyle).SystemPrompt()

	apology, err := deps.LLMClient.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.ErrorContext(ctx, "Apology generation failed", "chat_id", chatID, "error", err)
		deliverEdited(ctx, m, log, chatID, placeholderID, replyTo, deps.Config.Messages.ApologyFallback)
		return
	}

	deliverEdited(ctx, m, log, chatID, placeholderID, replyTo, render.WithDisclaimer(render.PlainText(apology), render.ApologyDisclaimer))
}
