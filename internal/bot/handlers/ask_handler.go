package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/render"
)

// NewAskHandler returns the /ask handler: question answering with the
// web-search tool loop available.
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	h := askHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "ask")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	question := commandArgs(msg.Text)
	if question == "" {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.AskUsage)
		return
	}

	log.InfoContext(ctx, "Handling ask command", "chat_id", chatID)

	runEdited(ctx, m, deps, log, chatID, msg.ID, func(ctx context.Context) (string, error) {
		systemPrompt := render.BaseStyle.Merge(render.AnswerStyle).SystemPrompt()
		return deps.LLMClient.GenerateWithTools(ctx, systemPrompt, question)
	})
}
