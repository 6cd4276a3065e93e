package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/history"
	"github.com/tszkin/gabbot/internal/render"
)

// NewSummarizeHandler returns a handler that summarizes the chat over the
// given range preset. The /summarize command family differs only in preset.
func NewSummarizeHandler(deps HandlerDeps, preset func(time.Time) history.Range) bot.HandlerFunc {
	h := summarizeHandler{deps: deps, preset: preset}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type summarizeHandler struct {
	deps   HandlerDeps
	preset func(time.Time) history.Range
}

func (h summarizeHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "summarize")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	r := h.preset(deps.HomeNow())
	startStr, endStr := r.FormatSpan()

	log.InfoContext(ctx, "Handling summarize command", "chat_id", chatID, "label", r.Label, "start", startStr, "end", endStr)

	runEdited(ctx, m, deps, log, chatID, msg.ID, func(ctx context.Context) (string, error) {
		window, count, err := deps.Window.Build(ctx, chatID, r.Start, r.End, msg.Text)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return fmt.Sprintf(deps.Config.Messages.NoMessages, r.Label), nil
		}

		userPrompt := fmt.Sprintf("(%s - %s)嘅對話紀錄:\n%s", startStr, endStr, window)
		systemPrompt := render.BaseStyle.Merge(render.SummarizeStyle).SystemPrompt()

		summary, err := deps.LLMClient.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("📋 %s總結 (%s - %s)\n\n%s", r.Label, startStr, endStr, summary), nil
	})
}
