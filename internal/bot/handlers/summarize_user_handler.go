package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/history"
	"github.com/tszkin/gabbot/internal/render"
)

// NewSummarizeUserHandler returns the /summarize_user handler: it summarizes
// what one user said today, addressed by display name.
func NewSummarizeUserHandler(deps HandlerDeps) bot.HandlerFunc {
	h := summarizeUserHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type summarizeUserHandler struct {
	deps HandlerDeps
}

func (h summarizeUserHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "summarize_user")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	target := strings.TrimPrefix(commandArgs(msg.Text), "@")
	if target == "" {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.SummarizeUsage)
		return
	}

	r := history.TodaySoFar(deps.HomeNow())
	log.InfoContext(ctx, "Handling summarize_user command", "chat_id", chatID, "target", target)

	runEdited(ctx, m, deps, log, chatID, msg.ID, func(ctx context.Context) (string, error) {
		window, count, err := deps.Window.BuildForUser(ctx, chatID, target, r.Start, r.End)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return fmt.Sprintf(deps.Config.Messages.NoMessages, "@"+target), nil
		}

		userPrompt := fmt.Sprintf("%s今日講過嘅嘢:\n%s", target, window)
		systemPrompt := render.BaseStyle.Merge(render.SummarizeStyle).SystemPrompt()

		summary, err := deps.LLMClient.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("📋 %s 今日發言總結\n\n%s", target, summary), nil
	})
}
