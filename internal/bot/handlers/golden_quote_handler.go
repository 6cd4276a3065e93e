package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/history"
	"github.com/tszkin/gabbot/internal/render"
)

// NewGoldenQuoteHandler returns the /golden_quote_king handler: it crowns the
// author of today's best line.
func NewGoldenQuoteHandler(deps HandlerDeps) bot.HandlerFunc {
	h := goldenQuoteHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type goldenQuoteHandler struct {
	deps HandlerDeps
}

func (h goldenQuoteHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "golden_quote")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	r := history.TodaySoFar(deps.HomeNow())

	log.InfoContext(ctx, "Handling golden_quote_king command", "chat_id", chatID)

	runEdited(ctx, m, deps, log, chatID, msg.ID, func(ctx context.Context) (string, error) {
		window, count, err := deps.Window.Build(ctx, chatID, r.Start, r.End, msg.Text)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return fmt.Sprintf(deps.Config.Messages.NoMessages, r.Label), nil
		}

		userPrompt := fmt.Sprintf("今日嘅對話紀錄:\n%s", window)
		systemPrompt := render.BaseStyle.Merge(render.GoldenQuoteStyle).SystemPrompt()

		verdict, err := deps.LLMClient.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return "", err
		}
		return "👑 今日金句王\n\n" + verdict, nil
	})
}
