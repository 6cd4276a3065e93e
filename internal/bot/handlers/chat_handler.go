package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/database"
	"github.com/tszkin/gabbot/internal/history"
	"github.com/tszkin/gabbot/internal/render"
)

// NewChatHandler returns the default handler: it receives every update no
// registered command matched and runs the quota-gated conversation flow when
// the bot is mentioned or replied to. Plain messages are already persisted by
// the logging middleware and need nothing further.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	h := chatHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	text := messageText(msg)
	if text == "" && len(msg.Photo) == 0 {
		return
	}

	trigger := EvaluateTrigger(msg, deps.botID(), deps.botUsername())
	if trigger != TriggerMention {
		return
	}

	chatID := msg.Chat.ID
	log.InfoContext(ctx, "Handling mention", "chat_id", chatID, "message_id", msg.ID, "has_photo", len(msg.Photo) > 0)

	allowed, used := deps.Limiter.Check(ctx, chatID)
	limit := deps.Limiter.Limit()
	if !allowed {
		log.InfoContext(ctx, "Daily quota exhausted", "chat_id", chatID, "used", used, "limit", limit)
		sendHint(ctx, m, log, chatID, msg.ID, fmt.Sprintf(deps.Config.Messages.QuotaExhausted, used, limit))
		return
	}

	m.SendTyping(ctx, chatID)
	placeholderID, placeholderErr := m.SendReply(ctx, chatID, msg.ID, deps.Config.Messages.Waiting)
	if placeholderErr != nil {
		log.WarnContext(ctx, "Failed to send waiting placeholder", "chat_id", chatID, "error", placeholderErr)
	}

	// The triggering message is excluded from the window; it is appended
	// explicitly as the latest turn instead.
	r := history.LastHour(deps.HomeNow())
	window, _, err := deps.Window.Build(ctx, chatID, r.Start, r.End, text)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build conversation window", "chat_id", chatID, "error", err)
		deliverEdited(ctx, m, log, chatID, placeholderID, msg.ID, deps.Config.Messages.StoreReadError)
		return
	}

	question := StripBotHandle(text, deps.botUsername())
	userPrompt := fmt.Sprintf("對話紀錄:\n%s\n\n%s: %s", window, DisplayName(msg.From), question)
	systemPrompt := render.BaseStyle.Merge(render.ChatStyle).SystemPrompt()

	var reply string
	if len(msg.Photo) > 0 {
		reply, err = h.generateWithPhoto(ctx, m, systemPrompt, userPrompt, msg.Photo)
	} else {
		reply, err = deps.LLMClient.Generate(ctx, systemPrompt, userPrompt)
	}
	if err != nil {
		// A failed call never consumes quota.
		log.ErrorContext(ctx, "Mention reply generation failed", "chat_id", chatID, "error", err)
		deliverEdited(ctx, m, log, chatID, placeholderID, msg.ID, userFacingError(err, deps.Config.Messages))
		return
	}

	deps.Limiter.Increment(ctx, chatID)
	reply = render.PlainText(reply)
	final := render.WithQuota(reply, used+1, limit)

	deliverEdited(ctx, m, log, chatID, placeholderID, msg.ID, final)
	h.saveBotReply(ctx, msg, reply)
}

func (h chatHandler) generateWithPhoto(ctx context.Context, m Messenger, systemPrompt, userPrompt string, photos []models.PhotoSize) (string, error) {
	data, mimeType, err := m.DownloadPhoto(ctx, bestPhotoID(photos))
	if err != nil {
		return "", fmt.Errorf("failed to download mention photo: %w", err)
	}
	return h.deps.LLMClient.GenerateVision(ctx, systemPrompt, userPrompt, mimeType, data)
}

// saveBotReply appends the bot's own reply to the message log so follow-up
// windows carry both sides of the conversation.
func (h chatHandler) saveBotReply(ctx context.Context, trigger *models.Message, text string) {
	info := h.deps.Config.Telegram.BotInfo
	if info == nil || info.ID == 0 {
		return
	}
	record := &database.Message{
		ChatID:    trigger.Chat.ID,
		UserID:    info.ID,
		UserName:  DisplayName(info),
		Text:      text,
		Timestamp: time.Now().In(h.deps.Location),
		ChatTitle: chatTitle(trigger.Chat),
	}
	// Best-effort: a reply the user already saw is not worth an error message.
	_ = SaveMessageWithRetry(ctx, h.deps, record, "bot reply")
}
