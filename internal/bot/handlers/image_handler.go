package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewImageHandler returns the /image handler: it generates an image for the
// prompt and sends it back as a photo.
func NewImageHandler(deps HandlerDeps) bot.HandlerFunc {
	h := imageHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, deps.Config.Telegram.Token, deps.Logger), update)
	}
}

type imageHandler struct {
	deps HandlerDeps
}

func (h imageHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "image")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	prompt := commandArgs(msg.Text)
	if prompt == "" {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.ImageUsage)
		return
	}

	log.InfoContext(ctx, "Handling image command", "chat_id", chatID)

	m.SendTyping(ctx, chatID)
	placeholderID, placeholderErr := m.SendReply(ctx, chatID, msg.ID, deps.Config.Messages.Waiting)
	if placeholderErr != nil {
		log.WarnContext(ctx, "Failed to send waiting placeholder", "chat_id", chatID, "error", placeholderErr)
	}

	data, err := deps.LLMClient.GenerateImage(ctx, prompt)
	if err != nil {
		log.ErrorContext(ctx, "Image generation failed", "chat_id", chatID, "error", err)
		deliverEdited(ctx, m, log, chatID, placeholderID, msg.ID, userFacingError(err, deps.Config.Messages))
		return
	}

	if err := m.SendPhoto(ctx, chatID, msg.ID, data, prompt); err != nil {
		log.ErrorContext(ctx, "Failed to send generated photo", "chat_id", chatID, "error", err)
		deliverEdited(ctx, m, log, chatID, placeholderID, msg.ID, deps.Config.Messages.GeneralError)
		return
	}

	// The placeholder has served its purpose; replace it with a short done
	// marker rather than deleting, which keeps the flow append-only.
	if placeholderID > 0 {
		if err := m.EditMessage(ctx, chatID, placeholderID, "🎨 "+prompt); err != nil {
			log.DebugContext(ctx, "Failed to finalize image placeholder", "chat_id", chatID, "error", err)
		}
	}
}
