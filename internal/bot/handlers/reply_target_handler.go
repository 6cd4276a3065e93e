package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tszkin/gabbot/internal/render"
)

// replyTargetHandler is the shared flow for commands aimed at the author of a
// replied-to message (/compliment, /diu). The target message decides the
// branch: a photo goes through vision, text through plain generation, and
// neither yields a usage hint without any AI call.
type replyTargetHandler struct {
	deps     HandlerDeps
	name     string
	style    render.Style
	hint     string
	fallback string
	// task phrases the instruction around the target's name and content.
	task func(targetName string) string
}

// NewComplimentHandler returns the /compliment handler.
func NewComplimentHandler(deps HandlerDeps) bot.HandlerFunc {
	h := replyTargetHandler{
		deps:     deps,
		name:     "compliment",
		style:    render.BaseStyle.Merge(render.ComplimentStyle),
		hint:     deps.Config.Messages.ComplimentHint,
		fallback: deps.Config.Messages.GeneralError,
		task: func(targetName string) string {
			return fmt.Sprintf("吹奏 %s", targetName)
		},
	}
	return h.handlerFunc()
}

// NewRoastHandler returns the /diu handler.
func NewRoastHandler(deps HandlerDeps) bot.HandlerFunc {
	h := replyTargetHandler{
		deps:     deps,
		name:     "roast",
		style:    render.BaseStyle.Merge(render.RoastStyle),
		hint:     deps.Config.Messages.RoastHint,
		fallback: deps.Config.Messages.RoastFallback,
		task: func(targetName string) string {
			return fmt.Sprintf("屌 %s", targetName)
		},
	}
	return h.handlerFunc()
}

func (h replyTargetHandler) handlerFunc() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.handle(ctx, NewMessenger(b, h.deps.Config.Telegram.Token, h.deps.Logger), update)
	}
}

func (h replyTargetHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", h.name)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	target := msg.ReplyToMessage
	if target == nil || target.From == nil {
		sendHint(ctx, m, log, chatID, msg.ID, h.hint)
		return
	}

	targetName := DisplayName(target.From)
	targetText := messageText(target)
	hasPhoto := len(target.Photo) > 0

	if targetText == "" && !hasPhoto {
		sendHint(ctx, m, log, chatID, msg.ID, deps.Config.Messages.NoContentHint)
		return
	}

	log.InfoContext(ctx, "Handling reply-target command", "chat_id", chatID, "target", targetName, "has_photo", hasPhoto)

	m.SendTyping(ctx, chatID)
	placeholderID, placeholderErr := m.SendReply(ctx, chatID, target.ID, deps.Config.Messages.Thinking)
	if placeholderErr != nil {
		log.WarnContext(ctx, "Failed to send thinking placeholder", "chat_id", chatID, "error", placeholderErr)
	}

	systemPrompt := h.style.SystemPrompt()

	var reply string
	var err error
	if hasPhoto {
		var data []byte
		var mimeType string
		data, mimeType, err = m.DownloadPhoto(ctx, bestPhotoID(target.Photo))
		if err != nil {
			log.ErrorContext(ctx, "Failed to download target photo", "chat_id", chatID, "error", err)
			deliverEdited(ctx, m, log, chatID, placeholderID, target.ID, deps.Config.Messages.ImageFetchError)
			return
		}
		userPrompt := fmt.Sprintf("%s，佢post咗呢張相", h.task(targetName))
		if targetText != "" {
			userPrompt += fmt.Sprintf("，仲講咗: %s", targetText)
		}
		reply, err = deps.LLMClient.GenerateVision(ctx, systemPrompt, userPrompt, mimeType, data)
	} else {
		userPrompt := fmt.Sprintf("%s，佢講咗: %s", h.task(targetName), targetText)
		reply, err = deps.LLMClient.Generate(ctx, systemPrompt, userPrompt)
	}

	if err != nil {
		log.ErrorContext(ctx, "Reply-target generation failed", "chat_id", chatID, "has_photo", hasPhoto, "error", err)
		fallback := h.fallback
		if hasPhoto {
			fallback = deps.Config.Messages.ImageLookError
		}
		deliverEdited(ctx, m, log, chatID, placeholderID, target.ID, fallback)
		return
	}

	deliverEdited(ctx, m, log, chatID, placeholderID, target.ID, render.PlainText(reply))
}
