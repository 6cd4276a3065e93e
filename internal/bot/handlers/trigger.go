package handlers

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"
)

// Trigger classifies how an inbound message addresses the bot.
type Trigger int

const (
	// TriggerNone means the message does not address the bot; it is only
	// logged.
	TriggerNone Trigger = iota
	// TriggerCommand means the message starts with a slash command.
	// Commands are routed by the registered handlers and never fall
	// through to the mention path, even when the text also contains the
	// bot's handle.
	TriggerCommand
	// TriggerMention means the message mentions the bot or replies to one
	// of its messages. This is the quota-gated conversational path.
	TriggerMention
)

// EvaluateTrigger classifies a message. Precedence is command over mention
// over none.
func EvaluateTrigger(msg *models.Message, botID int64, botUsername string) Trigger {
	if msg == nil {
		return TriggerNone
	}

	if isCommand(msg) {
		return TriggerCommand
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.ID == botID {
		return TriggerMention
	}

	if botUsername != "" && mentionsBot(msg, botUsername) {
		return TriggerMention
	}

	return TriggerNone
}

func isCommand(msg *models.Message) bool {
	for _, e := range msg.Entities {
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			return true
		}
	}
	return strings.HasPrefix(msg.Text, "/")
}

func mentionsBot(msg *models.Message, botUsername string) bool {
	mention := "@" + strings.ToLower(botUsername)

	// Entities index into the text or the caption, never the joined form.
	if entityMentions(msg.Text, msg.Entities, mention) ||
		entityMentions(msg.Caption, msg.CaptionEntities, mention) {
		return true
	}

	// Forwarded or edited captions do not always carry entities, so also
	// match the bare username word.
	for _, w := range strings.Fields(strings.ToLower(messageText(msg))) {
		stripped := strings.TrimFunc(w, unicode.IsPunct)
		if stripped == strings.ToLower(botUsername) {
			return true
		}
	}

	return false
}

func entityMentions(text string, entities []models.MessageEntity, mention string) bool {
	for _, e := range entities {
		if e.Type != models.MessageEntityTypeMention {
			continue
		}
		if strings.ToLower(utf16Slice(text, e.Offset, e.Length)) == mention {
			return true
		}
	}
	return false
}

// utf16Slice extracts the substring covering [offset, offset+length).
// Telegram entity offsets count UTF-16 code units, not bytes, so any
// preceding CJK or emoji text shifts the byte position past the offset.
func utf16Slice(s string, offset, length int) string {
	if offset < 0 || length <= 0 {
		return ""
	}
	start := -1
	units := 0
	for i, r := range s {
		if units == offset && start < 0 {
			start = i
		}
		units += utf16.RuneLen(r)
		if units >= offset+length {
			if start < 0 {
				return ""
			}
			return s[start : i+utf8.RuneLen(r)]
		}
	}
	return ""
}

// messageText returns the message's text or caption, joined when both exist.
func messageText(msg *models.Message) string {
	switch {
	case msg.Text != "" && msg.Caption != "":
		return msg.Text + " " + msg.Caption
	case msg.Text != "":
		return msg.Text
	default:
		return msg.Caption
	}
}

// StripBotHandle removes the bot's @handle from the text so prompts read as
// plain conversation.
func StripBotHandle(text, botUsername string) string {
	if botUsername == "" {
		return strings.TrimSpace(text)
	}
	stripped := strings.ReplaceAll(text, "@"+botUsername, "")
	return strings.TrimSpace(stripped)
}
