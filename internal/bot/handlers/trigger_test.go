package handlers

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

const (
	testBotID       = int64(777)
	testBotUsername = "gabbot"
)

func botReply() *models.Message {
	return &models.Message{From: &models.User{ID: testBotID, FirstName: "Gab"}}
}

func TestEvaluateTrigger(t *testing.T) {
	tests := []struct {
		name string
		msg  *models.Message
		want Trigger
	}{
		{"nil message", nil, TriggerNone},
		{"plain text", &models.Message{Text: "早晨"}, TriggerNone},
		{
			"slash command",
			&models.Message{Text: "/summarize", Entities: []models.MessageEntity{
				{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: 10},
			}},
			TriggerCommand,
		},
		{
			"slash prefix without entity",
			&models.Message{Text: "/ask 天氣點"},
			TriggerCommand,
		},
		{
			"command containing the bot handle stays a command",
			&models.Message{Text: "/ask@gabbot 天氣點", Entities: []models.MessageEntity{
				{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: 11},
			}},
			TriggerCommand,
		},
		{
			"mention entity",
			&models.Message{Text: "@gabbot 點睇", Entities: []models.MessageEntity{
				{Type: models.MessageEntityTypeMention, Offset: 0, Length: 7},
			}},
			TriggerMention,
		},
		{
			"bare username word without entity",
			&models.Message{Text: "問下 gabbot 啦"},
			TriggerMention,
		},
		{
			"reply to the bot",
			&models.Message{Text: "係咩", ReplyToMessage: botReply()},
			TriggerMention,
		},
		{
			"reply to someone else",
			&models.Message{Text: "係咩", ReplyToMessage: &models.Message{From: &models.User{ID: 5}}},
			TriggerNone,
		},
		{
			"mention in photo caption",
			&models.Message{Caption: "@gabbot 呢張係咩", Photo: []models.PhotoSize{{FileID: "f"}}},
			TriggerMention,
		},
		{
			"someone else's handle",
			&models.Message{Text: "@otherbot 點睇"},
			TriggerNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateTrigger(tt.msg, testBotID, testBotUsername))
		})
	}
}

func TestEvaluateTriggerEntityOffsetsAreUTF16(t *testing.T) {
	// Two CJK runes occupy two UTF-16 units but six bytes, so the entity
	// offset only lines up after unit-to-byte conversion. No whitespace
	// around the handle means the bare-word fallback cannot catch this.
	msg := &models.Message{Text: "早晨@gabbot", Entities: []models.MessageEntity{
		{Type: models.MessageEntityTypeMention, Offset: 2, Length: 7},
	}}
	assert.Equal(t, TriggerMention, EvaluateTrigger(msg, testBotID, testBotUsername))

	// An emoji is a surrogate pair: two units, four bytes.
	emoji := &models.Message{Text: "🎉@gabbot好嘢", Entities: []models.MessageEntity{
		{Type: models.MessageEntityTypeMention, Offset: 2, Length: 7},
	}}
	assert.Equal(t, TriggerMention, EvaluateTrigger(emoji, testBotID, testBotUsername))

	other := &models.Message{Text: "早晨@otherbot", Entities: []models.MessageEntity{
		{Type: models.MessageEntityTypeMention, Offset: 2, Length: 9},
	}}
	assert.Equal(t, TriggerNone, EvaluateTrigger(other, testBotID, testBotUsername))
}

func TestUTF16Slice(t *testing.T) {
	assert.Equal(t, "@gabbot", utf16Slice("早晨@gabbot", 2, 7))
	assert.Equal(t, "@gabbot", utf16Slice("🎉@gabbot", 2, 7))
	assert.Equal(t, "早晨", utf16Slice("早晨@gabbot", 0, 2))
	assert.Equal(t, "abc", utf16Slice("abc", 0, 3))
	assert.Equal(t, "", utf16Slice("short", 10, 3), "offset past the end")
	assert.Equal(t, "", utf16Slice("short", -1, 3))
	assert.Equal(t, "", utf16Slice("short", 0, 0))
}

func TestEvaluateTriggerWithoutUsername(t *testing.T) {
	msg := &models.Message{Text: "@gabbot 點睇"}
	assert.Equal(t, TriggerNone, EvaluateTrigger(msg, testBotID, ""),
		"no username known yet means no mention matching")
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "a", messageText(&models.Message{Text: "a"}))
	assert.Equal(t, "b", messageText(&models.Message{Caption: "b"}))
	assert.Equal(t, "a b", messageText(&models.Message{Text: "a", Caption: "b"}))
}

func TestStripBotHandle(t *testing.T) {
	assert.Equal(t, "點睇", StripBotHandle("@gabbot 點睇", "gabbot"))
	assert.Equal(t, "點睇", StripBotHandle("點睇 @gabbot", "gabbot"))
	assert.Equal(t, "冇handle", StripBotHandle("  冇handle ", "gabbot"))
	assert.Equal(t, "keep @gabbot", StripBotHandle("keep @gabbot", ""))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, unknownUserName, DisplayName(nil))
	assert.Equal(t, unknownUserName, DisplayName(&models.User{}))
	assert.Equal(t, "陳大文", DisplayName(&models.User{FirstName: "陳大文"}))
	assert.Equal(t, "John Doe", DisplayName(&models.User{FirstName: "John", LastName: "Doe"}))
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, "", commandArgs("/ask"))
	assert.Equal(t, "who?", commandArgs("/ask who?"))
	assert.Equal(t, "who?", commandArgs("/ask@gabbot  who? "))
}

func TestParseCountdownArgs(t *testing.T) {
	date, event, ok := parseCountdownArgs("/countdown 2026-12-25 聖誕節")
	assert.True(t, ok)
	assert.Equal(t, "2026-12-25", date)
	assert.Equal(t, "聖誕節", event)

	_, _, ok = parseCountdownArgs("/countdown")
	assert.False(t, ok)

	_, _, ok = parseCountdownArgs("/countdown 2026-12-25")
	assert.False(t, ok, "a date without an event name is incomplete")
}

func TestBestPhotoID(t *testing.T) {
	photos := []models.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "large", Width: 800, Height: 600},
		{FileID: "medium", Width: 320, Height: 240},
	}
	assert.Equal(t, "large", bestPhotoID(photos))
	assert.Equal(t, "", bestPhotoID(nil))
}
