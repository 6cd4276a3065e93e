package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tszkin/gabbot/internal/config"
	"github.com/tszkin/gabbot/internal/database"
	"github.com/tszkin/gabbot/internal/history"
	"github.com/tszkin/gabbot/internal/llm"
	"github.com/tszkin/gabbot/internal/quota"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type sentMsg struct {
	chatID  int64
	replyTo int
	text    string
}

type editMsg struct {
	chatID    int64
	messageID int
	text      string
}

type fakeMessenger struct {
	sent      []sentMsg
	edits     []editMsg
	typing    int
	photoData []byte
	photoErr  error
	nextID    int
}

func (f *fakeMessenger) SendReply(_ context.Context, chatID int64, replyTo int, text string) (int, error) {
	f.nextID++
	f.sent = append(f.sent, sentMsg{chatID, replyTo, text})
	return f.nextID, nil
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	return f.SendReply(ctx, chatID, 0, text)
}

func (f *fakeMessenger) EditMessage(_ context.Context, chatID int64, messageID int, text string) error {
	f.edits = append(f.edits, editMsg{chatID, messageID, text})
	return nil
}

func (f *fakeMessenger) SendTyping(context.Context, int64) { f.typing++ }

func (f *fakeMessenger) SendPhoto(context.Context, int64, int, []byte, string) error { return nil }

func (f *fakeMessenger) DownloadPhoto(context.Context, string) ([]byte, string, error) {
	return f.photoData, "image/jpeg", f.photoErr
}

func (f *fakeMessenger) lastEdit(t *testing.T) editMsg {
	t.Helper()
	require.NotEmpty(t, f.edits)
	return f.edits[len(f.edits)-1]
}

type chatFakeStore struct {
	database.Store

	usage   map[string]int
	rows    []database.MessageRow
	saved   []*database.Message
	saveErr error
}

func newChatFakeStore() *chatFakeStore {
	return &chatFakeStore{usage: make(map[string]int)}
}

func usageKey(chatID int64, date string) string {
	return fmt.Sprintf("%d/%s", chatID, date)
}

func (f *chatFakeStore) GetDailyUsage(_ context.Context, chatID int64, date string) (int, error) {
	return f.usage[usageKey(chatID, date)], nil
}

func (f *chatFakeStore) IncrementDailyUsage(_ context.Context, chatID int64, date string) (int, error) {
	f.usage[usageKey(chatID, date)]++
	return f.usage[usageKey(chatID, date)], nil
}

func (f *chatFakeStore) GetMessagesInRange(context.Context, int64, time.Time, time.Time) ([]database.MessageRow, error) {
	return f.rows, nil
}

func (f *chatFakeStore) SaveMessage(_ context.Context, m *database.Message) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, m)
	return nil
}

type fakeLLM struct {
	reply string
	err   error

	prompts       []string
	systemPrompts []string
	visionCalls   int
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.systemPrompts = append(f.systemPrompts, systemPrompt)
	f.prompts = append(f.prompts, userPrompt)
	return f.reply, f.err
}

func (f *fakeLLM) GenerateWithTools(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.Generate(ctx, systemPrompt, userPrompt)
}

func (f *fakeLLM) GenerateVision(ctx context.Context, systemPrompt, userPrompt, _ string, _ []byte) (string, error) {
	f.visionCalls++
	return f.Generate(ctx, systemPrompt, userPrompt)
}

func (f *fakeLLM) GenerateImage(context.Context, string) ([]byte, error) {
	return nil, f.err
}

var _ llm.Client = (*fakeLLM)(nil)

func newTestDeps(store *chatFakeStore, client llm.Client, limit int) HandlerDeps {
	loc := history.Zone(8)
	clock := func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, loc) }

	cfg := &config.Config{Messages: config.DefaultMessages}
	cfg.Telegram.Token = "test-token"
	cfg.Telegram.BotInfo = &models.User{ID: testBotID, Username: testBotUsername, FirstName: "Gab"}

	return HandlerDeps{
		Logger:    discard,
		Config:    cfg,
		Store:     store,
		LLMClient: client,
		Limiter:   quota.NewLimiter(store, discard, limit, true, loc).WithClock(clock),
		Window:    history.NewBuilder(store, discard, config.DefaultMessages.EmptyWindow),
		Location:  loc,
		Clock:     clock,
	}
}

func mentionUpdate(text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   10,
		Chat: models.Chat{ID: 42, Title: "吹水群"},
		From: &models.User{ID: 1, FirstName: "Alice"},
		Text: text,
	}}
}

func TestChatHandlerIgnoresPlainMessages(t *testing.T) {
	store := newChatFakeStore()
	client := &fakeLLM{reply: "should not be used"}
	h := chatHandler{newTestDeps(store, client, 20)}
	m := &fakeMessenger{}

	h.handle(context.Background(), m, mentionUpdate("早晨大家"))

	assert.Empty(t, m.sent)
	assert.Empty(t, client.prompts)
	assert.Empty(t, store.usage)
}

func TestChatHandlerQuotaExhausted(t *testing.T) {
	store := newChatFakeStore()
	store.usage[usageKey(42, "2026-03-10")] = 2
	client := &fakeLLM{reply: "never"}
	h := chatHandler{newTestDeps(store, client, 2)}
	m := &fakeMessenger{}

	h.handle(context.Background(), m, mentionUpdate("@gabbot 仲得唔得"))

	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].text, "2/2")
	assert.Empty(t, client.prompts, "no model call once the quota is gone")
	assert.Equal(t, 2, store.usage[usageKey(42, "2026-03-10")], "an exhausted check never increments")
}

func TestChatHandlerSuccess(t *testing.T) {
	store := newChatFakeStore()
	store.rows = []database.MessageRow{
		{UserName: "Bob", Text: "今晚食咩好"},
		{UserName: "Alice", Text: "@gabbot 你話呢"},
	}
	client := &fakeLLM{reply: "食糖水啦"}
	h := chatHandler{newTestDeps(store, client, 20)}
	m := &fakeMessenger{}

	h.handle(context.Background(), m, mentionUpdate("@gabbot 你話呢"))

	// Placeholder first, then edited into the final reply.
	require.Len(t, m.sent, 1)
	assert.Equal(t, config.DefaultMessages.Waiting, m.sent[0].text)
	assert.Equal(t, 10, m.sent[0].replyTo)

	final := m.lastEdit(t)
	assert.Contains(t, final.text, "食糖水啦")
	assert.Contains(t, final.text, "1/20")

	// Prompt carries the window minus the triggering message, plus the
	// question as the latest turn with the handle stripped.
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Bob: 今晚食咩好")
	assert.NotContains(t, client.prompts[0], "Alice: @gabbot 你話呢")
	assert.Contains(t, client.prompts[0], "Alice: 你話呢")

	assert.Equal(t, 1, store.usage[usageKey(42, "2026-03-10")])

	// The bot's own reply lands in the message log without the quota suffix.
	require.Len(t, store.saved, 1)
	assert.Equal(t, testBotID, store.saved[0].UserID)
	assert.Equal(t, "食糖水啦", store.saved[0].Text)
}

func TestChatHandlerFailureDoesNotConsumeQuota(t *testing.T) {
	store := newChatFakeStore()
	client := &fakeLLM{err: fmt.Errorf("generate: %w", llm.ErrTimeout)}
	h := chatHandler{newTestDeps(store, client, 20)}
	m := &fakeMessenger{}

	h.handle(context.Background(), m, mentionUpdate("@gabbot 你好"))

	assert.Equal(t, config.DefaultMessages.TimeoutError, m.lastEdit(t).text)
	assert.Empty(t, store.usage, "a failed call never consumes quota")
	assert.Empty(t, store.saved, "no bot reply is logged on failure")
}

func TestChatHandlerEmptyResponseMessage(t *testing.T) {
	store := newChatFakeStore()
	client := &fakeLLM{err: fmt.Errorf("generate: %w", llm.ErrEmptyResponse)}
	h := chatHandler{newTestDeps(store, client, 20)}
	m := &fakeMessenger{}

	h.handle(context.Background(), m, mentionUpdate("@gabbot 你好"))

	assert.Equal(t, config.DefaultMessages.EmptyReply, m.lastEdit(t).text)
}

func TestChatHandlerReplyToBotCountsAsMention(t *testing.T) {
	store := newChatFakeStore()
	client := &fakeLLM{reply: "繼續傾"}
	h := chatHandler{newTestDeps(store, client, 20)}
	m := &fakeMessenger{}

	update := mentionUpdate("咁然後呢")
	update.Message.ReplyToMessage = botReply()
	h.handle(context.Background(), m, update)

	assert.Contains(t, m.lastEdit(t).text, "繼續傾")
	assert.Equal(t, 1, store.usage[usageKey(42, "2026-03-10")])
}

func TestChatHandlerPhotoMentionUsesVision(t *testing.T) {
	store := newChatFakeStore()
	client := &fakeLLM{reply: "呢張係貓"}
	h := chatHandler{newTestDeps(store, client, 20)}
	m := &fakeMessenger{photoData: []byte{0xff, 0xd8}}

	update := &models.Update{Message: &models.Message{
		ID:      11,
		Chat:    models.Chat{ID: 42},
		From:    &models.User{ID: 1, FirstName: "Alice"},
		Caption: "@gabbot 睇下呢張",
		Photo:   []models.PhotoSize{{FileID: "f1", Width: 800, Height: 600}},
	}}
	h.handle(context.Background(), m, update)

	assert.Equal(t, 1, client.visionCalls)
	assert.Contains(t, m.lastEdit(t).text, "呢張係貓")
	assert.Equal(t, 1, store.usage[usageKey(42, "2026-03-10")])
}
