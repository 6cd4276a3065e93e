package handlers

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tszkin/gabbot/internal/config"
	"github.com/tszkin/gabbot/internal/llm"
	"github.com/tszkin/gabbot/internal/render"
)

func newComplimentForTest(deps HandlerDeps) replyTargetHandler {
	return replyTargetHandler{
		deps:     deps,
		name:     "compliment",
		style:    render.BaseStyle.Merge(render.ComplimentStyle),
		hint:     deps.Config.Messages.ComplimentHint,
		fallback: deps.Config.Messages.GeneralError,
		task: func(targetName string) string {
			return fmt.Sprintf("吹奏 %s", targetName)
		},
	}
}

func complimentUpdate(target *models.Message) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:             12,
		Chat:           models.Chat{ID: 42},
		From:           &models.User{ID: 1, FirstName: "Alice"},
		Text:           "/compliment",
		ReplyToMessage: target,
	}}
}

func TestReplyTargetWithoutReplyShowsHint(t *testing.T) {
	deps := newTestDeps(newChatFakeStore(), &fakeLLM{}, 20)
	h := newComplimentForTest(deps)
	m := &fakeMessenger{}

	h.handle(context.Background(), m, complimentUpdate(nil))

	require.Len(t, m.sent, 1)
	assert.Equal(t, config.DefaultMessages.ComplimentHint, m.sent[0].text)
}

func TestReplyTargetTextSuccess(t *testing.T) {
	client := &fakeLLM{reply: "勁到痹"}
	deps := newTestDeps(newChatFakeStore(), client, 20)
	h := newComplimentForTest(deps)
	m := &fakeMessenger{}

	target := &models.Message{ID: 5, From: &models.User{ID: 2, FirstName: "Bob"}, Text: "我整咗個cake"}
	h.handle(context.Background(), m, complimentUpdate(target))

	assert.Equal(t, "勁到痹", m.lastEdit(t).text)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "吹奏 Bob")
	assert.Contains(t, client.prompts[0], "我整咗個cake")
}

func TestReplyTargetPhotoFailureShowsImageLookError(t *testing.T) {
	client := &fakeLLM{err: fmt.Errorf("vision: %w", llm.ErrEmptyResponse)}
	deps := newTestDeps(newChatFakeStore(), client, 20)
	h := newComplimentForTest(deps)
	m := &fakeMessenger{photoData: []byte{0xff, 0xd8}}

	target := &models.Message{
		ID:    5,
		From:  &models.User{ID: 2, FirstName: "Bob"},
		Photo: []models.PhotoSize{{FileID: "p1", Width: 100, Height: 100}},
	}
	h.handle(context.Background(), m, complimentUpdate(target))

	assert.Equal(t, 1, client.visionCalls)
	assert.Equal(t, config.DefaultMessages.ImageLookError, m.lastEdit(t).text,
		"a vision failure gets the image-specific sentence")
}

func TestReplyTargetTextFailureKeepsFallback(t *testing.T) {
	client := &fakeLLM{err: fmt.Errorf("generate: %w", llm.ErrEmptyResponse)}
	deps := newTestDeps(newChatFakeStore(), client, 20)
	h := newComplimentForTest(deps)
	m := &fakeMessenger{}

	target := &models.Message{ID: 5, From: &models.User{ID: 2, FirstName: "Bob"}, Text: "hello"}
	h.handle(context.Background(), m, complimentUpdate(target))

	assert.Equal(t, config.DefaultMessages.GeneralError, m.lastEdit(t).text)
}
