package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	photoDownloadTimeout = 30 * time.Second
	sendMessageTimeout   = 10 * time.Second
)

// Messenger is the narrow slice of the Telegram API the handlers use.
// Handlers talk to it instead of *bot.Bot directly so the flows can be
// exercised with a fake in tests.
type Messenger interface {
	// SendReply sends text as a reply to the given message and returns the
	// sent message ID.
	SendReply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)

	// SendMessage sends plain text to the chat and returns the sent
	// message ID.
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)

	// EditMessage replaces the text of a previously sent message.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error

	// SendTyping shows the typing indicator. Best-effort.
	SendTyping(ctx context.Context, chatID int64)

	// SendPhoto sends image bytes as a photo reply with a caption.
	SendPhoto(ctx context.Context, chatID int64, replyTo int, data []byte, caption string) error

	// DownloadPhoto fetches a Telegram file by ID and returns its bytes
	// and detected MIME type.
	DownloadPhoto(ctx context.Context, fileID string) ([]byte, string, error)
}

type tgMessenger struct {
	b      *bot.Bot
	token  string
	logger *slog.Logger
}

// NewMessenger wraps a *bot.Bot in the Messenger interface.
func NewMessenger(b *bot.Bot, token string, logger *slog.Logger) Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &tgMessenger{b: b, token: token, logger: logger.With("component", "messenger")}
}

func (m *tgMessenger) SendReply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if replyTo > 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
	}

	sent, err := m.b.SendMessage(sendCtx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to send reply to chat %d: %w", chatID, err)
	}
	return sent.ID, nil
}

func (m *tgMessenger) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	return m.SendReply(ctx, chatID, 0, text)
}

func (m *tgMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	_, err := m.b.EditMessageText(sendCtx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *tgMessenger) SendTyping(ctx context.Context, chatID int64) {
	if _, err := m.b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}); err != nil {
		m.logger.DebugContext(ctx, "Failed to send typing action", "chat_id", chatID, "error", err)
	}
}

func (m *tgMessenger) SendPhoto(ctx context.Context, chatID int64, replyTo int, data []byte, caption string) error {
	params := &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "image.png", Data: bytes.NewReader(data)},
		Caption: caption,
	}
	if replyTo > 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
	}

	if _, err := m.b.SendPhoto(ctx, params); err != nil {
		return fmt.Errorf("failed to send photo to chat %d: %w", chatID, err)
	}
	return nil
}

// DownloadPhoto downloads a photo from Telegram's file API using the provided
// file ID. It returns the photo data, detected MIME type, and any error.
func (m *tgMessenger) DownloadPhoto(ctx context.Context, fileID string) (data []byte, mimeType string, err error) {
	if m.token == "" {
		return nil, "", fmt.Errorf("empty token provided for photo download")
	}
	if fileID == "" {
		return nil, "", fmt.Errorf("empty fileID provided for photo download")
	}
	if ctx.Err() != nil {
		return nil, "", fmt.Errorf("context cancelled before file download: %w", ctx.Err())
	}

	downloadCtx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	fileObj, err := m.b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file info from Telegram: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, "", fmt.Errorf("empty file path returned from Telegram for file ID %s", fileID)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", m.token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create HTTP request for file download: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close download response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("unexpected status code %d downloading file: %s", resp.StatusCode, string(bodyBytes))
	}

	const maxDownloadSize = 10 * 1024 * 1024
	data, err = io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("received empty file data for file ID %s", fileID)
	}

	mimeType = http.DetectContentType(data)
	return data, mimeType, nil
}
