// Package handlers implements the Telegram-facing layer: trigger evaluation,
// command handlers, and the message-logging middleware.
package handlers

import (
	"log/slog"
	"time"

	"github.com/tszkin/gabbot/internal/config"
	"github.com/tszkin/gabbot/internal/database"
	"github.com/tszkin/gabbot/internal/history"
	"github.com/tszkin/gabbot/internal/llm"
	"github.com/tszkin/gabbot/internal/quota"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	LLMClient llm.Client
	Limiter   *quota.Limiter
	Window    *history.Builder

	// Location is the bot's home time zone; all range presets and usage
	// dates are computed in it.
	Location *time.Location

	// Clock overrides the time source in tests. Nil means time.Now.
	Clock func() time.Time
}

// HomeNow returns the current time in the bot's home time zone.
func (d HandlerDeps) HomeNow() time.Time {
	now := time.Now
	if d.Clock != nil {
		now = d.Clock
	}
	return now().In(d.Location)
}

func (d HandlerDeps) botID() int64 {
	if d.Config.Telegram.BotInfo == nil {
		return 0
	}
	return d.Config.Telegram.BotInfo.ID
}

func (d HandlerDeps) botUsername() string {
	if d.Config.Telegram.BotInfo == nil {
		return ""
	}
	return d.Config.Telegram.BotInfo.Username
}
