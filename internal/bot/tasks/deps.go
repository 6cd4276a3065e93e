// Package tasks implements the bot's scheduled background tasks: task
// definitions, dependencies, and registration.
package tasks

import (
	"log/slog"

	"github.com/tszkin/gabbot/internal/config"
	"github.com/tszkin/gabbot/internal/database"
	"github.com/tszkin/gabbot/internal/llm"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Store     database.Store
	LLMClient llm.Client
	Config    *config.Config
}
