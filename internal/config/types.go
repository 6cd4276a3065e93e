// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and built-in defaults.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration for all components of the bot.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	AI        AIConfig        `mapstructure:"ai"`
	Search    SearchConfig    `mapstructure:"search"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Quota     QuotaConfig     `mapstructure:"quota"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram transport settings. BotInfo is populated at
// startup from GetMe and is not read from the config file.
type TelegramConfig struct {
	Token   string       `mapstructure:"token" validate:"required"`
	BotInfo *models.User `mapstructure:"-"`
}

// AIConfig holds LLM provider settings.
type AIConfig struct {
	APIKey            string        `mapstructure:"api_key"             validate:"required"`
	Model             string        `mapstructure:"model"               validate:"required"`
	ImageModel        string        `mapstructure:"image_model"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s,max=10m"`
	VisionTimeout     time.Duration `mapstructure:"vision_timeout"      validate:"min=1s,max=1m"`
	MaxToolIterations int           `mapstructure:"max_tool_iterations" validate:"min=1,max=10"`
}

// SearchConfig holds the web-search collaborator settings. The search tool is
// only offered to the model when an API key is configured.
type SearchConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=1m"`
}

// DatabaseConfig holds the SQLite storage settings.
type DatabaseConfig struct {
	Path         string `mapstructure:"path"           validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"min=1,max=20"`
}

// QuotaConfig controls the per-chat daily AI usage gate.
//
// FailOpen documents the availability-over-consistency policy: if the usage
// read fails, the gate lets the request through rather than blocking chat on
// an infrastructure hiccup. The quota is a soft throttle, not billing.
type QuotaConfig struct {
	DailyLimit     int  `mapstructure:"daily_limit"      validate:"min=1"`
	TimezoneOffset int  `mapstructure:"timezone_offset"  validate:"min=-12,max=14"`
	FailOpen       bool `mapstructure:"fail_open"`
}

// TaskConfig defines one scheduled task entry.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig holds cron schedules keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig holds every fixed user-facing sentence the bot sends. All of
// them have Cantonese defaults and can be overridden from config.yaml.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"`
	Help             string `mapstructure:"help"`
	Waiting          string `mapstructure:"waiting"`
	Thinking         string `mapstructure:"thinking"`
	GeneralError     string `mapstructure:"general_error"`
	TimeoutError     string `mapstructure:"timeout_error"`
	EmptyReply       string `mapstructure:"empty_reply"`
	StoreReadError   string `mapstructure:"store_read_error"`
	StoreWriteError  string `mapstructure:"store_write_error"`
	QuotaExhausted   string `mapstructure:"quota_exhausted"`
	EmptyWindow      string `mapstructure:"empty_window"`
	NoMessages       string `mapstructure:"no_messages"`
	ComplimentHint   string `mapstructure:"compliment_hint"`
	RoastHint        string `mapstructure:"roast_hint"`
	NoContentHint    string `mapstructure:"no_content_hint"`
	SummarizeUsage   string `mapstructure:"summarize_usage"`
	AskUsage         string `mapstructure:"ask_usage"`
	ImageUsage       string `mapstructure:"image_usage"`
	CountdownUsage   string `mapstructure:"countdown_usage"`
	ToolLoopCap      string `mapstructure:"tool_loop_cap"`
	ImageFetchError  string `mapstructure:"image_fetch_error"`
	ImageLookError   string `mapstructure:"image_look_error"`
	LoveFallback     string `mapstructure:"love_fallback"`
	ApologyFallback  string `mapstructure:"apology_fallback"`
	RoastFallback    string `mapstructure:"roast_fallback"`
	CountdownFailure string `mapstructure:"countdown_failure"`
}
