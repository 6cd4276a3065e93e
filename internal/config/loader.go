package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml file (optional)
// 3. BOT_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets have no defaults, so Unmarshal only sees them when the keys
	// are bound explicitly.
	for _, key := range []string{"telegram.token", "ai.api_key", "search.api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// Allow a missing config file; env vars and defaults still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Scheduler.Tasks == nil {
		cfg.Scheduler.Tasks = DefaultSchedulerTasks
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.max_open_conns", DefaultMaxOpenConns)

	v.SetDefault("ai.model", DefaultAIModel)
	v.SetDefault("ai.image_model", DefaultAIImageModel)
	v.SetDefault("ai.temperature", DefaultAITemperature)
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.vision_timeout", DefaultVisionTimeout)
	v.SetDefault("ai.max_tool_iterations", DefaultMaxToolIterations)

	v.SetDefault("search.base_url", DefaultSearchBaseURL)
	v.SetDefault("search.timeout", DefaultSearchTimeout)

	v.SetDefault("quota.daily_limit", DefaultDailyLimit)
	v.SetDefault("quota.timezone_offset", DefaultTimezoneOffset)
	v.SetDefault("quota.fail_open", DefaultQuotaFailOpen)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.waiting", DefaultMessages.Waiting)
	v.SetDefault("messages.thinking", DefaultMessages.Thinking)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.timeout_error", DefaultMessages.TimeoutError)
	v.SetDefault("messages.empty_reply", DefaultMessages.EmptyReply)
	v.SetDefault("messages.store_read_error", DefaultMessages.StoreReadError)
	v.SetDefault("messages.store_write_error", DefaultMessages.StoreWriteError)
	v.SetDefault("messages.quota_exhausted", DefaultMessages.QuotaExhausted)
	v.SetDefault("messages.empty_window", DefaultMessages.EmptyWindow)
	v.SetDefault("messages.no_messages", DefaultMessages.NoMessages)
	v.SetDefault("messages.compliment_hint", DefaultMessages.ComplimentHint)
	v.SetDefault("messages.roast_hint", DefaultMessages.RoastHint)
	v.SetDefault("messages.no_content_hint", DefaultMessages.NoContentHint)
	v.SetDefault("messages.summarize_usage", DefaultMessages.SummarizeUsage)
	v.SetDefault("messages.ask_usage", DefaultMessages.AskUsage)
	v.SetDefault("messages.image_usage", DefaultMessages.ImageUsage)
	v.SetDefault("messages.countdown_usage", DefaultMessages.CountdownUsage)
	v.SetDefault("messages.tool_loop_cap", DefaultMessages.ToolLoopCap)
	v.SetDefault("messages.image_fetch_error", DefaultMessages.ImageFetchError)
	v.SetDefault("messages.image_look_error", DefaultMessages.ImageLookError)
	v.SetDefault("messages.love_fallback", DefaultMessages.LoveFallback)
	v.SetDefault("messages.apology_fallback", DefaultMessages.ApologyFallback)
	v.SetDefault("messages.roast_fallback", DefaultMessages.RoastFallback)
	v.SetDefault("messages.countdown_failure", DefaultMessages.CountdownFailure)
}
