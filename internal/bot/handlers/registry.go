package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/tszkin/gabbot/internal/history"
)

// RegisteredHandler represents a command handler with its routing details.
// It encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands keyed by their slash form.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern string, handler tgbot.HandlerFunc) {
		handlers["/"+pattern] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     handler,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	command("start", NewStartHandler(deps))
	command("help", NewHelpHandler(deps))

	command("summarize", NewSummarizeHandler(deps, history.FullDay))
	command("summarize_morning", NewSummarizeHandler(deps, history.Morning))
	command("summarize_afternoon", NewSummarizeHandler(deps, history.Afternoon))
	command("summarize_night", NewSummarizeHandler(deps, history.Night))
	command("summarize_last_hour", NewSummarizeHandler(deps, history.LastHour))
	command("summarize_last_3_hours", NewSummarizeHandler(deps, history.Last3Hours))
	command("summarize_user", NewSummarizeUserHandler(deps))
	command("golden_quote_king", NewGoldenQuoteHandler(deps))

	command("compliment", NewComplimentHandler(deps))
	command("diu", NewRoastHandler(deps))
	command("love", NewLoveHandler(deps))
	command("apologize", NewApologizeHandler(deps))

	command("countdown", NewCountdownHandler(deps))
	command("ask", NewAskHandler(deps))
	command("image", NewImageHandler(deps))

	return handlers
}
