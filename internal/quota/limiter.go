// Package quota enforces the per-chat daily AI usage ceiling.
//
// The gate is deliberately soft: Check and Increment are separate steps, so
// two concurrent requests can both pass a check before either increments.
// The increment itself is a single atomic upsert, so counts are never lost;
// the worst case is a cosmetic overshoot by the number of in-flight requests.
package quota

import (
	"context"
	"log/slog"
	"time"

	"github.com/tszkin/gabbot/internal/database"
)

const usageDateLayout = "2006-01-02"

// Limiter tracks per-chat daily AI usage against a configurable ceiling.
type Limiter struct {
	store    database.Store
	logger   *slog.Logger
	limit    int
	failOpen bool
	loc      *time.Location
	now      func() time.Time
}

// NewLimiter creates a limiter with the given daily ceiling. Dates roll over
// at midnight in loc, the bot's home time zone. When failOpen is set, a
// failed usage read lets the request through instead of blocking chat on an
// infrastructure hiccup.
func NewLimiter(store database.Store, logger *slog.Logger, limit int, failOpen bool, loc *time.Location) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		store:    store,
		logger:   logger.With("component", "quota_limiter"),
		limit:    limit,
		failOpen: failOpen,
		loc:      loc,
		now:      time.Now,
	}
}

// Limit returns the configured daily ceiling.
func (l *Limiter) Limit() int {
	return l.limit
}

// Today returns the current usage date key in the home time zone.
func (l *Limiter) Today() string {
	return l.now().In(l.loc).Format(usageDateLayout)
}

// Check reports whether the chat still has quota today and how much it has
// used. On a storage error the limiter fails open (if configured) and
// reports zero usage; the quota is an availability throttle, not billing.
func (l *Limiter) Check(ctx context.Context, chatID int64) (bool, int) {
	used, err := l.store.GetDailyUsage(ctx, chatID, l.Today())
	if err != nil {
		l.logger.WarnContext(ctx, "Usage read failed, applying fail-open policy",
			"chat_id", chatID, "fail_open", l.failOpen, "error", err)
		return l.failOpen, 0
	}
	return used < l.limit, used
}

// Increment bumps today's counter for the chat. Usage bookkeeping is
// best-effort: failures are logged and reported as false, and the caller
// still sends the reply.
func (l *Limiter) Increment(ctx context.Context, chatID int64) bool {
	count, err := l.store.IncrementDailyUsage(ctx, chatID, l.Today())
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to increment daily usage", "chat_id", chatID, "error", err)
		return false
	}
	l.logger.DebugContext(ctx, "Daily usage incremented", "chat_id", chatID, "usage_count", count, "limit", l.limit)
	return true
}

// WithClock overrides the limiter's time source. Used by tests to pin the
// usage date.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}
