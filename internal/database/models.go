package database

import (
	"time"
)

// Message represents one logged utterance from a Telegram chat.
// Rows are append-only; handlers only read them back through range queries.
type Message struct {
	ID        uint      `db:"id"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	UserName  string    `db:"user_name"`
	Text      string    `db:"text"`
	Timestamp time.Time `db:"timestamp"`
	ChatTitle string    `db:"chat_title"`
}

// MessageRow is the projection returned by range queries, the minimum a
// conversation window needs.
type MessageRow struct {
	UserName  string    `db:"user_name"`
	Text      string    `db:"text"`
	Timestamp time.Time `db:"timestamp"`
}

// DailyUsage tracks consumed AI quota for one chat on one calendar day
// (home time zone). The row is created lazily on the first increment.
type DailyUsage struct {
	ChatID     int64     `db:"chat_id"`
	UsageDate  string    `db:"usage_date"`
	UsageCount int       `db:"usage_count"`
	UpdatedAt  time.Time `db:"updated_at"`
}
