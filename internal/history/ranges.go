// Package history extracts time-bounded slices of the message log and
// renders them into conversation windows for the AI.
package history

import (
	"fmt"
	"time"
)

// Range is a half-open time interval [Start, End) with the label used in
// user-facing replies.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

// Zone returns the bot's home time zone for the given UTC offset in hours.
// All range boundaries and usage dates are computed in this zone.
func Zone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// LastHour covers the past hour up to now.
func LastHour(now time.Time) Range {
	return Range{Start: now.Add(-time.Hour), End: now, Label: "過去一小時"}
}

// Last3Hours covers the past three hours up to now.
func Last3Hours(now time.Time) Range {
	return Range{Start: now.Add(-3 * time.Hour), End: now, Label: "過去三小時"}
}

// FullDay covers 00:00 yesterday up to now.
func FullDay(now time.Time) Range {
	start := startOfDay(now).AddDate(0, 0, -1)
	return Range{Start: start, End: now, Label: "全日"}
}

// TodaySoFar covers 00:00 today up to now.
func TodaySoFar(now time.Time) Range {
	return Range{Start: startOfDay(now), End: now, Label: "今日"}
}

// Morning covers 06:00-12:00 today, the end clamped to now.
func Morning(now time.Time) Range {
	day := startOfDay(now)
	r := Range{Start: day.Add(6 * time.Hour), End: day.Add(12 * time.Hour), Label: "今日早晨 (06:00-12:00)"}
	return clamp(r, now)
}

// Afternoon covers 12:00-18:00 today, the end clamped to now.
func Afternoon(now time.Time) Range {
	day := startOfDay(now)
	r := Range{Start: day.Add(12 * time.Hour), End: day.Add(18 * time.Hour), Label: "今日下午 (12:00-18:00)"}
	return clamp(r, now)
}

// Night covers 18:00 today up to next midnight, the end clamped to now.
func Night(now time.Time) Range {
	day := startOfDay(now)
	r := Range{Start: day.Add(18 * time.Hour), End: day.AddDate(0, 0, 1), Label: "今晚 (18:00-05:59)"}
	return clamp(r, now)
}

// FormatSpan renders the range boundaries the way summaries present them.
func (r Range) FormatSpan() (string, string) {
	return r.Start.Format("2006-01-02 15:04"), r.End.Format("2006-01-02 15:04")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func clamp(r Range, now time.Time) Range {
	if now.Before(r.End) {
		r.End = now
	}
	return r
}
