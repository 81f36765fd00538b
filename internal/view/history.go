package view

import (
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/finalyzer/support/backend/internal/model/chat"
)

const previewRunes = 50

// SessionSummary is one row of the history list.
type SessionSummary struct {
	ID           string    `json:"id"`
	Preview      string    `json:"preview"`
	Label        string    `json:"label"`
	Age          string    `json:"age"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summarize keeps the order of sessions; callers sort first.
func Summarize(sessions []chat.Session, now time.Time) []SessionSummary {
	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		preview := ""
		if msg, ok := session.FirstUserMessage(); ok {
			preview = Truncate(msg.Text, previewRunes)
		}
		summaries = append(summaries, SessionSummary{
			ID:           session.ID,
			Preview:      preview,
			Label:        session.CreatedAt.Local().Format("Jan 2, 2006 at 3:04 PM"),
			Age:          humanize.RelTime(session.CreatedAt, now, "ago", "from now"),
			MessageCount: len(session.Messages),
			CreatedAt:    session.CreatedAt,
		})
	}
	return summaries
}

// Truncate cuts text to n runes and marks the cut with "...".
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
