package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalyzer/support/backend/internal/model/chat"
	"github.com/finalyzer/support/backend/internal/model/profile"
	profileService "github.com/finalyzer/support/backend/internal/service/profile"
)

func TestFormatAI(t *testing.T) {
	out := string(FormatAI("Visit https://finalyzer.com for **details**\n\n- one\n- two"))

	assert.Contains(t, out, `href="https://finalyzer.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "<strong>details</strong>")
	assert.Contains(t, out, "<li>one</li>")
}

func TestFormatAIDropsRawHTML(t *testing.T) {
	out := string(FormatAI("hello <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
}

func TestFormatUserEscapes(t *testing.T) {
	out := string(FormatUser("<b>hi</b>\nthere"))
	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt;<br>there", out)
}

func TestMessages(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC)
	views := Messages([]chat.Message{
		chat.Welcome("Ada", now),
		chat.NewMessage(chat.SenderUser, "hi", now),
	})

	require.Len(t, views, 2)
	assert.False(t, views[0].IsUser)
	assert.True(t, views[1].IsUser)
	assert.Equal(t, "2:05 PM", views[1].Time)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))

	long := strings.Repeat("é", 60)
	got := Truncate(long, 50)
	assert.Equal(t, strings.Repeat("é", 50)+"...", got)
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	created := now.Add(-2 * time.Hour)
	question := strings.Repeat("a", 70)

	summaries := Summarize([]chat.Session{
		{
			ID:        "s1",
			CreatedAt: created,
			Messages: []chat.Message{
				chat.Welcome("", created),
				chat.NewMessage(chat.SenderUser, question, created),
			},
		},
		{ID: "s2", CreatedAt: created},
	}, now)

	require.Len(t, summaries, 2)
	assert.Equal(t, "s1", summaries[0].ID)
	assert.Equal(t, strings.Repeat("a", 50)+"...", summaries[0].Preview)
	assert.Equal(t, 2, summaries[0].MessageCount)
	assert.Equal(t, "2 hours ago", summaries[0].Age)
	assert.Empty(t, summaries[1].Preview)
}

func TestThemeToggle(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeDark, Theme("").Toggle())
}

func TestPagesRender(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pages.Form(&buf, FormPage{Theme: ThemeDark, Error: NoticeIncomplete}))
	assert.Contains(t, buf.String(), `data-theme="dark"`)
	assert.Contains(t, buf.String(), NoticeIncomplete)
	assert.Contains(t, buf.String(), `name="organization"`)

	buf.Reset()
	now := time.Now()
	require.NoError(t, pages.Chat(&buf, ChatPage{
		Theme:       ThemeLight,
		Profile:     profile.UserProfile{Name: "Ada"},
		Messages:    Messages([]chat.Message{chat.NewMessage(chat.SenderUser, "<b>x</b>", now)}),
		Suggestions: []string{"What are your key features?"},
		ShowHistory: true,
	}))
	out := buf.String()
	assert.Contains(t, out, "&lt;b&gt;x&lt;/b&gt;")
	assert.Contains(t, out, "What are your key features?")
	assert.Contains(t, out, "No chat history found")

	buf.Reset()
	require.NoError(t, pages.NotFound(&buf, NotFoundPage{Theme: ThemeLight, Path: "/nope"}))
	assert.Contains(t, buf.String(), "/nope")
	assert.Contains(t, buf.String(), "404")
}

func TestSubmitNotice(t *testing.T) {
	assert.Equal(t, NoticeIncomplete, SubmitNotice(profile.ErrIncomplete))
	assert.Equal(t, NoticeSubmitFailed, SubmitNotice(profileService.ErrSignupFailed))
	assert.Equal(t, NoticeRetry, SubmitNotice(profileService.ErrSignupRejected))
	assert.Equal(t, NoticeRetry, SubmitNotice(profileService.ErrSaveFailed))
	assert.Equal(t, NoticeRetry, SubmitNotice(errors.New("unexpected")))
}
