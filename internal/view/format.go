package view

import (
	"html"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/finalyzer/support/backend/internal/model/chat"
)

const mdExtensions = parser.CommonExtensions | parser.Autolink | parser.HardLineBreak

const mdFlags = mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.NoopenerLinks |
	mdhtml.NoreferrerLinks | mdhtml.SkipHTML

// FormatAI renders an AI reply: links become clickable, **bold** and bullet
// lists are honoured, raw HTML is dropped.
func FormatAI(text string) template.HTML {
	p := parser.NewWithExtensions(mdExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdFlags})
	return template.HTML(markdown.ToHTML([]byte(text), p, renderer))
}

// FormatUser escapes user text and keeps its line breaks.
func FormatUser(text string) template.HTML {
	return template.HTML(strings.ReplaceAll(html.EscapeString(text), "\n", "<br>"))
}

// MessageView is a message ready for the chat template.
type MessageView struct {
	ID     string
	IsUser bool
	HTML   template.HTML
	Time   string
}

// Messages prepares a message list for display.
func Messages(messages []chat.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		v := MessageView{
			ID:     msg.ID,
			IsUser: msg.Sender == chat.SenderUser,
			Time:   msg.Timestamp.Format("3:04 PM"),
		}
		if v.IsUser {
			v.HTML = FormatUser(msg.Text)
		} else {
			v.HTML = FormatAI(msg.Text)
		}
		views = append(views, v)
	}
	return views
}
