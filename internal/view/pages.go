package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/finalyzer/support/backend/internal/model/profile"
)

//go:embed templates/*.html
var templateFS embed.FS

// Theme is the colour scheme toggled from the header.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle flips the theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// FormPage feeds form.html.
type FormPage struct {
	Theme   Theme
	Error   string
	Profile profile.UserProfile
}

// ChatPage feeds chat.html.
type ChatPage struct {
	Theme       Theme
	Profile     profile.UserProfile
	Messages    []MessageView
	Suggestions []string
	History     []SessionSummary
	ShowHistory bool
	Awaiting    bool
	Error       string
}

// NotFoundPage feeds notfound.html.
type NotFoundPage struct {
	Theme Theme
	Path  string
}

// Pages renders the HTML shell.
type Pages struct {
	tmpl *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Pages{tmpl: tmpl}, nil
}

func (p *Pages) Form(w io.Writer, data FormPage) error {
	return p.tmpl.ExecuteTemplate(w, "form.html", data)
}

func (p *Pages) Chat(w io.Writer, data ChatPage) error {
	return p.tmpl.ExecuteTemplate(w, "chat.html", data)
}

func (p *Pages) NotFound(w io.Writer, data NotFoundPage) error {
	return p.tmpl.ExecuteTemplate(w, "notfound.html", data)
}
