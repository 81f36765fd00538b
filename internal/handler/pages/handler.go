package pages

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	profileHandler "github.com/finalyzer/support/backend/internal/handler/profile"
	"github.com/finalyzer/support/backend/internal/middleware"
	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/model/suggestion"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	profileService "github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/internal/view"
)

const themeCookie = "theme"

// Handler serves the server-rendered pages.
type Handler struct {
	pages       *view.Pages
	chatSvc     *chatService.Service
	onboarding  *profileService.Onboarding
	renderers   *typing.Registry
	suggestions suggestion.Store
	logger      logrus.FieldLogger
	now         func() time.Time
}

// New creates a page handler.
func New(pages *view.Pages, chatSvc *chatService.Service, onboarding *profileService.Onboarding, renderers *typing.Registry, suggestions suggestion.Store, logger logrus.FieldLogger) *Handler {
	return &Handler{
		pages:       pages,
		chatSvc:     chatSvc,
		onboarding:  onboarding,
		renderers:   renderers,
		suggestions: suggestions,
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterRoutes registers the page routes; chat pages need a profile.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleForm)
	r.Post("/", h.handleSubmit)
	r.Post("/theme", h.handleTheme)

	r.Group(func(chat chi.Router) {
		chat.Use(middleware.RequireProfile(h.chatSvc, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}))
		chat.Get("/chat", h.handleChat)
		chat.Post("/chat/send", h.handleSend)
		chat.Post("/chat/reset", h.handleReset)
		chat.Post("/chat/sessions/{sessionID}", h.handleLoad)
		chat.Post("/chat/logout", h.handleLogout)
	})
}

// NotFound renders the 404 page for unmatched paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.logger.WithField("path", r.URL.Path).Warn("404: route not found")
	h.render(w, http.StatusNotFound, func(buf *bytes.Buffer) error {
		return h.pages.NotFound(buf, view.NotFoundPage{Theme: themeOf(r), Path: r.URL.Path})
	})
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	if h.chatSvc.HasProfile(r.Context(), middleware.VisitorID(r.Context())) {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}
	h.renderForm(w, r, http.StatusOK, view.FormPage{})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, view.FormPage{Error: view.NoticeIncomplete})
		return
	}

	submitted := profile.UserProfile{
		Name:         r.PostForm.Get("name"),
		Email:        r.PostForm.Get("email"),
		Industry:     r.PostForm.Get("industry"),
		Organization: r.PostForm.Get("organization"),
	}

	visitor := middleware.VisitorID(r.Context())
	if _, err := h.onboarding.Submit(r.Context(), h.chatSvc.Profiles(visitor), submitted); err != nil {
		status := profileHandler.SubmitStatus(err)
		h.renderForm(w, r, status, view.FormPage{Error: view.SubmitNotice(err), Profile: submitted})
		return
	}

	h.chatSvc.Forget(visitor)
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	h.renderChat(w, r, http.StatusOK, "")
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	pipeline := h.chatSvc.Pipeline(middleware.VisitorID(r.Context()))
	_, err := pipeline.Send(r.Context(), r.PostForm.Get("message"))
	switch {
	case errors.Is(err, chatService.ErrExchangeInFlight):
		h.renderChat(w, r, http.StatusConflict, err.Error())
		return
	case err != nil && !errors.Is(err, chatService.ErrEmptyMessage):
		h.renderChat(w, r, http.StatusInternalServerError, view.NoticeRetry)
		return
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	h.renderers.For(visitor).Stop()
	h.chatSvc.Pipeline(visitor).Reset(r.Context())
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	if _, err := h.chatSvc.Pipeline(visitor).LoadSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.NotFound(w, r)
		return
	}
	h.renderers.For(visitor).Stop()
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	h.renderers.Remove(visitor)
	if err := h.chatSvc.Logout(r.Context(), visitor); err != nil {
		h.logger.WithError(err).WithField("visitor", visitor).Error("failed to clear profile")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeOf(r).Toggle()
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(next),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, page view.FormPage) {
	page.Theme = themeOf(r)
	h.render(w, status, func(buf *bytes.Buffer) error {
		return h.pages.Form(buf, page)
	})
}

func (h *Handler) renderChat(w http.ResponseWriter, r *http.Request, status int, notice string) {
	ctx := r.Context()
	visitor := middleware.VisitorID(ctx)
	pipeline := h.chatSvc.Pipeline(visitor)
	snapshot := pipeline.Snapshot(ctx)
	p, _ := h.chatSvc.Profiles(visitor).Load(ctx)

	page := view.ChatPage{
		Theme:       themeOf(r),
		Profile:     p,
		Messages:    view.Messages(snapshot.Messages),
		Suggestions: h.suggestions.List(),
		ShowHistory: r.URL.Query().Get("history") != "",
		Awaiting:    snapshot.Awaiting,
		Error:       notice,
	}
	if page.ShowHistory {
		page.History = view.Summarize(pipeline.Sessions(ctx), h.now())
	}

	h.render(w, status, func(buf *bytes.Buffer) error {
		return h.pages.Chat(buf, page)
	})
}

// render buffers the page so a template error never leaves a half-written body.
func (h *Handler) render(w http.ResponseWriter, status int, exec func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		h.logger.WithError(err).Error("failed to render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func themeOf(r *http.Request) view.Theme {
	if cookie, err := r.Cookie(themeCookie); err == nil && cookie.Value == string(view.ThemeDark) {
		return view.ThemeDark
	}
	return view.ThemeLight
}

// backTo returns the same-origin path the request came from.
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	return ref.Path
}
