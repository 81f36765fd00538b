package history

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/middleware"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/internal/view"
	"github.com/finalyzer/support/backend/pkg/utils"
)

// Handler serves the session history.
type Handler struct {
	chatSvc   *chatService.Service
	renderers *typing.Registry
	logger    logrus.FieldLogger
	now       func() time.Time
}

// New creates a history handler.
func New(chatSvc *chatService.Service, renderers *typing.Registry, logger logrus.FieldLogger) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		renderers: renderers,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.handleList)
	r.Post("/history/{sessionID}/load", h.handleLoad)
}

// handleList lists session summaries, newest first.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sessions := h.chatSvc.Pipeline(middleware.VisitorID(r.Context())).Sessions(r.Context())
	utils.RespondJSON(w, http.StatusOK, view.Summarize(sessions, h.now()))
}

// handleLoad switches the view to a stored session.
func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	snapshot, err := h.chatSvc.Pipeline(visitor).LoadSession(r.Context(), sessionID)
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	h.renderers.For(visitor).Stop()
	h.logger.WithFields(logrus.Fields{"visitor": visitor, "session": sessionID}).Info("session loaded")
	utils.RespondJSON(w, http.StatusOK, snapshot)
}
