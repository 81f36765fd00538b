package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/middleware"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/pkg/utils"
)

// Handler serves the chat API.
type Handler struct {
	chatSvc   *chatService.Service
	renderers *typing.Registry
	logger    logrus.FieldLogger
}

// New creates a chat handler.
func New(chatSvc *chatService.Service, renderers *typing.Registry, logger logrus.FieldLogger) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		renderers: renderers,
		logger:    logger,
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat", h.handleSnapshot)
	r.Post("/chat/messages", h.handleSendMessage)
	r.Post("/chat/reset", h.handleReset)
}

// handleSnapshot returns the visible conversation.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	pipeline := h.chatSvc.Pipeline(middleware.VisitorID(r.Context()))
	utils.RespondJSON(w, http.StatusOK, pipeline.Snapshot(r.Context()))
}

// handleSendMessage sends a message and waits for the reply.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pipeline := h.chatSvc.Pipeline(middleware.VisitorID(r.Context()))
	exchange, err := pipeline.Send(r.Context(), payload.Text)
	if err != nil {
		RespondSendError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, exchange)
}

// handleReset starts a new conversation.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	h.renderers.For(visitor).Stop()

	snapshot := h.chatSvc.Pipeline(visitor).Reset(r.Context())
	h.logger.WithField("visitor", visitor).Info("chat reset")
	utils.RespondJSON(w, http.StatusOK, snapshot)
}

// RespondSendError maps pipeline send errors to HTTP statuses.
func RespondSendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrExchangeInFlight):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, "failed to send message")
	}
}
