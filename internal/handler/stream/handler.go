package stream

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	chatHandler "github.com/finalyzer/support/backend/internal/handler/chat"
	"github.com/finalyzer/support/backend/internal/middleware"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/pkg/utils"
)

// Handler manages chat exchanges via Server-Sent Events
type Handler struct {
	chatSvc   *chatService.Service
	renderers *typing.Registry
	logger    logrus.FieldLogger
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, renderers *typing.Registry, logger logrus.FieldLogger) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		renderers: renderers,
		logger:    logger,
	}
}

// RegisterRoutes registers the SSE endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/stream", h.handleStream)
}

// PendingEvent is sent while the reply is outstanding.
type PendingEvent struct {
	SessionID string `json:"sessionId"`
}

// EndEvent closes a stream.
type EndEvent struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Finished  bool   `json:"finished"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	visitor := middleware.VisitorID(r.Context())
	pipeline := h.chatSvc.Pipeline(visitor)

	pending, err := pipeline.Begin(r.Context(), r.URL.Query().Get("message"))
	if err != nil {
		chatHandler.RespondSendError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	logger := h.logger.WithFields(logrus.Fields{"visitor": visitor, "session": pending.SessionID})

	h.send(w, flusher, "user", pending.User)
	h.send(w, flusher, "loading", PendingEvent{SessionID: pending.SessionID})

	exchange := pipeline.Complete(r.Context(), pending)

	err = h.renderers.For(visitor).Reveal(r.Context(), exchange.AI, func(frame typing.Frame) {
		h.send(w, flusher, "typing", frame)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Debug("typing reveal ended early")
	}

	h.send(w, flusher, "message", exchange)
	h.send(w, flusher, "end", EndEvent{
		SessionID: exchange.SessionID,
		Status:    string(exchange.Status),
		Finished:  true,
	})

	logger.WithField("status", exchange.Status).Info("completed streamed exchange")
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	if err := utils.SendSSEEvent(w, flusher, event, data); err != nil {
		h.logger.WithError(err).WithField("event", event).Debug("failed to write sse event")
	}
}
