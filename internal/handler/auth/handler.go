package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/middleware"
	"github.com/finalyzer/support/backend/internal/model/user"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	"github.com/finalyzer/support/backend/internal/view"
	"github.com/finalyzer/support/backend/pkg/utils"
)

// Handler serves the demo-account sign-in.
type Handler struct {
	users   user.Store
	chatSvc *chatService.Service
	logger  logrus.FieldLogger
}

// New creates a sign-in handler.
func New(users user.Store, chatSvc *chatService.Service, logger logrus.FieldLogger) *Handler {
	return &Handler{
		users:   users,
		chatSvc: chatSvc,
		logger:  logger,
	}
}

// RegisterRoutes registers the sign-in route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signin", h.handleSignIn)
}

// handleSignIn checks a demo account and stores its profile.
func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	visitor := middleware.VisitorID(r.Context())
	p, ok := h.users.Authenticate(payload.Email, payload.Password)
	if !ok {
		h.logger.WithField("visitor", visitor).Warn("sign-in failed")
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := h.chatSvc.Profiles(visitor).Save(r.Context(), p); err != nil {
		h.logger.WithError(err).Error("failed to store signed-in profile")
		utils.RespondError(w, http.StatusInternalServerError, view.NoticeRetry)
		return
	}
	h.chatSvc.Forget(visitor)

	utils.RespondJSON(w, http.StatusOK, p)
}
