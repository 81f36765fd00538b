package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/middleware"
	"github.com/finalyzer/support/backend/internal/model/profile"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	profileService "github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/internal/view"
	"github.com/finalyzer/support/backend/pkg/utils"
)

// Handler serves the visitor profile.
type Handler struct {
	chatSvc    *chatService.Service
	onboarding *profileService.Onboarding
	renderers  *typing.Registry
	logger     logrus.FieldLogger
}

// New creates a profile handler.
func New(chatSvc *chatService.Service, onboarding *profileService.Onboarding, renderers *typing.Registry, logger logrus.FieldLogger) *Handler {
	return &Handler{
		chatSvc:    chatSvc,
		onboarding: onboarding,
		renderers:  renderers,
		logger:     logger,
	}
}

// RegisterRoutes registers the profile routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/profile", h.handleSubmit)
	r.Get("/profile", h.handleGet)
	r.Delete("/profile", h.handleLogout)
}

// handleSubmit accepts the profile form.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload profile.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	visitor := middleware.VisitorID(r.Context())
	saved, err := h.onboarding.Submit(r.Context(), h.chatSvc.Profiles(visitor), payload)
	if err != nil {
		RespondSubmitError(w, err)
		return
	}

	// Drop the old pipeline so the next welcome uses the new name.
	h.chatSvc.Forget(visitor)
	h.logger.WithField("visitor", visitor).Info("profile submitted")
	utils.RespondJSON(w, http.StatusCreated, saved)
}

// handleGet returns the stored profile.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := h.chatSvc.Profiles(middleware.VisitorID(r.Context())).Load(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// handleLogout clears the profile.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	h.renderers.Remove(visitor)
	if err := h.chatSvc.Logout(r.Context(), visitor); err != nil {
		h.logger.WithError(err).WithField("visitor", visitor).Error("failed to clear profile")
		utils.RespondError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// RespondSubmitError maps onboarding errors to HTTP statuses.
func RespondSubmitError(w http.ResponseWriter, err error) {
	utils.RespondError(w, SubmitStatus(err), view.SubmitNotice(err))
}

// SubmitStatus is the HTTP status for an onboarding error.
func SubmitStatus(err error) int {
	switch {
	case errors.Is(err, profile.ErrIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, profileService.ErrSignupFailed), errors.Is(err, profileService.ErrSignupRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
