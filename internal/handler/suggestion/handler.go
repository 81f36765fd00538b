package suggestion

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finalyzer/support/backend/internal/model/suggestion"
	"github.com/finalyzer/support/backend/pkg/utils"
)

// Handler serves the suggested questions.
type Handler struct {
	suggestions suggestion.Store
}

// New creates a suggestion handler.
func New(suggestions suggestion.Store) *Handler {
	return &Handler{
		suggestions: suggestions,
	}
}

// RegisterRoutes registers the suggestion route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/suggestions", h.handleList)
}

// handleList lists all suggested questions.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string][]string{
		"questions": h.suggestions.List(),
	})
}
