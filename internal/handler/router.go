package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/handler/auth"
	"github.com/finalyzer/support/backend/internal/handler/chat"
	"github.com/finalyzer/support/backend/internal/handler/history"
	"github.com/finalyzer/support/backend/internal/handler/pages"
	"github.com/finalyzer/support/backend/internal/handler/profile"
	"github.com/finalyzer/support/backend/internal/handler/stream"
	"github.com/finalyzer/support/backend/internal/handler/suggestion"
	"github.com/finalyzer/support/backend/internal/handler/ws"
	middlewarePkg "github.com/finalyzer/support/backend/internal/middleware"
	suggestionModel "github.com/finalyzer/support/backend/internal/model/suggestion"
	userModel "github.com/finalyzer/support/backend/internal/model/user"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	profileService "github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/internal/view"
	"github.com/finalyzer/support/backend/pkg/utils"
)

// Deps bundles what the router hands to handlers.
type Deps struct {
	Chat         *chatService.Service
	Onboarding   *profileService.Onboarding
	Renderers    *typing.Registry
	Users        userModel.Store
	Suggestions  suggestionModel.Store
	Pages        *view.Pages
	Logger       logrus.FieldLogger
	CookieSecure bool
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Visitor(deps.CookieSecure))
	r.Use(middlewarePkg.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Create handlers
	pageHandler := pages.New(deps.Pages, deps.Chat, deps.Onboarding, deps.Renderers, deps.Suggestions, deps.Logger)
	profileHandler := profile.New(deps.Chat, deps.Onboarding, deps.Renderers, deps.Logger)
	authHandler := auth.New(deps.Users, deps.Chat, deps.Logger)
	suggestionHandler := suggestion.New(deps.Suggestions)
	chatHandler := chat.New(deps.Chat, deps.Renderers, deps.Logger)
	historyHandler := history.New(deps.Chat, deps.Renderers, deps.Logger)
	streamHandler := stream.New(deps.Chat, deps.Renderers, deps.Logger)
	wsHandler := ws.New(deps.Chat, deps.Renderers, deps.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	pageHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		profileHandler.RegisterRoutes(api)
		authHandler.RegisterRoutes(api)
		suggestionHandler.RegisterRoutes(api)

		// Chat routes need a completed profile
		api.Group(func(gated chi.Router) {
			gated.Use(middlewarePkg.RequireProfile(deps.Chat, func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusUnauthorized, "profile required")
			}))
			chatHandler.RegisterRoutes(gated)
			historyHandler.RegisterRoutes(gated)
			streamHandler.RegisterRoutes(gated)
			wsHandler.RegisterRoutes(gated)
		})

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondError(w, http.StatusNotFound, "not found")
		})
	})

	r.NotFound(pageHandler.NotFound)

	return r
}
