package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/finalyzer/support/backend/internal/logging"
	middlewarePkg "github.com/finalyzer/support/backend/internal/middleware"
	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/model/suggestion"
	"github.com/finalyzer/support/backend/internal/model/user"
	chatservice "github.com/finalyzer/support/backend/internal/service/chat"
	profileservice "github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/reply"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/internal/storage"
	"github.com/finalyzer/support/backend/internal/view"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	pages, err := view.NewPages()
	require.NoError(t, err)
	accounts, err := user.Seed(bcrypt.MinCost)
	require.NoError(t, err)

	replier := reply.ReplierFunc(func(context.Context, string, *profile.UserProfile) reply.Result {
		return reply.Accept("ok")
	})

	return NewRouter(Deps{
		Chat:        chatservice.NewService(storage.NewMemoryStore(), replier, logging.Discard(), time.Minute),
		Onboarding:  profileservice.NewOnboarding(nil, logging.Discard()),
		Renderers:   typing.NewRegistry(time.Millisecond, time.Minute),
		Users:       user.NewMemoryStore(accounts),
		Suggestions: suggestion.NewMemoryStore(suggestion.Default()),
		Pages:       pages,
		Logger:      logging.Discard(),
	})
}

func TestHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestChatAPIRequiresProfile(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.JSONEq(t, `{"error":"profile required"}`, resp.Body.String())
}

func TestVisitorCookieCarriesProfile(t *testing.T) {
	r := newTestRouter(t)

	payload, _ := json.Marshal(profile.UserProfile{Name: "Ada", Email: "ada@example.com", Industry: "Finance", Organization: "AE"})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/profile", bytes.NewReader(payload)))
	require.Equal(t, http.StatusCreated, resp.Code)

	var visitor *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == middlewarePkg.VisitorCookie {
			visitor = c
		}
	}
	require.NotNil(t, visitor)

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req.AddCookie(visitor)
	chat := httptest.NewRecorder()
	r.ServeHTTP(chat, req)

	require.Equal(t, http.StatusOK, chat.Code)
	assert.Contains(t, chat.Body.String(), "Hello Ada!")
}

func TestUnknownRoutes(t *testing.T) {
	r := newTestRouter(t)

	page := httptest.NewRecorder()
	r.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/pricing", nil))
	assert.Equal(t, http.StatusNotFound, page.Code)
	assert.Contains(t, page.Header().Get("Content-Type"), "text/html")

	api := httptest.NewRecorder()
	r.ServeHTTP(api, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	assert.Equal(t, http.StatusNotFound, api.Code)
}
