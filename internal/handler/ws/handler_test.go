package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalyzer/support/backend/internal/logging"
	"github.com/finalyzer/support/backend/internal/middleware"
	"github.com/finalyzer/support/backend/internal/model/profile"
	chatservice "github.com/finalyzer/support/backend/internal/service/chat"
	"github.com/finalyzer/support/backend/internal/service/reply"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/internal/storage"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, replier reply.Replier) *websocket.Conn {
	t.Helper()

	chatSvc := chatservice.NewService(storage.NewMemoryStore(), replier, logging.Discard(), 0)
	r := chi.NewRouter()
	r.Use(middleware.Visitor(false))
	New(chatSvc, typing.NewRegistry(time.Millisecond, 0), logging.Discard()).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func readUntil(t *testing.T, conn *websocket.Conn, kind string) []frame {
	t.Helper()
	var seen []frame
	for {
		f := read(t, conn)
		seen = append(seen, f)
		if f.Type == kind {
			return seen
		}
	}
}

func TestWebSocketExchange(t *testing.T) {
	conn := dial(t, reply.ReplierFunc(func(_ context.Context, text string, _ *profile.UserProfile) reply.Result {
		return reply.Accept("You asked about " + text)
	}))

	assert.Equal(t, "snapshot", read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "send", "text": "security"}))
	frames := readUntil(t, conn, "end")

	assert.Equal(t, "user", frames[0].Type)
	assert.Equal(t, "loading", frames[1].Type)
	assert.Equal(t, "message", frames[len(frames)-2].Type)

	var exchange chatservice.Exchange
	require.NoError(t, json.Unmarshal(frames[len(frames)-2].Data, &exchange))
	assert.Equal(t, "You asked about security", exchange.AI.Text)
}

func TestWebSocketRejectsBlankAndUnknown(t *testing.T) {
	conn := dial(t, reply.ReplierFunc(func(context.Context, string, *profile.UserProfile) reply.Result {
		return reply.Accept("ok")
	}))
	read(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "send", "text": "  "}))
	f := read(t, conn)
	assert.Equal(t, "error", f.Type)
	assert.Contains(t, string(f.Data), "message is empty")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	assert.Equal(t, "error", read(t, conn).Type)
}

func TestWebSocketReset(t *testing.T) {
	conn := dial(t, reply.ReplierFunc(func(context.Context, string, *profile.UserProfile) reply.Result {
		return reply.Accept("ok")
	}))
	read(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "send", "text": "hi"}))
	readUntil(t, conn, "end")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "reset"}))
	f := read(t, conn)
	require.Equal(t, "snapshot", f.Type)

	var snapshot chatservice.Snapshot
	require.NoError(t, json.Unmarshal(f.Data, &snapshot))
	assert.Len(t, snapshot.Messages, 1)
	assert.Empty(t, snapshot.SessionID)
}
