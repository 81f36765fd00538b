package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/middleware"
	chatService "github.com/finalyzer/support/backend/internal/service/chat"
	"github.com/finalyzer/support/backend/internal/service/typing"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler serves the chat over WebSocket.
type Handler struct {
	chatSvc   *chatService.Service
	renderers *typing.Registry
	logger    logrus.FieldLogger
	upgrader  websocket.Upgrader
}

// New creates a WebSocket handler.
func New(chatSvc *chatService.Service, renderers *typing.Registry, logger logrus.FieldLogger) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		renderers: renderers,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	SessionID string `json:"sessionId"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection serializes writes; gorilla allows one concurrent writer.
type connection struct {
	conn   *websocket.Conn
	logger logrus.FieldLogger

	mu sync.Mutex
}

func (c *connection) send(kind string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	msg := outgoingMessage{Type: kind, Data: data, Timestamp: time.Now().Unix()}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.WithError(err).WithField("type", kind).Debug("websocket write failed")
	}
}

func (c *connection) sendError(message string) {
	c.send("error", map[string]string{"message": message})
}

func (c *connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket runs one connection.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	logger := h.logger.WithField("visitor", visitor)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer ws.Close()

	conn := &connection{conn: ws, logger: logger}
	logger.Info("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	pipeline := h.chatSvc.Pipeline(visitor)
	conn.send("snapshot", pipeline.Snapshot(ctx))

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("websocket read error")
			}
			cancel()
			return
		}
		ws.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "send":
			pending, err := pipeline.Begin(ctx, msg.Text)
			if err != nil {
				conn.sendError(err.Error())
				continue
			}
			conn.send("user", pending.User)
			conn.send("loading", map[string]string{"sessionId": pending.SessionID})

			// Wait for the reply in the background so reset and load still work.
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.finishExchange(ctx, conn, visitor, pipeline, pending)
			}()
		case "reset":
			h.renderers.For(visitor).Stop()
			conn.send("snapshot", pipeline.Reset(ctx))
		case "load":
			snapshot, err := pipeline.LoadSession(ctx, msg.SessionID)
			if err != nil {
				conn.sendError(err.Error())
				continue
			}
			h.renderers.For(visitor).Stop()
			conn.send("snapshot", snapshot)
		default:
			conn.sendError("unknown message type")
		}
	}
}

func (h *Handler) finishExchange(ctx context.Context, conn *connection, visitor string, pipeline *chatService.Pipeline, pending *chatService.Pending) {
	exchange := pipeline.Complete(ctx, pending)

	err := h.renderers.For(visitor).Reveal(ctx, exchange.AI, func(frame typing.Frame) {
		conn.send("typing", frame)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		conn.logger.WithError(err).Debug("typing reveal ended early")
	}

	conn.send("message", exchange)
	conn.send("end", map[string]any{
		"sessionId": exchange.SessionID,
		"status":    exchange.Status,
		"finished":  true,
	})
}

// pingLoop keeps the connection alive.
func (h *Handler) pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
