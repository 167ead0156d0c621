package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/krea02/ai-agent-demo/internal/agent"
	"github.com/krea02/ai-agent-demo/internal/identity"
)

const (
	defaultMaxMessageBytes = 16 << 10
	writeTimeout           = 10 * time.Second
)

// Turner is the part of the agent service the socket needs.
type Turner interface {
	HandleTurn(ctx context.Context, key, utterance string, opts agent.TurnOptions) (*agent.TurnResult, error)
	ResetSession(ctx context.Context, key string) error
}

// Config controls the WebSocket endpoint.
type Config struct {
	AllowedOrigin   string
	IsDev           bool
	MaxMessageBytes int64
}

// WebSocketHandler runs quote turns over a WebSocket connection.
type WebSocketHandler struct {
	svc Turner
	sm  *SessionManager
	cfg Config
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(svc Turner, sm *SessionManager, cfg Config) *WebSocketHandler {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = defaultMaxMessageBytes
	}
	return &WebSocketHandler{svc: svc, sm: sm, cfg: cfg}
}

// inbound is a client message.
type inbound struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Speak   bool   `json:"speak,omitempty"`
}

// outbound is a server message.
type outbound struct {
	Type   string            `json:"type"`
	Result *agent.TurnResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := identity.SessionKeyFromContext(r.Context())

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", key)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", key)
		}
	}()
	ws.SetReadLimit(h.cfg.MaxMessageBytes)

	h.sm.Register(key, ws)
	defer h.sm.Unregister(key, ws)

	slog.Info("WebSocket connected", "session_id", key, "ip", identity.IPFromRequest(r))
	h.readLoop(r.Context(), ws, key)
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, key string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				return
			}
			slog.Debug("WebSocket read error", "error", err, "session_id", key)
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := h.writeJSON(ctx, ws, outbound{Type: "error", Error: "invalid message"}); err != nil {
				return
			}
			continue
		}

		if err := h.writeJSON(ctx, ws, h.dispatch(ctx, key, msg)); err != nil {
			slog.Debug("WebSocket write error", "error", err, "session_id", key)
			return
		}
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, key string, msg inbound) outbound {
	switch msg.Type {
	case "ping":
		return outbound{Type: "pong"}
	case "reset":
		if err := h.svc.ResetSession(ctx, key); err != nil {
			slog.Error("websocket reset failed", "session_id", key, "error", err)
			return outbound{Type: "error", Error: "something went wrong"}
		}
		return outbound{Type: "reset"}
	case "turn":
		if strings.TrimSpace(msg.Message) == "" {
			return outbound{Type: "error", Error: "message is required"}
		}
		res, err := h.svc.HandleTurn(ctx, key, msg.Message, agent.TurnOptions{Speak: msg.Speak, Channel: "websocket"})
		if err != nil {
			if errors.Is(err, agent.ErrEmptyUtterance) {
				return outbound{Type: "error", Error: "message is required"}
			}
			slog.Error("websocket turn failed", "session_id", key, "error", err)
			return outbound{Type: "error", Error: "something went wrong"}
		}
		return outbound{Type: "reply", Result: res}
	default:
		return outbound{Type: "error", Error: "unknown message type"}
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, v)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.cfg.IsDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg.AllowedOrigin == "*" {
		return true
	}
	if origin == h.cfg.AllowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.cfg.AllowedOrigin)
	return false
}
