package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/ashureev/homework-planner/internal/skill"
)

// SocketHandler serves request envelopes over a WebSocket. Each text message
// is one envelope and gets exactly one response envelope; messages on a
// connection are processed in order.
type SocketHandler struct {
	dispatcher     Dispatcher
	sm             *SessionManager
	skillID        string
	originPatterns []string
	maxMessageSize int64
}

// NewSocketHandler creates a socket handler. An empty skillID accepts any application.
func NewSocketHandler(d Dispatcher, sm *SessionManager, skillID string, originPatterns []string, maxMessageSize int64) *SocketHandler {
	if maxMessageSize <= 0 {
		maxMessageSize = DefaultMaxBodySize
	}
	return &SocketHandler{
		dispatcher:     d,
		sm:             sm,
		skillID:        skillID,
		originPatterns: originPatterns,
		maxMessageSize: maxMessageSize,
	}
}

type socketError struct {
	Error string `json:"error"`
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	ws.SetReadLimit(h.maxMessageSize)
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	ctx := r.Context()
	var userID, sessionID string
	defer func() {
		if userID != "" {
			h.sm.Unregister(userID, sessionID, ws)
		}
	}()

	for {
		typ, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}
		if typ != websocket.MessageText {
			h.writeJSON(ctx, ws, socketError{Error: "expected text message"})
			continue
		}

		var env skill.RequestEnvelope
		if err := json.Unmarshal(message, &env); err != nil || env.Request.Type == "" {
			h.writeJSON(ctx, ws, socketError{Error: "invalid request envelope"})
			continue
		}
		if h.skillID != "" && env.ApplicationID() != h.skillID {
			slog.Warn("Rejected socket request for unknown application", "application_id", env.ApplicationID())
			h.writeJSON(ctx, ws, socketError{Error: "application id mismatch"})
			continue
		}

		if env.UserID() != userID || env.Session.SessionID != sessionID {
			if userID != "" {
				h.sm.Unregister(userID, sessionID, ws)
			}
			userID, sessionID = env.UserID(), env.Session.SessionID
			h.sm.Register(userID, sessionID, ws)
		}

		resp := h.dispatcher.Handle(ctx, &env)
		if err := h.writeJSON(ctx, ws, resp); err != nil {
			slog.Warn("Failed to write response envelope", "error", err, "user_id", userID)
			return
		}
		if env.Request.Type == skill.SessionEndedRequest {
			return
		}
	}
}

func (h *SocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
