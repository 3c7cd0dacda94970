package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/rkvadlamudi/campusql/internal/engine"
)

const msgThrottled = "Please wait a second before sending another message."

// WebSocketHandler runs one conversation per connection. Messages from
// one session are handled strictly in order by the read loop; separate
// connections run concurrently.
type WebSocketHandler struct {
	engine      *engine.Engine
	registry    *engine.Registry
	minInterval time.Duration
	greeting    string
}

// NewWebSocketHandler creates the WebSocket endpoint handler.
func NewWebSocketHandler(eng *engine.Engine, registry *engine.Registry, minInterval time.Duration, institute string) *WebSocketHandler {
	return &WebSocketHandler{
		engine:      eng,
		registry:    registry,
		minInterval: minInterval,
		greeting:    fmt.Sprintf("Welcome to the %s assistant. How can I help you?", institute),
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept websocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer ws.Close(websocket.StatusNormalClosure, "session ended")

	sessionID := uuid.NewString()
	sess := h.registry.GetOrCreate(sessionID)
	defer h.registry.Remove(sessionID)

	slog.Info("client connected", "session_id", sessionID, "ip", r.RemoteAddr)
	defer slog.Info("client disconnected", "session_id", sessionID)

	ctx := r.Context()
	h.writeJSON(ctx, ws, botResponse{Event: EventBotResponse, Response: h.greeting})

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}

		msg, err := ParseInbound(data)
		if err != nil {
			slog.Debug("rejected frame", "session_id", sessionID, "error", err)
			continue
		}

		if !sess.Allow(time.Now(), h.minInterval) {
			h.writeJSON(ctx, ws, botResponse{Event: EventBotResponse, Response: msgThrottled})
			continue
		}

		h.writeJSON(ctx, ws, botTyping{Event: EventBotTyping, Typing: true})
		answer := h.engine.HandleMessage(ctx, sess, msg.Message)
		h.writeJSON(ctx, ws, botResponse{Event: EventBotResponse, Response: answer})
		h.writeJSON(ctx, ws, botTyping{Event: EventBotTyping, Typing: false})
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal frame", "error", err)
		return
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("websocket write error", "error", err)
	}
}
