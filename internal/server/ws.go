package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alnah/go-mdview/internal/view"
)

// Client message types.
const (
	MessageScroll      = "scroll"
	MessageToggleTheme = "toggle-theme"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// clientMessage is what the viewer script sends.
type clientMessage struct {
	Type   string            `json:"type"`
	Scroll *view.ScrollState `json:"scroll,omitempty"`
}

// handleWebSocket streams updates to one viewer. The handler goroutine is
// the only writer on the connection; a second goroutine reads client
// messages until the connection drops.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", slog.Any("err", err))
		return
	}
	defer func() { _ = conn.Close() }()

	updates, unsubscribe := s.viewer.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readClient(ctx, cancel, conn)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := conn.WriteJSON(u); err != nil {
				s.log.Debug("websocket write failed", slog.Any("err", err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readClient(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read failed", slog.Any("err", err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug("invalid client message", slog.Any("err", err))
			continue
		}

		switch msg.Type {
		case MessageScroll:
			if msg.Scroll != nil {
				s.viewer.ReportScroll(*msg.Scroll)
			}
		case MessageToggleTheme:
			// The resulting update reaches every viewer through its subscription.
			if _, err := s.viewer.ToggleTheme(ctx); err != nil {
				s.log.Warn("theme toggle failed", slog.Any("err", err))
			}
		default:
			s.log.Debug("unknown client message", slog.String("type", msg.Type))
		}
	}
}
