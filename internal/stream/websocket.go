package stream

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

// wsMessage envelope for WebSocket subscribers
type wsMessage struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebSocketSink frames events as JSON text messages and keeps alive with ping frames.
type WebSocketSink struct {
	conn *websocket.Conn
}

// NewWebSocketSink wraps an upgraded connection.
func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

// Open is a no-op; the handshake already happened during upgrade.
func (s *WebSocketSink) Open() error {
	return nil
}

func (s *WebSocketSink) Send(ev Event) error {
	payload, err := json.Marshal(wsMessage{Type: ev.Type, Data: ev.Data})
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *WebSocketSink) KeepAlive() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}
