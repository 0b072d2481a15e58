package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSESink_Framing(t *testing.T) {
	rec := httptest.NewRecorder()
	sink, err := NewSSESink(rec)
	require.NoError(t, err)

	require.NoError(t, sink.Open())
	require.NoError(t, sink.Send(Event{Type: EventData, Data: []byte(`{"totalSessions":2}`)}))
	require.NoError(t, sink.Send(Event{Type: EventError, Data: errorPayload}))
	require.NoError(t, sink.KeepAlive())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.Equal(t,
		"data: {\"totalSessions\":2}\n\n"+
			"event: error\ndata: {\"message\":\"analytics_error\"}\n\n"+
			": ping\n\n",
		rec.Body.String())
	assert.True(t, rec.Flushed)
}

// plainWriter hides httptest.ResponseRecorder's Flush method
type plainWriter struct{ http.ResponseWriter }

func TestNewSSESink_RequiresFlusher(t *testing.T) {
	_, err := NewSSESink(plainWriter{httptest.NewRecorder()})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestWebSocketSink_Envelope(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		sink := NewWebSocketSink(conn)
		_ = sink.Open()
		_ = sink.Send(Event{Type: EventData, Data: []byte(`{"totalSessions":3}`)})
		_ = sink.Send(Event{Type: EventError, Data: errorPayload})
		// wait for the client to hang up
		conn.ReadMessage()
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(time.Second))

	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "data", msg.Type)
	assert.JSONEq(t, `{"totalSessions":3}`, string(msg.Data))

	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "error", msg.Type)
	assert.JSONEq(t, `{"message":"analytics_error"}`, string(msg.Data))
}
