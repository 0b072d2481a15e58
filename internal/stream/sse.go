package stream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamingUnsupported the response writer cannot flush
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// SSESink frames events as Server-Sent Events.
type SSESink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSESink wraps w, which must implement http.Flusher.
func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &SSESink{w: w, flusher: flusher}, nil
}

func (s *SSESink) Open() error {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
	return nil
}

func (s *SSESink) Send(ev Event) error {
	var err error
	if ev.Type == EventError {
		_, err = fmt.Fprintf(s.w, "event: error\ndata: %s\n\n", ev.Data)
	} else {
		_, err = fmt.Fprintf(s.w, "data: %s\n\n", ev.Data)
	}
	if err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *SSESink) KeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
