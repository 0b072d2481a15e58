package main

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_DrainsInFlightRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	started := make(chan struct{})
	var aborted atomic.Bool

	engine := gin.New()
	engine.POST("/api/schedules", func(c *gin.Context) {
		close(started)
		select {
		case <-time.After(200 * time.Millisecond):
			c.JSON(http.StatusCreated, gin.H{"item": "ok"})
		case <-c.Request.Context().Done():
			aborted.Store(true)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule"})
		}
	})

	app := NewApplication()
	app.httpServer = &http.Server{Handler: engine}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.httpServer.Serve(ln)

	type result struct {
		status int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/api/schedules", "application/json", nil)
		if err != nil {
			done <- result{err: err}
			return
		}
		resp.Body.Close()
		done <- result{status: resp.StatusCode}
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}

	require.NoError(t, app.Shutdown(5*time.Second))

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, http.StatusCreated, res.status)
	assert.False(t, aborted.Load())
	assert.ErrorIs(t, app.ctx.Err(), context.Canceled)
}
