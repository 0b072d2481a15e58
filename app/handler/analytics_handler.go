package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"swasthyaflow/app/middleware"
	"swasthyaflow/internal/service"
	"swasthyaflow/internal/stream"
	"swasthyaflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// AnalyticsHandler serves the dashboard summary as a single response or a push channel
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	registry         *stream.Registry
	channelOpts      stream.ChannelOptions
	upgrader         websocket.Upgrader
	closing          context.Context // done when open channels must end
}

// NewAnalyticsHandler creates analytics handler. allowedOrigins is the comma separated
// list of browser origins accepted for WebSocket upgrades; empty allows any.
// Push channels end when closing is done, other requests are unaffected.
func NewAnalyticsHandler(closing context.Context, analyticsService *service.AnalyticsService, registry *stream.Registry, opts stream.ChannelOptions, allowedOrigins string) *AnalyticsHandler {
	if closing == nil {
		closing = context.Background()
	}
	origins := make(map[string]struct{})
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins[origin] = struct{}{}
		}
	}

	return &AnalyticsHandler{
		analyticsService: analyticsService,
		registry:         registry,
		channelOpts:      opts,
		closing:          closing,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				if _, ok := origins[origin]; ok {
					return true
				}
				// same host as the API
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// Summary returns the caller's analytics summary
// @Summary Analytics summary
// @Tags analytics
// @Produce json
// @Success 200 {object} model.AnalyticsSummary
// @Router /api/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsService.BuildSummary(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		respondError(c, err, "build analytics summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Stream pushes summaries over Server-Sent Events until the client disconnects
// @Summary Analytics stream (SSE)
// @Tags analytics
// @Produce text/event-stream
// @Router /api/analytics/stream [get]
func (h *AnalyticsHandler) Stream(c *gin.Context) {
	ctx, cancel := h.channelContext(c.Request.Context())
	defer cancel()

	sink, err := stream.NewSSESink(c.Writer)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to open analytics stream: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming unsupported"})
		return
	}

	channel := stream.NewChannel(h.registry, middleware.OwnerID(c), sink, h.channelOpts)
	if err := channel.Serve(ctx); err != nil {
		logger.WarnCtx(ctx, "analytics stream ended: %v", err)
	}
}

// WebSocket pushes summaries over a WebSocket until either side closes
// @Summary Analytics stream (WebSocket)
// @Tags analytics
// @Router /api/analytics/ws [get]
func (h *AnalyticsHandler) WebSocket(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WarnCtx(c.Request.Context(), "failed to upgrade analytics websocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := h.channelContext(c.Request.Context())
	defer cancel()

	// the client never sends data; a read error means it went away
	conn.SetReadLimit(512)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	channel := stream.NewChannel(h.registry, ownerID, stream.NewWebSocketSink(conn), h.channelOpts)
	if err := channel.Serve(ctx); err != nil {
		logger.WarnCtx(ctx, "analytics websocket ended: %v", err)
	}
}

// channelContext ends when the request ends or the handler is closing
func (h *AnalyticsHandler) channelContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(h.closing, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
