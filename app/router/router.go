package router

import (
	"swasthyaflow/app/handler"
	"swasthyaflow/app/middleware"
	"swasthyaflow/pkg/auth"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	scheduleHandler  *handler.ScheduleHandler
	analyticsHandler *handler.AnalyticsHandler
	systemHandler    *handler.SystemHandler
	resolver         auth.Resolver
	frontendOrigin   string
}

// NewRouter creates a new Router
func NewRouter(scheduleHandler *handler.ScheduleHandler, analyticsHandler *handler.AnalyticsHandler, systemHandler *handler.SystemHandler, resolver auth.Resolver, frontendOrigin string) *Router {
	return &Router{
		scheduleHandler:  scheduleHandler,
		analyticsHandler: analyticsHandler,
		systemHandler:    systemHandler,
		resolver:         resolver,
		frontendOrigin:   frontendOrigin,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())
	engine.Use(middleware.CORS(r.frontendOrigin))

	engine.GET("/health", r.systemHandler.Health)

	api := engine.Group("/api")
	api.Use(middleware.Identity(r.resolver))
	{
		api.GET("/me", r.systemHandler.Me)

		schedules := api.Group("/schedules")
		{
			schedules.GET("", r.scheduleHandler.List)
			schedules.POST("", r.scheduleHandler.Create)
			schedules.POST("/:id/cancel", r.scheduleHandler.Cancel)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/summary", r.analyticsHandler.Summary)
			analytics.GET("/stream", r.analyticsHandler.Stream)
			analytics.GET("/ws", r.analyticsHandler.WebSocket)
		}
	}
}
