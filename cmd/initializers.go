package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"swasthyaflow/app/handler"
	"swasthyaflow/app/router"
	"swasthyaflow/internal/service"
	"swasthyaflow/internal/stream"
	"swasthyaflow/pkg/auth"
	"swasthyaflow/pkg/config"
	"swasthyaflow/pkg/logger"
	mysqlstore "swasthyaflow/pkg/store/mysql"
	redisstore "swasthyaflow/pkg/store/redis"

	"github.com/gin-gonic/gin"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig

	loc, err := app.config.Server.Location()
	if err != nil {
		return err
	}
	app.location = loc
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(app.config.Logger); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.InfoCtx(app.ctx, "Logging system has been closed")
		logger.Sync()
	})
	return nil
}

// initMySQL initializes MySQL and migrates the schema
func (app *Application) initMySQL() error {
	repo, err := mysqlstore.NewRepository(app.config.MySQL.DSN())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return err
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.ctx, "MySQL connection has been closed")
	})

	return nil
}

// initRedis initializes Redis (optional, backs Idempotency-Key replay)
func (app *Application) initRedis() error {
	if !app.config.Redis.Enabled {
		logger.InfoCtx(app.ctx, "Redis disabled, Idempotency-Key headers will be ignored")
		return nil
	}

	client, err := redisstore.NewRedisClient(app.config.Redis)
	if err != nil {
		return err
	}

	app.redisClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "Redis connection has been closed")
	})

	return nil
}

// initIdentity selects the identity resolver
func (app *Application) initIdentity() error {
	resolver, err := auth.NewResolver(app.config.Auth)
	if err != nil {
		return err
	}
	if !app.config.Auth.EnableVerification {
		logger.WarnCtx(app.ctx, "Token verification disabled, trusting %s header", app.config.Auth.DevHeader)
	}
	app.resolver = resolver
	return nil
}

// initServices initializes service layer and the subscriber registry
func (app *Application) initServices() error {
	scheduleRepo := app.mysqlRepo.Schedule

	app.analyticsService = service.NewAnalyticsService(scheduleRepo, app.location)
	app.registry = stream.NewRegistry(app.analyticsService)
	app.broadcastTrigger = service.NewBroadcastTrigger(app.registry, app.config.Analytics.BroadcastDeadline())

	if app.redisClient != nil {
		idempotencyRepo := redisstore.NewIdempotencyRepository(app.redisClient)
		app.scheduleService = service.NewScheduleService(scheduleRepo, idempotencyRepo, app.location)
	} else {
		app.scheduleService = service.NewScheduleService(scheduleRepo, nil, app.location)
	}

	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	channelOpts := stream.ChannelOptions{
		KeepAlive: app.config.Analytics.KeepAlive(),
		Buffer:    app.config.Analytics.SubscriberBuffer,
	}

	app.scheduleHandler = handler.NewScheduleHandler(app.scheduleService, app.broadcastTrigger)
	app.analyticsHandler = handler.NewAnalyticsHandler(app.ctx, app.analyticsService, app.registry, channelOpts, app.config.Server.FrontendOrigin)
	app.systemHandler = handler.NewSystemHandler(app.registry)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewRouter(app.scheduleHandler, app.analyticsHandler, app.systemHandler, app.resolver, app.config.Server.FrontendOrigin)

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	app.ginEngine = gin.New()
	r.Setup(app.ginEngine)

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}
