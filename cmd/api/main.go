package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/courtside/courtside-api/api/swagger"
	"github.com/courtside/courtside-api/internal/handler"
	"github.com/courtside/courtside-api/internal/middleware"
	"github.com/courtside/courtside-api/internal/repository"
	"github.com/courtside/courtside-api/internal/service"
	"github.com/courtside/courtside-api/pkg/cache"
	"github.com/courtside/courtside-api/pkg/config"
	"github.com/courtside/courtside-api/pkg/database"
	"github.com/courtside/courtside-api/pkg/jobs"
	"github.com/courtside/courtside-api/pkg/logger"
	corsmiddleware "github.com/courtside/courtside-api/pkg/middleware/cors"
	reqidmiddleware "github.com/courtside/courtside-api/pkg/middleware/requestid"
)

// @title Courtside API
// @version 1.0.0
// @description Team management backend: goal progress tracking over live game events
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and pub/sub disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	metricRepo := repository.NewMetricRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	var publisher service.TransitionPublisher
	if cfg.Notifier.Enabled && redisClient != nil {
		publisher = service.NewRedisTransitionPublisher(cacheRepo, cfg.Notifier.Channel)
	} else {
		publisher = service.NewLogTransitionPublisher(logr)
	}
	notifierSvc := service.NewNotifierService(progressRepo, publisher, metricsSvc, logr)

	queue := jobs.NewQueue("transitions", notifierSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Notifier.Workers,
		MaxRetries: cfg.Notifier.MaxRetries,
		RetryDelay: cfg.Notifier.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.Background())
	defer queue.Stop()
	notifierSvc.AttachQueue(queue)

	evaluator := service.NewEventAggregator(sessionRepo, logr)
	progressSvc := service.NewProgressService(goalRepo, metricRepo, sessionRepo, progressRepo, evaluator, notifierSvc, cacheSvc, metricsSvc, nil, logr, service.ProgressConfig{
		AtRiskRatio:     cfg.Goals.AtRiskRatio,
		HistoryPageSize: cfg.Goals.HistoryPageSize,
		CacheTTL:        cfg.Cache.TTL,
	})
	goalSvc := service.NewGoalService(goalRepo, metricRepo, nil, logr)
	sessionSvc := service.NewSessionService(sessionRepo, nil, logr)
	exportSvc := service.NewExportService(progressSvc, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	goalHandler := handler.NewGoalHandler(goalSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	progressHandler := handler.NewProgressHandler(progressSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/goals", goalHandler.Create)
		authed.GET("/goals", goalHandler.List)
		authed.POST("/goals/calculate", progressHandler.Calculate)
		authed.GET("/goals/:goalId", goalHandler.Get)
		authed.POST("/goals/:goalId/deactivate", goalHandler.Deactivate)
		authed.GET("/goals/:goalId/progress", progressHandler.History)
		authed.GET("/goals/:goalId/progress/export", progressHandler.Export)
		authed.GET("/metrics/definitions", goalHandler.Metrics)

		authed.POST("/sessions", sessionHandler.Create)
		authed.GET("/sessions/:sessionId", sessionHandler.Get)
		authed.POST("/sessions/:sessionId/close", sessionHandler.Close)
		authed.POST("/sessions/:sessionId/events", sessionHandler.RecordEvent)
		authed.GET("/sessions/:sessionId/events", sessionHandler.ListEvents)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
