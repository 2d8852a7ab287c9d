package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/config"
	"github.com/smarttransit/subway-routing/internal/database"
	"github.com/smarttransit/subway-routing/internal/handlers"
	"github.com/smarttransit/subway-routing/internal/middleware"
	"github.com/smarttransit/subway-routing/internal/services"
	"github.com/smarttransit/subway-routing/pkg/jwt"
	"github.com/smarttransit/subway-routing/pkg/mbta"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting subway routing service")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Database is optional; without it search analytics is disabled
	var db database.DB
	var searchLogStore services.SearchLogStore
	if cfg.Database.Enabled() {
		logger.Info("Connecting to database...")
		db, err = database.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.EnsureSchema(db); err != nil {
			logger.Fatalf("Failed to prepare database schema: %v", err)
		}
		searchLogStore = database.NewSearchLogRepository(db)
		logger.Info("Database connection established")
	} else {
		logger.Info("DATABASE_URL not set, search analytics disabled")
	}

	source := newSource(cfg.MBTA, logger)
	subwayService := services.NewSubwayService(source, cfg.MBTA.PathCacheSize, logger)
	searchLogService := services.NewSearchLogService(searchLogStore, logger)

	// The first load must succeed: there is nothing to serve without it
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*cfg.MBTA.Timeout)
	err = subwayService.LoadRouteData(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Fatalf("Failed to load initial route data: %v", err)
	}

	cronService := services.NewCronService(subwayService, cfg.MBTA.ReloadSchedule, 2*cfg.MBTA.Timeout, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	subwayHandler := handlers.NewSubwayHandler(subwayService, searchLogService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  cfg.CORS.AllowedMethods,
		AllowHeaders:  cfg.CORS.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", handlers.HealthCheck(subwayService, db, version))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/routes", subwayHandler.GetRoutes)
		v1.GET("/routes/most-stops", subwayHandler.GetRouteWithMostStops)
		v1.GET("/routes/fewest-stops", subwayHandler.GetRouteWithFewestStops)
		v1.GET("/stops/transfers", subwayHandler.GetTransferStops)
		v1.GET("/path", subwayHandler.FindPath)
		v1.GET("/search/popular", subwayHandler.GetPopularSearches)

		if cfg.Admin.Enabled {
			jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
			adminHandler := handlers.NewAdminHandler(subwayService, cronService, 2*cfg.MBTA.Timeout, logger)

			admin := v1.Group("/admin")
			admin.Use(middleware.AuthMiddleware(jwtService, logger))
			admin.Use(middleware.RequireRole(jwt.RoleAdmin))
			{
				admin.POST("/reload", adminHandler.Reload)
				admin.GET("/status", adminHandler.Status)
			}
			logger.Info("Admin API enabled")
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// newSource selects where route data is read from
func newSource(cfg config.MBTAConfig, logger *logrus.Logger) mbta.Source {
	if cfg.Source == config.SourceFile {
		logger.WithField("path", cfg.FixturePath).Info("Reading route data from fixture file")
		return mbta.NewFileSource(cfg.FixturePath)
	}

	logger.WithField("base_url", cfg.BaseURL).Info("Reading route data from the MBTA API")
	return mbta.NewClient(mbta.ClientConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}, logger)
}
