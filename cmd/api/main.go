package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/richxcame/urban-mobility/internal/analytics"
	"github.com/richxcame/urban-mobility/internal/cleaning"
	"github.com/richxcame/urban-mobility/internal/demand"
	"github.com/richxcame/urban-mobility/internal/forecast"
	"github.com/richxcame/urban-mobility/pkg/common"
	"github.com/richxcame/urban-mobility/pkg/config"
	"github.com/richxcame/urban-mobility/pkg/database"
	"github.com/richxcame/urban-mobility/pkg/health"
	"github.com/richxcame/urban-mobility/pkg/logger"
	"github.com/richxcame/urban-mobility/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load("demand-api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to PostgreSQL database")

	engine, err := forecast.NewEngine(cfg.Pipeline.TrainSplitRatio)
	if err != nil {
		logger.Fatal("Failed to build forecast engine", zap.Error(err))
	}

	// Create services and handlers
	cleanRepo := cleaning.NewRepository(pool)
	demandService := demand.NewService(cleanRepo, forecast.NewRepository(pool), engine, &cfg.Pipeline)
	demandHandler := demand.NewHandler(demandService)

	analyticsService := analytics.NewService(analytics.NewRepository(pool))
	analyticsHandler := analytics.NewHandler(analyticsService)

	// Set up Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no auth required)
	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, version, map[string]func() error{
		"database": health.DatabaseChecker(pool),
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		demandRoutes := api.Group("/demand")
		{
			demandRoutes.GET("/series", demandHandler.GetSeries)
			demandRoutes.GET("/forecast", demandHandler.GetForecast)
			demandRoutes.GET("/forecast/latest", demandHandler.GetLatestForecast)
			demandRoutes.GET("/sample", demandHandler.GetSample)
			demandRoutes.GET("/hotspots", demandHandler.GetHotspots)
		}

		analyticsRoutes := api.Group("/analytics")
		{
			analyticsRoutes.GET("/summary", analyticsHandler.GetKPISummary)
			analyticsRoutes.GET("/hourly", analyticsHandler.GetHourlyProfile)
			analyticsRoutes.GET("/heatmap", analyticsHandler.GetWeekHeatmap)
			analyticsRoutes.GET("/passengers", analyticsHandler.GetPassengerDistribution)
			analyticsRoutes.GET("/durations", analyticsHandler.GetDurationHistogram)
		}
	}

	// Start server
	addr := ":" + cfg.Server.Port
	logger.Info("Demand API starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
