package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/matchpulse/betengine/internal/api"
	"github.com/matchpulse/betengine/internal/api/handlers"
	"github.com/matchpulse/betengine/internal/api/middleware"
	"github.com/matchpulse/betengine/internal/jobs"
	"github.com/matchpulse/betengine/internal/ml"
	"github.com/matchpulse/betengine/internal/notifier"
	"github.com/matchpulse/betengine/internal/orchestrator"
	"github.com/matchpulse/betengine/internal/prefetch"
	"github.com/matchpulse/betengine/internal/resolver"
	"github.com/matchpulse/betengine/internal/snapshot"
	"github.com/matchpulse/betengine/internal/stream"
	"github.com/matchpulse/betengine/pkg/config"
	"github.com/matchpulse/betengine/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Name resolver tables load once up front; the cron refresh keeps
	// them current afterwards.
	res := resolver.NewResolver(db)
	if err := res.Reload(); err != nil {
		logrus.Fatalf("Failed to load name resolver: %v", err)
	}

	var classifier *ml.Classifier
	if cfg.MLWeightsPath != "" {
		classifier, err = ml.NewClassifier(cfg.MLWeightsPath)
		if err != nil {
			logrus.Warnf("ML weights unavailable, classifier runs neutral: %v", err)
		}
	}
	if classifier == nil {
		classifier, _ = ml.NewClassifier("")
	}

	recorder := snapshot.NewRecorder(db)
	prefetcher := prefetch.NewPrefetcher(prefetch.NewGormStore(db), res, redisClient, cfg.ContextTTL(), cfg.DBTimeout())
	orch := orchestrator.New(&cfg.Engine, cfg.AnalysisWorkers, cfg.TopPicks, prefetcher, classifier, recorder)

	alerts, err := notifier.New(cfg.TelegramToken, cfg.TelegramChatID, cfg.AlertMinScore, cfg.AlertRatePerMin)
	if err != nil {
		logrus.Warnf("Telegram notifier disabled: %v", err)
	}

	hub := stream.NewHub()
	go hub.Run()

	scheduler := jobs.NewScheduler(db, res, cfg.SnapshotRetentionDays)
	if err := scheduler.Start(); err != nil {
		logrus.Fatalf("Failed to start background jobs: %v", err)
	}
	defer scheduler.Stop()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(db, redisClient)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, redisClient, orch, recorder, hub, alerts)

	wsHandler := handlers.NewWebSocketHandler(hub)
	router.GET("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
