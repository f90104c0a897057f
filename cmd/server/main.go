package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/huddleai/huddle/internal/agents"
	"github.com/huddleai/huddle/internal/auth"
	"github.com/huddleai/huddle/internal/config"
	"github.com/huddleai/huddle/internal/crypto"
	"github.com/huddleai/huddle/internal/database"
	"github.com/huddleai/huddle/internal/directory"
	"github.com/huddleai/huddle/internal/events"
	"github.com/huddleai/huddle/internal/health"
	"github.com/huddleai/huddle/internal/meetings"
	"github.com/huddleai/huddle/internal/stream"
	"github.com/huddleai/huddle/internal/summarizer"
	"github.com/huddleai/huddle/internal/webhook"
	"github.com/huddleai/huddle/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	logger := worker.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if cfg.Env == "development" && cfg.SeedDevData {
		if err := database.SeedDevData(db); err != nil {
			log.Fatalf("failed to seed dev data: %v", err)
		}
	}

	var encryptor *crypto.Encryptor
	if cfg.URLEncryptionKey != "" {
		encryptor, err = crypto.NewEncryptor(cfg.URLEncryptionKey)
		if err != nil {
			log.Fatalf("failed to initialize URL encryption: %v", err)
		}
	}

	publisher, err := events.NewPublisher(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to create events publisher: %v", err)
	}
	defer publisher.Close()

	taskClient, err := worker.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to create task client: %v", err)
	}
	defer taskClient.Close()

	meetingStore := meetings.NewStore(db, encryptor)
	videoClient := stream.NewClient(cfg.StreamBaseURL, cfg.StreamAPIKey, cfg.StreamAPISecret)
	summaryClient := summarizer.NewClient(cfg.OpenAIAPIKey, "", cfg.SummaryModel, cfg.SummaryStyle)
	speakerDir := directory.NewStore(db)

	pipeline := worker.NewPipeline(logger, meetingStore, speakerDir, summaryClient, publisher)
	stopWorker, err := worker.Start(cfg, logger, pipeline)
	if err != nil {
		log.Fatalf("failed to start worker: %v", err)
	}
	defer stopWorker()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", gin.WrapF(health.Handler))

	router.POST("/api/webhook", webhook.Handler(&webhook.Deps{
		Logger:   logger,
		DB:       db,
		Meetings: meetingStore,
		Video:    videoClient,
		Enqueuer: taskClient,
		Events:   publisher,
	}))

	api := router.Group("/api/v1", auth.RequireToken(cfg.APIToken))
	meetings.RegisterRoutes(api, meetingStore)
	agents.RegisterRoutes(api, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err.Error())
	}
}
