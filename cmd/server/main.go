package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"surveyflow/internal/cache"
	"surveyflow/internal/config"
	"surveyflow/internal/events"
	"surveyflow/internal/logger"
	"surveyflow/internal/repository"
	"surveyflow/internal/service"
	"surveyflow/internal/storage"
	"surveyflow/internal/transport/rest"
	"surveyflow/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log.Level, cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		zapLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		zapLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	zapLogger.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	db := mongoClient.Database(cfg.Mongo.Database)
	repository.EnsureIndexes(ctx, db, zapLogger)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		zapLogger.Fatal("Failed to ping Redis", zap.Error(err))
	}
	zapLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Blob store for question videos; uploads answer 503 without it
	var videoStore storage.VideoStore
	if cfg.Minio.Enabled() {
		minioClient, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			zapLogger.Fatal("Failed to create MinIO client", zap.Error(err))
		}
		if err := storage.EnsureBucket(ctx, minioClient, cfg.Minio.Bucket); err != nil {
			zapLogger.Fatal("Failed to prepare video bucket", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
		}
		videoStore = storage.NewMinioStore(minioClient, cfg.Minio, zapLogger)
		zapLogger.Info("Video storage ready", zap.String("endpoint", cfg.Minio.Endpoint), zap.String("bucket", cfg.Minio.Bucket))
	} else {
		zapLogger.Warn("MINIO_ENDPOINT not set, video uploads disabled")
	}

	// Submission events
	publisher := events.NewNoopPublisher()
	if cfg.RabbitMQ.Enabled() {
		publisher, err = events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
	} else {
		zapLogger.Warn("RABBITMQ_URL not set, submission events are not published")
	}
	defer publisher.Close()

	wsHub := ws.NewHub(zapLogger)
	defer wsHub.Stop()

	// Initialize repositories
	surveyRepo := repository.NewSurveyRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	userRepo := repository.NewUserRepo(db)

	// Initialize caches
	surveyCache := cache.NewSurveyCache(rdb, cfg.Redis.SurveyTTL)
	draftCache := cache.NewFormStateCache(rdb, cfg.Redis.DraftTTL)

	// Initialize services
	authSvc := service.NewAuthService(cfg.Auth, userRepo, zapLogger)
	surveySvc := service.NewSurveyService(surveyRepo, responseRepo, surveyCache, zapLogger)
	if videoStore != nil {
		surveySvc.SetVideoStore(videoStore)
	}
	formSvc := service.NewFormService(surveySvc, responseRepo, draftCache, publisher, zapLogger)
	reviewSvc := service.NewReviewService(surveySvc, responseRepo, userRepo, zapLogger)
	videoSvc := service.NewVideoService(surveySvc, videoStore, zapLogger)

	// wsHub implements service.Broadcaster
	surveySvc.SetBroadcaster(wsHub)
	formSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		App:           cfg.App,
		Logger:        zapLogger,
		Mongo:         mongoClient,
		AuthService:   authSvc,
		SurveyService: surveySvc,
		FormService:   formSvc,
		ReviewService: reviewSvc,
		VideoService:  videoSvc,
		WSHub:         wsHub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}
