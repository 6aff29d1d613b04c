package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-hub/eventhub/internal/config"
	"github.com/campus-hub/eventhub/internal/connect"
	"github.com/campus-hub/eventhub/internal/container"
	"github.com/campus-hub/eventhub/internal/models"
	"github.com/campus-hub/eventhub/internal/routes"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting EventHub API server", "environment", cfg.Environment)

	loc, _ := cfg.Location()

	var mongoClient *mongo.Client
	if cfg.MongoDBURI != "" {
		mongoClient, err = connect.MongoDBConnect(cfg.MongoDBURI, cfg.MongoDBPassword)
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to MongoDB successfully", "database", cfg.MongoDBName)
	}

	var cld *cloudinary.Cloudinary
	if cfg.CloudinaryURL != "" || os.Getenv("CLOUDINARY_CLOUD_NAME") != "" {
		cld, err = connect.CloudinaryCredentials(cfg.CloudinaryURL)
		if err != nil {
			logger.Error("Failed to connect to Cloudinary", "error", err)
			os.Exit(1)
		}
		logger.Info("Cloudinary configured successfully")
	} else {
		logger.Warn("Cloudinary not configured, media uploads are disabled")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connect.RedisConnect(cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to Redis successfully")
	}

	appContainer, err := container.NewContainer(logger, cld, mongoClient, redisClient, container.Options{
		MongoDBName:    cfg.MongoDBName,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		AdminUsername:  cfg.AdminUsername,
		AdminPassword:  cfg.AdminPassword,
		Location:       loc,
		NotifySchedule: cfg.NotifySchedule,
		SecureCookies:  cfg.IsProduction(),
		AllowOrigins:   cfg.AllowOrigins,
	})
	if err != nil {
		logger.Error("Failed to build application container", "error", err)
		os.Exit(1)
	}

	if repo, ok := appContainer.Gateway.Store().(*models.MongodbRepo); ok {
		if err := repo.EnsureIndexes(context.Background()); err != nil {
			logger.Warn("Failed to ensure MongoDB indexes", "error", err)
		}
	}

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	if appContainer.Redis != nil {
		go appContainer.Redis.RelayUntilDone(relayCtx, appContainer.Hub)
	}

	if err := appContainer.Scheduler.Start(); err != nil {
		logger.Error("Failed to start notification scheduler", "error", err)
		os.Exit(1)
	}

	router := routes.SetupRoutes(appContainer)

	// WriteTimeout stays unset so event streams are not cut off.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	appContainer.Scheduler.Stop(ctx)
	stopRelay()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := connect.RedisDisconnect(); err != nil {
		logger.Error("Error disconnecting from Redis", "error", err)
	}
	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	// LoadConfig already rejected unparsable levels
	level, _ := cfg.SlogLevel()

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
