package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dverbeek/callscribe/adapters/llm"
	"github.com/dverbeek/callscribe/adapters/mongo"
	"github.com/dverbeek/callscribe/adapters/stt"
	"github.com/dverbeek/callscribe/domain/repositories"
	"github.com/dverbeek/callscribe/internal/api"
	"github.com/dverbeek/callscribe/internal/config"
	"github.com/dverbeek/callscribe/internal/websocket"
	"github.com/dverbeek/callscribe/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	speechToText := buildSpeechToText(cfg, logger)
	extractor := buildExtractor(ctx, cfg, logger)
	archive := buildArchive(cfg, logger)

	// Initialize usecase services
	transcriber := usecase.NewTranscriber(speechToText, cfg.ExternalCallTimeout, logger)
	analyzer := usecase.NewAnalyzer(extractor, cfg.ExternalCallTimeout, logger)
	processor := usecase.NewProcessor(transcriber, analyzer, cfg.MaxConcurrentCalls, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(processor, archive, logger)

	// Initialize API routes
	api.InitRoutes(e, hub, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("stt_backend", cfg.STTBackend),
		zap.Bool("archive_enabled", archive != nil),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func buildSpeechToText(cfg *config.Config, logger *zap.Logger) repositories.SpeechToText {
	switch cfg.STTBackend {
	case config.STTBackendGoogle:
		return stt.NewGoogleSpeechToText(logger)
	case config.STTBackendWhisper:
		return stt.NewWhisperClient(cfg.WhisperEndpoint, cfg.WhisperAPIKey, cfg.WhisperModel, logger)
	default:
		logger.Warn("Using mock speech-to-text backend")
		return stt.NewMockSpeechToText(logger)
	}
}

func buildExtractor(ctx context.Context, cfg *config.Config, logger *zap.Logger) repositories.InsightExtractor {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using mock insight extractor")
		return llm.NewMockExtractor()
	}
	extractor, err := llm.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}
	return extractor
}

func buildArchive(cfg *config.Config, logger *zap.Logger) repositories.RecordingArchive {
	if cfg.MongoURI == "" {
		logger.Info("MONGODB_URI not set, recording archive disabled")
		return nil
	}
	client, err := mongo.NewClient(cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	return mongo.NewRecordingRepository(client.Database)
}
