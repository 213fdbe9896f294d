package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/app"
	"alfredoptarigan/skill-analyzer/internal/config"
	"alfredoptarigan/skill-analyzer/internal/handlers"
	"alfredoptarigan/skill-analyzer/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	zlog.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx := context.Background()

	components, err := app.Build(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize pipeline", zap.Error(err))
	}
	defer components.Close()

	analyzer, err := components.Analyzer()
	if err != nil {
		zlog.Fatal("❌ Failed to initialize Gemini client", zap.Error(err))
	}
	zlog.Info("✅ Services initialized successfully", zap.String("store", cfg.Database.Backend), zap.Bool("index", components.Index != nil))

	// Initialize Handlers
	extractHandler := handlers.NewExtractHandler(components.Extraction, cfg.Storage.MaxFileSize)
	analyzeHandler := handlers.NewAnalyzeHandler(analyzer)
	resultHandler := handlers.NewResultHandler(components.Extraction, components.Analyses)
	candidateHandler := handlers.NewCandidateHandler(components.Index)

	// Create Fiber app
	server := fiber.New(fiber.Config{
		AppName:      "Skill Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 15*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := server.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now(),
			"store":   cfg.Database.Backend,
			"index":   components.Index != nil,
			"lexicon": components.Lexicon.Len(),
		})
	})

	// API endpoints
	api.Post("/extract", extractHandler.HandleExtract)
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/extractions/:document_id", resultHandler.HandleGetExtraction)
	api.Get("/analyses/top", resultHandler.HandleGetTop)
	api.Get("/analyses/:document_id", resultHandler.HandleGetHistory)
	api.Get("/candidates", candidateHandler.HandleSearch)

	// Root route
	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Skill Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/extract",
				"POST /api/v1/analyze",
				"GET /api/v1/extractions/:document_id",
				"GET /api/v1/analyses/:document_id",
				"GET /api/v1/analyses/top",
				"GET /api/v1/candidates",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("🛑 Shutting down server...")
		if err := server.ShutdownWithTimeout(cfg.Gemini.Timeout); err != nil {
			zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("🚀 Server starting", zap.String("addr", addr))

	if err := server.Listen(addr); err != nil {
		zlog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}
