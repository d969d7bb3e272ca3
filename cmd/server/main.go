package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rrsartgit/legalnexus/internal/auth"
	"github.com/rrsartgit/legalnexus/internal/config"
	"github.com/rrsartgit/legalnexus/internal/db"
	"github.com/rrsartgit/legalnexus/internal/handlers"
	"github.com/rrsartgit/legalnexus/internal/knowledge"
	"github.com/rrsartgit/legalnexus/internal/llm"
	"github.com/rrsartgit/legalnexus/internal/repository"
	"github.com/rrsartgit/legalnexus/internal/router"
	"github.com/rrsartgit/legalnexus/internal/services"
	"github.com/rrsartgit/legalnexus/internal/storage"
	"github.com/rrsartgit/legalnexus/internal/utils"
	"github.com/rrsartgit/legalnexus/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations("", cfg.DatabaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize object storage
	store, err := storage.NewS3Storage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", "error", err)
	}

	// Repositories
	docRepo := repository.NewDocumentRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	userRepo := repository.NewUserRepository(database)

	// LLM provider and retrieval
	provider := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.CompletionModel, cfg.EmbeddingModel, logger)
	retriever := knowledge.NewRetriever(cfg.KnowledgeBasePath, provider, logger)

	// Services
	docService := services.NewDocumentService(docRepo, taskRepo, store, logger)
	adviceService := services.NewAdviceService(retriever, provider, logger)

	// Auth
	verifier := auth.NewJWTVerifier([]byte(cfg.JWTSecret))

	// HTTP router
	handler := router.New(router.Deps{
		Documents: handlers.NewDocumentHandler(docService, logger),
		Advice:    handlers.NewAdviceHandler(adviceService, logger),
		Auth:      handlers.NewAuthHandler(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL, logger),
		Verifier:  verifier,
		Logger:    logger,
	})

	// Analysis worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	analysisWorker := worker.New(taskRepo, docRepo, store, logger, cfg.WorkerPollInterval)
	go analysisWorker.Run(workerCtx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
