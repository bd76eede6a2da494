package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/config"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/handler"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/middleware"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/pkg/logger"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/service"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded",
		"backend", cfg.LLM.Backend,
		"model", cfg.LLM.Model,
	)

	// Optional archive for uploaded source documents
	var archiveSvc *service.ArchiveService
	if cfg.Minio.Enabled {
		archiveSvc, err = service.NewArchiveService(&cfg.Minio)
		if err != nil {
			slog.Error("failed to initialize archive service", "error", err)
			os.Exit(1)
		}
		if err := archiveSvc.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
	}

	llmSvc := service.NewLLMService(&cfg.LLM)
	engine := summarizer.NewEngine(llmSvc, cfg.LLM.Model)

	service.InitAnalysisStore(&cfg.Store)

	analyzeHandler := handler.NewAnalyzeHandler(engine, &cfg.Pipeline)
	documentHandler := handler.NewDocumentHandler(service.NewPDFExtractor(), archiveSvc, engine, &cfg.Pipeline)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/analyze", analyzeHandler.Analyze)
		api.POST("/documents/upload", documentHandler.Upload)
		api.GET("/documents", documentHandler.List)

		docs := api.Group("/documents")
		docs.Use(middleware.DocumentContext())
		{
			docs.GET("/:id", documentHandler.Get)
			docs.GET("/:id/status", documentHandler.GetStatus)
			docs.DELETE("/:id", documentHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
		// Synchronous analysis waits on chunked model calls, so write
		// timeouts are generous.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
