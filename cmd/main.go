package main

import (
	"context"
	"net/http"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"namecard-agent/handler"
	"namecard-agent/internal/config"
	"namecard-agent/internal/integrations/gemini"
	"namecard-agent/internal/integrations/line"
	"namecard-agent/internal/integrations/paramstore"
	"namecard-agent/internal/integrations/storage"
	"namecard-agent/internal/observability"
	"namecard-agent/internal/repository"
	"namecard-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}

	// ---- Configuration (read only here) ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		logger.Fatal("failed to create SSM client", zap.Error(err))
	}
	cfg, err := config.Load(ctx, ssmClient, os.Getenv("PARAM_PREFIX"))
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// ---- Clients ----
	cardStore, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.CardTable)
	if err != nil {
		logger.Fatal("failed to create card store", zap.Error(err))
	}

	uploader, err := storage.New(awss3.NewFromConfig(awsCfg), cfg.QRBucket, awsCfg.Region)
	if err != nil {
		logger.Fatal("failed to create storage client", zap.Error(err))
	}

	modelClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel))
	if err != nil {
		logger.Fatal("failed to create model client", zap.Error(err))
	}

	lineClient, err := line.NewClient(cfg.ChannelSecret, cfg.ChannelAccessToken)
	if err != nil {
		logger.Fatal("failed to create messaging client", zap.Error(err))
	}

	// ---- Services ----
	extractor, err := usecase.NewExtractor(modelClient)
	if err != nil {
		logger.Fatal("failed to create extractor", zap.Error(err))
	}
	queryEngine, err := usecase.NewQueryEngine(modelClient)
	if err != nil {
		logger.Fatal("failed to create query engine", zap.Error(err))
	}
	router, err := usecase.NewRouter(cardStore, extractor, queryEngine, lineClient, uploader, usecase.NewStateStore(), logger)
	if err != nil {
		logger.Fatal("failed to create conversation router", zap.Error(err))
	}

	metrics := observability.NewCollector("namecard")
	h, err := handler.NewHandler(lineClient, lineClient, router, logger, metrics)
	if err != nil {
		logger.Fatal("failed to create handler", zap.Error(err))
	}

	// ---- HTTP server ----
	mux := chi.NewRouter()
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(chimiddleware.Recoverer)
	mux.Post("/callback", h.Webhook)
	mux.Get("/health", h.Health)
	mux.Method(http.MethodGet, "/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
