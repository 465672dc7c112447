package main

import (
	"context"
	"log"

	"brandforge/internal/config"
	"brandforge/internal/pipeline"
	"brandforge/internal/renderer"
	"brandforge/internal/scraper"
	"brandforge/internal/strategist"
	"brandforge/internal/webui"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogLevel == "debug" {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	secrets, err := config.LoadSecrets()
	if err != nil {
		logger.Fatal("Missing required configuration", zap.Error(err))
	}

	ctx := context.Background()

	gemini, err := strategist.NewGeminiClient(ctx, secrets.GoogleAPIKey, cfg.Strategy, logger)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", zap.Error(err))
	}
	defer gemini.Close()

	extractor := scraper.NewClient(cfg.Scraper, secrets.ScrapingBeeKey, logger)
	visuals := renderer.NewClient(cfg.Renderer, secrets.GoogleAPIKey, logger)

	orch := pipeline.NewOrchestrator(extractor, gemini, visuals, cfg.Renderer.VideoEnabled, logger)
	server := webui.NewServer(pipeline.NewStore(), orch, logger)
	router := server.Routes()

	logger.Info("brandforge starting",
		zap.String("port", cfg.Port),
		zap.String("strategy_model", cfg.Strategy.Model),
		zap.String("image_model", cfg.Renderer.ImageModel),
		zap.Bool("video_enabled", cfg.Renderer.VideoEnabled))

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed to start", zap.Error(err))
	}
}
