package main

import (
	"context"

	"github.com/TuckerBrewer12/ScanScorecards/internal/store"
	"github.com/TuckerBrewer12/ScanScorecards/pkg/vision"
)

func initStore(ctx context.Context) (store.Store, error) {
	return store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

func initVision() (vision.Client, error) {
	return vision.NewClient(vision.Config{
		Provider:          cfg.Vision.Provider,
		AnthropicKey:      cfg.Vision.AnthropicKey,
		AnthropicModel:    cfg.Vision.AnthropicModel,
		GeminiKey:         cfg.Vision.GeminiKey,
		GeminiModel:       cfg.Vision.GeminiModel,
		MaxTokens:         cfg.Vision.MaxTokens,
		RequestsPerSecond: cfg.Vision.RequestsPerSecond,
	})
}
