package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"platochef/internal/api"
	"platochef/internal/config"
	"platochef/internal/platform/anthropic"
	"platochef/internal/platform/gemini"
	"platochef/internal/platform/openai"
	"platochef/internal/vision"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	client, err := newVisionClient(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("error creating %s client: %w", cfg.Provider, err))
	}

	handler := api.NewHandler(vision.NewPipeline(client))

	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/analyze", handler.Analyze)
	r.POST("/analysis/scale", handler.ScaleIngredients)
	r.POST("/analysis/recipe-text", handler.ExportRecipe)
	r.POST("/analysis/shopping-list", handler.ExportShoppingList)
	r.Run(cfg.ListenAddr)
}

// newVisionClient selects the provider implementation from configuration.
// All providers satisfy the same contract; nothing downstream branches on
// the choice.
func newVisionClient(ctx context.Context, cfg *config.Config) (vision.Client, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewClient(cfg)
	case config.ProviderOpenAI:
		return openai.NewClient(cfg)
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
