package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/outpaint-kit/internal/config"
	"github.com/shouni/outpaint-kit/pkg/asset"
	"github.com/shouni/outpaint-kit/pkg/generator"
	"github.com/shouni/outpaint-kit/pkg/outpaint"
)

// BuildAppContext は設定から全ての依存関係を組み立てるのだ。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	aiClient, err := InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	capability, err := InitializeGenerator(cfg, aiClient)
	if err != nil {
		return nil, err
	}

	coordinator, err := outpaint.NewCoordinator(capability, cfg.MaxConcurrency)
	if err != nil {
		return nil, fmt.Errorf("Coordinatorの初期化に失敗したのだ: %w", err)
	}

	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.InputReader()
	if err != nil {
		return nil, fmt.Errorf("InputReaderの取得に失敗しました: %w", err)
	}
	writer, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, fmt.Errorf("OutputWriterの取得に失敗しました: %w", err)
	}

	loader, err := asset.NewLoader(reader, asset.NewGuardedHTTPClient(cfg.HTTPTimeout))
	if err != nil {
		return nil, err
	}
	publisher, err := asset.NewPublisher(writer)
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Config:      cfg,
		Options:     cfg.Options,
		Capability:  capability,
		Coordinator: coordinator,
		Loader:      loader,
		Publisher:   publisher,
	}, nil
}

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (generator.AIClient, error) {
	const defaultGeminiTemperature = float32(0.4)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeGenerator は GeminiGenerator を初期化します。
func InitializeGenerator(cfg *config.Config, aiClient generator.AIClient) (*generator.GeminiGenerator, error) {
	core, err := generator.NewGeminiImageCore(aiClient, NewLimiter(cfg))
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCoreの初期化に失敗しました: %w", err)
	}

	describeCache := cache.New(cfg.DescribeCacheTTL, 2*cfg.DescribeCacheTTL)
	gen, err := generator.NewGeminiGenerator(core, cfg.GeminiImageModel, cfg.GeminiVisionModel, describeCache, cfg.DescribeCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("GeminiGeneratorの初期化に失敗したのだ: %w", err)
	}
	return gen, nil
}

// NewLimiter は設定からレートリミッターを作るのだ。間隔が 0 なら nil（制限なし）なのだ。
func NewLimiter(cfg *config.Config) *rate.Limiter {
	if cfg.RateInterval <= 0 {
		return nil
	}
	slog.Debug("レート制限を有効にしました", "interval", cfg.RateInterval, "burst", cfg.RateBurst)
	return rate.NewLimiter(rate.Every(cfg.RateInterval), cfg.RateBurst)
}
