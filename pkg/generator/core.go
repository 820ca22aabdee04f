package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiImageCore はリモート呼び出しの実行と応答の解析を担う基盤クラスです。
// 全ての呼び出しは共有のレートリミッターを通るのだ。
type GeminiImageCore struct {
	aiClient AIClient
	limiter  *rate.Limiter
}

// NewGeminiImageCore は依存関係を注入して GeminiImageCore を初期化します。
func NewGeminiImageCore(aiClient AIClient, limiter *rate.Limiter) (*GeminiImageCore, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	// limiter は nil を許容（流量制限なし）

	return &GeminiImageCore{
		aiClient: aiClient,
		limiter:  limiter,
	}, nil
}

// executeImageRequest は一回だけ生成を要求し、応答から画像を取り出すのだ。
func (c *GeminiImageCore) executeImageRequest(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*ImageOutput, error) {
	resp, err := c.call(ctx, model, parts, opts)
	if err != nil {
		return nil, err
	}
	return c.parseToResponse(resp)
}

// executeTextRequest は一回だけ要求し、応答のテキストを連結して返すのだ。
func (c *GeminiImageCore) executeTextRequest(ctx context.Context, model string, parts []*genai.Part) (string, error) {
	resp, err := c.call(ctx, model, parts, gemini.GenerateOptions{})
	if err != nil {
		return "", err
	}
	return c.parseToText(resp)
}

func (c *GeminiImageCore) call(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("レート制限の待機中に中断されました: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.aiClient.GenerateWithParts(ctx, model, parts, opts)
	if err != nil {
		return nil, fmt.Errorf("Gemini API 呼び出し失敗 (model: %s): %w", model, err)
	}
	slog.DebugContext(ctx, "Gemini API 応答を受信しました", "model", model, "duration", time.Since(start))
	return resp, nil
}
