package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// GeminiGenerator は、アウトペイント生成(Generate)と
// 画像説明(Describe)の両方を担当する統合ジェネレーターです。
type GeminiGenerator struct {
	core        *GeminiImageCore
	imageModel  string
	visionModel string
	cache       ImageCacher
	expiration  time.Duration
	group       singleflight.Group
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(
	core *GeminiImageCore,
	imageModel string,
	visionModel string,
	cache ImageCacher,
	cacheTTL time.Duration,
) (*GeminiGenerator, error) {
	if core == nil {
		return nil, fmt.Errorf("core (GeminiImageCore) is required")
	}
	if imageModel == "" {
		return nil, fmt.Errorf("imageModel is required")
	}
	if visionModel == "" {
		visionModel = imageModel
	}
	// cache は nil を許容（キャッシュなし動作）

	return &GeminiGenerator{
		core:        core,
		imageModel:  imageModel,
		visionModel: visionModel,
		cache:       cache,
		expiration:  cacheTTL,
	}, nil
}

// Generate はベース画像とプロンプトから一枚生成するのだ。
// 失敗はすべてフォーマット付きの GenerationError になるのだ。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	start := time.Now()
	logger := slog.With("format", req.Format, "model", g.imageModel)

	imgPart, err := g.core.dataURIToPart(req.BaseImage)
	if err != nil {
		return "", &domain.GenerationError{Format: req.Format, Err: fmt.Errorf("ベース画像が不正です: %w", err)}
	}
	parts := []*genai.Part{imgPart, {Text: req.Prompt}}

	opts := gemini.GenerateOptions{AspectRatio: string(req.Format)}
	out, err := g.core.executeImageRequest(ctx, g.imageModel, parts, opts)
	if err != nil {
		return "", &domain.GenerationError{Format: req.Format, Err: err}
	}

	logger.InfoContext(ctx, "画像を生成しました", "mime_type", out.MimeType, "bytes", len(out.Data), "duration", time.Since(start))
	return imgutil.EncodeDataURI(out.MimeType, out.Data), nil
}

// Describe は画像の内容を説明するテキストを返すのだ。
// 同じ画像の同時要求は一回の呼び出しにまとめ、結果はキャッシュするのだ。
// 呼び出し元がキャンセルしても、相乗りしている他の呼び出し元には影響しないのだ。
func (g *GeminiGenerator) Describe(ctx context.Context, imageDataURI string) (string, error) {
	_, data, err := imgutil.DecodeDataURI(imageDataURI)
	if err != nil {
		return "", &domain.AnalysisError{Err: err}
	}

	sum := sha256.Sum256(data)
	key := cacheKeyDescription + hex.EncodeToString(sum[:])
	if g.cache != nil {
		if val, ok := g.cache.Get(key); ok {
			if text, ok := val.(string); ok {
				slog.DebugContext(ctx, "画像説明をキャッシュから取得しました", "key", key)
				return text, nil
			}
		}
	}

	// 共有の呼び出しは最初の呼び出し元のキャンセルに巻き込まれないよう、独立したコンテキストで行うのだ
	ch := g.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DescribeTimeout)
		defer cancel()

		text, err := g.describe(callCtx, data)
		if err != nil {
			return nil, err
		}
		if g.cache != nil {
			g.cache.Set(key, text, g.expiration)
		}
		return text, nil
	})

	select {
	case <-ctx.Done():
		return "", &domain.AnalysisError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return "", &domain.AnalysisError{Err: res.Err}
		}
		text := res.Val.(string)
		slog.InfoContext(ctx, "画像説明を取得しました", "model", g.visionModel, "shared", res.Shared, "length", len(text))
		return text, nil
	}
}

func (g *GeminiGenerator) describe(ctx context.Context, data []byte) (string, error) {
	finalData := data
	if UseImageCompression {
		if compressed, err := imgutil.CompressToJPEG(data, DescribeMaxEdge, ImageCompressionQuality); err == nil {
			finalData = compressed
		}
	}

	imgPart, err := g.core.toPart(finalData)
	if err != nil {
		return "", err
	}
	parts := []*genai.Part{imgPart, {Text: DescribeInstruction}}
	return g.core.executeTextRequest(ctx, g.visionModel, parts)
}
