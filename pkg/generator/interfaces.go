package generator

import (
	"context"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"

	"github.com/shouni/outpaint-kit/pkg/domain"
)

// AIClient は Gemini へのマルチパート要求だけを切り出したインターフェースです。
// go-gemini-client の GenerativeModel はこれを満たすのだ。
type AIClient interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// ImageGenerator はベース画像とプロンプトから画像を一枚生成する機能です。
type ImageGenerator interface {
	// Generate は生成結果を data URI で返します。リトライはしないのだ。
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// Describer は画像の内容をテキストで説明する機能です。
type Describer interface {
	Describe(ctx context.Context, imageDataURI string) (string, error)
}

// Capability はオーケストレーション層が依存するリモート機能の全体なのだ。
type Capability interface {
	ImageGenerator
	Describer
}

// ImageCacher は、画像説明をキャッシュするためのインターフェースです。
type ImageCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}
