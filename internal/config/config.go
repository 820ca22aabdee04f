package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultImageModel       = "gemini-3-pro-image-preview"
	DefaultVisionModel      = "gemini-3-flash-preview"
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultRateInterval     = 2 * time.Second
	DefaultRateBurst        = 2
	DefaultMaxConcurrency   = 4
	DefaultListenAddr       = ":8080"
	DefaultSessionTTL       = time.Hour
	DefaultDescribeCacheTTL = 30 * time.Minute
	DefaultOutputDir        = "output"
	DefaultFormats          = "1:1,9:16,16:9"
)

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey      string
	GeminiImageModel  string
	GeminiVisionModel string

	HTTPTimeout      time.Duration
	RateInterval     time.Duration // 0 なら流量制限なし
	RateBurst        int
	MaxConcurrency   int
	ListenAddr       string
	SessionTTL       time.Duration
	DescribeCacheTTL time.Duration

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	Input      string // --input: 元画像（ローカル / gs:// / https://）
	OutputDir  string // --output-dir
	Formats    string // --formats: カンマ区切り or all
	Context    string // --context: 画像説明を手動で与える
	NoDescribe bool   // --no-describe

	// 編集用
	Overlay     string // --overlay
	Format      string // --format
	Instruction string // --instruction
	OutputFile  string // --output-file
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:      envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiImageModel:  envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		GeminiVisionModel: envutil.GetEnv("GEMINI_MODEL", DefaultVisionModel),
		HTTPTimeout:       getDuration("OUTPAINT_HTTP_TIMEOUT", DefaultHTTPTimeout),
		RateInterval:      getDuration("OUTPAINT_RATE_INTERVAL", DefaultRateInterval),
		RateBurst:         getInt("OUTPAINT_RATE_BURST", DefaultRateBurst),
		MaxConcurrency:    getInt("OUTPAINT_MAX_CONCURRENCY", DefaultMaxConcurrency),
		ListenAddr:        envutil.GetEnv("OUTPAINT_LISTEN_ADDR", DefaultListenAddr),
		SessionTTL:        getDuration("OUTPAINT_SESSION_TTL", DefaultSessionTTL),
		DescribeCacheTTL:  getDuration("OUTPAINT_DESCRIBE_CACHE_TTL", DefaultDescribeCacheTTL),
	}
}

// Validate は必須項目と値の範囲を確認するのだ。
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	if c.GeminiImageModel == "" {
		return fmt.Errorf("画像生成モデル名が空なのだ")
	}
	if c.RateInterval < 0 {
		return fmt.Errorf("レート制限の間隔は0以上である必要があるのだ: %s", c.RateInterval)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("レート制限のバーストは1以上である必要があるのだ: %d", c.RateBurst)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("セッションTTLは正の値である必要があるのだ: %s", c.SessionTTL)
	}
	return nil
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数の値が不正なためデフォルト値を使います", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("環境変数の値が不正なためデフォルト値を使います", "key", key, "value", raw, "default", def)
		return def
	}
	return n
}
