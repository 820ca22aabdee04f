package imgutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/shouni/outpaint-kit/pkg/domain"
)

// SentinelColor は「生成で埋める領域」を示す塗りつぶし色なのだ。
var SentinelColor color.Color = color.NRGBA{R: 0, G: 0, B: 0, A: 255}

// ComputePlacement は元画像をキャンバスに contain で収めたときの矩形を返します。
// 比率は min(W/w, H/h) で、余白は左右と上下で均等になるのだ。
func ComputePlacement(srcW, srcH, dstW, dstH int) domain.Placement {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return domain.Placement{}
	}
	ratio := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))

	pw := int(math.Round(float64(srcW) * ratio))
	ph := int(math.Round(float64(srcH) * ratio))
	pw = min(max(pw, 1), dstW)
	ph = min(max(ph, 1), dstH)

	return domain.Placement{
		X:      (dstW - pw) / 2,
		Y:      (dstH - ph) / 2,
		Width:  pw,
		Height: ph,
	}
}

// MaxSourcePixels は受け付ける画像の最大画素数なのだ。
const MaxSourcePixels = 50_000_000

// CheckDimensions はヘッダーだけを読んで画像サイズを確認するのだ。
// 画素数が MaxSourcePixels を超える画像は InvalidRequestError なのだ。
func CheckDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return &domain.DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return &domain.DecodeError{Err: fmt.Errorf("画像サイズが不正です: %dx%d", cfg.Width, cfg.Height)}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return domain.NewInvalidRequestError(fmt.Sprintf("画像の画素数が大きすぎます: %dx%d", cfg.Width, cfg.Height))
	}
	return nil
}

// DecodeImage は data URI を画像としてデコードするのだ。
// EXIF の向きは適用せず、画素をそのまま使うのだ。
func DecodeImage(dataURI string) (image.Image, error) {
	_, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	if err := CheckDimensions(data); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	return img, nil
}

// EncodePNG は画像を PNG の data URI にするのだ。
func EncodePNG(img image.Image) (string, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("PNGエンコード失敗: %w", err)
	}
	return EncodeDataURI("image/png", buf.Bytes()), nil
}

// BuildComposite は指定フォーマットのキャンバスを黒で塗り、中央に元画像を配置した画像を作ります。
// 同じ入力からは常に同じピクセル列が得られるのだ。
func BuildComposite(ctx context.Context, source domain.SourceImage, format domain.TargetFormat) (*domain.CompositeImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := DecodeImage(source.DataURI)
	if err != nil {
		return nil, err
	}
	return ComposeImage(ctx, src, format)
}

// ComposeImage はデコード済みの元画像から BuildComposite と同じキャンバスを作るのだ。
// バッチでは元画像を一度だけデコードして各フォーマットで共有するのだ。
func ComposeImage(ctx context.Context, src image.Image, format domain.TargetFormat) (*domain.CompositeImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := format.Dimensions()
	bounds := src.Bounds()
	placement := ComputePlacement(bounds.Dx(), bounds.Dy(), size.Width, size.Height)
	if placement.Width == 0 {
		return nil, &domain.DecodeError{Err: fmt.Errorf("画像サイズが不正です: %dx%d", bounds.Dx(), bounds.Dy())}
	}

	canvas := imaging.New(size.Width, size.Height, SentinelColor)
	scaled := imaging.Resize(src, placement.Width, placement.Height, imaging.Lanczos)
	canvas = imaging.Overlay(canvas, scaled, image.Pt(placement.X, placement.Y), 1.0)

	uri, err := EncodePNG(canvas)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "合成キャンバスを作成しました",
		"format", format,
		"source_size", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		"canvas_size", fmt.Sprintf("%dx%d", size.Width, size.Height),
		"placement", placement,
	)

	return &domain.CompositeImage{
		Format:    format,
		Size:      size,
		Placement: placement,
		DataURI:   uri,
	}, nil
}

// ToPNG は data URI の画像を PNG のバイト列にするのだ。すでに PNG ならそのまま返すのだ。
func ToPNG(dataURI string) ([]byte, error) {
	mimeType, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	if mimeType == "image/png" {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("PNGエンコード失敗: %w", err)
	}
	return buf.Bytes(), nil
}
