package asset

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// Publisher は生成結果を PNG として保存先へ書き出すのだ。
type Publisher struct {
	writer OutputWriter
}

// NewPublisher は Publisher を初期化します。
func NewPublisher(writer OutputWriter) (*Publisher, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	return &Publisher{writer: writer}, nil
}

// Publish は各結果を <outputDir>/<ID>.png に書き出し、書き出したパスを返します。
// 一つでも失敗したらそこで止めるのだ。
func (p *Publisher) Publish(ctx context.Context, outputDir string, results []domain.GeneratedResult) ([]string, error) {
	paths := make([]string, 0, len(results))
	for _, res := range results {
		path, err := p.PublishOne(ctx, outputDir, res.ID+".png", res)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// PublishOne は一件をファイル名を指定して書き出すのだ。
func (p *Publisher) PublishOne(ctx context.Context, outputDir, fileName string, res domain.GeneratedResult) (string, error) {
	data, err := imgutil.ToPNG(res.ImageData)
	if err != nil {
		return "", fmt.Errorf("結果 %s の変換に失敗しました: %w", res.ID, err)
	}
	path, err := ResolveOutputPath(outputDir, fileName)
	if err != nil {
		return "", err
	}
	if err := p.writer.Write(ctx, path, bytes.NewReader(data), "image/png"); err != nil {
		return "", fmt.Errorf("画像の保存に失敗しました (%s): %w", path, err)
	}
	slog.InfoContext(ctx, "画像を保存しました", "path", path, "format", res.Format, "bytes", len(data))
	return path, nil
}
