package outpaint

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/generator"
	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// BatchRequest は一回の生成実行の入力です。
type BatchRequest struct {
	BatchID     string // 空なら自動採番するのだ
	Source      *domain.SourceImage
	Formats     []domain.TargetFormat
	ContextText string
}

// EditRequest は生成済み画像一枚への編集要求です。
type EditRequest struct {
	Target         domain.GeneratedResult
	OverlayDataURI string // 対象画像にブラシ跡を重ねたもの
	Instruction    string
}

// Coordinator はフォーマットごとの合成と生成を束ねるオーケストレーターなのだ。
type Coordinator struct {
	generator      generator.ImageGenerator
	maxConcurrency int
	now            func() time.Time
}

// NewCoordinator は Coordinator を初期化します。
// maxConcurrency が 0 以下なら全フォーマットを同時に走らせるのだ。
func NewCoordinator(gen generator.ImageGenerator, maxConcurrency int) (*Coordinator, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator (ImageGenerator) is required")
	}
	return &Coordinator{
		generator:      gen,
		maxConcurrency: maxConcurrency,
		now:            time.Now,
	}, nil
}

// validateBatch はリモート呼び出し前に入力を検証し、重複を除いたフォーマット一覧を返すのだ。
func validateBatch(req BatchRequest) ([]domain.TargetFormat, error) {
	if req.Source == nil || req.Source.DataURI == "" {
		return nil, domain.NewInvalidRequestError("元画像がありません")
	}
	if len(req.Formats) == 0 {
		return nil, domain.NewInvalidRequestError("フォーマットが選択されていません")
	}

	seen := make(map[domain.TargetFormat]bool, len(req.Formats))
	formats := make([]domain.TargetFormat, 0, len(req.Formats))
	for _, f := range req.Formats {
		if !f.Valid() {
			return nil, domain.NewInvalidRequestError(fmt.Sprintf("未対応のフォーマットです: %q", f))
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// RunBatch は選択された全フォーマットの生成を並行に実行し、全ての完了を待つのだ。
// 個々の失敗は他のフォーマットに影響せず、結果から除かれて Statuses に記録されるのだ。
func (c *Coordinator) RunBatch(ctx context.Context, req BatchRequest) (*domain.BatchOutcome, error) {
	formats, err := validateBatch(req)
	if err != nil {
		return nil, err
	}

	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}
	prompt := BuildOutpaintPrompt(req.ContextText)
	stamp := c.now().UnixMilli()
	start := time.Now()

	slog.InfoContext(ctx, "バッチ生成を開始します", "batch_id", batchID, "formats", len(formats), "has_context", req.ContextText != "")

	results := make([]*domain.GeneratedResult, len(formats))
	statuses := make([]domain.FormatStatus, len(formats))

	// 元画像はバッチごとに一度だけデコードし、全フォーマットで共有するのだ
	src, decodeErr := imgutil.DecodeImage(req.Source.DataURI)
	if decodeErr != nil {
		slog.WarnContext(ctx, "元画像をデコードできませんでした", "batch_id", batchID, "error", decodeErr)
	}

	// 一つの失敗で兄弟をキャンセルしないよう、WithContext を使わず常に nil を返すのだ
	var eg errgroup.Group
	if c.maxConcurrency > 0 {
		eg.SetLimit(c.maxConcurrency)
	}

	for i, format := range formats {
		eg.Go(func() error {
			logger := slog.With("batch_id", batchID, "format", format, "index", i)
			itemStart := time.Now()

			err := decodeErr
			var res *domain.GeneratedResult
			if err == nil {
				res, err = c.runPipeline(ctx, src, format, prompt)
			}
			if err != nil {
				logger.WarnContext(ctx, "フォーマットの生成に失敗しました", "error", err, "duration", time.Since(itemStart))
				statuses[i] = domain.FormatStatus{Format: format, OK: false, Error: err.Error()}
				return nil
			}

			res.ID = fmt.Sprintf("%s-%d-%d", format.Slug(), stamp, i)
			res.CreatedAt = c.now()
			results[i] = res
			statuses[i] = domain.FormatStatus{Format: format, OK: true, ResultID: res.ID}
			logger.InfoContext(ctx, "フォーマットの生成が完了しました", "result_id", res.ID, "duration", time.Since(itemStart))
			return nil
		})
	}
	_ = eg.Wait()

	outcome := &domain.BatchOutcome{
		BatchID:  batchID,
		Results:  make([]domain.GeneratedResult, 0, len(formats)),
		Statuses: statuses,
	}
	for _, r := range results {
		if r != nil {
			outcome.Results = append(outcome.Results, *r)
		}
	}
	outcome.Partial = len(outcome.Results) < len(formats)

	if outcome.Partial {
		slog.WarnContext(ctx, "一部のフォーマットの生成に失敗しました",
			"batch_id", batchID,
			"succeeded", len(outcome.Results),
			"requested", len(formats),
			"failed_formats", outcome.FailedFormats(),
			"duration", time.Since(start))
	} else {
		slog.InfoContext(ctx, "バッチ生成が完了しました", "batch_id", batchID, "succeeded", len(outcome.Results), "duration", time.Since(start))
	}
	return outcome, nil
}

// runPipeline は一フォーマット分の合成と生成を行うのだ。
func (c *Coordinator) runPipeline(ctx context.Context, src image.Image, format domain.TargetFormat, prompt string) (*domain.GeneratedResult, error) {
	composite, err := imgutil.ComposeImage(ctx, src, format)
	if err != nil {
		return nil, err
	}

	imageData, err := c.generator.Generate(ctx, domain.GenerationRequest{
		BaseImage: composite.DataURI,
		Prompt:    prompt,
		Format:    format,
	})
	if err != nil {
		return nil, err
	}
	return &domain.GeneratedResult{Format: format, ImageData: imageData}, nil
}

// ApplyEdit はオーバーレイ画像をベースに一回だけ生成を要求し、新しい画像データを返します。
// 結果の差し替えは呼び出し側の責務なのだ。
func (c *Coordinator) ApplyEdit(ctx context.Context, req EditRequest) (string, error) {
	if strings.TrimSpace(req.Instruction) == "" {
		return "", domain.NewInvalidRequestError("編集の指示が空です")
	}
	if req.OverlayDataURI == "" {
		return "", domain.NewInvalidRequestError("オーバーレイ画像がありません")
	}
	if _, err := imgutil.DecodeImage(req.OverlayDataURI); err != nil {
		return "", err
	}

	start := time.Now()
	imageData, err := c.generator.Generate(ctx, domain.GenerationRequest{
		BaseImage: req.OverlayDataURI,
		Prompt:    BuildEditPrompt(req.Instruction),
		Format:    req.Target.Format,
	})
	if err != nil {
		slog.WarnContext(ctx, "編集の生成に失敗しました", "result_id", req.Target.ID, "error", err)
		return "", err
	}

	slog.InfoContext(ctx, "編集が完了しました", "result_id", req.Target.ID, "format", req.Target.Format, "duration", time.Since(start))
	return imageData, nil
}
