package domain

import "time"

// SourceImage はアップロードされた元画像です。生成後は変更されないのだ。
type SourceImage struct {
	Name     string // 元ファイル名または URI
	MimeType string
	DataURI  string
}

// GenerationRequest はリモート生成機能への単一の要求です。
type GenerationRequest struct {
	BaseImage string // data URI
	Prompt    string
	Format    TargetFormat
}

// Placement はキャンバス上に配置された元画像の矩形なのだ。
type Placement struct {
	X      int
	Y      int
	Width  int
	Height int
}

// CompositeImage は生成モデルに渡すマスク付きキャンバスです。
// 一回の生成要求の間だけ使われるのだ。
type CompositeImage struct {
	Format    TargetFormat
	Size      Size
	Placement Placement
	DataURI   string
}

// GeneratedResult は生成に成功したフォーマットごとの結果です。
// Version は編集が確定するたびに加算され、古い版に対する編集を拒否するのに使うのだ。
type GeneratedResult struct {
	ID        string       `json:"id"`
	Format    TargetFormat `json:"format"`
	ImageData string       `json:"imageData"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FormatStatus はバッチ内の各フォーマットの成否です。
type FormatStatus struct {
	Format   TargetFormat `json:"format"`
	OK       bool         `json:"ok"`
	ResultID string       `json:"resultId,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// BatchOutcome は一回の生成実行の結果なのだ。
// Results と Statuses はリクエスト順に並び、Results からは失敗分が除かれるのだ。
type BatchOutcome struct {
	BatchID  string            `json:"batchId"`
	Results  []GeneratedResult `json:"results"`
	Statuses []FormatStatus    `json:"statuses"`
	Partial  bool              `json:"partial"`
}

// Err は一部失敗のときに ErrPartialBatch を返すのだ。
func (o *BatchOutcome) Err() error {
	if o != nil && o.Partial {
		return ErrPartialBatch
	}
	return nil
}

// FailedFormats は失敗したフォーマットの一覧を返します。
func (o *BatchOutcome) FailedFormats() []TargetFormat {
	if o == nil {
		return nil
	}
	var failed []TargetFormat
	for _, s := range o.Statuses {
		if !s.OK {
			failed = append(failed, s.Format)
		}
	}
	return failed
}
