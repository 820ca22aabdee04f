package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDecode         = errors.New("画像をデコードできません")
	ErrInvalidRequest = errors.New("不正なリクエストです")
	ErrGeneration     = errors.New("画像生成に失敗しました")
	ErrAnalysis       = errors.New("画像解析に失敗しました")
	ErrPartialBatch   = errors.New("一部のフォーマットの生成に失敗しました")
	ErrStaleBatch     = errors.New("より新しい生成が開始されたため結果を破棄しました")
	ErrStaleEdit      = errors.New("編集対象が更新されています")
	ErrNotFound       = errors.New("対象が見つかりません")
)

// DecodeError はソース画像がラスタ画像として読めなかったことを表すのだ。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return ErrDecode.Error()
	}
	return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// InvalidRequestError はリモート呼び出し前に弾かれた入力エラーなのだ。
type InvalidRequestError struct {
	Reason string
}

// NewInvalidRequestError は理由付きの InvalidRequestError を返します。
func NewInvalidRequestError(reason string) *InvalidRequestError {
	return &InvalidRequestError{Reason: reason}
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, e.Reason)
}

func (e *InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

// GenerationError はリモート生成の失敗で、どのフォーマットの呼び出しだったかを保持するのだ。
type GenerationError struct {
	Format TargetFormat
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (format: %s): %v", ErrGeneration, e.Format, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// AnalysisError は画像説明の失敗です。呼び出し側では握りつぶされる前提なのだ。
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %v", ErrAnalysis, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysis }
