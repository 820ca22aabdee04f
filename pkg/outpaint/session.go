package outpaint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/generator"
	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// Session はアップロードされた元画像と現在の生成結果を保持する作業単位です。
// 生成ごとにトークンを発行し、古いバッチの結果は破棄するのだ。
// 並行に使って安全なのだ。
type Session struct {
	id          string
	coordinator *Coordinator
	describer   generator.Describer

	mu          sync.Mutex
	source      *domain.SourceImage
	description string
	results     []domain.GeneratedResult
	token       string
	cancel      context.CancelFunc
	lastOutcome *domain.BatchOutcome
}

// NewSession は Session を初期化します。describer は nil を許容（画像説明なし）なのだ。
func NewSession(coordinator *Coordinator, describer generator.Describer) (*Session, error) {
	if coordinator == nil {
		return nil, fmt.Errorf("coordinator is required")
	}
	return &Session{
		id:          uuid.NewString(),
		coordinator: coordinator,
		describer:   describer,
	}, nil
}

// ID はセッションの識別子なのだ。
func (s *Session) ID() string { return s.id }

// SetSource は元画像を差し替えます。結果と説明は消え、実行中のバッチはキャンセルされるのだ。
func (s *Session) SetSource(src domain.SourceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.source = &src
	s.description = ""
	s.results = nil
	s.lastOutcome = nil
	slog.Info("元画像を設定しました", "session_id", s.id, "name", src.Name, "mime_type", src.MimeType)
}

// Source は現在の元画像を返すのだ。
func (s *Session) Source() (domain.SourceImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return domain.SourceImage{}, false
	}
	return *s.source, true
}

// Description は現在の画像説明なのだ。
func (s *Session) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description
}

// SetDescription は画像説明を手動で上書きするのだ。次のバッチから使われるのだ。
func (s *Session) SetDescription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = strings.TrimSpace(text)
}

// Describe は元画像の説明を取得してセッションに保存します。
// 失敗しても生成を妨げないよう、エラーは記録するだけで空文字を返すのだ。
func (s *Session) Describe(ctx context.Context) string {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()

	if s.describer == nil || src == nil {
		return ""
	}

	text, err := s.describer.Describe(ctx, src.DataURI)
	if err != nil {
		slog.WarnContext(ctx, "画像説明に失敗しました。説明なしで続行します", "session_id", s.id, "error", err)
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 説明中に元画像が差し替えられていたら捨てる
	if s.source != src {
		return ""
	}
	s.description = text
	return text
}

// Generate は現在の元画像で新しいバッチを実行します。
// 前のバッチはキャンセルされ、完了時に自分が最新でなければ ErrStaleBatch を返すのだ。
func (s *Session) Generate(ctx context.Context, formats []domain.TargetFormat) (*domain.BatchOutcome, error) {
	s.mu.Lock()
	req := BatchRequest{Source: s.source, Formats: formats, ContextText: s.description}
	if _, err := validateBatch(req); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.cancelLocked()
	token := uuid.NewString()
	batchCtx, cancel := context.WithCancel(ctx)
	s.token = token
	s.cancel = cancel
	s.results = nil
	s.lastOutcome = nil
	s.mu.Unlock()
	defer cancel()

	req.BatchID = token
	outcome, err := s.coordinator.RunBatch(batchCtx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		slog.WarnContext(ctx, "古いバッチの結果を破棄しました", "session_id", s.id, "batch_id", token)
		return nil, domain.ErrStaleBatch
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}

	s.results = append([]domain.GeneratedResult(nil), outcome.Results...)
	s.lastOutcome = outcome
	return outcome, nil
}

// Results は現在の結果のコピーを返すのだ。
func (s *Session) Results() []domain.GeneratedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.GeneratedResult(nil), s.results...)
}

// LastOutcome は最後に完了したバッチの結果なのだ。
func (s *Session) LastOutcome() *domain.BatchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// Result は ID に一致する結果を返します。
func (s *Session) Result(id string) (domain.GeneratedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.GeneratedResult{}, fmt.Errorf("result %s: %w", id, domain.ErrNotFound)
	}
	return s.results[idx], nil
}

// Edit は一つの結果に編集を適用し、その画像データだけを差し替えます。
// baseVersion が負でなければ現在の版と一致しない場合に ErrStaleEdit を返すのだ。
// 編集中に他の編集が先に確定した場合も ErrStaleEdit なのだ。
// 編集中に結果そのものが入れ替わった場合は ErrNotFound なのだ。
func (s *Session) Edit(ctx context.Context, id string, baseVersion int, overlayDataURI, instruction string) (domain.GeneratedResult, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.GeneratedResult{}, fmt.Errorf("result %s: %w", id, domain.ErrNotFound)
	}
	target := s.results[idx]
	s.mu.Unlock()

	if baseVersion >= 0 && baseVersion != target.Version {
		return domain.GeneratedResult{}, fmt.Errorf("result %s (version %d, requested %d): %w", id, target.Version, baseVersion, domain.ErrStaleEdit)
	}

	imageData, err := s.coordinator.ApplyEdit(ctx, EditRequest{
		Target:         target,
		OverlayDataURI: overlayDataURI,
		Instruction:    instruction,
	})
	if err != nil {
		return domain.GeneratedResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.indexLocked(id)
	if idx < 0 {
		// 編集中に新しいバッチや元画像の差し替えで結果が入れ替わった
		return domain.GeneratedResult{}, fmt.Errorf("result %s was replaced during edit: %w", id, domain.ErrNotFound)
	}
	if s.results[idx].Version != target.Version {
		return domain.GeneratedResult{}, fmt.Errorf("result %s: %w", id, domain.ErrStaleEdit)
	}
	s.results[idx].ImageData = imageData
	s.results[idx].Version++
	return s.results[idx], nil
}

// Download は結果を PNG として返します。ファイル名はフォーマットから決まるのだ。
func (s *Session) Download(id string) (string, []byte, error) {
	res, err := s.Result(id)
	if err != nil {
		return "", nil, err
	}
	data, err := imgutil.ToPNG(res.ImageData)
	if err != nil {
		return "", nil, err
	}
	return res.Format.FileName(), data, nil
}

// Close は実行中のバッチをキャンセルするのだ。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Session) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.token = ""
}

func (s *Session) indexLocked(id string) int {
	for i, r := range s.results {
		if r.ID == id {
			return i
		}
	}
	return -1
}
