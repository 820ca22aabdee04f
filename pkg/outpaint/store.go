package outpaint

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/generator"
)

// Store はセッションを TTL 付きでメモリに保持するのだ。
// 期限切れのセッションは実行中のバッチごと破棄されるのだ。
type Store struct {
	coordinator *Coordinator
	describer   generator.Describer
	sessions    *cache.Cache
	ttl         time.Duration
}

// NewStore は Store を初期化します。
func NewStore(coordinator *Coordinator, describer generator.Describer, ttl time.Duration) (*Store, error) {
	if coordinator == nil {
		return nil, fmt.Errorf("coordinator is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}

	sessions := cache.New(ttl, ttl/2)
	sessions.OnEvicted(func(id string, v any) {
		if s, ok := v.(*Session); ok {
			s.Close()
		}
		slog.Info("セッションを破棄しました", "session_id", id)
	})

	return &Store{
		coordinator: coordinator,
		describer:   describer,
		sessions:    sessions,
		ttl:         ttl,
	}, nil
}

// Create は新しいセッションを作って登録するのだ。
func (st *Store) Create() (*Session, error) {
	s, err := NewSession(st.coordinator, st.describer)
	if err != nil {
		return nil, err
	}
	st.sessions.Set(s.ID(), s, cache.DefaultExpiration)
	return s, nil
}

// Get はセッションを取り出し、有効期限を延長するのだ。
func (st *Store) Get(id string) (*Session, error) {
	v, ok := st.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	s := v.(*Session)
	st.sessions.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete はセッションを明示的に破棄するのだ。
func (st *Store) Delete(id string) {
	st.sessions.Delete(id)
}

// Len は保持しているセッション数なのだ。
func (st *Store) Len() int {
	return st.sessions.ItemCount()
}
