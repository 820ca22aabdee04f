package outpaint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/outpaint-kit/pkg/domain"
)

func TestStore(t *testing.T) {
	t.Run("依存関係と TTL は必須なのだ", func(t *testing.T) {
		_, err := NewStore(nil, nil, time.Minute)
		assert.Error(t, err)

		_, err = NewStore(newTestCoordinator(t, &mockGenerator{}), nil, 0)
		assert.Error(t, err)
	})

	t.Run("作成したセッションをIDで取り出せるのだ", func(t *testing.T) {
		st, err := NewStore(newTestCoordinator(t, &mockGenerator{}), &mockDescriber{}, time.Minute)
		require.NoError(t, err)

		s, err := st.Create()
		require.NoError(t, err)
		assert.Equal(t, 1, st.Len())

		got, err := st.Get(s.ID())
		require.NoError(t, err)
		assert.Same(t, s, got)

		st.Delete(s.ID())
		_, err = st.Get(s.ID())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("削除されたセッションの実行中のバッチはキャンセルされ、結果は破棄されるのだ", func(t *testing.T) {
		started := make(chan struct{}, len(domain.AllFormats))
		gen := &mockGenerator{
			generateFunc: func(ctx context.Context, req domain.GenerationRequest) (string, error) {
				started <- struct{}{}
				<-ctx.Done()
				return "", &domain.GenerationError{Format: req.Format, Err: ctx.Err()}
			},
		}
		st, err := NewStore(newTestCoordinator(t, gen), nil, time.Minute)
		require.NoError(t, err)
		s, err := st.Create()
		require.NoError(t, err)
		s.SetSource(*testSource(t))

		errCh := make(chan error, 1)
		go func() {
			_, err := s.Generate(context.Background(), []domain.TargetFormat{domain.Format1x1})
			errCh <- err
		}()

		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("generation did not start")
		}
		st.Delete(s.ID())

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, domain.ErrStaleBatch)
		case <-time.After(5 * time.Second):
			t.Fatal("batch was not cancelled after the session was deleted")
		}
		assert.Empty(t, s.Results())
		assert.Equal(t, 0, st.Len())
	})

	t.Run("期限切れのセッションは取り出せないのだ", func(t *testing.T) {
		st, err := NewStore(newTestCoordinator(t, &mockGenerator{}), nil, 20*time.Millisecond)
		require.NoError(t, err)

		s, err := st.Create()
		require.NoError(t, err)
		time.Sleep(40 * time.Millisecond)

		_, err = st.Get(s.ID())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
