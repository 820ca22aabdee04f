package asset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/outpaint-kit/pkg/domain"
)

func TestNewLoader(t *testing.T) {
	_, err := NewLoader(nil, &mockHTTPClient{})
	assert.Error(t, err)
	_, err = NewLoader(&mockReader{}, nil)
	assert.Error(t, err)
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	pngData := testPNG(t)

	t.Run("ローカルやGCSのパスはリーダーから読み込むのだ", func(t *testing.T) {
		reader := &mockReader{files: map[string][]byte{
			"photos/beach.png":        pngData,
			"gs://bucket/in/room.png": pngData,
		}}
		httpClient := &mockHTTPClient{}
		loader, err := NewLoader(reader, httpClient)
		require.NoError(t, err)

		for _, uri := range []string{"photos/beach.png", "gs://bucket/in/room.png"} {
			src, err := loader.Load(ctx, uri)
			require.NoError(t, err)
			assert.Equal(t, "image/png", src.MimeType)
			assert.True(t, strings.HasPrefix(src.DataURI, "data:image/png;base64,"))
		}
		assert.Equal(t, "beach.png", mustLoad(t, loader, "photos/beach.png").Name)
		assert.False(t, httpClient.called)
	})

	t.Run("公開URLはHTTPクライアントで取得するのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{data: pngData}
		loader, _ := NewLoader(&mockReader{}, httpClient)

		src, err := loader.Load(ctx, "https://93.184.216.34/photo.png")
		require.NoError(t, err)
		assert.True(t, httpClient.called)
		assert.Equal(t, "photo.png", src.Name)
	})

	t.Run("プライベートなURLは取得前に拒否するのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{data: pngData}
		loader, _ := NewLoader(&mockReader{}, httpClient)

		_, err := loader.Load(ctx, "http://127.0.0.1/secret.png")
		assert.Error(t, err)
		assert.False(t, httpClient.called)
	})

	t.Run("画像以外のファイルはInvalidRequestErrorなのだ", func(t *testing.T) {
		reader := &mockReader{files: map[string][]byte{"notes.txt": []byte("hello")}}
		loader, _ := NewLoader(reader, &mockHTTPClient{})

		_, err := loader.Load(ctx, "notes.txt")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("存在しないファイルはエラーなのだ", func(t *testing.T) {
		loader, _ := NewLoader(&mockReader{}, &mockHTTPClient{})
		_, err := loader.Load(ctx, "missing.png")
		assert.Error(t, err)
	})

	t.Run("画素数が上限を超える画像は読み込み時に拒否するのだ", func(t *testing.T) {
		reader := &mockReader{files: map[string][]byte{"huge.png": pngHeader(20000, 20000)}}
		loader, _ := NewLoader(reader, &mockHTTPClient{})

		_, err := loader.Load(ctx, "huge.png")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("上限を超えるファイルは拒否するのだ", func(t *testing.T) {
		reader := &mockReader{files: map[string][]byte{"big.png": pngData}}
		loader, _ := NewLoader(reader, &mockHTTPClient{})
		loader.maxBytes = 10

		_, err := loader.Load(ctx, "big.png")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestNewSourceImage(t *testing.T) {
	t.Run("空データは拒否するのだ", func(t *testing.T) {
		_, err := NewSourceImage("x.png", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("画像はdata URIになるのだ", func(t *testing.T) {
		src, err := NewSourceImage("x.png", testPNG(t))
		require.NoError(t, err)
		assert.Equal(t, "x.png", src.Name)
		assert.Equal(t, "image/png", src.MimeType)
	})

	t.Run("画素数が上限を超える画像は小さなファイルでも拒否するのだ", func(t *testing.T) {
		data := pngHeader(20000, 20000)
		require.Less(t, len(data), 100)

		_, err := NewSourceImage("huge.png", data)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func mustLoad(t *testing.T, l *Loader, uri string) *domain.SourceImage {
	t.Helper()
	src, err := l.Load(context.Background(), uri)
	require.NoError(t, err)
	return src
}
