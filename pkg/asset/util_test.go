package asset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"パブリックIP", "https://93.184.216.34/image.png", false},

		{"GCSスキーム (gs://)", "gs://my-bucket/path/to/image.png", true},
		{"不正なスキーム", "gopher://example.com", true},
		{"ループバック", "http://127.0.0.1/admin", true},
		{"プライベートIP (クラスA)", "http://10.255.255.254/metadata", true},
		{"リンクローカル", "http://169.254.169.254/latest/meta-data", true},
		{"名前解決できないドメイン", "http://this.should.not.exist.invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, err := IsSafeURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, safe)
				return
			}
			assert.NoError(t, err)
			assert.True(t, safe)
		})
	}
}

func TestResolveOutputPath(t *testing.T) {
	t.Run("ローカルパスを結合するのだ", func(t *testing.T) {
		got, err := ResolveOutputPath("output", "a.png")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("output", "a.png"), got)
	})

	t.Run("GCSのURIを結合するのだ", func(t *testing.T) {
		got, err := ResolveOutputPath("gs://bucket/out", "a.png")
		require.NoError(t, err)
		assert.Equal(t, "gs://bucket/out/a.png", got)
	})
}
