package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// DefaultMaxUploadBytes はアップロードを受け付ける最大サイズなのだ。
const DefaultMaxUploadBytes = 20 << 20

// Loader は元画像をローカル、GCS、HTTP(S) から読み込むのだ。
type Loader struct {
	reader     InputReader
	httpClient HTTPClient
	maxBytes   int64
}

// NewLoader は依存関係を注入して Loader を初期化します。
func NewLoader(reader InputReader, httpClient HTTPClient) (*Loader, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &Loader{
		reader:     reader,
		httpClient: httpClient,
		maxBytes:   DefaultMaxUploadBytes,
	}, nil
}

// Load は URI から元画像を読み込み、画像であることを確認して SourceImage にするのだ。
func (l *Loader) Load(ctx context.Context, uri string) (*domain.SourceImage, error) {
	data, err := l.fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	src, err := NewSourceImage(filepath.Base(uri), data)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "元画像を読み込みました", "uri", uri, "mime_type", src.MimeType, "bytes", len(data))
	return src, nil
}

func (l *Loader) fetch(ctx context.Context, uri string) ([]byte, error) {
	if isRemoteHTTP(uri) {
		if safe, err := IsSafeURL(uri); err != nil || !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		data, err := l.httpClient.FetchBytes(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("画像の取得に失敗しました (%s): %w", uri, err)
		}
		if int64(len(data)) > l.maxBytes {
			return nil, domain.NewInvalidRequestError(fmt.Sprintf("画像が大きすぎます (%d bytes)", len(data)))
		}
		return data, nil
	}

	rc, err := l.reader.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (%s): %w", uri, err)
	}
	defer rc.Close()
	return ReadLimited(rc, l.maxBytes)
}

// ReadLimited は最大 maxBytes までを読み込み、超えた場合は InvalidRequestError を返すのだ。
func ReadLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.NewInvalidRequestError(fmt.Sprintf("画像が大きすぎます (上限 %d bytes)", maxBytes))
	}
	return data, nil
}

// NewSourceImage はバイト列を検証して SourceImage にします。
// 画像以外と、画素数が上限を超える画像は拒否するのだ。
func NewSourceImage(name string, data []byte) (*domain.SourceImage, error) {
	if len(data) == 0 {
		return nil, domain.NewInvalidRequestError("画像データが空です")
	}
	mimeType, err := imgutil.DetectImageMIME(data)
	if err != nil {
		return nil, err
	}
	if err := imgutil.CheckDimensions(data); err != nil {
		return nil, err
	}
	return &domain.SourceImage{
		Name:     name,
		MimeType: mimeType,
		DataURI:  imgutil.EncodeDataURI(mimeType, data),
	}, nil
}
