package asset

import (
	"context"
	"io"
)

// InputReader はローカルまたは GCS からの読み込み口です。
// remoteio.InputReader はこれを満たすのだ。
type InputReader interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// OutputWriter はローカルまたは GCS への書き込み口です。
// remoteio.OutputWriter はこれを満たすのだ。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// HTTPClient は、HTTPリクエストを実行し、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
