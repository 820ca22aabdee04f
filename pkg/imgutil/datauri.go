package imgutil

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/outpaint-kit/pkg/domain"
)

const dataURIPrefix = "data:"

// EncodeDataURI は画像バイト列を base64 の data URI にするのだ。
func EncodeDataURI(mimeType string, data []byte) string {
	return dataURIPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI は data URI を MIME タイプとバイト列に分解します。
// base64 形式以外の data URI は扱わないのだ。
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return "", nil, &domain.DecodeError{Err: fmt.Errorf("data URI ではありません")}
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, dataURIPrefix), ",")
	if !ok {
		return "", nil, &domain.DecodeError{Err: fmt.Errorf("data URI の区切りがありません")}
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, &domain.DecodeError{Err: fmt.Errorf("base64 以外のエンコードは未対応です")}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, &domain.DecodeError{Err: fmt.Errorf("base64 デコード失敗: %w", err)}
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return mimeType, data, nil
}

// DetectImageMIME はバイト列の先頭から MIME タイプを判定し、画像以外を拒否するのだ。
func DetectImageMIME(data []byte) (string, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", domain.NewInvalidRequestError(fmt.Sprintf("画像ファイルではありません (content-type: %s)", mimeType))
	}
	return mimeType, nil
}
