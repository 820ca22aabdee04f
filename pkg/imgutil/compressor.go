package imgutil

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// CompressToJPEG は画像データを長辺 maxEdge 以下に縮小し、JPEG に再エンコードします。
// 画像説明のように解像度が不要な用途で転送量を抑えるためのものなのだ。
// maxEdge が 0 以下なら縮小しないのだ。合成と同じく EXIF の向きは適用しないのだ。
func CompressToJPEG(data []byte, maxEdge, quality int) ([]byte, error) {
	if err := CheckDimensions(data); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var out image.Image = img
	if b := img.Bounds(); maxEdge > 0 && (b.Dx() > maxEdge || b.Dy() > maxEdge) {
		out = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, out, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
