package imgutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	black = color.NRGBA{A: 255}
)

// solidImage は単色のテスト画像を作るのだ。
func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func testDataURI(t *testing.T, img image.Image) string {
	t.Helper()
	return EncodeDataURI("image/png", encodeTestPNG(t, img))
}

// pngHeader は IHDR だけを持つ PNG を作るのだ。画素データはないのでサイズは任意に宣言できるのだ。
func pngHeader(w, h uint32) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// jpegWithOrientation は EXIF の Orientation タグを埋め込んだ JPEG を作るのだ。
func jpegWithOrientation(t *testing.T, img image.Image, orientation uint16) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test jpeg: %v", err)
	}
	raw := buf.Bytes()

	exif := new(bytes.Buffer)
	exif.WriteString("Exif\x00\x00")
	exif.Write([]byte{'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08})
	_ = binary.Write(exif, binary.BigEndian, uint16(1))      // entries
	_ = binary.Write(exif, binary.BigEndian, uint16(0x0112)) // Orientation
	_ = binary.Write(exif, binary.BigEndian, uint16(3))      // SHORT
	_ = binary.Write(exif, binary.BigEndian, uint32(1))
	_ = binary.Write(exif, binary.BigEndian, orientation)
	_ = binary.Write(exif, binary.BigEndian, uint16(0))
	_ = binary.Write(exif, binary.BigEndian, uint32(0)) // next IFD

	out := new(bytes.Buffer)
	out.Write(raw[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(out, binary.BigEndian, uint16(exif.Len()+2))
	out.Write(exif.Bytes())
	out.Write(raw[2:])
	return out.Bytes()
}
