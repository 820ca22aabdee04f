package outpaint

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// --- Mocks ---

type mockGenerator struct {
	mu           sync.Mutex
	generateFunc func(ctx context.Context, req domain.GenerationRequest) (string, error)
	requests     []domain.GenerationRequest
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return "data:image/png;base64,R0VO" + string(req.Format), nil
}

func (m *mockGenerator) calls() []domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GenerationRequest(nil), m.requests...)
}

type mockDescriber struct {
	describeFunc func(ctx context.Context, uri string) (string, error)
}

func (m *mockDescriber) Describe(ctx context.Context, uri string) (string, error) {
	if m.describeFunc != nil {
		return m.describeFunc(ctx, uri)
	}
	return "a red square", nil
}

// --- Helpers ---

func testSource(t *testing.T) *domain.SourceImage {
	t.Helper()
	return &domain.SourceImage{Name: "photo.png", MimeType: "image/png", DataURI: testImageURI(t, 40, 30)}
}

func testImageURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 220, G: 30, B: 30, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return imgutil.EncodeDataURI("image/png", buf.Bytes())
}

func newTestCoordinator(t *testing.T, gen *mockGenerator) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(gen, 0)
	if err != nil {
		t.Fatalf("failed to create coordinator: %v", err)
	}
	return c
}

// pngHeader は IHDR だけを持つ PNG を作るのだ。宣言したサイズの画素は持たないのだ。
func pngHeader(w, h uint32) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8
	ihdr[9] = 6

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}
