package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// --- Mocks ---

type mockCapability struct {
	generateFunc func(ctx context.Context, req domain.GenerationRequest) (string, error)
	describeFunc func(ctx context.Context, uri string) (string, error)
}

func (m *mockCapability) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return "", nil
}

func (m *mockCapability) Describe(ctx context.Context, uri string) (string, error) {
	if m.describeFunc != nil {
		return m.describeFunc(ctx, uri)
	}
	return "a blue rectangle", nil
}

type mockLoader struct {
	src *domain.SourceImage
	err error
}

func (m *mockLoader) Load(ctx context.Context, uri string) (*domain.SourceImage, error) {
	return m.src, m.err
}

// --- Helpers ---

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func testPNGURI(t *testing.T, w, h int) string {
	t.Helper()
	return imgutil.EncodeDataURI("image/png", testPNG(t, w, h))
}
