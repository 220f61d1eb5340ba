package visual

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"copydesk/internal/llm"
)

type fakeImageClient struct {
	data []byte
	err  error
}

func (f *fakeImageClient) GenerateImage(ctx context.Context, prompt string) (llm.ImageResult, error) {
	if f.err != nil {
		return llm.ImageResult{}, f.err
	}
	return llm.ImageResult{Data: f.data, MIMEType: "image/png", Tokens: 5}, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.OutputDirectory = t.TempDir()
	opts.Width = 120
	opts.Height = 63
	return opts
}

func TestGenerateWritesResizedJPEG(t *testing.T) {
	opts := testOptions(t)
	gen := NewGenerator(&fakeImageClient{data: encodePNG(t, 300, 300)}, opts)

	path := gen.Generate(context.Background(), "메타 광고 예산 설정 가이드", "meta-budget")
	if path != opts.PublicPrefix+"/meta-budget.jpg" {
		t.Fatalf("Unexpected public path: %q", path)
	}

	file, err := os.Open(filepath.Join(opts.OutputDirectory, "meta-budget.jpg"))
	if err != nil {
		t.Fatalf("Expected thumbnail on disk: %v", err)
	}
	defer func() { _ = file.Close() }()

	img, err := jpeg.Decode(file)
	if err != nil {
		t.Fatalf("Expected a valid JPEG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != opts.Width || bounds.Dy() != opts.Height {
		t.Errorf("Expected %dx%d, got %dx%d", opts.Width, opts.Height, bounds.Dx(), bounds.Dy())
	}
}

func TestGenerateFallbackOnProviderError(t *testing.T) {
	opts := testOptions(t)
	gen := NewGenerator(&fakeImageClient{err: errors.New("no image part")}, opts)

	path := gen.Generate(context.Background(), "제목", "slug")
	if path != opts.FallbackPath {
		t.Errorf("Expected fallback path, got %q", path)
	}
}

func TestGenerateFallbackOnUndecodableImage(t *testing.T) {
	opts := testOptions(t)
	gen := NewGenerator(&fakeImageClient{data: []byte("not an image")}, opts)

	path := gen.Generate(context.Background(), "제목", "slug")
	if path != opts.FallbackPath {
		t.Errorf("Expected fallback path for undecodable data, got %q", path)
	}
}

func TestGenerateFallbackOnWriteError(t *testing.T) {
	opts := testOptions(t)
	// Point the output directory at a regular file so MkdirAll fails.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}
	opts.OutputDirectory = filepath.Join(blocked, "thumbs")

	gen := NewGenerator(&fakeImageClient{data: encodePNG(t, 100, 100)}, opts)
	path := gen.Generate(context.Background(), "제목", "slug")
	if path != opts.FallbackPath {
		t.Errorf("Expected fallback path on write failure, got %q", path)
	}
}

func TestCoverCropKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	out := coverCrop(src, 120, 63)

	bounds := out.Bounds()
	if bounds.Dx() != 120 || bounds.Dy() != 63 {
		t.Errorf("Expected 120x63, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestGenerateAppendsExtension(t *testing.T) {
	opts := testOptions(t)
	gen := NewGenerator(&fakeImageClient{data: encodePNG(t, 200, 200)}, opts)

	path := gen.Generate(context.Background(), "제목", "already.jpg")
	if !strings.HasSuffix(path, "/already.jpg") || strings.HasSuffix(path, ".jpg.jpg") {
		t.Errorf("Unexpected path: %q", path)
	}
}
