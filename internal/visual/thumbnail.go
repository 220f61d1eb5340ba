// Package visual generates article thumbnails: an image-capable model call,
// a cover-crop resize to the social-card size, and a JPEG write into the
// static asset directory.
package visual

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"copydesk/internal/llm"
	"copydesk/internal/logger"
)

// ImageClient is the subset of the Gemini client the thumbnail generator needs.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) (llm.ImageResult, error)
}

// Options configures thumbnail output.
type Options struct {
	OutputDirectory string // Where encoded thumbnails are written
	PublicPrefix    string // Public path prefix returned to callers
	FallbackPath    string // Fixed asset returned when generation fails
	Width           int    // Target width (default 1200)
	Height          int    // Target height (default 630)
	JPEGQuality     int    // Encoder quality (default 82)
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		OutputDirectory: "public/images/contents",
		PublicPrefix:    "/images/contents",
		FallbackPath:    "/images/solution-website.webp",
		Width:           1200,
		Height:          630,
		JPEGQuality:     82,
	}
}

// Generator produces thumbnails for article titles.
type Generator struct {
	client ImageClient
	opts   Options
	log    *slog.Logger
}

// NewGenerator creates a thumbnail generator.
func NewGenerator(client ImageClient, opts Options) *Generator {
	if opts.Width == 0 {
		opts = DefaultOptions()
	}
	return &Generator{
		client: client,
		opts:   opts,
		log:    logger.Get(),
	}
}

// Generate creates a thumbnail for the title and returns its public asset
// path. It never returns an error: any failure (provider, decode, disk)
// degrades to the fixed fallback path so publishing is never blocked on
// imagery.
func (g *Generator) Generate(ctx context.Context, title, filename string) string {
	result, err := g.client.GenerateImage(ctx, buildImagePrompt(title))
	if err != nil {
		g.log.Warn("Thumbnail generation degraded to fallback", "title", title, "error", err.Error())
		return g.opts.FallbackPath
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		g.log.Warn("Thumbnail decode failed, using fallback", "title", title, "error", err.Error())
		return g.opts.FallbackPath
	}

	resized := coverCrop(img, g.opts.Width, g.opts.Height)

	if !strings.HasSuffix(filename, ".jpg") {
		filename += ".jpg"
	}
	outPath := filepath.Join(g.opts.OutputDirectory, filename)
	if err := g.writeJPEG(resized, outPath); err != nil {
		g.log.Warn("Thumbnail write failed, using fallback", "path", outPath, "error", err.Error())
		return g.opts.FallbackPath
	}

	return g.opts.PublicPrefix + "/" + filename
}

func (g *Generator) writeJPEG(img image.Image, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: g.opts.JPEGQuality}); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// coverCrop scales the source to fill the target box, then crops the center.
// Aspect mismatches lose edges rather than letterboxing.
func coverCrop(src image.Image, width, height int) image.Image {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()

	scale := float64(width) / float64(srcW)
	if s := float64(height) / float64(srcH); s > scale {
		scale = s
	}

	scaledW := int(float64(srcW)*scale + 0.5)
	scaledH := int(float64(srcH)*scale + 0.5)

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, srcBounds, xdraw.Over, nil)

	offsetX := (scaledW - width) / 2
	offsetY := (scaledH - height) / 2

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Copy(out, image.Point{}, scaled, image.Rect(offsetX, offsetY, offsetX+width, offsetY+height), xdraw.Over, nil)
	return out
}

func buildImagePrompt(title string) string {
	return fmt.Sprintf(`Generate a single photorealistic stock photo for a Korean marketing blog article titled "%s".

Requirements:
- Realistic office or small-business scene in a Korean urban context
- Natural lighting, shallow depth of field, editorial stock-photo style
- Absolutely no text, letters, logos, watermarks, or UI screenshots
- No illustrations, no 3D renders, no cartoon style
- Landscape composition suitable for a 1200x630 crop`, title)
}
