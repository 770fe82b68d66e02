package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding processed image: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestProcessSmallImageKeepsSize(t *testing.T) {
	result, err := Process(bytes.NewReader(testImage(t, 200, 100)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg output, got %q", result.MIME)
	}

	w, h := decodeDims(t, result.Data)
	if w != 200 || h != 100 {
		t.Errorf("expected 200x100, got %dx%d", w, h)
	}
}

func TestProcessDownscalesLargeImage(t *testing.T) {
	result, err := Process(bytes.NewReader(testImage(t, 2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	w, h := decodeDims(t, result.Data)
	if w != MaxDimension || h != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, w, h)
	}
}

func TestProcessGeneratesThumbnail(t *testing.T) {
	result, err := Process(bytes.NewReader(testImage(t, 2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	w, h := decodeDims(t, result.Thumb)
	if w > ThumbDimension || h > ThumbDimension {
		t.Errorf("thumbnail %dx%d exceeds %d", w, h, ThumbDimension)
	}
	if len(result.Thumb) >= len(result.Data) {
		t.Error("expected thumbnail to be smaller than the full photo")
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := Process(strings.NewReader("definitely not an image"))
	if err == nil {
		t.Fatal("expected error for non-image input")
	}
}
