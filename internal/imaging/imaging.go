// Package imaging normalizes uploaded asset photos: format sniffing,
// downscaling, and thumbnail generation.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for the stored photo.
const MaxDimension = 1024

// ThumbDimension is the maximum width or height for the thumbnail variant
// served in list views.
const ThumbDimension = 256

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ProcessResult contains the processed photo and its thumbnail.
type ProcessResult struct {
	Data  []byte
	Thumb []byte
	MIME  string
}

// Process reads photo data, validates the format by sniffing bytes,
// downscales oversized images, and re-encodes both a full-size and a
// thumbnail JPEG. Output is always JPEG for consistency and size.
func Process(r io.Reader) (*ProcessResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading photo data: %w", err)
	}

	// Sniff the actual MIME type from bytes (not trusting client headers).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported photo format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	full, err := encodeJPEG(downscale(img, MaxDimension))
	if err != nil {
		return nil, err
	}
	thumb, err := encodeJPEG(downscale(img, ThumbDimension))
	if err != nil {
		return nil, err
	}

	return &ProcessResult{Data: full, Thumb: thumb, MIME: "image/jpeg"}, nil
}

// downscale resizes img so neither dimension exceeds max, preserving the
// aspect ratio. Images already within bounds are returned unchanged.
func downscale(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= max && h <= max {
		return img
	}

	if w > h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
