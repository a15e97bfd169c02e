// Package imaging provides the byte-level image transform used by the
// generation pipeline: decode, constrain dimensions, re-encode as JPEG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
)

// Options controls the optimize pass.
type Options struct {
	// MaxDimension caps width and height; larger images are downscaled
	// preserving aspect ratio. Zero disables scaling.
	MaxDimension int
	// Quality is the JPEG encoder quality (1-100). Zero means 85.
	Quality int
}

// DefaultOptions mirrors the service defaults.
func DefaultOptions() Options {
	return Options{MaxDimension: 1920, Quality: 85}
}

// Optimize decodes JPEG or PNG bytes, downscales past MaxDimension and
// re-encodes as JPEG. The input bytes are never modified.
func Optimize(data []byte, opts Options) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if opts.Quality <= 0 {
		opts.Quality = 85
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if opts.MaxDimension > 0 && (w > opts.MaxDimension || h > opts.MaxDimension) {
		src = scale(src, opts.MaxDimension)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// scale shrinks src so its longest side equals max, using nearest-neighbor
// sampling. Good enough for cache thumbnails; the real renderer works from
// originals.
func scale(src image.Image, max int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	outW, outH := w, h
	if w >= h {
		outW = max
		outH = h * max / w
	} else {
		outH = max
		outW = w * max / h
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		srcY := bounds.Min.Y + y*h/outH
		for x := 0; x < outW; x++ {
			srcX := bounds.Min.X + x*w/outW
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
