package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestOptimizeDownscalesPastMaxDimension(t *testing.T) {
	data := encodePNG(t, 400, 200)

	out, err := Optimize(data, Options{MaxDimension: 100, Quality: 80})
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("output dimensions = %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestOptimizeKeepsSmallImagesUnscaled(t *testing.T) {
	data := encodePNG(t, 60, 80)

	out, err := Optimize(data, Options{MaxDimension: 100})
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 60 || b.Dy() != 80 {
		t.Fatalf("output dimensions = %dx%d, want 60x80", b.Dx(), b.Dy())
	}
}

func TestOptimizeRejectsGarbage(t *testing.T) {
	if _, err := Optimize([]byte("not an image"), DefaultOptions()); err == nil {
		t.Fatalf("Optimize() expected decode error")
	}
}

func TestOptimizeTallImage(t *testing.T) {
	data := encodePNG(t, 50, 500)

	out, err := Optimize(data, Options{MaxDimension: 100})
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	b := img.Bounds()
	if b.Dy() != 100 || b.Dx() != 10 {
		t.Fatalf("output dimensions = %dx%d, want 10x100", b.Dx(), b.Dy())
	}
}
