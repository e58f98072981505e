package communityhub

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func pngImage(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return &buf
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid JPEG: %v", err)
	}
	return img
}

func TestNormalizeImageDownscales(t *testing.T) {
	out, err := NormalizeImage(pngImage(t, 2400, 1200), BannerMaxWidth)
	if err != nil {
		t.Fatalf("NormalizeImage: %v", err)
	}
	got := decodeJPEG(t, out).Bounds()
	if got.Dx() != BannerMaxWidth {
		t.Errorf("width = %d, want %d", got.Dx(), BannerMaxWidth)
	}
	if got.Dy() != 600 {
		t.Errorf("height = %d, want 600 (aspect ratio preserved)", got.Dy())
	}
}

func TestNormalizeImageNeverUpscales(t *testing.T) {
	out, err := NormalizeImage(pngImage(t, 300, 200), AvatarMaxWidth)
	if err != nil {
		t.Fatalf("NormalizeImage: %v", err)
	}
	got := decodeJPEG(t, out).Bounds()
	if got.Dx() != 300 || got.Dy() != 200 {
		t.Errorf("dimensions = %dx%d, want 300x200 unchanged", got.Dx(), got.Dy())
	}
}

func TestNormalizeImageWidthBound(t *testing.T) {
	for _, w := range []int{100, 400, 401, 1200, 3000} {
		out, err := NormalizeImage(pngImage(t, w, 100), AvatarMaxWidth)
		if err != nil {
			t.Fatalf("width %d: %v", w, err)
		}
		if got := decodeJPEG(t, out).Bounds().Dx(); got > AvatarMaxWidth {
			t.Errorf("input width %d: output width %d exceeds %d", w, got, AvatarMaxWidth)
		}
	}
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	_, err := NormalizeImage(strings.NewReader("this is not an image"), BannerMaxWidth)
	if err == nil {
		t.Fatal("undecodable input must fail, not upload raw bytes")
	}
}
