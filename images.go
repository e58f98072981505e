package communityhub

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	// AvatarMaxWidth bounds testimonial avatars: they render small and
	// cropped, so anything wider is wasted storage.
	AvatarMaxWidth = 400
	// BannerMaxWidth bounds event banners, which render hero-sized.
	BannerMaxWidth = 1200

	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// NormalizeImage decodes an image from src, downscales it so its width does
// not exceed maxWidth (height scaled proportionally, never upscaled), and
// re-encodes it as JPEG. It touches nothing but the bytes it returns.
func NormalizeImage(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxWidth {
		newH := h * maxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
