package sheet

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"sprite-offsets/internal/pixel"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Load reads and decodes a sprite sheet, returning it as NRGBA.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: read %s: %w", path, err)
	}
	img, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("sheet: decode %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes any registered image format into NRGBA.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to NRGBA with its origin at (0,0).
// Sources without an alpha channel come out fully opaque.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Buffer wraps a decoded sheet for analysis.
func Buffer(img *image.NRGBA) (*pixel.Buffer, error) {
	buf, err := pixel.FromNRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}
	return buf, nil
}
