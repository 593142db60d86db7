package pixel

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidBuffer is returned when buffer construction arguments are malformed.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// OutOfBoundsError is the panic value for a pixel read outside the buffer.
// Reaching it means a caller built a grid that does not fit the sheet.
type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e OutOfBoundsError) Error() string {
	return fmt.Sprintf("pixel: (%d,%d) out of bounds for %dx%d buffer", e.X, e.Y, e.Width, e.Height)
}

// Buffer is a read-only view over a decoded raster.
// Only the 4th byte of each pixel is ever read; buffers with fewer than
// four bytes per pixel are treated as fully opaque.
type Buffer struct {
	data   []byte
	width  int
	height int
	stride int
	bpp    int
}

// New validates the layout and wraps data without copying it.
func New(data []byte, width, height, stride, bytesPerPixel int) (*Buffer, error) {
	switch {
	case width <= 0 || height <= 0:
		return nil, fmt.Errorf("pixel: %dx%d: %w", width, height, ErrInvalidBuffer)
	case bytesPerPixel <= 0:
		return nil, fmt.Errorf("pixel: %d bytes per pixel: %w", bytesPerPixel, ErrInvalidBuffer)
	case stride < width*bytesPerPixel:
		return nil, fmt.Errorf("pixel: stride %d < %d: %w", stride, width*bytesPerPixel, ErrInvalidBuffer)
	case len(data) < minLen(width, height, stride, bytesPerPixel):
		return nil, fmt.Errorf("pixel: %d bytes < %d: %w", len(data), minLen(width, height, stride, bytesPerPixel), ErrInvalidBuffer)
	}
	return &Buffer{
		data:   data,
		width:  width,
		height: height,
		stride: stride,
		bpp:    bytesPerPixel,
	}, nil
}

// minLen is the smallest data length holding height rows; the last row
// needs no stride padding.
func minLen(width, height, stride, bytesPerPixel int) int {
	return (height-1)*stride + width*bytesPerPixel
}

// FromNRGBA wraps an NRGBA image. The image origin maps to (0,0).
// Sub-images share their parent's pixels.
func FromNRGBA(img *image.NRGBA) (*Buffer, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("pixel: empty image %v: %w", b, ErrInvalidBuffer)
	}
	off := img.PixOffset(b.Min.X, b.Min.Y)
	end := off + minLen(b.Dx(), b.Dy(), img.Stride, 4)
	if off < 0 || end > len(img.Pix) {
		return nil, fmt.Errorf("pixel: image %v outside its pixels: %w", b, ErrInvalidBuffer)
	}
	return New(img.Pix[off:end], b.Dx(), b.Dy(), img.Stride, 4)
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// AlphaAt returns the alpha of (x,y), or 255 for buffers without an alpha byte.
// It panics with OutOfBoundsError outside the buffer.
func (b *Buffer) AlphaAt(x, y int) uint8 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		panic(OutOfBoundsError{X: x, Y: y, Width: b.width, Height: b.height})
	}
	if b.bpp < 4 {
		return 255
	}
	return b.data[y*b.stride+x*b.bpp+3]
}

// Opaque reports whether (x,y) has any coverage.
func (b *Buffer) Opaque(x, y int) bool {
	return b.AlphaAt(x, y) > 0
}

// OpaqueBounds returns the tight box of opaque pixels inside r.
// ok is false when r contains no opaque pixel.
func (b *Buffer) OpaqueBounds(r image.Rectangle) (box image.Rectangle, ok bool) {
	minX, minY := r.Max.X, r.Max.Y
	maxX, maxY := r.Min.X-1, r.Min.Y-1
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !b.Opaque(x, y) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// HasOpaque reports whether any pixel in the buffer is opaque.
func (b *Buffer) HasOpaque() bool {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.Opaque(x, y) {
				return true
			}
		}
	}
	return false
}

// ColumnTransparent reports whether every pixel in column x is transparent.
func (b *Buffer) ColumnTransparent(x int) bool {
	for y := 0; y < b.height; y++ {
		if b.Opaque(x, y) {
			return false
		}
	}
	return true
}
