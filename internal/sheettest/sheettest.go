// Package sheettest builds synthetic sprite sheets for tests.
package sheettest

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"sprite-offsets/internal/pixel"
)

// Ink is the colour used for opaque test content.
var Ink = color.NRGBA{R: 200, G: 40, B: 40, A: 255}

// New returns a fully transparent width x height sheet.
func New(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Fill paints r opaque.
func Fill(img *image.NRGBA, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, Ink)
		}
	}
}

// Clear makes r fully transparent.
func Clear(img *image.NRGBA, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{})
		}
	}
}

// Tiled builds a cols x rows sheet of frameW x frameH cells and paints the
// same rectangle (in cell coordinates) into every cell.
func Tiled(cols, rows, frameW, frameH int, inCell image.Rectangle) *image.NRGBA {
	img := New(cols*frameW, rows*frameH)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			Fill(img, inCell.Add(image.Pt(col*frameW, row*frameH)))
		}
	}
	return img
}

// Buffer wraps img as a pixel buffer, failing the test on error.
func Buffer(t testing.TB, img *image.NRGBA) *pixel.Buffer {
	t.Helper()
	buf, err := pixel.FromNRGBA(img)
	if err != nil {
		t.Fatalf("pixel.FromNRGBA: %v", err)
	}
	return buf
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
