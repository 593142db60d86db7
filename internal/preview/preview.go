// Package preview renders sliced frames as a contact sheet with their
// placement guides, for review and for the batch report.
package preview

import (
	"image"
	"image/color"

	"sprite-offsets/internal/slicer"

	"golang.org/x/image/draw"
)

// Guide colours.
var (
	GroundColor = color.NRGBA{R: 0, G: 200, B: 255, A: 255}
	HitboxColor = color.NRGBA{R: 255, G: 0, B: 200, A: 255}
	Background  = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
)

const gutter = 1

// Options controls the contact sheet layout.
type Options struct {
	// Columns per row of the contact sheet; 0 puts every frame on one row.
	Columns int
	// Scale enlarges the result with nearest-neighbour sampling.
	Scale int
	// MaxWidth shrinks the result (after scaling) to at most this many
	// pixels wide. 0 disables it.
	MaxWidth int
	// Hitbox is outlined on every frame, in frame coordinates.
	Hitbox image.Rectangle
}

// ContactSheet lays frames out on a grid separated by a one-pixel gutter,
// draws each frame's ground line and the hitbox outline, then scales.
func ContactSheet(frames []slicer.Frame, opts Options) *image.NRGBA {
	if len(frames) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}

	cellW, cellH := 0, 0
	for _, f := range frames {
		b := f.Image.Bounds()
		cellW = max(cellW, b.Dx())
		cellH = max(cellH, b.Dy())
	}
	cols := opts.Columns
	if cols <= 0 || cols > len(frames) {
		cols = len(frames)
	}
	rows := (len(frames) + cols - 1) / cols

	w := cols*cellW + (cols+1)*gutter
	h := rows*cellH + (rows+1)*gutter
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	for i, f := range frames {
		origin := image.Pt(gutter+(i%cols)*(cellW+gutter), gutter+(i/cols)*(cellH+gutter))
		b := f.Image.Bounds()
		dst := image.Rectangle{Min: origin, Max: origin.Add(b.Size())}
		draw.Draw(img, dst, f.Image, b.Min, draw.Over)

		if y := min(f.GroundLineY, b.Dy()-1); y >= 0 {
			hline(img, dst.Min.X, dst.Max.X, origin.Y+y, GroundColor)
		}
		if hb := opts.Hitbox.Intersect(image.Rect(0, 0, b.Dx(), b.Dy())); !hb.Empty() {
			outline(img, hb.Add(origin), HitboxColor)
		}
	}

	if opts.Scale > 1 {
		img = Upscale(img, opts.Scale)
	}
	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = Downsample(img, opts.MaxWidth)
	}
	return img
}

// Upscale enlarges img by an integer factor without smoothing.
func Upscale(img *image.NRGBA, factor int) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func hline(img *image.NRGBA, x0, x1, y int, c color.NRGBA) {
	for x := x0; x < x1; x++ {
		img.SetNRGBA(x, y, c)
	}
}

func vline(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	for y := y0; y < y1; y++ {
		img.SetNRGBA(x, y, c)
	}
}

func outline(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	hline(img, r.Min.X, r.Max.X, r.Min.Y, c)
	hline(img, r.Min.X, r.Max.X, r.Max.Y-1, c)
	vline(img, r.Min.X, r.Min.Y, r.Max.Y, c)
	vline(img, r.Max.X-1, r.Min.Y, r.Max.Y, c)
}
