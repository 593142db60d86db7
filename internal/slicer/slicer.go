package slicer

import (
	"errors"
	"fmt"
	"image"

	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/offsets"

	"golang.org/x/image/draw"
)

// ErrEmptySelection is returned when a required row or column selection
// has no valid index left.
var ErrEmptySelection = errors.New("empty frame selection")

// Selection lists grid indices in playback order. The zero value selects
// everything. A Required selection never falls back to the full grid.
type Selection struct {
	Indices  []int
	Required bool
}

// Frame is one cropped animation frame.
type Frame struct {
	Image *image.NRGBA
	// GroundLineY is where the sprite's feet rest, in Image coordinates.
	GroundLineY int
	Row, Col    int
}

// Options carries the stored placement data applied to every frame.
type Options struct {
	GroundOffsetY int
	// Hitbox in frame coordinates; an empty rectangle disables cropping.
	Hitbox image.Rectangle
}

// Slice cuts the selected cells of sheet into frames, rows outer and
// columns inner. Cells falling outside the sheet are skipped.
func Slice(sheet *image.NRGBA, g grid.Grid, f grid.Frame, rows, cols Selection, opts Options) ([]Frame, error) {
	rowIdx, err := rows.resolve(g.Rows)
	if err != nil {
		return nil, fmt.Errorf("slicer: rows: %w", err)
	}
	colIdx, err := cols.resolve(g.Columns)
	if err != nil {
		return nil, fmt.Errorf("slicer: columns: %w", err)
	}

	crop := image.Rect(0, 0, f.Width, f.Height)
	ground := offsets.GroundLine(f.Height, opts.GroundOffsetY)
	if hb, ok := ClampHitbox(opts.Hitbox, f); ok {
		crop = hb
		ground = min(max(ground-hb.Min.Y, 0), hb.Dy())
	}

	bounds := sheet.Bounds()
	frames := make([]Frame, 0, len(rowIdx)*len(colIdx))
	for _, row := range rowIdx {
		for _, col := range colIdx {
			cell := image.Rect(col*f.Width, row*f.Height, (col+1)*f.Width, (row+1)*f.Height).Add(bounds.Min)
			if !cell.In(bounds) {
				continue
			}
			src := crop.Add(cell.Min)
			dst := image.NewNRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
			draw.Copy(dst, image.Point{}, sheet, src, draw.Src, nil)
			frames = append(frames, Frame{Image: dst, GroundLineY: ground, Row: row, Col: col})
		}
	}
	return frames, nil
}

// ClampHitbox fits hb inside a frame: the origin is clamped into the
// frame and the size shrunk so the box never leaves it. ok is false when
// hb has no area.
func ClampHitbox(hb image.Rectangle, f grid.Frame) (image.Rectangle, bool) {
	if hb.Dx() <= 0 || hb.Dy() <= 0 || f.Width <= 0 || f.Height <= 0 {
		return image.Rectangle{}, false
	}
	x := min(max(hb.Min.X, 0), f.Width-1)
	y := min(max(hb.Min.Y, 0), f.Height-1)
	w := min(max(hb.Dx(), 1), f.Width-x)
	h := min(max(hb.Dy(), 1), f.Height-y)
	return image.Rect(x, y, x+w, y+h), true
}

func (s Selection) resolve(n int) ([]int, error) {
	seen := make(map[int]bool, len(s.Indices))
	var out []int
	for _, i := range s.Indices {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	if len(out) > 0 {
		return out, nil
	}
	if s.Required {
		return nil, fmt.Errorf("%v of %d: %w", s.Indices, n, ErrEmptySelection)
	}
	out = make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out, nil
}
