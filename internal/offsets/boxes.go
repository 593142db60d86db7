package offsets

import (
	"image"

	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/pixel"
)

// Boxes returns the opaque bounding box of every cell in frame
// coordinates, row-major. Empty cells get the zero rectangle.
func Boxes(buf *pixel.Buffer, g grid.Grid, f grid.Frame) []image.Rectangle {
	boxes := make([]image.Rectangle, 0, g.Cells())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			origin := image.Pt(col*f.Width, row*f.Height)
			cell := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(f.Width, f.Height))}
			box, ok := buf.OpaqueBounds(cell)
			if !ok {
				boxes = append(boxes, image.Rectangle{})
				continue
			}
			boxes = append(boxes, box.Sub(origin))
		}
	}
	return boxes
}

// Union is the smallest rectangle covering every non-empty box of the
// selected rows, the natural default hitbox for a clip.
func Union(boxes []image.Rectangle, g grid.Grid, rows []int) image.Rectangle {
	var u image.Rectangle
	for _, row := range sampleRows(rows, g.Rows) {
		for col := 0; col < g.Columns; col++ {
			i := row*g.Columns + col
			if i < len(boxes) {
				u = u.Union(boxes[i])
			}
		}
	}
	return u
}
