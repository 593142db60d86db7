package grid

import "fmt"

// Grid is a columns x rows tiling of a sprite sheet.
type Grid struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// Frame is the pixel size of one grid cell.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (g Grid) String() string  { return fmt.Sprintf("%dx%d", g.Columns, g.Rows) }
func (f Frame) String() string { return fmt.Sprintf("%dx%d", f.Width, f.Height) }

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int { return g.Columns * g.Rows }

// Degenerate reports whether the grid treats the whole sheet as one frame.
func (g Grid) Degenerate() bool { return g.Columns == 1 && g.Rows == 1 }

// FrameFor returns the cell size of g on a width x height sheet.
// ok is false unless both dimensions divide evenly.
func (g Grid) FrameFor(width, height int) (Frame, bool) {
	if g.Columns < 1 || g.Rows < 1 || width%g.Columns != 0 || height%g.Rows != 0 {
		return Frame{}, false
	}
	f := Frame{Width: width / g.Columns, Height: height / g.Rows}
	return f, f.Width > 0 && f.Height > 0
}

// GridFor returns the grid implied by tiling a width x height sheet with f.
func (f Frame) GridFor(width, height int) (Grid, bool) {
	if f.Width < 1 || f.Height < 1 || width%f.Width != 0 || height%f.Height != 0 {
		return Grid{}, false
	}
	g := Grid{Columns: width / f.Width, Rows: height / f.Height}
	return g, g.Columns > 0 && g.Rows > 0
}

// Fits reports whether g tiled with f covers exactly width x height.
func Fits(g Grid, f Frame, width, height int) bool {
	return g.Columns >= 1 && g.Rows >= 1 && f.Width >= 1 && f.Height >= 1 &&
		g.Columns*f.Width == width && g.Rows*f.Height == height
}

// Whole returns the 1x1 grid covering the entire sheet.
func Whole(width, height int) (Grid, Frame) {
	return Grid{Columns: 1, Rows: 1}, Frame{Width: width, Height: height}
}
