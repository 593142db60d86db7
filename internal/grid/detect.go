package grid

import (
	"image"
	"math"

	"sprite-offsets/internal/pixel"
)

const (
	// emptyCellPenalty outweighs any silhouette variation a real sheet can produce.
	emptyCellPenalty = 10000

	standardRows       = 8
	maxStandardColumns = 12
	maxGenericColumns  = 8
	maxGenericRows     = 8
)

// conventional layouts tried, in order, when the 8-row search does not settle.
var conventional = []Grid{
	{Columns: 6, Rows: 8},
	{Columns: 4, Rows: 2},
	{Columns: 4, Rows: 1},
}

// Detect infers the frame grid of a sprite sheet from its alpha channel.
// With preferStandard set, 8-row direction sheets and a few fixed layouts
// are tried before the generic search. A sheet nothing fits comes back as
// a single 1x1 frame.
func Detect(buf *pixel.Buffer, preferStandard bool) (Grid, Frame) {
	w, h := buf.Width(), buf.Height()
	if !buf.HasOpaque() {
		return Whole(w, h)
	}

	if preferStandard {
		if c, ok := detectStandard(buf); ok {
			return c.grid, c.frame
		}
	}

	best, ok := detectGeneric(buf)
	if !ok {
		return Whole(w, h)
	}
	return best.grid, best.frame
}

// Score rates a candidate tiling; lower is better. Each empty cell costs
// emptyCellPenalty on top of the spread of opaque box sizes. A tiling with
// no opaque pixel in any cell scores +Inf.
func Score(buf *pixel.Buffer, cols, rows, frameW, frameH int) float64 {
	return evaluate(buf, Grid{Columns: cols, Rows: rows}, Frame{Width: frameW, Height: frameH}).score
}

// candidate is one scored tiling.
type candidate struct {
	grid  Grid
	frame Frame
	score float64
	empty int
	cuts  int // cells whose content touches an edge shared with a neighbour
}

func (c candidate) populated() bool {
	return c.empty == 0 && !math.IsInf(c.score, 1)
}

// better orders candidates by score, then fewer cut cells, then finer grids.
func better(a, b candidate) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	if a.cuts != b.cuts {
		return a.cuts < b.cuts
	}
	if a.grid.Cells() != b.grid.Cells() {
		return a.grid.Cells() > b.grid.Cells()
	}
	if a.grid.Columns != b.grid.Columns {
		return a.grid.Columns < b.grid.Columns
	}
	return a.grid.Rows < b.grid.Rows
}

func evaluate(buf *pixel.Buffer, g Grid, f Frame) candidate {
	c := candidate{grid: g, frame: f}
	sheetW, sheetH := buf.Width(), buf.Height()

	minW, maxW := math.MaxInt, 0
	minH, maxH := math.MaxInt, 0
	filled := 0

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			cell := image.Rect(col*f.Width, row*f.Height, (col+1)*f.Width, (row+1)*f.Height)
			box, ok := buf.OpaqueBounds(cell)
			if !ok {
				c.empty++
				continue
			}
			filled++
			minW, maxW = min(minW, box.Dx()), max(maxW, box.Dx())
			minH, maxH = min(minH, box.Dy()), max(maxH, box.Dy())

			if (box.Min.X == cell.Min.X && cell.Min.X > 0) ||
				(box.Max.X == cell.Max.X && cell.Max.X < sheetW) ||
				(box.Min.Y == cell.Min.Y && cell.Min.Y > 0) ||
				(box.Max.Y == cell.Max.Y && cell.Max.Y < sheetH) {
				c.cuts++
			}
		}
	}

	if filled == 0 {
		c.score = math.Inf(1)
		return c
	}
	variation := (maxW - minW) + (maxH - minH)
	c.score = float64(variation + emptyCellPenalty*c.empty)
	return c
}

// detectStandard tries the 8-row direction layout, then the fixed
// conventions. Only fully populated candidates are accepted.
func detectStandard(buf *pixel.Buffer) (candidate, bool) {
	w, h := buf.Width(), buf.Height()

	if h%standardRows == 0 {
		var best candidate
		found := false
		for cols := 1; cols <= min(maxStandardColumns, w); cols++ {
			if w%cols != 0 {
				continue
			}
			g := Grid{Columns: cols, Rows: standardRows}
			c := evaluate(buf, g, Frame{Width: w / cols, Height: h / standardRows})
			if !found || better(c, best) {
				best, found = c, true
			}
		}
		if found && best.populated() {
			if best.grid.Columns == 1 && w%4 == 0 && hasFourColumnSeparators(buf) {
				best.grid = Grid{Columns: 4, Rows: standardRows}
				best.frame = Frame{Width: w / 4, Height: h / standardRows}
			}
			return best, true
		}
	}

	for _, g := range conventional {
		f, ok := g.FrameFor(w, h)
		if !ok {
			continue
		}
		if c := evaluate(buf, g, f); c.populated() {
			return c, true
		}
	}
	return candidate{}, false
}

// detectGeneric scores every dividing tiling up to 8x8 and keeps the best.
func detectGeneric(buf *pixel.Buffer) (candidate, bool) {
	w, h := buf.Width(), buf.Height()

	var best candidate
	found := false
	for cols := 1; cols <= min(maxGenericColumns, w); cols++ {
		if w%cols != 0 {
			continue
		}
		for rows := 1; rows <= min(maxGenericRows, h); rows++ {
			if h%rows != 0 {
				continue
			}
			c := evaluate(buf, Grid{Columns: cols, Rows: rows}, Frame{Width: w / cols, Height: h / rows})
			if !found || better(c, best) {
				best, found = c, true
			}
		}
	}
	if !found || math.IsInf(best.score, 1) {
		return candidate{}, false
	}
	return best, true
}

// hasFourColumnSeparators looks for fully transparent columns near each
// quarter line of the sheet, allowing 1px of slack either way.
func hasFourColumnSeparators(buf *pixel.Buffer) bool {
	w := buf.Width()
	for _, target := range []int{w / 4, w / 2, 3 * w / 4} {
		found := false
		for x := target - 1; x <= target+1; x++ {
			if x < 0 || x >= w {
				continue
			}
			if buf.ColumnTransparent(x) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
