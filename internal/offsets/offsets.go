package offsets

import (
	"image"
	"math"

	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/pixel"
)

// Offsets positions a sprite relative to its frame.
type Offsets struct {
	// GroundY is the gap between the frame bottom and the lowest opaque
	// pixel, taken as the largest gap over all sampled cells.
	GroundY int `json:"groundOffsetY"`
	// CenterX is the mean horizontal displacement of the opaque extent
	// from the frame center. Positive means the sprite sits right of center.
	CenterX int `json:"centerOffsetX"`
}

// Compute derives ground and center offsets from the cells of g.
// rows restricts sampling to those row indices; indices outside the grid
// are dropped and an empty result samples every row.
func Compute(buf *pixel.Buffer, g grid.Grid, f grid.Frame, rows []int) Offsets {
	var (
		ground    int
		centerSum float64
		filled    int
	)
	for _, row := range sampleRows(rows, g.Rows) {
		for col := 0; col < g.Columns; col++ {
			cell := image.Rect(col*f.Width, row*f.Height, (col+1)*f.Width, (row+1)*f.Height)
			box, ok := buf.OpaqueBounds(cell)
			if !ok {
				continue
			}
			ground = max(ground, cell.Max.Y-box.Max.Y)

			center := float64(box.Min.X-cell.Min.X+box.Max.X-cell.Min.X) / 2
			centerSum += center - float64(f.Width)/2
			filled++
		}
	}

	if filled == 0 {
		return Offsets{}
	}
	return Offsets{
		GroundY: ground,
		CenterX: int(math.Round(centerSum / float64(filled))),
	}
}

// GroundLine is the y of the ground contact line inside a frame of the
// given height, with the stored offset clamped into the frame.
func GroundLine(frameHeight, groundY int) int {
	return frameHeight - min(max(groundY, 0), frameHeight)
}

func sampleRows(rows []int, total int) []int {
	seen := make(map[int]bool, len(rows))
	var valid []int
	for _, r := range rows {
		if r < 0 || r >= total || seen[r] {
			continue
		}
		seen[r] = true
		valid = append(valid, r)
	}
	if len(valid) > 0 {
		return valid
	}
	all := make([]int, total)
	for i := range all {
		all[i] = i
	}
	return all
}
