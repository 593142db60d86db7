package adjust

import (
	"image"
	"strings"

	"sprite-offsets/internal/grid"
)

// Record is the persisted, possibly human-reviewed, placement data of one subject.
type Record struct {
	UniqueID      string
	GroundOffsetY int
	CenterOffsetX int
	// Reviewed records are never replaced by automatic re-detection.
	Reviewed bool
	// Hitbox in frame coordinates; the zero rectangle means none.
	Hitbox image.Rectangle

	// Stored geometry of PrimarySpriteFile. Nil = not specified.
	Frame *grid.Frame
	Grid  *grid.Grid

	PrimarySpriteFile string
	// AnimationFiles maps an animation type to the sheet file holding it.
	AnimationFiles map[string]string
}

// StoredGeometry returns the stored grid and frame when both are fully specified.
func (r Record) StoredGeometry() (grid.Grid, grid.Frame, bool) {
	if r.Grid == nil || r.Frame == nil {
		return grid.Grid{}, grid.Frame{}, false
	}
	g, f := *r.Grid, *r.Frame
	if g.Columns <= 0 || g.Rows <= 0 || f.Width <= 0 || f.Height <= 0 {
		return grid.Grid{}, grid.Frame{}, false
	}
	return g, f, true
}

// StoredFrame returns the stored frame size when both dimensions are positive.
func (r Record) StoredFrame() (grid.Frame, bool) {
	if r.Frame == nil || r.Frame.Width <= 0 || r.Frame.Height <= 0 {
		return grid.Frame{}, false
	}
	return *r.Frame, true
}

// AppliesTo reports whether the stored grid was computed for file.
// A record without a primary file applies to every sheet.
func (r Record) AppliesTo(file string) bool {
	return r.PrimarySpriteFile == "" || strings.EqualFold(r.PrimarySpriteFile, file)
}

// FileFor returns the declared sheet file for an animation type, if any.
func (r Record) FileFor(animType string) (string, bool) {
	for k, v := range r.AnimationFiles {
		if strings.EqualFold(k, animType) && v != "" {
			return v, true
		}
	}
	return "", false
}

// SetGeometry stores g and f as the record's frame grid.
func (r *Record) SetGeometry(g grid.Grid, f grid.Frame) {
	r.Grid = &g
	r.Frame = &f
}

func key(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
