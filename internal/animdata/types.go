package animdata

import "sprite-offsets/internal/grid"

// Anim is one animation entry of an AnimData.xml document.
// CopyOf, when set, means the entry reuses another animation's geometry.
type Anim struct {
	Name        string
	Index       int
	FrameWidth  int
	FrameHeight int
	CopyOf      string
	Durations   []int
	RushFrame   int
	HitFrame    int
	ReturnFrame int
}

// Frame returns the declared frame size, if both dimensions are positive.
func (a Anim) Frame() (grid.Frame, bool) {
	if a.FrameWidth <= 0 || a.FrameHeight <= 0 {
		return grid.Frame{}, false
	}
	return grid.Frame{Width: a.FrameWidth, Height: a.FrameHeight}, true
}

// Doc is a parsed animation-metadata document for one subject.
type Doc struct {
	ShadowSize int
	anims      map[string]Anim // lowercased name → entry
	order      []string
}
