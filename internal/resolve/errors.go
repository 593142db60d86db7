package resolve

import (
	"fmt"

	"sprite-offsets/internal/grid"
)

// MismatchError reports a declared frame size that does not tile the sheet.
type MismatchError struct {
	Frame         grid.Frame
	Width, Height int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("resolve: declared frame %v does not divide %dx%d sheet", e.Frame, e.Width, e.Height)
}
