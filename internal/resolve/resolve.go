package resolve

import (
	"errors"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/animdata"
	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/pixel"
)

// Source names the branch that produced a resolved geometry.
type Source int

const (
	SourceDetected Source = iota
	SourceDeclared
	SourceStored
	// SourceStoredFrame means the detector gave up (1x1) and the stored
	// frame size was used to re-derive the grid.
	SourceStoredFrame
)

func (s Source) String() string {
	switch s {
	case SourceDeclared:
		return "declared"
	case SourceStored:
		return "stored"
	case SourceStoredFrame:
		return "stored-frame"
	default:
		return "detected"
	}
}

// Request describes one sheet to resolve.
type Request struct {
	Sheet *pixel.Buffer
	// File is the sheet's file name, matched against the record's primary sprite file.
	File string
	Anim anim.Type
	// Declared and Stored are optional.
	Declared *animdata.Doc
	Stored   *adjust.Record
}

// Result is the accepted geometry for a sheet.
type Result struct {
	Grid   grid.Grid
	Frame  grid.Frame
	Source Source
	// DeclaredErr is set when the document had an entry that could not be
	// used (unresolved CopyOf chain or a frame size that does not divide).
	DeclaredErr error
}

// Resolver picks between declared, stored and detected geometry.
type Resolver struct {
	PreferStandard bool
	// IgnoreStored lists animation types that never reuse a stored grid.
	IgnoreStored anim.IgnoreSet
}

// New returns a resolver with the default ignore list.
func New(preferStandard bool) *Resolver {
	return &Resolver{PreferStandard: preferStandard, IgnoreStored: anim.DefaultIgnoreSet()}
}

// Resolve applies, in order: a declared frame size that divides the sheet;
// a stored grid whose size matches the sheet exactly (unless the type
// ignores stored grids or the record belongs to another file); detection.
// A degenerate detection is replaced by the grid implied by a stored frame
// size when that size divides the sheet.
func (r *Resolver) Resolve(req Request) Result {
	w, h := req.Sheet.Width(), req.Sheet.Height()

	var declErr error
	if req.Declared != nil {
		f, err := req.Declared.FrameSize(req.Anim.SheetName())
		switch {
		case err == nil:
			if g, ok := f.GridFor(w, h); ok {
				return Result{Grid: g, Frame: f, Source: SourceDeclared}
			}
			declErr = &MismatchError{Frame: f, Width: w, Height: h}
		case errors.Is(err, animdata.ErrUnknownAnimation):
			// not declared for this sheet
		default:
			declErr = err
		}
	}

	if req.Stored != nil && !r.IgnoreStored.Has(string(req.Anim)) && req.Stored.AppliesTo(req.File) {
		if g, f, ok := req.Stored.StoredGeometry(); ok && grid.Fits(g, f, w, h) {
			return Result{Grid: g, Frame: f, Source: SourceStored, DeclaredErr: declErr}
		}
	}

	g, f := grid.Detect(req.Sheet, r.PreferStandard)
	res := Result{Grid: g, Frame: f, Source: SourceDetected, DeclaredErr: declErr}

	if g.Degenerate() && req.Stored != nil {
		if sf, ok := req.Stored.StoredFrame(); ok {
			if sg, ok := sf.GridFor(w, h); ok && !sg.Degenerate() {
				res.Grid, res.Frame, res.Source = sg, sf, SourceStoredFrame
			}
		}
	}
	return res
}
