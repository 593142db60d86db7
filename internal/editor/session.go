// Package editor is the headless review surface for one subject: it
// proposes placement from analysis, takes operator corrections, and
// commits them as reviewed records.
package editor

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/catalog"
	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/offsets"
	"sprite-offsets/internal/pixel"
	"sprite-offsets/internal/preview"
	"sprite-offsets/internal/resolve"
	"sprite-offsets/internal/sheet"
	"sprite-offsets/internal/slicer"
)

var (
	// ErrOutOfFrame is returned when an edit places a guide outside the frame.
	ErrOutOfFrame = errors.New("value outside frame")
	// ErrGridMismatch is returned when a grid does not tile the sheet.
	ErrGridMismatch = errors.New("grid does not divide sheet")
)

// Options configures a session.
type Options struct {
	Resolver          *resolve.Resolver
	PrimaryAnimations []string
	OffsetRows        []int
	// StorePath is where Commit and Forget persist the store.
	StorePath string
}

// Session holds one subject's primary sheet and the record being edited.
type Session struct {
	Subject   *catalog.Subject
	Animation string
	Sheet     *image.NRGBA
	Source    resolve.Source
	Record    adjust.Record
	// Existing reports that the store already held a record for the subject.
	Existing bool
	// AnimDataErr is set when AnimData.xml could not be parsed.
	AnimDataErr error

	buf   *pixel.Buffer
	store *adjust.Store
	opts  Options
}

// Open analyses the subject's primary sheet. A stored record supplies the
// starting placement. Geometry comes from resolution against the current
// sheet, except that a reviewed record keeps its grid while it still
// tiles the sheet.
func Open(sub *catalog.Subject, store *adjust.Store, opts Options) (*Session, error) {
	if opts.Resolver == nil {
		opts.Resolver = resolve.New(true)
	}

	stored, existing := store.Get(sub.ID)
	name, path, err := sub.Primary(opts.PrimaryAnimations, stored.PrimarySpriteFile)
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	// A malformed AnimData.xml only loses the declared sizes.
	doc, docErr := sub.LoadAnimData()
	if docErr != nil {
		doc = nil
	}
	img, err := sheet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	buf, err := sheet.Buffer(img)
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	t := anim.Type(name)
	if known, ok := anim.Parse(name); ok {
		t = known
	}
	req := resolve.Request{Sheet: buf, File: filepath.Base(path), Anim: t, Declared: doc}
	if existing {
		req.Stored = &stored
	}
	res := opts.Resolver.Resolve(req)

	// A reviewed grid is the operator's decision and survives reopening,
	// even for animation types that otherwise ignore stored grids.
	if existing && stored.Reviewed {
		if g, f, ok := stored.StoredGeometry(); ok && grid.Fits(g, f, buf.Width(), buf.Height()) {
			res = resolve.Result{Grid: g, Frame: f, Source: resolve.SourceStored}
		}
	}

	s := &Session{
		Subject:     sub,
		Animation:   name,
		Sheet:       img,
		Source:      res.Source,
		Existing:    existing,
		AnimDataErr: docErr,
		buf:         buf,
		store:       store,
		opts:        opts,
	}
	if existing {
		s.Record = stored
	} else {
		off := offsets.Compute(buf, res.Grid, res.Frame, opts.OffsetRows)
		s.Record = adjust.Record{
			UniqueID:      sub.ID,
			GroundOffsetY: off.GroundY,
			CenterOffsetX: off.CenterX,
			Hitbox:        offsets.Union(offsets.Boxes(buf, res.Grid, res.Frame), res.Grid, opts.OffsetRows),
		}
	}
	s.Record.PrimarySpriteFile = filepath.Base(path)
	s.Record.SetGeometry(res.Grid, res.Frame)
	return s, nil
}

// Geometry returns the grid and frame currently set on the record.
func (s *Session) Geometry() (grid.Grid, grid.Frame) {
	return *s.Record.Grid, *s.Record.Frame
}

// SetGround moves the ground offset; it must stay inside the frame.
func (s *Session) SetGround(y int) error {
	_, f := s.Geometry()
	if y < 0 || y >= f.Height {
		return fmt.Errorf("editor: ground %d of height %d: %w", y, f.Height, ErrOutOfFrame)
	}
	s.Record.GroundOffsetY = y
	return nil
}

// SetCenter moves the horizontal center offset, at most half a frame either way.
func (s *Session) SetCenter(x int) error {
	_, f := s.Geometry()
	if x < -f.Width/2 || x > f.Width/2 {
		return fmt.Errorf("editor: center %d of width %d: %w", x, f.Width, ErrOutOfFrame)
	}
	s.Record.CenterOffsetX = x
	return nil
}

// SetHitbox clamps hb into the frame and stores it. An empty rectangle
// clears the hitbox.
func (s *Session) SetHitbox(hb image.Rectangle) {
	_, f := s.Geometry()
	s.Record.Hitbox, _ = slicer.ClampHitbox(hb, f)
}

// SetGrid overrides the grid; the frame size follows from the sheet size.
func (s *Session) SetGrid(g grid.Grid) error {
	f, ok := g.FrameFor(s.buf.Width(), s.buf.Height())
	if !ok {
		return fmt.Errorf("editor: %s on %dx%d: %w", g, s.buf.Width(), s.buf.Height(), ErrGridMismatch)
	}
	s.Record.SetGeometry(g, f)
	s.SetHitbox(s.Record.Hitbox)
	return nil
}

// Recompute replaces the offsets with fresh measurements on the current grid.
func (s *Session) Recompute() offsets.Offsets {
	g, f := s.Geometry()
	off := offsets.Compute(s.buf, g, f, s.opts.OffsetRows)
	s.Record.GroundOffsetY, s.Record.CenterOffsetX = off.GroundY, off.CenterX
	return off
}

// Preview renders the sheet's frames with the record's guides.
func (s *Session) Preview(scale int) (*image.NRGBA, error) {
	g, f := s.Geometry()
	frames, err := slicer.Slice(s.Sheet, g, f, slicer.Selection{}, slicer.Selection{},
		slicer.Options{GroundOffsetY: s.Record.GroundOffsetY})
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	return preview.ContactSheet(frames, preview.Options{Columns: g.Columns, Scale: scale, Hitbox: s.Record.Hitbox}), nil
}

// Commit marks the record reviewed, writes it over any existing record and
// saves the store.
func (s *Session) Commit() error {
	s.Record.Reviewed = true
	s.store.Put(s.Record, true)
	s.Existing = true
	if s.opts.StorePath == "" {
		return nil
	}
	if err := s.store.Save(s.opts.StorePath); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// Forget removes a subject's record, reviewed or not, and saves the store.
// It is the only path that discards a reviewed record.
func Forget(store *adjust.Store, id, storePath string) error {
	if err := store.Delete(id); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if storePath == "" {
		return nil
	}
	if err := store.Save(storePath); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}
