// Package loader serves sliced animation clips to a running game or tool.
// Decoded sheets are cached per subject; stored adjustments are read but
// never written.
package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/animdata"
	"sprite-offsets/internal/cache"
	"sprite-offsets/internal/catalog"
	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/offsets"
	"sprite-offsets/internal/pixel"
	"sprite-offsets/internal/resolve"
	"sprite-offsets/internal/sheet"
	"sprite-offsets/internal/slicer"
)

// ErrUnknownSubject is returned for an id the catalog does not contain.
var ErrUnknownSubject = errors.New("unknown subject")

// Clip is one animation ready to play.
type Clip struct {
	Subject string
	Anim    anim.Type
	File    string
	Grid    grid.Grid
	Frame   grid.Frame
	Source  resolve.Source
	Frames  []slicer.Frame
	// Durations per frame in ticks, from AnimData.xml; nil when undeclared.
	Durations []int
	Offsets   offsets.Offsets
	// Hitbox applied to every frame, in frame coordinates.
	Hitbox image.Rectangle
	// Reviewed reports that the placement came from a reviewed record.
	Reviewed bool
	// AnimDataErr is set when the subject's AnimData.xml could not be
	// parsed; declared sizes and durations were then ignored.
	AnimDataErr error
}

// Options configures a Loader.
type Options struct {
	CacheSize int
	Resolver  *resolve.Resolver
}

type decoded struct {
	img *image.NRGBA
	buf *pixel.Buffer
}

// bundle is the cached unit: every sheet of one subject plus its
// declarations. Sheets that failed to decode keep their error so only
// clips drawn from them fail.
type bundle struct {
	subject *catalog.Subject
	doc     *animdata.Doc
	docErr  error
	sheets  map[string]decoded // keyed by path
	broken  map[string]error   // keyed by path
}

// Loader resolves and slices clips on demand.
type Loader struct {
	subjects map[string]*catalog.Subject
	store    *adjust.Store
	resolver *resolve.Resolver
	cache    *cache.Cache[*bundle]
}

// New returns a loader over subjects. store may be nil.
func New(subjects []*catalog.Subject, store *adjust.Store, opts Options) *Loader {
	l := &Loader{
		subjects: make(map[string]*catalog.Subject, len(subjects)),
		store:    store,
		resolver: opts.Resolver,
	}
	if l.resolver == nil {
		l.resolver = resolve.New(true)
	}
	for _, s := range subjects {
		l.subjects[strings.ToLower(s.ID)] = s
	}
	l.cache = cache.New(opts.CacheSize, l.loadBundle)
	return l
}

// Pin keeps a subject's sheets cached until Unpin, e.g. while it is on screen.
func (l *Loader) Pin(id string) { l.cache.Pin(strings.ToLower(id)) }

// Unpin releases a Pin.
func (l *Loader) Unpin(id string) { l.cache.Unpin(strings.ToLower(id)) }

// Cached returns the number of subjects currently held in memory.
func (l *Loader) Cached() int { return l.cache.Len() }

// Load returns the clip for animation t of subject id.
func (l *Loader) Load(ctx context.Context, id string, t anim.Type) (*Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := l.cache.Get(ctx, strings.ToLower(id))
	if err != nil {
		return nil, err
	}

	var stored *adjust.Record
	if l.store != nil {
		if rec, ok := l.store.Get(id); ok {
			stored = &rec
		}
	}

	path, err := sheetFor(b.subject, stored, t)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	d, ok := b.sheets[path]
	if !ok {
		if err := b.broken[path]; err != nil {
			return nil, fmt.Errorf("loader: %s %s: %w", id, t, err)
		}
		return nil, fmt.Errorf("loader: %s: sheet %s not decoded", id, filepath.Base(path))
	}

	res := l.resolver.Resolve(resolve.Request{
		Sheet:    d.buf,
		File:     filepath.Base(path),
		Anim:     t,
		Declared: b.doc,
		Stored:   stored,
	})
	rows, required := t.Rows(res.Grid.Rows)

	clip := &Clip{
		Subject: b.subject.ID,
		Anim:    t,
		File:    filepath.Base(path),
		Grid:    res.Grid,
		Frame:   res.Frame,
		Source:  res.Source,
	}
	clip.AnimDataErr = b.docErr
	if stored != nil {
		clip.Offsets = offsets.Offsets{GroundY: stored.GroundOffsetY, CenterX: stored.CenterOffsetX}
		clip.Hitbox, _ = slicer.ClampHitbox(stored.Hitbox, res.Frame)
		clip.Reviewed = stored.Reviewed
	} else {
		clip.Offsets = offsets.Compute(d.buf, res.Grid, res.Frame, rows)
	}

	clip.Frames, err = slicer.Slice(d.img, res.Grid, res.Frame,
		slicer.Selection{Indices: rows, Required: required}, slicer.Selection{},
		slicer.Options{GroundOffsetY: clip.Offsets.GroundY, Hitbox: clip.Hitbox})
	if err != nil {
		return nil, fmt.Errorf("loader: %s %s: %w", id, t, err)
	}
	if b.doc != nil {
		clip.Durations = b.doc.Durations(t.SheetName())
	}
	return clip, nil
}

// sheetFor prefers the record's per-type file over the catalog's naming.
func sheetFor(sub *catalog.Subject, stored *adjust.Record, t anim.Type) (string, error) {
	if stored != nil {
		if file, ok := stored.FileFor(string(t)); ok {
			return sub.SheetFile(file)
		}
	}
	return sub.SheetPath(t.SheetName())
}

// loadBundle decodes a subject. A malformed AnimData.xml or an unreadable
// sheet does not fail the subject, matching the batch pipeline.
func (l *Loader) loadBundle(_ context.Context, key string) (*bundle, error) {
	sub, ok := l.subjects[key]
	if !ok {
		return nil, fmt.Errorf("loader: %s: %w", key, ErrUnknownSubject)
	}

	b := &bundle{subject: sub, sheets: map[string]decoded{}, broken: map[string]error{}}
	b.doc, b.docErr = sub.LoadAnimData()
	if b.docErr != nil {
		b.doc = nil
	}

	for _, name := range sub.Animations() {
		path, err := sub.SheetPath(name)
		if err != nil {
			continue
		}
		img, err := sheet.Load(path)
		if err != nil {
			b.broken[path] = err
			continue
		}
		buf, err := sheet.Buffer(img)
		if err != nil {
			b.broken[path] = err
			continue
		}
		b.sheets[path] = decoded{img: img, buf: buf}
	}
	return b, nil
}
