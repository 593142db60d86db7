package animdata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sprite-offsets/internal/grid"
)

var (
	// ErrUnknownAnimation is returned for a name the document does not declare.
	ErrUnknownAnimation = errors.New("unknown animation")
	// ErrUnresolvedReference is returned when a CopyOf chain points at a
	// missing entry, loops back on itself, or ends without a frame size.
	ErrUnresolvedReference = errors.New("unresolved animation reference")
)

// xmlAnimData matches the AnimData.xml schema.
type xmlAnimData struct {
	ShadowSize string    `xml:"ShadowSize"`
	Anims      []xmlAnim `xml:"Anims>Anim"`
}

type xmlAnim struct {
	Name        string   `xml:"Name"`
	Index       string   `xml:"Index"`
	FrameWidth  string   `xml:"FrameWidth"`
	FrameHeight string   `xml:"FrameHeight"`
	CopyOf      string   `xml:"CopyOf"`
	Durations   []string `xml:"Durations>Duration"`
	RushFrame   string   `xml:"RushFrame"`
	HitFrame    string   `xml:"HitFrame"`
	ReturnFrame string   `xml:"ReturnFrame"`
}

// Parse reads an AnimData.xml file.
func Parse(path string) (*Doc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("animdata: read %s: %w", path, err)
	}
	doc, err := ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("animdata: parse %s: %w", path, err)
	}
	return doc, nil
}

// ParseBytes decodes an AnimData document. Entries without a name are
// skipped; numeric fields that fail to parse are left at zero. When a name
// repeats, the first entry wins.
func ParseBytes(raw []byte) (*Doc, error) {
	var data xmlAnimData
	if err := xml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	doc := &Doc{
		ShadowSize: atoi(data.ShadowSize),
		anims:      make(map[string]Anim, len(data.Anims)),
	}
	for _, a := range data.Anims {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := doc.anims[key]; dup {
			continue
		}
		entry := Anim{
			Name:        name,
			Index:       atoi(a.Index),
			FrameWidth:  atoi(a.FrameWidth),
			FrameHeight: atoi(a.FrameHeight),
			CopyOf:      strings.TrimSpace(a.CopyOf),
			RushFrame:   atoi(a.RushFrame),
			HitFrame:    atoi(a.HitFrame),
			ReturnFrame: atoi(a.ReturnFrame),
		}
		for _, d := range a.Durations {
			entry.Durations = append(entry.Durations, atoi(d))
		}
		doc.anims[key] = entry
		doc.order = append(doc.order, key)
	}
	return doc, nil
}

// Names returns the declared animation names in document order.
func (d *Doc) Names() []string {
	names := make([]string, len(d.order))
	for i, key := range d.order {
		names[i] = d.anims[key].Name
	}
	return names
}

// Lookup returns the raw entry for name, without following CopyOf.
func (d *Doc) Lookup(name string) (Anim, bool) {
	if d == nil {
		return Anim{}, false
	}
	a, ok := d.anims[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Resolve follows the CopyOf chain starting at name and returns the first
// entry that declares its own geometry. Each name is visited at most once.
func (d *Doc) Resolve(name string) (Anim, error) {
	a, ok := d.Lookup(name)
	if !ok {
		return Anim{}, fmt.Errorf("animdata: %q: %w", name, ErrUnknownAnimation)
	}

	visited := map[string]bool{}
	for a.CopyOf != "" {
		visited[strings.ToLower(a.Name)] = true
		target := strings.ToLower(a.CopyOf)
		if visited[target] {
			return Anim{}, fmt.Errorf("animdata: %q: cycle at %q: %w", name, a.CopyOf, ErrUnresolvedReference)
		}
		next, ok := d.Lookup(target)
		if !ok {
			return Anim{}, fmt.Errorf("animdata: %q: missing %q: %w", name, a.CopyOf, ErrUnresolvedReference)
		}
		a = next
	}
	return a, nil
}

// FrameSize returns the declared frame size of name after resolving CopyOf.
func (d *Doc) FrameSize(name string) (grid.Frame, error) {
	a, err := d.Resolve(name)
	if err != nil {
		return grid.Frame{}, err
	}
	f, ok := a.Frame()
	if !ok {
		return grid.Frame{}, fmt.Errorf("animdata: %q: no frame size: %w", name, ErrUnresolvedReference)
	}
	return f, nil
}

// Durations returns the per-frame durations of name after resolving CopyOf,
// or nil when the chain cannot be resolved.
func (d *Doc) Durations(name string) []int {
	a, err := d.Resolve(name)
	if err != nil {
		return nil
	}
	return a.Durations
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
