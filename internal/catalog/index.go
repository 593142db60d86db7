package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sprite-offsets/internal/animdata"
)

// ErrNoSheet is returned when a subject has no sheet for an animation.
var ErrNoSheet = errors.New("no sprite sheet")

const (
	sheetSuffix  = "-anim"
	animDataFile = "animdata.xml"
)

// sheet extensions in priority order: PNG wins over the others for one stem.
var sheetExts = []string{".png", ".webp", ".tga", ".bmp"}

// Subject is one sprite directory: its sheets and optional AnimData.xml.
type Subject struct {
	ID  string // slash-separated path relative to the catalog root
	Dir string

	sheets   map[string]string // lowercased animation name → path
	names    map[string]string // lowercased animation name → name as on disk
	animData string
}

// Scan walks root and returns every directory holding at least one
// "<Anim>-Anim.<ext>" sheet, sorted by id. Nested form directories
// become their own subjects ("0025/0001").
func Scan(root string) ([]*Subject, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog: %s is not a directory", root)
	}

	byDir := map[string]*Subject{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		dir := filepath.Dir(path)
		base := strings.ToLower(d.Name())

		s := byDir[dir]
		if s == nil {
			rel, _ := filepath.Rel(root, dir)
			s = &Subject{
				ID:     filepath.ToSlash(rel),
				Dir:    dir,
				sheets: map[string]string{},
				names:  map[string]string{},
			}
			byDir[dir] = s
		}

		if base == animDataFile {
			s.animData = path
			return nil
		}
		s.addSheet(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: walk %s: %w", root, err)
	}

	var subjects []*Subject
	for _, s := range byDir {
		if len(s.sheets) > 0 {
			subjects = append(subjects, s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

// Open indexes a single subject directory.
func Open(id, dir string) (*Subject, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	s := &Subject{ID: id, Dir: dir, sheets: map[string]string{}, names: map[string]string{}}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if strings.ToLower(e.Name()) == animDataFile {
			s.animData = path
			continue
		}
		s.addSheet(path)
	}
	return s, nil
}

func (s *Subject) addSheet(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	rank := extRank(ext)
	if rank < 0 {
		return
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !strings.HasSuffix(strings.ToLower(stem), sheetSuffix) {
		return
	}
	name := stem[:len(stem)-len(sheetSuffix)]
	if name == "" {
		return
	}
	k := strings.ToLower(name)
	if existing, ok := s.sheets[k]; ok && extRank(strings.ToLower(filepath.Ext(existing))) <= rank {
		return
	}
	s.sheets[k] = path
	s.names[k] = name
}

func extRank(ext string) int {
	for i, e := range sheetExts {
		if e == ext {
			return i
		}
	}
	return -1
}

// SheetPath returns the sheet file for an animation name, case-insensitively.
func (s *Subject) SheetPath(name string) (string, error) {
	p, ok := s.sheets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("catalog: %s/%s: %w", s.ID, name, ErrNoSheet)
	}
	return p, nil
}

// SheetFile returns the path of a sheet given by file name inside the subject directory.
func (s *Subject) SheetFile(file string) (string, error) {
	for _, p := range s.sheets {
		if strings.EqualFold(filepath.Base(p), file) {
			return p, nil
		}
	}
	return "", fmt.Errorf("catalog: %s/%s: %w", s.ID, file, ErrNoSheet)
}

// Animations returns the animation names with a sheet, sorted.
func (s *Subject) Animations() []string {
	names := make([]string, 0, len(s.names))
	for _, n := range s.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Primary picks the sheet analysed for the subject's offsets: the stored
// primary file when it still exists, else the first preferred animation
// present, else the first animation by name.
func (s *Subject) Primary(preferred []string, storedFile string) (name, path string, err error) {
	if storedFile != "" {
		if p, err := s.SheetFile(storedFile); err == nil {
			stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			return stem[:len(stem)-len(sheetSuffix)], p, nil
		}
	}
	for _, n := range preferred {
		if p, err := s.SheetPath(n); err == nil {
			return s.names[strings.ToLower(strings.TrimSpace(n))], p, nil
		}
	}
	names := s.Animations()
	if len(names) == 0 {
		return "", "", fmt.Errorf("catalog: %s: %w", s.ID, ErrNoSheet)
	}
	p, _ := s.SheetPath(names[0])
	return names[0], p, nil
}

// HasAnimData reports whether the subject ships an AnimData.xml.
func (s *Subject) HasAnimData() bool { return s.animData != "" }

// LoadAnimData parses the subject's AnimData.xml; (nil, nil) when absent.
func (s *Subject) LoadAnimData() (*animdata.Doc, error) {
	if s.animData == "" {
		return nil, nil
	}
	return animdata.Parse(s.animData)
}
