package anim

import "strings"

// Type is an animation the runtime can request for a subject.
type Type string

const (
	Idle          Type = "Idle"
	Walk          Type = "Walk"
	WalkDown      Type = "WalkDown"
	WalkDownRight Type = "WalkDownRight"
	WalkRight     Type = "WalkRight"
	WalkUpRight   Type = "WalkUpRight"
	WalkUp        Type = "WalkUp"
	WalkUpLeft    Type = "WalkUpLeft"
	WalkLeft      Type = "WalkLeft"
	WalkDownLeft  Type = "WalkDownLeft"
	Attack        Type = "Attack"
	Hurt          Type = "Hurt"
	Sleep         Type = "Sleep"
	Faint         Type = "Faint"
)

// DirectionRows is the row count of a sheet laid out one row per facing.
const DirectionRows = 8

// directional walks, in sheet row order.
var walkDirections = []Type{
	WalkDown, WalkDownRight, WalkRight, WalkUpRight,
	WalkUp, WalkUpLeft, WalkLeft, WalkDownLeft,
}

// All lists every known type.
var All = append([]Type{Idle, Walk}, append(walkDirections, Attack, Hurt, Sleep, Faint)...)

// DefaultIgnoreStoredGrid lists types whose sheets are re-derived instead of
// reusing a grid stored for the subject's primary sheet.
var DefaultIgnoreStoredGrid = append([]Type{Walk}, append(walkDirections, Attack)...)

// Parse maps a name to a known type, case-insensitively.
func Parse(name string) (Type, bool) {
	for _, t := range All {
		if strings.EqualFold(string(t), strings.TrimSpace(name)) {
			return t, true
		}
	}
	return "", false
}

// SheetName is the animation whose sheet holds t's frames.
func (t Type) SheetName() string {
	if t.Direction() >= 0 {
		return string(Walk)
	}
	return string(t)
}

// Direction returns the sheet row of a directional walk, or -1.
func (t Type) Direction() int {
	for i, d := range walkDirections {
		if d == t {
			return i
		}
	}
	return -1
}

// Rows returns the row selection for t on a sheet with gridRows rows.
// Directional walks require their row; a missing row must not be replaced
// by another direction's frames.
func (t Type) Rows(gridRows int) (rows []int, required bool) {
	if d := t.Direction(); d >= 0 {
		return []int{d}, true
	}
	if t != Walk && gridRows == DirectionRows {
		return []int{0}, false
	}
	return nil, false
}

// IgnoreSet is a case-insensitive set of animation names.
type IgnoreSet map[string]bool

// NewIgnoreSet builds a set from names.
func NewIgnoreSet(names []string) IgnoreSet {
	s := make(IgnoreSet, len(names))
	for _, n := range names {
		s[strings.ToLower(strings.TrimSpace(n))] = true
	}
	return s
}

// DefaultIgnoreSet is the set built from DefaultIgnoreStoredGrid.
func DefaultIgnoreSet() IgnoreSet {
	names := make([]string, len(DefaultIgnoreStoredGrid))
	for i, t := range DefaultIgnoreStoredGrid {
		names[i] = string(t)
	}
	return NewIgnoreSet(names)
}

// Has reports whether name is in the set.
func (s IgnoreSet) Has(name string) bool {
	return s[strings.ToLower(strings.TrimSpace(name))]
}
