package adjust

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"sprite-offsets/internal/grid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offset_adjustments.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadCaseInsensitiveFields(t *testing.T) {
	path := writeFile(t, `[
		{"UNIQUEID": "0025", "GroundOffsetY": 4, "centeroffsetx": -2, "Reviewed": true,
		 "hitboxx": 2, "HITBOXY": 3, "hitboxWidth": 10, "hitboxheight": 12,
		 "FrameWidth": 32, "frameheight": 32, "GridColumns": 4, "gridrows": 8,
		 "PrimarySpriteFile": "Idle-Anim.png", "animationfiles": {"Idle": "Idle-Anim.png"}}
	]`)
	s, err := Load(path)
	require.NoError(t, err)

	r, ok := s.Get("0025")
	require.True(t, ok)
	assert.Equal(t, 4, r.GroundOffsetY)
	assert.Equal(t, -2, r.CenterOffsetX)
	assert.True(t, r.Reviewed)
	assert.Equal(t, image.Rect(2, 3, 12, 15), r.Hitbox)
	assert.Equal(t, "Idle-Anim.png", r.PrimarySpriteFile)

	g, f, ok := r.StoredGeometry()
	require.True(t, ok)
	assert.Equal(t, grid.Grid{Columns: 4, Rows: 8}, g)
	assert.Equal(t, grid.Frame{Width: 32, Height: 32}, f)

	file, ok := r.FileFor("idle")
	assert.True(t, ok)
	assert.Equal(t, "Idle-Anim.png", file)
}

func TestLoadNullFieldsAreUnspecified(t *testing.T) {
	path := writeFile(t, `[{"uniqueId": "0001", "groundOffsetY": 3, "frameWidth": 24, "frameHeight": 24, "gridColumns": null}]`)
	s, err := Load(path)
	require.NoError(t, err)

	r, ok := s.Get("0001")
	require.True(t, ok)
	assert.False(t, r.Reviewed)
	assert.True(t, r.Hitbox.Empty())
	assert.Nil(t, r.Grid)

	_, _, ok = r.StoredGeometry()
	assert.False(t, ok)
	f, ok := r.StoredFrame()
	assert.True(t, ok)
	assert.Equal(t, grid.Frame{Width: 24, Height: 24}, f)
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoadKeepsReviewedDuplicate(t *testing.T) {
	path := writeFile(t, `[
		{"uniqueId": "0007", "groundOffsetY": 5, "reviewed": true},
		{"uniqueId": "0007", "groundOffsetY": 9}
	]`)
	s, err := Load(path)
	require.NoError(t, err)
	r, _ := s.Get("0007")
	assert.Equal(t, 5, r.GroundOffsetY)
	assert.Equal(t, 1, s.Len())
}

func TestPutRespectsReviewed(t *testing.T) {
	s := NewStore()
	require.True(t, s.Put(Record{UniqueID: "0004", GroundOffsetY: 2, Reviewed: true}, true))

	assert.False(t, s.Put(Record{UniqueID: "0004", GroundOffsetY: 7}, false))
	r, _ := s.Get("0004")
	assert.Equal(t, 2, r.GroundOffsetY)

	assert.True(t, s.Put(Record{UniqueID: "0004", GroundOffsetY: 7}, true))
	r, _ = s.Get("0004")
	assert.Equal(t, 7, r.GroundOffsetY)

	assert.False(t, s.Put(Record{UniqueID: "  "}, true))
}

func TestDelete(t *testing.T) {
	s := NewStore()
	s.Put(Record{UniqueID: "0010"}, false)
	require.NoError(t, s.Delete("0010"))
	assert.ErrorIs(t, s.Delete("0010"), ErrNotFound)
}

func TestSaveWritesAllFields(t *testing.T) {
	s := NewStore()
	rec := Record{
		UniqueID:          "0150",
		GroundOffsetY:     6,
		CenterOffsetX:     1,
		Reviewed:          true,
		Hitbox:            image.Rect(4, 4, 28, 30),
		PrimarySpriteFile: "Idle-Anim.png",
	}
	rec.SetGeometry(grid.Grid{Columns: 4, Rows: 8}, grid.Frame{Width: 32, Height: 32})
	s.Put(rec, true)
	s.Put(Record{UniqueID: "0001"}, false)

	path := filepath.Join(t.TempDir(), "out", "adjustments.json")
	require.NoError(t, s.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "0001", entries[0]["uniqueId"])

	fields := []string{
		"uniqueId", "groundOffsetY", "centerOffsetX", "reviewed",
		"hitboxX", "hitboxY", "hitboxWidth", "hitboxHeight",
		"frameWidth", "frameHeight", "gridColumns", "gridRows",
		"primarySpriteFile", "animationFiles",
	}
	for _, f := range fields {
		assert.Contains(t, entries[0], f)
		assert.Contains(t, entries[1], f)
	}
	assert.Nil(t, entries[0]["frameWidth"])

	back, err := Load(path)
	require.NoError(t, err)
	got, ok := back.Get("0150")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}
