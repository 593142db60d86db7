package loader

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/catalog"
	"sprite-offsets/internal/resolve"
	"sprite-offsets/internal/sheettest"
	"sprite-offsets/internal/slicer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const animData = `<AnimData><Anims>
	<Anim><Name>Walk</Name><FrameWidth>64</FrameWidth><FrameHeight>32</FrameHeight>
		<Durations><Duration>4</Duration><Duration>6</Duration></Durations></Anim>
	<Anim><Name>Idle</Name><CopyOf>Walk</CopyOf></Anim>
</Anims></AnimData>`

const oneRow = `<AnimData><Anims>
	<Anim><Name>Walk</Name><FrameWidth>32</FrameWidth><FrameHeight>32</FrameHeight></Anim>
</Anims></AnimData>`

func setup(t *testing.T, store *adjust.Store) *Loader {
	t.Helper()
	root := t.TempDir()
	sheet := sheettest.Tiled(2, 8, 64, 32, image.Rect(27, 11, 37, 21))
	sheettest.WritePNG(t, filepath.Join(root, "0001", "Walk-Anim.png"), sheet)
	sheettest.WritePNG(t, filepath.Join(root, "0001", "Idle-Anim.png"), sheet)
	require.NoError(t, os.WriteFile(filepath.Join(root, "0001", "AnimData.xml"), []byte(animData), 0644))

	sheettest.WritePNG(t, filepath.Join(root, "0002", "Walk-Anim.png"),
		sheettest.Tiled(4, 1, 32, 32, image.Rect(8, 8, 24, 30)))
	require.NoError(t, os.WriteFile(filepath.Join(root, "0002", "AnimData.xml"), []byte(oneRow), 0644))

	subjects, err := catalog.Scan(root)
	require.NoError(t, err)
	return New(subjects, store, Options{CacheSize: 4, Resolver: resolve.New(true)})
}

func TestLoadDirectionalWalk(t *testing.T) {
	l := setup(t, nil)
	clip, err := l.Load(context.Background(), "0001", anim.WalkLeft)
	require.NoError(t, err)

	assert.Equal(t, resolve.SourceDeclared, clip.Source)
	assert.Equal(t, "Walk-Anim.png", clip.File)
	require.Len(t, clip.Frames, 2)
	for i, f := range clip.Frames {
		assert.Equal(t, 6, f.Row)
		assert.Equal(t, i, f.Col)
		assert.Equal(t, image.Rect(0, 0, 64, 32), f.Image.Bounds())
		assert.Equal(t, 21, f.GroundLineY)
	}
	assert.Equal(t, []int{4, 6}, clip.Durations)
	assert.Equal(t, 11, clip.Offsets.GroundY)
	assert.False(t, clip.Reviewed)
}

func TestLoadAppliesStoredPlacement(t *testing.T) {
	store := adjust.NewStore()
	store.Put(adjust.Record{
		UniqueID:       "0001",
		GroundOffsetY:  4,
		Reviewed:       true,
		Hitbox:         image.Rect(20, 0, 44, 32),
		AnimationFiles: map[string]string{"Attack": "idle-anim.png"},
	}, true)
	l := setup(t, store)

	clip, err := l.Load(context.Background(), "0001", anim.Idle)
	require.NoError(t, err)
	assert.True(t, clip.Reviewed)
	assert.Equal(t, image.Rect(20, 0, 44, 32), clip.Hitbox)
	require.Len(t, clip.Frames, 2)
	assert.Equal(t, 0, clip.Frames[0].Row)
	assert.Equal(t, image.Rect(0, 0, 24, 32), clip.Frames[0].Image.Bounds())
	assert.Equal(t, 28, clip.Frames[0].GroundLineY)
	assert.Equal(t, []int{4, 6}, clip.Durations)

	clip, err = l.Load(context.Background(), "0001", anim.Attack)
	require.NoError(t, err)
	assert.Equal(t, "Idle-Anim.png", clip.File)

	// the store is never written by the loader
	rec, _ := store.Get("0001")
	assert.Nil(t, rec.Grid)
}

func TestLoadMissingDirectionRow(t *testing.T) {
	l := setup(t, nil)
	clip, err := l.Load(context.Background(), "0002", anim.Walk)
	require.NoError(t, err)
	assert.Len(t, clip.Frames, 4)

	_, err = l.Load(context.Background(), "0002", anim.WalkUp)
	assert.ErrorIs(t, err, slicer.ErrEmptySelection)
}

func TestLoadErrors(t *testing.T) {
	l := setup(t, nil)
	ctx := context.Background()

	_, err := l.Load(ctx, "9999", anim.Idle)
	assert.ErrorIs(t, err, ErrUnknownSubject)

	_, err = l.Load(ctx, "0001", anim.Sleep)
	assert.ErrorIs(t, err, catalog.ErrNoSheet)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.Load(canceled, "0001", anim.Idle)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderCachesSubjects(t *testing.T) {
	l := setup(t, nil)
	ctx := context.Background()

	l.Pin("0001")
	_, err := l.Load(ctx, "0001", anim.Idle)
	require.NoError(t, err)
	_, err = l.Load(ctx, "0001", anim.WalkDown)
	require.NoError(t, err)
	_, err = l.Load(ctx, "0002", anim.Walk)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Cached())
	l.Unpin("0001")
	assert.Equal(t, 2, l.Cached())
}

func singleSubject(t *testing.T, files map[string][]byte) *Loader {
	t.Helper()
	dir := t.TempDir()
	sheettest.WritePNG(t, filepath.Join(dir, "Idle-Anim.png"),
		sheettest.Tiled(2, 8, 64, 32, image.Rect(27, 11, 37, 21)))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), body, 0644))
	}
	sub, err := catalog.Open("0003", dir)
	require.NoError(t, err)
	return New([]*catalog.Subject{sub}, nil, Options{CacheSize: 2})
}

func TestLoadSkipsUnreadableSiblingSheet(t *testing.T) {
	l := singleSubject(t, map[string][]byte{"Attack-Anim.png": []byte("not a png")})
	ctx := context.Background()

	clip, err := l.Load(ctx, "0003", anim.Idle)
	require.NoError(t, err)
	assert.Len(t, clip.Frames, 2)

	_, err = l.Load(ctx, "0003", anim.Attack)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Attack-Anim.png")
}

func TestLoadFallsThroughMalformedAnimData(t *testing.T) {
	l := singleSubject(t, map[string][]byte{"AnimData.xml": []byte("<AnimData><Anims>")})

	clip, err := l.Load(context.Background(), "0003", anim.Idle)
	require.NoError(t, err)
	assert.Error(t, clip.AnimDataErr)
	assert.Equal(t, resolve.SourceDetected, clip.Source)
	assert.Equal(t, 11, clip.Offsets.GroundY)
	assert.Nil(t, clip.Durations)
	assert.Len(t, clip.Frames, 2)
}
