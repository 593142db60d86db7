package animdata

import (
	"os"
	"path/filepath"
	"testing"

	"sprite-offsets/internal/grid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" ?>
<AnimData>
	<ShadowSize>1</ShadowSize>
	<Anims>
		<Anim>
			<Name>Walk</Name>
			<Index>0</Index>
			<FrameWidth>32</FrameWidth>
			<FrameHeight>40</FrameHeight>
			<Durations>
				<Duration>8</Duration>
				<Duration>10</Duration>
				<Duration>8</Duration>
			</Durations>
		</Anim>
		<Anim>
			<Name>Attack</Name>
			<Index>1</Index>
			<FrameWidth>64</FrameWidth>
			<FrameHeight>64</FrameHeight>
			<RushFrame>2</RushFrame>
			<HitFrame>3</HitFrame>
			<ReturnFrame>5</ReturnFrame>
			<Durations><Duration>2</Duration></Durations>
		</Anim>
		<Anim>
			<Name>Idle</Name>
			<CopyOf>Walk</CopyOf>
		</Anim>
		<Anim>
			<Name>Pose</Name>
			<CopyOf>Idle</CopyOf>
		</Anim>
		<Anim>
			<Name>LoopA</Name>
			<CopyOf>LoopB</CopyOf>
		</Anim>
		<Anim>
			<Name>LoopB</Name>
			<CopyOf>LoopA</CopyOf>
		</Anim>
		<Anim>
			<Name>Dangling</Name>
			<CopyOf>Nowhere</CopyOf>
		</Anim>
		<Anim>
			<Name>Sizeless</Name>
			<FrameWidth>0</FrameWidth>
		</Anim>
	</Anims>
</AnimData>`

func parseSample(t *testing.T) *Doc {
	t.Helper()
	doc, err := ParseBytes([]byte(sample))
	require.NoError(t, err)
	return doc
}

func TestParseBytes(t *testing.T) {
	doc := parseSample(t)
	assert.Equal(t, 1, doc.ShadowSize)
	assert.Equal(t, []string{"Walk", "Attack", "Idle", "Pose", "LoopA", "LoopB", "Dangling", "Sizeless"}, doc.Names())

	atk, ok := doc.Lookup("attack")
	require.True(t, ok)
	assert.Equal(t, 3, atk.HitFrame)
	assert.Equal(t, []int{2}, atk.Durations)
}

func TestFrameSizeFollowsCopyOf(t *testing.T) {
	doc := parseSample(t)

	f, err := doc.FrameSize("Pose")
	require.NoError(t, err)
	assert.Equal(t, grid.Frame{Width: 32, Height: 40}, f)
	assert.Equal(t, []int{8, 10, 8}, doc.Durations("idle"))
}

func TestFrameSizeCycle(t *testing.T) {
	doc := parseSample(t)
	_, err := doc.FrameSize("LoopA")
	assert.ErrorIs(t, err, ErrUnresolvedReference)
	assert.Nil(t, doc.Durations("LoopB"))
}

func TestFrameSizeSelfReference(t *testing.T) {
	doc, err := ParseBytes([]byte(`<AnimData><Anims><Anim><Name>Idle</Name><CopyOf>idle</CopyOf></Anim></Anims></AnimData>`))
	require.NoError(t, err)
	_, err = doc.FrameSize("Idle")
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestFrameSizeUnresolved(t *testing.T) {
	doc := parseSample(t)

	_, err := doc.FrameSize("Dangling")
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	_, err = doc.FrameSize("Sizeless")
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	_, err = doc.FrameSize("Sleep")
	assert.ErrorIs(t, err, ErrUnknownAnimation)

	var none *Doc
	_, err = none.FrameSize("Walk")
	assert.ErrorIs(t, err, ErrUnknownAnimation)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AnimData.xml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Len(t, doc.Names(), 8)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}
