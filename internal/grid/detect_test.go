package grid

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"sprite-offsets/internal/sheettest"

	"github.com/stretchr/testify/assert"
)

// squareSheet is 4x2 cells of 6x8 with a 2x2 square centered horizontally,
// its lowest row one pixel above the cell bottom.
func squareSheet() *image.NRGBA {
	return sheettest.Tiled(4, 2, 6, 8, image.Rect(2, 5, 4, 7))
}

func TestDetectSquareSheet(t *testing.T) {
	buf := sheettest.Buffer(t, squareSheet())
	for _, prefer := range []bool{true, false} {
		g, f := Detect(buf, prefer)
		assert.Equal(t, Grid{Columns: 4, Rows: 2}, g, "preferStandard=%v", prefer)
		assert.Equal(t, Frame{Width: 6, Height: 8}, f, "preferStandard=%v", prefer)
	}
}

func TestDetectEmptySheet(t *testing.T) {
	for _, size := range []image.Point{{1, 1}, {24, 16}, {48, 64}, {7, 13}, {128, 256}} {
		buf := sheettest.Buffer(t, sheettest.New(size.X, size.Y))
		for _, prefer := range []bool{true, false} {
			g, f := Detect(buf, prefer)
			assert.Equal(t, Grid{Columns: 1, Rows: 1}, g, "%v", size)
			assert.Equal(t, Frame{Width: size.X, Height: size.Y}, f, "%v", size)
		}
	}
}

func TestDetectFourColumnSeparators(t *testing.T) {
	img := sheettest.New(64, 64)
	sheettest.Fill(img, img.Bounds())
	// 33 instead of 32 exercises the 1px tolerance.
	for _, x := range []int{16, 33, 48} {
		sheettest.Clear(img, image.Rect(x, 0, x+1, 64))
	}
	g, f := Detect(sheettest.Buffer(t, img), true)
	assert.Equal(t, Grid{Columns: 4, Rows: 8}, g)
	assert.Equal(t, Frame{Width: 16, Height: 8}, f)
}

func TestDetectWithoutSeparatorsKeepsSingleColumn(t *testing.T) {
	img := sheettest.New(64, 64)
	sheettest.Fill(img, img.Bounds())
	sheettest.Clear(img, image.Rect(16, 0, 17, 64))
	g, _ := Detect(sheettest.Buffer(t, img), true)
	assert.Equal(t, Grid{Columns: 1, Rows: 8}, g)
}

func TestDetectEightRowDirectionSheet(t *testing.T) {
	img := sheettest.Tiled(5, 8, 24, 32, image.Rect(6, 10, 18, 30))
	g, f := Detect(sheettest.Buffer(t, img), true)
	assert.Equal(t, Grid{Columns: 5, Rows: 8}, g)
	assert.Equal(t, Frame{Width: 24, Height: 32}, f)
}

func TestScoreFavorsUniformFrames(t *testing.T) {
	buf := sheettest.Buffer(t, sheettest.Tiled(4, 1, 6, 8, image.Rect(1, 2, 5, 6)))
	uniform := Score(buf, 4, 1, 6, 8)
	varied := Score(buf, 3, 1, 8, 8)
	assert.Equal(t, 0.0, uniform)
	assert.Less(t, uniform, varied)
}

func TestScorePenalizesEmptyCells(t *testing.T) {
	img := sheettest.New(16, 8)
	sheettest.Fill(img, image.Rect(2, 2, 6, 6))
	buf := sheettest.Buffer(t, img)
	assert.Equal(t, float64(emptyCellPenalty), Score(buf, 2, 1, 8, 8))
	assert.True(t, math.IsInf(Score(sheettest.Buffer(t, sheettest.New(16, 8)), 2, 1, 8, 8), 1))
}

func TestDetectDeterministicAndConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		w := 8 * (1 + rng.Intn(6))
		h := 8 * (1 + rng.Intn(4))
		img := sheettest.New(w, h)
		for n := 0; n < 1+rng.Intn(12); n++ {
			x, y := rng.Intn(w), rng.Intn(h)
			sheettest.Fill(img, image.Rect(x, y, x+1+rng.Intn(5), y+1+rng.Intn(5)))
		}
		buf := sheettest.Buffer(t, img)
		for _, prefer := range []bool{true, false} {
			g1, f1 := Detect(buf, prefer)
			g2, f2 := Detect(buf, prefer)
			assert.Equal(t, g1, g2)
			assert.Equal(t, f1, f2)
			assert.True(t, Fits(g1, f1, w, h), "%v %v on %dx%d", g1, f1, w, h)
		}
	}
}

func TestFrameGridConversions(t *testing.T) {
	f, ok := Grid{Columns: 4, Rows: 8}.FrameFor(128, 256)
	assert.True(t, ok)
	assert.Equal(t, Frame{Width: 32, Height: 32}, f)

	_, ok = Grid{Columns: 3, Rows: 8}.FrameFor(128, 256)
	assert.False(t, ok)

	g, ok := Frame{Width: 32, Height: 32}.GridFor(128, 256)
	assert.True(t, ok)
	assert.Equal(t, Grid{Columns: 4, Rows: 8}, g)

	_, ok = Frame{Width: 48, Height: 32}.GridFor(128, 256)
	assert.False(t, ok)
}
