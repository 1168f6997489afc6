package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxContains(t *testing.T) {
	b := Box{X: 10, Y: 10, Width: 20, Height: 10}
	assert.True(t, b.Contains(10, 10))
	assert.True(t, b.Contains(29.9, 19.9))
	assert.False(t, b.Contains(30, 15), "right edge is exclusive")
	assert.False(t, b.Contains(15, 20), "bottom edge is exclusive")
	assert.False(t, Box{Width: 0, Height: 10}.Contains(0, 0))
}

func TestBoxIntersect(t *testing.T) {
	a := Box{X: 0, Y: 0, Width: 100, Height: 100}
	i, ok := a.Intersect(Box{X: 50, Y: 80, Width: 100, Height: 100})
	assert.True(t, ok)
	assert.Equal(t, Box{X: 50, Y: 80, Width: 50, Height: 20}, i)

	_, ok = a.Intersect(Box{X: 100, Y: 0, Width: 10, Height: 10})
	assert.False(t, ok, "touching boxes do not overlap")
}

func TestBoxClosestPoint(t *testing.T) {
	b := Box{X: 0, Y: 0, Width: 100, Height: 50}
	x, y := b.ClosestPoint(-20, 20)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 20.0, y)

	x, y = b.ClosestPoint(500, 500)
	assert.True(t, b.Contains(x, y))
	assert.InDelta(t, 100, x, 0.01)
	assert.InDelta(t, 50, y, 0.01)
}

func TestRegionDropsEmptyBoxes(t *testing.T) {
	r := NewRegion(Box{Width: 0, Height: 5}, Box{Width: 5, Height: 5})
	assert.Len(t, r.Rects(), 1)
	assert.True(t, NewRegion().Empty())
}

func TestRegionIntersectAndTranslate(t *testing.T) {
	r := NewRegion(Box{Width: 100, Height: 100})
	i := r.Intersect(NewRegion(Box{X: 50, Y: 50, Width: 100, Height: 100}))
	assert.Equal(t, []Box{{X: 50, Y: 50, Width: 50, Height: 50}}, i.Rects())

	moved := i.Translate(-50, 10)
	assert.True(t, moved.Contains(0, 60))
	assert.False(t, moved.Contains(50, 50))
}

func TestRegionConfine(t *testing.T) {
	r := NewRegion(Box{Width: 100, Height: 100})

	x, y, ok := r.Confine(50, 50, 60, 70)
	assert.True(t, ok)
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 70.0, y)

	x, y, ok = r.Confine(50, 50, 150, 50)
	assert.True(t, ok)
	assert.InDelta(t, 100, x, 0.01)
	assert.Equal(t, 50.0, y)
	assert.True(t, r.Contains(x, y))

	_, _, ok = r.Confine(150, 50, 50, 50)
	assert.False(t, ok, "starting outside the region")
}

func TestRegionConfineAcrossBoxes(t *testing.T) {
	// L shape: a wide top bar and a column below its left part
	r := NewRegion(
		Box{X: 0, Y: 0, Width: 100, Height: 10},
		Box{X: 0, Y: 10, Width: 10, Height: 90},
	)

	x, y, ok := r.Confine(5, 5, 5, 200)
	assert.True(t, ok)
	assert.Equal(t, 5.0, x)
	assert.InDelta(t, 100, y, 0.01)
	assert.True(t, r.Contains(x, y))

	x, y, ok = r.Confine(50, 5, 50, 50)
	assert.True(t, ok)
	assert.Equal(t, 50.0, x)
	assert.InDelta(t, 10, y, 0.01)
	assert.True(t, r.Contains(x, y))
}
