package tiler

import (
	"testing"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screen = geom.Box{Width: 1000, Height: 500}

// Check creation of new empty tree
func TestBTreeCreate(t *testing.T) {
	tree := NewTree(screen)
	require.NotNil(t, tree.LastFocusedContainer)
	assert.Equal(t, tree.Root.Leaf, tree.LastFocusedContainer)
	assert.True(t, tree.Root.Leaf.IsEmpty)
	assert.Zero(t, tree.Len())
	assert.Empty(t, tree.Layout())
	_, ok := tree.Focused()
	assert.False(t, ok)
	assert.NoError(t, checkNode(tree.Root, nil))
}

func TestBTreeInsert(t *testing.T) {
	tree := NewTree(screen)
	require.NoError(t, tree.AddApp(1))

	focused, ok := tree.Focused()
	require.True(t, ok)
	assert.Equal(t, 1, focused)
	assert.Equal(t, NodeTypeLeaf, tree.Root.Type, "the first app fills the empty root")
	assert.Equal(t, map[int]geom.Box{1: screen}, tree.Layout())

	require.NoError(t, tree.AddApp(2))
	focused, _ = tree.Focused()
	assert.Equal(t, 2, focused)
	require.Equal(t, NodeTypeBranch, tree.Root.Type)
	assert.Equal(t, DirectionHorizontal, tree.Root.Branch.Direction, "wide areas split side by side")
	assert.Equal(t, map[int]geom.Box{
		1: {X: 0, Y: 0, Width: 500, Height: 500},
		2: {X: 500, Y: 0, Width: 500, Height: 500},
	}, tree.Layout())

	// 2 is 500x500, not taller than wide, so it splits side by side again
	require.NoError(t, tree.AddApp(3))
	layout := tree.Layout()
	assert.Equal(t, geom.Box{X: 500, Width: 250, Height: 500}, layout[2])
	assert.Equal(t, geom.Box{X: 750, Width: 250, Height: 500}, layout[3])

	// 3 is now taller than wide
	require.NoError(t, tree.AddApp(4))
	layout = tree.Layout()
	assert.Equal(t, geom.Box{X: 750, Width: 250, Height: 250}, layout[3])
	assert.Equal(t, geom.Box{X: 750, Y: 250, Width: 250, Height: 250}, layout[4])

	assert.Equal(t, []int{1, 2, 3, 4}, tree.Apps())
	assert.NoError(t, checkNode(tree.Root, nil))
	assert.Error(t, tree.AddApp(4), "ids are unique")
}

func TestBTreeRemove(t *testing.T) {
	tree := NewTree(screen)
	for id := 1; id <= 3; id++ {
		require.NoError(t, tree.AddApp(id))
	}

	require.NoError(t, tree.RemoveApp(3))
	assert.NoError(t, checkNode(tree.Root, nil))
	focused, _ := tree.Focused()
	assert.Equal(t, 2, focused, "focus moves to the sibling")
	assert.Equal(t, map[int]geom.Box{
		1: {Width: 500, Height: 500},
		2: {X: 500, Width: 500, Height: 500},
	}, tree.Layout())

	require.NoError(t, tree.RemoveApp(1))
	assert.NoError(t, checkNode(tree.Root, nil))
	assert.Equal(t, map[int]geom.Box{2: screen}, tree.Layout())

	require.NoError(t, tree.RemoveApp(2))
	assert.True(t, tree.Root.Leaf.IsEmpty)
	assert.Zero(t, tree.Len())
	assert.ErrorIs(t, tree.RemoveApp(2), ErrUnknownApp)

	require.NoError(t, tree.AddApp(5))
	assert.Equal(t, map[int]geom.Box{5: screen}, tree.Layout())
}

func TestBTreeSwapAndCycle(t *testing.T) {
	tree := NewTree(screen)
	for id := 1; id <= 3; id++ {
		require.NoError(t, tree.AddApp(id))
	}
	before := tree.Layout()
	require.NoError(t, tree.SwapApp(1, 3))
	after := tree.Layout()
	assert.Equal(t, before[1], after[3])
	assert.Equal(t, before[3], after[1])
	assert.ErrorIs(t, tree.SwapApp(1, 9), ErrUnknownApp)

	assert.Equal(t, []int{3, 2, 1}, tree.Apps())
	next, ok := tree.Cycle(1, 1)
	require.True(t, ok)
	assert.Equal(t, 3, next, "cycling wraps around")
	prev, _ := tree.Cycle(3, -1)
	assert.Equal(t, 1, prev)
}

func TestBTreeGrow(t *testing.T) {
	tree := NewTree(screen)
	require.NoError(t, tree.AddApp(1))
	require.NoError(t, tree.AddApp(2))

	require.NoError(t, tree.Grow(2, 20))
	assert.Equal(t, 300, tree.Layout()[1].Width)
	assert.Equal(t, 700, tree.Layout()[2].Width)

	require.NoError(t, tree.Grow(1, 100))
	assert.Equal(t, 900, tree.Layout()[1].Width, "aspect is clamped")
	assert.NoError(t, checkNode(tree.Root, nil))
}
