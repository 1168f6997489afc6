package compositor

import (
	"image"
	"os"
	"testing"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/toolkit/toolkittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalViewCreate(t *testing.T) {
	server, _, rec := newTestServer(t)

	_, err := server.NewInternalView(0, 0, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	view, err := server.NewInternalView(10, 20, 200, 30)
	require.NoError(t, err)
	assert.Equal(t, ViewInternal, view.Kind())
	assert.Equal(t, -1, view.WID())
	assert.Equal(t, os.Getpid(), view.PID())
	assert.True(t, view.Hidden(), "internal views start hidden")
	assert.Equal(t, geom.Box{X: 10, Y: 20, Width: 200, Height: 30}, view.Box())
	assert.Equal(t, image.Rect(0, 0, 200, 30), view.Image().Bounds())
	assert.Equal(t, []View{view}, server.Views())
	assert.Empty(t, rec.managed, "the host created it, no need to announce")
}

func TestInternalViewDamage(t *testing.T) {
	server, _, _ := newTestServer(t)
	view, err := server.NewInternalView(0, 0, 100, 50)
	require.NoError(t, err)
	buffer := view.buffer.(*toolkittest.Buffer)

	require.NoError(t, view.SetBufferWithDamage(10, 10, 20, 20))
	assert.Equal(t, []geom.Box{{X: 10, Y: 10, Width: 20, Height: 20}}, buffer.Damages[len(buffer.Damages)-1])

	damages := len(buffer.Damages)
	assert.ErrorIs(t, view.SetBufferWithDamage(90, 40, 20, 20), ErrInvalidGeometry)
	assert.ErrorIs(t, view.SetBufferWithDamage(-1, 0, 5, 5), ErrInvalidGeometry)
	assert.Len(t, buffer.Damages, damages, "rejected damage is not pushed")

	view.SetBuffer()
	assert.Nil(t, buffer.Damages[len(buffer.Damages)-1], "full redraw")
}

func TestInternalViewSubImage(t *testing.T) {
	server, _, _ := newTestServer(t)
	view, err := server.NewInternalView(0, 0, 100, 50)
	require.NoError(t, err)

	sub := view.SubImage(10, 5, 20, 10)
	require.NotNil(t, sub)
	assert.Equal(t, image.Rect(10, 5, 30, 15), sub.Bounds())
	sub.Pix[0] = 0xff
	assert.Equal(t, uint8(0xff), view.Image().Pix[view.Image().PixOffset(10, 5)], "sub images share pixels")

	assert.Nil(t, view.SubImage(90, 0, 20, 10))
}

func TestInternalViewPlace(t *testing.T) {
	server, _, _ := newTestServer(t)
	view, err := server.NewInternalView(0, 0, 100, 50)
	require.NoError(t, err)
	view.Unhide()
	old := view.buffer.(*toolkittest.Buffer)

	red := toolkit.Color{1, 0, 0, 1}
	view.Place(5, 5, 300, 40, border.Spec{Width: 2, Colors: []toolkit.Color{red}}, false)
	assert.Equal(t, geom.Box{X: 5, Y: 5, Width: 300, Height: 40}, view.Box())
	assert.Equal(t, image.Rect(0, 0, 300, 40), view.Image().Bounds())
	assert.True(t, old.Node().(*toolkittest.Node).Destroyed(), "resizing replaces the buffer")
	assert.Len(t, treeOf(view).Rects(), 4)

	hit, surface, _, _ := server.ViewAt(50, 20)
	assert.Nil(t, hit, "internal views have no client surface")
	assert.Nil(t, surface)

	view.Place(0, 0, 0, 40, border.Spec{}, false)
	assert.Equal(t, geom.Box{X: 5, Y: 5, Width: 300, Height: 40}, view.Box(), "invalid sizes are refused")
}

func TestInternalViewFailedResize(t *testing.T) {
	server, _, _ := newTestServer(t)
	view, err := server.NewInternalView(0, 0, 100, 50)
	require.NoError(t, err)
	buffer := view.buffer
	img := view.Image()

	view.content.(*toolkittest.Tree).FailAfter(0)
	view.Place(0, 0, 200, 200, border.Spec{}, false)
	assert.Same(t, buffer, view.buffer, "the old buffer survives")
	assert.Same(t, img, view.Image())
	assert.False(t, buffer.Node().(*toolkittest.Node).Destroyed())
	assert.Equal(t, geom.Box{Width: 100, Height: 50}, view.Box())
	assert.NotPanics(t, view.SetBuffer)

	view.content.(*toolkittest.Tree).AllowAll()
	view.Place(0, 0, 200, 200, border.Spec{}, false)
	assert.Equal(t, image.Rect(0, 0, 200, 200), view.Image().Bounds())
}

func TestInternalViewKill(t *testing.T) {
	server, _, _ := newTestServer(t)
	view, err := server.NewInternalView(0, 0, 100, 50)
	require.NoError(t, err)
	root := treeOf(view).FakeNode()

	view.Kill()
	assert.Empty(t, server.Views())
	assert.True(t, root.Destroyed())
	assert.NoError(t, view.SetBufferWithDamage(0, 0, 1, 1), "killed views ignore updates")
	view.Kill()
}

func TestShutdownKillsInternalViews(t *testing.T) {
	server, backend, _ := newTestServer(t)
	view, err := server.NewInternalView(0, 0, 100, 50)
	require.NoError(t, err)
	server.Shutdown()
	assert.True(t, view.destroyed)
	assert.True(t, backend.Destroyed)
}
