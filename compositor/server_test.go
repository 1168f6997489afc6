package compositor

import (
	"testing"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/toolkit/toolkittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type buttonEvent struct {
	button  int
	pressed bool
}

// recorder is a host that writes down every callback
type recorder struct {
	managed    []View
	unmanaged  []View
	keys       []uint32
	buttons    []buttonEvent
	motions    int
	screens    int
	devices    int
	locks      []bool
	swipes     []string
	pinches    [][2]bool
	focusCalls int

	// Keysyms and buttons the host consumes
	consumeKeys    map[uint32]bool
	consumeButtons bool
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		KeyboardKey: func(keysym uint32, _ toolkit.Modifiers) bool {
			r.keys = append(r.keys, keysym)
			return r.consumeKeys[keysym]
		},
		ManageView:   func(v View) { r.managed = append(r.managed, v) },
		UnmanageView: func(v View) { r.unmanaged = append(r.unmanaged, v) },
		CursorMotion: func(float64, float64) { r.motions++ },
		CursorButton: func(button int, _ toolkit.Modifiers, pressed bool, _, _ float64) bool {
			r.buttons = append(r.buttons, buttonEvent{button: button, pressed: pressed})
			return r.consumeButtons
		},
		ScreenChange:     func() { r.screens++ },
		InputDeviceAdded: func() { r.devices++ },
		SessionLock:      func(locked bool) { r.locks = append(r.locks, locked) },
		PointerSwipe:     func(_ toolkit.Modifiers, seq string) { r.swipes = append(r.swipes, seq) },
		PointerPinch: func(_ toolkit.Modifiers, shrink, clockwise bool) {
			r.pinches = append(r.pinches, [2]bool{shrink, clockwise})
		},
		FocusCurrentWindow: func() bool {
			r.focusCalls++
			return true
		},
	}
}

func newTestServer(t *testing.T) (*Server, *toolkittest.Backend, *recorder) {
	t.Helper()
	backend := toolkittest.NewBackend()
	rec := &recorder{consumeKeys: map[uint32]bool{}}
	server, err := NewServer(backend, rec.callbacks(), DefaultOptions())
	require.NoError(t, err)
	return server, backend, rec
}

// addOutput plugs in an output and returns it together with its compositor side
func addOutput(t *testing.T, server *Server, name string, w, h int) (*toolkittest.Output, *Output) {
	t.Helper()
	output := toolkittest.NewOutput(name, w, h)
	server.HandleNewOutput(output)
	out := server.outputFor(output)
	require.NotNil(t, out)
	return output, out
}

// mapToplevel runs a toplevel through creation, initial commit and map
func mapToplevel(t *testing.T, server *Server, w, h int) (*toolkittest.XDGToplevel, *XDGView) {
	t.Helper()
	top := toolkittest.NewXDGToplevel(w, h)
	server.HandleNewXDGToplevel(top)
	server.HandleXDGToplevelCommit(top, true)
	server.HandleXDGToplevelMap(top)
	view, ok := server.xdgViews[top]
	require.True(t, ok)
	return top, view
}

func addPointer(server *Server) *toolkittest.InputDevice {
	dev := toolkittest.NewPointerDevice("pointer")
	server.HandleNewInput(dev)
	return dev
}

func addKeyboard(server *Server, name string) *toolkittest.InputDevice {
	dev := toolkittest.NewKeyboardDevice(name)
	server.HandleNewInput(dev)
	return dev
}

func treeOf(v View) *toolkittest.Tree {
	return v.base().tree.(*toolkittest.Tree)
}

func TestNewServerSetup(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "")
	server, backend, _ := newTestServer(t)

	assert.Same(t, server, backend.Handler)
	assert.Len(t, backend.FakeScene.Root().Children(), int(scene.LayerCount))
	assert.EqualValues(t, 24, backend.FakeCursor.ThemeSize)
	assert.Equal(t, toolkit.SeatCapabilityPointer, backend.FakeSeat.Caps)

	socket, err := server.Start()
	require.NoError(t, err)
	assert.Equal(t, "wayland-0", socket)
	assert.Equal(t, "wayland-0", server.Socket())
	assert.True(t, backend.Started)

	require.NoError(t, server.Poll())
	assert.Equal(t, 1, backend.Polls)

	server.Shutdown()
	assert.True(t, backend.Destroyed)
}

func TestNewServerFailure(t *testing.T) {
	backend := toolkittest.NewBackend()
	backend.FakeScene.Root().FailAfter(2)

	server, err := NewServer(backend, Callbacks{}, DefaultOptions())
	assert.ErrorIs(t, err, toolkit.ErrAllocation)
	assert.Nil(t, server)
	assert.True(t, backend.Destroyed)
	assert.Nil(t, backend.Handler)
	assert.Empty(t, backend.FakeScene.Root().Children())
}

func TestXDGLifecycle(t *testing.T) {
	server, _, rec := newTestServer(t)
	addOutput(t, server, "A", 1920, 1080)

	top := toolkittest.NewXDGToplevel(800, 600)
	top.ToplevelAppID = "foot"
	server.HandleNewXDGToplevel(top)
	require.NotNil(t, top.Tree, "surface is mounted on creation")
	assert.Empty(t, rec.managed, "views are announced on the first commit")

	server.HandleXDGToplevelCommit(top, true)
	require.Len(t, rec.managed, 1)
	size, _ := top.LastSize()
	assert.Equal(t, toolkittest.Size{}, size, "client picks its own size")
	view := rec.managed[0]
	assert.Equal(t, ViewXDG, view.Kind())
	assert.Equal(t, "foot", view.AppID())
	assert.Equal(t, []View{view}, server.Views())

	server.HandleXDGToplevelMap(top)
	assert.Equal(t, toolkit.EdgeAll, top.Tiled)
	assert.True(t, top.Activated)
	assert.Same(t, toolkit.Surface(top.Surf), server.seat.KeyboardFocus())
	assert.Equal(t, view, server.FocusedView())
	assert.Len(t, rec.managed, 1, "map does not announce twice")

	blue := toolkit.Color{0, 0, 1, 1}
	view.Place(10, 20, 800, 600, border.Spec{Width: 1, Colors: []toolkit.Color{blue}}, false)
	assert.Equal(t, geom.Box{X: 10, Y: 20, Width: 800, Height: 600}, view.Box())
	size, _ = top.LastSize()
	assert.Equal(t, toolkittest.Size{W: 800, H: 600}, size)
	assert.Len(t, treeOf(view).Rects(), 4)
	x, y := top.Tree.FakeNode().LayoutPosition()
	assert.Equal(t, 11, x, "content sits inside the border")
	assert.Equal(t, 21, y)

	hit, surface, sx, sy := server.ViewAt(12, 23)
	assert.Equal(t, view, hit)
	assert.Same(t, toolkit.Surface(top.Surf), surface)
	assert.Equal(t, 1.0, sx)
	assert.Equal(t, 2.0, sy)
	hit, _, _, _ = server.ViewAt(10.5, 20.5)
	assert.Nil(t, hit, "borders are not part of the surface")

	server.HandleXDGToplevelUnmap(top)
	assert.Empty(t, treeOf(view).Rects())
	assert.Equal(t, []View{view}, rec.unmanaged)
	assert.Empty(t, server.Views())
	assert.Nil(t, server.seat.KeyboardFocus())
	assert.Equal(t, 1, rec.focusCalls)

	server.HandleXDGToplevelDestroy(top)
	assert.True(t, top.Tree.FakeNode().Destroyed())
	assert.Empty(t, server.xdgViews)
	assert.Len(t, rec.unmanaged, 1)
}

func TestXDGOldClientsGetMaximized(t *testing.T) {
	server, _, _ := newTestServer(t)
	top := toolkittest.NewXDGToplevel(100, 100)
	top.ProtoVersion = 1
	server.HandleNewXDGToplevel(top)
	server.HandleXDGToplevelMap(top)
	assert.True(t, top.Maximized)
	assert.Equal(t, toolkit.EdgeNone, top.Tiled)
}

func TestViewRaiseAndHide(t *testing.T) {
	server, _, _ := newTestServer(t)
	top, view := mapToplevel(t, server, 100, 100)

	view.Place(0, 0, 100, 100, border.Spec{}, true)
	assert.Equal(t, scene.LayerBringToFront, view.Layer())
	l, ok := server.layers.LayerOf(view.Node())
	require.True(t, ok)
	assert.Equal(t, scene.LayerBringToFront, l)

	require.NoError(t, view.SetLayer(scene.LayerKeepAbove))
	assert.Equal(t, scene.LayerKeepAbove, view.Layer())
	assert.ErrorIs(t, view.SetLayer(scene.LayerCount), scene.ErrInvalidLayer)

	view.Hide()
	assert.True(t, view.Hidden())
	assert.False(t, view.Node().Enabled())
	assert.Nil(t, server.seat.KeyboardFocus(), "hiding drops focus")
	hit, _, _, _ := server.ViewAt(50, 50)
	assert.Nil(t, hit)

	view.Unhide()
	hit, _, _, _ = server.ViewAt(50, 50)
	assert.Equal(t, View(view), hit)

	view.Kill()
	assert.True(t, top.Closed)
}

func TestFocusMovesActivation(t *testing.T) {
	server, _, _ := newTestServer(t)
	first, firstView := mapToplevel(t, server, 100, 100)
	second, _ := mapToplevel(t, server, 100, 100)
	assert.False(t, first.Activated)
	assert.True(t, second.Activated)

	firstView.Focus(false)
	assert.True(t, first.Activated)
	assert.False(t, second.Activated)
	children := treeOf(firstView).FakeNode().Parent().(*toolkittest.Tree).Children()
	assert.Same(t, treeOf(firstView).FakeNode(), children[len(children)-1], "focus raises the view")
}

func TestFocusWarp(t *testing.T) {
	server, backend, _ := newTestServer(t)
	_, view := mapToplevel(t, server, 100, 100)
	view.Place(100, 200, 100, 50, border.Spec{}, false)
	view.Focus(true)
	assert.Equal(t, 150.0, backend.FakeCursor.PosX)
	assert.Equal(t, 225.0, backend.FakeCursor.PosY)
}

func TestDecorationsAreServerSide(t *testing.T) {
	server, _, _ := newTestServer(t)
	deco := &toolkittest.XDGDecoration{Top: toolkittest.NewXDGToplevel(1, 1)}
	server.HandleNewDecoration(deco)
	server.HandleDecorationRequestMode(deco)
	assert.Equal(t, 2, deco.ServerSide)
}
