package compositor

import (
	"testing"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/toolkit/toolkittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBar(output toolkit.Output) *toolkittest.LayerSurface {
	return &toolkittest.LayerSurface{
		Surf: toolkittest.NewSurface(1920, 30),
		NS:   "bar",
		Out:  output,
		PendingState: toolkit.LayerSurfaceState{
			Layer:         toolkit.ShellLayerTop,
			Anchor:        toolkit.AnchorTop | toolkit.AnchorLeft | toolkit.AnchorRight,
			ExclusiveZone: 30,
			DesiredHeight: 30,
		},
	}
}

func TestLayerSurfaceLifecycle(t *testing.T) {
	server, _, rec := newTestServer(t)
	_, out := addOutput(t, server, "A", 1920, 1080)

	bar := newBar(nil)
	server.HandleNewLayerSurface(bar)
	require.NotNil(t, bar.Out, "the compositor picks an output")
	view := server.layerViews[bar]
	require.NotNil(t, view)
	assert.Equal(t, -1, view.WID())
	assert.Equal(t, "bar", view.AppID())
	assert.Same(t, out, view.Output())

	server.HandleLayerSurfaceCommit(bar, true)
	assert.Equal(t, 1.0, bar.Fractional)
	assert.Equal(t, 1, bar.Preferred)
	assert.Equal(t, []toolkittest.Size{{W: 1920, H: 30}}, bar.Configures)
	assert.Equal(t, geom.Box{Y: 30, Width: 1920, Height: 1050}, out.UsableArea())
	assert.Equal(t, geom.Box{Width: 1920, Height: 30}, view.Box())

	server.HandleLayerSurfaceMap(bar)
	assert.Equal(t, []View{view}, rec.managed)
	assert.Equal(t, ViewLayer, rec.managed[0].Kind())
	assert.Len(t, out.LayerViews(toolkit.ShellLayerTop), 1)
	l, ok := server.layers.LayerOf(view.Node())
	require.True(t, ok)
	assert.Equal(t, scene.LayerTop, l)
	assert.Nil(t, server.seat.KeyboardFocus(), "bars without keyboard interactivity get no focus")

	// Same size commits do not reconfigure
	bar.Commit()
	server.HandleLayerSurfaceCommit(bar, false)
	assert.Len(t, bar.Configures, 1)

	server.HandleLayerSurfaceUnmap(bar)
	assert.Equal(t, []View{view}, rec.unmanaged)

	server.HandleLayerSurfaceDestroy(bar)
	assert.Empty(t, out.LayerViews(toolkit.ShellLayerTop))
	assert.Equal(t, out.FullArea(), out.UsableArea())
	assert.True(t, bar.Tree.FakeNode().Destroyed())
	assert.Len(t, rec.unmanaged, 1)
}

func TestLayerSurfaceChangesLayer(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, out := addOutput(t, server, "A", 1920, 1080)
	bar := newBar(output)
	server.HandleNewLayerSurface(bar)
	server.HandleLayerSurfaceCommit(bar, true)
	view := server.layerViews[bar]

	bar.PendingState.Layer = toolkit.ShellLayerOverlay
	bar.Commit()
	server.HandleLayerSurfaceCommit(bar, false)
	assert.Equal(t, toolkit.ShellLayerOverlay, view.ShellLayer())
	assert.Empty(t, out.LayerViews(toolkit.ShellLayerTop))
	assert.Len(t, out.LayerViews(toolkit.ShellLayerOverlay), 1)
	assert.Equal(t, scene.LayerOverlay, view.Layer())
	l, _ := server.layers.LayerOf(view.popups.Node())
	assert.Equal(t, scene.LayerOverlay, l, "popups follow their surface")

	bar.PendingState.Layer = toolkit.ShellLayerBackground
	bar.Commit()
	server.HandleLayerSurfaceCommit(bar, false)
	l, _ = server.layers.LayerOf(view.popups.Node())
	assert.Equal(t, scene.LayerTop, l, "popups of low layers stay above windows")
}

func TestLayerSurfaceKeyboardFocus(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, _ := addOutput(t, server, "A", 1920, 1080)
	launcher := &toolkittest.LayerSurface{
		Surf: toolkittest.NewSurface(400, 300),
		NS:   "launcher",
		Out:  output,
		PendingState: toolkit.LayerSurfaceState{
			Layer:               toolkit.ShellLayerOverlay,
			DesiredWidth:        400,
			DesiredHeight:       300,
			KeyboardInteractive: 1,
		},
	}
	server.HandleNewLayerSurface(launcher)
	server.HandleLayerSurfaceCommit(launcher, true)
	server.HandleLayerSurfaceMap(launcher)
	assert.Same(t, toolkit.Surface(launcher.Surf), server.seat.KeyboardFocus())

	server.HandleLayerSurfaceUnmap(launcher)
	assert.Nil(t, server.seat.KeyboardFocus())
}

func TestLayerSurfacePopups(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, _ := addOutput(t, server, "A", 1920, 1080)
	bar := newBar(output)
	bar.PendingState.Anchor = toolkit.AnchorBottom | toolkit.AnchorLeft | toolkit.AnchorRight
	server.HandleNewLayerSurface(bar)
	server.HandleLayerSurfaceCommit(bar, true)

	popup := &toolkittest.XDGPopup{Surf: toolkittest.NewSurface(100, 200)}
	server.HandleNewLayerPopup(bar, popup)
	require.NotNil(t, popup.Tree)
	popups := server.layerViews[bar].popups.(*toolkittest.Tree)
	x, y := popups.FakeNode().Position()
	assert.Equal(t, 0, x)
	assert.Equal(t, 1050, y, "the popup tree sits on its surface")

	server.HandleLayerSurfaceDestroy(bar)
	assert.True(t, popup.Tree.FakeNode().Destroyed())
}

func TestLayerSurfaceWithoutOutput(t *testing.T) {
	server, _, _ := newTestServer(t)
	bar := newBar(nil)
	server.HandleNewLayerSurface(bar)
	assert.True(t, bar.Closed)
	assert.Empty(t, server.layerViews)
}

func TestLayerSurfaceTooLarge(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, _ := addOutput(t, server, "A", 800, 600)
	bar := newBar(output)
	bar.PendingState.Margin = toolkit.Margin{Left: 500, Right: 500}
	server.HandleNewLayerSurface(bar)
	server.HandleLayerSurfaceCommit(bar, true)
	assert.True(t, bar.Closed)
	assert.Empty(t, bar.Configures)
}

func TestUnmappedLayerSurfaceFreesSpace(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, out := addOutput(t, server, "A", 1920, 1080)
	bar := newBar(output)
	server.HandleNewLayerSurface(bar)
	server.HandleLayerSurfaceCommit(bar, true)
	server.HandleLayerSurfaceMap(bar)
	require.Equal(t, geom.Box{Y: 30, Width: 1920, Height: 1050}, out.UsableArea())

	server.HandleLayerSurfaceUnmap(bar)
	assert.Equal(t, out.FullArea(), out.UsableArea(), "an unmapped bar reserves nothing")

	// A fresh initial commit after unmap gets configured again
	server.HandleLayerSurfaceCommit(bar, true)
	assert.Len(t, bar.Configures, 2)
	assert.Equal(t, geom.Box{Y: 30, Width: 1920, Height: 1050}, out.UsableArea())
}

func TestUncommittedLayerSurfaceIsSkipped(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, out := addOutput(t, server, "A", 1920, 1080)
	early := newBar(output)
	server.HandleNewLayerSurface(early)

	bar := newBar(output)
	bar.PendingState.ExclusiveZone = 0
	server.HandleNewLayerSurface(bar)
	server.HandleLayerSurfaceCommit(bar, true)

	assert.Empty(t, early.Configures, "no configure before the initial commit")
	assert.Equal(t, out.FullArea(), out.UsableArea())
	assert.Len(t, bar.Configures, 1)
}
