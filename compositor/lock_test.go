package compositor

import (
	"testing"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/toolkit/toolkittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankOf(t *testing.T, out *Output) *toolkittest.Rect {
	t.Helper()
	require.NotNil(t, out.Blank(), "output %s is not blanked", out.Name())
	return out.Blank().(*toolkittest.Rect)
}

func TestLockAndUnlock(t *testing.T) {
	server, backend, rec := newTestServer(t)
	output, out := addOutput(t, server, "A", 1920, 1080)
	kb := addKeyboard(server, "kb")
	kb.Kb.Keymap[36] = []uint32{0xff0d}
	rec.consumeKeys[0xff0d] = true
	top, view := mapToplevel(t, server, 400, 300)
	require.Same(t, toolkit.Surface(top.Surf), server.seat.KeyboardFocus())

	lock := &toolkittest.SessionLock{}
	server.HandleNewLock(lock)
	assert.True(t, lock.Locked)
	assert.Equal(t, LockLocked, server.LockState())
	assert.True(t, server.layers.LockEnabled())
	assert.Equal(t, []bool{true}, rec.locks)
	assert.Nil(t, server.seat.KeyboardFocus(), "views lose focus on lock")
	blank := blankOf(t, out)
	assert.Equal(t, LockedColor, blank.Color())
	assert.Equal(t, geom.Box{Width: 1920, Height: 1080}, blank.Box())

	surface := &toolkittest.LockSurface{Surf: toolkittest.NewSurface(1920, 1080), Out: output}
	server.HandleNewLockSurface(lock, surface)
	assert.Equal(t, []toolkittest.Size{{W: 1920, H: 1080}}, surface.Configures)
	assert.Same(t, toolkit.Surface(surface.Surf), server.seat.KeyboardFocus())

	// Views can not take focus back and keys skip the host
	view.Focus(false)
	assert.Same(t, toolkit.Surface(surface.Surf), server.seat.KeyboardFocus())
	server.HandleKey(kb, 0, 36, true)
	assert.Empty(t, rec.keys)
	assert.Len(t, backend.FakeSeat.Keys, 1)
	rec.consumeButtons = true
	server.HandleCursorButton(addPointer(server), 0, BtnLeft, true)
	assert.Empty(t, rec.buttons)

	server.HandleUnlock(lock)
	assert.Equal(t, LockUnlocked, server.LockState())
	assert.False(t, server.layers.LockEnabled())
	assert.Nil(t, out.Blank())
	assert.Equal(t, []bool{true, false}, rec.locks)
	assert.Equal(t, 1, rec.focusCalls, "the host restores focus after unlocking")
	assert.True(t, blank.FakeNode().Destroyed())
}

func TestLockPointerStaysOnLockSurface(t *testing.T) {
	server, backend, _ := newTestServer(t)
	output, _ := addOutput(t, server, "A", 1920, 1080)
	addKeyboard(server, "kb")
	ptr := addPointer(server)
	_, view := mapToplevel(t, server, 400, 300)
	view.Place(0, 0, 400, 300, border.Spec{}, false)

	lock := &toolkittest.SessionLock{}
	server.HandleNewLock(lock)
	surface := &toolkittest.LockSurface{Surf: toolkittest.NewSurface(1920, 1080), Out: output}
	server.HandleNewLockSurface(lock, surface)

	server.HandleCursorMotion(ptr, 0, 10, 10)
	assert.Same(t, toolkit.Surface(surface.Surf), backend.FakeSeat.PointerFocus())
	assert.Equal(t, toolkittest.Motion{SX: 10, SY: 10}, backend.FakeSeat.Motions[len(backend.FakeSeat.Motions)-1])
}

func TestLockCrash(t *testing.T) {
	server, _, rec := newTestServer(t)
	addOutput(t, server, "A", 1920, 1080)

	lock := &toolkittest.SessionLock{}
	server.HandleNewLock(lock)
	server.HandleLockDestroy(lock)
	assert.Equal(t, LockCrashed, server.LockState())
	assert.Equal(t, CrashedColor, blankOf(t, server.Outputs()[0]).Color())
	assert.True(t, server.layers.LockEnabled(), "a crashed lock keeps the session covered")

	second := &toolkittest.SessionLock{}
	server.HandleNewLock(second)
	assert.True(t, second.Destroyed)
	assert.False(t, second.Locked)

	server.HandleUnlock(lock)
	assert.Equal(t, LockCrashed, server.LockState())
	assert.Equal(t, []bool{true}, rec.locks)
	assert.Equal(t, "crashed", server.LockState().String())
}

func TestLockRejectsSecondLock(t *testing.T) {
	server, _, _ := newTestServer(t)
	first := &toolkittest.SessionLock{}
	server.HandleNewLock(first)
	second := &toolkittest.SessionLock{}
	server.HandleNewLock(second)
	assert.True(t, second.Destroyed)
	assert.False(t, first.Destroyed)

	server.HandleUnlock(second)
	assert.Equal(t, LockLocked, server.LockState(), "only the active lock unlocks")

	// A lock that was released normally does not crash when destroyed
	server.HandleUnlock(first)
	server.HandleLockDestroy(first)
	assert.Equal(t, LockUnlocked, server.LockState())
}

func TestLockBlanksHotpluggedOutputs(t *testing.T) {
	server, _, rec := newTestServer(t)
	addOutput(t, server, "A", 1920, 1080)
	lock := &toolkittest.SessionLock{}
	server.HandleNewLock(lock)

	b, bOut := addOutput(t, server, "B", 1280, 720)
	assert.Equal(t, geom.Box{X: 1920, Width: 1280, Height: 720}, bOut.FullArea())
	assert.Equal(t, 2, rec.screens)
	blank := blankOf(t, bOut)
	assert.Equal(t, geom.Box{X: 1920, Width: 1280, Height: 720}, blank.Box())
	assert.Equal(t, LockedColor, blank.Color())

	surface := &toolkittest.LockSurface{Surf: toolkittest.NewSurface(1280, 720), Out: b}
	server.HandleNewLockSurface(lock, surface)
	x, y := server.lock.surfaces[0].tree.(*toolkittest.Tree).FakeNode().Position()
	assert.Equal(t, 1920, x)
	assert.Equal(t, 0, y)

	server.HandleOutputDestroy(b)
	assert.True(t, blank.FakeNode().Destroyed())
	assert.Empty(t, server.lock.surfaces)
}

func TestLockSurfaceFollowsOutputChanges(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, out := addOutput(t, server, "A", 1920, 1080)
	lock := &toolkittest.SessionLock{}
	server.HandleNewLock(lock)
	surface := &toolkittest.LockSurface{Surf: toolkittest.NewSurface(1920, 1080), Out: output}
	server.HandleNewLockSurface(lock, surface)

	server.HandleOutputRequestState(output, toolkit.OutputState{Enabled: true, Mode: output.Current, Scale: 2})
	assert.Equal(t, toolkittest.Size{W: 960, H: 540}, surface.Configures[len(surface.Configures)-1])
	assert.Equal(t, geom.Box{Width: 960, Height: 540}, blankOf(t, out).Box())
}

func TestLockSurfaceDestroyRefocuses(t *testing.T) {
	server, _, _ := newTestServer(t)
	a, _ := addOutput(t, server, "A", 1920, 1080)
	b, _ := addOutput(t, server, "B", 1280, 720)
	addKeyboard(server, "kb")
	lock := &toolkittest.SessionLock{}
	server.HandleNewLock(lock)

	first := &toolkittest.LockSurface{Surf: toolkittest.NewSurface(1920, 1080), Out: a}
	second := &toolkittest.LockSurface{Surf: toolkittest.NewSurface(1280, 720), Out: b}
	server.HandleNewLockSurface(lock, first)
	server.HandleNewLockSurface(lock, second)
	assert.Same(t, toolkit.Surface(first.Surf), server.seat.KeyboardFocus(), "only the current output's surface takes focus")

	server.HandleLockSurfaceDestroy(first)
	assert.Same(t, toolkit.Surface(second.Surf), server.seat.KeyboardFocus())
}
