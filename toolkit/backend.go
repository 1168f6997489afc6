// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkit

// Backend owns the display, the globals and the shared toolkit objects.
type Backend interface {
	Scene() Scene
	Layout() OutputLayout
	Seat() Seat
	Cursor() Cursor
	OutputManager() OutputManager

	// SetHandler registers the receiver of all toolkit events
	SetHandler(handler EventHandler)
	// AddSocket adds an automatically named display socket and returns its name
	AddSocket() (string, error)
	Start() error
	// FD is the event loop file descriptor
	FD() int
	// Poll flushes clients, dispatches pending events without blocking and flushes again
	Poll() error
	// Destroy tears down clients, scene, cursor, allocator, renderer, backend and display
	Destroy()
}

// EventHandler receives everything the toolkit emits.
// All methods are called on the event loop goroutine.
type EventHandler interface {
	HandleNewOutput(output Output)
	HandleOutputFrame(output Output)
	HandleOutputRequestState(output Output, state OutputState)
	HandleOutputDestroy(output Output)
	HandleLayoutChange()
	HandleOutputManagerApply(config OutputConfiguration)
	HandleOutputManagerTest(config OutputConfiguration)

	HandleNewInput(dev InputDevice)
	HandleInputDestroy(dev InputDevice)
	HandleKey(dev InputDevice, timeMsec uint32, keycode uint32, pressed bool)
	HandleModifiers(dev InputDevice)

	HandleCursorMotion(dev InputDevice, timeMsec uint32, dx, dy float64)
	HandleCursorMotionAbsolute(dev InputDevice, timeMsec uint32, x, y float64)
	HandleCursorButton(dev InputDevice, timeMsec uint32, button uint32, pressed bool)
	HandleCursorAxis(dev InputDevice, timeMsec uint32, event AxisEvent)
	HandleCursorFrame()
	HandleRequestSetCursor(client Client, surface Surface, hotspotX, hotspotY int32)
	// HandleStartDrag starts a drag and drop operation, icon may be nil
	HandleStartDrag(icon Surface)
	HandleDragIconDestroy()

	HandleSwipeBegin(dev InputDevice, timeMsec uint32, fingers uint32)
	HandleSwipeUpdate(dev InputDevice, timeMsec uint32, dx, dy float64)
	HandleSwipeEnd(dev InputDevice, timeMsec uint32, cancelled bool)
	HandlePinchBegin(dev InputDevice, timeMsec uint32, fingers uint32)
	HandlePinchUpdate(dev InputDevice, timeMsec uint32, dx, dy, scale, rotation float64)
	HandlePinchEnd(dev InputDevice, timeMsec uint32, cancelled bool)
	HandleHoldBegin(dev InputDevice, timeMsec uint32, fingers uint32)
	HandleHoldEnd(dev InputDevice, timeMsec uint32, cancelled bool)

	HandleTouchDown(dev InputDevice, timeMsec uint32, id int32, x, y float64)
	HandleTouchUp(dev InputDevice, timeMsec uint32, id int32)
	HandleTouchMotion(dev InputDevice, timeMsec uint32, id int32, x, y float64)
	HandleTouchCancel(dev InputDevice, timeMsec uint32, id int32)
	HandleTouchFrame()

	HandleNewXDGToplevel(toplevel XDGToplevel)
	HandleXDGToplevelCommit(toplevel XDGToplevel, initial bool)
	HandleXDGToplevelMap(toplevel XDGToplevel)
	HandleXDGToplevelUnmap(toplevel XDGToplevel)
	HandleXDGToplevelDestroy(toplevel XDGToplevel)
	HandleNewDecoration(decoration XDGDecoration)
	HandleDecorationRequestMode(decoration XDGDecoration)

	HandleNewLayerSurface(surface LayerSurface)
	HandleLayerSurfaceCommit(surface LayerSurface, initial bool)
	HandleLayerSurfaceMap(surface LayerSurface)
	HandleLayerSurfaceUnmap(surface LayerSurface)
	HandleLayerSurfaceDestroy(surface LayerSurface)
	HandleNewLayerPopup(parent LayerSurface, popup XDGPopup)

	HandleNewLock(lock SessionLock)
	HandleNewLockSurface(lock SessionLock, surface LockSurface)
	HandleLockSurfaceDestroy(surface LockSurface)
	HandleUnlock(lock SessionLock)
	HandleLockDestroy(lock SessionLock)

	HandleNewConstraint(constraint PointerConstraint)
	HandleConstraintSetRegion(constraint PointerConstraint)
	HandleConstraintSurfaceCommit(constraint PointerConstraint)
	HandleConstraintDestroy(constraint PointerConstraint)

	HandleNewXWaylandSurface(surface XWaylandSurface)
	HandleXWaylandAssociate(surface XWaylandSurface)
	HandleXWaylandMap(surface XWaylandSurface)
	HandleXWaylandUnmap(surface XWaylandSurface)
	HandleXWaylandCommit(surface XWaylandSurface)
	HandleXWaylandRequestConfigure(surface XWaylandSurface, x, y, width, height int)
	HandleXWaylandSetGeometry(surface XWaylandSurface)
	HandleXWaylandSetOverrideRedirect(surface XWaylandSurface)
	HandleXWaylandRequestActivate(surface XWaylandSurface)
	HandleXWaylandDestroy(surface XWaylandSurface)
}
