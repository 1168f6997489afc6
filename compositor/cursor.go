// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"math"

	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

// Scroll distance of a touchpad that equals one wheel click
const axisStep = 15.0

type grabState int

const (
	grabIdle = grabState(iota)
	grabLive
)

// implicitGrab keeps pointer events on the surface a button went down on
type implicitGrab struct {
	state   grabState
	startDX float64
	startDY float64
}

type cursorImage struct {
	surface  toolkit.Surface
	hotspotX int32
	hotspotY int32
}

type pointerState struct {
	grab       implicitGrab
	pressed    int
	axis       float64
	image      *cursorImage
	hidden     bool
	constraint *pointerConstraint
}

func (server *Server) CursorPosition() (float64, float64) {
	return server.cursor.X(), server.cursor.Y()
}

// ImplicitGrabActive reports whether pointer events are currently held by a surface
func (server *Server) ImplicitGrabActive() bool {
	return server.pointer.grab.state == grabLive
}

func (server *Server) ReleaseImplicitGrab() {
	server.pointer.grab = implicitGrab{}
}

// WarpCursor moves the cursor to the closest valid position and refreshes pointer focus
func (server *Server) WarpCursor(x, y float64) {
	server.cursor.WarpClosest(nil, x, y)
	server.processMotion(nil, 0, 0, 0)
}

// HideCursor removes the cursor image. Client cursor requests are still remembered.
func (server *Server) HideCursor() {
	server.pointer.hidden = true
	server.cursor.Hide()
}

func (server *Server) ShowCursor() {
	if !server.pointer.hidden {
		return
	}
	server.pointer.hidden = false
	if img := server.pointer.image; img != nil {
		server.cursor.SetSurface(img.surface, img.hotspotX, img.hotspotY)
		return
	}
	server.cursor.SetXCursor("default")
}

func (server *Server) CursorHidden() bool { return server.pointer.hidden }

func (server *Server) SetCursorTheme(name string, size uint32) error {
	if size == 0 {
		size = 24
	}
	return server.cursor.SetTheme(name, size)
}

func (server *Server) HandleCursorMotion(dev toolkit.InputDevice, timeMsec uint32, dx, dy float64) {
	server.processMotion(dev, timeMsec, dx, dy)
}

func (server *Server) HandleCursorMotionAbsolute(dev toolkit.InputDevice, timeMsec uint32, x, y float64) {
	lx, ly := server.cursor.AbsoluteToLayout(dev, x, y)
	server.processMotion(dev, timeMsec, lx-server.cursor.X(), ly-server.cursor.Y())
}

func (server *Server) processMotion(dev toolkit.InputDevice, timeMsec uint32, dx, dy float64) {
	server.seat.NotifyActivity()
	if server.lockState != LockUnlocked {
		server.processLockedMotion(dev, timeMsec, dx, dy)
		return
	}

	if c := server.pointer.constraint; c != nil && dev != nil && dev.IsPointer() {
		_, surface, sx, sy := server.ViewAt(server.cursor.X(), server.cursor.Y())
		if surface != nil && surface == c.constraint.Surface() {
			var ok bool
			if dx, dy, ok = c.confine(sx, sy, dx, dy); !ok {
				return
			}
		}
	}

	if server.pointer.grab.state == grabLive {
		grab := server.pointer.grab
		server.seat.NotifyPointerMotion(timeMsec,
			server.cursor.X()+grab.startDX+dx,
			server.cursor.Y()+grab.startDY+dy)
		server.cursor.Move(dev, dx, dy)
		server.callbacks.cursorMotion(server.cursor.X(), server.cursor.Y())
		server.moveDragIcon()
		return
	}

	server.cursor.Move(dev, dx, dy)
	server.updatePointerFocus(timeMsec)
	server.callbacks.cursorMotion(server.cursor.X(), server.cursor.Y())
	server.moveDragIcon()
}

func (server *Server) updatePointerFocus(timeMsec uint32) {
	_, surface, sx, sy := server.ViewAt(server.cursor.X(), server.cursor.Y())
	if surface == nil {
		server.seat.ClearPointerFocus()
		server.pointer.image = nil
		if !server.pointer.hidden {
			server.cursor.SetXCursor("default")
		}
	} else {
		server.seat.NotifyPointerEnter(surface, sx, sy)
	}
	if surface != nil || server.pointer.pressed > 0 {
		server.seat.NotifyPointerMotion(timeMsec, sx, sy)
	}
}

// processLockedMotion keeps the pointer on the lock surface
func (server *Server) processLockedMotion(dev toolkit.InputDevice, timeMsec uint32, dx, dy float64) {
	server.cursor.Move(dev, dx, dy)
	x, y := server.cursor.X(), server.cursor.Y()
	if server.lock == nil || len(server.lock.surfaces) == 0 {
		server.seat.ClearPointerFocus()
	} else {
		ls := server.lock.surfaces[0]
		area := ls.output.fullArea
		sx, sy := x-float64(area.X), y-float64(area.Y)
		server.seat.NotifyPointerEnter(ls.surface.Surface(), sx, sy)
		server.seat.NotifyPointerMotion(timeMsec, sx, sy)
	}
	server.callbacks.cursorMotion(x, y)
}

func (server *Server) HandleCursorButton(dev toolkit.InputDevice, timeMsec uint32, button uint32, pressed bool) {
	server.seat.NotifyActivity()
	if pressed {
		server.pointer.pressed++
	} else if server.pointer.pressed > 0 {
		server.pointer.pressed--
	}

	if server.pointer.grab.state == grabLive {
		server.seat.NotifyPointerButton(timeMsec, button, pressed)
		server.ReleaseImplicitGrab()
		server.processMotion(nil, timeMsec, 0, 0)
		return
	}

	x, y := server.cursor.X(), server.cursor.Y()
	if server.lockState == LockUnlocked {
		if index := ButtonIndex(button); index != 0 {
			if server.callbacks.cursorButton(index, server.modifiers(), pressed, x, y) {
				return
			}
		}
	}

	if pressed && server.pointer.pressed == 1 && server.seat.PointerFocus() != nil && !server.seat.DragActive() {
		sx, sy := server.seat.PointerCoords()
		server.pointer.grab = implicitGrab{
			state:   grabLive,
			startDX: sx - x,
			startDY: sy - y,
		}
	}
	server.seat.NotifyPointerButton(timeMsec, button, pressed)
}

func (server *Server) HandleCursorAxis(dev toolkit.InputDevice, timeMsec uint32, event toolkit.AxisEvent) {
	server.seat.NotifyActivity()
	handled := false
	if server.lockState == LockUnlocked {
		handled = server.scrollToButtons(event)
	}
	if !handled {
		server.seat.NotifyPointerAxis(timeMsec, event)
	}
}

// scrollToButtons offers scrolling to the host as button presses.
// Wheels press once per click, other sources once per axisStep of travel.
func (server *Server) scrollToButtons(event toolkit.AxisEvent) bool {
	button := scrollButton(event.Orientation, event.Delta)
	if button == 0 {
		return false
	}
	x, y := server.cursor.X(), server.cursor.Y()
	mods := server.modifiers()

	if event.Source == toolkit.AxisSourceWheel {
		if event.DeltaDiscrete == 0 {
			return false
		}
		return server.callbacks.cursorButton(button, mods, true, x, y)
	}

	server.pointer.axis += math.Abs(event.Delta)
	handled := false
	for server.pointer.axis >= axisStep {
		server.pointer.axis -= axisStep
		if server.callbacks.cursorButton(button, mods, true, x, y) {
			handled = true
		}
	}
	return handled
}

func (server *Server) HandleCursorFrame() {
	server.seat.NotifyPointerFrame()
}

func (server *Server) HandleRequestSetCursor(client toolkit.Client, surface toolkit.Surface, hotspotX, hotspotY int32) {
	focused := server.seat.PointerFocusClient()
	if focused == nil || focused != client {
		return
	}
	server.pointer.image = &cursorImage{surface: surface, hotspotX: hotspotX, hotspotY: hotspotY}
	if server.pointer.hidden {
		return
	}
	server.cursor.SetSurface(surface, hotspotX, hotspotY)
}

func (server *Server) HandleStartDrag(icon toolkit.Surface) {
	if icon == nil {
		return
	}
	tree, err := server.layers.Tree(scene.LayerOverlay).NewSurfaceTree(icon)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to create drag icon tree")
		return
	}
	server.dragIcon = tree
	server.moveDragIcon()
}

// HandleDragIconDestroy forgets the icon, its tree goes away with the surface
func (server *Server) HandleDragIconDestroy() {
	server.dragIcon = nil
}

func (server *Server) moveDragIcon() {
	if server.dragIcon == nil {
		return
	}
	server.dragIcon.Node().SetPosition(int(server.cursor.X()), int(server.cursor.Y()))
}
