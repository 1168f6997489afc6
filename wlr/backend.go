// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package wlr implements the toolkit interfaces on top of go-wlroots.
//
// The binding exposes what tinywl needs: outputs, the output layout, xdg-shell,
// a cursor, a seat and keyboards. Scene structure beyond xdg surface trees is
// kept in a Go side model and synced into the real scene before each frame.
// Protocols the binding lacks (layer-shell, session lock, pointer constraints,
// output management, gestures, xwayland) never produce events.
package wlr

import (
	"errors"
	"fmt"

	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
)

// ErrUnsupported is returned for requests the wlroots binding can not express
var ErrUnsupported = errors.New("not supported by the wlroots binding")

var errNoHandler = errors.New("no event handler registered")

type Backend struct {
	display      wlroots.Display
	backend      wlroots.Backend
	renderer     wlroots.Renderer
	allocator    wlroots.Allocator
	scene        wlroots.Scene
	sceneLayout  wlroots.SceneOutputLayout
	outputLayout wlroots.OutputLayout
	xdgShell     wlroots.XDGShell
	cursor       wlroots.Cursor
	cursorMgr    wlroots.XCursorManager
	seat         wlroots.Seat

	handler toolkit.EventHandler
	graph   *sceneGraph
	layout  *outputLayout
	wseat   *seat
	wcursor *cursor
	manager *outputManager

	outputs   map[wlroots.Output]*output
	devices   map[wlroots.InputDevice]*inputDevice
	surfaces  map[wlroots.Surface]*surface
	clients   map[wlroots.SeatClient]*client
	toplevels map[wlroots.XDGSurface]*xdgToplevel
}

var _ toolkit.Backend = (*Backend)(nil)

// NewBackend brings up the display, backend, renderer, allocator and the globals.
// Everything built so far is released if a step fails.
func NewBackend() (*Backend, error) {
	b := &Backend{
		outputs:   map[wlroots.Output]*output{},
		devices:   map[wlroots.InputDevice]*inputDevice{},
		surfaces:  map[wlroots.Surface]*surface{},
		clients:   map[wlroots.SeatClient]*client{},
		toplevels: map[wlroots.XDGSurface]*xdgToplevel{},
	}
	var err error

	b.display = wlroots.NewDisplay()
	b.backend, err = b.display.BackendAutocreate()
	if err != nil {
		b.display.Destroy()
		return nil, fmt.Errorf("creating backend: %w", err)
	}
	b.renderer, err = b.backend.RendererAutoCreate()
	if err != nil {
		b.backend.Destroy()
		b.display.Destroy()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	b.renderer.InitDisplay(b.display)
	b.allocator, err = b.backend.AllocatorAutocreate(b.renderer)
	if err != nil {
		b.backend.Destroy()
		b.display.Destroy()
		return nil, fmt.Errorf("creating allocator: %w", err)
	}

	b.display.CompositorCreate(5, b.renderer)
	b.display.SubCompositorCreate()
	b.display.DataDeviceManagerCreate()

	b.outputLayout = wlroots.NewOutputLayout()
	b.scene = wlroots.NewScene()
	b.sceneLayout = b.scene.AttachOutputLayout(b.outputLayout)
	b.graph = newSceneGraph(b)
	b.layout = &outputLayout{backend: b}
	b.manager = &outputManager{}

	b.xdgShell = b.display.XDGShellCreate(3)
	b.xdgShell.OnNewSurface(b.handleNewXDGSurface)

	b.cursor = wlroots.NewCursor()
	b.cursor.AttachOutputLayout(b.outputLayout)
	b.cursorMgr = wlroots.NewXCursorManager("", 24)
	b.cursorMgr.Load(1)
	b.wcursor = &cursor{backend: b}
	b.cursor.OnMotion(b.handleCursorMotion)
	b.cursor.OnMotionAbsolute(b.handleCursorMotionAbsolute)
	b.cursor.OnButton(b.handleCursorButton)
	b.cursor.OnAxis(b.handleCursorAxis)
	b.cursor.OnFrame(b.handleCursorFrame)

	b.seat = b.display.SeatCreate("seat0")
	b.seat.OnSetCursorRequest(b.handleSetCursorRequest)
	b.wseat = &seat{backend: b}

	b.backend.OnNewOutput(b.handleNewOutput)
	b.backend.OnNewInput(b.handleNewInput)
	return b, nil
}

func (b *Backend) Scene() toolkit.Scene                 { return b.graph }
func (b *Backend) Layout() toolkit.OutputLayout         { return b.layout }
func (b *Backend) Seat() toolkit.Seat                   { return b.wseat }
func (b *Backend) Cursor() toolkit.Cursor               { return b.wcursor }
func (b *Backend) OutputManager() toolkit.OutputManager { return b.manager }

// SetHandler must be called before Start
func (b *Backend) SetHandler(handler toolkit.EventHandler) { b.handler = handler }

func (b *Backend) AddSocket() (string, error) {
	socket, err := b.display.AddSocketAuto()
	if err != nil {
		return "", err
	}
	logrus.WithField("socket", socket).Debugln("got wl socket")
	return socket, nil
}

// Start enumerates outputs and inputs, becomes DRM master and so on
func (b *Backend) Start() error {
	if b.handler == nil {
		return errNoHandler
	}
	return b.backend.Start()
}

func (b *Backend) FD() int {
	return int(b.display.EventLoop().Fd())
}

func (b *Backend) Poll() error {
	b.display.FlushClients()
	b.display.EventLoop().Dispatch(0)
	b.display.FlushClients()
	return nil
}

// Destroy tears everything down in reverse order of creation.
// The binding has no allocator destructor, the allocator goes with the display.
func (b *Backend) Destroy() {
	b.display.DestroyClients()
	b.scene.Tree().Node().Destroy()
	b.cursorMgr.Destroy()
	b.cursor.Destroy()
	b.renderer.Destroy()
	b.backend.Destroy()
	b.outputLayout.Destroy()
	b.display.Destroy()
}

func (b *Backend) handleNewOutput(o wlroots.Output) {
	out := &output{backend: b, output: o}
	b.outputs[o] = out
	logrus.WithField("name", o.Name()).Debugln("New output added")

	o.OnFrame(func(o wlroots.Output) {
		if out, ok := b.outputs[o]; ok {
			b.handler.HandleOutputFrame(out)
		}
	})
	o.OnRequestState(func(o wlroots.Output, state wlroots.OutputState) {
		// Nested backends resize their window this way. The state is opaque,
		// so it is committed as is and the layout is reconciled afterwards.
		logrus.WithField("name", o.Name()).Debugln("New state request for output")
		o.CommitState(state)
		b.handler.HandleLayoutChange()
	})
	o.OnDestroy(func(o wlroots.Output) {
		out, ok := b.outputs[o]
		if !ok {
			return
		}
		logrus.WithField("name", o.Name()).Debugln("Output getting destroyed")
		b.handler.HandleOutputDestroy(out)
		b.layout.forget(out)
		delete(b.outputs, o)
	})
	b.handler.HandleNewOutput(out)
}

func (b *Backend) handleNewInput(dev wlroots.InputDevice) {
	d := b.deviceFor(dev)
	if dev.Type() == wlroots.InputDeviceTypeKeyboard {
		keyboard := dev.Keyboard()
		keyboard.OnModifiers(func(wlroots.Keyboard) {
			b.handler.HandleModifiers(d)
		})
		keyboard.OnKey(func(_ wlroots.Keyboard, timeMsec uint32, keyCode uint32, _ bool, state wlroots.KeyState) {
			b.handler.HandleKey(d, timeMsec, keyCode, state == wlroots.KeyStatePressed)
		})
	}
	dev.OnDestroy(func(dev wlroots.InputDevice) {
		if d, ok := b.devices[dev]; ok {
			b.handler.HandleInputDestroy(d)
			delete(b.devices, dev)
		}
	})
	b.handler.HandleNewInput(d)
}

func (b *Backend) handleCursorMotion(dev wlroots.InputDevice, timeMsec uint32, dx, dy float64) {
	b.handler.HandleCursorMotion(b.deviceFor(dev), timeMsec, dx, dy)
}

func (b *Backend) handleCursorMotionAbsolute(dev wlroots.InputDevice, timeMsec uint32, x, y float64) {
	b.handler.HandleCursorMotionAbsolute(b.deviceFor(dev), timeMsec, x, y)
}

func (b *Backend) handleCursorButton(dev wlroots.InputDevice, timeMsec uint32, button uint32, state wlroots.ButtonState) {
	b.handler.HandleCursorButton(b.deviceFor(dev), timeMsec, button, state != wlroots.ButtonStateReleased)
}

func (b *Backend) handleCursorAxis(dev wlroots.InputDevice, timeMsec uint32, source wlroots.AxisSource, orientation wlroots.AxisOrientation, delta float64, deltaDiscrete int32) {
	b.handler.HandleCursorAxis(b.deviceFor(dev), timeMsec, toolkit.AxisEvent{
		Source:        toolkit.AxisSource(source),
		Orientation:   toolkit.AxisOrientation(orientation),
		Delta:         delta,
		DeltaDiscrete: deltaDiscrete,
	})
}

func (b *Backend) handleCursorFrame() {
	b.handler.HandleCursorFrame()
}

func (b *Backend) handleSetCursorRequest(c wlroots.SeatClient, s wlroots.Surface, _ uint32, hotspotX int32, hotspotY int32) {
	b.handler.HandleRequestSetCursor(b.clientFor(c), b.surfaceFor(s), hotspotX, hotspotY)
}
