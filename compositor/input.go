// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"errors"
	"fmt"

	"github.com/mstarongithub/tilewl/gesture"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

type inputDevice struct {
	dev     toolkit.InputDevice
	swipe   gesture.Swipe
	pinch   gesture.Pinch
	holding bool
}

// InputOptions are libinput settings. Nil fields are left alone.
type InputOptions struct {
	Tap                *bool
	NaturalScroll      *bool
	AccelSpeed         *float64
	LeftHanded         *bool
	ScrollOnButtonDown *bool
}

// InputDevices returns the connected devices
func (server *Server) InputDevices() []toolkit.InputDevice {
	devices := make([]toolkit.InputDevice, 0, len(server.devices))
	for _, d := range server.devices {
		devices = append(devices, d.dev)
	}
	return devices
}

func (server *Server) deviceFor(dev toolkit.InputDevice) *inputDevice {
	for _, d := range server.devices {
		if d.dev == dev {
			return d
		}
	}
	return nil
}

func (server *Server) HandleNewInput(dev toolkit.InputDevice) {
	rec := &inputDevice{dev: dev}
	server.devices = append(server.devices, rec)
	switch dev.Type() {
	case toolkit.InputDeviceKeyboard:
		server.addKeyboard(rec)
	case toolkit.InputDevicePointer, toolkit.InputDeviceTouch, toolkit.InputDeviceTablet:
		server.cursor.AttachInputDevice(dev)
	}
	server.updateCapabilities()
	logrus.WithFields(logrus.Fields{
		"name": dev.Name(),
		"type": dev.Type(),
	}).Debugln("New input device")
	server.callbacks.inputDeviceAdded()
}

func (server *Server) addKeyboard(rec *inputDevice) {
	kb := rec.dev.Keyboard()
	if kb == nil {
		logrus.WithField("name", rec.dev.Name()).Errorln("Keyboard device without keyboard")
		return
	}
	if err := kb.SetKeymap(server.options.Keymap); err != nil {
		logrus.WithError(err).WithField("name", rec.dev.Name()).Errorln("Failed to set keymap")
	}
	kb.SetRepeatInfo(server.options.RepeatRate, server.options.RepeatDelay)
	server.seat.SetKeyboard(rec.dev)
	if server.lockState != LockUnlocked && server.lock != nil && len(server.lock.surfaces) > 0 {
		server.focusLockSurface(server.lock.surfaces[0])
	}
}

// updateCapabilities always advertises a pointer, keyboard and touch only if present
func (server *Server) updateCapabilities() {
	caps := toolkit.SeatCapabilityPointer
	for _, d := range server.devices {
		switch d.dev.Type() {
		case toolkit.InputDeviceKeyboard:
			caps |= toolkit.SeatCapabilityKeyboard
		case toolkit.InputDeviceTouch:
			caps |= toolkit.SeatCapabilityTouch
		}
	}
	server.seat.SetCapabilities(caps)
}

func (server *Server) HandleInputDestroy(dev toolkit.InputDevice) {
	rec := server.deviceFor(dev)
	if rec == nil {
		return
	}
	rec.swipe.Reset()
	rec.pinch.Reset()
	server.devices = sliceutils.Filter(server.devices, func(d *inputDevice) bool { return d != rec })
	switch dev.Type() {
	case toolkit.InputDeviceKeyboard:
		if kb := dev.Keyboard(); kb != nil && server.seat.Keyboard() == kb {
			for i := len(server.devices) - 1; i >= 0; i-- {
				if server.devices[i].dev.Type() == toolkit.InputDeviceKeyboard {
					server.seat.SetKeyboard(server.devices[i].dev)
					break
				}
			}
		}
	case toolkit.InputDevicePointer, toolkit.InputDeviceTouch, toolkit.InputDeviceTablet:
		server.cursor.DetachInputDevice(dev)
	}
	server.updateCapabilities()
	logrus.WithField("name", dev.Name()).Debugln("Input device removed")
}

func (server *Server) HandleKey(dev toolkit.InputDevice, timeMsec uint32, keycode uint32, pressed bool) {
	server.seat.NotifyActivity()
	kb := dev.Keyboard()
	if kb == nil {
		return
	}
	handled := false
	if pressed && server.lockState == LockUnlocked {
		mods := kb.Modifiers()
		for _, sym := range kb.Keysyms(keycode) {
			if server.callbacks.keyboardKey(sym, mods) {
				handled = true
			}
		}
	}
	if !handled {
		server.seat.SetKeyboard(dev)
		server.seat.NotifyKeyboardKey(timeMsec, keycode, pressed)
	}
}

func (server *Server) HandleModifiers(dev toolkit.InputDevice) {
	kb := dev.Keyboard()
	if kb == nil {
		return
	}
	server.seat.SetKeyboard(dev)
	server.seat.NotifyKeyboardModifiers(kb.Modifiers())
}

// KeysymsFromCode translates a raw keycode with the active keyboard, nil without a keyboard
func (server *Server) KeysymsFromCode(keycode uint32) []uint32 {
	kb := server.seat.Keyboard()
	if kb == nil {
		return nil
	}
	return kb.Keysyms(keycode)
}

// SetKeymap compiles a new keymap for every keyboard and remembers it for new ones
func (server *Server) SetKeymap(rules toolkit.XKBRules) error {
	server.options.Keymap = rules
	var errs []error
	for _, d := range server.devices {
		kb := d.dev.Keyboard()
		if kb == nil {
			continue
		}
		if err := kb.SetKeymap(rules); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.dev.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (server *Server) SetRepeatInfo(rate, delay int32) {
	server.options.RepeatRate, server.options.RepeatDelay = rate, delay
	for _, d := range server.devices {
		if kb := d.dev.Keyboard(); kb != nil {
			kb.SetRepeatInfo(rate, delay)
		}
	}
}

// ConfigureInput applies options to devices named name, or to all devices if name is empty.
// Options a device does not support are skipped. It returns how many devices were configured.
func (server *Server) ConfigureInput(name string, opts InputOptions) int {
	count := 0
	for _, d := range server.devices {
		if name != "" && d.dev.Name() != name {
			continue
		}
		li := d.dev.Libinput()
		if li == nil {
			continue
		}
		applyInputOptions(li, opts)
		count++
	}
	return count
}

func applyInputOptions(li toolkit.Libinput, opts InputOptions) {
	if opts.Tap != nil && li.TapFingerCount() > 0 {
		li.SetTap(*opts.Tap)
	}
	if opts.NaturalScroll != nil && li.HasNaturalScroll() {
		li.SetNaturalScroll(*opts.NaturalScroll)
	}
	if opts.AccelSpeed != nil && li.HasAccel() {
		li.SetAccelSpeed(*opts.AccelSpeed)
	}
	if opts.LeftHanded != nil && li.HasLeftHanded() {
		li.SetLeftHanded(*opts.LeftHanded)
	}
	if opts.ScrollOnButtonDown != nil && li.HasScrollMethod() {
		li.SetScrollOnButtonDown(*opts.ScrollOnButtonDown)
	}
}

func (server *Server) HandleSwipeBegin(dev toolkit.InputDevice, timeMsec uint32, fingers uint32) {
	server.seat.NotifyActivity()
	if rec := server.deviceFor(dev); rec != nil {
		rec.swipe.Begin(fingers)
	}
}

func (server *Server) HandleSwipeUpdate(dev toolkit.InputDevice, timeMsec uint32, dx, dy float64) {
	if rec := server.deviceFor(dev); rec != nil {
		rec.swipe.Update(dx, dy)
	}
}

// HandleSwipeEnd reports the swipe to the host. Cancelled swipes are dropped.
func (server *Server) HandleSwipeEnd(dev toolkit.InputDevice, timeMsec uint32, cancelled bool) {
	rec := server.deviceFor(dev)
	if rec == nil {
		return
	}
	seq, ok := rec.swipe.End()
	if !ok || cancelled || server.lockState != LockUnlocked {
		return
	}
	server.callbacks.pointerSwipe(server.modifiers(), seq)
}

func (server *Server) HandlePinchBegin(dev toolkit.InputDevice, timeMsec uint32, fingers uint32) {
	server.seat.NotifyActivity()
	if rec := server.deviceFor(dev); rec != nil {
		rec.pinch.Begin()
	}
}

func (server *Server) HandlePinchUpdate(dev toolkit.InputDevice, timeMsec uint32, dx, dy, scale, rotation float64) {
	if rec := server.deviceFor(dev); rec != nil {
		rec.pinch.Update(scale, rotation)
	}
}

func (server *Server) HandlePinchEnd(dev toolkit.InputDevice, timeMsec uint32, cancelled bool) {
	rec := server.deviceFor(dev)
	if rec == nil {
		return
	}
	shrink, clockwise, ok := rec.pinch.End()
	if !ok || cancelled || server.lockState != LockUnlocked {
		return
	}
	server.callbacks.pointerPinch(server.modifiers(), shrink, clockwise)
}

// Hold gestures are tracked but not reported
func (server *Server) HandleHoldBegin(dev toolkit.InputDevice, timeMsec uint32, fingers uint32) {
	server.seat.NotifyActivity()
	if rec := server.deviceFor(dev); rec != nil {
		rec.holding = true
	}
}

func (server *Server) HandleHoldEnd(dev toolkit.InputDevice, timeMsec uint32, cancelled bool) {
	if rec := server.deviceFor(dev); rec != nil {
		rec.holding = false
	}
}

type touchPoint struct {
	surface toolkit.Surface
	originX float64
	originY float64
}

// touchToLayout maps touch screens onto the first enabled output
func (server *Server) touchToLayout(dev toolkit.InputDevice, x, y float64) (float64, float64) {
	for _, out := range server.outputs {
		if out.output.Enabled() && !out.fullArea.Empty() {
			area := out.fullArea
			return float64(area.X) + x*float64(area.Width), float64(area.Y) + y*float64(area.Height)
		}
	}
	return server.cursor.AbsoluteToLayout(dev, x, y)
}

func (server *Server) HandleTouchDown(dev toolkit.InputDevice, timeMsec uint32, id int32, x, y float64) {
	server.seat.NotifyActivity()
	lx, ly := server.touchToLayout(dev, x, y)
	_, surface, sx, sy := server.ViewAt(lx, ly)
	if surface == nil {
		return
	}
	server.touches[id] = &touchPoint{surface: surface, originX: lx - sx, originY: ly - sy}
	server.seat.TouchNotifyDown(surface, timeMsec, id, sx, sy)
}

func (server *Server) HandleTouchMotion(dev toolkit.InputDevice, timeMsec uint32, id int32, x, y float64) {
	server.seat.NotifyActivity()
	tp, ok := server.touches[id]
	if !ok {
		return
	}
	lx, ly := server.touchToLayout(dev, x, y)
	server.seat.TouchNotifyMotion(timeMsec, id, lx-tp.originX, ly-tp.originY)
}

func (server *Server) HandleTouchUp(dev toolkit.InputDevice, timeMsec uint32, id int32) {
	if _, ok := server.touches[id]; !ok {
		return
	}
	delete(server.touches, id)
	server.seat.TouchNotifyUp(timeMsec, id)
}

func (server *Server) HandleTouchCancel(dev toolkit.InputDevice, timeMsec uint32, id int32) {
	tp, ok := server.touches[id]
	if !ok {
		return
	}
	delete(server.touches, id)
	server.seat.TouchNotifyCancel(tp.surface)
}

func (server *Server) HandleTouchFrame() {
	server.seat.TouchNotifyFrame()
}
