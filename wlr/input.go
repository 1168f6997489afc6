// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlr

import (
	"errors"
	"os"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/swaywm/go-wlroots/xkb"
)

// surface wraps a wlroots surface. There is one wrapper per live surface so
// the compositor can use them as map keys.
type surface struct {
	surface wlroots.Surface
}

// Client is nil, the binding does not expose the owning client of a surface
func (s *surface) Client() toolkit.Client { return nil }

// InputRegion is empty, the binding does not expose surface state
func (s *surface) InputRegion() geom.Region { return geom.Region{} }

// surfaceFor returns the wrapper of s, creating it on first use
func (b *Backend) surfaceFor(s wlroots.Surface) *surface {
	if w, ok := b.surfaces[s]; ok {
		return w
	}
	w := &surface{surface: s}
	b.surfaces[s] = w
	return w
}

func (b *Backend) forgetSurface(s wlroots.Surface) {
	delete(b.surfaces, s)
	delete(b.graph.owners, s)
}

func unwrapSurface(s toolkit.Surface) wlroots.Surface {
	if w, ok := s.(*surface); ok && w != nil {
		return w.surface
	}
	return wlroots.Surface{}
}

type client struct {
	client wlroots.SeatClient
}

// PID is unknown, the binding does not expose client credentials
func (c *client) PID() int { return 0 }

func (b *Backend) clientFor(c wlroots.SeatClient) *client {
	if w, ok := b.clients[c]; ok {
		return w
	}
	w := &client{client: c}
	b.clients[c] = w
	return w
}

type keyboard struct {
	keyboard wlroots.Keyboard
}

var errKeymapEnv = errors.New("failed to select xkb rules")

// SetKeymap compiles a keymap from the rules. The binding only builds keymaps
// from the xkb defaults, which libxkbcommon reads from XKB_DEFAULT_*.
func (k *keyboard) SetKeymap(rules toolkit.XKBRules) error {
	env := map[string]string{
		"XKB_DEFAULT_RULES":   rules.Rules,
		"XKB_DEFAULT_MODEL":   rules.Model,
		"XKB_DEFAULT_LAYOUT":  rules.Layout,
		"XKB_DEFAULT_VARIANT": rules.Variant,
		"XKB_DEFAULT_OPTIONS": rules.Options,
	}
	for name, value := range env {
		var err error
		if value == "" {
			err = os.Unsetenv(name)
		} else {
			err = os.Setenv(name, value)
		}
		if err != nil {
			return errors.Join(errKeymapEnv, err)
		}
	}
	context := xkb.NewContext(xkb.KeySymFlagNoFlags)
	keymap := context.KeyMap()
	k.keyboard.SetKeymap(keymap)
	keymap.Destroy()
	context.Destroy()
	return nil
}

func (k *keyboard) SetRepeatInfo(rate, delay int32) {
	k.keyboard.SetRepeatInfo(rate, delay)
}

// Keysyms translates the libinput keycode to xkbcommon first
func (k *keyboard) Keysyms(keycode uint32) []uint32 {
	syms := k.keyboard.XKBState().Syms(xkb.KeyCode(keycode + 8))
	out := make([]uint32, 0, len(syms))
	for _, sym := range syms {
		out = append(out, uint32(sym))
	}
	return out
}

// Modifiers shares its bit layout with wlroots
func (k *keyboard) Modifiers() toolkit.Modifiers {
	return toolkit.Modifiers(k.keyboard.Modifiers())
}

// Pressed is empty, the seat reads pressed keys from the keyboard itself
func (k *keyboard) Pressed() []uint32 { return nil }

type inputDevice struct {
	device   wlroots.InputDevice
	keyboard *keyboard
}

func (b *Backend) deviceFor(dev wlroots.InputDevice) *inputDevice {
	if d, ok := b.devices[dev]; ok {
		return d
	}
	d := &inputDevice{device: dev}
	if dev.Type() == wlroots.InputDeviceTypeKeyboard {
		d.keyboard = &keyboard{keyboard: dev.Keyboard()}
	}
	b.devices[dev] = d
	return d
}

func unwrapDevice(dev toolkit.InputDevice) wlroots.InputDevice {
	if d, ok := dev.(*inputDevice); ok && d != nil {
		return d.device
	}
	return wlroots.InputDevice{}
}

func (d *inputDevice) Name() string { return d.device.Name() }

// Type shares its values with enum wlr_input_device_type
func (d *inputDevice) Type() toolkit.InputDeviceType { return toolkit.InputDeviceType(d.device.Type()) }
func (d *inputDevice) IsPointer() bool               { return d.device.Type() == wlroots.InputDeviceTypePointer }

// Libinput is nil, the binding has no libinput device access
func (d *inputDevice) Libinput() toolkit.Libinput { return nil }

func (d *inputDevice) Keyboard() toolkit.Keyboard {
	if d.keyboard == nil {
		return nil
	}
	return d.keyboard
}

type seat struct {
	backend  *Backend
	keyboard *inputDevice
	sx, sy   float64
}

// SetCapabilities shares its bits with wl_seat
func (s *seat) SetCapabilities(caps toolkit.SeatCapability) {
	s.backend.seat.SetCapabilities(wlroots.SeatCapability(caps))
}

func (s *seat) SetKeyboard(dev toolkit.InputDevice) {
	d, ok := dev.(*inputDevice)
	if !ok || d.keyboard == nil {
		return
	}
	s.keyboard = d
	s.backend.seat.SetKeyboard(d.device)
}

func (s *seat) Keyboard() toolkit.Keyboard {
	if s.keyboard == nil {
		return nil
	}
	return s.keyboard.keyboard
}

func (s *seat) focused(surface wlroots.Surface) toolkit.Surface {
	if surface.Nil() {
		return nil
	}
	return s.backend.surfaceFor(surface)
}

func (s *seat) KeyboardFocus() toolkit.Surface {
	return s.focused(s.backend.seat.KeyboardState().FocusedSurface())
}

// NotifyKeyboardEnter sends the pressed keys and modifiers of the active keyboard
func (s *seat) NotifyKeyboardEnter(target toolkit.Surface, _ []uint32, _ toolkit.Modifiers) {
	if s.keyboard == nil {
		return
	}
	s.backend.seat.NotifyKeyboardEnter(unwrapSurface(target), s.keyboard.keyboard.keyboard)
}

func (s *seat) NotifyKeyboardKey(timeMsec uint32, keycode uint32, pressed bool) {
	state := wlroots.KeyStateReleased
	if pressed {
		state = wlroots.KeyStatePressed
	}
	s.backend.seat.NotifyKeyboardKey(timeMsec, keycode, state)
}

// NotifyKeyboardModifiers sends the modifiers of the active keyboard
func (s *seat) NotifyKeyboardModifiers(_ toolkit.Modifiers) {
	if s.keyboard == nil {
		return
	}
	s.backend.seat.NotifyKeyboardModifiers(s.keyboard.keyboard.keyboard)
}

// ClearKeyboardFocus enters the null surface, which is how wlroots clears focus
func (s *seat) ClearKeyboardFocus() {
	if s.keyboard == nil {
		return
	}
	s.backend.seat.NotifyKeyboardEnter(wlroots.Surface{}, s.keyboard.keyboard.keyboard)
}

func (s *seat) PointerFocus() toolkit.Surface {
	return s.focused(s.backend.seat.PointerState().FocusedSurface())
}

func (s *seat) PointerFocusClient() toolkit.Client {
	if s.PointerFocus() == nil {
		return nil
	}
	return s.backend.clientFor(s.backend.seat.PointerState().FocusedClient())
}

func (s *seat) PointerCoords() (float64, float64) { return s.sx, s.sy }

func (s *seat) NotifyPointerEnter(target toolkit.Surface, sx, sy float64) {
	s.sx, s.sy = sx, sy
	s.backend.seat.NotifyPointerEnter(unwrapSurface(target), sx, sy)
}

func (s *seat) NotifyPointerMotion(timeMsec uint32, sx, sy float64) {
	s.sx, s.sy = sx, sy
	s.backend.seat.NotifyPointerMotion(timeMsec, sx, sy)
}

func (s *seat) NotifyPointerButton(timeMsec uint32, button uint32, pressed bool) {
	state := wlroots.ButtonStateReleased
	if pressed {
		state = wlroots.ButtonStatePressed
	}
	s.backend.seat.NotifyPointerButton(timeMsec, button, state)
}

// NotifyPointerAxis relies on the toolkit enums sharing their values with wl_pointer
func (s *seat) NotifyPointerAxis(timeMsec uint32, event toolkit.AxisEvent) {
	s.backend.seat.NotifyPointerAxis(timeMsec, wlroots.AxisOrientation(event.Orientation),
		event.Delta, event.DeltaDiscrete, wlroots.AxisSource(event.Source))
}

func (s *seat) NotifyPointerFrame() { s.backend.seat.NotifyPointerFrame() }

// PointerWarp only records the position, wlr_seat_pointer_warp is not bound
func (s *seat) PointerWarp(sx, sy float64) { s.sx, s.sy = sx, sy }

func (s *seat) ClearPointerFocus() { s.backend.seat.ClearPointerFocus() }

// DragActive is false, drag and drop grabs are not bound
func (s *seat) DragActive() bool { return false }

// NotifyActivity has no idle notifier to reset
func (s *seat) NotifyActivity() {}

// Touch is never advertised by this backend, so these are never reached
func (s *seat) TouchNotifyDown(toolkit.Surface, uint32, int32, float64, float64) {}
func (s *seat) TouchNotifyUp(uint32, int32)                                      {}
func (s *seat) TouchNotifyMotion(uint32, int32, float64, float64)                {}
func (s *seat) TouchNotifyCancel(toolkit.Surface)                                {}
func (s *seat) TouchNotifyFrame()                                                {}

type cursor struct {
	backend *Backend
}

func (c *cursor) X() float64 { return c.backend.cursor.X() }
func (c *cursor) Y() float64 { return c.backend.cursor.Y() }

func (c *cursor) Move(dev toolkit.InputDevice, dx, dy float64) {
	c.backend.cursor.Move(unwrapDevice(dev), dx, dy)
}

// WarpClosest moves by the difference, wlroots clamps the result into the layout
func (c *cursor) WarpClosest(dev toolkit.InputDevice, lx, ly float64) {
	c.backend.cursor.Move(unwrapDevice(dev), lx-c.X(), ly-c.Y())
}

func (c *cursor) AbsoluteToLayout(_ toolkit.InputDevice, x, y float64) (float64, float64) {
	ext := c.backend.layout.extents()
	return float64(ext.X) + x*float64(ext.Width), float64(ext.Y) + y*float64(ext.Height)
}

func (c *cursor) AttachInputDevice(dev toolkit.InputDevice) {
	c.backend.cursor.AttachInputDevice(unwrapDevice(dev))
}

// DetachInputDevice is a no-op, wlroots detaches devices when they are destroyed
func (c *cursor) DetachInputDevice(toolkit.InputDevice) {}

func (c *cursor) SetSurface(s toolkit.Surface, hotspotX, hotspotY int32) {
	c.backend.cursor.SetSurface(unwrapSurface(s), hotspotX, hotspotY)
}

func (c *cursor) SetXCursor(name string) {
	c.backend.cursor.SetXCursor(c.backend.cursorMgr, name)
}

// Hide sets the null surface as cursor image
func (c *cursor) Hide() {
	c.backend.cursor.SetSurface(wlroots.Surface{}, 0, 0)
}

// SetTheme replaces the xcursor manager
func (c *cursor) SetTheme(name string, size uint32) error {
	mgr := wlroots.NewXCursorManager(name, size)
	mgr.Load(1)
	c.backend.cursorMgr.Destroy()
	c.backend.cursorMgr = mgr
	logrus.WithFields(logrus.Fields{
		"theme": name,
		"size":  size,
	}).Debugln("Loaded cursor theme")
	return nil
}
