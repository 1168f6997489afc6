// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkittest

import (
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
)

type Client struct {
	Pid int
}

func (c *Client) PID() int { return c.Pid }

// Surface is a client surface of fixed size. Its input region covers the whole surface
// unless Input is set.
type Surface struct {
	Owner  *Client
	Width  int
	Height int
	Input  *geom.Region
}

func NewSurface(w, h int) *Surface {
	return &Surface{Owner: &Client{}, Width: w, Height: h}
}

func (s *Surface) Client() toolkit.Client { return s.Owner }

func (s *Surface) InputRegion() geom.Region {
	if s.Input != nil {
		return *s.Input
	}
	return geom.NewRegion(geom.Box{Width: s.Width, Height: s.Height})
}

type Keyboard struct {
	Rules       toolkit.XKBRules
	RepeatRate  int32
	RepeatDelay int32
	Mods        toolkit.Modifiers
	Keys        []uint32
	// Keymap maps raw keycodes to keysyms
	Keymap    map[uint32][]uint32
	KeymapErr error
}

func (k *Keyboard) SetKeymap(rules toolkit.XKBRules) error {
	if k.KeymapErr != nil {
		return k.KeymapErr
	}
	k.Rules = rules
	return nil
}

func (k *Keyboard) SetRepeatInfo(rate, delay int32) { k.RepeatRate, k.RepeatDelay = rate, delay }
func (k *Keyboard) Keysyms(keycode uint32) []uint32 { return k.Keymap[keycode] }
func (k *Keyboard) Modifiers() toolkit.Modifiers    { return k.Mods }
func (k *Keyboard) Pressed() []uint32               { return k.Keys }

type Libinput struct {
	TapFingers    int
	NaturalScroll bool
	Accel         bool
	LeftHanded    bool
	ScrollMethod  bool

	Tap          *bool
	Natural      *bool
	AccelSpeed   *float64
	Left         *bool
	ScrollOnDown *bool
}

func (l *Libinput) TapFingerCount() int          { return l.TapFingers }
func (l *Libinput) HasNaturalScroll() bool       { return l.NaturalScroll }
func (l *Libinput) HasAccel() bool               { return l.Accel }
func (l *Libinput) HasLeftHanded() bool          { return l.LeftHanded }
func (l *Libinput) HasScrollMethod() bool        { return l.ScrollMethod }
func (l *Libinput) SetTap(e bool)                { l.Tap = &e }
func (l *Libinput) SetNaturalScroll(e bool)      { l.Natural = &e }
func (l *Libinput) SetAccelSpeed(s float64)      { l.AccelSpeed = &s }
func (l *Libinput) SetLeftHanded(e bool)         { l.Left = &e }
func (l *Libinput) SetScrollOnButtonDown(e bool) { l.ScrollOnDown = &e }

type InputDevice struct {
	DeviceName string
	DeviceType toolkit.InputDeviceType
	Kb         *Keyboard
	Li         *Libinput
	// Virtual marks devices that are not real pointers, e.g. tablets
	Virtual bool
}

func NewKeyboardDevice(name string) *InputDevice {
	return &InputDevice{DeviceName: name, DeviceType: toolkit.InputDeviceKeyboard, Kb: &Keyboard{Keymap: map[uint32][]uint32{}}}
}

func NewPointerDevice(name string) *InputDevice {
	return &InputDevice{DeviceName: name, DeviceType: toolkit.InputDevicePointer}
}

func (d *InputDevice) Name() string                  { return d.DeviceName }
func (d *InputDevice) Type() toolkit.InputDeviceType { return d.DeviceType }
func (d *InputDevice) IsPointer() bool {
	return d.DeviceType == toolkit.InputDevicePointer && !d.Virtual
}

func (d *InputDevice) Keyboard() toolkit.Keyboard {
	if d.Kb == nil {
		return nil
	}
	return d.Kb
}

func (d *InputDevice) Libinput() toolkit.Libinput {
	if d.Li == nil {
		return nil
	}
	return d.Li
}

type Enter struct {
	Surface   toolkit.Surface
	Keycodes  []uint32
	Modifiers toolkit.Modifiers
}

type Motion struct {
	SX, SY float64
}

type Button struct {
	Button  uint32
	Pressed bool
}

type Touch struct {
	Kind    string
	ID      int32
	Surface toolkit.Surface
	SX, SY  float64
}

// Seat records everything sent to clients
type Seat struct {
	Caps     toolkit.SeatCapability
	kbDev    toolkit.InputDevice
	kbFocus  toolkit.Surface
	ptrFocus toolkit.Surface
	sx, sy   float64
	Dragging bool
	Activity int

	KeyboardEnters []Enter
	Keys           []Button
	ModifierSends  []toolkit.Modifiers
	PointerEnters  []Enter
	Motions        []Motion
	Buttons        []Button
	Axes           []toolkit.AxisEvent
	Frames         int
	Warps          []Motion
	Touches        []Touch
}

func (s *Seat) SetCapabilities(c toolkit.SeatCapability) { s.Caps = c }
func (s *Seat) SetKeyboard(dev toolkit.InputDevice)      { s.kbDev = dev }

func (s *Seat) Keyboard() toolkit.Keyboard {
	if s.kbDev == nil {
		return nil
	}
	return s.kbDev.Keyboard()
}

func (s *Seat) KeyboardFocus() toolkit.Surface { return s.kbFocus }

func (s *Seat) NotifyKeyboardEnter(surface toolkit.Surface, keycodes []uint32, mods toolkit.Modifiers) {
	s.kbFocus = surface
	s.KeyboardEnters = append(s.KeyboardEnters, Enter{Surface: surface, Keycodes: keycodes, Modifiers: mods})
}

func (s *Seat) NotifyKeyboardKey(_ uint32, keycode uint32, pressed bool) {
	s.Keys = append(s.Keys, Button{Button: keycode, Pressed: pressed})
}

func (s *Seat) NotifyKeyboardModifiers(m toolkit.Modifiers) {
	s.ModifierSends = append(s.ModifierSends, m)
}
func (s *Seat) ClearKeyboardFocus()           { s.kbFocus = nil }
func (s *Seat) PointerFocus() toolkit.Surface { return s.ptrFocus }

func (s *Seat) PointerFocusClient() toolkit.Client {
	if s.ptrFocus == nil {
		return nil
	}
	return s.ptrFocus.Client()
}

func (s *Seat) PointerCoords() (float64, float64) { return s.sx, s.sy }

func (s *Seat) NotifyPointerEnter(surface toolkit.Surface, sx, sy float64) {
	if s.ptrFocus != surface {
		s.PointerEnters = append(s.PointerEnters, Enter{Surface: surface})
	}
	s.ptrFocus = surface
	s.sx, s.sy = sx, sy
}

func (s *Seat) NotifyPointerMotion(_ uint32, sx, sy float64) {
	s.sx, s.sy = sx, sy
	s.Motions = append(s.Motions, Motion{SX: sx, SY: sy})
}

func (s *Seat) NotifyPointerButton(_ uint32, button uint32, pressed bool) {
	s.Buttons = append(s.Buttons, Button{Button: button, Pressed: pressed})
}

func (s *Seat) NotifyPointerAxis(_ uint32, ev toolkit.AxisEvent) { s.Axes = append(s.Axes, ev) }
func (s *Seat) NotifyPointerFrame()                              { s.Frames++ }

func (s *Seat) PointerWarp(sx, sy float64) {
	s.sx, s.sy = sx, sy
	s.Warps = append(s.Warps, Motion{SX: sx, SY: sy})
}

func (s *Seat) ClearPointerFocus() { s.ptrFocus = nil }
func (s *Seat) DragActive() bool   { return s.Dragging }
func (s *Seat) NotifyActivity()    { s.Activity++ }

func (s *Seat) TouchNotifyDown(surface toolkit.Surface, _ uint32, id int32, sx, sy float64) {
	s.Touches = append(s.Touches, Touch{Kind: "down", ID: id, Surface: surface, SX: sx, SY: sy})
}

func (s *Seat) TouchNotifyUp(_ uint32, id int32) {
	s.Touches = append(s.Touches, Touch{Kind: "up", ID: id})
}

func (s *Seat) TouchNotifyMotion(_ uint32, id int32, sx, sy float64) {
	s.Touches = append(s.Touches, Touch{Kind: "motion", ID: id, SX: sx, SY: sy})
}

func (s *Seat) TouchNotifyCancel(surface toolkit.Surface) {
	s.Touches = append(s.Touches, Touch{Kind: "cancel", Surface: surface})
}

func (s *Seat) TouchNotifyFrame() {
	s.Touches = append(s.Touches, Touch{Kind: "frame"})
}

type CursorImage struct {
	Surface  toolkit.Surface
	XCursor  string
	HotspotX int32
	HotspotY int32
	Hidden   bool
}

// Cursor moves freely inside Bounds, or anywhere if Bounds is empty
type Cursor struct {
	PosX, PosY float64
	Bounds     geom.Box
	Devices    []toolkit.InputDevice
	Image      CursorImage
	Images     []CursorImage
	Theme      string
	ThemeSize  uint32
}

func (c *Cursor) X() float64 { return c.PosX }
func (c *Cursor) Y() float64 { return c.PosY }

func (c *Cursor) Move(_ toolkit.InputDevice, dx, dy float64) {
	c.WarpClosest(nil, c.PosX+dx, c.PosY+dy)
}

func (c *Cursor) WarpClosest(_ toolkit.InputDevice, lx, ly float64) {
	if !c.Bounds.Empty() {
		lx, ly = c.Bounds.ClosestPoint(lx, ly)
	}
	c.PosX, c.PosY = lx, ly
}

func (c *Cursor) AbsoluteToLayout(_ toolkit.InputDevice, x, y float64) (float64, float64) {
	return float64(c.Bounds.X) + x*float64(c.Bounds.Width), float64(c.Bounds.Y) + y*float64(c.Bounds.Height)
}

func (c *Cursor) AttachInputDevice(dev toolkit.InputDevice) { c.Devices = append(c.Devices, dev) }

func (c *Cursor) DetachInputDevice(dev toolkit.InputDevice) {
	for i, d := range c.Devices {
		if d == dev {
			c.Devices = append(c.Devices[:i], c.Devices[i+1:]...)
			return
		}
	}
}

func (c *Cursor) SetSurface(s toolkit.Surface, hx, hy int32) {
	c.Image = CursorImage{Surface: s, HotspotX: hx, HotspotY: hy}
	c.Images = append(c.Images, c.Image)
}

func (c *Cursor) SetXCursor(name string) {
	c.Image = CursorImage{XCursor: name}
	c.Images = append(c.Images, c.Image)
}

func (c *Cursor) Hide() {
	c.Image = CursorImage{Hidden: true}
	c.Images = append(c.Images, c.Image)
}

func (c *Cursor) SetTheme(name string, size uint32) error {
	c.Theme, c.ThemeSize = name, size
	return nil
}
