// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkit

import "github.com/mstarongithub/tilewl/geom"

// Modifiers is a keyboard modifier bitmask
type Modifiers uint32

const (
	ModShift = Modifiers(1 << iota)
	ModCaps
	ModCtrl
	ModMod1
	ModMod2
	ModMod3
	ModMod4
	ModMod5
)

type SeatCapability uint32

const (
	SeatCapabilityPointer = SeatCapability(1 << iota)
	SeatCapabilityKeyboard
	SeatCapabilityTouch
)

type InputDeviceType int

const (
	InputDeviceKeyboard = InputDeviceType(iota)
	InputDevicePointer
	InputDeviceTouch
	InputDeviceTablet
	InputDeviceTabletPad
	InputDeviceSwitch
)

func (t InputDeviceType) String() string {
	switch t {
	case InputDeviceKeyboard:
		return "keyboard"
	case InputDevicePointer:
		return "pointer"
	case InputDeviceTouch:
		return "touch"
	case InputDeviceTablet:
		return "tablet"
	case InputDeviceTabletPad:
		return "tablet-pad"
	case InputDeviceSwitch:
		return "switch"
	}
	return "unknown"
}

type AxisSource int

const (
	AxisSourceWheel = AxisSource(iota)
	AxisSourceFinger
	AxisSourceContinuous
	AxisSourceWheelTilt
)

type AxisOrientation int

const (
	AxisVertical = AxisOrientation(iota)
	AxisHorizontal
)

type AxisEvent struct {
	Source        AxisSource
	Orientation   AxisOrientation
	Delta         float64
	DeltaDiscrete int32
}

// Client is a connected wayland client
type Client interface {
	PID() int
}

// Surface is a client surface. Implementations must be comparable.
type Surface interface {
	Client() Client
	// InputRegion is the surface local area accepting pointer input
	InputRegion() geom.Region
}

// XKBRules selects a keymap
type XKBRules struct {
	Rules   string
	Model   string
	Layout  string
	Variant string
	Options string
}

type Keyboard interface {
	SetKeymap(rules XKBRules) error
	SetRepeatInfo(rate, delay int32)
	// Keysyms translates a raw (evdev) keycode using the current xkb state
	Keysyms(keycode uint32) []uint32
	Modifiers() Modifiers
	Pressed() []uint32
}

// Libinput exposes the options of a libinput backed device.
// Setters are only called after the matching capability check.
type Libinput interface {
	TapFingerCount() int
	HasNaturalScroll() bool
	HasAccel() bool
	HasLeftHanded() bool
	HasScrollMethod() bool
	SetTap(enabled bool)
	SetNaturalScroll(enabled bool)
	SetAccelSpeed(speed float64)
	SetLeftHanded(enabled bool)
	SetScrollOnButtonDown(enabled bool)
}

// InputDevice implementations must be comparable
type InputDevice interface {
	Name() string
	Type() InputDeviceType
	// Keyboard is nil for everything but keyboards
	Keyboard() Keyboard
	// Libinput is nil if the device is not backed by libinput
	Libinput() Libinput
	// IsPointer is true for real pointer devices, false for tablets and virtual sources
	IsPointer() bool
}

type Seat interface {
	SetCapabilities(caps SeatCapability)

	SetKeyboard(keyboard InputDevice)
	// Keyboard returns the active keyboard, nil if none
	Keyboard() Keyboard
	KeyboardFocus() Surface
	NotifyKeyboardEnter(surface Surface, keycodes []uint32, modifiers Modifiers)
	NotifyKeyboardKey(timeMsec uint32, keycode uint32, pressed bool)
	NotifyKeyboardModifiers(modifiers Modifiers)
	ClearKeyboardFocus()

	PointerFocus() Surface
	PointerFocusClient() Client
	// PointerCoords returns the surface local position last sent to the focused surface
	PointerCoords() (sx, sy float64)
	NotifyPointerEnter(surface Surface, sx, sy float64)
	NotifyPointerMotion(timeMsec uint32, sx, sy float64)
	NotifyPointerButton(timeMsec uint32, button uint32, pressed bool)
	NotifyPointerAxis(timeMsec uint32, event AxisEvent)
	NotifyPointerFrame()
	PointerWarp(sx, sy float64)
	ClearPointerFocus()
	DragActive() bool
	// NotifyActivity resets the idle timers of the seat
	NotifyActivity()

	TouchNotifyDown(surface Surface, timeMsec uint32, id int32, sx, sy float64)
	TouchNotifyUp(timeMsec uint32, id int32)
	TouchNotifyMotion(timeMsec uint32, id int32, sx, sy float64)
	TouchNotifyCancel(surface Surface)
	TouchNotifyFrame()
}

type Cursor interface {
	X() float64
	Y() float64
	Move(dev InputDevice, dx, dy float64)
	WarpClosest(dev InputDevice, lx, ly float64)
	// AbsoluteToLayout converts a 0..1 absolute position of the device into layout coordinates
	AbsoluteToLayout(dev InputDevice, x, y float64) (lx, ly float64)
	AttachInputDevice(dev InputDevice)
	DetachInputDevice(dev InputDevice)
	SetSurface(surface Surface, hotspotX, hotspotY int32)
	SetXCursor(name string)
	// Hide drops the cursor image
	Hide()
	SetTheme(name string, size uint32) error
}
