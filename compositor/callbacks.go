// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

// Callbacks is how the compositor talks to the host policy.
// Every callback is optional and runs on the event loop. Callbacks must not call Poll.
type Callbacks struct {
	// KeyboardKey is offered every keysym of a pressed key. Returning true consumes the key.
	KeyboardKey func(keysym uint32, modifiers toolkit.Modifiers) bool
	// ManageView announces a new view, UnmanageView its removal
	ManageView   func(view View)
	UnmanageView func(view View)
	CursorMotion func(x, y float64)
	// CursorButton gets the 1-based button index. Returning true consumes the event.
	CursorButton     func(button int, modifiers toolkit.Modifiers, pressed bool, x, y float64) bool
	ScreenChange     func()
	InputDeviceAdded func()
	SessionLock      func(locked bool)
	PointerSwipe     func(modifiers toolkit.Modifiers, sequence string)
	PointerPinch     func(modifiers toolkit.Modifiers, shrink, clockwise bool)
	// FocusCurrentWindow asks the host to restore keyboard focus
	FocusCurrentWindow func() bool
}

func (c *Callbacks) keyboardKey(keysym uint32, mods toolkit.Modifiers) bool {
	if c.KeyboardKey == nil {
		return false
	}
	return c.KeyboardKey(keysym, mods)
}

func (c *Callbacks) manageView(v View) {
	if c.ManageView != nil {
		c.ManageView(v)
	}
}

func (c *Callbacks) unmanageView(v View) {
	if c.UnmanageView != nil {
		c.UnmanageView(v)
	}
}

func (c *Callbacks) cursorMotion(x, y float64) {
	if c.CursorMotion != nil {
		c.CursorMotion(x, y)
	}
}

func (c *Callbacks) cursorButton(button int, mods toolkit.Modifiers, pressed bool, x, y float64) bool {
	if c.CursorButton == nil {
		return false
	}
	return c.CursorButton(button, mods, pressed, x, y)
}

func (c *Callbacks) screenChange() {
	if c.ScreenChange != nil {
		c.ScreenChange()
	}
}

func (c *Callbacks) inputDeviceAdded() {
	if c.InputDeviceAdded != nil {
		c.InputDeviceAdded()
	}
}

func (c *Callbacks) sessionLock(locked bool) {
	if c.SessionLock != nil {
		c.SessionLock(locked)
	}
}

func (c *Callbacks) pointerSwipe(mods toolkit.Modifiers, seq string) {
	if c.PointerSwipe != nil {
		c.PointerSwipe(mods, seq)
	}
}

func (c *Callbacks) pointerPinch(mods toolkit.Modifiers, shrink, clockwise bool) {
	if c.PointerPinch != nil {
		c.PointerPinch(mods, shrink, clockwise)
	}
}

func (c *Callbacks) focusCurrentWindow() {
	if c.FocusCurrentWindow == nil {
		return
	}
	if !c.FocusCurrentWindow() {
		logrus.Errorln("Host failed to restore focus")
	}
}
