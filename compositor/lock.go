// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"fmt"

	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

type LockState int

const (
	LockUnlocked = LockState(iota)
	LockLocked
	// LockCrashed is final: the lock client died without unlocking
	LockCrashed
)

func (s LockState) String() string {
	switch s {
	case LockUnlocked:
		return "unlocked"
	case LockLocked:
		return "locked"
	case LockCrashed:
		return "crashed"
	}
	return fmt.Sprintf("lock-state(%d)", int(s))
}

// Colors of the rects covering outputs while locked
var (
	LockedColor  = toolkit.Color{0, 0, 0.1, 1}
	CrashedColor = toolkit.Color{0.1, 0, 0, 1}
)

type sessionLock struct {
	lock     toolkit.SessionLock
	tree     toolkit.Tree
	surfaces []*lockSurface
}

type lockSurface struct {
	surface toolkit.LockSurface
	tree    toolkit.Tree
	output  *Output
}

func (server *Server) LockState() LockState { return server.lockState }

func (server *Server) HandleNewLock(lock toolkit.SessionLock) {
	if server.lockState != LockUnlocked {
		logrus.WithError(ErrLockRejected).WithField("state", server.lockState).Warnln("Destroying new session lock")
		lock.Destroy()
		return
	}
	tree, err := server.layers.Tree(scene.LayerLock).NewTree()
	if err != nil {
		logrus.WithError(err).Errorln("Failed to create session lock tree")
		lock.Destroy()
		return
	}

	server.ReleaseImplicitGrab()
	server.layers.SetLockEnabled(true)
	server.lockState = LockLocked
	server.lock = &sessionLock{lock: lock, tree: tree}
	server.seat.ClearKeyboardFocus()
	server.constraintFocusChanged(nil)
	server.seat.ClearPointerFocus()
	for _, out := range server.outputs {
		if out.output.Enabled() {
			server.updateLockOutput(out)
		}
	}

	lock.SendLocked()
	logrus.Infoln("Session locked")
	server.callbacks.sessionLock(true)
}

func (server *Server) HandleNewLockSurface(lock toolkit.SessionLock, surface toolkit.LockSurface) {
	if server.lock == nil || server.lock.lock != lock {
		logrus.Warnln("Lock surface for an inactive session lock")
		return
	}
	out := server.outputFor(surface.Output())
	if out == nil {
		logrus.WithError(ErrNoOutput).Errorln("Lock surface on unknown output")
		return
	}
	tree, err := server.lock.tree.NewSurfaceTree(surface.Surface())
	if err != nil {
		logrus.WithError(err).Errorln("Failed to create lock surface tree")
		return
	}
	tree.Node().RaiseToTop()

	ls := &lockSurface{surface: surface, tree: tree, output: out}
	if old := out.lockSurface; old != nil {
		server.forgetLockSurface(old)
	}
	out.lockSurface = ls
	server.lock.surfaces = append(server.lock.surfaces, ls)
	server.positionLockSurface(ls)

	if out == server.currentOutput() {
		server.focusLockSurface(ls)
	}
}

func (server *Server) positionLockSurface(ls *lockSurface) {
	area := ls.output.fullArea
	ls.tree.Node().SetPosition(area.X, area.Y)
	ls.surface.Configure(area.Width, area.Height)
}

// focusLockSurface sends keyboard and pointer to a lock surface. Nothing happens without a keyboard.
func (server *Server) focusLockSurface(ls *lockSurface) {
	kb := server.seat.Keyboard()
	if kb == nil {
		return
	}
	surface := ls.surface.Surface()
	server.seat.NotifyKeyboardEnter(surface, kb.Pressed(), kb.Modifiers())
	area := ls.output.fullArea
	server.seat.NotifyPointerEnter(surface, server.cursor.X()-float64(area.X), server.cursor.Y()-float64(area.Y))
}

// refocusLock moves focus to the first lock surface unless one already has it
func (server *Server) refocusLock() {
	if server.lockState == LockUnlocked || server.lock == nil || len(server.lock.surfaces) == 0 {
		return
	}
	focus := server.seat.KeyboardFocus()
	for _, ls := range server.lock.surfaces {
		if focus != nil && ls.surface.Surface() == focus {
			return
		}
	}
	server.focusLockSurface(server.lock.surfaces[0])
}

func (server *Server) forgetLockSurface(ls *lockSurface) {
	if server.lock != nil {
		server.lock.surfaces = sliceutils.Filter(server.lock.surfaces, func(known *lockSurface) bool { return known != ls })
	}
	if ls.output != nil && ls.output.lockSurface == ls {
		ls.output.lockSurface = nil
	}
	if server.seat.KeyboardFocus() == ls.surface.Surface() {
		server.seat.ClearKeyboardFocus()
	}
}

// removeLockSurface drops the lock surface of an output that is going away
func (server *Server) removeLockSurface(out *Output) {
	ls := out.lockSurface
	if ls == nil {
		return
	}
	server.forgetLockSurface(ls)
	ls.tree.Node().Destroy()
}

func (server *Server) HandleLockSurfaceDestroy(surface toolkit.LockSurface) {
	if server.lock == nil {
		return
	}
	for _, ls := range server.lock.surfaces {
		if ls.surface == surface {
			server.forgetLockSurface(ls)
			server.refocusLock()
			return
		}
	}
}

func (server *Server) HandleUnlock(lock toolkit.SessionLock) {
	if server.lock == nil || server.lock.lock != lock || server.lockState != LockLocked {
		return
	}
	server.layers.SetLockEnabled(false)
	for _, out := range server.outputs {
		out.removeBlank()
		out.lockSurface = nil
	}
	server.lock.tree.Node().Destroy()
	server.lock = nil
	server.seat.ClearKeyboardFocus()
	server.seat.ClearPointerFocus()
	server.lockState = LockUnlocked

	logrus.Infoln("Session unlocked")
	server.callbacks.sessionLock(false)
	server.callbacks.focusCurrentWindow()
	server.processMotion(nil, 0, 0, 0)
}

// HandleLockDestroy only matters if the lock was not released before
func (server *Server) HandleLockDestroy(lock toolkit.SessionLock) {
	if server.lock == nil || server.lock.lock != lock {
		return
	}
	server.lockState = LockCrashed
	for _, out := range server.outputs {
		out.lockSurface = nil
		out.removeBlank()
		if out.output.Enabled() {
			server.updateLockOutput(out)
		}
	}
	server.lock.tree.Node().Destroy()
	server.lock = nil
	server.seat.ClearKeyboardFocus()
	server.seat.ClearPointerFocus()
	logrus.Errorln("Session lock client went away without unlocking, keeping the session locked")
}

// updateLockOutput keeps the blanking rect and lock surface of out in sync with its area
func (server *Server) updateLockOutput(out *Output) {
	if server.lockState == LockUnlocked {
		return
	}
	server.ensureBlank(out)
	if out.lockSurface != nil {
		server.positionLockSurface(out.lockSurface)
	}
}

func (server *Server) ensureBlank(out *Output) {
	area := out.fullArea
	if out.blank == nil {
		color := LockedColor
		if server.lockState == LockCrashed {
			color = CrashedColor
		}
		rect, err := server.layers.Tree(scene.LayerLock).NewRect(area.Width, area.Height, color)
		if err != nil {
			logrus.WithError(err).WithField("output", out.Name()).Errorln("Failed to create blanking rect")
			return
		}
		out.blank = rect
	}
	out.blank.SetSize(area.Width, area.Height)
	out.blank.Node().SetPosition(area.X, area.Y)
	out.blank.Node().LowerToBottom()
}

func (o *Output) removeBlank() {
	if o.blank == nil {
		return
	}
	o.blank.Node().Destroy()
	o.blank = nil
}

// Blank returns the rect covering the output while locked, nil otherwise
func (o *Output) Blank() toolkit.Rect { return o.blank }
