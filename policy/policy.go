// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package policy is the default window management policy of tilewl.
// Every output tiles its views in its own tiler tree, focus follows clicks.
package policy

import (
	"os"
	"os/exec"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/compositor"
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/tiler"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

// Keysyms the default bindings use
const (
	KeyReturn = 0xff0d
	KeyE      = 0x45
	KeyJ      = 0x4a
	KeyK      = 0x4b
	KeyQ      = 0x51
	Keyh      = 0x68
	Keyj      = 0x6a
	Keyk      = 0x6b
	Keyl      = 0x6c
)

// Lock modifiers never change what a binding means
const ignoredModifiers = toolkit.ModCaps | toolkit.ModMod2

const growStep = 5

type Options struct {
	// Command started by Mod4+Return
	Terminal string
	Focused  border.Spec
	Normal   border.Spec
	// Called on Mod4+Shift+E
	Quit func()
}

type Policy struct {
	server  *compositor.Server
	options Options
	// One tree per output, by output name
	trees   map[string]*tiler.Tree
	views   map[int]compositor.View
	homes   map[int]string
	nextWID int
	// Spawn starts a command, replaced in tests
	Spawn func(cmd string) error
}

func New(options Options) *Policy {
	if options.Terminal == "" {
		options.Terminal = os.Getenv("TERMINAL")
	}
	if options.Terminal == "" {
		options.Terminal = "foot"
	}
	return &Policy{
		options: options,
		trees:   map[string]*tiler.Tree{},
		views:   map[int]compositor.View{},
		homes:   map[int]string{},
		nextWID: 1,
		Spawn:   Spawn,
	}
}

// Attach connects the policy to the server its callbacks were handed to
func (p *Policy) Attach(server *compositor.Server) {
	p.server = server
}

func (p *Policy) Callbacks() compositor.Callbacks {
	return compositor.Callbacks{
		KeyboardKey:        p.keyboardKey,
		ManageView:         p.manageView,
		UnmanageView:       p.unmanageView,
		CursorButton:       p.cursorButton,
		ScreenChange:       p.screenChange,
		InputDeviceAdded:   p.inputDeviceAdded,
		SessionLock:        p.sessionLock,
		PointerSwipe:       p.pointerSwipe,
		PointerPinch:       p.pointerPinch,
		FocusCurrentWindow: p.focusCurrentWindow,
	}
}

// Spawn runs cmd through the shell without waiting for it
func Spawn(cmd string) error {
	c := exec.Command("/bin/sh", "-c", cmd)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Start(); err != nil {
		return err
	}
	go func() {
		err := c.Wait()
		if exiterr, ok := err.(*exec.ExitError); ok {
			logrus.WithError(err).WithFields(logrus.Fields{
				"exit-code": exiterr.ExitCode(),
				"command":   cmd,
			}).Warningln("Bad command completion")
		}
	}()
	return nil
}

// Trees returns the apps of every output tree in reading order
func (p *Policy) Trees() map[string][]int {
	out := map[string][]int{}
	for name, tree := range p.trees {
		out[name] = tree.Apps()
	}
	return out
}

func (p *Policy) View(wid int) compositor.View { return p.views[wid] }

// currentOutput is the enabled output under the cursor, or the first enabled one
func (p *Policy) currentOutput() *compositor.Output {
	x, y := p.server.CursorPosition()
	var first *compositor.Output
	for _, out := range p.server.Outputs() {
		if !out.Enabled() {
			continue
		}
		if out.FullArea().Contains(x, y) {
			return out
		}
		if first == nil {
			first = out
		}
	}
	return first
}

func (p *Policy) outputNamed(name string) *compositor.Output {
	for _, out := range p.server.Outputs() {
		if out.Name() == name && out.Enabled() {
			return out
		}
	}
	return nil
}

func (p *Policy) treeFor(out *compositor.Output) *tiler.Tree {
	tree, ok := p.trees[out.Name()]
	if !ok {
		tree = tiler.NewTree(out.UsableArea())
		p.trees[out.Name()] = tree
	}
	return tree
}

func (p *Policy) manageView(v compositor.View) {
	// Layer surfaces are arranged by the compositor
	if v.Kind() == compositor.ViewLayer {
		return
	}
	wid := v.WID()
	if wid <= 0 {
		wid = p.nextWID
		p.nextWID++
		v.SetWID(wid)
	}
	out := p.currentOutput()
	if out == nil {
		logrus.WithField("wid", wid).Warnln("No output to place view on")
		p.views[wid] = v
		return
	}
	tree := p.treeFor(out)
	if err := tree.AddApp(wid); err != nil {
		logrus.WithError(err).WithField("wid", wid).Errorln("Failed to tile view")
		return
	}
	p.views[wid] = v
	p.homes[wid] = out.Name()
	logrus.WithFields(logrus.Fields{
		"wid":    wid,
		"app-id": v.AppID(),
		"output": out.Name(),
	}).Debugln("Managing view")
	p.retile(out.Name())
}

func (p *Policy) unmanageView(v compositor.View) {
	wid := v.WID()
	if _, ok := p.views[wid]; !ok {
		return
	}
	delete(p.views, wid)
	home, ok := p.homes[wid]
	delete(p.homes, wid)
	if !ok {
		return
	}
	if tree, ok := p.trees[home]; ok {
		if err := tree.RemoveApp(wid); err != nil {
			logrus.WithError(err).WithField("wid", wid).Errorln("View missing from its tree")
		}
	}
	p.retile(home)
}

// retile places every view of an output in its tiler box
func (p *Policy) retile(name string) {
	out := p.outputNamed(name)
	tree, ok := p.trees[name]
	if out == nil || !ok {
		return
	}
	tree.SetArea(out.UsableArea())
	focused, _ := tree.Focused()
	for wid, box := range tree.Layout() {
		v, ok := p.views[wid]
		if !ok {
			continue
		}
		spec := p.options.Normal
		if wid == focused {
			spec = p.options.Focused
		}
		p.place(v, box, spec)
	}
}

func (p *Policy) place(v compositor.View, box geom.Box, spec border.Spec) {
	w := spec.Width
	if box.Width <= 2*w || box.Height <= 2*w {
		w = 0
		spec = border.Spec{}
	}
	v.Place(box.X, box.Y, box.Width-2*w, box.Height-2*w, spec, false)
}

func (p *Policy) focus(wid int) {
	v, ok := p.views[wid]
	if !ok {
		return
	}
	if home, ok := p.homes[wid]; ok {
		if err := p.trees[home].Focus(wid); err != nil {
			logrus.WithError(err).Errorln("Failed to focus view in tree")
		}
		p.retile(home)
	}
	v.Focus(false)
}

// focused is the focused app of the current output
func (p *Policy) focused() (int, *tiler.Tree, bool) {
	out := p.currentOutput()
	if out == nil {
		return 0, nil, false
	}
	tree, ok := p.trees[out.Name()]
	if !ok {
		return 0, nil, false
	}
	wid, ok := tree.Focused()
	return wid, tree, ok
}

func (p *Policy) cycleFocus(step int) {
	wid, tree, ok := p.focused()
	if !ok {
		return
	}
	if next, ok := tree.Cycle(wid, step); ok {
		p.focus(next)
	}
}

func (p *Policy) swapFocused(step int) {
	wid, tree, ok := p.focused()
	if !ok {
		return
	}
	next, ok := tree.Cycle(wid, step)
	if !ok || next == wid {
		return
	}
	if err := tree.SwapApp(wid, next); err != nil {
		logrus.WithError(err).Errorln("Failed to swap views")
		return
	}
	// Focus moves with the view
	if err := tree.Focus(wid); err != nil {
		logrus.WithError(err).Errorln("Failed to focus swapped view")
	}
	p.retile(p.homes[wid])
}

func (p *Policy) growFocused(delta int) {
	wid, tree, ok := p.focused()
	if !ok {
		return
	}
	if err := tree.Grow(wid, delta); err != nil {
		logrus.WithError(err).Errorln("Failed to resize view")
		return
	}
	p.retile(p.homes[wid])
}

func (p *Policy) keyboardKey(keysym uint32, modifiers toolkit.Modifiers) bool {
	modifiers &^= ignoredModifiers
	switch modifiers {
	case toolkit.ModMod4:
		switch keysym {
		case KeyReturn:
			if err := p.Spawn(p.options.Terminal); err != nil {
				logrus.WithError(err).WithField("command", p.options.Terminal).Errorln("Failed to start terminal")
			}
		case Keyj:
			p.cycleFocus(1)
		case Keyk:
			p.cycleFocus(-1)
		case Keyh:
			p.growFocused(-growStep)
		case Keyl:
			p.growFocused(growStep)
		default:
			return false
		}
		return true
	case toolkit.ModMod4 | toolkit.ModShift:
		switch keysym {
		case KeyQ:
			if wid, _, ok := p.focused(); ok {
				p.views[wid].Kill()
			}
		case KeyJ:
			p.swapFocused(1)
		case KeyK:
			p.swapFocused(-1)
		case KeyE:
			if p.options.Quit != nil {
				p.options.Quit()
			}
		default:
			return false
		}
		return true
	}
	return false
}

// cursorButton focuses the view under a left click, the click still reaches the client
func (p *Policy) cursorButton(button int, _ toolkit.Modifiers, pressed bool, x, y float64) bool {
	if !pressed || button != compositor.ButtonLeft {
		return false
	}
	v, _, _, _ := p.server.ViewAt(x, y)
	if v == nil || v.Kind() == compositor.ViewLayer {
		return false
	}
	if _, ok := p.views[v.WID()]; ok {
		p.focus(v.WID())
	}
	return false
}

// screenChange moves the views of vanished outputs to the current one and retiles everything
func (p *Policy) screenChange() {
	target := p.currentOutput()
	for name, tree := range p.trees {
		if p.outputNamed(name) != nil {
			continue
		}
		delete(p.trees, name)
		if target == nil {
			continue
		}
		dest := p.treeFor(target)
		for _, wid := range tree.Apps() {
			if err := dest.AddApp(wid); err != nil {
				logrus.WithError(err).WithField("wid", wid).Errorln("Failed to move view")
				continue
			}
			p.homes[wid] = target.Name()
		}
		logrus.WithFields(logrus.Fields{
			"from": name,
			"to":   target.Name(),
		}).Infoln("Moved views of removed output")
	}
	for name := range p.trees {
		p.retile(name)
	}
}

func (p *Policy) inputDeviceAdded() {
	logrus.WithField("devices", len(p.server.InputDevices())).Debugln("Input devices changed")
}

func (p *Policy) sessionLock(locked bool) {
	logrus.WithField("locked", locked).Infoln("Session lock changed")
}

// pointerSwipe cycles focus with horizontal swipes
func (p *Policy) pointerSwipe(_ toolkit.Modifiers, sequence string) {
	switch sequence {
	case "L":
		p.cycleFocus(-1)
	case "R":
		p.cycleFocus(1)
	}
}

func (p *Policy) pointerPinch(_ toolkit.Modifiers, shrink, clockwise bool) {
	logrus.WithFields(logrus.Fields{
		"shrink":    shrink,
		"clockwise": clockwise,
	}).Debugln("Unbound pinch")
}

// focusCurrentWindow refocuses the tree focus of the current output, or any view
func (p *Policy) focusCurrentWindow() bool {
	if wid, _, ok := p.focused(); ok {
		p.focus(wid)
		return true
	}
	for wid := range p.views {
		p.focus(wid)
		return true
	}
	// Nothing to focus is fine
	return true
}
