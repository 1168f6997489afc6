// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlr

import (
	"fmt"

	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
)

type xdgToplevel struct {
	backend    *Backend
	xdgSurface wlroots.XDGSurface
	toplevel   wlroots.XDGTopLevel
	surface    *surface
	tree       *tree
	committed  bool
}

func (t *xdgToplevel) Surface() toolkit.Surface { return t.surface }
func (t *xdgToplevel) Title() string            { return t.toplevel.Title() }
func (t *xdgToplevel) AppID() string            { return t.toplevel.AppId() }

// PID is unknown, the binding does not expose client credentials
func (t *xdgToplevel) PID() int { return 0 }

// Version assumes a current client, the binding does not expose the resource version
func (t *xdgToplevel) Version() uint32 { return toolkit.XDGToplevelTiledSinceVersion }

func (t *xdgToplevel) SetActivated(activated bool) { t.toplevel.SetActivated(activated) }

func (t *xdgToplevel) SetSize(width, height int) {
	t.xdgSurface.TopLevelSetSize(uint32(width), uint32(height))
}

// SetTiled relies on toolkit.Edges sharing its bits with wlr_edges
func (t *xdgToplevel) SetTiled(edges toolkit.Edges) {
	t.xdgSurface.TopLevelSetTiled(wlroots.Edges(edges))
}

func (t *xdgToplevel) SetMaximized(maximized bool) {
	logrus.WithField("maximized", maximized).Debugln("Maximized state is not bound, ignoring")
}

func (t *xdgToplevel) SetFullscreen(fullscreen bool) {
	logrus.WithField("fullscreen", fullscreen).Debugln("Fullscreen state is not bound, ignoring")
}

func (t *xdgToplevel) SendClose() { t.xdgSurface.SendClose() }

func (t *xdgToplevel) AttachScene(parent toolkit.Tree) (toolkit.Tree, error) {
	p, ok := parent.(*tree)
	if !ok {
		return nil, fmt.Errorf("%w: foreign scene tree", ErrUnsupported)
	}
	if t.tree != nil {
		return nil, fmt.Errorf("xdg toplevel %q is already in the scene", t.Title())
	}
	t.tree = p.attachXDGSurface(t.xdgSurface)
	return t.tree, nil
}

func (b *Backend) handleNewXDGSurface(xdgSurface wlroots.XDGSurface) {
	logrus.WithField("surface", xdgSurface).Debugln("New surface inbound")

	switch xdgSurface.Role() {
	case wlroots.XDGSurfaceRolePopup:
		b.handleNewXDGPopup(xdgSurface)
		return
	case wlroots.XDGSurfaceRoleTopLevel:
	default:
		logrus.WithFields(logrus.Fields{
			"surface": xdgSurface,
			"role":    xdgSurface.Role(),
		}).Errorln("xdg surface without a usable role")
		return
	}

	t := &xdgToplevel{
		backend:    b,
		xdgSurface: xdgSurface,
		toplevel:   xdgSurface.TopLevel(),
		surface:    b.surfaceFor(xdgSurface.Surface()),
	}
	b.toplevels[xdgSurface] = t

	xdgSurface.OnMap(func(s wlroots.XDGSurface) {
		t, ok := b.toplevels[s]
		if !ok {
			return
		}
		// The binding has no commit hook. wlroots configured the surface on its
		// own, the first map stands in for the initial commit.
		if !t.committed {
			t.committed = true
			b.handler.HandleXDGToplevelCommit(t, true)
		}
		b.handler.HandleXDGToplevelMap(t)
	})
	xdgSurface.OnUnmap(func(s wlroots.XDGSurface) {
		if t, ok := b.toplevels[s]; ok {
			b.handler.HandleXDGToplevelUnmap(t)
		}
	})
	xdgSurface.OnDestroy(func(s wlroots.XDGSurface) {
		t, ok := b.toplevels[s]
		if !ok {
			return
		}
		// wlroots already freed the scene tree
		if t.tree != nil {
			t.tree.real = nil
		}
		b.handler.HandleXDGToplevelDestroy(t)
		b.forgetSurface(s.Surface())
		delete(b.toplevels, s)
	})

	b.handler.HandleNewXDGToplevel(t)
}

// handleNewXDGPopup nests the popup in the scene tree of its parent, the
// compositor never sees popups of xdg toplevels
func (b *Backend) handleNewXDGPopup(xdgSurface wlroots.XDGSurface) {
	parent := xdgSurface.Popup().Parent()
	if parent.Nil() {
		logrus.WithField("surface", xdgSurface).Errorln("xdg popup without parent")
		return
	}
	owner, ok := b.graph.owners[parent]
	if !ok {
		logrus.WithField("surface", xdgSurface).Errorln("xdg popup of an unknown parent")
		return
	}
	xdgSurface.SetData(parent.XDGSurface().SceneTree().NewXDGSurface(xdgSurface))
	b.graph.owners[xdgSurface.Surface()] = owner
	xdgSurface.OnDestroy(func(s wlroots.XDGSurface) {
		b.forgetSurface(s.Surface())
	})
}
