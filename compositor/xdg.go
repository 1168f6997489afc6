// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

// XDGView is a regular wayland toplevel
type XDGView struct {
	*viewBase
	toplevel toolkit.XDGToplevel
	mapped   bool
	managed  bool
}

func (v *XDGView) Kind() ViewKind                { return ViewXDG }
func (v *XDGView) Title() string                 { return v.toplevel.Title() }
func (v *XDGView) AppID() string                 { return v.toplevel.AppID() }
func (v *XDGView) PID() int                      { return v.toplevel.PID() }
func (v *XDGView) Toplevel() toolkit.XDGToplevel { return v.toplevel }
func (v *XDGView) Mapped() bool                  { return v.mapped }
func (v *XDGView) surface() toolkit.Surface      { return v.toplevel.Surface() }
func (v *XDGView) activate(activated bool)       { v.toplevel.SetActivated(activated) }

func (v *XDGView) Place(x, y, width, height int, borders border.Spec, raise bool) {
	v.place(x, y, width, height, borders, raise)
	v.toplevel.SetSize(width, height)
}

func (v *XDGView) Focus(warp bool) {
	v.server.focusView(v, warp)
}

func (v *XDGView) Kill() {
	v.toplevel.SendClose()
}

func (v *XDGView) Hide() {
	v.hide()
	v.server.dropFocus(v.surface())
}

// SetFullscreen tells the client about a fullscreen change made by the host
func (v *XDGView) SetFullscreen(fullscreen bool) {
	v.toplevel.SetFullscreen(fullscreen)
}

func (server *Server) HandleNewXDGToplevel(toplevel toolkit.XDGToplevel) {
	base, err := newViewBase(server, scene.LayerLayout)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to create xdg view tree")
		toplevel.SendClose()
		return
	}
	content, err := toplevel.AttachScene(base.tree)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to attach xdg surface to scene")
		base.destroy()
		toplevel.SendClose()
		return
	}
	base.content = content
	view := &XDGView{viewBase: base, toplevel: toplevel}
	base.bind(view)
	server.xdgViews[toplevel] = view
	server.surfaceViews[toplevel.Surface()] = view
	logrus.WithField("app-id", toplevel.AppID()).Debugln("New xdg toplevel")
}

func (server *Server) HandleXDGToplevelCommit(toplevel toolkit.XDGToplevel, initial bool) {
	view, ok := server.xdgViews[toplevel]
	if !ok || !initial {
		return
	}
	// Let the client pick its size until the host places it
	toplevel.SetSize(0, 0)
	if !view.managed {
		view.managed = true
		server.manage(view)
	}
}

func (server *Server) HandleXDGToplevelMap(toplevel toolkit.XDGToplevel) {
	view, ok := server.xdgViews[toplevel]
	if !ok {
		return
	}
	view.mapped = true
	if !view.managed {
		view.managed = true
		server.manage(view)
	}
	if toplevel.Version() >= toolkit.XDGToplevelTiledSinceVersion {
		toplevel.SetTiled(toolkit.EdgeAll)
	} else {
		toplevel.SetMaximized(true)
	}
	view.Focus(false)
}

func (server *Server) HandleXDGToplevelUnmap(toplevel toolkit.XDGToplevel) {
	view, ok := server.xdgViews[toplevel]
	if !ok {
		return
	}
	view.mapped = false
	view.cleanupBorders()
	if view.managed {
		view.managed = false
		server.unmanage(view)
	}
	server.dropFocus(view.surface())
}

func (server *Server) HandleXDGToplevelDestroy(toplevel toolkit.XDGToplevel) {
	view, ok := server.xdgViews[toplevel]
	if !ok {
		return
	}
	if view.managed {
		view.managed = false
		server.unmanage(view)
	}
	delete(server.xdgViews, toplevel)
	delete(server.surfaceViews, toplevel.Surface())
	view.destroy()
}

// Decorations are always drawn by the compositor
func (server *Server) HandleNewDecoration(decoration toolkit.XDGDecoration) {
	decoration.SetServerSide()
}

func (server *Server) HandleDecorationRequestMode(decoration toolkit.XDGDecoration) {
	decoration.SetServerSide()
}
