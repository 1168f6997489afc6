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

// unmanagedSurface is an override-redirect X window such as a menu or tooltip.
// It positions itself and never becomes a view.
type unmanagedSurface struct {
	xsurface toolkit.XWaylandSurface
	tree     toolkit.Tree
	mapped   bool
}

// XWaylandView is a managed X11 window
type XWaylandView struct {
	*viewBase
	xsurface toolkit.XWaylandSurface
	mapped   bool
	managed  bool
}

func (v *XWaylandView) Kind() ViewKind           { return ViewXWayland }
func (v *XWaylandView) Title() string            { return v.xsurface.Title() }
func (v *XWaylandView) AppID() string            { return v.xsurface.Class() }
func (v *XWaylandView) PID() int                 { return v.xsurface.PID() }
func (v *XWaylandView) surface() toolkit.Surface { return v.xsurface.Surface() }
func (v *XWaylandView) activate(activated bool)  { v.xsurface.Activate(activated) }

// Place tells the X window its absolute position, which sits inside the borders
func (v *XWaylandView) Place(x, y, width, height int, borders border.Spec, raise bool) {
	v.place(x, y, width, height, borders, raise)
	bw := v.border.Width()
	v.xsurface.Configure(x+bw, y+bw, width, height)
}

func (v *XWaylandView) Focus(warp bool) {
	v.server.focusView(v, warp)
}

func (v *XWaylandView) Kill() {
	v.xsurface.Close()
}

func (v *XWaylandView) Hide() {
	v.hide()
	v.server.dropFocus(v.surface())
}

func (server *Server) HandleNewXWaylandSurface(xsurface toolkit.XWaylandSurface) {
	if xsurface.OverrideRedirect() {
		server.unmanaged[xsurface] = &unmanagedSurface{xsurface: xsurface}
		return
	}
	server.newXWaylandView(xsurface)
}

func (server *Server) newXWaylandView(xsurface toolkit.XWaylandSurface) *XWaylandView {
	base, err := newViewBase(server, scene.LayerLayout)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to create xwayland view tree")
		return nil
	}
	view := &XWaylandView{viewBase: base, xsurface: xsurface}
	base.bind(view)
	server.xwaylandViews[xsurface] = view
	return view
}

func (server *Server) HandleXWaylandAssociate(xsurface toolkit.XWaylandSurface) {
	if view, ok := server.xwaylandViews[xsurface]; ok {
		if surface := xsurface.Surface(); surface != nil {
			server.surfaceViews[surface] = view
		}
	}
}

func (server *Server) HandleXWaylandMap(xsurface toolkit.XWaylandSurface) {
	if u, ok := server.unmanaged[xsurface]; ok {
		server.mapUnmanaged(u)
		return
	}
	view, ok := server.xwaylandViews[xsurface]
	if !ok || view.mapped {
		return
	}
	content, err := xsurface.AttachScene(view.tree)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to attach xwayland surface to scene")
		return
	}
	view.content = content
	view.mapped = true
	if surface := xsurface.Surface(); surface != nil {
		server.surfaceViews[surface] = view
	}
	geo := xsurface.Geometry()
	view.box = geo
	view.tree.Node().SetPosition(geo.X, geo.Y)
	if !view.managed {
		view.managed = true
		server.manage(view)
	}
	view.Focus(false)
}

func (server *Server) mapUnmanaged(u *unmanagedSurface) {
	if u.mapped {
		return
	}
	tree, err := server.layers.Tree(scene.LayerBringToFront).NewTree()
	if err != nil {
		logrus.WithError(err).Errorln("Failed to create unmanaged surface tree")
		return
	}
	if _, err := u.xsurface.AttachScene(tree); err != nil {
		logrus.WithError(err).Errorln("Failed to attach unmanaged surface to scene")
		tree.Node().Destroy()
		return
	}
	geo := u.xsurface.Geometry()
	tree.Node().SetPosition(geo.X, geo.Y)
	u.tree = tree
	u.mapped = true
}

func (u *unmanagedSurface) unmap() {
	if u.tree != nil {
		u.tree.Node().Destroy()
		u.tree = nil
	}
	u.mapped = false
}

func (server *Server) HandleXWaylandUnmap(xsurface toolkit.XWaylandSurface) {
	if u, ok := server.unmanaged[xsurface]; ok {
		u.unmap()
		return
	}
	view, ok := server.xwaylandViews[xsurface]
	if !ok || !view.mapped {
		return
	}
	view.mapped = false
	view.cleanupBorders()
	if view.content != nil {
		view.content.Node().Destroy()
		view.content = nil
	}
	if view.managed {
		view.managed = false
		server.unmanage(view)
	}
	server.dropFocus(xsurface.Surface())
}

// HandleXWaylandCommit follows size changes the X client made on its own
func (server *Server) HandleXWaylandCommit(xsurface toolkit.XWaylandSurface) {
	view, ok := server.xwaylandViews[xsurface]
	if !ok || !view.mapped {
		return
	}
	geo := xsurface.Geometry()
	if geo.Width == view.box.Width && geo.Height == view.box.Height {
		return
	}
	view.box.Width, view.box.Height = geo.Width, geo.Height
	view.paintBorders(view.borders)
}

// HandleXWaylandRequestConfigure honors requests of unmanaged and not yet placed windows.
// Placed windows are told their current placement again.
func (server *Server) HandleXWaylandRequestConfigure(xsurface toolkit.XWaylandSurface, x, y, width, height int) {
	if u, ok := server.unmanaged[xsurface]; ok {
		xsurface.Configure(x, y, width, height)
		if u.tree != nil {
			u.tree.Node().SetPosition(x, y)
		}
		return
	}
	view, ok := server.xwaylandViews[xsurface]
	if !ok {
		return
	}
	if view.box.Empty() {
		xsurface.Configure(x, y, width, height)
		return
	}
	bw := view.border.Width()
	xsurface.Configure(view.box.X+bw, view.box.Y+bw, view.box.Width, view.box.Height)
}

func (server *Server) HandleXWaylandSetGeometry(xsurface toolkit.XWaylandSurface) {
	u, ok := server.unmanaged[xsurface]
	if !ok || u.tree == nil {
		return
	}
	geo := xsurface.Geometry()
	u.tree.Node().SetPosition(geo.X, geo.Y)
}

// HandleXWaylandSetOverrideRedirect moves a window between managed and unmanaged, keeping it mapped
func (server *Server) HandleXWaylandSetOverrideRedirect(xsurface toolkit.XWaylandSurface) {
	if u, ok := server.unmanaged[xsurface]; ok && !xsurface.OverrideRedirect() {
		mapped := u.mapped
		u.unmap()
		delete(server.unmanaged, xsurface)
		if server.newXWaylandView(xsurface) != nil && mapped {
			server.HandleXWaylandMap(xsurface)
		}
		return
	}
	if view, ok := server.xwaylandViews[xsurface]; ok && xsurface.OverrideRedirect() {
		mapped := view.mapped
		if mapped {
			server.HandleXWaylandUnmap(xsurface)
		}
		server.forgetXWaylandView(view)
		u := &unmanagedSurface{xsurface: xsurface}
		server.unmanaged[xsurface] = u
		if mapped {
			server.mapUnmanaged(u)
		}
	}
}

func (server *Server) HandleXWaylandRequestActivate(xsurface toolkit.XWaylandSurface) {
	if view, ok := server.xwaylandViews[xsurface]; ok && view.mapped {
		view.Focus(false)
	}
}

func (server *Server) HandleXWaylandDestroy(xsurface toolkit.XWaylandSurface) {
	if u, ok := server.unmanaged[xsurface]; ok {
		u.unmap()
		delete(server.unmanaged, xsurface)
		return
	}
	view, ok := server.xwaylandViews[xsurface]
	if !ok {
		return
	}
	if view.managed {
		view.managed = false
		server.unmanage(view)
	}
	server.forgetXWaylandView(view)
}

func (server *Server) forgetXWaylandView(view *XWaylandView) {
	delete(server.xwaylandViews, view.xsurface)
	if surface := view.xsurface.Surface(); surface != nil {
		delete(server.surfaceViews, surface)
	}
	view.destroy()
}
