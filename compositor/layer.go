// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"math"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/layershell"
	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// LayerView is a layer-shell surface such as a panel or a wallpaper
type LayerView struct {
	*viewBase
	layerSurface toolkit.LayerSurface
	output       *Output
	shellLayer   toolkit.ShellLayer
	layerState   toolkit.LayerSurfaceState
	popups       toolkit.Tree
	mapped       bool
	managed      bool
	configured   geom.Box
	sentConfig   bool
	// Set by the initial commit, cleared on unmap. Only initialized surfaces take space.
	initialized bool
}

func (v *LayerView) Kind() ViewKind                 { return ViewLayer }
func (v *LayerView) Title() string                  { return v.layerSurface.Namespace() }
func (v *LayerView) AppID() string                  { return v.layerSurface.Namespace() }
func (v *LayerView) ShellLayer() toolkit.ShellLayer { return v.shellLayer }
func (v *LayerView) Surface() toolkit.LayerSurface  { return v.layerSurface }
func (v *LayerView) surface() toolkit.Surface       { return v.layerSurface.Surface() }
func (v *LayerView) activate(bool)                  {}

func (v *LayerView) Output() *Output { return v.output }

func (v *LayerView) PID() int {
	if client := v.surface().Client(); client != nil {
		return client.PID()
	}
	return 0
}

// Place only repaints borders, the position of layer surfaces is owned by the arranger
func (v *LayerView) Place(x, y, width, height int, borders border.Spec, raise bool) {
	if raise {
		v.BringToFront()
	}
	v.paintBorders(borders)
}

func (v *LayerView) Focus(warp bool) {
	v.server.focusView(v, warp)
}

func (v *LayerView) Kill() {
	v.layerSurface.Close()
}

func (v *LayerView) Hide() {
	v.hide()
	v.popups.Node().SetEnabled(false)
	v.server.dropFocus(v.surface())
}

func (v *LayerView) Unhide() {
	v.viewBase.Unhide()
	v.popups.Node().SetEnabled(true)
}

func (server *Server) HandleNewLayerSurface(surface toolkit.LayerSurface) {
	log := logrus.WithField("namespace", surface.Namespace())
	if surface.Output() == nil {
		current := server.currentOutput()
		if current == nil {
			log.WithError(ErrNoOutput).Errorln("No output for layer surface")
			surface.Close()
			return
		}
		surface.SetOutput(current.output)
	}
	out := server.outputFor(surface.Output())
	if out == nil {
		log.WithError(ErrNoOutput).Errorln("Layer surface on unknown output")
		surface.Close()
		return
	}

	shellLayer := surface.Pending().Layer
	layer := scene.FromShellLayer(shellLayer)
	base, err := newViewBase(server, layer)
	if err != nil {
		log.WithError(err).Errorln("Failed to create layer view tree")
		surface.Close()
		return
	}
	content, err := surface.AttachScene(base.tree)
	if err != nil {
		log.WithError(err).Errorln("Failed to attach layer surface to scene")
		base.destroy()
		surface.Close()
		return
	}
	base.content = content
	popups, err := server.layers.Tree(scene.PopupLayer(layer)).NewTree()
	if err != nil {
		log.WithError(err).Errorln("Failed to create layer popup tree")
		base.destroy()
		surface.Close()
		return
	}

	view := &LayerView{
		viewBase:     base,
		layerSurface: surface,
		output:       out,
		shellLayer:   shellLayer,
		layerState:   surface.Pending(),
		popups:       popups,
	}
	base.wid = -1
	base.bind(view)
	server.layerViews[surface] = view
	server.surfaceViews[surface.Surface()] = view
	out.layers[shellLayer] = append(out.layers[shellLayer], view)
	log.Debugln("New layer surface")
}

func (server *Server) HandleLayerSurfaceCommit(surface toolkit.LayerSurface, initial bool) {
	view, ok := server.layerViews[surface]
	if !ok || view.output == nil {
		return
	}
	if initial {
		scale := float64(view.output.output.Scale())
		surface.SendScale(scale, int(math.Ceil(scale)))
		view.layerState = surface.Pending()
		view.initialized = true
		view.sentConfig = false
	} else {
		view.layerState = surface.Current()
	}
	view.setShellLayer(view.layerState.Layer)
	server.arrangeLayers(view.output)
}

// setShellLayer moves the view and its popups when the client changed layers
func (v *LayerView) setShellLayer(shellLayer toolkit.ShellLayer) {
	if shellLayer == v.shellLayer {
		return
	}
	out := v.output
	out.layers[v.shellLayer] = sliceutils.Filter(out.layers[v.shellLayer], func(lv *LayerView) bool { return lv != v })
	out.layers[shellLayer] = append(out.layers[shellLayer], v)
	v.shellLayer = shellLayer

	layer := scene.FromShellLayer(shellLayer)
	if err := v.SetLayer(layer); err != nil {
		logrus.WithError(err).Errorln("Failed to move layer surface")
		return
	}
	if err := v.server.layers.Reparent(v.popups.Node(), scene.PopupLayer(layer)); err != nil {
		logrus.WithError(err).Errorln("Failed to move layer popups")
	}
}

func (server *Server) HandleLayerSurfaceMap(surface toolkit.LayerSurface) {
	view, ok := server.layerViews[surface]
	if !ok {
		return
	}
	view.mapped = true
	if view.output != nil {
		server.arrangeLayers(view.output)
	}
	if !view.managed {
		view.managed = true
		server.manage(view)
	}
	if view.layerState.KeyboardInteractive != 0 && server.lockState == LockUnlocked {
		view.Focus(false)
	}
}

func (server *Server) HandleLayerSurfaceUnmap(surface toolkit.LayerSurface) {
	view, ok := server.layerViews[surface]
	if !ok {
		return
	}
	view.mapped = false
	view.initialized = false
	view.sentConfig = false
	view.cleanupBorders()
	if view.managed {
		view.managed = false
		server.unmanage(view)
	}
	server.dropFocus(view.surface())
	if view.output != nil {
		server.arrangeLayers(view.output)
	}
}

func (server *Server) HandleLayerSurfaceDestroy(surface toolkit.LayerSurface) {
	view, ok := server.layerViews[surface]
	if !ok {
		return
	}
	if view.managed {
		view.managed = false
		server.unmanage(view)
	}
	delete(server.layerViews, surface)
	delete(server.surfaceViews, surface.Surface())
	if out := view.output; out != nil {
		out.layers[view.shellLayer] = sliceutils.Filter(out.layers[view.shellLayer], func(lv *LayerView) bool { return lv != view })
		view.output = nil
		server.arrangeLayers(out)
	}
	view.popups.Node().Destroy()
	view.destroy()
}

func (server *Server) HandleNewLayerPopup(parent toolkit.LayerSurface, popup toolkit.XDGPopup) {
	view, ok := server.layerViews[parent]
	if !ok {
		return
	}
	if _, err := popup.AttachScene(view.popups); err != nil {
		logrus.WithError(err).Errorln("Failed to attach layer popup to scene")
	}
}

// arrangeLayers positions every layer surface of out and recomputes its usable area
func (server *Server) arrangeLayers(out *Output) {
	var views []*LayerView
	var states []toolkit.LayerSurfaceState
	for _, list := range out.layers {
		for _, v := range list {
			if !v.initialized {
				continue
			}
			views = append(views, v)
			states = append(states, v.layerState)
		}
	}
	placements, usable := layershell.Arrange(out.fullArea, states)
	for i, v := range views {
		p := placements[i]
		if !p.Valid {
			logrus.WithFields(logrus.Fields{
				"namespace": v.layerSurface.Namespace(),
				"box":       p.Box,
			}).Errorln("Layer surface does not fit its output")
			v.layerSurface.Close()
			continue
		}
		v.box = p.Box
		v.tree.Node().SetPosition(p.Box.X, p.Box.Y)
		v.popups.Node().SetPosition(p.Box.X, p.Box.Y)
		if !v.sentConfig || v.configured.Width != p.Box.Width || v.configured.Height != p.Box.Height {
			v.sentConfig = true
			v.configured = p.Box
			v.layerSurface.Configure(p.Box.Width, p.Box.Height)
		}
	}
	out.usableArea = usable
}
