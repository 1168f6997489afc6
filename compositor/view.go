// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"fmt"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

type ViewKind int

const (
	ViewXDG = ViewKind(iota)
	ViewLayer
	ViewInternal
	ViewXWayland
)

func (k ViewKind) String() string {
	switch k {
	case ViewXDG:
		return "xdg"
	case ViewLayer:
		return "layer"
	case ViewInternal:
		return "internal"
	case ViewXWayland:
		return "xwayland"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ViewState is owned by the host, the compositor only stores it
type ViewState int

const (
	StateNotFloating = ViewState(iota)
	StateFloating
	StateMaximized
	StateFullscreen
	StateTop
	StateMinimized
)

// View is anything the host can place on screen
type View interface {
	Kind() ViewKind
	// WID is the host assigned window id, -1 for internal views
	WID() int
	SetWID(wid int)
	Box() geom.Box
	State() ViewState
	SetState(state ViewState)
	Layer() scene.Layer
	// SetLayer moves the view into another scene layer
	SetLayer(layer scene.Layer) error
	Borders() border.Spec
	// Node is the root scene node of the view
	Node() toolkit.Node
	Title() string
	AppID() string
	PID() int
	// Place moves the view to x, y and resizes its content to width x height.
	// Borders are painted around the content. raise moves the view into the bring-to-front layer first.
	Place(x, y, width, height int, borders border.Spec, raise bool)
	Focus(warp bool)
	Kill()
	Hide()
	Unhide()
	Hidden() bool
	BringToFront()

	base() *viewBase
	surface() toolkit.Surface
	activate(activated bool)
}

// viewRoot marks the data of a view's root node
type viewRoot struct {
	view View
}

// viewBase holds what every view kind shares
type viewBase struct {
	server  *Server
	wid     int
	box     geom.Box
	state   ViewState
	layer   scene.Layer
	borders border.Spec
	tree    toolkit.Tree
	content toolkit.Tree
	border  *border.Border
	hidden  bool
}

func newViewBase(server *Server, layer scene.Layer) (*viewBase, error) {
	parent := server.layers.Tree(layer)
	if parent == nil {
		return nil, fmt.Errorf("%w: %d", scene.ErrInvalidLayer, int(layer))
	}
	tree, err := parent.NewTree()
	if err != nil {
		return nil, err
	}
	return &viewBase{server: server, layer: layer, tree: tree}, nil
}

// bind tags the root node so lookups from the scene find the view
func (b *viewBase) bind(v View) {
	b.tree.Node().SetData(&viewRoot{view: v})
}

func (b *viewBase) base() *viewBase          { return b }
func (b *viewBase) WID() int                 { return b.wid }
func (b *viewBase) SetWID(wid int)           { b.wid = wid }
func (b *viewBase) Box() geom.Box            { return b.box }
func (b *viewBase) State() ViewState         { return b.state }
func (b *viewBase) SetState(state ViewState) { b.state = state }
func (b *viewBase) Layer() scene.Layer       { return b.layer }
func (b *viewBase) Borders() border.Spec     { return b.borders }
func (b *viewBase) Node() toolkit.Node       { return b.tree.Node() }
func (b *viewBase) Hidden() bool             { return b.hidden }

func (b *viewBase) SetLayer(layer scene.Layer) error {
	if err := b.server.layers.Reparent(b.tree.Node(), layer); err != nil {
		return err
	}
	b.layer = layer
	return nil
}

// BringToFront raises the view within its current layer
func (b *viewBase) BringToFront() {
	b.tree.Node().RaiseToTop()
}

func (b *viewBase) place(x, y, width, height int, borders border.Spec, raise bool) {
	if raise {
		if err := b.SetLayer(scene.LayerBringToFront); err != nil {
			logrus.WithError(err).Errorln("Failed to move view to front")
		}
		b.BringToFront()
	}
	b.box = geom.Box{X: x, Y: y, Width: width, Height: height}
	b.tree.Node().SetPosition(x, y)
	b.paintBorders(borders)
}

func (b *viewBase) paintBorders(borders border.Spec) {
	b.border.Cleanup()
	b.border = nil
	b.borders = borders
	var content toolkit.Node
	if b.content != nil {
		content = b.content.Node()
	}
	painted, err := border.Paint(b.tree, content, b.box.Width, b.box.Height, borders)
	if err != nil {
		logrus.WithError(err).WithField("wid", b.wid).Errorln("Failed to paint borders")
		return
	}
	b.border = painted
}

func (b *viewBase) cleanupBorders() {
	b.border.Cleanup()
	b.border = nil
}

func (b *viewBase) hide() {
	b.hidden = true
	b.tree.Node().SetEnabled(false)
}

func (b *viewBase) Unhide() {
	b.hidden = false
	b.tree.Node().SetEnabled(true)
}

// contentOrigin is the layout position of the content's top left corner
func (b *viewBase) contentOrigin() (float64, float64) {
	x, y := b.tree.Node().Position()
	w := b.border.Width()
	return float64(x + w), float64(y + w)
}

func (b *viewBase) destroy() {
	b.cleanupBorders()
	b.tree.Node().Destroy()
}
