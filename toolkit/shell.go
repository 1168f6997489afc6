// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkit

import "github.com/mstarongithub/tilewl/geom"

type Edges uint32

const (
	EdgeTop = Edges(1 << iota)
	EdgeBottom
	EdgeLeft
	EdgeRight

	EdgeNone = Edges(0)
	EdgeAll  = EdgeTop | EdgeBottom | EdgeLeft | EdgeRight
)

// Version of xdg_toplevel that introduced the tiled states
const XDGToplevelTiledSinceVersion = 2

type XDGToplevel interface {
	Surface() Surface
	Title() string
	AppID() string
	PID() int
	Version() uint32
	SetActivated(activated bool)
	SetSize(width, height int)
	SetTiled(edges Edges)
	SetMaximized(maximized bool)
	SetFullscreen(fullscreen bool)
	SendClose()
	// AttachScene creates the xdg surface scene tree below parent
	AttachScene(parent Tree) (Tree, error)
}

type XDGPopup interface {
	AttachScene(parent Tree) (Tree, error)
}

type XDGDecoration interface {
	Toplevel() XDGToplevel
	SetServerSide()
}

// ShellLayer is a zwlr_layer_shell_v1 layer
type ShellLayer int

const (
	ShellLayerBackground = ShellLayer(iota)
	ShellLayerBottom
	ShellLayerTop
	ShellLayerOverlay
)

type Anchor uint32

const (
	AnchorTop = Anchor(1 << iota)
	AnchorBottom
	AnchorLeft
	AnchorRight
)

type Margin struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

type LayerSurfaceState struct {
	Layer               ShellLayer
	Anchor              Anchor
	ExclusiveZone       int
	Margin              Margin
	DesiredWidth        int
	DesiredHeight       int
	KeyboardInteractive int
}

type LayerSurface interface {
	Surface() Surface
	Namespace() string
	// Output is nil if the client left the choice to the compositor
	Output() Output
	SetOutput(output Output)
	Pending() LayerSurfaceState
	Current() LayerSurfaceState
	Configure(width, height int)
	SendScale(fractional float64, preferred int)
	// Close destroys the layer surface
	Close()
	AttachScene(parent Tree) (Tree, error)
}

type XWaylandSurface interface {
	// Surface is nil until the X window is associated with a wayland surface
	Surface() Surface
	OverrideRedirect() bool
	Geometry() geom.Box
	Title() string
	Class() string
	PID() int
	Configure(x, y, width, height int)
	Activate(activated bool)
	Close()
	AttachScene(parent Tree) (Tree, error)
}
