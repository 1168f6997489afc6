// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkittest

import (
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
)

type Size struct {
	W, H int
}

type XDGToplevel struct {
	Surf          *Surface
	ToplevelTitle string
	ToplevelAppID string
	Pid           int
	ProtoVersion  uint32
	Activated     bool
	Sizes         []Size
	Tiled         toolkit.Edges
	Maximized     bool
	Fullscreen    bool
	Closed        bool
	Tree          *Tree
}

func NewXDGToplevel(w, h int) *XDGToplevel {
	return &XDGToplevel{Surf: NewSurface(w, h), ProtoVersion: 6}
}

func (t *XDGToplevel) Surface() toolkit.Surface { return t.Surf }
func (t *XDGToplevel) Title() string            { return t.ToplevelTitle }
func (t *XDGToplevel) AppID() string            { return t.ToplevelAppID }
func (t *XDGToplevel) PID() int                 { return t.Pid }
func (t *XDGToplevel) Version() uint32          { return t.ProtoVersion }
func (t *XDGToplevel) SetActivated(a bool)      { t.Activated = a }
func (t *XDGToplevel) SetSize(w, h int)         { t.Sizes = append(t.Sizes, Size{W: w, H: h}) }
func (t *XDGToplevel) SetTiled(e toolkit.Edges) { t.Tiled = e }
func (t *XDGToplevel) SetMaximized(m bool)      { t.Maximized = m }
func (t *XDGToplevel) SetFullscreen(f bool)     { t.Fullscreen = f }
func (t *XDGToplevel) SendClose()               { t.Closed = true }

func (t *XDGToplevel) AttachScene(parent toolkit.Tree) (toolkit.Tree, error) {
	tree, err := parent.NewSurfaceTree(t.Surf)
	if err != nil {
		return nil, err
	}
	t.Tree = tree.(*Tree)
	return tree, nil
}

// LastSize returns the last size sent to the client
func (t *XDGToplevel) LastSize() (Size, bool) {
	if len(t.Sizes) == 0 {
		return Size{}, false
	}
	return t.Sizes[len(t.Sizes)-1], true
}

type XDGPopup struct {
	Surf *Surface
	Tree *Tree
}

func (p *XDGPopup) AttachScene(parent toolkit.Tree) (toolkit.Tree, error) {
	tree, err := parent.NewSurfaceTree(p.Surf)
	if err != nil {
		return nil, err
	}
	p.Tree = tree.(*Tree)
	return tree, nil
}

type XDGDecoration struct {
	Top        *XDGToplevel
	ServerSide int
}

func (d *XDGDecoration) Toplevel() toolkit.XDGToplevel { return d.Top }
func (d *XDGDecoration) SetServerSide()                { d.ServerSide++ }

type LayerSurface struct {
	Surf         *Surface
	NS           string
	Out          toolkit.Output
	PendingState toolkit.LayerSurfaceState
	CurrentState toolkit.LayerSurfaceState
	Configures   []Size
	Fractional   float64
	Preferred    int
	Closed       bool
	Tree         *Tree
}

func (l *LayerSurface) Surface() toolkit.Surface { return l.Surf }
func (l *LayerSurface) Namespace() string        { return l.NS }

func (l *LayerSurface) Output() toolkit.Output {
	if l.Out == nil {
		return nil
	}
	return l.Out
}

func (l *LayerSurface) SetOutput(o toolkit.Output)         { l.Out = o }
func (l *LayerSurface) Pending() toolkit.LayerSurfaceState { return l.PendingState }
func (l *LayerSurface) Current() toolkit.LayerSurfaceState { return l.CurrentState }
func (l *LayerSurface) Configure(w, h int)                 { l.Configures = append(l.Configures, Size{W: w, H: h}) }
func (l *LayerSurface) SendScale(f float64, p int)         { l.Fractional, l.Preferred = f, p }
func (l *LayerSurface) Close()                             { l.Closed = true }

// Commit adopts the pending state like a client commit would
func (l *LayerSurface) Commit() { l.CurrentState = l.PendingState }

func (l *LayerSurface) AttachScene(parent toolkit.Tree) (toolkit.Tree, error) {
	tree, err := parent.NewSurfaceTree(l.Surf)
	if err != nil {
		return nil, err
	}
	l.Tree = tree.(*Tree)
	return tree, nil
}

type XWaylandSurface struct {
	Surf       *Surface
	Override   bool
	Geo        geom.Box
	WinTitle   string
	WinClass   string
	Pid        int
	Configures []geom.Box
	Activated  bool
	Closed     bool
	Tree       *Tree
}

func (x *XWaylandSurface) Surface() toolkit.Surface {
	if x.Surf == nil {
		return nil
	}
	return x.Surf
}

func (x *XWaylandSurface) OverrideRedirect() bool { return x.Override }
func (x *XWaylandSurface) Geometry() geom.Box     { return x.Geo }
func (x *XWaylandSurface) Title() string          { return x.WinTitle }
func (x *XWaylandSurface) Class() string          { return x.WinClass }
func (x *XWaylandSurface) PID() int               { return x.Pid }
func (x *XWaylandSurface) Activate(a bool)        { x.Activated = a }
func (x *XWaylandSurface) Close()                 { x.Closed = true }

func (x *XWaylandSurface) Configure(px, py, w, h int) {
	x.Geo = geom.Box{X: px, Y: py, Width: w, Height: h}
	x.Configures = append(x.Configures, x.Geo)
}

func (x *XWaylandSurface) AttachScene(parent toolkit.Tree) (toolkit.Tree, error) {
	tree, err := parent.NewSurfaceTree(x.Surf)
	if err != nil {
		return nil, err
	}
	x.Tree = tree.(*Tree)
	return tree, nil
}

type SessionLock struct {
	Locked    bool
	Destroyed bool
}

func (l *SessionLock) SendLocked() { l.Locked = true }
func (l *SessionLock) Destroy()    { l.Destroyed = true }

type LockSurface struct {
	Surf       *Surface
	Out        toolkit.Output
	Configures []Size
}

func (l *LockSurface) Surface() toolkit.Surface { return l.Surf }
func (l *LockSurface) Output() toolkit.Output   { return l.Out }
func (l *LockSurface) Configure(w, h int)       { l.Configures = append(l.Configures, Size{W: w, H: h}) }

type PointerConstraint struct {
	Surf          *Surface
	Kind          toolkit.ConstraintType
	Req           geom.Region
	Hint          *Motion
	Activations   int
	Deactivations int
}

func (c *PointerConstraint) Surface() toolkit.Surface     { return c.Surf }
func (c *PointerConstraint) Type() toolkit.ConstraintType { return c.Kind }
func (c *PointerConstraint) Region() geom.Region          { return c.Req }
func (c *PointerConstraint) SendActivated()               { c.Activations++ }
func (c *PointerConstraint) SendDeactivated()             { c.Deactivations++ }

func (c *PointerConstraint) CursorHint() (float64, float64, bool) {
	if c.Hint == nil {
		return 0, 0, false
	}
	return c.Hint.SX, c.Hint.SY, true
}
