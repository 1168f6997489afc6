// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package compositor is the window management core of tilewl. It owns the scene
// layers, outputs, views and the input pipeline and hands policy decisions to
// the host through Callbacks.
package compositor

import (
	"errors"
	"fmt"
	"os"

	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

var (
	ErrNoOutput        = errors.New("no output available")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrLockRejected    = errors.New("session lock rejected")
)

// Options are the startup settings of a Server
type Options struct {
	Keymap      toolkit.XKBRules
	RepeatRate  int32
	RepeatDelay int32
	CursorTheme string
	CursorSize  uint32
	Outputs     []OutputOptions
}

// OutputOptions overrides the defaults of one output, matched by name
type OutputOptions struct {
	Name string
	// Width and Height select a mode. Zero picks the preferred mode.
	Width   int
	Height  int
	Refresh int
	Scale   float32
	// X and Y are only used if Position is set, otherwise the output is placed automatically
	X        int
	Y        int
	Position bool
	Disabled bool
}

func DefaultOptions() Options {
	return Options{
		RepeatRate:  25,
		RepeatDelay: 600,
		CursorSize:  24,
	}
}

type Server struct {
	backend       toolkit.Backend
	scene         toolkit.Scene
	layout        toolkit.OutputLayout
	seat          toolkit.Seat
	cursor        toolkit.Cursor
	outputManager toolkit.OutputManager
	layers        *scene.Stack

	callbacks Callbacks
	options   Options
	socket    string

	outputs []*Output
	views   []View

	surfaceViews  map[toolkit.Surface]View
	xdgViews      map[toolkit.XDGToplevel]*XDGView
	layerViews    map[toolkit.LayerSurface]*LayerView
	xwaylandViews map[toolkit.XWaylandSurface]*XWaylandView
	unmanaged     map[toolkit.XWaylandSurface]*unmanagedSurface

	devices     []*inputDevice
	touches     map[int32]*touchPoint
	pointer     pointerState
	constraints map[toolkit.PointerConstraint]*pointerConstraint
	dragIcon    toolkit.Tree

	lockState LockState
	lock      *sessionLock
}

var _ toolkit.EventHandler = (*Server)(nil)

// NewServer builds the compositor on top of backend and registers itself as its event handler.
// The backend is destroyed if setup fails.
func NewServer(backend toolkit.Backend, callbacks Callbacks, options Options) (*Server, error) {
	server := &Server{
		backend:       backend,
		scene:         backend.Scene(),
		layout:        backend.Layout(),
		seat:          backend.Seat(),
		cursor:        backend.Cursor(),
		outputManager: backend.OutputManager(),
		callbacks:     callbacks,
		options:       options,
		surfaceViews:  map[toolkit.Surface]View{},
		xdgViews:      map[toolkit.XDGToplevel]*XDGView{},
		layerViews:    map[toolkit.LayerSurface]*LayerView{},
		xwaylandViews: map[toolkit.XWaylandSurface]*XWaylandView{},
		unmanaged:     map[toolkit.XWaylandSurface]*unmanagedSurface{},
		touches:       map[int32]*touchPoint{},
		constraints:   map[toolkit.PointerConstraint]*pointerConstraint{},
	}
	if server.options.RepeatRate == 0 && server.options.RepeatDelay == 0 {
		server.options.RepeatRate, server.options.RepeatDelay = 25, 600
	}

	layers, err := scene.NewStack(server.scene.Tree())
	if err != nil {
		backend.Destroy()
		return nil, fmt.Errorf("creating scene layers: %w", err)
	}
	server.layers = layers

	if err := server.SetCursorTheme(options.CursorTheme, options.CursorSize); err != nil {
		logrus.WithError(err).Warnln("Failed to load cursor theme, keeping the default")
	}

	server.updateCapabilities()
	backend.SetHandler(server)
	return server, nil
}

// Start opens the display socket, starts the backend and exports WAYLAND_DISPLAY.
// It returns the socket name.
func (server *Server) Start() (string, error) {
	socket, err := server.backend.AddSocket()
	if err != nil {
		server.backend.Destroy()
		return "", fmt.Errorf("adding display socket: %w", err)
	}
	if err := server.backend.Start(); err != nil {
		server.backend.Destroy()
		return "", fmt.Errorf("starting backend: %w", err)
	}
	server.socket = socket
	if err := os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		logrus.WithError(err).Warnln("Failed to export WAYLAND_DISPLAY")
	}
	logrus.WithField("socket", socket).Infoln("Running Wayland compositor")
	return socket, nil
}

func (server *Server) Socket() string { return server.socket }

// FD is the file descriptor to wait on before calling Poll
func (server *Server) FD() int { return server.backend.FD() }

// Poll dispatches all pending events without blocking
func (server *Server) Poll() error {
	return server.backend.Poll()
}

// Shutdown destroys clients and every toolkit object. The server is unusable afterwards.
func (server *Server) Shutdown() {
	for _, v := range append([]View(nil), server.views...) {
		if iv, ok := v.(*InternalView); ok {
			iv.Kill()
		}
	}
	server.backend.Destroy()
	logrus.Infoln("Compositor shut down")
}

// Layers gives access to the scene layer trees
func (server *Server) Layers() *scene.Stack { return server.layers }

// Views returns the views currently known to the host, in creation order
func (server *Server) Views() []View {
	return append([]View(nil), server.views...)
}

// FocusedView returns the view holding keyboard focus, nil if none does
func (server *Server) FocusedView() View {
	focus := server.seat.KeyboardFocus()
	if focus == nil {
		return nil
	}
	return server.surfaceViews[focus]
}

// ViewAt finds the view and surface under a layout position.
// sx and sy are surface local. The view is nil for surfaces not belonging to a view.
func (server *Server) ViewAt(lx, ly float64) (View, toolkit.Surface, float64, float64) {
	node, sx, sy := server.scene.NodeAt(lx, ly)
	if node == nil || node.Kind() != toolkit.NodeKindBuffer {
		return nil, nil, 0, 0
	}
	surface := node.Surface()
	if surface == nil {
		return nil, nil, 0, 0
	}
	for tree := node.Parent(); tree != nil; tree = tree.Node().Parent() {
		if root, ok := tree.Node().Data().(*viewRoot); ok {
			return root.view, surface, sx, sy
		}
	}
	return nil, surface, sx, sy
}

func (server *Server) addView(v View) {
	for _, known := range server.views {
		if known == v {
			return
		}
	}
	server.views = append(server.views, v)
}

func (server *Server) removeView(v View) {
	server.views = sliceutils.Filter(server.views, func(known View) bool { return known != v })
}

// manage announces a view to the host
func (server *Server) manage(v View) {
	server.addView(v)
	server.callbacks.manageView(v)
}

func (server *Server) unmanage(v View) {
	server.removeView(v)
	server.callbacks.unmanageView(v)
}

func (server *Server) modifiers() toolkit.Modifiers {
	if kb := server.seat.Keyboard(); kb != nil {
		return kb.Modifiers()
	}
	return 0
}

// focusView gives keyboard focus to a view. Focus is never moved away from a lock surface.
func (server *Server) focusView(v View, warp bool) {
	if server.lockState != LockUnlocked {
		logrus.WithField("wid", v.WID()).Debugln("Ignoring focus request while locked")
		return
	}
	surface := v.surface()
	if surface == nil {
		return
	}
	if prev := server.seat.KeyboardFocus(); prev != nil && prev != surface {
		if pv, ok := server.surfaceViews[prev]; ok {
			pv.activate(false)
		}
	}
	v.Node().RaiseToTop()
	v.activate(true)
	server.keyboardEnter(surface)
	if warp {
		box := v.Box()
		x, y := box.Center()
		server.WarpCursor(x, y)
	}
}

func (server *Server) keyboardEnter(surface toolkit.Surface) {
	if kb := server.seat.Keyboard(); kb != nil {
		server.seat.NotifyKeyboardEnter(surface, kb.Pressed(), kb.Modifiers())
	} else {
		server.seat.NotifyKeyboardEnter(surface, nil, 0)
	}
	server.constraintFocusChanged(surface)
}

// dropFocus clears keyboard focus if surface holds it and asks the host to pick a new one
func (server *Server) dropFocus(surface toolkit.Surface) {
	if surface == nil || server.seat.KeyboardFocus() != surface {
		return
	}
	server.seat.ClearKeyboardFocus()
	server.constraintFocusChanged(nil)
	if server.lockState == LockUnlocked {
		server.callbacks.focusCurrentWindow()
	}
}
