// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package toolkit describes the compositor toolkit objects the core works with.
// The wlr package binds them to wlroots, toolkittest provides in-memory fakes.
package toolkit

import (
	"errors"
	"image"

	"github.com/mstarongithub/tilewl/geom"
)

// ErrAllocation is returned when the toolkit fails to create an object
var ErrAllocation = errors.New("toolkit allocation failed")

// Color is a normalized RGBA color
type Color [4]float32

type NodeKind int

const (
	NodeKindTree = NodeKind(iota)
	NodeKindRect
	NodeKindBuffer
)

// Node is a scene graph node. Every node but the scene root has a parent tree.
type Node interface {
	Kind() NodeKind
	Position() (x, y int)
	SetPosition(x, y int)
	Enabled() bool
	SetEnabled(enabled bool)
	// Parent is nil for the scene root
	Parent() Tree
	Reparent(parent Tree)
	RaiseToTop()
	LowerToBottom()
	Data() any
	SetData(data any)
	// Surface returns the client surface behind a buffer node, nil for anything else
	Surface() Surface
	Destroy()
}

// Tree is a scene node holding other nodes
type Tree interface {
	Node() Node
	NewTree() (Tree, error)
	NewRect(width, height int, color Color) (Rect, error)
	NewBuffer(img *image.RGBA) (Buffer, error)
	// NewSurfaceTree mounts a surface and its subsurfaces below this tree
	NewSurfaceTree(surface Surface) (Tree, error)
}

// Rect is a solid color scene node
type Rect interface {
	Node() Node
	Size() (width, height int)
	SetSize(width, height int)
	Color() Color
	SetColor(color Color)
}

// Buffer is a scene node displaying a compositor owned image
type Buffer interface {
	Node() Node
	// SetImage swaps the displayed image. An empty damage list damages everything.
	SetImage(img *image.RGBA, damage []geom.Box)
}

// Scene is the root of the scene graph
type Scene interface {
	Tree() Tree
	// NodeAt finds the topmost enabled node at the layout position.
	// sx and sy are relative to the found node.
	NodeAt(lx, ly float64) (node Node, sx, sy float64)
	NewOutput(output Output) (SceneOutput, error)
}

// SceneOutput renders the scene to one output. It goes away together with its output.
type SceneOutput interface {
	Commit() error
	SendFrameDone()
}
