// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package toolkittest provides in-memory fakes of the toolkit objects.
// The fake scene graph mimics wlr_scene: ordered children, enable flags,
// positions relative to the parent and topmost-first hit testing.
package toolkittest

import (
	"image"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
)

type Node struct {
	kind      toolkit.NodeKind
	x, y      int
	enabled   bool
	parent    *Tree
	data      any
	destroyed bool

	// Set on the object embedding this node
	tree    *Tree
	rect    *Rect
	buffer  *Buffer
	surface *Surface
}

func (n *Node) Kind() toolkit.NodeKind { return n.kind }
func (n *Node) Position() (int, int)   { return n.x, n.y }
func (n *Node) SetPosition(x, y int)   { n.x, n.y = x, y }
func (n *Node) Enabled() bool          { return n.enabled }
func (n *Node) SetEnabled(e bool)      { n.enabled = e }
func (n *Node) Data() any              { return n.data }
func (n *Node) SetData(data any)       { n.data = data }
func (n *Node) Destroyed() bool        { return n.destroyed }

func (n *Node) Parent() toolkit.Tree {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Surface() toolkit.Surface {
	if n.surface == nil {
		return nil
	}
	return n.surface
}

func (n *Node) Reparent(parent toolkit.Tree) {
	p := parent.(*Tree)
	if n.parent != nil {
		n.parent.remove(n)
	}
	n.parent = p
	p.children = append(p.children, n)
}

func (n *Node) RaiseToTop() {
	if n.parent == nil {
		return
	}
	n.parent.remove(n)
	n.parent.children = append(n.parent.children, n)
}

func (n *Node) LowerToBottom() {
	if n.parent == nil {
		return
	}
	n.parent.remove(n)
	n.parent.children = append([]*Node{n}, n.parent.children...)
}

func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	if n.parent != nil {
		n.parent.remove(n)
	}
	n.markDestroyed()
}

func (n *Node) markDestroyed() {
	n.destroyed = true
	if n.tree != nil {
		for _, c := range n.tree.children {
			c.markDestroyed()
		}
		n.tree.children = nil
	}
}

// LayoutPosition sums the positions of the node and all its ancestors
func (n *Node) LayoutPosition() (int, int) {
	x, y := n.x, n.y
	for p := n.parent; p != nil; p = p.node.parent {
		x += p.node.x
		y += p.node.y
	}
	return x, y
}

// Visible reports whether the node and all its ancestors are enabled
func (n *Node) Visible() bool {
	for c := n; c != nil; {
		if !c.enabled {
			return false
		}
		if c.parent == nil {
			break
		}
		c = c.parent.node
	}
	return true
}

func (n *Node) size() (int, int) {
	switch {
	case n.rect != nil:
		return n.rect.w, n.rect.h
	case n.buffer != nil:
		b := n.buffer.img.Bounds()
		return b.Dx(), b.Dy()
	case n.surface != nil:
		return n.surface.Width, n.surface.Height
	}
	return 0, 0
}

type Tree struct {
	node     *Node
	children []*Node
	budget   *budget
}

// budget is shared by every tree of one scene. Once limited, each
// allocation takes one unit and fails with toolkit.ErrAllocation when none are left.
type budget struct {
	limited bool
	left    int
}

func (b *budget) take() error {
	if !b.limited {
		return nil
	}
	if b.left <= 0 {
		return toolkit.ErrAllocation
	}
	b.left--
	return nil
}

func newTree(parent *Tree) *Tree {
	t := &Tree{}
	t.node = &Node{kind: toolkit.NodeKindTree, enabled: true, tree: t}
	if parent != nil {
		t.node.parent = parent
		t.budget = parent.budget
		parent.children = append(parent.children, t.node)
	} else {
		t.budget = &budget{}
	}
	return t
}

// FailAfter lets the next n allocations anywhere in the scene succeed
// and fails every later one. Trees, rects, buffers and surface trees count.
func (t *Tree) FailAfter(n int) {
	t.budget.limited = true
	t.budget.left = n
}

// AllowAll lifts a limit set by FailAfter
func (t *Tree) AllowAll() {
	t.budget.limited = false
}

func (t *Tree) Node() toolkit.Node { return t.node }

// FakeNode gives tests access to the helpers of the concrete node
func (t *Tree) FakeNode() *Node { return t.node }

// Children returns the direct children, bottom first
func (t *Tree) Children() []*Node { return append([]*Node(nil), t.children...) }

func (t *Tree) NewTree() (toolkit.Tree, error) {
	if err := t.budget.take(); err != nil {
		return nil, err
	}
	return newTree(t), nil
}

func (t *Tree) NewRect(w, h int, c toolkit.Color) (toolkit.Rect, error) {
	if err := t.budget.take(); err != nil {
		return nil, err
	}
	r := &Rect{w: w, h: h, color: c}
	r.node = &Node{kind: toolkit.NodeKindRect, enabled: true, parent: t, rect: r}
	t.children = append(t.children, r.node)
	return r, nil
}

func (t *Tree) NewBuffer(img *image.RGBA) (toolkit.Buffer, error) {
	if err := t.budget.take(); err != nil {
		return nil, err
	}
	b := &Buffer{img: img}
	b.node = &Node{kind: toolkit.NodeKindBuffer, enabled: true, parent: t, buffer: b}
	t.children = append(t.children, b.node)
	return b, nil
}

func (t *Tree) NewSurfaceTree(s toolkit.Surface) (toolkit.Tree, error) {
	if err := t.budget.take(); err != nil {
		return nil, err
	}
	tree := newTree(t)
	surf := s.(*Surface)
	n := &Node{kind: toolkit.NodeKindBuffer, enabled: true, parent: tree, surface: surf}
	tree.children = append(tree.children, n)
	return tree, nil
}

func (t *Tree) remove(n *Node) {
	for i, c := range t.children {
		if c == n {
			t.children = append(t.children[:i], t.children[i+1:]...)
			return
		}
	}
}

// Rects returns all rect nodes below the tree, in any depth
func (t *Tree) Rects() []*Rect {
	var out []*Rect
	for _, c := range t.children {
		if c.rect != nil {
			out = append(out, c.rect)
		}
		if c.tree != nil {
			out = append(out, c.tree.Rects()...)
		}
	}
	return out
}

type Rect struct {
	node  *Node
	w, h  int
	color toolkit.Color
}

func (r *Rect) Node() toolkit.Node       { return r.node }
func (r *Rect) FakeNode() *Node          { return r.node }
func (r *Rect) Size() (int, int)         { return r.w, r.h }
func (r *Rect) SetSize(w, h int)         { r.w, r.h = w, h }
func (r *Rect) Color() toolkit.Color     { return r.color }
func (r *Rect) SetColor(c toolkit.Color) { r.color = c }
func (r *Rect) Box() geom.Box            { return geom.Box{X: r.node.x, Y: r.node.y, Width: r.w, Height: r.h} }

type Buffer struct {
	node    *Node
	img     *image.RGBA
	Damages [][]geom.Box
}

func (b *Buffer) Node() toolkit.Node { return b.node }
func (b *Buffer) Image() *image.RGBA { return b.img }

func (b *Buffer) SetImage(img *image.RGBA, damage []geom.Box) {
	b.img = img
	b.Damages = append(b.Damages, damage)
}

type SceneOutput struct {
	Commits int
	Frames  int
}

func (o *SceneOutput) Commit() error  { o.Commits++; return nil }
func (o *SceneOutput) SendFrameDone() { o.Frames++ }

type Scene struct {
	root *Tree
}

func NewScene() *Scene {
	return &Scene{root: newTree(nil)}
}

func (s *Scene) Tree() toolkit.Tree { return s.root }
func (s *Scene) Root() *Tree        { return s.root }

func (s *Scene) NewOutput(toolkit.Output) (toolkit.SceneOutput, error) {
	return &SceneOutput{}, nil
}

func (s *Scene) NodeAt(lx, ly float64) (toolkit.Node, float64, float64) {
	n, sx, sy := nodeAt(s.root, lx, ly)
	if n == nil {
		return nil, 0, 0
	}
	return n, sx, sy
}

func nodeAt(t *Tree, lx, ly float64) (*Node, float64, float64) {
	if !t.node.enabled {
		return nil, 0, 0
	}
	lx -= float64(t.node.x)
	ly -= float64(t.node.y)
	for i := len(t.children) - 1; i >= 0; i-- {
		c := t.children[i]
		if !c.enabled {
			continue
		}
		if c.tree != nil {
			if n, sx, sy := nodeAt(c.tree, lx, ly); n != nil {
				return n, sx, sy
			}
			continue
		}
		w, h := c.size()
		box := geom.Box{X: c.x, Y: c.y, Width: w, Height: h}
		if box.Contains(lx, ly) {
			return c, lx - float64(c.x), ly - float64(c.y)
		}
	}
	return nil, 0, 0
}
