// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlr

import (
	"fmt"
	"image"
	"time"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/swaywm/go-wlroots/wlroots"
)

// Where disabled surface trees are parked. The binding has no enable toggle,
// so hidden surfaces are moved outside of every output instead.
const parkedAt = -(1 << 20)

// sceneGraph models the scene in Go. Only surface trees have a wlroots node,
// they all live directly below the real scene root. sync copies the model's
// positions, visibility and stacking onto them.
type sceneGraph struct {
	backend *Backend
	root    *tree
	// Surfaces, popups included, to the model tree their content belongs to
	owners map[wlroots.Surface]*tree
	dirty  bool
}

func newSceneGraph(b *Backend) *sceneGraph {
	g := &sceneGraph{backend: b, owners: map[wlroots.Surface]*tree{}}
	g.root = g.newTree(nil)
	return g
}

func (g *sceneGraph) Tree() toolkit.Tree { return g.root }

// NodeAt asks wlroots for the surface at the position and maps it back to the model
func (g *sceneGraph) NodeAt(lx, ly float64) (toolkit.Node, float64, float64) {
	g.sync()
	node, sx, sy := g.backend.scene.Tree().Node().At(lx, ly)
	if node.Nil() || node.Type() != wlroots.SceneNodeBuffer {
		return nil, 0, 0
	}
	sceneSurface := node.SceneBuffer().SceneSurface()
	if sceneSurface.Nil() {
		return nil, 0, 0
	}
	s := sceneSurface.Surface()
	owner, ok := g.owners[s]
	if !ok {
		return nil, 0, 0
	}
	return &hitNode{parent: owner, surface: g.backend.surfaceFor(s)}, sx, sy
}

func (g *sceneGraph) NewOutput(o toolkit.Output) (toolkit.SceneOutput, error) {
	out, ok := o.(*output)
	if !ok {
		return nil, fmt.Errorf("%w: foreign output %s", ErrUnsupported, o.Name())
	}
	out.sceneOutput = g.backend.scene.NewOutput(out.output)
	return &sceneOutput{graph: g, output: out}, nil
}

func (g *sceneGraph) sync() {
	if !g.dirty {
		return
	}
	g.dirty = false
	g.syncTree(g.root, 0, 0, true)
}

// syncTree walks the model bottom to top. Raising every real node on the way
// leaves them stacked in model order.
func (g *sceneGraph) syncTree(t *tree, ox, oy int, visible bool) {
	x, y := ox+t.node.x, oy+t.node.y
	visible = visible && t.node.enabled
	if t.real != nil {
		n := t.real.Node()
		if visible {
			n.SetPosition(float64(x), float64(y))
		} else {
			n.SetPosition(parkedAt, parkedAt)
		}
		n.RaiseToTop()
	}
	for _, c := range t.children {
		if c.tree != nil {
			g.syncTree(c.tree, x, y, visible)
		}
	}
}

type sceneOutput struct {
	graph  *sceneGraph
	output *output
}

func (o *sceneOutput) Commit() error {
	o.graph.sync()
	so, err := o.graph.backend.scene.SceneOutput(o.output.output)
	if err != nil {
		return err
	}
	so.Commit()
	return nil
}

func (o *sceneOutput) SendFrameDone() {
	so, err := o.graph.backend.scene.SceneOutput(o.output.output)
	if err != nil {
		return
	}
	so.SendFrameDone(time.Now())
}

type node struct {
	graph     *sceneGraph
	kind      toolkit.NodeKind
	x, y      int
	enabled   bool
	parent    *tree
	data      any
	destroyed bool
	tree      *tree
}

func (n *node) Kind() toolkit.NodeKind { return n.kind }
func (n *node) Position() (int, int)   { return n.x, n.y }
func (n *node) Enabled() bool          { return n.enabled }
func (n *node) Data() any              { return n.data }
func (n *node) SetData(data any)       { n.data = data }

// Surface is always nil, surfaces are only found through NodeAt
func (n *node) Surface() toolkit.Surface { return nil }

func (n *node) SetPosition(x, y int) {
	n.x, n.y = x, y
	n.graph.dirty = true
}

func (n *node) SetEnabled(enabled bool) {
	n.enabled = enabled
	n.graph.dirty = true
}

func (n *node) Parent() toolkit.Tree {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Reparent(parent toolkit.Tree) {
	p, ok := parent.(*tree)
	if !ok || n.parent == nil {
		return
	}
	n.parent.remove(n)
	n.parent = p
	p.children = append(p.children, n)
	n.graph.dirty = true
}

func (n *node) RaiseToTop() {
	if n.parent == nil {
		return
	}
	n.parent.remove(n)
	n.parent.children = append(n.parent.children, n)
	n.graph.dirty = true
}

func (n *node) LowerToBottom() {
	if n.parent == nil {
		return
	}
	n.parent.remove(n)
	n.parent.children = append([]*node{n}, n.parent.children...)
	n.graph.dirty = true
}

// Destroy drops the node and everything below it from the model.
// Real surface trees are parked, wlroots frees them together with their surface.
func (n *node) Destroy() {
	if n.destroyed {
		return
	}
	if n.parent != nil {
		n.parent.remove(n)
	}
	n.release()
	n.graph.dirty = true
}

func (n *node) release() {
	n.destroyed = true
	if n.tree == nil {
		return
	}
	if n.tree.real != nil {
		n.tree.real.Node().SetPosition(parkedAt, parkedAt)
	}
	for _, c := range n.tree.children {
		c.release()
	}
	n.tree.children = nil
}

type tree struct {
	node     *node
	children []*node
	real     *wlroots.SceneTree
}

func (g *sceneGraph) newTree(parent *tree) *tree {
	t := &tree{}
	t.node = &node{graph: g, kind: toolkit.NodeKindTree, enabled: true, tree: t, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, t.node)
	}
	g.dirty = true
	return t
}

func (t *tree) Node() toolkit.Node { return t.node }

func (t *tree) NewTree() (toolkit.Tree, error) {
	return t.node.graph.newTree(t), nil
}

// NewRect only exists in the model, the binding has no rect nodes
func (t *tree) NewRect(width, height int, color toolkit.Color) (toolkit.Rect, error) {
	r := &rect{width: width, height: height, color: color}
	r.node = &node{graph: t.node.graph, kind: toolkit.NodeKindRect, enabled: true, parent: t}
	t.children = append(t.children, r.node)
	return r, nil
}

// NewBuffer only exists in the model, the binding has no buffer nodes
func (t *tree) NewBuffer(img *image.RGBA) (toolkit.Buffer, error) {
	b := &buffer{image: img}
	b.node = &node{graph: t.node.graph, kind: toolkit.NodeKindBuffer, enabled: true, parent: t}
	t.children = append(t.children, b.node)
	return b, nil
}

// NewSurfaceTree needs wlr_scene_subsurface_tree_create, which the binding lacks
func (t *tree) NewSurfaceTree(s toolkit.Surface) (toolkit.Tree, error) {
	return nil, fmt.Errorf("%w: surface trees", ErrUnsupported)
}

// attachXDGSurface mounts an xdg surface in the real scene and represents it below t
func (t *tree) attachXDGSurface(xdgSurface wlroots.XDGSurface) *tree {
	g := t.node.graph
	sceneTree := g.backend.scene.Tree().NewXDGSurface(xdgSurface)
	xdgSurface.SetData(sceneTree)
	child := g.newTree(t)
	child.real = &sceneTree
	g.owners[xdgSurface.Surface()] = child
	return child
}

func (t *tree) remove(n *node) {
	for i, c := range t.children {
		if c == n {
			t.children = append(t.children[:i], t.children[i+1:]...)
			return
		}
	}
}

type rect struct {
	node   *node
	width  int
	height int
	color  toolkit.Color
}

func (r *rect) Node() toolkit.Node        { return r.node }
func (r *rect) Size() (int, int)          { return r.width, r.height }
func (r *rect) SetSize(width, height int) { r.width, r.height = width, height }
func (r *rect) Color() toolkit.Color      { return r.color }
func (r *rect) SetColor(c toolkit.Color)  { r.color = c }

type buffer struct {
	node  *node
	image *image.RGBA
}

func (b *buffer) Node() toolkit.Node { return b.node }

func (b *buffer) SetImage(img *image.RGBA, _ []geom.Box) { b.image = img }

// hitNode is the result of a hit test, a surface inside a model surface tree
type hitNode struct {
	parent  *tree
	surface *surface
}

func (h *hitNode) Kind() toolkit.NodeKind   { return toolkit.NodeKindBuffer }
func (h *hitNode) Position() (int, int)     { return 0, 0 }
func (h *hitNode) SetPosition(int, int)     {}
func (h *hitNode) Enabled() bool            { return true }
func (h *hitNode) SetEnabled(bool)          {}
func (h *hitNode) Parent() toolkit.Tree     { return h.parent }
func (h *hitNode) Reparent(toolkit.Tree)    {}
func (h *hitNode) RaiseToTop()              {}
func (h *hitNode) LowerToBottom()           {}
func (h *hitNode) Data() any                { return nil }
func (h *hitNode) SetData(any)              {}
func (h *hitNode) Surface() toolkit.Surface { return h.surface }
func (h *hitNode) Destroy()                 {}
