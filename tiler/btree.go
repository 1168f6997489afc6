// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tiler is a binary space partitioning tree of window ids
package tiler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mstarongithub/tilewl/geom"
)

type NodeType int
type Direction int

const (
	NodeTypeLeaf = NodeType(iota)
	NodeTypeBranch
)

const (
	// Children are stacked, ChildLeft on top
	DirectionVertical = Direction(iota)
	// Children are side by side, ChildLeft on the left
	DirectionHorizontal
)

const (
	defaultAspect = 50
	minAspect     = 10
	maxAspect     = 90
)

var ErrUnknownApp = errors.New("app not in tree")

type (
	// A tiling tree. One tree per screen/workspace
	// Boxes are calculated down the tree from Area
	Tree struct {
		Area                 geom.Box      // Final space the tree is occupying
		leaves               map[int]*Leaf // Stores all leaves for quick lookup
		Root                 *Node
		LastFocusedContainer *Leaf
		lock                 sync.Mutex
	}

	// Wrapper for leafs or branches
	Node struct {
		Type   NodeType
		Branch *Branch // Must be set if type is NodeTypeBranch, ignored otherwise
		Leaf   *Leaf   // Must be set if type is NodeTypeLeaf, ignored otherwise
		parent *Node
	}

	Branch struct {
		Direction  Direction
		ChildLeft  *Node
		ChildRight *Node
		AspectLeft int // Percentage the left child has of the container space
	}

	Leaf struct {
		AppID   int  // Window id of the app in this leaf
		IsEmpty bool // Only the root of an empty tree is an empty leaf
		node    *Node
	}
)

func newLeafNode(leaf *Leaf) *Node {
	n := &Node{Type: NodeTypeLeaf, Leaf: leaf}
	leaf.node = n
	return n
}

func NewTree(area geom.Box) *Tree {
	root := newLeafNode(&Leaf{IsEmpty: true})
	return &Tree{
		Area:                 area,
		leaves:               map[int]*Leaf{},
		Root:                 root,
		LastFocusedContainer: root.Leaf,
	}
}

// Len is the number of apps in the tree
func (t *Tree) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.leaves)
}

func (t *Tree) Contains(appID int) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	_, ok := t.leaves[appID]
	return ok
}

func (t *Tree) SetArea(area geom.Box) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.Area = area
}

// Focused returns the app of the last focused container
func (t *Tree) Focused() (int, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.LastFocusedContainer == nil || t.LastFocusedContainer.IsEmpty {
		return 0, false
	}
	return t.LastFocusedContainer.AppID, true
}

func (t *Tree) Focus(appID int) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	leaf, ok := t.leaves[appID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownApp, appID)
	}
	t.LastFocusedContainer = leaf
	return nil
}

// Add a new app to the tree
// Splits the last focused container unless the tree is empty
func (t *Tree) AddApp(appID int) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if _, ok := t.leaves[appID]; ok {
		return fmt.Errorf("app %d already in tree", appID)
	}
	target := t.LastFocusedContainer
	if target.IsEmpty {
		target.IsEmpty = false
		target.AppID = appID
		t.leaves[appID] = target
		return nil
	}

	newLeaf := &Leaf{AppID: appID}
	t.split(target, newLeaf)
	t.leaves[appID] = newLeaf
	t.LastFocusedContainer = newLeaf
	return nil
}

// split replaces the node of target with a branch holding target on the left
// and the new leaf on the right
func (t *Tree) split(target, newLeaf *Leaf) {
	node := target.node
	box := t.boxOf(node)
	direction := DirectionHorizontal
	if box.Height > box.Width {
		direction = DirectionVertical
	}

	// The branch takes the place of the old node, the old leaf moves into a fresh node
	left := newLeafNode(target)
	right := newLeafNode(newLeaf)
	node.Type = NodeTypeBranch
	node.Leaf = nil
	node.Branch = &Branch{
		Direction:  direction,
		ChildLeft:  left,
		ChildRight: right,
		AspectLeft: defaultAspect,
	}
	left.parent = node
	right.parent = node
}

// Remove an app from the tree
// Its parent branch is replaced with the other child
func (t *Tree) RemoveApp(appID int) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	leaf, ok := t.leaves[appID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownApp, appID)
	}
	delete(t.leaves, appID)

	parent := leaf.node.parent
	if parent == nil {
		// Last app, back to the empty tree
		leaf.IsEmpty = true
		leaf.AppID = 0
		t.LastFocusedContainer = leaf
		return nil
	}

	sibling := parent.Branch.ChildLeft
	if sibling == leaf.node {
		sibling = parent.Branch.ChildRight
	}
	// Pull the sibling up into the parent's place
	parent.Type = sibling.Type
	parent.Branch = sibling.Branch
	parent.Leaf = sibling.Leaf
	if parent.Leaf != nil {
		parent.Leaf.node = parent
	} else {
		parent.Branch.ChildLeft.parent = parent
		parent.Branch.ChildRight.parent = parent
	}

	if t.LastFocusedContainer == leaf {
		t.LastFocusedContainer = firstLeaf(parent)
	}
	return nil
}

// Swap two apps
func (t *Tree) SwapApp(app1, app2 int) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	leaf1, ok1 := t.leaves[app1]
	leaf2, ok2 := t.leaves[app2]
	if !ok1 || !ok2 {
		return fmt.Errorf("%w: swapping %d and %d", ErrUnknownApp, app1, app2)
	}
	leaf1.AppID, leaf2.AppID = app2, app1
	t.leaves[app1], t.leaves[app2] = leaf2, leaf1
	return nil
}

// Grow changes the share the app's container gets of its parent by delta percent
func (t *Tree) Grow(appID int, delta int) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	leaf, ok := t.leaves[appID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownApp, appID)
	}
	parent := leaf.node.parent
	if parent == nil {
		return nil
	}
	if parent.Branch.ChildRight == leaf.node {
		delta = -delta
	}
	parent.Branch.AspectLeft = min(max(parent.Branch.AspectLeft+delta, minAspect), maxAspect)
	return nil
}

// Apps returns all apps in reading order, left/top first
func (t *Tree) Apps() []int {
	t.lock.Lock()
	defer t.lock.Unlock()
	apps := make([]int, 0, len(t.leaves))
	walk(t.Root, func(l *Leaf) {
		if !l.IsEmpty {
			apps = append(apps, l.AppID)
		}
	})
	return apps
}

// Cycle returns the app step positions away from appID in reading order, wrapping around
func (t *Tree) Cycle(appID int, step int) (int, bool) {
	apps := t.Apps()
	for i, id := range apps {
		if id == appID {
			n := len(apps)
			return apps[((i+step)%n+n)%n], true
		}
	}
	if len(apps) == 0 {
		return 0, false
	}
	return apps[0], true
}

// Layout calculates the box of every app
func (t *Tree) Layout() map[int]geom.Box {
	t.lock.Lock()
	defer t.lock.Unlock()
	boxes := map[int]geom.Box{}
	layoutNode(t.Root, t.Area, boxes)
	return boxes
}

func layoutNode(n *Node, box geom.Box, boxes map[int]geom.Box) {
	if n.Type == NodeTypeLeaf {
		if !n.Leaf.IsEmpty {
			boxes[n.Leaf.AppID] = box
		}
		return
	}
	left, right := splitBox(n.Branch, box)
	layoutNode(n.Branch.ChildLeft, left, boxes)
	layoutNode(n.Branch.ChildRight, right, boxes)
}

func splitBox(b *Branch, box geom.Box) (geom.Box, geom.Box) {
	left, right := box, box
	if b.Direction == DirectionHorizontal {
		left.Width = box.Width * b.AspectLeft / 100
		right.X = box.X + left.Width
		right.Width = box.Width - left.Width
	} else {
		left.Height = box.Height * b.AspectLeft / 100
		right.Y = box.Y + left.Height
		right.Height = box.Height - left.Height
	}
	return left, right
}

// boxOf walks up from n to find the box it gets assigned
func (t *Tree) boxOf(n *Node) geom.Box {
	if n.parent == nil {
		return t.Area
	}
	left, right := splitBox(n.parent.Branch, t.boxOf(n.parent))
	if n.parent.Branch.ChildLeft == n {
		return left
	}
	return right
}

func walk(n *Node, visit func(*Leaf)) {
	if n.Type == NodeTypeLeaf {
		visit(n.Leaf)
		return
	}
	walk(n.Branch.ChildLeft, visit)
	walk(n.Branch.ChildRight, visit)
}

func firstLeaf(n *Node) *Leaf {
	for n.Type == NodeTypeBranch {
		n = n.Branch.ChildLeft
	}
	return n.Leaf
}

func checkNode(node *Node, parent *Node) error {
	if node == nil {
		return errors.New("node is nil")
	}
	if node.parent != parent {
		return errors.New("broken parent link")
	}
	switch node.Type {
	case NodeTypeBranch:
		return checkBranch(node)
	case NodeTypeLeaf:
		return checkLeaf(node, parent)
	}
	return errors.New("invalid node type")
}

func checkBranch(node *Node) error {
	if node.Branch == nil {
		return errors.New("stored branch is nil")
	}
	if node.Branch.AspectLeft < minAspect || node.Branch.AspectLeft > maxAspect {
		return fmt.Errorf("invalid aspect %d", node.Branch.AspectLeft)
	}
	if err := checkNode(node.Branch.ChildLeft, node); err != nil {
		return fmt.Errorf("left child: %w", err)
	}
	if err := checkNode(node.Branch.ChildRight, node); err != nil {
		return fmt.Errorf("right child: %w", err)
	}
	return nil
}

func checkLeaf(node *Node, parent *Node) error {
	if node.Leaf == nil {
		return errors.New("leaf is nil")
	}
	if node.Leaf.node != node {
		return errors.New("leaf does not point back to its node")
	}
	if node.Leaf.IsEmpty && parent != nil {
		return errors.New("empty leaf below a branch")
	}
	return nil
}
