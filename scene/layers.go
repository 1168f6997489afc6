// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package scene keeps the fixed stack of named layers every view is mounted on.
package scene

import (
	"errors"
	"fmt"

	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

type Layer int

// Layers from bottom to top. The ids are stable and shared with the host policy.
const (
	LayerBackground = Layer(iota)
	LayerBottom
	LayerKeepBelow
	LayerLayout
	LayerKeepAbove
	LayerMax
	LayerFullscreen
	LayerBringToFront
	LayerTop
	LayerOverlay
	LayerLock

	LayerCount
)

var layerNames = [LayerCount]string{
	"background",
	"bottom",
	"keep-below",
	"layout",
	"keep-above",
	"max",
	"fullscreen",
	"bring-to-front",
	"top",
	"overlay",
	"lock",
}

var ErrInvalidLayer = errors.New("invalid layer")

func (l Layer) Valid() bool {
	return l >= 0 && l < LayerCount
}

func (l Layer) String() string {
	if !l.Valid() {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// FromShellLayer maps a layer-shell layer onto the stack
func FromShellLayer(l toolkit.ShellLayer) Layer {
	switch l {
	case toolkit.ShellLayerBackground:
		return LayerBackground
	case toolkit.ShellLayerBottom:
		return LayerBottom
	case toolkit.ShellLayerTop:
		return LayerTop
	case toolkit.ShellLayerOverlay:
		return LayerOverlay
	}
	return LayerTop
}

// PopupLayer returns where popups of a layer surface on l are mounted.
// Popups go to Top unless the surface already sits on Top or Overlay.
func PopupLayer(l Layer) Layer {
	if l == LayerTop || l == LayerOverlay {
		return l
	}
	return LayerTop
}

// Stack owns one scene subtree per layer, created in order so that
// insertion order gives the z-order.
type Stack struct {
	root   toolkit.Tree
	layers [LayerCount]toolkit.Tree
}

// NewStack creates all layer subtrees below root.
// The lock layer starts disabled.
func NewStack(root toolkit.Tree) (*Stack, error) {
	s := &Stack{root: root}
	for l := Layer(0); l < LayerCount; l++ {
		tree, err := root.NewTree()
		if err != nil {
			logrus.WithError(err).WithField("layer", l).Errorln("Failed to create layer tree")
			s.Destroy()
			return nil, fmt.Errorf("creating layer %s: %w", l, err)
		}
		s.layers[l] = tree
	}
	s.layers[LayerLock].Node().SetEnabled(false)
	return s, nil
}

// Tree returns the subtree of a layer, nil for invalid layers
func (s *Stack) Tree(l Layer) toolkit.Tree {
	if !l.Valid() {
		return nil
	}
	return s.layers[l]
}

// Reparent moves node onto layer l. It is the only way a node changes layers.
func (s *Stack) Reparent(node toolkit.Node, l Layer) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLayer, int(l))
	}
	if node == nil {
		return errors.New("nil node")
	}
	node.Reparent(s.layers[l])
	return nil
}

// LayerOf reports which layer subtree is the direct parent of node
func (s *Stack) LayerOf(node toolkit.Node) (Layer, bool) {
	if node == nil {
		return 0, false
	}
	parent := node.Parent()
	if parent == nil {
		return 0, false
	}
	for l, tree := range s.layers {
		if tree == parent {
			return Layer(l), true
		}
	}
	return 0, false
}

// SetLockEnabled toggles the visibility of the lock layer
func (s *Stack) SetLockEnabled(enabled bool) {
	s.layers[LayerLock].Node().SetEnabled(enabled)
}

func (s *Stack) LockEnabled() bool {
	return s.layers[LayerLock].Node().Enabled()
}

func (s *Stack) Destroy() {
	for i, tree := range s.layers {
		if tree != nil {
			tree.Node().Destroy()
			s.layers[i] = nil
		}
	}
}
