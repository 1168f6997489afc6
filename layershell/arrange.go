// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package layershell places layer-shell surfaces on an output following their
// anchors, margins and exclusive zones.
package layershell

import (
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
)

const anchorHorizontal = toolkit.AnchorLeft | toolkit.AnchorRight
const anchorVertical = toolkit.AnchorTop | toolkit.AnchorBottom

// Placement is where a surface ended up.
// Invalid placements have a negative size and the surface should be closed.
type Placement struct {
	Box   geom.Box
	Valid bool
}

// Arrange lays out all surfaces of one output. Layers are handled from overlay
// down to background, surfaces reserving space before the others of their layer.
// It returns one placement per state and the area left for regular windows.
func Arrange(full geom.Box, states []toolkit.LayerSurfaceState) ([]Placement, geom.Box) {
	placements := make([]Placement, len(states))
	usable := full
	layers := []toolkit.ShellLayer{
		toolkit.ShellLayerOverlay,
		toolkit.ShellLayerTop,
		toolkit.ShellLayerBottom,
		toolkit.ShellLayerBackground,
	}
	for _, layer := range layers {
		for _, exclusive := range []bool{true, false} {
			for i, state := range states {
				if state.Layer != layer || (state.ExclusiveZone > 0) != exclusive {
					continue
				}
				bounds := usable
				if state.ExclusiveZone == -1 {
					bounds = full
				}
				box, ok := Place(bounds, state)
				placements[i] = Placement{Box: box, Valid: ok}
				if ok && state.ExclusiveZone > 0 {
					usable = ApplyExclusive(usable, state)
				}
			}
		}
	}
	return placements, usable
}

// Place positions a single surface inside bounds
func Place(bounds geom.Box, state toolkit.LayerSurfaceState) (geom.Box, bool) {
	box := geom.Box{Width: state.DesiredWidth, Height: state.DesiredHeight}
	anchor := state.Anchor
	margin := state.Margin

	switch {
	case anchor&anchorHorizontal == anchorHorizontal && box.Width == 0:
		box.X = bounds.X + margin.Left
		box.Width = bounds.Width - margin.Left - margin.Right
	case anchor&anchorHorizontal == anchorHorizontal:
		box.X = bounds.X + margin.Left + (bounds.Width-margin.Left-margin.Right-box.Width)/2
	case anchor&toolkit.AnchorLeft != 0:
		box.X = bounds.X + margin.Left
	case anchor&toolkit.AnchorRight != 0:
		box.X = bounds.X + bounds.Width - box.Width - margin.Right
	default:
		box.X = bounds.X + bounds.Width/2 - box.Width/2
	}

	switch {
	case anchor&anchorVertical == anchorVertical && box.Height == 0:
		box.Y = bounds.Y + margin.Top
		box.Height = bounds.Height - margin.Top - margin.Bottom
	case anchor&anchorVertical == anchorVertical:
		box.Y = bounds.Y + margin.Top + (bounds.Height-margin.Top-margin.Bottom-box.Height)/2
	case anchor&toolkit.AnchorTop != 0:
		box.Y = bounds.Y + margin.Top
	case anchor&toolkit.AnchorBottom != 0:
		box.Y = bounds.Y + bounds.Height - box.Height - margin.Bottom
	default:
		box.Y = bounds.Y + bounds.Height/2 - box.Height/2
	}

	if box.Width < 0 || box.Height < 0 {
		return box, false
	}
	return box, true
}

// ApplyExclusive shrinks usable by the zone a surface reserves. Only surfaces
// anchored to one edge, or to one edge and both of its neighbours, reserve space.
func ApplyExclusive(usable geom.Box, state toolkit.LayerSurfaceState) geom.Box {
	zone := state.ExclusiveZone
	if zone <= 0 {
		return usable
	}
	switch state.Anchor {
	case toolkit.AnchorTop, toolkit.AnchorTop | anchorHorizontal:
		reserve := zone + state.Margin.Top
		usable.Y += reserve
		usable.Height -= reserve
	case toolkit.AnchorBottom, toolkit.AnchorBottom | anchorHorizontal:
		usable.Height -= zone + state.Margin.Bottom
	case toolkit.AnchorLeft, toolkit.AnchorLeft | anchorVertical:
		reserve := zone + state.Margin.Left
		usable.X += reserve
		usable.Width -= reserve
	case toolkit.AnchorRight, toolkit.AnchorRight | anchorVertical:
		usable.Width -= zone + state.Margin.Right
	}
	if usable.Width < 0 {
		usable.Width = 0
	}
	if usable.Height < 0 {
		usable.Height = 0
	}
	return usable
}
