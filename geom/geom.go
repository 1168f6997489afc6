// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package geom holds the small integer geometry types shared by the compositor
// core: vectors, boxes and rectangle-list regions.
package geom

import "fmt"

type Vector2i struct {
	X int
	Y int
}

// Box is an axis aligned rectangle in layout or surface coordinates.
// A box covers [X, X+Width) x [Y, Y+Height).
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (b Box) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", b.Width, b.Height, b.X, b.Y)
}

// Empty reports whether the box covers no area
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether the point lies inside the box
func (b Box) Contains(x, y float64) bool {
	if b.Empty() {
		return false
	}
	return x >= float64(b.X) && x < float64(b.X+b.Width) &&
		y >= float64(b.Y) && y < float64(b.Y+b.Height)
}

// Intersect returns the overlapping part of both boxes.
// ok is false if they do not overlap.
func (b Box) Intersect(other Box) (Box, bool) {
	x1 := max(b.X, other.X)
	y1 := max(b.Y, other.Y)
	x2 := min(b.X+b.Width, other.X+other.Width)
	y2 := min(b.Y+b.Height, other.Y+other.Height)
	if x2 <= x1 || y2 <= y1 {
		return Box{}, false
	}
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// Center returns the middle of the box
func (b Box) Center() (float64, float64) {
	return float64(b.X) + float64(b.Width)/2, float64(b.Y) + float64(b.Height)/2
}

// Translate returns the box moved by (dx, dy)
func (b Box) Translate(dx, dy int) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, Width: b.Width, Height: b.Height}
}

// ClosestPoint returns the point inside the box nearest to (x, y)
func (b Box) ClosestPoint(x, y float64) (float64, float64) {
	if b.Empty() {
		return float64(b.X), float64(b.Y)
	}
	return clamp(x, float64(b.X), float64(b.X+b.Width)-confineEpsilon),
		clamp(y, float64(b.Y), float64(b.Y+b.Height)-confineEpsilon)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
