// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package border paints solid color rings around a view
package border

import (
	"fmt"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

// Spec describes a border: a total width split over one ring per color,
// the first color being the outermost ring
type Spec struct {
	Width  int
	Colors []toolkit.Color
}

// Sides of a ring, in paint order
const (
	SideTop = iota
	SideRight
	SideBottom
	SideLeft
	sideCount
)

// RingWidths splits width over n rings. The first width%n rings are one pixel wider
// so the thicknesses always add up to width.
func RingWidths(width, n int) []int {
	if n <= 0 || width < 0 {
		return nil
	}
	widths := make([]int, n)
	base, rest := width/n, width%n
	for i := range widths {
		widths[i] = base
		if i < rest {
			widths[i]++
		}
	}
	return widths
}

// RingBoxes returns the four boxes of every ring around a w x h client.
// Boxes are relative to the outer top left corner and never overlap.
func RingBoxes(w, h, width, n int) [][sideCount]geom.Box {
	widths := RingWidths(width, n)
	outerW, outerH := w+2*width, h+2*width
	rings := make([][sideCount]geom.Box, 0, len(widths))
	offset := 0
	for _, t := range widths {
		inner := outerH - 2*offset - 2*t
		ring := [sideCount]geom.Box{}
		ring[SideTop] = geom.Box{X: offset, Y: offset, Width: outerW - 2*offset, Height: t}
		ring[SideRight] = geom.Box{X: outerW - offset - t, Y: offset + t, Width: t, Height: inner}
		ring[SideBottom] = geom.Box{X: offset, Y: outerH - offset - t, Width: outerW - 2*offset, Height: t}
		ring[SideLeft] = geom.Box{X: offset, Y: offset + t, Width: t, Height: inner}
		rings = append(rings, ring)
		offset += t
	}
	return rings
}

// Border owns the rects of a painted border
type Border struct {
	width int
	rings [][sideCount]toolkit.Rect
}

// Paint creates the rings below parent for a w x h client and moves content
// inside the innermost ring. On failure everything created so far is destroyed.
func Paint(parent toolkit.Tree, content toolkit.Node, w, h int, spec Spec) (*Border, error) {
	b := &Border{width: spec.Width}
	if spec.Width < 0 {
		return nil, fmt.Errorf("negative border width %d", spec.Width)
	}
	if spec.Width == 0 || len(spec.Colors) == 0 {
		b.width = 0
		placeContent(content, 0)
		return b, nil
	}

	boxes := RingBoxes(w, h, spec.Width, len(spec.Colors))
	for i, ring := range boxes {
		var rects [sideCount]toolkit.Rect
		for side, box := range ring {
			rect, err := parent.NewRect(box.Width, box.Height, spec.Colors[i])
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"ring": i,
					"side": side,
				}).Errorln("Failed to allocate border rect")
				b.rings = append(b.rings, rects)
				b.Cleanup()
				return nil, fmt.Errorf("border ring %d: %w", i, err)
			}
			rect.Node().SetPosition(box.X, box.Y)
			rects[side] = rect
		}
		b.rings = append(b.rings, rects)
	}
	placeContent(content, spec.Width)
	return b, nil
}

func placeContent(content toolkit.Node, width int) {
	if content == nil {
		return
	}
	content.SetPosition(width, width)
	content.RaiseToTop()
}

// Width is the total painted width
func (b *Border) Width() int {
	if b == nil {
		return 0
	}
	return b.width
}

// RectCount returns how many rects are alive
func (b *Border) RectCount() int {
	if b == nil {
		return 0
	}
	count := 0
	for _, ring := range b.rings {
		for _, r := range ring {
			if r != nil {
				count++
			}
		}
	}
	return count
}

// Cleanup destroys every rect. Missing rects of a half painted ring are skipped.
func (b *Border) Cleanup() {
	if b == nil {
		return
	}
	for i, ring := range b.rings {
		for side, r := range ring {
			if r == nil {
				logrus.WithFields(logrus.Fields{
					"ring": i,
					"side": side,
				}).Errorln("Border rect missing during cleanup")
				continue
			}
			r.Node().Destroy()
		}
	}
	b.rings = nil
	b.width = 0
}
