// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package geom

const (
	// Distance kept from the exclusive right/bottom edge of a box when confining
	confineEpsilon = 1.0 / 256
	// Slack used to hop from one box of a region into an adjacent one
	confineSlack = 1.0 / 128
	// Max bisection steps when a candidate point falls out of the region
	confineBisect = 8
)

// Region is a set of boxes, similar to a pixman region.
// Boxes may touch. Empty boxes are never stored.
type Region struct {
	rects []Box
}

// NewRegion creates a region out of the given boxes, dropping empty ones
func NewRegion(boxes ...Box) Region {
	r := Region{}
	for _, b := range boxes {
		if !b.Empty() {
			r.rects = append(r.rects, b)
		}
	}
	return r
}

// Empty reports whether the region covers no area
func (r Region) Empty() bool {
	return len(r.rects) == 0
}

// Rects returns a copy of the boxes making up the region
func (r Region) Rects() []Box {
	out := make([]Box, len(r.rects))
	copy(out, r.rects)
	return out
}

// Contains reports whether any box of the region contains the point
func (r Region) Contains(x, y float64) bool {
	for _, b := range r.rects {
		if b.Contains(x, y) {
			return true
		}
	}
	return false
}

// Intersect returns the region covered by both r and other
func (r Region) Intersect(other Region) Region {
	out := Region{}
	for _, a := range r.rects {
		for _, b := range other.rects {
			if i, ok := a.Intersect(b); ok {
				out.rects = append(out.rects, i)
			}
		}
	}
	return out
}

// Translate returns the region moved by (dx, dy)
func (r Region) Translate(dx, dy int) Region {
	out := Region{rects: make([]Box, 0, len(r.rects))}
	for _, b := range r.rects {
		out.rects = append(out.rects, b.Translate(dx, dy))
	}
	return out
}

// Confine moves a point from (x1, y1) towards (x2, y2) and stops where the
// segment would leave the region. It returns the reached point.
// ok is false if the starting point is not inside the region.
func (r Region) Confine(x1, y1, x2, y2 float64) (x, y float64, ok bool) {
	if !r.Contains(x1, y1) {
		return 0, 0, false
	}
	if r.Contains(x2, y2) && r.segmentInside(x1, y1, x2, y2) {
		return x2, y2, true
	}

	x, y = x1, y1
	// Each pass either finishes or walks into another box
	for pass := 0; pass <= len(r.rects); pass++ {
		bestT := 0.0
		for _, b := range r.rects {
			if !b.containsSlack(x, y) {
				continue
			}
			t := b.clipSegment(x, y, x2, y2)
			// Bisect back if the candidate left the region through a slack edge
			for i := 0; i < confineBisect && t > 0; i++ {
				if r.Contains(x+(x2-x)*t, y+(y2-y)*t) {
					break
				}
				t /= 2
			}
			if t > bestT && r.Contains(x+(x2-x)*t, y+(y2-y)*t) {
				bestT = t
			}
		}
		if bestT <= 0 {
			return x, y, true
		}
		x, y = x+(x2-x)*bestT, y+(y2-y)*bestT
		if bestT >= 1 {
			return x, y, true
		}
	}
	return x, y, true
}

// segmentInside checks that both ends of the segment share a box.
func (r Region) segmentInside(x1, y1, x2, y2 float64) bool {
	for _, b := range r.rects {
		if b.Contains(x1, y1) && b.Contains(x2, y2) {
			return true
		}
	}
	return false
}

func (b Box) containsSlack(x, y float64) bool {
	return x >= float64(b.X)-confineSlack && x < float64(b.X+b.Width)+confineSlack &&
		y >= float64(b.Y)-confineSlack && y < float64(b.Y+b.Height)+confineSlack
}

// clipSegment returns how far along (x, y) -> (x2, y2) the point stays inside b,
// as a fraction in [0, 1].
func (b Box) clipSegment(x, y, x2, y2 float64) float64 {
	t := 1.0
	dx, dy := x2-x, y2-y
	minX, maxX := float64(b.X), float64(b.X+b.Width)-confineEpsilon
	minY, maxY := float64(b.Y), float64(b.Y+b.Height)-confineEpsilon
	if dx > 0 {
		t = min(t, (maxX-x)/dx)
	} else if dx < 0 {
		t = min(t, (minX-x)/dx)
	}
	if dy > 0 {
		t = min(t, (maxY-y)/dy)
	} else if dy < 0 {
		t = min(t, (minY-y)/dy)
	}
	if t < 0 {
		return 0
	}
	return t
}
