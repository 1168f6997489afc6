// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gesture turns touchpad swipe and pinch events into compact summaries
// for the host policy.
package gesture

import "math"

const (
	// Longest direction sequence a swipe can produce
	MaxSwipeLength = 32
	// Deltas below this on both axes are ignored
	SwipeThreshold = 5.0
)

// Directions a swipe sequence is made of
const (
	DirLeft  = 'L'
	DirRight = 'R'
	DirUp    = 'U'
	DirDown  = 'D'
)

// Swipe records the directions of a multi finger swipe.
// Consecutive duplicates are collapsed.
type Swipe struct {
	active  bool
	fingers uint32
	seq     []byte
}

func (s *Swipe) Begin(fingers uint32) {
	s.active = true
	s.fingers = fingers
	s.seq = make([]byte, 0, MaxSwipeLength)
}

// Direction classifies a delta. ok is false if the delta is below the threshold.
func Direction(dx, dy float64) (dir byte, ok bool) {
	if math.Abs(dx) < SwipeThreshold && math.Abs(dy) < SwipeThreshold {
		return 0, false
	}
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return DirRight, true
		}
		return DirLeft, true
	}
	if dy > 0 {
		return DirDown, true
	}
	return DirUp, true
}

func (s *Swipe) Update(dx, dy float64) {
	if !s.active {
		return
	}
	dir, ok := Direction(dx, dy)
	if !ok {
		return
	}
	if n := len(s.seq); n > 0 && s.seq[n-1] == dir {
		return
	}
	if len(s.seq) >= MaxSwipeLength {
		return
	}
	s.seq = append(s.seq, dir)
}

// End finishes the swipe and returns the recorded sequence.
// ok is false if nothing was recorded.
func (s *Swipe) End() (seq string, ok bool) {
	if !s.active {
		return "", false
	}
	seq = string(s.seq)
	s.Reset()
	return seq, seq != ""
}

func (s *Swipe) Reset() {
	s.active = false
	s.fingers = 0
	s.seq = nil
}

func (s *Swipe) Active() bool     { return s.active }
func (s *Swipe) Fingers() uint32  { return s.fingers }
func (s *Swipe) Sequence() string { return string(s.seq) }

// Pinch aggregates a pinch gesture. Scale is absolute, rotation is summed up.
type Pinch struct {
	active   bool
	scale    float64
	rotation float64
}

func (p *Pinch) Begin() {
	p.active = true
	p.scale = 1
	p.rotation = 0
}

func (p *Pinch) Update(scale, rotation float64) {
	if !p.active {
		return
	}
	p.scale = scale
	p.rotation += rotation
}

// End finishes the pinch. ok is false if no pinch was in progress.
func (p *Pinch) End() (shrink, clockwise, ok bool) {
	if !p.active {
		return false, false, false
	}
	shrink, clockwise = p.scale < 1, p.rotation > 0
	p.Reset()
	return shrink, clockwise, true
}

func (p *Pinch) Reset() {
	p.active = false
	p.scale = 1
	p.rotation = 0
}

func (p *Pinch) Active() bool      { return p.active }
func (p *Pinch) Scale() float64    { return p.scale }
func (p *Pinch) Rotation() float64 { return p.rotation }
