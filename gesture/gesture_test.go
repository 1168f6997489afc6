package gesture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection(t *testing.T) {
	tests := []struct {
		dx, dy float64
		dir    byte
		ok     bool
	}{
		{10, 0, DirRight, true},
		{-10, 3, DirLeft, true},
		{2, 8, DirDown, true},
		{0, -6, DirUp, true},
		{7, 7, DirRight, true},
		{-7, -7, DirLeft, true},
		{4.9, -4.9, 0, false},
		{0, 0, 0, false},
	}
	for _, test := range tests {
		dir, ok := Direction(test.dx, test.dy)
		assert.Equal(t, test.ok, ok, "delta %v,%v", test.dx, test.dy)
		assert.Equal(t, test.dir, dir, "delta %v,%v", test.dx, test.dy)
	}
}

func TestSwipeSequence(t *testing.T) {
	var s Swipe
	s.Begin(3)
	assert.True(t, s.Active())
	assert.EqualValues(t, 3, s.Fingers())

	s.Update(10, 0)
	s.Update(12, 1)
	s.Update(1, 1)
	s.Update(0, 10)
	s.Update(-10, 0)
	assert.Equal(t, "RDL", s.Sequence())

	seq, ok := s.End()
	assert.True(t, ok)
	assert.Equal(t, "RDL", seq)
	assert.False(t, s.Active())

	_, ok = s.End()
	assert.False(t, ok, "no swipe in progress")
}

func TestSwipeEmptyAndCapped(t *testing.T) {
	var s Swipe
	s.Update(10, 0)
	assert.Empty(t, s.Sequence(), "updates before Begin are ignored")

	s.Begin(4)
	s.Update(1, 1)
	_, ok := s.End()
	assert.False(t, ok, "tiny deltas record nothing")

	s.Begin(4)
	for i := 0; i < 2*MaxSwipeLength; i++ {
		if i%2 == 0 {
			s.Update(10, 0)
		} else {
			s.Update(-10, 0)
		}
	}
	seq, ok := s.End()
	assert.True(t, ok)
	assert.Len(t, seq, MaxSwipeLength)
	assert.True(t, strings.HasPrefix(seq, "RLRL"))
}

func TestPinch(t *testing.T) {
	var p Pinch
	p.Begin()
	p.Update(0.8, 5)
	p.Update(0.6, 10)
	assert.Equal(t, 0.6, p.Scale())
	assert.Equal(t, 15.0, p.Rotation())

	shrink, clockwise, ok := p.End()
	assert.True(t, ok)
	assert.True(t, shrink)
	assert.True(t, clockwise)
	assert.False(t, p.Active())

	p.Begin()
	p.Update(1.5, -3)
	shrink, clockwise, ok = p.End()
	assert.True(t, ok)
	assert.False(t, shrink)
	assert.False(t, clockwise)

	_, _, ok = p.End()
	assert.False(t, ok)
}
