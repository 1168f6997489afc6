// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlr

import (
	"fmt"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// output tracks what was committed, the binding can not read the state back
type output struct {
	backend     *Backend
	output      wlroots.Output
	sceneOutput wlroots.SceneOutput
	enabled     bool
	current     *toolkit.Mode
	// The real layout only grows, outputs stay in it once added
	inLayout bool
}

func (o *output) Name() string        { return o.output.Name() }
func (o *output) Description() string { return o.output.Name() }
func (o *output) Enabled() bool       { return o.enabled }
func (o *output) Scale() float32      { return 1 }
func (o *output) Transform() int      { return 0 }
func (o *output) AdaptiveSync() bool  { return false }

func (o *output) Modes() []toolkit.Mode {
	modes := o.output.Modes()
	out := make([]toolkit.Mode, 0, len(modes))
	for _, m := range modes {
		out = append(out, toMode(m))
	}
	return out
}

func toMode(m wlroots.OutputMode) toolkit.Mode {
	return toolkit.Mode{
		Width:     int(m.Width()),
		Height:    int(m.Height()),
		Refresh:   int(m.Refresh()),
		Preferred: m.Preferred(),
	}
}

func (o *output) PreferredMode() (toolkit.Mode, bool) {
	mode, err := o.output.PrefferedMode()
	if err != nil {
		return toolkit.Mode{}, false
	}
	return toMode(mode), true
}

func (o *output) CurrentMode() (toolkit.Mode, bool) {
	if o.current == nil {
		return toolkit.Mode{}, false
	}
	return *o.current, true
}

func (o *output) EffectiveResolution() (int, int) {
	if o.current == nil {
		return 0, 0
	}
	return o.current.Width, o.current.Height
}

func (o *output) InitRender() error {
	o.output.InitRender(o.backend.allocator, o.backend.renderer)
	return nil
}

// findMode returns the wlroots mode matching m
func (o *output) findMode(m toolkit.Mode) (wlroots.OutputMode, bool) {
	matching := sliceutils.Filter(o.output.Modes(), func(mode wlroots.OutputMode) bool {
		return int(mode.Width()) == m.Width && int(mode.Height()) == m.Height &&
			(m.Refresh == 0 || int(mode.Refresh()) == m.Refresh)
	})
	if len(matching) == 0 {
		return wlroots.OutputMode{}, false
	}
	return matching[0], true
}

// supported reports whether the binding can express the state
func (o *output) supported(state toolkit.OutputState) error {
	if !state.Enabled {
		return nil
	}
	switch {
	case state.CustomMode != nil:
		return fmt.Errorf("%w: custom modes", ErrUnsupported)
	case state.Scale != 0 && state.Scale != 1:
		return fmt.Errorf("%w: output scale %v", ErrUnsupported, state.Scale)
	case state.Transform != 0:
		return fmt.Errorf("%w: output transforms", ErrUnsupported)
	case state.AdaptiveSync:
		return fmt.Errorf("%w: adaptive sync", ErrUnsupported)
	}
	if state.Mode != nil {
		if _, ok := o.findMode(*state.Mode); !ok {
			return fmt.Errorf("output %s has no mode %dx%d", o.Name(), state.Mode.Width, state.Mode.Height)
		}
	}
	return nil
}

func (o *output) TestState(state toolkit.OutputState) bool {
	return o.supported(state) == nil
}

func (o *output) CommitState(state toolkit.OutputState) error {
	if err := o.supported(state); err != nil {
		return err
	}
	oState := wlroots.NewOutputState()
	oState.StateInit()
	oState.StateSetEnabled(state.Enabled)
	var current *toolkit.Mode
	if state.Enabled && state.Mode != nil {
		mode, _ := o.findMode(*state.Mode)
		oState.SetMode(mode)
		m := toMode(mode)
		current = &m
	}
	o.output.CommitState(oState)
	oState.Finish()

	o.enabled = state.Enabled
	if current != nil {
		o.current = current
	}
	logrus.WithFields(logrus.Fields{
		"name":    o.Name(),
		"enabled": o.enabled,
		"mode":    o.current,
	}).Debugln("Committed output state")
	return nil
}

type layoutEntry struct {
	output *output
	x, y   int
}

// outputLayout mirrors the wlroots layout. wlroots places outputs left to right
// in the order they were added and the model follows the same rule.
type outputLayout struct {
	backend *Backend
	entries []layoutEntry
}

func (l *outputLayout) nextX(except *output) int {
	x := 0
	for _, e := range l.entries {
		if e.output == except {
			continue
		}
		if right := e.x + l.Box(e.output).Width; right > x {
			x = right
		}
	}
	return x
}

func (l *outputLayout) AddAuto(o toolkit.Output, _ toolkit.SceneOutput) error {
	out, ok := o.(*output)
	if !ok {
		return fmt.Errorf("%w: foreign output %s", ErrUnsupported, o.Name())
	}
	return l.place(out, l.nextX(out), 0)
}

// Add only accepts the position wlroots would pick anyway
func (l *outputLayout) Add(o toolkit.Output, _ toolkit.SceneOutput, x, y int) error {
	out, ok := o.(*output)
	if !ok {
		return fmt.Errorf("%w: foreign output %s", ErrUnsupported, o.Name())
	}
	if x != l.nextX(out) || y != 0 {
		return fmt.Errorf("%w: placing %s at %d,%d", ErrUnsupported, o.Name(), x, y)
	}
	return l.place(out, x, y)
}

func (l *outputLayout) place(out *output, x, y int) error {
	if !out.inLayout {
		layoutOutput := l.backend.outputLayout.AddOutputAuto(out.output)
		l.backend.sceneLayout.AddOutput(layoutOutput, out.sceneOutput)
		out.inLayout = true
	}
	for i, e := range l.entries {
		if e.output == out {
			l.entries[i].x, l.entries[i].y = x, y
			return nil
		}
	}
	l.entries = append(l.entries, layoutEntry{output: out, x: x, y: y})
	return nil
}

func (l *outputLayout) Remove(o toolkit.Output) {
	l.entries = sliceutils.Filter(l.entries, func(e layoutEntry) bool {
		return toolkit.Output(e.output) != o
	})
}

// forget drops an output wlroots already removed from its layout
func (l *outputLayout) forget(out *output) {
	l.Remove(out)
	out.inLayout = false
}

func (l *outputLayout) Contains(o toolkit.Output) bool {
	for _, e := range l.entries {
		if toolkit.Output(e.output) == o {
			return true
		}
	}
	return false
}

func (l *outputLayout) Box(o toolkit.Output) geom.Box {
	for _, e := range l.entries {
		if toolkit.Output(e.output) == o {
			w, h := e.output.EffectiveResolution()
			return geom.Box{X: e.x, Y: e.y, Width: w, Height: h}
		}
	}
	return geom.Box{}
}

func (l *outputLayout) OutputAt(lx, ly float64) toolkit.Output {
	for _, e := range l.entries {
		if l.Box(e.output).Contains(lx, ly) {
			return e.output
		}
	}
	return nil
}

// extents is the bounding box of all outputs in the layout
func (l *outputLayout) extents() geom.Box {
	var ext geom.Box
	for i, e := range l.entries {
		b := l.Box(e.output)
		if i == 0 {
			ext = b
			continue
		}
		x2 := max(ext.X+ext.Width, b.X+b.Width)
		y2 := max(ext.Y+ext.Height, b.Y+b.Height)
		ext.X, ext.Y = min(ext.X, b.X), min(ext.Y, b.Y)
		ext.Width, ext.Height = x2-ext.X, y2-ext.Y
	}
	return ext
}

// outputManager has nothing to publish to, the binding lacks wlr-output-management
type outputManager struct{}

func (m *outputManager) SetConfiguration(heads []toolkit.Head) {
	logrus.WithField("heads", len(heads)).Debugln("Output configuration changed")
}
