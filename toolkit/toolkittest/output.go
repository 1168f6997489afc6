// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkittest

import (
	"errors"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
)

type Output struct {
	OutputName   string
	Desc         string
	On           bool
	ModeList     []toolkit.Mode
	Current      *toolkit.Mode
	OutputScale  float32
	Xform        int
	VRR          bool
	RenderInited bool
	// RejectState makes TestState and CommitState fail
	RejectState bool
	Commits     []toolkit.OutputState
}

// NewOutput creates a disabled output with a single preferred mode
func NewOutput(name string, w, h int) *Output {
	return &Output{
		OutputName:  name,
		ModeList:    []toolkit.Mode{{Width: w, Height: h, Refresh: 60000, Preferred: true}},
		OutputScale: 1,
	}
}

func (o *Output) Name() string          { return o.OutputName }
func (o *Output) Description() string   { return o.Desc }
func (o *Output) Enabled() bool         { return o.On }
func (o *Output) Modes() []toolkit.Mode { return o.ModeList }
func (o *Output) Scale() float32        { return o.OutputScale }
func (o *Output) Transform() int        { return o.Xform }
func (o *Output) AdaptiveSync() bool    { return o.VRR }
func (o *Output) InitRender() error     { o.RenderInited = true; return nil }

func (o *Output) PreferredMode() (toolkit.Mode, bool) {
	for _, m := range o.ModeList {
		if m.Preferred {
			return m, true
		}
	}
	return toolkit.Mode{}, false
}

func (o *Output) CurrentMode() (toolkit.Mode, bool) {
	if o.Current == nil {
		return toolkit.Mode{}, false
	}
	return *o.Current, true
}

func (o *Output) EffectiveResolution() (int, int) {
	if o.Current == nil || o.OutputScale <= 0 {
		return 0, 0
	}
	return int(float32(o.Current.Width) / o.OutputScale), int(float32(o.Current.Height) / o.OutputScale)
}

func (o *Output) TestState(toolkit.OutputState) bool { return !o.RejectState }

func (o *Output) CommitState(state toolkit.OutputState) error {
	if o.RejectState {
		return errors.New("state rejected")
	}
	o.Commits = append(o.Commits, state)
	o.On = state.Enabled
	if state.Mode != nil {
		m := *state.Mode
		o.Current = &m
	} else if state.CustomMode != nil {
		m := *state.CustomMode
		o.Current = &m
	}
	if state.Scale > 0 {
		o.OutputScale = state.Scale
	}
	o.Xform = state.Transform
	o.VRR = state.AdaptiveSync
	return nil
}

type layoutEntry struct {
	output toolkit.Output
	x, y   int
}

// Layout places auto-added outputs left to right
type Layout struct {
	entries []layoutEntry
}

func (l *Layout) AddAuto(o toolkit.Output, _ toolkit.SceneOutput) error {
	x := 0
	for _, e := range l.entries {
		if e.output == o {
			continue
		}
		b := l.Box(e.output)
		if b.X+b.Width > x {
			x = b.X + b.Width
		}
	}
	return l.Add(o, nil, x, 0)
}

func (l *Layout) Add(o toolkit.Output, _ toolkit.SceneOutput, x, y int) error {
	for i, e := range l.entries {
		if e.output == o {
			l.entries[i].x, l.entries[i].y = x, y
			return nil
		}
	}
	l.entries = append(l.entries, layoutEntry{output: o, x: x, y: y})
	return nil
}

func (l *Layout) Remove(o toolkit.Output) {
	for i, e := range l.entries {
		if e.output == o {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *Layout) Contains(o toolkit.Output) bool {
	for _, e := range l.entries {
		if e.output == o {
			return true
		}
	}
	return false
}

func (l *Layout) Box(o toolkit.Output) geom.Box {
	for _, e := range l.entries {
		if e.output == o {
			w, h := o.EffectiveResolution()
			return geom.Box{X: e.x, Y: e.y, Width: w, Height: h}
		}
	}
	return geom.Box{}
}

func (l *Layout) OutputAt(lx, ly float64) toolkit.Output {
	for _, e := range l.entries {
		if l.Box(e.output).Contains(lx, ly) {
			return e.output
		}
	}
	return nil
}

type OutputManager struct {
	Configurations [][]toolkit.Head
}

func (m *OutputManager) SetConfiguration(heads []toolkit.Head) {
	m.Configurations = append(m.Configurations, heads)
}

func (m *OutputManager) Last() []toolkit.Head {
	if len(m.Configurations) == 0 {
		return nil
	}
	return m.Configurations[len(m.Configurations)-1]
}

type OutputConfiguration struct {
	HeadList  []toolkit.HeadConfig
	Succeeded bool
	Failed    bool
	Destroyed bool
}

func (c *OutputConfiguration) Heads() []toolkit.HeadConfig { return c.HeadList }
func (c *OutputConfiguration) SendSucceeded()              { c.Succeeded = true }
func (c *OutputConfiguration) SendFailed()                 { c.Failed = true }
func (c *OutputConfiguration) Destroy()                    { c.Destroyed = true }
