// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkit

import "github.com/mstarongithub/tilewl/geom"

type Mode struct {
	Width  int
	Height int
	// Refresh rate in mHz
	Refresh   int
	Preferred bool
}

// OutputState is a set of output properties committed or tested atomically.
// Either Mode or CustomMode may be set.
type OutputState struct {
	Enabled      bool
	Mode         *Mode
	CustomMode   *Mode
	Transform    int
	Scale        float32
	AdaptiveSync bool
}

// Output implementations must be comparable
type Output interface {
	Name() string
	Description() string
	Enabled() bool
	Modes() []Mode
	PreferredMode() (Mode, bool)
	CurrentMode() (Mode, bool)
	Scale() float32
	Transform() int
	AdaptiveSync() bool
	EffectiveResolution() (width, height int)
	// InitRender attaches the renderer and allocator
	InitRender() error
	TestState(state OutputState) bool
	CommitState(state OutputState) error
}

type OutputLayout interface {
	AddAuto(output Output, sceneOutput SceneOutput) error
	Add(output Output, sceneOutput SceneOutput, x, y int) error
	Remove(output Output)
	Contains(output Output) bool
	// Box returns the output's logical area, empty if it is not in the layout
	Box(output Output) geom.Box
	OutputAt(lx, ly float64) Output
}

// Head describes one output in a configuration sent to output management clients
type Head struct {
	Output       Output
	Enabled      bool
	Mode         *Mode
	X            int
	Y            int
	Scale        float32
	Transform    int
	AdaptiveSync bool
}

// HeadConfig is one output of a configuration requested by a client
type HeadConfig struct {
	Output Output
	State  OutputState
	X      int
	Y      int
}

type OutputConfiguration interface {
	Heads() []HeadConfig
	SendSucceeded()
	SendFailed()
	Destroy()
}

type OutputManager interface {
	SetConfiguration(heads []Head)
}
