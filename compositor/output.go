// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

const shellLayerCount = int(toolkit.ShellLayerOverlay) + 1

// Output is a monitor known to the compositor
type Output struct {
	server      *Server
	output      toolkit.Output
	sceneOutput toolkit.SceneOutput
	fullArea    geom.Box
	usableArea  geom.Box
	layers      [shellLayerCount][]*LayerView
	lockSurface *lockSurface
	blank       toolkit.Rect
}

func (o *Output) Name() string            { return o.output.Name() }
func (o *Output) Toolkit() toolkit.Output { return o.output }
func (o *Output) Enabled() bool           { return o.output.Enabled() }

// FullArea is the logical area of the output in the layout
func (o *Output) FullArea() geom.Box { return o.fullArea }

// UsableArea is what is left of the full area after layer surfaces reserved their zones
func (o *Output) UsableArea() geom.Box { return o.usableArea }

func (o *Output) LayerViews(layer toolkit.ShellLayer) []*LayerView {
	if layer < 0 || int(layer) >= shellLayerCount {
		return nil
	}
	return append([]*LayerView(nil), o.layers[layer]...)
}

// Outputs returns all outputs, enabled or not, in the order they appeared
func (server *Server) Outputs() []*Output {
	return append([]*Output(nil), server.outputs...)
}

func (server *Server) outputFor(output toolkit.Output) *Output {
	if output == nil {
		return nil
	}
	for _, out := range server.outputs {
		if out.output == output {
			return out
		}
	}
	return nil
}

// currentOutput is the output under the cursor, or the first enabled one
func (server *Server) currentOutput() *Output {
	if o := server.layout.OutputAt(server.cursor.X(), server.cursor.Y()); o != nil {
		if out := server.outputFor(o); out != nil {
			return out
		}
	}
	for _, out := range server.outputs {
		if out.output.Enabled() {
			return out
		}
	}
	return nil
}

func (server *Server) outputOptions(name string) (OutputOptions, bool) {
	for _, opts := range server.options.Outputs {
		if opts.Name == name {
			return opts, true
		}
	}
	return OutputOptions{}, false
}

// initialState enables the output with the configured or preferred mode
func initialState(output toolkit.Output, opts OutputOptions) toolkit.OutputState {
	state := toolkit.OutputState{
		Enabled:   !opts.Disabled,
		Scale:     output.Scale(),
		Transform: output.Transform(),
	}
	if opts.Scale > 0 {
		state.Scale = opts.Scale
	}
	if opts.Width > 0 && opts.Height > 0 {
		for _, m := range output.Modes() {
			if m.Width == opts.Width && m.Height == opts.Height && (opts.Refresh == 0 || m.Refresh == opts.Refresh) {
				mode := m
				state.Mode = &mode
				break
			}
		}
		if state.Mode == nil {
			state.CustomMode = &toolkit.Mode{Width: opts.Width, Height: opts.Height, Refresh: opts.Refresh}
		}
		return state
	}
	if mode, ok := output.PreferredMode(); ok {
		state.Mode = &mode
	}
	return state
}

func (server *Server) addToLayout(out *Output) {
	var err error
	if opts, ok := server.outputOptions(out.Name()); ok && opts.Position {
		err = server.layout.Add(out.output, out.sceneOutput, opts.X, opts.Y)
	} else {
		err = server.layout.AddAuto(out.output, out.sceneOutput)
	}
	if err != nil {
		logrus.WithError(err).WithField("output", out.Name()).Errorln("Failed to add output to layout")
	}
}

func (server *Server) HandleNewOutput(output toolkit.Output) {
	log := logrus.WithField("output", output.Name())
	if err := output.InitRender(); err != nil {
		log.WithError(err).Errorln("Failed to initialise output rendering")
		return
	}

	opts, _ := server.outputOptions(output.Name())
	if err := output.CommitState(initialState(output, opts)); err != nil {
		log.WithError(err).Errorln("Failed to commit initial output state")
	}

	sceneOutput, err := server.scene.NewOutput(output)
	if err != nil {
		log.WithError(err).Errorln("Failed to create scene output")
		return
	}
	out := &Output{server: server, output: output, sceneOutput: sceneOutput}
	if output.Enabled() {
		server.addToLayout(out)
	}
	server.outputs = append(server.outputs, out)
	log.Debugln("New output")
	server.reconcileOutputs()
}

func (server *Server) HandleOutputFrame(output toolkit.Output) {
	out := server.outputFor(output)
	if out == nil {
		return
	}
	if err := out.sceneOutput.Commit(); err != nil {
		logrus.WithError(err).WithField("output", out.Name()).Debugln("Failed to commit scene output")
	}
	out.sceneOutput.SendFrameDone()
}

func (server *Server) HandleOutputRequestState(output toolkit.Output, state toolkit.OutputState) {
	if err := output.CommitState(state); err != nil {
		logrus.WithError(err).WithField("output", output.Name()).Errorln("Failed to commit requested output state")
		return
	}
	server.reconcileOutputs()
}

func (server *Server) HandleOutputDestroy(output toolkit.Output) {
	out := server.outputFor(output)
	if out == nil {
		return
	}
	for _, list := range out.layers {
		for _, lv := range list {
			lv.output = nil
			lv.layerSurface.Close()
		}
	}
	out.layers = [shellLayerCount][]*LayerView{}
	out.removeBlank()
	server.removeLockSurface(out)
	if server.layout.Contains(output) {
		server.layout.Remove(output)
	}
	server.outputs = sliceutils.Filter(server.outputs, func(o *Output) bool { return o != out })
	logrus.WithField("output", output.Name()).Debugln("Output removed")
	server.reconcileOutputs()
	server.refocusLock()
}

func (server *Server) HandleLayoutChange() {
	server.reconcileOutputs()
}

// reconcileOutputs syncs the layout with the enabled outputs, publishes the
// configuration and refreshes everything anchored to an output's area
func (server *Server) reconcileOutputs() {
	heads := make([]toolkit.Head, 0, len(server.outputs))
	for _, out := range server.outputs {
		if out.output.Enabled() {
			continue
		}
		if server.layout.Contains(out.output) {
			server.layout.Remove(out.output)
		}
		out.fullArea = geom.Box{}
		out.usableArea = geom.Box{}
		out.removeBlank()
		heads = append(heads, toolkit.Head{Output: out.output})
	}
	for _, out := range server.outputs {
		if out.output.Enabled() && !server.layout.Contains(out.output) {
			server.addToLayout(out)
		}
	}
	for _, out := range server.outputs {
		if !out.output.Enabled() {
			continue
		}
		out.fullArea = server.layout.Box(out.output)
		head := toolkit.Head{
			Output:       out.output,
			Enabled:      true,
			X:            out.fullArea.X,
			Y:            out.fullArea.Y,
			Scale:        out.output.Scale(),
			Transform:    out.output.Transform(),
			AdaptiveSync: out.output.AdaptiveSync(),
		}
		if mode, ok := out.output.CurrentMode(); ok {
			head.Mode = &mode
		}
		heads = append(heads, head)
		server.arrangeLayers(out)
		server.updateLockOutput(out)
	}
	server.outputManager.SetConfiguration(heads)
	server.callbacks.screenChange()
}

func (server *Server) HandleOutputManagerApply(config toolkit.OutputConfiguration) {
	server.applyOutputConfiguration(config, false)
}

func (server *Server) HandleOutputManagerTest(config toolkit.OutputConfiguration) {
	server.applyOutputConfiguration(config, true)
}

func (server *Server) applyOutputConfiguration(config toolkit.OutputConfiguration, test bool) {
	ok := true
	for _, head := range config.Heads() {
		out := server.outputFor(head.Output)
		if out == nil {
			ok = false
			continue
		}
		state := head.State
		if !state.Enabled {
			state = toolkit.OutputState{}
		}
		if test {
			ok = head.Output.TestState(state) && ok
			continue
		}
		if err := head.Output.CommitState(state); err != nil {
			logrus.WithError(err).WithField("output", out.Name()).Errorln("Failed to apply output configuration")
			ok = false
			continue
		}
		if state.Enabled {
			if err := server.layout.Add(head.Output, out.sceneOutput, head.X, head.Y); err != nil {
				logrus.WithError(err).WithField("output", out.Name()).Errorln("Failed to position output")
				ok = false
			}
		}
	}
	if ok {
		config.SendSucceeded()
	} else {
		config.SendFailed()
	}
	config.Destroy()
	if !test {
		server.reconcileOutputs()
	}
}
