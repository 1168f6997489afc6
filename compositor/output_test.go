package compositor

import (
	"testing"

	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/toolkit/toolkittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutputUsesPreferredMode(t *testing.T) {
	server, backend, rec := newTestServer(t)
	output, out := addOutput(t, server, "A", 1920, 1080)

	assert.True(t, output.RenderInited)
	assert.True(t, output.On)
	require.NotNil(t, output.Current)
	assert.Equal(t, 1920, output.Current.Width)
	assert.Equal(t, geom.Box{Width: 1920, Height: 1080}, out.FullArea())
	assert.Equal(t, out.FullArea(), out.UsableArea())
	assert.Equal(t, 1, rec.screens)

	heads := backend.FakeManager.Last()
	require.Len(t, heads, 1)
	assert.True(t, heads[0].Enabled)
	require.NotNil(t, heads[0].Mode)
	assert.Equal(t, 60000, heads[0].Mode.Refresh)
}

func TestOutputOptions(t *testing.T) {
	backend := toolkittest.NewBackend()
	options := DefaultOptions()
	options.Outputs = []OutputOptions{
		{Name: "A", Scale: 2, X: 100, Y: 50, Position: true},
		{Name: "B", Width: 1024, Height: 768},
		{Name: "C", Disabled: true},
	}
	server, err := NewServer(backend, Callbacks{}, options)
	require.NoError(t, err)

	_, a := addOutput(t, server, "A", 1920, 1080)
	assert.Equal(t, geom.Box{X: 100, Y: 50, Width: 960, Height: 540}, a.FullArea())

	b, _ := addOutput(t, server, "B", 1920, 1080)
	require.NotNil(t, b.Current)
	assert.Equal(t, toolkit.Mode{Width: 1024, Height: 768}, *b.Current, "unknown sizes become a custom mode")
	require.NotNil(t, b.Commits[0].CustomMode)

	c, cOut := addOutput(t, server, "C", 800, 600)
	assert.False(t, c.On)
	assert.False(t, backend.FakeLayout.Contains(c))
	assert.True(t, cOut.FullArea().Empty())

	heads := backend.FakeManager.Last()
	require.Len(t, heads, 3)
	assert.Equal(t, toolkit.Output(c), heads[0].Output, "disabled heads come first")
	assert.False(t, heads[0].Enabled)
}

func TestOutputFrame(t *testing.T) {
	server, _, _ := newTestServer(t)
	output, out := addOutput(t, server, "A", 640, 480)
	server.HandleOutputFrame(output)
	server.HandleOutputFrame(output)

	sceneOutput := out.sceneOutput.(*toolkittest.SceneOutput)
	assert.Equal(t, 2, sceneOutput.Commits)
	assert.Equal(t, 2, sceneOutput.Frames)
}

func TestOutputHotplug(t *testing.T) {
	server, backend, rec := newTestServer(t)
	a, _ := addOutput(t, server, "A", 1920, 1080)
	_, b := addOutput(t, server, "B", 1280, 720)

	assert.Equal(t, geom.Box{X: 1920, Width: 1280, Height: 720}, b.FullArea())
	assert.Equal(t, 2, rec.screens)
	assert.Len(t, server.Outputs(), 2)

	bar := &toolkittest.LayerSurface{
		Surf:         toolkittest.NewSurface(100, 20),
		Out:          a,
		PendingState: toolkit.LayerSurfaceState{Layer: toolkit.ShellLayerTop, DesiredWidth: 100, DesiredHeight: 20},
	}
	server.HandleNewLayerSurface(bar)

	server.HandleOutputDestroy(a)
	assert.True(t, bar.Closed, "layer surfaces of a removed output are closed")
	assert.Len(t, server.Outputs(), 1)
	assert.False(t, backend.FakeLayout.Contains(a))
	assert.Equal(t, 3, rec.screens)
	assert.Len(t, backend.FakeManager.Last(), 1)
}

func TestOutputRequestState(t *testing.T) {
	server, backend, rec := newTestServer(t)
	output, out := addOutput(t, server, "A", 1920, 1080)

	server.HandleOutputRequestState(output, toolkit.OutputState{Enabled: true, Mode: output.Current, Scale: 2})
	assert.Equal(t, geom.Box{Width: 960, Height: 540}, out.FullArea())
	assert.Equal(t, 2, rec.screens)

	server.HandleOutputRequestState(output, toolkit.OutputState{})
	assert.False(t, backend.FakeLayout.Contains(output))
	assert.True(t, out.FullArea().Empty())
}

func TestOutputManagerApply(t *testing.T) {
	server, backend, _ := newTestServer(t)
	a, aOut := addOutput(t, server, "A", 1920, 1080)
	b, bOut := addOutput(t, server, "B", 1280, 720)

	mode := a.ModeList[0]
	config := &toolkittest.OutputConfiguration{HeadList: []toolkit.HeadConfig{
		{Output: a, State: toolkit.OutputState{Enabled: true, Mode: &mode, Scale: 1}, X: 1280, Y: 0},
		{Output: b, State: toolkit.OutputState{Enabled: true, Mode: &b.ModeList[0], Scale: 1}, X: 0, Y: 0},
	}}
	server.HandleOutputManagerApply(config)

	assert.True(t, config.Succeeded)
	assert.True(t, config.Destroyed)
	assert.Equal(t, geom.Box{X: 1280, Width: 1920, Height: 1080}, aOut.FullArea())
	assert.Equal(t, geom.Box{Width: 1280, Height: 720}, bOut.FullArea())
	heads := backend.FakeManager.Last()
	require.Len(t, heads, 2)
	assert.Equal(t, 1280, heads[0].X)

	config = &toolkittest.OutputConfiguration{HeadList: []toolkit.HeadConfig{
		{Output: b, State: toolkit.OutputState{Enabled: false, Scale: 3}},
	}}
	server.HandleOutputManagerApply(config)
	assert.True(t, config.Succeeded)
	assert.False(t, b.On)
	assert.False(t, backend.FakeLayout.Contains(b))
	assert.True(t, bOut.FullArea().Empty())
}

func TestOutputManagerTest(t *testing.T) {
	server, backend, _ := newTestServer(t)
	a, _ := addOutput(t, server, "A", 1920, 1080)
	configs := len(backend.FakeManager.Configurations)
	commits := len(a.Commits)

	config := &toolkittest.OutputConfiguration{HeadList: []toolkit.HeadConfig{
		{Output: a, State: toolkit.OutputState{Enabled: true, Scale: 2}},
	}}
	server.HandleOutputManagerTest(config)
	assert.True(t, config.Succeeded)
	assert.True(t, config.Destroyed)
	assert.Len(t, a.Commits, commits, "tests never commit")
	assert.Len(t, backend.FakeManager.Configurations, configs)

	a.RejectState = true
	config = &toolkittest.OutputConfiguration{HeadList: []toolkit.HeadConfig{
		{Output: a, State: toolkit.OutputState{Enabled: true}},
	}}
	server.HandleOutputManagerTest(config)
	assert.True(t, config.Failed)
	assert.False(t, config.Succeeded)

	config = &toolkittest.OutputConfiguration{HeadList: []toolkit.HeadConfig{
		{Output: toolkittest.NewOutput("ghost", 10, 10), State: toolkit.OutputState{Enabled: true}},
	}}
	server.HandleOutputManagerApply(config)
	assert.True(t, config.Failed, "unknown outputs fail the configuration")
}
