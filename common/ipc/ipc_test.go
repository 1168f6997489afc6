package ipc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/toolkit/toolkittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func outputs() []toolkit.Output {
	return []toolkit.Output{
		toolkittest.NewOutput("DP-1", 2560, 1440),
		toolkittest.NewOutput("eDP-1", 1920, 1080),
	}
}

func TestAnswerAll(t *testing.T) {
	res := Answer(OutputRequest{}, outputs())
	assert.Equal(t, []string{"DP-1", "eDP-1"}, res.Outputs)
	assert.Equal(t, 2, res.OutputsFound)
	assert.Nil(t, res.OutputModes)
}

func TestAnswerTargetWithModes(t *testing.T) {
	res := Answer(OutputRequest{IncludeModes: true, SpecifiesOutput: true, TargetOutput: "eDP-1"}, outputs())
	assert.Equal(t, []string{"eDP-1"}, res.Outputs)
	assert.Equal(t, 1, res.OutputsFound)
	assert.Equal(t, []OutputMode{{Width: 1920, Height: 1080, RefreshRate: 60000, Preferred: true}}, res.OutputModes["eDP-1"])

	res = Answer(OutputRequest{SpecifiesOutput: true, TargetOutput: "HDMI-A-1"}, outputs())
	assert.Zero(t, res.OutputsFound)
	assert.Empty(t, res.Outputs)
}

func TestWriteFormats(t *testing.T) {
	res := Answer(OutputRequest{IncludeModes: true}, outputs())

	var buf bytes.Buffer
	require.NoError(t, res.Write(&buf, FormatJSON))
	var fromJSON OutputResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, res, fromJSON)

	buf.Reset()
	require.NoError(t, res.Write(&buf, FormatYAML))
	var fromYAML OutputResponse
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, res, fromYAML)

	buf.Reset()
	require.NoError(t, res.Write(&buf, FormatText))
	assert.Contains(t, buf.String(), "Output 1: eDP-1\n\t- 1920x1080@60000 (preferred)\n")

	assert.Error(t, res.Write(&buf, Format("xml")))
}
