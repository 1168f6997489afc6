// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ipc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mstarongithub/tilewl/toolkit"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText = Format("text")
	FormatJSON = Format("json")
	FormatYAML = Format("yaml")
)

type (
	// A request to list the available Outputs
	OutputRequest struct {
		// Whether to include the modes an output supports
		IncludeModes bool `json:"include_modes" yaml:"include_modes"`
		// Target one specific output
		SpecifiesOutput bool `json:"specifies_output" yaml:"specifies_output"`
		// Name of the output you want info on. Only matters if SpecifiesOutput is set
		TargetOutput string `json:"target_output" yaml:"target_output"`
	}

	// A mode an output supports
	OutputMode struct {
		// Mode height in pixel
		Height int `json:"height" yaml:"height"`
		// Mode width in pixel
		Width int `json:"width" yaml:"width"`
		// Refresh rate of the mode in millihertz
		RefreshRate int  `json:"refresh_rate" yaml:"refresh_rate"`
		Preferred   bool `json:"preferred" yaml:"preferred"`
	}

	// Response to a OutputRequest message
	OutputResponse struct {
		// List of all outputs. Only contains target output if specified
		Outputs []string `json:"outputs" yaml:"outputs"`
		// A list of modes an output supports. Only set if IncludeModes is true
		OutputModes map[string][]OutputMode `json:"output_modes,omitempty" yaml:"output_modes,omitempty"`
		// Nr of outputs found
		OutputsFound int `json:"outputs_found" yaml:"outputs_found"`
	}
)

// Answer builds the response to req from the outputs the backend knows
func Answer(req OutputRequest, outputs []toolkit.Output) OutputResponse {
	if req.SpecifiesOutput {
		outputs = sliceutils.Filter(outputs, func(o toolkit.Output) bool {
			return o.Name() == req.TargetOutput
		})
	}
	res := OutputResponse{Outputs: []string{}, OutputsFound: len(outputs)}
	if req.IncludeModes {
		res.OutputModes = map[string][]OutputMode{}
	}
	for _, o := range outputs {
		res.Outputs = append(res.Outputs, o.Name())
		if !req.IncludeModes {
			continue
		}
		modes := []OutputMode{}
		for _, m := range o.Modes() {
			modes = append(modes, OutputMode{
				Width:       m.Width,
				Height:      m.Height,
				RefreshRate: m.Refresh,
				Preferred:   m.Preferred,
			})
		}
		res.OutputModes[o.Name()] = modes
	}
	return res
}

// Write prints the response in the given format
func (r OutputResponse) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	case FormatText, "":
		return r.writeText(w)
	}
	return fmt.Errorf("unknown format %q", format)
}

func (r OutputResponse) writeText(w io.Writer) error {
	for i, name := range r.Outputs {
		if _, err := fmt.Fprintf(w, "Output %v: %s\n", i, name); err != nil {
			return err
		}
		for _, mode := range r.OutputModes[name] {
			suffix := ""
			if mode.Preferred {
				suffix = " (preferred)"
			}
			if _, err := fmt.Fprintf(w, "\t- %dx%d@%d%s\n", mode.Width, mode.Height, mode.RefreshRate, suffix); err != nil {
				return err
			}
		}
	}
	return nil
}
