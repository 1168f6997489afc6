// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"

	"github.com/mstarongithub/tilewl/common/ipc"
	"github.com/mstarongithub/tilewl/compositor"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/wlr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	outputSelection string
	outputFormat    string

	toolCmd = &cobra.Command{
		Use:   "tool",
		Short: "Tools for figuring out configurations and similar",
	}

	toolOutputsCmd = &cobra.Command{
		Use:   "outputs",
		Short: "List available outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return utilMain(ipc.OutputRequest{})
		},
	}

	toolModesCmd = &cobra.Command{
		Use:   "modes",
		Short: "List available modes for an output",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputSelection == "" {
				return fmt.Errorf("output has to be specified with --output")
			}
			return utilMain(ipc.OutputRequest{
				IncludeModes:    true,
				SpecifiesOutput: true,
				TargetOutput:    outputSelection,
			})
		},
	}
)

func init() {
	toolCmd.PersistentFlags().StringVar(&outputFormat, "format", string(ipc.FormatText), "Output format, one of text, json or yaml")
	toolModesCmd.Flags().StringVar(&outputSelection, "output", "", "Output to list the modes of")
	toolCmd.AddCommand(toolOutputsCmd, toolModesCmd)
}

// utilMain starts a compositor without clients, just long enough for the
// backend to report its outputs
func utilMain(req ipc.OutputRequest) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	wlr.ForwardLogs(conf.Level())

	backend, err := wlr.NewBackend()
	if err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	server, err := compositor.NewServer(backend, compositor.Callbacks{}, compositor.DefaultOptions())
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}
	if _, err = server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	defer server.Shutdown()
	if err = server.Poll(); err != nil {
		return fmt.Errorf("collecting outputs: %w", err)
	}

	outputs := []toolkit.Output{}
	for _, out := range server.Outputs() {
		outputs = append(outputs, out.Toolkit())
	}
	res := ipc.Answer(req, outputs)
	logrus.WithField("found", res.OutputsFound).Debugln("Collected outputs")
	if req.SpecifiesOutput && res.OutputsFound == 0 {
		return fmt.Errorf("output %s not found", req.TargetOutput)
	}
	return res.Write(os.Stdout, ipc.Format(outputFormat))
}
