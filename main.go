// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"

	"github.com/mstarongithub/tilewl/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "tilewl",
		Short: "tilewl - a tiling Wayland compositor",
		Long: `tilewl runs a Wayland compositor that tiles windows in a binary tree.
Without a subcommand it starts the compositor, "tool" offers helpers for writing a config.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			return wlMain(&conf)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file. Searched in the xdg config dirs if unset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Overrides the log level of the config")
	rootCmd.AddCommand(toolCmd)
}

// loadConfig reads the config and sets up logging from it
func loadConfig() (config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		conf.LogLevel = logLevel
		if err := conf.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	logrus.SetLevel(conf.Level())
	logrus.WithField("level", conf.Level()).Debugln("Log level set")
	return conf, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
