// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/compositor"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

type StartType string

const (
	// Tells tilewl to start a repl on stdin for interacting with it
	START_REPL = StartType("repl")
	// Tells tilewl to execute a specific command once the compositor runs
	START_SINGLE_COMMAND = StartType("command")
	// Tells tilewl to start without any specific targets
	// Note: Good luck interacting with it :3
	START_NONE = StartType("none")
)

// Location of the config file relative to the xdg config dirs
const RelativePath = "tilewl/config.toml"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	StartType StartType `toml:"start_type" default:"repl"`
	// What command to execute on start. Only matters if StartType is set to START_SINGLE_COMMAND
	StartCommand string `toml:"start_command"`
	LogLevel     string `toml:"log_level" default:"info"`
	// Started by Mod4+Return, $TERMINAL or foot if empty
	Terminal string `toml:"terminal"`
	// Whether to start XWayland. Ignored by backends without XWayland support
	XWayland bool           `toml:"xwayland"`
	Keyboard KeyboardConfig `toml:"keyboard"`
	Cursor   CursorConfig   `toml:"cursor"`
	Borders  BorderConfig   `toml:"borders"`
	Outputs  []OutputConfig `toml:"output"`
}

type KeyboardConfig struct {
	Rules   string `toml:"rules"`
	Model   string `toml:"model"`
	Layout  string `toml:"layout"`
	Variant string `toml:"variant"`
	Options string `toml:"options"`
	// Keys per second, 0 disables repeat
	RepeatRate int32 `toml:"repeat_rate" default:"25"`
	// Milliseconds before repeat starts
	RepeatDelay int32 `toml:"repeat_delay" default:"600"`
}

type CursorConfig struct {
	// Empty selects the default xcursor theme
	Theme string `toml:"theme"`
	Size  uint32 `toml:"size" default:"24"`
}

type BorderConfig struct {
	Width       int    `toml:"width" default:"2"`
	FocusColor  string `toml:"focus_color" default:"#5294e2"`
	NormalColor string `toml:"normal_color" default:"#333333"`
}

// OutputConfig overrides the defaults of one output, matched by name
type OutputConfig struct {
	Name string `toml:"name"`
	// Both X and Y have to be set to pin the output, otherwise it is placed automatically
	X      *int    `toml:"x"`
	Y      *int    `toml:"y"`
	Scale  float32 `toml:"scale"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	// Refresh rate in mHz, 0 picks any
	Refresh  int  `toml:"refresh"`
	Disabled bool `toml:"disabled"`
}

func Default() Config {
	return Config{
		StartType: START_REPL,
		LogLevel:  "info",
		Keyboard: KeyboardConfig{
			RepeatRate:  25,
			RepeatDelay: 600,
		},
		Cursor: CursorConfig{Size: 24},
		Borders: BorderConfig{
			Width:       2,
			FocusColor:  "#5294e2",
			NormalColor: "#333333",
		},
	}
}

// Path finds the config file in the xdg config dirs.
// It returns the path the file would have in XDG_CONFIG_HOME if none exists.
func Path() string {
	if p, err := xdg.SearchConfigFile(RelativePath); err == nil {
		return p
	}
	return filepath.Join(xdg.ConfigHome, RelativePath)
}

// Load reads the config at path. An empty path searches the xdg config dirs.
// A missing file is not an error, the defaults are returned instead.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logrus.WithField("path", path).Debugln("No config file found, using defaults")
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	logrus.WithField("path", path).Infoln("Loaded config")
	return cfg, nil
}

// Parse decodes and validates a TOML document. Missing keys keep their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StartType {
	case START_REPL, START_NONE:
	case START_SINGLE_COMMAND:
		if strings.TrimSpace(c.StartCommand) == "" {
			return fmt.Errorf("%w: start_type %q needs a start_command", ErrInvalidConfig, c.StartType)
		}
	default:
		return fmt.Errorf("%w: unknown start_type %q", ErrInvalidConfig, c.StartType)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Keyboard.RepeatRate < 0 {
		return fmt.Errorf("%w: negative repeat_rate %d", ErrInvalidConfig, c.Keyboard.RepeatRate)
	}
	if c.Keyboard.RepeatDelay < 0 {
		return fmt.Errorf("%w: negative repeat_delay %d", ErrInvalidConfig, c.Keyboard.RepeatDelay)
	}
	if c.Cursor.Size == 0 {
		return fmt.Errorf("%w: cursor size must be positive", ErrInvalidConfig)
	}
	if c.Borders.Width < 0 {
		return fmt.Errorf("%w: negative border width %d", ErrInvalidConfig, c.Borders.Width)
	}
	if _, err := ParseColor(c.Borders.FocusColor); err != nil {
		return fmt.Errorf("%w: focus_color: %w", ErrInvalidConfig, err)
	}
	if _, err := ParseColor(c.Borders.NormalColor); err != nil {
		return fmt.Errorf("%w: normal_color: %w", ErrInvalidConfig, err)
	}
	seen := map[string]bool{}
	for i, o := range c.Outputs {
		if o.Name == "" {
			return fmt.Errorf("%w: output %d has no name", ErrInvalidConfig, i)
		}
		if seen[o.Name] {
			return fmt.Errorf("%w: output %s configured twice", ErrInvalidConfig, o.Name)
		}
		seen[o.Name] = true
		if o.Scale < 0 {
			return fmt.Errorf("%w: output %s has negative scale", ErrInvalidConfig, o.Name)
		}
		if (o.Width == 0) != (o.Height == 0) || o.Width < 0 || o.Height < 0 {
			return fmt.Errorf("%w: output %s needs both width and height", ErrInvalidConfig, o.Name)
		}
	}
	return nil
}

// ParseColor reads #rrggbb or #rrggbbaa
func ParseColor(s string) (toolkit.Color, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return toolkit.Color{}, fmt.Errorf("color %q is not #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return toolkit.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return toolkit.Color{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c *Config) Keymap() toolkit.XKBRules {
	return toolkit.XKBRules{
		Rules:   c.Keyboard.Rules,
		Model:   c.Keyboard.Model,
		Layout:  c.Keyboard.Layout,
		Variant: c.Keyboard.Variant,
		Options: c.Keyboard.Options,
	}
}

// BorderSpecs returns the border of focused and unfocused views.
// Colors are expected to be valid, see Validate.
func (c *Config) BorderSpecs() (focused, normal border.Spec) {
	focusColor, _ := ParseColor(c.Borders.FocusColor)
	normalColor, _ := ParseColor(c.Borders.NormalColor)
	focused = border.Spec{Width: c.Borders.Width, Colors: []toolkit.Color{focusColor}}
	normal = border.Spec{Width: c.Borders.Width, Colors: []toolkit.Color{normalColor}}
	return focused, normal
}

// ServerOptions converts the config into compositor startup options
func (c *Config) ServerOptions() compositor.Options {
	opts := compositor.DefaultOptions()
	opts.Keymap = c.Keymap()
	opts.RepeatRate = c.Keyboard.RepeatRate
	opts.RepeatDelay = c.Keyboard.RepeatDelay
	opts.CursorTheme = c.Cursor.Theme
	opts.CursorSize = c.Cursor.Size
	for _, o := range c.Outputs {
		out := compositor.OutputOptions{
			Name:     o.Name,
			Width:    o.Width,
			Height:   o.Height,
			Refresh:  o.Refresh,
			Scale:    o.Scale,
			Disabled: o.Disabled,
		}
		if o.X != nil && o.Y != nil {
			out.X, out.Y, out.Position = *o.X, *o.Y, true
		}
		opts.Outputs = append(opts.Outputs, out)
	}
	return opts
}
