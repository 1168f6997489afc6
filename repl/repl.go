// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package repl reads control commands line by line and writes back their results
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrQuit ends Run without an error when a handler returns it
var ErrQuit = errors.New("repl quit")

// Command is one parsed input line
type Command struct {
	Name string
	Args []string
	// Rest is everything after the name, untouched
	Rest string
}

// Arg returns the i-th argument or an empty string
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// ParseCommand splits a line into a command. ok is false for blank lines.
func ParseCommand(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, false
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	return Command{
		Name: name,
		Args: strings.Fields(rest),
		Rest: rest,
	}, true
}

type Handler func(cmd Command) (string, error)

type entry struct {
	usage   string
	handler Handler
}

type Repl struct {
	Input  io.ReadCloser
	Output io.WriteCloser
	// Prompt is written before every line, nothing if empty
	Prompt   string
	commands map[string]entry
	scanner  *bufio.Scanner
	writer   *bufio.Writer
}

// Creates a new repl
// If no input is given, stdin will be used
// If no output is given, stdout will be used
// Note: The given reader and writer will be closed once the repl stops
func NewRepl(in io.ReadCloser, out io.WriteCloser) *Repl {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Repl{
		Input:    in,
		Output:   out,
		commands: map[string]entry{},
		scanner:  bufio.NewScanner(in),
		writer:   bufio.NewWriter(out),
	}
}

// Handle registers a command. Registering a name twice replaces the old handler.
func (r *Repl) Handle(name, usage string, handler Handler) {
	r.commands[name] = entry{usage: usage, handler: handler}
}

// Help lists all commands with their usage, sorted by name
func (r *Repl) Help() string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s - %s", name, r.commands[name].usage))
	}
	return strings.Join(lines, "\n")
}

func (r *Repl) dispatch(cmd Command) (string, error) {
	if cmd.Name == "help" {
		return r.Help(), nil
	}
	e, ok := r.commands[cmd.Name]
	if !ok {
		return fmt.Sprintf("Unknown command %q, try help", cmd.Name), nil
	}
	return e.handler(cmd)
}

func (r *Repl) write(s string) error {
	if _, err := r.writer.WriteString(s); err != nil {
		return fmt.Errorf("failed to write %q: %w", s, err)
	}
	if err := r.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// Run blocks until the input ends, a handler returns ErrQuit or something fails.
// The repl is closed afterwards in every case.
func (r *Repl) Run() error {
	defer r.Close()
	for {
		if r.Prompt != "" {
			if err := r.write(r.Prompt); err != nil {
				return err
			}
		}
		if !r.scanner.Scan() {
			return r.scanner.Err()
		}
		cmd, ok := ParseCommand(r.scanner.Text())
		if !ok {
			continue
		}
		res, err := r.dispatch(cmd)
		quit := errors.Is(err, ErrQuit)
		if err != nil && !quit {
			return fmt.Errorf("command %q failed: %w", cmd.Name, err)
		}
		if res != "" {
			if werr := r.write(res + "\n"); werr != nil {
				return werr
			}
		}
		if quit {
			return nil
		}
	}
}

// Close stops the repl if it was still running
// This will also close the reader and writer
func (r *Repl) Close() {
	r.Input.Close()
	r.Output.Close()
}
