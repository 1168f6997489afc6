// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mstarongithub/tilewl/compositor"
	"github.com/mstarongithub/tilewl/policy"
	"github.com/mstarongithub/tilewl/repl"
	"github.com/mstarongithub/tilewl/util/wrappers"
	"github.com/sirupsen/logrus"
)

func replRunner(loop *eventLoop, host *policy.Policy) {
	// Give repl some wrappers around stdin and stdout so that it closes those instead of stdin & stdout themselves
	commandRepl := repl.NewRepl(wrappers.NewReaderWrapper(os.Stdin), wrappers.NewWriterWrapper(os.Stdout))
	commandRepl.Prompt = "tilewl> "
	registerReplCommands(commandRepl, loop, host)
	logrus.Debugln("Starting repl")
	if err := commandRepl.Run(); err != nil {
		logrus.WithError(err).Errorln("Repl stopped")
	}
}

// registerReplCommands adds the compositor commands. Everything touching the compositor runs on the loop.
func registerReplCommands(r *repl.Repl, loop *eventLoop, host *policy.Policy) {
	r.Handle("run", "run <command>, starts a command through the shell", func(cmd repl.Command) (string, error) {
		if cmd.Rest == "" {
			return "Nothing to run", nil
		}
		if err := host.Spawn(cmd.Rest); err != nil {
			logrus.WithError(err).WithField("command", cmd.Rest).Errorln("Command failed to start")
			return "Failed to run " + cmd.Rest, nil
		}
		return "Running " + cmd.Rest, nil
	})
	r.Handle("inspect", "inspect <cursor|outputs|views|lock|tree>, shows compositor state", func(cmd repl.Command) (string, error) {
		target := cmd.Arg(0)
		logrus.WithFields(logrus.Fields{
			"target": target,
			"args":   cmd.Args,
		}).Debugln("Parsed inspect command")
		var res string
		if err := loop.Do(func() { res = inspect(loop.server, host, target) }); err != nil {
			return "", err
		}
		return res, nil
	})
	r.Handle("quit", "stops the compositor", func(repl.Command) (string, error) {
		if err := loop.Do(loop.Stop); err != nil {
			return "", err
		}
		return "Quitting", repl.ErrQuit
	})
}

func inspect(server *compositor.Server, host *policy.Policy, target string) string {
	var b strings.Builder
	switch target {
	case "cursor":
		x, y := server.CursorPosition()
		fmt.Fprintf(&b, "Cursor: Location (%f:%f) hidden=%v grab=%v", x, y, server.CursorHidden(), server.ImplicitGrabActive())
	case "outputs":
		for i, out := range server.Outputs() {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Output %v: %s enabled=%v full=%s usable=%s", i, out.Name(), out.Enabled(), out.FullArea(), out.UsableArea())
		}
	case "views":
		for i, v := range server.Views() {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "View %d: %s app-id=%q title=%q box=%s layer=%s hidden=%v",
				v.WID(), v.Kind(), v.AppID(), v.Title(), v.Box(), v.Layer(), v.Hidden())
		}
	case "lock":
		fmt.Fprintf(&b, "Lock: %s", server.LockState())
	case "tree":
		trees := host.Trees()
		names := make([]string, 0, len(trees))
		for name := range trees {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Tree %s: %v", name, trees[name])
		}
	default:
		return "Unknown target, one of cursor, outputs, views, lock or tree"
	}
	if b.Len() == 0 {
		return "Nothing to show"
	}
	return b.String()
}
