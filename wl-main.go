// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mstarongithub/tilewl/compositor"
	"github.com/mstarongithub/tilewl/config"
	"github.com/mstarongithub/tilewl/policy"
	"github.com/mstarongithub/tilewl/util/multiplexer"
	"github.com/mstarongithub/tilewl/wlr"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// eventLoop drives the compositor from the main goroutine. Other goroutines
// hand work to it with Do, a pipe wakes the loop up for that.
type eventLoop struct {
	server  *compositor.Server
	wakeR   int
	wakeW   int
	tasks   *multiplexer.ManyToOne[loopTask]
	stopped bool
}

type loopTask struct {
	fn func()
	// Receives whether fn ran
	done chan bool
}

var errLoopClosed = errors.New("event loop is closed")

func newEventLoop(server *compositor.Server) (*eventLoop, error) {
	fds := make([]int, 2)
	if err := unix.Pipe2(fds, unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("creating wake pipe: %w", err)
	}
	return &eventLoop{
		server: server,
		wakeR:  fds[0],
		wakeW:  fds[1],
		tasks:  multiplexer.NewManyToOne(make(chan loopTask, 16)),
	}, nil
}

// Do runs fn on the loop and waits for it to finish.
// It fails without running fn once the loop is closed.
func (l *eventLoop) Do(fn func()) error {
	task := loopTask{fn: fn, done: make(chan bool, 1)}
	if err := l.tasks.Send(task); err != nil {
		return err
	}
	if _, err := unix.Write(l.wakeW, []byte{0}); err != nil && !errors.Is(err, unix.EAGAIN) {
		logrus.WithError(err).Errorln("Failed to wake event loop")
	}
	if ran := <-task.done; !ran {
		return errLoopClosed
	}
	return nil
}

// Stop ends run after the current iteration. Only call it on the loop.
func (l *eventLoop) Stop() { l.stopped = true }

func (l *eventLoop) drain() {
	buf := make([]byte, 64)
	for {
		if n, err := unix.Read(l.wakeR, buf); n <= 0 || err != nil {
			break
		}
	}
	for {
		select {
		case task := <-l.tasks.Receiver():
			task.fn()
			task.done <- true
		default:
			return
		}
	}
}

func (l *eventLoop) run() error {
	fds := []unix.PollFd{
		{Fd: int32(l.server.FD()), Events: unix.POLLIN},
		{Fd: int32(l.wakeR), Events: unix.POLLIN},
	}
	for !l.stopped {
		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("polling event loop: %w", err)
		}
		if fds[1].Revents != 0 {
			l.drain()
		}
		if err := l.server.Poll(); err != nil {
			return fmt.Errorf("dispatching events: %w", err)
		}
	}
	return nil
}

// close releases waiting Do calls without running their tasks
func (l *eventLoop) close() {
	l.tasks.Close()
	for task := range l.tasks.Receiver() {
		task.done <- false
	}
	unix.Close(l.wakeR)
	unix.Close(l.wakeW)
}

func wlMain(conf *config.Config) error {
	wlr.ForwardLogs(conf.Level())

	backend, err := wlr.NewBackend()
	if err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	focused, normal := conf.BorderSpecs()
	var loop *eventLoop
	host := policy.New(policy.Options{
		Terminal: conf.Terminal,
		Focused:  focused,
		Normal:   normal,
		Quit:     func() { loop.Stop() },
	})
	server, err := compositor.NewServer(backend, host.Callbacks(), conf.ServerOptions())
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}
	host.Attach(server)
	if conf.XWayland {
		logrus.Warnln("XWayland is not available with this backend")
	}

	// start the server
	if _, err = server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	defer server.Shutdown()

	loop, err = newEventLoop(server)
	if err != nil {
		return err
	}
	defer loop.close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logrus.WithField("signal", sig).Infoln("Stopping on signal")
		if err := loop.Do(loop.Stop); err != nil {
			logrus.WithError(err).Debugln("Event loop already gone")
		}
	}()

	switch conf.StartType {
	case config.START_REPL:
		go replRunner(loop, host)
	case config.START_SINGLE_COMMAND:
		if err := host.Spawn(conf.StartCommand); err != nil {
			logrus.WithError(err).WithField("command", conf.StartCommand).Errorln("Start command failed")
		}
	case config.START_NONE:
	}

	// start the wayland event loop
	return loop.run()
}
