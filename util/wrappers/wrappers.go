// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package wrappers puts closable fronts on readers and writers that must stay open,
// like stdin and stdout. Closing a wrapper never touches what it wraps.
package wrappers

import (
	"errors"
	"io"
	"sync/atomic"
)

var ErrClosed = errors.New("closed")

// closeFlag is shared by both wrappers. Close may race with a blocked Read.
type closeFlag struct {
	closed atomic.Bool
}

func (c *closeFlag) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *closeFlag) Closed() bool { return c.closed.Load() }

type ReaderWrapper struct {
	closeFlag
	wrapped io.Reader
}

func NewReaderWrapper(wraps io.Reader) *ReaderWrapper {
	return &ReaderWrapper{wrapped: wraps}
}

// Read fails with ErrClosed after Close. A read already blocked keeps waiting on the wrapped reader.
func (r *ReaderWrapper) Read(p []byte) (int, error) {
	if r.Closed() {
		return 0, ErrClosed
	}
	return r.wrapped.Read(p)
}

type WriterWrapper struct {
	closeFlag
	wrapped io.Writer
}

func NewWriterWrapper(wraps io.Writer) *WriterWrapper {
	return &WriterWrapper{wrapped: wraps}
}

func (w *WriterWrapper) Write(p []byte) (int, error) {
	if w.Closed() {
		return 0, ErrClosed
	}
	return w.wrapped.Write(p)
}
