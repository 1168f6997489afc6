// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkittest

import (
	"github.com/mstarongithub/tilewl/toolkit"
)

// Backend bundles all fakes. Events are delivered by calling the handler directly.
type Backend struct {
	FakeScene   *Scene
	FakeLayout  *Layout
	FakeSeat    *Seat
	FakeCursor  *Cursor
	FakeManager *OutputManager
	Handler     toolkit.EventHandler

	SocketName string
	Started    bool
	Polls      int
	Destroyed  bool
}

func NewBackend() *Backend {
	return &Backend{
		FakeScene:   NewScene(),
		FakeLayout:  &Layout{},
		FakeSeat:    &Seat{},
		FakeCursor:  &Cursor{},
		FakeManager: &OutputManager{},
		SocketName:  "wayland-0",
	}
}

func (b *Backend) Scene() toolkit.Scene                 { return b.FakeScene }
func (b *Backend) Layout() toolkit.OutputLayout         { return b.FakeLayout }
func (b *Backend) Seat() toolkit.Seat                   { return b.FakeSeat }
func (b *Backend) Cursor() toolkit.Cursor               { return b.FakeCursor }
func (b *Backend) OutputManager() toolkit.OutputManager { return b.FakeManager }
func (b *Backend) SetHandler(h toolkit.EventHandler)    { b.Handler = h }
func (b *Backend) AddSocket() (string, error)           { return b.SocketName, nil }
func (b *Backend) Start() error                         { b.Started = true; return nil }
func (b *Backend) FD() int                              { return -1 }
func (b *Backend) Poll() error                          { b.Polls++; return nil }
func (b *Backend) Destroy()                             { b.Destroyed = true }
