// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolkit

import "github.com/mstarongithub/tilewl/geom"

// SessionLock is an ext_session_lock_v1 object. Implementations must be comparable.
type SessionLock interface {
	SendLocked()
	Destroy()
}

type LockSurface interface {
	Surface() Surface
	Output() Output
	Configure(width, height int)
}

type ConstraintType int

const (
	ConstraintLocked = ConstraintType(iota)
	ConstraintConfined
)

// PointerConstraint implementations must be comparable
type PointerConstraint interface {
	Surface() Surface
	Type() ConstraintType
	// Region is the client requested region in surface coordinates, empty if unset
	Region() geom.Region
	// CursorHint is the position a locked pointer asks to be left at on unlock
	CursorHint() (sx, sy float64, ok bool)
	SendActivated()
	SendDeactivated()
}
