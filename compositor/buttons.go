// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import "github.com/mstarongithub/tilewl/toolkit"

// Raw button codes as reported by the kernel, plus the codes used for scroll buttons
const (
	BtnLeft        = 0x110
	BtnRight       = 0x111
	BtnMiddle      = 0x112
	BtnSide        = 0x113
	BtnExtra       = 0x114
	BtnScrollUp    = 0x300
	BtnScrollDown  = 0x301
	BtnScrollLeft  = 0x302
	BtnScrollRight = 0x303
)

// Button indices handed to the host
const (
	ButtonLeft = iota + 1
	ButtonMiddle
	ButtonRight
	ButtonScrollUp
	ButtonScrollDown
	ButtonScrollLeft
	ButtonScrollRight
	ButtonSide
	ButtonExtra
)

// ButtonIndex translates a raw button code into a host button index, 0 if unknown
func ButtonIndex(code uint32) int {
	switch code {
	case BtnLeft:
		return ButtonLeft
	case BtnMiddle:
		return ButtonMiddle
	case BtnRight:
		return ButtonRight
	case BtnScrollUp:
		return ButtonScrollUp
	case BtnScrollDown:
		return ButtonScrollDown
	case BtnScrollLeft:
		return ButtonScrollLeft
	case BtnScrollRight:
		return ButtonScrollRight
	case BtnSide:
		return ButtonSide
	case BtnExtra:
		return ButtonExtra
	}
	return 0
}

// scrollButton picks the scroll button index for an axis event, 0 for a zero delta
func scrollButton(orientation toolkit.AxisOrientation, delta float64) int {
	switch {
	case delta == 0:
		return 0
	case orientation == toolkit.AxisVertical && delta < 0:
		return ButtonScrollUp
	case orientation == toolkit.AxisVertical:
		return ButtonScrollDown
	case delta < 0:
		return ButtonScrollLeft
	default:
		return ButtonScrollRight
	}
}
