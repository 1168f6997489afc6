// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/toolkit"
)

type pointerConstraint struct {
	constraint   toolkit.PointerConstraint
	region       geom.Region
	warpRequired bool
}

// updateRegion intersects the requested region with the surface input region
func (c *pointerConstraint) updateRegion() {
	input := c.constraint.Surface().InputRegion()
	requested := c.constraint.Region()
	if requested.Empty() {
		c.region = input
		return
	}
	c.region = requested.Intersect(input)
}

// confine clips a surface local motion to the region. Locked pointers do not move at all.
func (c *pointerConstraint) confine(sx, sy, dx, dy float64) (float64, float64, bool) {
	if c.constraint.Type() == toolkit.ConstraintLocked {
		return 0, 0, true
	}
	x, y, ok := c.region.Confine(sx, sy, sx+dx, sy+dy)
	if !ok {
		return 0, 0, false
	}
	return x - sx, y - sy, true
}

// ActiveConstraintRegion returns the region the pointer is confined to, ok is false without a constraint
func (server *Server) ActiveConstraintRegion() (geom.Region, bool) {
	c := server.pointer.constraint
	if c == nil {
		return geom.Region{}, false
	}
	return c.region, true
}

func (server *Server) HandleNewConstraint(constraint toolkit.PointerConstraint) {
	c := &pointerConstraint{constraint: constraint}
	server.constraints[constraint] = c
	if focus := server.seat.KeyboardFocus(); focus != nil && focus == constraint.Surface() {
		server.activateConstraint(c)
	}
}

func (server *Server) HandleConstraintSetRegion(constraint toolkit.PointerConstraint) {
	c, ok := server.constraints[constraint]
	if !ok {
		return
	}
	c.warpRequired = true
	if server.pointer.constraint == c {
		c.updateRegion()
		server.checkConstraintRegion()
	}
}

func (server *Server) HandleConstraintSurfaceCommit(constraint toolkit.PointerConstraint) {
	c, ok := server.constraints[constraint]
	if !ok || server.pointer.constraint != c {
		return
	}
	c.updateRegion()
	server.checkConstraintRegion()
}

func (server *Server) HandleConstraintDestroy(constraint toolkit.PointerConstraint) {
	c, ok := server.constraints[constraint]
	if !ok {
		return
	}
	delete(server.constraints, constraint)
	if server.pointer.constraint == c {
		server.pointer.constraint = nil
		server.warpToHint(c)
	}
}

func (server *Server) activateConstraint(c *pointerConstraint) {
	if server.pointer.constraint == c {
		return
	}
	server.deactivateConstraint()
	server.pointer.constraint = c
	c.warpRequired = true
	c.updateRegion()
	c.constraint.SendActivated()
	server.checkConstraintRegion()
}

func (server *Server) deactivateConstraint() {
	c := server.pointer.constraint
	if c == nil {
		return
	}
	server.pointer.constraint = nil
	server.warpToHint(c)
	c.constraint.SendDeactivated()
}

// constraintFocusChanged activates the constraint of the new keyboard focus, if any
func (server *Server) constraintFocusChanged(surface toolkit.Surface) {
	if c := server.pointer.constraint; c != nil && c.constraint.Surface() != surface {
		server.deactivateConstraint()
	}
	if surface == nil {
		return
	}
	for _, c := range server.constraints {
		if c.constraint.Surface() == surface {
			server.activateConstraint(c)
			return
		}
	}
}

// surfaceOrigin is the layout position of a view's surface
func (server *Server) surfaceOrigin(surface toolkit.Surface) (float64, float64, bool) {
	view, ok := server.surfaceViews[surface]
	if !ok {
		return 0, 0, false
	}
	x, y := view.base().contentOrigin()
	return x, y, true
}

// checkConstraintRegion pulls the cursor into a freshly activated or changed region
func (server *Server) checkConstraintRegion() {
	c := server.pointer.constraint
	if c == nil || !c.warpRequired || c.region.Empty() {
		return
	}
	c.warpRequired = false
	ox, oy, ok := server.surfaceOrigin(c.constraint.Surface())
	if !ok {
		return
	}
	if c.region.Contains(server.cursor.X()-ox, server.cursor.Y()-oy) {
		return
	}
	cx, cy := c.region.Rects()[0].Center()
	server.cursor.WarpClosest(nil, ox+cx, oy+cy)
	server.seat.PointerWarp(cx, cy)
}

// warpToHint leaves the cursor where a locked pointer client asked for
func (server *Server) warpToHint(c *pointerConstraint) {
	sx, sy, ok := c.constraint.CursorHint()
	if !ok {
		return
	}
	ox, oy, ok := server.surfaceOrigin(c.constraint.Surface())
	if !ok {
		return
	}
	server.cursor.WarpClosest(nil, ox+sx, oy+sy)
	server.seat.PointerWarp(sx, sy)
}
