// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package compositor

import (
	"fmt"
	"image"
	"os"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/geom"
	"github.com/mstarongithub/tilewl/scene"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/sirupsen/logrus"
)

// InternalView is a compositor drawn window, e.g. a bar. The host draws into Image.
type InternalView struct {
	*viewBase
	image     *image.RGBA
	buffer    toolkit.Buffer
	destroyed bool
}

// NewInternalView creates a hidden internal view
func (server *Server) NewInternalView(x, y, width, height int) (*InternalView, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	base, err := newViewBase(server, scene.LayerLayout)
	if err != nil {
		return nil, err
	}
	content, err := base.tree.NewTree()
	if err != nil {
		base.destroy()
		return nil, err
	}
	base.content = content
	base.wid = -1
	view := &InternalView{viewBase: base}
	if err := view.allocate(width, height); err != nil {
		base.destroy()
		return nil, err
	}
	base.box = geom.Box{X: x, Y: y, Width: width, Height: height}
	base.tree.Node().SetPosition(x, y)
	base.bind(view)
	view.hide()
	server.addView(view)
	return view, nil
}

// allocate replaces image and buffer with fresh ones of the given size.
// On failure the old image and buffer stay in place.
func (v *InternalView) allocate(width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	buffer, err := v.content.NewBuffer(img)
	if err != nil {
		return fmt.Errorf("allocating %dx%d buffer: %w", width, height, err)
	}
	if v.buffer != nil {
		v.buffer.Node().Destroy()
	}
	v.image = img
	v.buffer = buffer
	buffer.SetImage(img, nil)
	return nil
}

func (v *InternalView) Kind() ViewKind           { return ViewInternal }
func (v *InternalView) Title() string            { return "" }
func (v *InternalView) AppID() string            { return "" }
func (v *InternalView) PID() int                 { return os.Getpid() }
func (v *InternalView) surface() toolkit.Surface { return nil }
func (v *InternalView) activate(bool)            {}

// Image is the pixel data shown by the view. It is replaced when the size changes.
func (v *InternalView) Image() *image.RGBA { return v.image }

func (v *InternalView) Place(x, y, width, height int, borders border.Spec, raise bool) {
	if v.destroyed {
		return
	}
	if width != v.box.Width || height != v.box.Height {
		if width <= 0 || height <= 0 {
			logrus.WithError(ErrInvalidGeometry).WithFields(logrus.Fields{
				"width":  width,
				"height": height,
			}).Errorln("Refusing to resize internal view")
			return
		}
		if err := v.allocate(width, height); err != nil {
			logrus.WithError(err).Errorln("Failed to resize internal view")
			return
		}
	}
	v.place(x, y, width, height, borders, raise)
}

// Focus raises the view, internal views never take keyboard focus
func (v *InternalView) Focus(warp bool) {
	v.BringToFront()
	if warp {
		x, y := v.box.Center()
		v.server.WarpCursor(x, y)
	}
}

// Kill destroys the view
func (v *InternalView) Kill() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.server.removeView(v)
	v.destroy()
}

func (v *InternalView) Hide() { v.hide() }

// SetBuffer pushes the whole image to the screen
func (v *InternalView) SetBuffer() {
	if v.destroyed {
		return
	}
	v.buffer.SetImage(v.image, nil)
}

// SetBufferWithDamage pushes the image, only the given rect is redrawn
func (v *InternalView) SetBufferWithDamage(x, y, width, height int) error {
	if v.destroyed {
		return nil
	}
	damage := geom.Box{X: x, Y: y, Width: width, Height: height}
	if !v.contains(damage) {
		logrus.WithError(ErrInvalidGeometry).WithField("damage", damage).Errorln("Damage outside internal view")
		return ErrInvalidGeometry
	}
	v.buffer.SetImage(v.image, []geom.Box{damage})
	return nil
}

// SubImage returns a drawable part of the image, nil if the rect is out of bounds
func (v *InternalView) SubImage(x, y, width, height int) *image.RGBA {
	rect := geom.Box{X: x, Y: y, Width: width, Height: height}
	if !v.contains(rect) {
		logrus.WithError(ErrInvalidGeometry).WithField("rect", rect).Errorln("Sub image outside internal view")
		return nil
	}
	return v.image.SubImage(image.Rect(x, y, x+width, y+height)).(*image.RGBA)
}

func (v *InternalView) contains(rect geom.Box) bool {
	bounds := v.image.Bounds()
	return rect.Width > 0 && rect.Height > 0 && rect.X >= 0 && rect.Y >= 0 &&
		rect.X+rect.Width <= bounds.Dx() && rect.Y+rect.Height <= bounds.Dy()
}
