/*
Copyright © 2018 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package modify

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Pixel is a position on the screen; Y grows downwards.
type Pixel struct {
	X, Y float64
}

// Viewport converts between pixels and view-projection coordinates.
type Viewport interface {
	// Resolution is the number of view-projection units per pixel.
	Resolution() float64

	// Projection is the view projection. It may be nil, in which case
	// no reprojection is ever performed.
	Projection() *proj.SR

	// Extent is the visible extent in view-projection units.
	Extent() *geom.Bounds

	PixelFromCoordinate(geom.Point) Pixel
	CoordinateFromPixel(Pixel) geom.Point
}

// View is a simple Viewport centred on Center.
type View struct {
	Center        geom.Point
	Res           float64
	Width, Height float64
	SR            *proj.SR
}

// Resolution implements Viewport.
func (v *View) Resolution() float64 { return v.Res }

// Projection implements Viewport.
func (v *View) Projection() *proj.SR { return v.SR }

// Extent implements Viewport.
func (v *View) Extent() *geom.Bounds {
	dx, dy := v.Width*v.Res/2, v.Height*v.Res/2
	return &geom.Bounds{
		Min: geom.Point{X: v.Center.X - dx, Y: v.Center.Y - dy},
		Max: geom.Point{X: v.Center.X + dx, Y: v.Center.Y + dy},
	}
}

// PixelFromCoordinate implements Viewport.
func (v *View) PixelFromCoordinate(p geom.Point) Pixel {
	return Pixel{
		X: (p.X-v.Center.X)/v.Res + v.Width/2,
		Y: (v.Center.Y-p.Y)/v.Res + v.Height/2,
	}
}

// CoordinateFromPixel implements Viewport.
func (v *View) CoordinateFromPixel(p Pixel) geom.Point {
	return geom.Point{
		X: v.Center.X + (p.X-v.Width/2)*v.Res,
		Y: v.Center.Y - (p.Y-v.Height/2)*v.Res,
	}
}

// projector converts between the user projection, in which features and
// segment records are stored, and the view projection.
type projector struct {
	toView, toUser proj.Transformer
}

// newProjector creates a projector. It is the identity when either
// projection is unset.
func newProjector(user, view *proj.SR) (*projector, error) {
	if user == nil || view == nil {
		return &projector{}, nil
	}
	toView, err := user.NewTransform(view)
	if err != nil {
		return nil, fmt.Errorf("modify: creating user to view transform: %v", err)
	}
	toUser, err := view.NewTransform(user)
	if err != nil {
		return nil, fmt.Errorf("modify: creating view to user transform: %v", err)
	}
	return &projector{toView: toView, toUser: toUser}, nil
}

func apply(t proj.Transformer, p geom.Point) geom.Point {
	if t == nil {
		return p
	}
	x, y, err := t(p.X, p.Y)
	if err != nil {
		return p
	}
	return geom.Point{X: x, Y: y}
}

func (pr *projector) fromUser(p geom.Point) geom.Point { return apply(pr.toView, p) }
func (pr *projector) toUserPoint(p geom.Point) geom.Point {
	return apply(pr.toUser, p)
}

// toUserExtent returns the user-projection bounds of a view extent.
func (pr *projector) toUserExtent(b *geom.Bounds) *geom.Bounds {
	if pr.toUser == nil {
		return b.Copy()
	}
	o := geom.NewBounds()
	for _, p := range []geom.Point{b.Min, b.Max, {X: b.Min.X, Y: b.Max.Y}, {X: b.Max.X, Y: b.Min.Y}} {
		o.Extend(geom.NewBoundsPoint(pr.toUserPoint(p)))
	}
	return o
}

// circleInView returns the centre and radius of c in the view projection.
func (pr *projector) circleInView(c *Circle) (geom.Point, float64) {
	center := pr.fromUser(c.Center.Point())
	if pr.toView == nil {
		return center, c.Radius
	}
	edge := pr.fromUser(geom.Point{X: c.Center[0] + c.Radius, Y: c.Center[1]})
	return center, distance(center, edge)
}

// radiusToUser converts a view-projection radius around c's centre into
// user-projection units.
func (pr *projector) radiusToUser(c *Circle, radius float64) float64 {
	if pr.toUser == nil {
		return radius
	}
	center := pr.fromUser(c.Center.Point())
	edge := pr.toUserPoint(geom.Point{X: center.X + radius, Y: center.Y})
	return distance(c.Center.Point(), edge)
}
