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
	"math"

	"github.com/ctessum/geom"
)

// GeometryType identifies the variant of a Geometry.
type GeometryType string

// These are the geometry variants the engine knows how to edit.
const (
	PointType              GeometryType = "Point"
	MultiPointType         GeometryType = "MultiPoint"
	LineStringType         GeometryType = "LineString"
	MultiLineStringType    GeometryType = "MultiLineString"
	PolygonType            GeometryType = "Polygon"
	MultiPolygonType       GeometryType = "MultiPolygon"
	CircleType             GeometryType = "Circle"
	GeometryCollectionType GeometryType = "GeometryCollection"
)

// Coordinate is a position with two or more components. Components past
// the second (e.g., elevation) are carried along but never interpreted.
type Coordinate []float64

// NewCoordinate returns a two-dimensional coordinate.
func NewCoordinate(x, y float64) Coordinate { return Coordinate{x, y} }

// Point returns the horizontal part of c.
func (c Coordinate) Point() geom.Point { return geom.Point{X: c[0], Y: c[1]} }

// Equal2D returns whether c and c2 share the same horizontal position.
func (c Coordinate) Equal2D(c2 Coordinate) bool {
	return c[0] == c2[0] && c[1] == c2[1]
}

// Copy returns a copy of c.
func (c Coordinate) Copy() Coordinate {
	o := make(Coordinate, len(c))
	copy(o, c)
	return o
}

// Geometry is implemented by every geometry a Feature can hold. Geometry
// implementations other than the ones in this package are valid but are
// not editable.
type Geometry interface {
	Type() GeometryType
	Bounds() *geom.Bounds
}

// Point is a single position.
type Point struct {
	Coord Coordinate
}

// MultiPoint is a set of positions.
type MultiPoint struct {
	Coords []Coordinate
}

// LineString is an ordered list of positions.
type LineString struct {
	Coords []Coordinate
}

// MultiLineString is a list of LineString coordinate arrays.
type MultiLineString struct {
	Lines [][]Coordinate
}

// Polygon is a list of closed rings; the first and last position of each
// ring are equal.
type Polygon struct {
	Rings [][]Coordinate
}

// MultiPolygon is a list of Polygon ring lists.
type MultiPolygon struct {
	Polygons [][][]Coordinate
}

// Circle is an analytic circle. Radius is in the units of Center.
type Circle struct {
	Center Coordinate
	Radius float64
}

// GeometryCollection holds heterogeneous geometries.
type GeometryCollection struct {
	Geometries []Geometry
}

func (*Point) Type() GeometryType              { return PointType }
func (*MultiPoint) Type() GeometryType         { return MultiPointType }
func (*LineString) Type() GeometryType         { return LineStringType }
func (*MultiLineString) Type() GeometryType    { return MultiLineStringType }
func (*Polygon) Type() GeometryType            { return PolygonType }
func (*MultiPolygon) Type() GeometryType       { return MultiPolygonType }
func (*Circle) Type() GeometryType             { return CircleType }
func (*GeometryCollection) Type() GeometryType { return GeometryCollectionType }

func extendCoords(b *geom.Bounds, coords []Coordinate) {
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		b.Extend(geom.NewBoundsPoint(c.Point()))
	}
}

// Bounds gives the rectangular extent of p. An empty point has empty
// bounds.
func (p *Point) Bounds() *geom.Bounds {
	if len(p.Coord) < 2 {
		return geom.NewBounds()
	}
	return geom.NewBoundsPoint(p.Coord.Point())
}

// Bounds gives the rectangular extent of mp.
func (mp *MultiPoint) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	extendCoords(b, mp.Coords)
	return b
}

// Bounds gives the rectangular extent of l.
func (l *LineString) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	extendCoords(b, l.Coords)
	return b
}

// Bounds gives the rectangular extent of ml.
func (ml *MultiLineString) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, l := range ml.Lines {
		extendCoords(b, l)
	}
	return b
}

// Bounds gives the rectangular extent of p.
func (p *Polygon) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, r := range p.Rings {
		extendCoords(b, r)
	}
	return b
}

// Bounds gives the rectangular extent of mp.
func (mp *MultiPolygon) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, p := range mp.Polygons {
		for _, r := range p {
			extendCoords(b, r)
		}
	}
	return b
}

// Bounds gives the rectangular extent of c.
func (c *Circle) Bounds() *geom.Bounds {
	if len(c.Center) < 2 {
		return geom.NewBounds()
	}
	return &geom.Bounds{
		Min: geom.Point{X: c.Center[0] - c.Radius, Y: c.Center[1] - c.Radius},
		Max: geom.Point{X: c.Center[0] + c.Radius, Y: c.Center[1] + c.Radius},
	}
}

// Bounds gives the rectangular extent of gc.
func (gc *GeometryCollection) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, g := range gc.Geometries {
		if g != nil {
			b.Extend(g.Bounds())
		}
	}
	return b
}

// component returns the coordinate array of g that is located by depth,
// or nil if g has no editable coordinate arrays.
func component(g Geometry, depth []int) *[]Coordinate {
	switch t := g.(type) {
	case *LineString:
		return &t.Coords
	case *MultiLineString:
		return &t.Lines[depth[0]]
	case *Polygon:
		return &t.Rings[depth[0]]
	case *MultiPolygon:
		return &t.Polygons[depth[1]][depth[0]]
	default:
		return nil
	}
}

// circleSides is the number of sides of the polygon used to approximate
// a circle's circumference.
const circleSides = 32

// circlePolygon returns a closed ring approximating a circle.
func circlePolygon(center geom.Point, radius float64) []geom.Point {
	ring := make([]geom.Point, circleSides+1)
	for i := 0; i < circleSides; i++ {
		a := 2 * math.Pi * float64(i) / circleSides
		ring[i] = geom.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	ring[circleSides] = ring[0]
	return ring
}

// closestOnCircle returns the point on the circumference nearest to p.
func closestOnCircle(center geom.Point, radius float64, p geom.Point) geom.Point {
	dx, dy := p.X-center.X, p.Y-center.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return geom.Point{X: center.X + radius, Y: center.Y}
	}
	return geom.Point{X: center.X + dx/d*radius, Y: center.Y + dy/d*radius}
}

// closestOnSegment returns the point of segment [a, b] nearest to p.
func closestOnSegment(p, a, b geom.Point) geom.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	along := 0.0
	if dx != 0 || dy != 0 {
		along = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
		along = math.Max(0, math.Min(1, along))
	}
	return geom.Point{X: a.X + along*dx, Y: a.Y + along*dy}
}

func squaredDistance(a, b geom.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// withExtra returns vertex extended with the components of template that
// vertex lacks.
func withExtra(vertex, template Coordinate) Coordinate {
	o := vertex.Copy()
	for len(o) < len(template) {
		o = append(o, template[len(o)])
	}
	return o
}

func distance(a, b geom.Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }
