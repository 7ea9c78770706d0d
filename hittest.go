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
	"github.com/gonum/floats"
)

// Hit is the result of a hit test.
type Hit struct {
	// Segment is the record closest to the pointer.
	Segment SegmentData

	// Vertex is the closest point on Segment or, when Snapped is true, the
	// end point of Segment the pointer snapped to.
	Vertex Coordinate

	Snapped bool
}

// hit is the internal result of a hit test.
type hit struct {
	record   *SegmentData
	vertex   Coordinate
	snapped  bool
	segments map[SegmentID]bool
	offset   Pixel
}

// HitTest returns the segment record under pixel, whose user-projection
// coordinate is coord, if any lies within the pixel tolerance.
func (e *Engine) HitTest(pixel Pixel, coord Coordinate) (Hit, bool) {
	h, ok := e.hitTest(pixel, coord)
	if !ok {
		return Hit{}, false
	}
	return Hit{Segment: *h.record, Vertex: h.vertex, Snapped: h.snapped}, true
}

// handlePointerAtPixel updates the vertex marker and the hover state for
// the pointer at pixel.
func (e *Engine) handlePointerAtPixel(pixel Pixel, coord Coordinate) {
	h, ok := e.hitTest(pixel, coord)
	if !ok {
		e.removeMarker()
		e.vertexSegments = nil
		e.hoverOffset = Pixel{}
		return
	}
	e.vertexSegments = h.segments
	e.hoverOffset = h.offset
	e.setMarker(h.vertex, []*Feature{h.record.Feature}, []Geometry{h.record.Geometry})
}

// pixelOf returns the pixel of a user-projection coordinate.
func (e *Engine) pixelOf(c Coordinate) Pixel {
	return e.opts.Viewport.PixelFromCoordinate(e.proj.fromUser(c.Point()))
}

// coordinateOf returns the user-projection coordinate of a pixel.
func (e *Engine) coordinateOf(p Pixel) Coordinate {
	u := e.proj.toUserPoint(e.opts.Viewport.CoordinateFromPixel(p))
	return Coordinate{u.X, u.Y}
}

func pixelDistance(a, b Pixel) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}

func (e *Engine) hitTest(pixel Pixel, coord Coordinate) (*hit, bool) {
	tol := e.opts.PixelTolerance
	vp := e.opts.Viewport

	var candidates []*SegmentData
	picked := false
	if e.opts.HitDetection != nil {
		// The first picked Point of the collection wins; other picked
		// features are passed over.
		for _, f := range e.opts.HitDetection.FeaturesAtPixel(pixel) {
			if _, ok := f.Geometry().(*Point); !ok || !e.features.Contains(f) {
				continue
			}
			for _, id := range e.index.featureIDs(f) {
				candidates = append(candidates, e.index.get(id))
			}
			picked = len(candidates) > 0
			break
		}
	}
	if !picked {
		p := e.proj.fromUser(coord.Point())
		buf := vp.Resolution() * tol
		box := &geom.Bounds{
			Min: geom.Point{X: p.X - buf, Y: p.Y - buf},
			Max: geom.Point{X: p.X + buf, Y: p.Y + buf},
		}
		candidates = e.index.query(e.proj.toUserExtent(box))
	}
	if len(candidates) == 0 {
		return nil, false
	}

	viewExtent := e.proj.toUserExtent(vp.Extent())
	dists := make([]float64, len(candidates))
	for i, c := range candidates {
		dists[i] = e.distanceSquared(coord, c, viewExtent)
	}
	order := make([]int, len(candidates))
	floats.Argsort(dists, order)

	node := candidates[order[0]]
	vertex := e.closestPoint(coord, node, viewExtent)
	vertexPixel := e.pixelOf(vertex)
	if !picked && pixelDistance(pixel, vertexPixel) > tol {
		return nil, false
	}

	h := &hit{
		record:   node,
		vertex:   vertex,
		segments: map[SegmentID]bool{node.ID: true},
	}
	if !e.snapToPointer {
		h.offset = Pixel{X: vertexPixel.X - pixel.X, Y: vertexPixel.Y - pixel.Y}
	}
	if node.isCircumference() {
		h.snapped = true
		return h, true
	}

	d1 := pixelDistance(vertexPixel, e.pixelOf(node.Segment[0]))
	d2 := pixelDistance(vertexPixel, e.pixelOf(node.Segment[1]))
	if math.Min(d1, d2) <= tol {
		h.snapped = true
		if d1 > d2 {
			h.vertex = node.Segment[1]
		} else {
			h.vertex = node.Segment[0]
		}
		if !e.snapToPointer {
			sp := e.pixelOf(h.vertex)
			h.offset = Pixel{X: sp.X - pixel.X, Y: sp.Y - pixel.Y}
		}
	}

	// Identical segments of other geometries are edited together.
	geometries := map[Geometry]bool{node.Geometry: true}
	for _, i := range order[1:] {
		c := candidates[i]
		if geometries[c.Geometry] || !sameSegment(node.Segment, c.Segment) {
			continue
		}
		geometries[c.Geometry] = true
		h.segments[c.ID] = true
	}
	return h, true
}

func sameSegment(a, b [2]Coordinate) bool {
	return (a[0].Equal2D(b[0]) && a[1].Equal2D(b[1])) ||
		(a[0].Equal2D(b[1]) && a[1].Equal2D(b[0]))
}

// subsegments returns the pieces of s used for distance calculations.
func (e *Engine) subsegments(s *SegmentData, viewExtent *geom.Bounds) [][2]Coordinate {
	if e.opts.Subsegments != nil && s.component() != nil {
		if subs := e.opts.Subsegments(s.Feature, *s, viewExtent); len(subs) > 0 {
			return subs
		}
	}
	return [][2]Coordinate{s.Segment}
}

// distanceSquared returns the squared view-projection distance between the
// user-projection coordinate c and the record s.
func (e *Engine) distanceSquared(c Coordinate, s *SegmentData, viewExtent *geom.Bounds) float64 {
	p := e.proj.fromUser(c.Point())
	if s.isCircumference() {
		center, radius := e.proj.circleInView(s.Geometry.(*Circle))
		d := distance(center, p) - radius
		return d * d
	}
	min := math.Inf(1)
	for _, sub := range e.subsegments(s, viewExtent) {
		a, b := e.proj.fromUser(sub[0].Point()), e.proj.fromUser(sub[1].Point())
		min = math.Min(min, squaredDistance(p, closestOnSegment(p, a, b)))
	}
	return min
}

// closestPoint returns the user-projection point of s nearest to c.
func (e *Engine) closestPoint(c Coordinate, s *SegmentData, viewExtent *geom.Bounds) Coordinate {
	p := e.proj.fromUser(c.Point())
	if s.isCircumference() {
		center, radius := e.proj.circleInView(s.Geometry.(*Circle))
		u := e.proj.toUserPoint(closestOnCircle(center, radius, p))
		return Coordinate{u.X, u.Y}
	}
	var best geom.Point
	min := math.Inf(1)
	for _, sub := range e.subsegments(s, viewExtent) {
		a, b := e.proj.fromUser(sub[0].Point()), e.proj.fromUser(sub[1].Point())
		q := closestOnSegment(p, a, b)
		if d := squaredDistance(p, q); d < min {
			min, best = d, q
		}
	}
	u := e.proj.toUserPoint(best)
	return Coordinate{u.X, u.Y}
}
