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
	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// writeFeature decomposes the geometry of f into segment records and
// indexes them.
func (e *Engine) writeFeature(f *Feature) {
	if g := f.Geometry(); g != nil {
		e.writeGeometry(f, g)
	}
}

// writeGeometry indexes the segment records of g, which belongs to f.
// Geometries of unknown type are not indexed.
func (e *Engine) writeGeometry(f *Feature, g Geometry) {
	switch t := g.(type) {
	case *Point:
		e.writePoint(f, t, t.Coord, 0, nil)
	case *MultiPoint:
		for i, c := range t.Coords {
			e.writePoint(f, t, c, i, []int{i})
		}
	case *LineString:
		e.writeLine(f, t, t.Coords, nil)
	case *MultiLineString:
		for j, l := range t.Lines {
			e.writeLine(f, t, l, []int{j})
		}
	case *Polygon:
		for j, r := range t.Rings {
			e.writeLine(f, t, r, []int{j})
		}
	case *MultiPolygon:
		for k, p := range t.Polygons {
			for j, r := range p {
				e.writeLine(f, t, r, []int{j, k})
			}
		}
	case *Circle:
		e.writeCircle(f, t)
	case *GeometryCollection:
		for _, gg := range t.Geometries {
			if gg != nil {
				e.writeGeometry(f, gg)
			}
		}
	default:
		e.log.WithFields(logrus.Fields{
			"feature": f.ID,
			"type":    g.Type(),
		}).Debug("modify: geometry type is not editable")
	}
}

func (e *Engine) writePoint(f *Feature, g Geometry, c Coordinate, index int, depth []int) {
	if len(c) < 2 {
		return
	}
	s := &SegmentData{
		Feature:  f,
		Geometry: g,
		Segment:  [2]Coordinate{c, c},
		Index:    index,
		Depth:    depth,
	}
	e.index.insert(geom.NewBoundsPoint(c.Point()), s)
}

func (e *Engine) writeLine(f *Feature, g Geometry, coords []Coordinate, depth []int) {
	for i := 0; i < len(coords)-1; i++ {
		s := &SegmentData{
			Feature:  f,
			Geometry: g,
			Segment:  [2]Coordinate{coords[i], coords[i+1]},
			Index:    i,
			Depth:    depth,
		}
		e.index.insert(e.segmentExtent(s), s)
	}
}

func (e *Engine) writeCircle(f *Feature, c *Circle) {
	if len(c.Center) < 2 {
		return
	}
	center := &SegmentData{
		Feature:  f,
		Geometry: c,
		Segment:  [2]Coordinate{c.Center, c.Center},
		Index:    circleCenterIndex,
	}
	circumference := &SegmentData{
		Feature:  f,
		Geometry: c,
		Segment:  [2]Coordinate{c.Center, c.Center},
		Index:    circleCircumferenceIndex,
	}
	linked := []SegmentID{
		e.index.insert(geom.NewBoundsPoint(c.Center.Point()), center),
		e.index.insert(e.circleExtent(c), circumference),
	}
	center.Linked = linked
	circumference.Linked = linked
}

// segmentExtent returns the extent under which s is indexed.
func (e *Engine) segmentExtent(s *SegmentData) *geom.Bounds {
	if e.opts.SegmentExtent != nil && s.component() != nil {
		if b := e.opts.SegmentExtent(s.Feature, *s); b != nil {
			return b
		}
	}
	return segmentBounds(s.Segment)
}

// circleExtent returns the user-projection extent of the polygon that
// approximates c in the view projection.
func (e *Engine) circleExtent(c *Circle) *geom.Bounds {
	center, radius := e.proj.circleInView(c)
	b := geom.NewBounds()
	for _, p := range circlePolygon(center, radius) {
		b.Extend(geom.NewBoundsPoint(e.proj.toUserPoint(p)))
	}
	return b
}
