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
	"sort"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

type sessionState int

const (
	armed sessionState = iota
	dragging
	committed
)

func (s sessionState) String() string {
	switch s {
	case armed:
		return "armed"
	case dragging:
		return "dragging"
	case committed:
		return "committed"
	default:
		return fmt.Sprintf("sessionState(%d)", int(s))
	}
}

// dragSegment is a record together with the side of it that holds the
// grabbed vertex: 0 for Segment[0], 1 for Segment[1].
type dragSegment struct {
	id   SegmentID
	side int
}

// dragSession is the state of a gesture between pointer down and up.
type dragSession struct {
	state    sessionState
	segments []dragSegment
	offset   Pixel

	// modified holds the features touched by the gesture. It is nil
	// until the first mutation.
	modified []*Feature
}

func (s *dragSession) ids() []SegmentID {
	o := make([]SegmentID, len(s.segments))
	for i, ds := range s.segments {
		o[i] = ds.id
	}
	return o
}

// componentKey identifies one coordinate array of one geometry.
type componentKey struct {
	g     Geometry
	depth string
}

func keyOf(s *SegmentData) componentKey {
	return componentKey{g: s.Geometry, depth: fmt.Sprint(s.Depth)}
}

// collectDragSegments returns the records that share vertex, with the
// side holding it. When insert is true it also returns the hovered
// records that pass through vertex between their end points.
func (e *Engine) collectDragSegments(vertex, pointer Coordinate, insert bool) ([]dragSegment, []*SegmentData) {
	matches := e.index.query(geom.NewBoundsPoint(vertex.Point()))
	sortByIndex(matches)
	viewExtent := e.proj.toUserExtent(e.opts.Viewport.Extent())

	var segs []dragSegment
	var inserts []*SegmentData
	seen := make(map[componentKey]*[2]*SegmentData)
	for _, m := range matches {
		k := keyOf(m)
		cs, ok := seen[k]
		if !ok {
			cs = new([2]*SegmentData)
			seen[k] = cs
		}
		if m.isCircumference() {
			if cs[0] == nil && e.closestPoint(pointer, m, viewExtent).Equal2D(vertex) {
				segs = append(segs, dragSegment{id: m.ID, side: 0})
				cs[0] = m
			}
			continue
		}
		if m.Segment[0].Equal2D(vertex) && cs[0] == nil {
			segs = append(segs, dragSegment{id: m.ID, side: 0})
			cs[0] = m
			continue
		}
		if m.Segment[1].Equal2D(vertex) && cs[1] == nil {
			if cs[0] != nil && cs[0].Index == 0 {
				switch m.Geometry.(type) {
				case *LineString, *MultiLineString:
					// A closed line is not dragged by its joining node.
					continue
				case *Polygon, *MultiPolygon:
					// The first vertex of a ring pairs with the closing segment.
					if m.Index != len(*m.component())-2 {
						continue
					}
				}
			}
			segs = append(segs, dragSegment{id: m.ID, side: 1})
			cs[1] = m
			continue
		}
		if insert && e.vertexSegments[m.ID] && cs[0] == nil && cs[1] == nil {
			inserts = append(inserts, m)
		}
	}
	return segs, inserts
}

// handleDown arms a gesture if the pointer is over a vertex or segment.
func (e *Engine) handleDown(evt *PointerEvent) bool {
	if !e.opts.Condition(evt) {
		return false
	}
	e.handlePointerAtPixel(evt.Pixel, evt.Coordinate)
	e.session = nil
	if e.overlay.marker == nil {
		return false
	}
	e.session = &dragSession{state: armed, offset: e.hoverOffset}
	vertex := e.markerVertex()
	segs, inserts := e.collectDragSegments(vertex, evt.Coordinate, e.opts.InsertVertexCondition(evt))
	e.session.segments = segs
	if len(inserts) > 0 {
		ids := make([]SegmentID, len(inserts))
		for i, s := range inserts {
			ids[i] = s.ID
		}
		e.willModify(evt, ids)
		for j := len(inserts) - 1; j >= 0; j-- {
			if l, r, ok := e.insertVertex(inserts[j], vertex); ok {
				e.session.segments = append(e.session.segments,
					dragSegment{id: l, side: 1}, dragSegment{id: r, side: 0})
				e.ignoreNextClick = true
			}
		}
	}
	return true
}

// dragTarget returns the position the grabbed vertex moves to.
func (e *Engine) dragTarget(evt *PointerEvent) Coordinate {
	if e.snapToPointer {
		return evt.Coordinate.Copy()
	}
	c := e.coordinateOf(Pixel{
		X: evt.Pixel.X + e.session.offset.X,
		Y: evt.Pixel.Y + e.session.offset.Y,
	})
	return withExtra(c, evt.Coordinate)
}

// handleDrag moves the grabbed vertex. Index entries are left alone until
// the pointer is released.
func (e *Engine) handleDrag(evt *PointerEvent) {
	s := e.session
	if s == nil {
		return
	}
	e.ignoreNextClick = false
	e.willModify(evt, s.ids())
	s.state = dragging
	vertex := e.dragTarget(evt)

	var features []*Feature
	var geometries []Geometry
	for _, ds := range s.segments {
		rec := e.index.get(ds.id)
		if rec == nil {
			e.log.WithField("segment", ds.id).Error("modify: drag segment is not indexed")
			continue
		}
		if !containsFeature(features, rec.Feature) {
			features = append(features, rec.Feature)
		}
		if !containsGeometry(geometries, rec.Geometry) {
			geometries = append(geometries, rec.Geometry)
		}
		v := withExtra(vertex, rec.Segment[ds.side])
		switch g := rec.Geometry.(type) {
		case *Point:
			g.Coord = v
			rec.Segment = [2]Coordinate{v, v}
		case *MultiPoint:
			g.Coords[rec.Index] = v
			rec.Segment = [2]Coordinate{v, v}
		case *Circle:
			rec.Segment = [2]Coordinate{v, v}
			if rec.Index == circleCenterIndex {
				g.Center = v
			} else {
				center, _ := e.proj.circleInView(g)
				g.Radius = e.proj.radiusToUser(g, distance(center, e.proj.fromUser(v.Point())))
			}
		default:
			c := rec.component()
			if c == nil {
				continue
			}
			(*c)[rec.Index+ds.side] = v
			rec.Segment[ds.side] = v
		}
	}
	for _, f := range features {
		e.featureChanged(f)
	}
	e.setMarker(vertex, features, geometries)
}

// handleUp re-indexes every record touched by the gesture and ends it.
func (e *Engine) handleUp(evt *PointerEvent) {
	s := e.session
	if s == nil {
		return
	}
	for i := len(s.segments) - 1; i >= 0; i-- {
		rec := e.index.get(s.segments[i].id)
		if rec == nil {
			continue
		}
		if c, ok := rec.Geometry.(*Circle); ok {
			for _, id := range rec.Linked {
				e.index.get(id).Segment = [2]Coordinate{c.Center, c.Center}
			}
			e.index.update(geom.NewBoundsPoint(c.Center.Point()), rec.Linked[circleCenterIndex])
			e.index.update(e.circleExtent(c), rec.Linked[circleCircumferenceIndex])
			continue
		}
		e.index.update(e.segmentExtent(rec), rec.ID)
	}
	if s.modified != nil {
		e.log.WithFields(logrus.Fields{
			"features": len(s.modified),
			"segments": len(s.segments),
		}).Debug("modify: gesture committed")
	}
	e.didModify(evt)
	s.state = committed
}

func containsGeometry(geometries []Geometry, g Geometry) bool {
	for _, gg := range geometries {
		if gg == g {
			return true
		}
	}
	return false
}

// sortByIndex orders records by Index, breaking ties by ID.
func sortByIndex(s []*SegmentData) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Index != s[j].Index {
			return s[i].Index < s[j].Index
		}
		return s[i].ID < s[j].ID
	})
}
