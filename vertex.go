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
	"github.com/sirupsen/logrus"
)

// Minimum number of positions in a line and in a polygon ring.
const (
	minLineLength = 2
	minRingLength = 4
)

// updateSegmentIndices shifts by delta the index of every record of g in
// the coordinate array at depth whose index is greater than index.
func (e *Engine) updateSegmentIndices(f *Feature, g Geometry, index int, depth []int, delta int) {
	for _, id := range e.index.featureIDs(f) {
		s := e.index.get(id)
		if s.Geometry == g && sameDepth(s.Depth, depth) && s.Index > index {
			s.Index += delta
		}
	}
}

// interpolate fills the components of vertex past the second by linear
// interpolation along seg.
func interpolate(vertex Coordinate, seg [2]Coordinate) Coordinate {
	n := len(seg[0])
	if len(seg[1]) < n {
		n = len(seg[1])
	}
	if len(vertex) >= n {
		return vertex.Copy()
	}
	a, b := seg[0].Point(), seg[1].Point()
	q := closestOnSegment(vertex.Point(), a, b)
	t := 0.0
	if l := distance(a, b); l > 0 {
		t = distance(a, q) / l
	}
	o := vertex.Copy()
	for i := len(o); i < n; i++ {
		o = append(o, seg[0][i]+t*(seg[1][i]-seg[0][i]))
	}
	return o
}

// insertVertex splits record s at vertex. It returns the records on
// either side of the new vertex.
func (e *Engine) insertVertex(s *SegmentData, vertex Coordinate) (left, right SegmentID, ok bool) {
	c := s.component()
	if c == nil {
		return 0, 0, false
	}
	v := interpolate(vertex, s.Segment)
	i := s.Index
	coords := append(*c, nil)
	copy(coords[i+2:], coords[i+1:])
	coords[i+1] = v
	*c = coords
	e.featureChanged(s.Feature)

	e.removeRecord(s.ID)
	e.updateSegmentIndices(s.Feature, s.Geometry, i, s.Depth, 1)
	l := &SegmentData{
		Feature:  s.Feature,
		Geometry: s.Geometry,
		Segment:  [2]Coordinate{s.Segment[0], v},
		Index:    i,
		Depth:    s.Depth,
	}
	r := &SegmentData{
		Feature:  s.Feature,
		Geometry: s.Geometry,
		Segment:  [2]Coordinate{v, s.Segment[1]},
		Index:    i + 1,
		Depth:    s.Depth,
	}
	left = e.index.insert(e.segmentExtent(l), l)
	right = e.index.insert(e.segmentExtent(r), r)
	e.log.WithFields(logrus.Fields{
		"feature": s.Feature.ID,
		"index":   i + 1,
		"depth":   s.Depth,
	}).Debug("modify: inserted vertex")
	return left, right, true
}

// InsertVertex inserts vertex into the segment record id, splitting it in
// two. Records of points and circles cannot be split; for them, and for
// unknown records, InsertVertex returns false.
func (e *Engine) InsertVertex(id SegmentID, vertex Coordinate) bool {
	s := e.index.get(id)
	if s == nil || s.component() == nil {
		return false
	}
	features := []*Feature{s.Feature}
	e.dispatch(ModifyStart, features, e.lastEvent)
	e.insertVertex(s, vertex)
	e.dispatch(ModifyEnd, features, e.lastEvent)
	return true
}

// RemovePoint removes the vertex under the pointer, as the delete gesture
// does. It returns whether any vertex was removed.
func (e *Engine) RemovePoint() bool {
	if e.lastEvent != nil && e.lastEvent.Type == PointerDrag {
		return false
	}
	if e.session == nil {
		if e.overlay.marker == nil {
			return false
		}
		segs, _ := e.collectDragSegments(e.markerVertex(), e.markerVertex(), false)
		e.session = &dragSession{state: armed, segments: segs}
	}
	removed := e.removeVertex()
	e.didModify(e.lastEvent)
	return removed
}

// removalGroup holds the records on either side of the removed vertex
// within one coordinate array.
type removalGroup struct {
	left, right *SegmentData
	index       int
}

// removeVertex removes the grabbed vertex from every coordinate array of
// the current gesture that stays valid without it. The gesture's
// modification starts with the first array actually changed.
func (e *Engine) removeVertex() bool {
	s := e.session
	var keys []componentKey
	groups := make(map[componentKey]*removalGroup)
	for i := len(s.segments) - 1; i >= 0; i-- {
		ds := s.segments[i]
		rec := e.index.get(ds.id)
		if rec == nil {
			continue
		}
		k := keyOf(rec)
		g, ok := groups[k]
		if !ok {
			g = new(removalGroup)
			groups[k] = g
			keys = append(keys, k)
		}
		if ds.side == 0 {
			g.right = rec
			g.index = rec.Index
		} else {
			g.left = rec
			g.index = rec.Index + 1
		}
	}

	deleted := false
	for _, k := range keys {
		g := groups[k]
		if e.removeFromGroup(g) {
			deleted = true
		}
	}
	if deleted {
		e.removeMarker()
		e.vertexSegments = nil
		s.segments = nil
	}
	return deleted
}

func (e *Engine) removeFromGroup(g *removalGroup) bool {
	rec := g.right
	if g.left != nil {
		rec = g.left
	}
	index := g.index
	newIndex := index - 1
	if newIndex < 0 {
		newIndex = 0
	}
	c := rec.component()
	if c == nil {
		return false
	}
	coords := *c
	switch rec.Geometry.(type) {
	case *LineString, *MultiLineString:
		if len(coords) <= minLineLength {
			e.refuse(rec, len(coords))
			return false
		}
	case *Polygon, *MultiPolygon:
		if len(coords) <= minRingLength {
			e.refuse(rec, len(coords))
			return false
		}
	}
	e.willModify(e.lastEvent, e.session.ids())

	switch rec.Geometry.(type) {
	case *LineString, *MultiLineString:
		coords = append(coords[:index], coords[index+1:]...)
	case *Polygon, *MultiPolygon:
		if index == len(coords)-1 {
			index = 0
		}
		coords = append(coords[:index], coords[index+1:]...)
		if index == 0 {
			// Close the ring again.
			coords[len(coords)-1] = coords[0]
			newIndex = len(coords) - 1
		}
	}
	*c = coords
	e.featureChanged(rec.Feature)

	var merged [2]Coordinate
	if g.left != nil {
		merged[0] = g.left.Segment[0]
		e.removeRecord(g.left.ID)
	}
	if g.right != nil {
		merged[1] = g.right.Segment[1]
		e.removeRecord(g.right.ID)
	}
	if g.left != nil && g.right != nil {
		m := &SegmentData{
			Feature:  rec.Feature,
			Geometry: rec.Geometry,
			Segment:  merged,
			Index:    newIndex,
			Depth:    rec.Depth,
		}
		e.index.insert(e.segmentExtent(m), m)
	}
	e.updateSegmentIndices(rec.Feature, rec.Geometry, index, rec.Depth, -1)
	e.log.WithFields(logrus.Fields{
		"feature": rec.Feature.ID,
		"index":   index,
		"depth":   rec.Depth,
	}).Debug("modify: removed vertex")
	return true
}

func (e *Engine) refuse(s *SegmentData, n int) {
	e.log.WithFields(logrus.Fields{
		"feature":   s.Feature.ID,
		"depth":     s.Depth,
		"positions": n,
	}).Debug("modify: vertex not removed; too few positions would remain")
}
