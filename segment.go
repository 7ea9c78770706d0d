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

import "sort"

// SegmentID is a handle to a segment record.
type SegmentID int

// Record indices of the two linked records of a Circle.
const (
	circleCenterIndex        = 0
	circleCircumferenceIndex = 1
)

// SegmentData is a segment record: a two-point piece of a geometry that
// is the unit the index stores and hit-tests. For points and circles both
// ends of Segment are the same position.
type SegmentData struct {
	ID       SegmentID
	Feature  *Feature
	Geometry Geometry

	// Segment holds the two end points in user coordinates.
	Segment [2]Coordinate

	// Index is the position of Segment[0] within its coordinate array.
	Index int

	// Depth locates the coordinate array within nested structures:
	// [line] for MultiLineString, [ring] for Polygon, [ring, polygon] for
	// MultiPolygon and [point] for MultiPoint. It is nil otherwise.
	Depth []int

	// Linked holds the centre and circumference records of a Circle.
	Linked []SegmentID
}

func (s *SegmentData) isCircumference() bool {
	_, ok := s.Geometry.(*Circle)
	return ok && s.Index == circleCircumferenceIndex
}

// component returns the coordinate array s belongs to, if any.
func (s *SegmentData) component() *[]Coordinate {
	return component(s.Geometry, s.Depth)
}

// sameDepth reports whether two depth paths address the same array.
// A nil path matches everything.
func sameDepth(a, b []int) bool {
	if a == nil || b == nil {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// arena owns all segment records and hands out IDs for them.
type arena struct {
	next      SegmentID
	records   map[SegmentID]*SegmentData
	byFeature map[*Feature]map[SegmentID]struct{}
}

func newArena() *arena {
	return &arena{
		records:   make(map[SegmentID]*SegmentData),
		byFeature: make(map[*Feature]map[SegmentID]struct{}),
	}
}

func (a *arena) add(s *SegmentData) SegmentID {
	a.next++
	s.ID = a.next
	a.records[s.ID] = s
	ids, ok := a.byFeature[s.Feature]
	if !ok {
		ids = make(map[SegmentID]struct{})
		a.byFeature[s.Feature] = ids
	}
	ids[s.ID] = struct{}{}
	return s.ID
}

func (a *arena) get(id SegmentID) *SegmentData { return a.records[id] }

func (a *arena) delete(id SegmentID) {
	s, ok := a.records[id]
	if !ok {
		return
	}
	delete(a.records, id)
	if ids, ok := a.byFeature[s.Feature]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(a.byFeature, s.Feature)
		}
	}
}

// featureIDs returns the records belonging to f.
func (a *arena) featureIDs(f *Feature) []SegmentID {
	ids := a.byFeature[f]
	o := make([]SegmentID, 0, len(ids))
	for id := range ids {
		o = append(o, id)
	}
	return o
}

// sortSegments orders records by depth, then index.
func sortSegments(s []SegmentData) {
	sort.Slice(s, func(i, j int) bool {
		a, b := s[i], s[j]
		for k := 0; k < len(a.Depth) && k < len(b.Depth); k++ {
			if a.Depth[k] != b.Depth[k] {
				return a.Depth[k] < b.Depth[k]
			}
		}
		if len(a.Depth) != len(b.Depth) {
			return len(a.Depth) < len(b.Depth)
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.ID < b.ID
	})
}
