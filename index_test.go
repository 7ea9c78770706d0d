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
	"testing"

	"github.com/ctessum/geom"
)

func box(x0, y0, x1, y1 float64) *geom.Bounds {
	return &geom.Bounds{Min: geom.Point{X: x0, Y: y0}, Max: geom.Point{X: x1, Y: y1}}
}

func TestSegmentIndex(t *testing.T) {
	x := newSegmentIndex()
	f := NewFeature("f", nil)
	a := &SegmentData{Feature: f, Segment: [2]Coordinate{{0, 0}, {10, 0}}}
	b := &SegmentData{Feature: f, Segment: [2]Coordinate{{10, 0}, {10, 10}}, Index: 1}
	ida := x.insert(segmentBounds(a.Segment), a)
	idb := x.insert(segmentBounds(b.Segment), b)
	if ida == idb {
		t.Fatalf("records share ID %d", ida)
	}
	if x.len() != 2 {
		t.Errorf("want 2 entries but have %d", x.len())
	}

	have := x.query(box(9, -1, 11, 1))
	if len(have) != 2 || have[0] != a || have[1] != b {
		t.Errorf("query at the shared vertex: want [%d %d] but have %v", ida, idb, have)
	}
	have = x.query(box(9, 5, 11, 6))
	if len(have) != 1 || have[0] != b {
		t.Errorf("query on b: want [%d] but have %v", idb, have)
	}

	x.update(box(100, 100, 101, 101), idb)
	if have = x.query(box(9, 5, 11, 6)); len(have) != 0 {
		t.Errorf("b is still found under its old extent: %v", have)
	}
	if have = x.query(box(100, 100, 100, 100)); len(have) != 1 || have[0] != b {
		t.Errorf("b is not found under its new extent: %v", have)
	}

	x.remove(ida)
	if x.get(ida) != nil {
		t.Error("removed record is still in the arena")
	}
	if have = x.query(box(-1, -1, 5, 1)); len(have) != 0 {
		t.Errorf("removed record is still in the tree: %v", have)
	}
	// Removing twice is harmless.
	x.remove(ida)

	ids := x.removeFeature(f)
	if len(ids) != 1 || ids[0] != idb {
		t.Errorf("removeFeature: want [%d] but have %v", idb, ids)
	}
	if x.len() != 0 || len(x.byFeature) != 0 {
		t.Errorf("want an empty index but have %d entries and %d features", x.len(), len(x.byFeature))
	}
}

func TestSortSegments(t *testing.T) {
	s := []SegmentData{
		{ID: 5, Index: 0, Depth: []int{1}},
		{ID: 4, Index: 2, Depth: []int{0}},
		{ID: 3, Index: 0, Depth: []int{0}},
		{ID: 2, Index: 1, Depth: []int{0, 1}},
		{ID: 1, Index: 1, Depth: []int{0, 0}},
	}
	sortSegments(s)
	want := []SegmentID{3, 4, 1, 2, 5}
	for i, ss := range s {
		if ss.ID != want[i] {
			t.Errorf("position %d: want %d but have %d", i, want[i], ss.ID)
		}
	}
}

func TestSameDepth(t *testing.T) {
	tests := []struct {
		a, b []int
		want bool
	}{
		{nil, nil, true},
		{nil, []int{1}, true},
		{[]int{1}, []int{1}, true},
		{[]int{1}, []int{2}, false},
		{[]int{1, 0}, []int{1}, false},
		{[]int{0, 1}, []int{0, 1}, true},
	}
	for _, test := range tests {
		if have := sameDepth(test.a, test.b); have != test.want {
			t.Errorf("sameDepth(%v, %v): want %v but have %v", test.a, test.b, test.want, have)
		}
	}
}
