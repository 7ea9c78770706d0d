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
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// entry is the object stored in the R-tree for one segment record.
// bounds is never mutated after the entry is inserted; updates delete the
// entry and insert it again with a new bounds.
type entry struct {
	id     SegmentID
	bounds *geom.Bounds
}

func (e *entry) Bounds() *geom.Bounds { return e.bounds }

func (e *entry) Similar(g geom.Geom, tolerance float64) bool {
	e2, ok := g.(*entry)
	return ok && e2.id == e.id && e.bounds.Similar(e2.bounds, tolerance)
}

func (e *entry) Transform(t proj.Transformer) (geom.Geom, error) {
	b, err := e.bounds.Transform(t)
	if err != nil {
		return nil, err
	}
	return &entry{id: e.id, bounds: b.(*geom.Bounds)}, nil
}

// segmentIndex is a spatial index of segment records.
type segmentIndex struct {
	*arena
	tree    *rtree.Rtree
	entries map[SegmentID]*entry
}

func newSegmentIndex() *segmentIndex {
	return &segmentIndex{
		arena:   newArena(),
		tree:    rtree.NewTree(25, 50),
		entries: make(map[SegmentID]*entry),
	}
}

// insert adds s to the arena and the tree under extent.
func (x *segmentIndex) insert(extent *geom.Bounds, s *SegmentData) SegmentID {
	id := x.add(s)
	e := &entry{id: id, bounds: extent.Copy()}
	x.entries[id] = e
	x.tree.Insert(e)
	return id
}

// remove deletes a record from the tree and the arena.
func (x *segmentIndex) remove(id SegmentID) {
	e, ok := x.entries[id]
	if !ok {
		return
	}
	if !x.tree.Delete(e) {
		panic(fmt.Errorf("modify: segment %d is not in the spatial index", id))
	}
	delete(x.entries, id)
	x.delete(id)
}

// update moves a record to a new extent.
func (x *segmentIndex) update(extent *geom.Bounds, id SegmentID) {
	e, ok := x.entries[id]
	if !ok {
		return
	}
	if !x.tree.Delete(e) {
		panic(fmt.Errorf("modify: segment %d is not in the spatial index", id))
	}
	e = &entry{id: id, bounds: extent.Copy()}
	x.entries[id] = e
	x.tree.Insert(e)
}

// query returns the records whose extent intersects extent, in ID order.
func (x *segmentIndex) query(extent *geom.Bounds) []*SegmentData {
	found := x.tree.SearchIntersect(extent)
	o := make([]*SegmentData, 0, len(found))
	for _, g := range found {
		o = append(o, x.get(g.(*entry).id))
	}
	sort.Slice(o, func(i, j int) bool { return o[i].ID < o[j].ID })
	return o
}

// forEach calls fn for every record intersecting extent.
func (x *segmentIndex) forEach(extent *geom.Bounds, fn func(*SegmentData)) {
	for _, s := range x.query(extent) {
		fn(s)
	}
}

// removeFeature removes every record belonging to f and returns their IDs.
func (x *segmentIndex) removeFeature(f *Feature) []SegmentID {
	ids := x.featureIDs(f)
	for _, id := range ids {
		x.remove(id)
	}
	return ids
}

// len returns the number of indexed records.
func (x *segmentIndex) len() int { return len(x.entries) }

func segmentBounds(seg [2]Coordinate) *geom.Bounds {
	b := geom.NewBoundsPoint(seg[0].Point())
	b.Extend(geom.NewBoundsPoint(seg[1].Point()))
	return b
}
