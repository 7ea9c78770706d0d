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

// Package geodesic splits longitude/latitude segments into great-circle
// pieces so that the editing engine hit-tests and indexes them as the
// curves they are drawn as.
package geodesic

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/golang/groupcache/lru"
	"github.com/spatialmodel/modify"
)

// DefaultMaxAngle is the default largest arc, in degrees, covered by one
// piece of a split segment.
const DefaultMaxAngle = 1.0

// DefaultCacheSize is the number of split segments remembered when no
// positive cache size is given.
const DefaultCacheSize = 1000

// Strategy splits segments whose coordinates are longitude and latitude
// in degrees along great circles.
type Strategy struct {
	// MaxAngle is the largest arc, in degrees, covered by one piece.
	MaxAngle float64

	cache *lru.Cache
}

// New creates a Strategy that remembers the pieces of up to cacheSize
// segments. The cache is always bounded: a cacheSize of zero or less
// uses DefaultCacheSize.
func New(maxAngle float64, cacheSize int) *Strategy {
	if maxAngle <= 0 {
		maxAngle = DefaultMaxAngle
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Strategy{MaxAngle: maxAngle, cache: lru.New(cacheSize)}
}

type cacheKey struct {
	x0, y0, x1, y1 float64
}

// Subsegments implements modify.SubsegmentFunc.
func (s *Strategy) Subsegments(_ *modify.Feature, seg modify.SegmentData, _ *geom.Bounds) [][2]modify.Coordinate {
	pts := s.points(seg.Segment)
	o := make([][2]modify.Coordinate, len(pts)-1)
	for i := range o {
		o[i] = [2]modify.Coordinate{pts[i], pts[i+1]}
	}
	return o
}

// Extent implements modify.SegmentExtentFunc.
func (s *Strategy) Extent(_ *modify.Feature, seg modify.SegmentData) *geom.Bounds {
	b := geom.NewBounds()
	for _, p := range s.points(seg.Segment) {
		b.Extend(geom.NewBoundsPoint(p.Point()))
	}
	return b
}

// points returns the positions along the great circle between the ends of
// seg, both ends included.
func (s *Strategy) points(seg [2]modify.Coordinate) []modify.Coordinate {
	k := cacheKey{seg[0][0], seg[0][1], seg[1][0], seg[1][1]}
	if v, ok := s.cache.Get(k); ok {
		return withEnds(v.([]modify.Coordinate), seg)
	}
	pts := interpolate(seg[0], seg[1], s.MaxAngle)
	s.cache.Add(k, pts)
	return withEnds(pts, seg)
}

// withEnds replaces the cached end points by the segment's own, which may
// carry more components.
func withEnds(pts []modify.Coordinate, seg [2]modify.Coordinate) []modify.Coordinate {
	o := append([]modify.Coordinate(nil), pts...)
	o[0], o[len(o)-1] = seg[0], seg[1]
	return o
}

const deg = math.Pi / 180

func toVector(c modify.Coordinate) [3]float64 {
	lon, lat := c[0]*deg, c[1]*deg
	return [3]float64{math.Cos(lat) * math.Cos(lon), math.Cos(lat) * math.Sin(lon), math.Sin(lat)}
}

func fromVector(v [3]float64) modify.Coordinate {
	lat := math.Atan2(v[2], math.Hypot(v[0], v[1]))
	lon := math.Atan2(v[1], v[0])
	return modify.Coordinate{lon / deg, lat / deg}
}

// interpolate returns the great-circle positions from a to b so that no
// piece covers more than maxAngle degrees.
func interpolate(a, b modify.Coordinate, maxAngle float64) []modify.Coordinate {
	va, vb := toVector(a), toVector(b)
	dot := va[0]*vb[0] + va[1]*vb[1] + va[2]*vb[2]
	omega := math.Acos(math.Max(-1, math.Min(1, dot)))
	// The tolerance keeps an exact multiple of maxAngle from rounding up.
	n := int(math.Ceil(omega/deg/maxAngle - 1e-9))
	if n < 1 || math.Sin(omega) == 0 {
		return []modify.Coordinate{a, b}
	}
	pts := make([]modify.Coordinate, n+1)
	pts[0], pts[n] = a, b
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		ka := math.Sin((1-t)*omega) / math.Sin(omega)
		kb := math.Sin(t*omega) / math.Sin(omega)
		pts[i] = fromVector([3]float64{
			ka*va[0] + kb*vb[0],
			ka*va[1] + kb*vb[1],
			ka*va[2] + kb*vb[2],
		})
	}
	return pts
}
