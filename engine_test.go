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
	"reflect"
	"testing"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// testView is 200 by 200 pixels centred on the origin with one unit per
// pixel, so pixel (100, 100) is coordinate (0, 0).
func testView() *View {
	return &View{Res: 1, Width: 200, Height: 200}
}

func testLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	return l
}

func newTestEngine(t *testing.T, v *View, features ...*Feature) *Engine {
	e, err := New(Options{
		Features: NewCollection(features...),
		Viewport: v,
		Log:      testLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// pointer returns an event of type typ at user coordinate (x, y).
func pointer(v Viewport, typ EventType, x, y float64) *PointerEvent {
	return &PointerEvent{
		Type:       typ,
		Pixel:      v.PixelFromCoordinate(geom.Point{X: x, Y: y}),
		Coordinate: Coordinate{x, y},
	}
}

// dragVertex hovers, presses, drags and releases the pointer.
func dragVertex(e *Engine, x0, y0, x1, y1 float64) {
	v := e.opts.Viewport
	e.HandleEvent(pointer(v, PointerMove, x0, y0))
	e.HandleEvent(pointer(v, PointerDown, x0, y0))
	e.HandleEvent(pointer(v, PointerDrag, x1, y1))
	e.HandleEvent(pointer(v, PointerUp, x1, y1))
}

// altClick hovers over (x, y) and alt-clicks there.
func altClick(e *Engine, x, y float64) bool {
	v := e.opts.Viewport
	e.HandleEvent(pointer(v, PointerMove, x, y))
	click := pointer(v, SingleClick, x, y)
	click.Alt = true
	return e.HandleEvent(click)
}

type eventLog struct {
	types    []ModifyEventType
	features [][]*Feature
}

func recordEvents(e *Engine) *eventLog {
	l := new(eventLog)
	fn := func(evt *ModifyEvent) {
		l.types = append(l.types, evt.Type)
		l.features = append(l.features, evt.Features)
	}
	e.On(ModifyStart, fn)
	e.On(ModifyEnd, fn)
	return l
}

func stripIDs(s []SegmentData) []SegmentData {
	o := make([]SegmentData, len(s))
	for i, ss := range s {
		ss.ID = 0
		ss.Linked = nil
		o[i] = ss
	}
	return o
}

// checkIndex verifies that the records of every tracked feature are the
// ones a fresh decomposition produces and that every record is indexed
// under its current extent.
func checkIndex(t *testing.T, e *Engine) {
	t.Helper()
	fresh, err := New(Options{
		Features: NewCollection(e.Features().Features()...),
		Viewport: e.opts.Viewport,
		Log:      testLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer fresh.Close()
	n := 0
	for _, f := range e.Features().Features() {
		want := stripIDs(fresh.Segments(f))
		have := stripIDs(e.Segments(f))
		if !reflect.DeepEqual(want, have) {
			t.Errorf("feature %s records: want %+v but have %+v", f.ID, want, have)
		}
		n += len(have)
	}
	if e.index.len() != n || len(e.index.records) != n {
		t.Errorf("index size: want %d but have %d entries and %d records", n, e.index.len(), len(e.index.records))
	}
	for id, rec := range e.index.records {
		var want *geom.Bounds
		if rec.isCircumference() {
			want = e.circleExtent(rec.Geometry.(*Circle))
		} else {
			want = e.segmentExtent(rec)
		}
		if have := e.index.entries[id].bounds; !reflect.DeepEqual(want, have) {
			t.Errorf("segment %d extent: want %v but have %v", id, want, have)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(Options{Viewport: testView()}); err == nil {
		t.Error("want an error without features")
	}
	if _, err := New(Options{Features: NewCollection()}); err == nil {
		t.Error("want an error without a viewport")
	}
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t, testView())
	if e.opts.PixelTolerance != DefaultPixelTolerance {
		t.Errorf("tolerance: want %v but have %v", DefaultPixelTolerance, e.opts.PixelTolerance)
	}
	if !e.snapToPointer {
		t.Error("want snapping to the pointer without hit detection")
	}
	if !e.Active() {
		t.Error("want a new engine to be active")
	}

	snap := true
	e2, err := New(Options{
		Features:      NewCollection(),
		Viewport:      testView(),
		HitDetection:  pixelPicker{},
		SnapToPointer: &snap,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !e2.snapToPointer {
		t.Error("an explicit SnapToPointer must win over the hit detection default")
	}
}

func TestFeatureAddRemove(t *testing.T) {
	c := NewCollection()
	e, err := New(Options{Features: c, Viewport: testView(), Log: testLog()})
	if err != nil {
		t.Fatal(err)
	}
	f := NewFeature("l", &LineString{Coords: []Coordinate{{0, 0}, {10, 0}, {20, 0}}})
	c.Add(f)
	if have := len(e.Segments(f)); have != 2 {
		t.Errorf("after add: want 2 records but have %d", have)
	}
	checkIndex(t, e)

	c.Remove(f)
	if have := len(e.Segments(f)); have != 0 {
		t.Errorf("after remove: want 0 records but have %d", have)
	}
	if e.index.len() != 0 {
		t.Errorf("want an empty index but have %d entries", e.index.len())
	}
	if e.Overlay().Marker() != nil {
		t.Error("want no marker once every feature is gone")
	}
}

func TestSourceForwarding(t *testing.T) {
	src := NewCollection(NewFeature("a", &Point{Coord: Coordinate{1, 1}}))
	e, err := New(Options{Source: src, Viewport: testView(), Log: testLog()})
	if err != nil {
		t.Fatal(err)
	}
	if e.Features() == src {
		t.Fatal("want an internal collection for a source")
	}
	if e.Features().Len() != 1 {
		t.Errorf("want 1 feature but have %d", e.Features().Len())
	}
	b := NewFeature("b", &Point{Coord: Coordinate{2, 2}})
	src.Add(b)
	if !e.Features().Contains(b) || len(e.Segments(b)) != 1 {
		t.Error("feature added to the source is not tracked")
	}
	src.Remove(b)
	if e.Features().Contains(b) || len(e.Segments(b)) != 0 {
		t.Error("feature removed from the source is still tracked")
	}

	e.Close()
	c := NewFeature("c", &Point{Coord: Coordinate{3, 3}})
	src.Add(c)
	if e.Features().Contains(c) {
		t.Error("a closed engine must stop following the source")
	}
}

func TestFeatureChangeReindexes(t *testing.T) {
	f := NewFeature("l", &LineString{Coords: []Coordinate{{0, 0}, {10, 0}}})
	e := newTestEngine(t, testView(), f)
	f.SetGeometry(&LineString{Coords: []Coordinate{{0, 0}, {10, 0}, {10, 10}, {0, 10}}})
	if have := len(e.Segments(f)); have != 3 {
		t.Errorf("want 3 records but have %d", have)
	}
	checkIndex(t, e)
	if _, ok := e.HitTest(e.pixelOf(Coordinate{5, 10}), Coordinate{5, 10}); !ok {
		t.Error("new segment is not hit")
	}
}

func TestHoverRefreshAfterAdd(t *testing.T) {
	v := testView()
	c := NewCollection()
	e, err := New(Options{Features: c, Viewport: v, Log: testLog()})
	if err != nil {
		t.Fatal(err)
	}
	e.HandleEvent(pointer(v, PointerMove, 10, 0))
	if e.Overlay().Marker() != nil {
		t.Fatal("want no marker over empty space")
	}
	c.Add(NewFeature("l", &LineString{Coords: []Coordinate{{0, 0}, {10, 0}}}))
	m := e.Overlay().Marker()
	if m == nil {
		t.Fatal("want a marker under the pointer after the feature was added")
	}
	if want, have := (Coordinate{10, 0}), m.Geometry().(*Point).Coord; !reflect.DeepEqual(want, have) {
		t.Errorf("marker: want %v but have %v", want, have)
	}
}

func TestDeactivate(t *testing.T) {
	v := testView()
	l := &LineString{Coords: []Coordinate{{0, 0}, {10, 0}, {20, 0}}}
	e := newTestEngine(t, v, NewFeature("l", l))
	events := recordEvents(e)

	e.HandleEvent(pointer(v, PointerMove, 10, 0))
	e.HandleEvent(pointer(v, PointerDown, 10, 0))
	e.SetActive(false)
	if e.Overlay().Marker() != nil {
		t.Error("want no marker after deactivation")
	}
	if !e.HandleEvent(pointer(v, PointerDrag, 10, 5)) {
		t.Error("an inactive engine must not consume events")
	}
	e.HandleEvent(pointer(v, PointerUp, 10, 5))

	want := []Coordinate{{0, 0}, {10, 0}, {20, 0}}
	if !reflect.DeepEqual(want, l.Coords) {
		t.Errorf("want %v but have %v", want, l.Coords)
	}
	if len(events.types) != 0 {
		t.Errorf("want no modify events but have %v", events.types)
	}

	e.SetActive(true)
	dragVertex(e, 10, 0, 10, 5)
	want = []Coordinate{{0, 0}, {10, 5}, {20, 0}}
	if !reflect.DeepEqual(want, l.Coords) {
		t.Errorf("after reactivation: want %v but have %v", want, l.Coords)
	}
	checkIndex(t, e)
}

func TestListenerRemoval(t *testing.T) {
	e := newTestEngine(t, testView(), NewFeature("l", &LineString{Coords: []Coordinate{{0, 0}, {10, 0}, {20, 0}}}))
	n := 0
	k := e.On(ModifyEnd, func(*ModifyEvent) { n++ })
	dragVertex(e, 10, 0, 10, 5)
	e.Off(k)
	dragVertex(e, 10, 5, 10, 0)
	if n != 1 {
		t.Errorf("want 1 call but have %d", n)
	}
}
