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

// Package modify is an interactive vector-geometry editing engine. It
// lets a user grab, drag, insert and delete vertices of the geometries of
// a set of features with pointer input, while it keeps a spatial index of
// geometry segments consistent with every mutation.
//
// The engine is single-threaded: all of its methods must be called from
// the host's event loop. Callers must not mutate tracked geometries
// directly while a gesture is in progress.
package modify

import (
	"errors"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
)

// Version gives the version number.
const Version = "1.0.0"

// DefaultPixelTolerance is the default hit tolerance in pixels.
const DefaultPixelTolerance = 10

// HitDetector picks features by rendered pixel. It is used in preference
// to the spatial index for Point geometries.
type HitDetector interface {
	FeaturesAtPixel(Pixel) []*Feature
}

// SubsegmentFunc splits the stored segment s into the pieces that are
// used for distance calculations, for example to follow a geodesic.
// viewExtent is the visible extent in the user projection.
type SubsegmentFunc func(f *Feature, s SegmentData, viewExtent *geom.Bounds) [][2]Coordinate

// SegmentExtentFunc returns the user-projection extent under which s is
// indexed, in place of the bounds of its two end points.
type SegmentExtentFunc func(f *Feature, s SegmentData) *geom.Bounds

// StyleFunc styles the vertex marker. The engine never calls it; it is
// handed to the renderer through the Overlay.
type StyleFunc func(*Feature) interface{}

// Options configures an Engine.
type Options struct {
	// Features holds the editable features. Either Features or Source
	// must be set.
	Features *Collection

	// Source is used when Features is nil. Its additions and removals are
	// forwarded into an internal collection.
	Source Source

	// Viewport converts between pixels and coordinates. Required.
	Viewport Viewport

	// UserProjection is the projection of feature coordinates and pointer
	// event coordinates. When nil, user and view projections are the same.
	UserProjection *proj.SR

	// PixelTolerance is the hit tolerance in pixels. The default is
	// DefaultPixelTolerance.
	PixelTolerance float64

	// SnapToPointer moves a grabbed vertex onto the pointer. When false,
	// the offset between pointer and vertex at the time the vertex was
	// grabbed is kept for the whole drag. The default is true unless
	// HitDetection is set.
	SnapToPointer *bool

	// Condition must hold for a pointer down to start a gesture. The
	// default is PrimaryAction.
	Condition Condition

	// DeleteCondition decides when the vertex under the pointer is
	// deleted. The default is AltKeyOnlySingleClick.
	DeleteCondition Condition

	// InsertVertexCondition decides whether grabbing a segment between
	// its vertices inserts a new vertex. The default is Always.
	InsertVertexCondition Condition

	HitDetection  HitDetector
	Subsegments   SubsegmentFunc
	SegmentExtent SegmentExtentFunc
	Style         StyleFunc

	// Log receives debug information. The default is the logrus standard
	// logger.
	Log logrus.FieldLogger
}

// Overlay holds the vertex marker for rendering.
type Overlay struct {
	Style  StyleFunc
	marker *Feature
}

// Marker returns the vertex marker, or nil when no vertex is under the
// pointer.
func (o *Overlay) Marker() *Feature { return o.marker }

// Features returns the features to be rendered in the overlay.
func (o *Overlay) Features() []*Feature {
	if o.marker == nil {
		return nil
	}
	return []*Feature{o.marker}
}

// Engine is the editing engine.
type Engine struct {
	opts           Options
	features       *Collection
	source         Source
	sourceKeys     []ListenerKey
	collectionKeys []ListenerKey
	featureKeys    map[*Feature]ListenerKey

	index   *segmentIndex
	proj    *projector
	overlay *Overlay
	log     logrus.FieldLogger

	active        bool
	snapToPointer bool

	// Hover state.
	vertexSegments map[SegmentID]bool
	hoverOffset    Pixel
	lastHover      *PointerEvent

	session         *dragSession
	lastEvent       *PointerEvent
	handlingDownUp  bool
	changingFeature bool
	ignoreNextClick bool

	listeners modifyListeners
}

// New creates an active Engine and indexes the features it is given.
func New(opts Options) (*Engine, error) {
	if opts.Features == nil && opts.Source == nil {
		return nil, errors.New("modify: either Features or Source must be provided")
	}
	if opts.Viewport == nil {
		return nil, errors.New("modify: a Viewport must be provided")
	}
	pr, err := newProjector(opts.UserProjection, opts.Viewport.Projection())
	if err != nil {
		return nil, err
	}
	if opts.PixelTolerance <= 0 {
		opts.PixelTolerance = DefaultPixelTolerance
	}
	if opts.Condition == nil {
		opts.Condition = PrimaryAction
	}
	if opts.DeleteCondition == nil {
		opts.DeleteCondition = AltKeyOnlySingleClick
	}
	if opts.InsertVertexCondition == nil {
		opts.InsertVertexCondition = Always
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	e := &Engine{
		opts:          opts,
		featureKeys:   make(map[*Feature]ListenerKey),
		index:         newSegmentIndex(),
		proj:          pr,
		overlay:       &Overlay{Style: opts.Style},
		log:           opts.Log,
		active:        true,
		snapToPointer: opts.HitDetection == nil,
	}
	if opts.SnapToPointer != nil {
		e.snapToPointer = *opts.SnapToPointer
	}

	e.features = opts.Features
	if e.features == nil {
		e.source = opts.Source
		e.features = NewCollection(opts.Source.Features()...)
		e.sourceKeys = []ListenerKey{
			opts.Source.OnAddFeature(e.features.Add),
			opts.Source.OnRemoveFeature(e.features.Remove),
		}
	}
	for _, f := range e.features.Features() {
		e.addFeature(f)
	}
	e.collectionKeys = []ListenerKey{
		e.features.OnAddFeature(e.addFeature),
		e.features.OnRemoveFeature(e.removeFeature),
	}
	return e, nil
}

// Overlay returns the overlay holding the vertex marker.
func (e *Engine) Overlay() *Overlay { return e.overlay }

// Features returns the collection of editable features.
func (e *Engine) Features() *Collection { return e.features }

// Active returns whether the engine handles events.
func (e *Engine) Active() bool { return e.active }

// SetActive activates or deactivates the engine. Deactivating discards
// the vertex marker and any gesture in progress without touching the
// geometries.
func (e *Engine) SetActive(active bool) {
	if !active {
		e.removeMarker()
		e.session = nil
		e.handlingDownUp = false
		e.vertexSegments = nil
	}
	e.active = active
}

// Close deactivates the engine and stops observing features.
func (e *Engine) Close() {
	e.SetActive(false)
	for _, k := range e.collectionKeys {
		e.features.Unlisten(k)
	}
	for _, k := range e.sourceKeys {
		e.source.Unlisten(k)
	}
	for f, k := range e.featureKeys {
		f.Unlisten(k)
	}
	e.featureKeys = make(map[*Feature]ListenerKey)
}

// Segments returns copies of the records of f.
func (e *Engine) Segments(f *Feature) []SegmentData {
	ids := e.index.featureIDs(f)
	o := make([]SegmentData, 0, len(ids))
	for _, id := range ids {
		o = append(o, *e.index.get(id))
	}
	sortSegments(o)
	return o
}

// SegmentsIn returns copies of the records whose indexed extent
// intersects b.
func (e *Engine) SegmentsIn(b *geom.Bounds) []SegmentData {
	var o []SegmentData
	e.index.forEach(b, func(s *SegmentData) { o = append(o, *s) })
	return o
}

func (e *Engine) addFeature(f *Feature) {
	e.writeFeature(f)
	if e.active && e.lastHover != nil && !e.handlingDownUp {
		e.handlePointerAtPixel(e.lastHover.Pixel, e.lastHover.Coordinate)
	}
	e.featureKeys[f] = f.OnChange(e.handleFeatureChange)
	e.log.WithFields(logrus.Fields{
		"feature":  f.ID,
		"segments": len(e.index.featureIDs(f)),
	}).Debug("modify: tracking feature")
}

func (e *Engine) removeFeature(f *Feature) {
	e.removeFeatureSegments(f)
	if e.features.Len() == 0 {
		e.removeMarker()
	}
	if k, ok := e.featureKeys[f]; ok {
		f.Unlisten(k)
		delete(e.featureKeys, f)
	}
}

func (e *Engine) handleFeatureChange(f *Feature) {
	if e.changingFeature {
		return
	}
	e.removeFeatureSegments(f)
	e.writeFeature(f)
}

func (e *Engine) removeFeatureSegments(f *Feature) {
	for _, id := range e.index.removeFeature(f) {
		e.forgetSegment(id)
	}
}

// removeRecord removes a record from the index and from the current
// gesture.
func (e *Engine) removeRecord(id SegmentID) {
	e.index.remove(id)
	e.forgetSegment(id)
}

func (e *Engine) forgetSegment(id SegmentID) {
	if e.session == nil {
		return
	}
	segs := e.session.segments[:0]
	for _, ds := range e.session.segments {
		if ds.id != id {
			segs = append(segs, ds)
		}
	}
	e.session.segments = segs
}

// featureChanged notifies observers of f that the engine changed its
// geometry, without re-indexing it.
func (e *Engine) featureChanged(f *Feature) {
	e.changingFeature = true
	f.Changed()
	e.changingFeature = false
}

// HandleEvent processes a pointer event. It returns false when the event
// was consumed and should not be handled further by the host.
func (e *Engine) HandleEvent(evt *PointerEvent) bool {
	if !e.active {
		return true
	}
	e.lastEvent = evt
	if evt.Type == PointerMove && !e.handlingDownUp {
		e.handlePointerMove(evt)
	}
	handled := false
	if e.overlay.marker != nil && e.opts.DeleteCondition(evt) {
		if evt.Type != SingleClick || !e.ignoreNextClick {
			handled = e.RemovePoint()
		} else {
			handled = true
		}
	}
	if evt.Type == SingleClick {
		e.ignoreNextClick = false
	}

	stop := false
	switch evt.Type {
	case PointerDown:
		e.handlingDownUp = e.handleDown(evt)
		stop = e.handlingDownUp
	case PointerDrag:
		if e.handlingDownUp {
			e.handleDrag(evt)
		}
	case PointerUp:
		if e.handlingDownUp {
			e.handleUp(evt)
			e.handlingDownUp = false
		}
	}
	return !stop && !handled
}

func (e *Engine) handlePointerMove(evt *PointerEvent) {
	e.lastHover = evt
	// Any gesture left over here is finished.
	e.session = nil
	e.handlePointerAtPixel(evt.Pixel, evt.Coordinate)
}

// setMarker places the vertex marker at vertex.
func (e *Engine) setMarker(vertex Coordinate, features []*Feature, geometries []Geometry) {
	if e.overlay.marker == nil {
		e.overlay.marker = NewFeature("vertex", &Point{Coord: vertex})
	} else {
		e.overlay.marker.SetGeometry(&Point{Coord: vertex})
	}
	e.overlay.marker.Properties["features"] = features
	e.overlay.marker.Properties["geometries"] = geometries
}

func (e *Engine) removeMarker() {
	e.overlay.marker = nil
}

func (e *Engine) markerVertex() Coordinate {
	return e.overlay.marker.Geometry().(*Point).Coord
}
