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

// EventType is the type of a pointer event.
type EventType string

// Pointer event types handled by the engine.
const (
	PointerMove EventType = "pointermove"
	PointerDown EventType = "pointerdown"
	PointerDrag EventType = "pointerdrag"
	PointerUp   EventType = "pointerup"
	SingleClick EventType = "singleclick"
)

// PointerEvent is a pointer event delivered by the host. Coordinate is in
// the user projection.
type PointerEvent struct {
	Type       EventType
	Pixel      Pixel
	Coordinate Coordinate

	// Button is the pressed mouse button; 0 is the primary button.
	Button int

	Alt, Shift, Ctrl, Meta bool
}

// Condition decides whether a pointer event triggers an action.
type Condition func(*PointerEvent) bool

// Always is a Condition that is always true.
func Always(*PointerEvent) bool { return true }

// Never is a Condition that is never true.
func Never(*PointerEvent) bool { return false }

// PrimaryAction is true for events from the primary mouse button.
func PrimaryAction(evt *PointerEvent) bool { return evt.Button == 0 }

// AltKeyOnlySingleClick is true for single clicks with only the Alt key
// held down.
func AltKeyOnlySingleClick(evt *PointerEvent) bool {
	return evt.Type == SingleClick && evt.Alt && !evt.Shift && !evt.Ctrl && !evt.Meta
}

// ModifyEventType is the type of a ModifyEvent.
type ModifyEventType string

// Modify event types.
const (
	ModifyStart ModifyEventType = "modifystart"
	ModifyEnd   ModifyEventType = "modifyend"
)

// ModifyEvent reports the features touched by a modification.
type ModifyEvent struct {
	Type     ModifyEventType
	Features []*Feature

	// Pointer is the pointer event that triggered the notification, if any.
	Pointer *PointerEvent
}

type modifyListener struct {
	key ListenerKey
	typ ModifyEventType
	fn  func(*ModifyEvent)
}

// modifyListeners dispatches ModifyEvents in registration order.
type modifyListeners struct {
	next ListenerKey
	list []modifyListener
}

func (l *modifyListeners) add(t ModifyEventType, fn func(*ModifyEvent)) ListenerKey {
	l.next++
	l.list = append(l.list, modifyListener{key: l.next, typ: t, fn: fn})
	return l.next
}

func (l *modifyListeners) remove(k ListenerKey) {
	for i, ll := range l.list {
		if ll.key == k {
			l.list = append(l.list[:i:i], l.list[i+1:]...)
			return
		}
	}
}

func (l *modifyListeners) dispatch(evt *ModifyEvent) {
	for _, ll := range append([]modifyListener(nil), l.list...) {
		if ll.typ == evt.Type {
			ll.fn(evt)
		}
	}
}

// On registers fn to be called for modify events of type t.
func (e *Engine) On(t ModifyEventType, fn func(*ModifyEvent)) ListenerKey {
	return e.listeners.add(t, fn)
}

// Off removes a listener registered with On.
func (e *Engine) Off(k ListenerKey) { e.listeners.remove(k) }

func (e *Engine) dispatch(t ModifyEventType, features []*Feature, evt *PointerEvent) {
	e.listeners.dispatch(&ModifyEvent{
		Type:     t,
		Features: append([]*Feature(nil), features...),
		Pointer:  evt,
	})
}

// willModify starts the modification of the current gesture the first
// time it is called for that gesture, collecting the features owning ids.
func (e *Engine) willModify(evt *PointerEvent, ids []SegmentID) {
	s := e.session
	if s == nil || s.modified != nil {
		return
	}
	var features []*Feature
	for _, id := range ids {
		rec := e.index.get(id)
		if rec == nil {
			continue
		}
		if !containsFeature(features, rec.Feature) {
			features = append(features, rec.Feature)
		}
	}
	if len(features) == 0 {
		return
	}
	s.modified = features
	e.dispatch(ModifyStart, features, evt)
}

// didModify ends the modification of the current gesture, if one started.
func (e *Engine) didModify(evt *PointerEvent) {
	s := e.session
	if s == nil || s.modified == nil {
		return
	}
	features := s.modified
	s.modified = nil
	e.dispatch(ModifyEnd, features, evt)
}

func containsFeature(features []*Feature, f *Feature) bool {
	for _, ff := range features {
		if ff == f {
			return true
		}
	}
	return false
}
