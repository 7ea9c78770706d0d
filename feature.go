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

// ListenerKey identifies a registered callback so that it can be removed.
type ListenerKey int

// featureListeners is an ordered set of callbacks taking a feature.
type featureListeners struct {
	keys []ListenerKey
	fns  map[ListenerKey]func(*Feature)
}

func (l *featureListeners) add(k ListenerKey, fn func(*Feature)) ListenerKey {
	if l.fns == nil {
		l.fns = make(map[ListenerKey]func(*Feature))
	}
	l.keys = append(l.keys, k)
	l.fns[k] = fn
	return k
}

func (l *featureListeners) remove(k ListenerKey) {
	if _, ok := l.fns[k]; !ok {
		return
	}
	delete(l.fns, k)
	for i, kk := range l.keys {
		if kk == k {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)
			break
		}
	}
}

func (l *featureListeners) fire(f *Feature) {
	keys := append([]ListenerKey(nil), l.keys...)
	for _, k := range keys {
		if fn, ok := l.fns[k]; ok {
			fn(f)
		}
	}
}

// Feature is a caller-owned object holding exactly one geometry.
type Feature struct {
	ID         string
	Properties map[string]interface{}

	geometry Geometry
	change   featureListeners
	nextKey  ListenerKey
}

// NewFeature creates a feature holding g.
func NewFeature(id string, g Geometry) *Feature {
	return &Feature{ID: id, Properties: make(map[string]interface{}), geometry: g}
}

// Geometry returns the geometry held by f.
func (f *Feature) Geometry() Geometry { return f.geometry }

// SetGeometry replaces the geometry of f and notifies change listeners.
func (f *Feature) SetGeometry(g Geometry) {
	f.geometry = g
	f.Changed()
}

// Changed notifies change listeners that the geometry of f was mutated
// in place.
func (f *Feature) Changed() { f.change.fire(f) }

// OnChange registers fn to be called whenever f changes.
func (f *Feature) OnChange(fn func(*Feature)) ListenerKey {
	f.nextKey++
	return f.change.add(f.nextKey, fn)
}

// Unlisten removes a change listener.
func (f *Feature) Unlisten(k ListenerKey) { f.change.remove(k) }

// Source is a feature store whose additions and removals can be observed.
type Source interface {
	Features() []*Feature
	OnAddFeature(func(*Feature)) ListenerKey
	OnRemoveFeature(func(*Feature)) ListenerKey
	Unlisten(ListenerKey)
}

// Collection is an observable set of features. It implements Source.
type Collection struct {
	features []*Feature
	onAdd    featureListeners
	onRemove featureListeners
	nextKey  ListenerKey
}

// NewCollection creates a collection holding features.
func NewCollection(features ...*Feature) *Collection {
	c := new(Collection)
	for _, f := range features {
		c.Add(f)
	}
	return c
}

// Features returns the features in c in insertion order.
func (c *Collection) Features() []*Feature {
	return append([]*Feature(nil), c.features...)
}

// Len returns the number of features in c.
func (c *Collection) Len() int { return len(c.features) }

// Contains returns whether f is in c.
func (c *Collection) Contains(f *Feature) bool {
	return c.indexOf(f) >= 0
}

func (c *Collection) indexOf(f *Feature) int {
	for i, ff := range c.features {
		if ff == f {
			return i
		}
	}
	return -1
}

// Add adds f to c. Adding a feature that is already present does nothing.
func (c *Collection) Add(f *Feature) {
	if c.Contains(f) {
		return
	}
	c.features = append(c.features, f)
	c.onAdd.fire(f)
}

// Remove removes f from c.
func (c *Collection) Remove(f *Feature) {
	i := c.indexOf(f)
	if i < 0 {
		return
	}
	c.features = append(c.features[:i], c.features[i+1:]...)
	c.onRemove.fire(f)
}

// OnAddFeature registers fn to be called after a feature is added.
func (c *Collection) OnAddFeature(fn func(*Feature)) ListenerKey {
	c.nextKey++
	return c.onAdd.add(c.nextKey, fn)
}

// OnRemoveFeature registers fn to be called after a feature is removed.
func (c *Collection) OnRemoveFeature(fn func(*Feature)) ListenerKey {
	c.nextKey++
	return c.onRemove.add(c.nextKey, fn)
}

// Unlisten removes an add or remove listener.
func (c *Collection) Unlisten(k ListenerKey) {
	c.onAdd.remove(k)
	c.onRemove.remove(k)
}
