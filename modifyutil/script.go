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

package modifyutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/modify"
)

// RemovePointEvent is the script event type that deletes the vertex
// under the pointer, as a host would do from a button or key binding.
const RemovePointEvent = "removepoint"

// ScriptEvent is one recorded pointer event. X and Y are in the user
// projection.
type ScriptEvent struct {
	Type                   string
	X, Y                   float64
	Button                 int
	Alt, Shift, Ctrl, Meta bool
}

// Script is a sequence of pointer events, stored in TOML as an array of
// [[Event]] tables.
type Script struct {
	Event []ScriptEvent
}

// ReadScript reads a TOML gesture script.
func ReadScript(r io.Reader) (*Script, error) {
	s := new(Script)
	if _, err := toml.DecodeReader(r, s); err != nil {
		return nil, fmt.Errorf("modify: decoding script: %v", err)
	}
	for i, evt := range s.Event {
		if _, err := eventType(evt.Type); err != nil {
			return nil, fmt.Errorf("modify: script event %d: %v", i, err)
		}
	}
	return s, nil
}

func eventType(t string) (modify.EventType, error) {
	switch et := modify.EventType(strings.ToLower(t)); et {
	case modify.PointerMove, modify.PointerDown, modify.PointerDrag, modify.PointerUp, modify.SingleClick:
		return et, nil
	case RemovePointEvent:
		return et, nil
	default:
		return "", fmt.Errorf("invalid event type %q", t)
	}
}

// Replay delivers the events in s to e. v must be the engine's viewport,
// and user its user projection, so that pixel positions can be computed.
// It returns the number of events the engine consumed.
func (s *Script) Replay(e *modify.Engine, v modify.Viewport, user *proj.SR) (int, error) {
	toView := func(x, y float64) (float64, float64, error) { return x, y, nil }
	if user != nil && v.Projection() != nil {
		t, err := user.NewTransform(v.Projection())
		if err != nil {
			return 0, fmt.Errorf("modify: creating script transform: %v", err)
		}
		toView = t
	}
	consumed := 0
	for i, se := range s.Event {
		t, err := eventType(se.Type)
		if err != nil {
			return consumed, fmt.Errorf("modify: script event %d: %v", i, err)
		}
		if t == RemovePointEvent {
			if e.RemovePoint() {
				consumed++
			}
			continue
		}
		x, y, err := toView(se.X, se.Y)
		if err != nil {
			return consumed, fmt.Errorf("modify: script event %d: %v", i, err)
		}
		evt := &modify.PointerEvent{
			Type:       t,
			Pixel:      v.PixelFromCoordinate(geom.Point{X: x, Y: y}),
			Coordinate: modify.Coordinate{se.X, se.Y},
			Button:     se.Button,
			Alt:        se.Alt,
			Shift:      se.Shift,
			Ctrl:       se.Ctrl,
			Meta:       se.Meta,
		}
		if !e.HandleEvent(evt) {
			consumed++
		}
		logrus.WithFields(logrus.Fields{
			"event": t,
			"x":     se.X,
			"y":     se.Y,
		}).Debug("modify: replayed event")
	}
	return consumed, nil
}
