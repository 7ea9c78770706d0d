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
	"encoding/json"
	"fmt"
	"io"

	"github.com/ctessum/geom/encoding/geojson"
	"github.com/spatialmodel/modify"
	"github.com/spatialmodel/modify/internal/hash"
	"github.com/spf13/cast"
)

// geometryJSON is a GeoJSON geometry. Circles, which GeoJSON lacks, are
// written with type "Circle", the centre as coordinates and a radius
// member.
type geometryJSON struct {
	Type        string          `json:"type"`
	Coordinates interface{}     `json:"coordinates,omitempty"`
	Geometries  []*geometryJSON `json:"geometries,omitempty"`
	Radius      *float64        `json:"radius,omitempty"`
}

type featureJSON struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id,omitempty"`
	Geometry   *geometryJSON          `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type featureCollectionJSON struct {
	Type     string         `json:"type"`
	Features []*featureJSON `json:"features"`
}

// ReadGeoJSON reads a GeoJSON FeatureCollection. Features without an id
// are given one derived from their geometry.
func ReadGeoJSON(r io.Reader) ([]*modify.Feature, error) {
	var fc featureCollectionJSON
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("modify: decoding GeoJSON: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("modify: want a GeoJSON FeatureCollection but have type %q", fc.Type)
	}
	features := make([]*modify.Feature, 0, len(fc.Features))
	ids := make(map[string]int)
	for i, fj := range fc.Features {
		if fj == nil || fj.Geometry == nil {
			return nil, fmt.Errorf("modify: GeoJSON feature %d has no geometry", i)
		}
		g, err := decodeGeometry(fj.Geometry)
		if err != nil {
			return nil, fmt.Errorf("modify: GeoJSON feature %d: %v", i, err)
		}
		var id string
		if fj.ID != nil {
			if id, err = cast.ToStringE(fj.ID); err != nil {
				return nil, fmt.Errorf("modify: GeoJSON feature %d: invalid id: %v", i, err)
			}
		} else {
			id = hash.Key(g)
		}
		if n := ids[id]; n > 0 {
			ids[id]++
			id = fmt.Sprintf("%s-%d", id, n)
		} else {
			ids[id] = 1
		}
		f := modify.NewFeature(id, g)
		for k, v := range fj.Properties {
			f.Properties[k] = v
		}
		features = append(features, f)
	}
	return features, nil
}

// WriteGeoJSON writes features as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, features []*modify.Feature) error {
	fc := featureCollectionJSON{
		Type:     "FeatureCollection",
		Features: make([]*featureJSON, len(features)),
	}
	for i, f := range features {
		g, err := encodeGeometry(f.Geometry())
		if err != nil {
			return fmt.Errorf("modify: encoding feature %s: %v", f.ID, err)
		}
		fc.Features[i] = &featureJSON{
			Type:       "Feature",
			ID:         f.ID,
			Geometry:   g,
			Properties: f.Properties,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("modify: writing GeoJSON: %v", err)
	}
	return nil
}

func position(v interface{}) (modify.Coordinate, error) {
	s, err := cast.ToSliceE(v)
	if err != nil {
		return nil, err
	}
	if len(s) < 2 {
		return nil, geojson.InvalidGeometryError{}
	}
	c := make(modify.Coordinate, len(s))
	for i, x := range s {
		if c[i], err = cast.ToFloat64E(x); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func positions(v interface{}) ([]modify.Coordinate, error) {
	s, err := cast.ToSliceE(v)
	if err != nil {
		return nil, err
	}
	o := make([]modify.Coordinate, len(s))
	for i, p := range s {
		if o[i], err = position(p); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func positions2(v interface{}) ([][]modify.Coordinate, error) {
	s, err := cast.ToSliceE(v)
	if err != nil {
		return nil, err
	}
	o := make([][]modify.Coordinate, len(s))
	for i, p := range s {
		if o[i], err = positions(p); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func positions3(v interface{}) ([][][]modify.Coordinate, error) {
	s, err := cast.ToSliceE(v)
	if err != nil {
		return nil, err
	}
	o := make([][][]modify.Coordinate, len(s))
	for i, p := range s {
		if o[i], err = positions2(p); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func decodeGeometry(g *geometryJSON) (modify.Geometry, error) {
	switch modify.GeometryType(g.Type) {
	case modify.PointType:
		if s, ok := g.Coordinates.([]interface{}); ok && len(s) == 0 {
			return &modify.Point{}, nil
		}
		c, err := position(g.Coordinates)
		return &modify.Point{Coord: c}, err
	case modify.MultiPointType:
		c, err := positions(g.Coordinates)
		return &modify.MultiPoint{Coords: c}, err
	case modify.LineStringType:
		c, err := positions(g.Coordinates)
		return &modify.LineString{Coords: c}, err
	case modify.MultiLineStringType:
		c, err := positions2(g.Coordinates)
		return &modify.MultiLineString{Lines: c}, err
	case modify.PolygonType:
		c, err := positions2(g.Coordinates)
		return &modify.Polygon{Rings: c}, err
	case modify.MultiPolygonType:
		c, err := positions3(g.Coordinates)
		return &modify.MultiPolygon{Polygons: c}, err
	case modify.CircleType:
		if g.Radius == nil || *g.Radius < 0 {
			return nil, geojson.InvalidGeometryError{}
		}
		c, err := position(g.Coordinates)
		return &modify.Circle{Center: c, Radius: *g.Radius}, err
	case modify.GeometryCollectionType:
		gc := &modify.GeometryCollection{Geometries: make([]modify.Geometry, len(g.Geometries))}
		for i, gg := range g.Geometries {
			if gg == nil {
				return nil, geojson.InvalidGeometryError{}
			}
			var err error
			if gc.Geometries[i], err = decodeGeometry(gg); err != nil {
				return nil, err
			}
		}
		return gc, nil
	default:
		return nil, geojson.UnsupportedGeometryError{Type: g.Type}
	}
}

func encodeGeometry(g modify.Geometry) (*geometryJSON, error) {
	if g == nil {
		return nil, geojson.InvalidGeometryError{}
	}
	o := &geometryJSON{Type: string(g.Type())}
	switch t := g.(type) {
	case *modify.Point:
		if t.Coord == nil {
			o.Coordinates = []float64{}
		} else {
			o.Coordinates = t.Coord
		}
	case *modify.MultiPoint:
		o.Coordinates = t.Coords
	case *modify.LineString:
		o.Coordinates = t.Coords
	case *modify.MultiLineString:
		o.Coordinates = t.Lines
	case *modify.Polygon:
		o.Coordinates = t.Rings
	case *modify.MultiPolygon:
		o.Coordinates = t.Polygons
	case *modify.Circle:
		r := t.Radius
		o.Coordinates = t.Center
		o.Radius = &r
	case *modify.GeometryCollection:
		o.Geometries = make([]*geometryJSON, len(t.Geometries))
		for i, gg := range t.Geometries {
			var err error
			if o.Geometries[i], err = encodeGeometry(gg); err != nil {
				return nil, err
			}
		}
	default:
		return nil, geojson.UnsupportedGeometryError{Type: string(g.Type())}
	}
	return o, nil
}
