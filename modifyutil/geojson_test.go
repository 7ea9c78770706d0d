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
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/kr/pretty"
	"github.com/spatialmodel/modify"
	"github.com/spatialmodel/modify/internal/hash"
)

const testGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "line", "properties": {"name": "a"},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [10, 0, 5]]}},
    {"type": "Feature", "id": 7, "properties": null,
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Circle", "coordinates": [5, 5], "radius": 2}},
    {"type": "Feature", "id": "gc",
     "geometry": {"type": "GeometryCollection", "geometries": [
       {"type": "Point", "coordinates": [1, 2]},
       {"type": "MultiPoint", "coordinates": [[3, 4]]}]}},
    {"type": "Feature", "id": "mp",
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[0, 0], [1, 0], [0, 1], [0, 0]]]]}},
    {"type": "Feature", "id": "ml",
     "geometry": {"type": "MultiLineString", "coordinates": [[[0, 0], [1, 1]], [[2, 2], [3, 3]]]}},
    {"type": "Feature", "id": "empty",
     "geometry": {"type": "Point", "coordinates": []}}
  ]
}`

func TestReadGeoJSON(t *testing.T) {
	features, err := ReadGeoJSON(strings.NewReader(testGeoJSON))
	if err != nil {
		t.Fatal(err)
	}
	circle := &modify.Circle{Center: modify.Coordinate{5, 5}, Radius: 2}
	want := []struct {
		id string
		g  modify.Geometry
	}{
		{id: "line", g: &modify.LineString{Coords: []modify.Coordinate{{0, 0}, {10, 0, 5}}}},
		{id: "7", g: &modify.Polygon{Rings: [][]modify.Coordinate{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}},
		{id: hash.Key(circle), g: circle},
		{id: "gc", g: &modify.GeometryCollection{Geometries: []modify.Geometry{
			&modify.Point{Coord: modify.Coordinate{1, 2}},
			&modify.MultiPoint{Coords: []modify.Coordinate{{3, 4}}},
		}}},
		{id: "mp", g: &modify.MultiPolygon{Polygons: [][][]modify.Coordinate{{{{0, 0}, {1, 0}, {0, 1}, {0, 0}}}}}},
		{id: "ml", g: &modify.MultiLineString{Lines: [][]modify.Coordinate{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}}}}},
		{id: "empty", g: &modify.Point{}},
	}
	if len(features) != len(want) {
		t.Fatalf("want %d features but have %d", len(want), len(features))
	}
	for i, w := range want {
		f := features[i]
		if f.ID != w.id {
			t.Errorf("feature %d: want id %q but have %q", i, w.id, f.ID)
		}
		if !reflect.DeepEqual(w.g, f.Geometry()) {
			t.Errorf("feature %d: %v", i, pretty.Diff(w.g, f.Geometry()))
		}
	}
	if have := features[0].Properties["name"]; have != "a" {
		t.Errorf("want property name=a but have %v", have)
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	features, err := ReadGeoJSON(strings.NewReader(testGeoJSON))
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := WriteGeoJSON(&b, features); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), `"radius": 2`) {
		t.Errorf("circle radius missing from output:\n%s", b.String())
	}
	features2, err := ReadGeoJSON(&b)
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range features {
		f2 := features2[i]
		if f.ID != f2.ID || !reflect.DeepEqual(f.Geometry(), f2.Geometry()) {
			t.Errorf("feature %d changed: %v", i, pretty.Diff(f.Geometry(), f2.Geometry()))
		}
	}
}

func TestReadGeoJSONDuplicateGeometry(t *testing.T) {
	const in = `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 1]}},
	  {"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 1]}}]}`
	features, err := ReadGeoJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	key := hash.Key(&modify.Point{Coord: modify.Coordinate{1, 1}})
	if want := []string{key, key + "-1"}; !reflect.DeepEqual(want, featureIDs(features)) {
		t.Errorf("want ids %v but have %v", want, featureIDs(features))
	}
}

func TestReadGeoJSONErrors(t *testing.T) {
	tests := []struct {
		name, in, err string
	}{
		{
			name: "not a collection",
			in:   `{"type": "Feature"}`,
			err:  "want a GeoJSON FeatureCollection",
		},
		{
			name: "unsupported",
			in:   `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry": {"type": "Curve", "coordinates": [0, 0]}}]}`,
			err:  "unsupported geometry type Curve",
		},
		{
			name: "short position",
			in:   `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0], [1, 1]]}}]}`,
			err:  "invalid geometry",
		},
		{
			name: "circle without radius",
			in:   `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry": {"type": "Circle", "coordinates": [0, 0]}}]}`,
			err:  "invalid geometry",
		},
		{
			name: "no geometry",
			in:   `{"type": "FeatureCollection", "features": [{"type": "Feature"}]}`,
			err:  "has no geometry",
		},
		{
			name: "bad json",
			in:   `{"type": `,
			err:  "decoding GeoJSON",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadGeoJSON(strings.NewReader(test.in))
			if err == nil {
				t.Fatal("want an error")
			}
			if !strings.Contains(err.Error(), test.err) {
				t.Errorf("want error containing %q but have %q", test.err, err)
			}
		})
	}
}

type curve struct{}

func (curve) Type() modify.GeometryType { return "Curve" }
func (curve) Bounds() *geom.Bounds      { return geom.NewBounds() }

func TestWriteGeoJSONUnsupported(t *testing.T) {
	err := WriteGeoJSON(new(bytes.Buffer), []*modify.Feature{modify.NewFeature("c", curve{})})
	if err == nil || !strings.Contains(err.Error(), "unsupported geometry type Curve") {
		t.Errorf("want an unsupported geometry error but have %v", err)
	}
}
