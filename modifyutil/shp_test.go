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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/modify"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "modify")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestShapefileLines(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "lines.shp")

	in := []*modify.Feature{
		modify.NewFeature("a", &modify.LineString{Coords: []modify.Coordinate{{0, 0}, {10, 5}, {20, 0}}}),
		modify.NewFeature("b", &modify.MultiLineString{Lines: [][]modify.Coordinate{
			{{0, 10}, {5, 10}},
			{{6, 10}, {9, 12}},
		}}),
	}
	if err := WriteShapefile(filename, in); err != nil {
		t.Fatal(err)
	}
	out, sr, err := ReadShapefile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if sr != nil {
		t.Errorf("want no projection but have %v", sr)
	}
	if len(out) != len(in) {
		t.Fatalf("want %d features but have %d", len(in), len(out))
	}
	for i, f := range in {
		if out[i].ID != f.ID {
			t.Errorf("feature %d: want id %q but have %q", i, f.ID, out[i].ID)
		}
		if !reflect.DeepEqual(f.Geometry(), out[i].Geometry()) {
			t.Errorf("feature %d: %v", i, pretty.Diff(f.Geometry(), out[i].Geometry()))
		}
	}
}

func TestShapefilePolygons(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "polygons.shp")

	ring := []modify.Coordinate{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	hole := []modify.Coordinate{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}}
	in := []*modify.Feature{
		modify.NewFeature("p", &modify.Polygon{Rings: [][]modify.Coordinate{ring, hole}}),
		modify.NewFeature("mp", &modify.MultiPolygon{Polygons: [][][]modify.Coordinate{{ring}, {hole}}}),
	}
	if err := WriteShapefile(filename, in); err != nil {
		t.Fatal(err)
	}
	out, _, err := ReadShapefile(filename)
	if err != nil {
		t.Fatal(err)
	}
	want := &modify.Polygon{Rings: [][]modify.Coordinate{ring, hole}}
	for i, f := range out {
		// MultiPolygons come back as one polygon holding every ring.
		if !reflect.DeepEqual(want, f.Geometry()) {
			t.Errorf("feature %d: %v", i, pretty.Diff(want, f.Geometry()))
		}
	}
}

func TestWriteShapefileErrors(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "bad.shp")

	mixed := []*modify.Feature{
		modify.NewFeature("pt", &modify.Point{Coord: modify.Coordinate{0, 0}}),
		modify.NewFeature("l", &modify.LineString{Coords: []modify.Coordinate{{0, 0}, {1, 1}}}),
	}
	if err := WriteShapefile(filename, mixed); err == nil || !strings.Contains(err.Error(), "same shape type") {
		t.Errorf("mixed shapes: want an error but have %v", err)
	}
	circle := []*modify.Feature{
		modify.NewFeature("c", &modify.Circle{Center: modify.Coordinate{0, 0}, Radius: 1}),
	}
	if err := WriteShapefile(filename, circle); err == nil {
		t.Error("circle: want an error")
	}
	if err := WriteShapefile(filename, nil); err == nil {
		t.Error("no features: want an error")
	}
}
