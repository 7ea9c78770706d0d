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
	"os"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/modify"
	"github.com/spatialmodel/modify/internal/hash"
)

// IDField is the shapefile attribute holding feature IDs.
const IDField = "id"

// ReadShapefile reads the features in the shapefile filename. Feature IDs
// are read from the IDField attribute when the file has one and are
// otherwise derived from the geometry; the values of the other named
// fields are stored as feature properties. The returned projection is
// nil when the shapefile has no .prj file. Records with no geometry are
// skipped.
func ReadShapefile(filename string, fields ...string) ([]*modify.Feature, *proj.SR, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("modify: opening shapefile: %v", err)
	}
	defer d.Close()

	hasID := false
	for _, f := range d.Fields() {
		if strings.EqualFold(strings.TrimRight(string(f.Name[:]), "\x00"), IDField) {
			hasID = true
		}
	}
	names := fields
	if hasID {
		names = append([]string{IDField}, fields...)
	}

	var features []*modify.Feature
	ids := make(map[string]bool)
	for {
		g, vals, more := d.DecodeRowFields(names...)
		if err := d.Error(); err != nil {
			return nil, nil, fmt.Errorf("modify: reading shapefile: %v", err)
		}
		if !more {
			break
		}
		mg := fromGeom(g)
		if mg == nil {
			continue
		}
		id := attribute(vals[IDField])
		if id == "" || ids[id] {
			id = hash.Key(mg)
			for n := 1; ids[id]; n++ {
				id = fmt.Sprintf("%s-%d", hash.Key(mg), n)
			}
		}
		ids[id] = true
		f := modify.NewFeature(id, mg)
		for _, name := range fields {
			f.Properties[name] = attribute(vals[name])
		}
		features = append(features, f)
	}

	sr, err := d.SR()
	if err != nil {
		if os.IsNotExist(err) {
			return features, nil, nil
		}
		return nil, nil, fmt.Errorf("modify: reading shapefile projection: %v", err)
	}
	return features, sr, nil
}

// WriteShapefile writes features to the shapefile filename with their IDs
// in the IDField attribute. Shapefiles hold a single kind of shape, so the
// features must all be points, all be lines or all be polygons.
// MultiPolygons are written as single polygons holding all of their rings,
// and circles cannot be written.
func WriteShapefile(filename string, features []*modify.Feature) error {
	if len(features) == 0 {
		return fmt.Errorf("modify: no features to write to %s", filename)
	}
	shapes := make([]geom.Geom, len(features))
	var kind goshp.ShapeType
	for i, f := range features {
		g, t, err := toGeom(f.Geometry())
		if err != nil {
			return fmt.Errorf("modify: writing feature %s to shapefile: %v", f.ID, err)
		}
		if i == 0 {
			kind = t
		} else if t != kind {
			return fmt.Errorf("modify: feature %s does not have the same shape type as feature %s",
				f.ID, features[0].ID)
		}
		shapes[i] = g
	}
	e, err := shp.NewEncoderFromFields(filename, kind, goshp.StringField(IDField, 50))
	if err != nil {
		return fmt.Errorf("modify: creating shapefile: %v", err)
	}
	for i, g := range shapes {
		if err := e.EncodeFields(g, features[i].ID); err != nil {
			e.Close()
			return fmt.Errorf("modify: writing shapefile: %v", err)
		}
	}
	e.Close()
	return nil
}

// attribute strips the padding from a dBASE field value.
func attribute(s string) string { return strings.Trim(s, " \x00") }

func coordinates(pts []geom.Point) []modify.Coordinate {
	o := make([]modify.Coordinate, len(pts))
	for i, p := range pts {
		o[i] = modify.Coordinate{p.X, p.Y}
	}
	return o
}

func points(c []modify.Coordinate) []geom.Point {
	o := make([]geom.Point, len(c))
	for i, cc := range c {
		o[i] = cc.Point()
	}
	return o
}

// fromGeom converts a shapefile geometry.
func fromGeom(g geom.Geom) modify.Geometry {
	switch t := g.(type) {
	case geom.Point:
		return &modify.Point{Coord: modify.Coordinate{t.X, t.Y}}
	case geom.MultiPoint:
		return &modify.MultiPoint{Coords: coordinates(t)}
	case geom.MultiLineString:
		if len(t) == 1 {
			return &modify.LineString{Coords: coordinates(t[0])}
		}
		ml := &modify.MultiLineString{Lines: make([][]modify.Coordinate, len(t))}
		for i, l := range t {
			ml.Lines[i] = coordinates(l)
		}
		return ml
	case geom.Polygon:
		p := &modify.Polygon{Rings: make([][]modify.Coordinate, len(t))}
		for i, r := range t {
			p.Rings[i] = coordinates(r)
		}
		return p
	default:
		return nil
	}
}

// toGeom converts g for writing to a shapefile.
func toGeom(g modify.Geometry) (geom.Geom, goshp.ShapeType, error) {
	switch t := g.(type) {
	case *modify.Point:
		if len(t.Coord) < 2 {
			return nil, goshp.POINT, fmt.Errorf("empty point")
		}
		return t.Coord.Point(), goshp.POINT, nil
	case *modify.MultiPoint:
		return geom.MultiPoint(points(t.Coords)), goshp.MULTIPOINT, nil
	case *modify.LineString:
		return geom.MultiLineString{points(t.Coords)}, goshp.POLYLINE, nil
	case *modify.MultiLineString:
		ml := make(geom.MultiLineString, len(t.Lines))
		for i, l := range t.Lines {
			ml[i] = points(l)
		}
		return ml, goshp.POLYLINE, nil
	case *modify.Polygon:
		p := make(geom.Polygon, len(t.Rings))
		for i, r := range t.Rings {
			p[i] = points(r)
		}
		return p, goshp.POLYGON, nil
	case *modify.MultiPolygon:
		var p geom.Polygon
		for _, pp := range t.Polygons {
			for _, r := range pp {
				p = append(p, points(r))
			}
		}
		return p, goshp.POLYGON, nil
	default:
		return nil, goshp.NULL, fmt.Errorf("unsupported geometry type %s", g.Type())
	}
}
