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
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/modify"
)

func isShapefile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".shp")
}

// ReadFeatures reads the features in filename, which is a shapefile when
// it ends in .shp and GeoJSON otherwise. The projection of a shapefile is
// returned when it has one.
func ReadFeatures(filename string) ([]*modify.Feature, *proj.SR, error) {
	filename = os.ExpandEnv(filename)
	if isShapefile(filename) {
		return ReadShapefile(filename)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("modify: opening input file: %v", err)
	}
	defer f.Close()
	features, err := ReadGeoJSON(f)
	return features, nil, err
}

// WriteFeatures writes features to filename, which is a shapefile when it
// ends in .shp and GeoJSON otherwise. GeoJSON is written to stdout when
// filename is empty.
func WriteFeatures(stdout io.Writer, filename string, features []*modify.Feature) error {
	filename = os.ExpandEnv(filename)
	if filename == "" {
		return WriteGeoJSON(stdout, features)
	}
	if isShapefile(filename) {
		return WriteShapefile(filename, features)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("modify: creating output file: %v", err)
	}
	if err := WriteGeoJSON(f, features); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func featureIDs(features []*modify.Feature) []string {
	ids := make([]string, len(features))
	for i, f := range features {
		ids[i] = f.ID
	}
	return ids
}

// Edit reads the features in input, replays the script in scriptFile
// against them with an engine configured by opts, and writes the edited
// features to output. When opts has no user projection, the projection
// of a shapefile input is used.
func Edit(stdout io.Writer, input, output, scriptFile string, opts modify.Options) error {
	features, sr, err := ReadFeatures(input)
	if err != nil {
		return err
	}
	if opts.UserProjection == nil {
		opts.UserProjection = sr
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	log := opts.Log
	opts.Features = modify.NewCollection(features...)
	opts.Source = nil

	e, err := modify.New(opts)
	if err != nil {
		return err
	}
	defer e.Close()
	for _, t := range []modify.ModifyEventType{modify.ModifyStart, modify.ModifyEnd} {
		e.On(t, func(evt *modify.ModifyEvent) {
			log.WithField("features", featureIDs(evt.Features)).Info(string(evt.Type))
		})
	}

	if scriptFile != "" {
		f, err := os.Open(os.ExpandEnv(scriptFile))
		if err != nil {
			return fmt.Errorf("modify: opening script: %v", err)
		}
		s, err := ReadScript(f)
		f.Close()
		if err != nil {
			return err
		}
		n, err := s.Replay(e, opts.Viewport, opts.UserProjection)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"events":   len(s.Event),
			"consumed": n,
		}).Info("modify: replayed script")
	}
	return WriteFeatures(stdout, output, e.Features().Features())
}
