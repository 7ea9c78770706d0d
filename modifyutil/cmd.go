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

// Package modifyutil is the command-line surface of the editing engine. It
// loads features from GeoJSON or shapefiles, replays recorded pointer
// gestures against them and writes the edited features back out.
package modifyutil

import (
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/modify"
	"github.com/spatialmodel/modify/geodesic"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the editor.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum level of log messages that are
              printed. One of panic, fatal, error, warning, info or debug.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Input",
			usage: `
              Input specifies the file holding the features to be edited.
              Files ending in .shp are read as shapefiles; anything else
              is read as a GeoJSON FeatureCollection.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "Output",
			usage: `
              Output specifies where the edited features are written.
              Files ending in .shp are written as shapefiles; anything
              else is written as a GeoJSON FeatureCollection. If empty,
              GeoJSON is written to standard output.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "Script",
			usage: `
              Script specifies a TOML file of pointer events to replay
              against the features. Each [[Event]] table holds a Type
              (pointermove, pointerdown, pointerdrag, pointerup,
              singleclick or removepoint), a position X and Y in the
              user projection, and optionally Button, Alt, Shift, Ctrl
              and Meta.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "View.CenterX",
			usage: `
              View.CenterX specifies the X coordinate of the centre of
              the view, in units of the view projection.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "View.CenterY",
			usage: `
              View.CenterY specifies the Y coordinate of the centre of
              the view, in units of the view projection.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "View.Resolution",
			usage: `
              View.Resolution specifies the number of view projection
              units per pixel.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "View.Width",
			usage: `
              View.Width specifies the width of the view in pixels.`,
			defaultVal: 800,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "View.Height",
			usage: `
              View.Height specifies the height of the view in pixels.`,
			defaultVal: 600,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "View.Projection",
			usage: `
              View.Projection specifies the projection the view is drawn
              in, as a proj4 string or WKT. If empty, the view uses the
              user projection.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "UserProjection",
			usage: `
              UserProjection specifies the projection of the feature and
              script coordinates, as a proj4 string or WKT. If empty, the
              projection of a shapefile input is used when it has a .prj
              file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "PixelTolerance",
			usage: `
              PixelTolerance specifies how close, in pixels, the pointer
              must be to a vertex or segment to grab it.`,
			defaultVal: float64(modify.DefaultPixelTolerance),
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "SnapToPointer",
			usage: `
              SnapToPointer specifies whether a grabbed vertex jumps onto
              the pointer. If false, the offset between the pointer and the
              vertex when it was grabbed is kept during the drag.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "DeleteCondition",
			usage: `
              DeleteCondition specifies when the vertex under the pointer
              is deleted. It is either the name of a built-in condition
              (always, never, primaryAction or altKeyOnlySingleClick) or
              an expression over the event variables Type, Button, X, Y,
              Alt, Shift, Ctrl and Meta, for example
              "Type == 'singleclick' && Shift". The default is
              altKeyOnlySingleClick.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "InsertVertexCondition",
			usage: `
              InsertVertexCondition specifies whether grabbing a segment
              between its vertices inserts a new vertex. It takes the same
              form as DeleteCondition. The default is always.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "Geodesic.Enabled",
			usage: `
              Geodesic.Enabled specifies whether segments are treated as
              great-circle arcs. The user projection must then be
              longitude and latitude in degrees.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "Geodesic.MaxAngle",
			usage: `
              Geodesic.MaxAngle specifies the largest arc, in degrees,
              covered by one straight piece of a great-circle segment.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
		{
			name: "Geodesic.CacheSize",
			usage: `
              Geodesic.CacheSize specifies how many split segments are
              remembered between hit tests. Zero or less uses the default.`,
			defaultVal: geodesic.DefaultCacheSize,
			flagsets:   []*pflag.FlagSet{editCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("MODIFY")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(editCmd)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "modify",
	Short: "An interactive vector geometry editor.",
	Long: `modify edits the vertices of vector geometries with pointer gestures.
Use the subcommands specified below to access the editor functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'MODIFY_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		return setLogging(Cfg.GetString("LogLevel"))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of the editor.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("modify v%s\n", modify.Version)
	},
	DisableAutoGenTag: true,
}

// editCmd is a command that replays a gesture script against a set of
// features.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit features by replaying pointer gestures.",
	Long: `edit loads the features in the Input file, replays the pointer events
in the Script file against them as a user dragging, inserting and deleting
vertices would, and writes the edited features to the Output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := EngineOptions(Cfg)
		if err != nil {
			return err
		}
		if Cfg.GetString("Input") == "" {
			return fmt.Errorf("modify: no Input file was specified")
		}
		return Edit(cmd.OutOrStdout(), Cfg.GetString("Input"), Cfg.GetString("Output"),
			Cfg.GetString("Script"), opts)
	},
	DisableAutoGenTag: true,
}
