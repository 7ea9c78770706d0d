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
	"time"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/modify"
	"github.com/spatialmodel/modify/geodesic"
	"github.com/spf13/cast"
)

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("modify: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// setLogging sets the level and format of the standard logger.
func setLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("modify: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	return nil
}

// parseProjection parses s, returning nil if s is empty.
func parseProjection(name, s string) (*proj.SR, error) {
	s = strings.TrimSpace(os.ExpandEnv(s))
	if s == "" {
		return nil, nil
	}
	sr, err := proj.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("modify: parsing %s: %v", name, err)
	}
	return sr, nil
}

// ViewConfig creates the view described by the View.* configuration
// variables.
func ViewConfig(cfg *viper.Viper) (*modify.View, error) {
	v := &modify.View{
		Center: geom.Point{X: cfg.GetFloat64("View.CenterX"), Y: cfg.GetFloat64("View.CenterY")},
		Res:    cfg.GetFloat64("View.Resolution"),
		Width:  float64(cfg.GetInt("View.Width")),
		Height: float64(cfg.GetInt("View.Height")),
	}
	if v.Res <= 0 {
		return nil, fmt.Errorf("modify: View.Resolution must be positive but is %g", v.Res)
	}
	if v.Width <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("modify: the view must have a positive size but is %gx%g", v.Width, v.Height)
	}
	var err error
	v.SR, err = parseProjection("View.Projection", cfg.GetString("View.Projection"))
	if err != nil {
		return nil, err
	}
	return v, nil
}

// EngineOptions creates engine options from the configuration. Features
// are left for the caller to set.
func EngineOptions(cfg *viper.Viper) (modify.Options, error) {
	var opts modify.Options
	v, err := ViewConfig(cfg)
	if err != nil {
		return opts, err
	}
	opts.Viewport = v
	opts.UserProjection, err = parseProjection("UserProjection", cfg.GetString("UserProjection"))
	if err != nil {
		return opts, err
	}
	opts.PixelTolerance = cfg.GetFloat64("PixelTolerance")
	snap := cfg.GetBool("SnapToPointer")
	opts.SnapToPointer = &snap

	opts.DeleteCondition, err = ParseCondition(cfg.GetString("DeleteCondition"))
	if err != nil {
		return opts, fmt.Errorf("modify: DeleteCondition: %v", err)
	}
	opts.InsertVertexCondition, err = ParseCondition(cfg.GetString("InsertVertexCondition"))
	if err != nil {
		return opts, fmt.Errorf("modify: InsertVertexCondition: %v", err)
	}

	if cfg.GetBool("Geodesic.Enabled") {
		s := geodesic.New(cfg.GetFloat64("Geodesic.MaxAngle"), cfg.GetInt("Geodesic.CacheSize"))
		opts.Subsegments = s.Subsegments
		opts.SegmentExtent = s.Extent
	}
	opts.Log = logrus.StandardLogger()
	return opts, nil
}

var namedConditions = map[string]modify.Condition{
	"always":                modify.Always,
	"never":                 modify.Never,
	"primaryaction":         modify.PrimaryAction,
	"altkeyonlysingleclick": modify.AltKeyOnlySingleClick,
}

// ParseCondition creates a condition from expr, which is either the name
// of a built-in condition or a boolean expression over the variables
// Type, Button, X, Y, Alt, Shift, Ctrl and Meta. It returns nil when expr
// is empty so that the engine default applies. An expression that fails
// to evaluate for an event is false for that event.
func ParseCondition(expr string) (modify.Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if c, ok := namedConditions[strings.ToLower(expr)]; ok {
		return c, nil
	}
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, err
	}
	return func(evt *modify.PointerEvent) bool {
		params := map[string]interface{}{
			"Type":   string(evt.Type),
			"Button": float64(evt.Button),
			"Alt":    evt.Alt,
			"Shift":  evt.Shift,
			"Ctrl":   evt.Ctrl,
			"Meta":   evt.Meta,
			"X":      0.0,
			"Y":      0.0,
		}
		if len(evt.Coordinate) >= 2 {
			params["X"], params["Y"] = evt.Coordinate[0], evt.Coordinate[1]
		}
		r, err := e.Evaluate(params)
		if err != nil {
			logrus.WithError(err).WithField("expression", expr).Debug("modify: evaluating condition")
			return false
		}
		b, err := cast.ToBoolE(r)
		if err != nil {
			logrus.WithError(err).WithField("expression", expr).Debug("modify: condition is not boolean")
			return false
		}
		return b
	}, nil
}
