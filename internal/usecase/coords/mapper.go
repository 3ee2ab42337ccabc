// Package coords maps coordinates from the model's normalized space to the
// input space of an operator.
//
// A value v on an axis with factor F and target dimension D maps to v/F*D.
// The scale factor is applied in exactly one place, NewSpace, where it is
// folded into D: D = screenshot dimension / scale factor. Nothing downstream
// multiplies or divides by it again.
package coords

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gui-agent/internal/domain/entity"
)

var literalTokens = strings.NewReplacer(
	"<|box_start|>", " ",
	"<|box_end|>", " ",
	"<point>", " ",
	"</point>", " ",
	"<bbox>", " ",
	"</bbox>", " ",
)

// ParseLiteral reads a bracketed coordinate literal into 2 (point) or 4 (box) numbers.
func ParseLiteral(literal string) ([]float64, error) {
	s := literalTokens.Replace(literal)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '[', ']', '(', ')', ',', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})
	if len(fields) == 0 {
		return nil, &entity.CoordinateError{Literal: literal, Reason: "empty literal"}
	}

	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &entity.CoordinateError{Literal: literal, Reason: fmt.Sprintf("non-numeric token %q", f)}
		}
		values = append(values, v)
	}
	if len(values) != 2 && len(values) != 4 {
		return nil, &entity.CoordinateError{
			Literal: literal,
			Reason:  fmt.Sprintf("expected 2 or 4 numbers, got %d", len(values)),
		}
	}
	return values, nil
}

// Space is a pure mapping from normalized coordinates to input-space coordinates.
type Space struct {
	factors entity.Factors
	width   float64
	height  float64
}

// NewSpace builds the mapping for one screen context.
func NewSpace(factors entity.Factors, screen entity.ScreenContext) (Space, error) {
	if !factors.Valid() {
		return Space{}, fmt.Errorf("invalid factors %dx%d", factors.Width, factors.Height)
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		return Space{}, fmt.Errorf("invalid screen size %dx%d", screen.Width, screen.Height)
	}
	if screen.ScaleFactor <= 0 || math.IsNaN(screen.ScaleFactor) || math.IsInf(screen.ScaleFactor, 0) {
		return Space{}, fmt.Errorf("invalid scale factor %v", screen.ScaleFactor)
	}
	return Space{
		factors: factors,
		width:   float64(screen.Width) / screen.ScaleFactor,
		height:  float64(screen.Height) / screen.ScaleFactor,
	}, nil
}

// Size returns the target dimensions in input units.
func (s Space) Size() (float64, float64) {
	return s.width, s.height
}

func (s Space) MapPoint(x, y float64) entity.Point {
	return entity.Point{
		X: x / float64(s.factors.Width) * s.width,
		Y: y / float64(s.factors.Height) * s.height,
	}
}

// Corners maps every point of a literal independently: one point for a point
// literal, two corners for a box.
func (s Space) Corners(literal string) ([]entity.Point, error) {
	values, err := ParseLiteral(literal)
	if err != nil {
		return nil, err
	}
	points := make([]entity.Point, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		points = append(points, s.MapPoint(values[i], values[i+1]))
	}
	return points, nil
}

// Target returns the single point an action should hit. Box corners are mapped
// first and then averaged.
func (s Space) Target(literal string) (entity.Point, error) {
	points, err := s.Corners(literal)
	if err != nil {
		return entity.Point{}, err
	}
	if len(points) == 1 {
		return points[0], nil
	}
	return entity.Point{
		X: (points[0].X + points[1].X) / 2,
		Y: (points[0].Y + points[1].Y) / 2,
	}, nil
}

var (
	startKeys = []string{entity.InputStartBox, entity.InputStartPoint, entity.InputPoint}
	endKeys   = []string{entity.InputEndBox, entity.InputEndPoint}
)

// MapAction returns a copy of action with StartCoords and EndCoords resolved.
// Actions that need a target but carry none fail with a CoordinateError.
func MapAction(s Space, action entity.Action) (entity.Action, error) {
	out := action.Clone()

	if literal, ok := firstInput(action, startKeys); ok {
		p, err := s.Target(literal)
		if err != nil {
			return action, err
		}
		out.StartCoords = &p
	}
	if literal, ok := firstInput(action, endKeys); ok {
		p, err := s.Target(literal)
		if err != nil {
			return action, err
		}
		out.EndCoords = &p
	}

	if action.Type.NeedsTarget() && out.StartCoords == nil {
		return action, &entity.CoordinateError{Reason: fmt.Sprintf("%s requires %s", action.Type, entity.InputStartBox)}
	}
	if action.Type == entity.ActionDrag && out.EndCoords == nil {
		return action, &entity.CoordinateError{Reason: fmt.Sprintf("%s requires %s", action.Type, entity.InputEndBox)}
	}
	return out, nil
}

func firstInput(action entity.Action, keys []string) (string, bool) {
	for _, k := range keys {
		if v := strings.TrimSpace(action.Input(k)); v != "" {
			return v, true
		}
	}
	return "", false
}
