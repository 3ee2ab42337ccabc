package entity

import (
	"encoding/base64"
	"fmt"
)

// DefaultFactors is the 1000x1000 grid the model predicts coordinates in.
var DefaultFactors = Factors{Width: 1000, Height: 1000}

// Factors describes the normalized coordinate space of a model.
type Factors struct {
	Width  int
	Height int
}

func (f Factors) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

// ScreenContext describes the real target surface for one round.
// Width and Height are the dimensions of the screenshot shown to the model,
// in physical pixels. ScaleFactor is physical pixels per input unit.
type ScreenContext struct {
	Width       int
	Height      int
	ScaleFactor float64
	DisplayID   string
}

// Point is a coordinate in the input space of an operator. Values are not rounded.
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}

type Screenshot struct {
	Data        []byte
	Format      string
	Width       int
	Height      int
	ScaleFactor float64
	DisplayID   string
}

func (s *Screenshot) Context() ScreenContext {
	scale := s.ScaleFactor
	if scale <= 0 {
		scale = 1
	}
	return ScreenContext{
		Width:       s.Width,
		Height:      s.Height,
		ScaleFactor: scale,
		DisplayID:   s.DisplayID,
	}
}

func (s *Screenshot) DataURL() string {
	format := s.Format
	if format == "" {
		format = "png"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
