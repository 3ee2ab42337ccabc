package operator

import (
	"context"
	"image"
)

type MouseButton string

const (
	ButtonLeft  MouseButton = "left"
	ButtonRight MouseButton = "right"
)

// Display describes the primary display in logical units. ScaleFactor is the
// number of physical pixels per logical unit.
type Display struct {
	ID          string
	Width       int
	Height      int
	ScaleFactor float64
}

// Desktop is the input/capture driver the local operator synthesizes actions
// on. Coordinates are logical units.
type Desktop interface {
	PrimaryDisplay(ctx context.Context) (Display, error)
	Capture(ctx context.Context) (image.Image, error)

	MouseMove(ctx context.Context, x, y float64) error
	MouseDown(ctx context.Context, button MouseButton) error
	MouseUp(ctx context.Context, button MouseButton) error
	Click(ctx context.Context, button MouseButton, count int) error
	Scroll(ctx context.Context, dx, dy float64) error

	TypeText(ctx context.Context, text string) error
	// PressKeys presses keys together as one chord and releases them in reverse.
	PressKeys(ctx context.Context, keys []string) error

	Close() error
}
