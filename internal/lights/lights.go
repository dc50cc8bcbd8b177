package lights

import (
	"context"
	"errors"
	"fmt"
	"image/color"
)

var (
	// ErrConnectionFailure means the output device could not be opened.
	ErrConnectionFailure = errors.New("light connection failure")
	// ErrWriteFailure means a single color update did not reach the device.
	ErrWriteFailure = errors.New("light write failure")
)

type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

func FromRGBA(c color.RGBA) Color {
	return Color{Red: c.R, Green: c.G, Blue: c.B}
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.Red, c.Green, c.Blue)
}

type LightService interface {
	// LightCount is the number of devices currently receiving colors.
	LightCount() int
	SetColor(ctx context.Context, color Color) error
	Close() error
}
