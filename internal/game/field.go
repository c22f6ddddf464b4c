package game

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidSettings is returned for configuration that must not reach the simulation.
var ErrInvalidSettings = errors.New("invalid settings")

// Field is the playing surface. Edges are always derived from Width and Height.
type Field struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewField validates the dimensions. The field must be wide enough for a paddle
// to move and long enough that the two goal lines do not overlap.
func NewField(width, height float64) (Field, error) {
	if width <= 0 || height <= 0 {
		return Field{}, fmt.Errorf("%w: field dimensions must be positive (width=%v height=%v)", ErrInvalidSettings, width, height)
	}
	if width <= 2*PaddleHalfWidth {
		return Field{}, fmt.Errorf("%w: field width %v leaves no room for a paddle", ErrInvalidSettings, width)
	}
	if height <= 2*(GoalLineOffset+BallRadius) {
		return Field{}, fmt.Errorf("%w: field height %v is shorter than both goal areas", ErrInvalidSettings, height)
	}
	return Field{Width: width, Height: height}, nil
}

func (f Field) Left() float64  { return -f.Width / 2 }
func (f Field) Right() float64 { return f.Width / 2 }

// Near is the south goal edge, defended by the player.
func (f Field) Near() float64 { return -f.Height / 2 }

// Far is the north goal edge, defended by the computer.
func (f Field) Far() float64 { return f.Height / 2 }

// Center of the field at ball height.
func (f Field) Center() mgl64.Vec3 {
	return mgl64.Vec3{0, BallHeight, 0}
}

// PaddleMinX and PaddleMaxX bound a paddle center so it keeps clear of the side walls.
func (f Field) PaddleMinX() float64 { return f.Left() + PaddleHalfWidth }
func (f Field) PaddleMaxX() float64 { return f.Right() - PaddleHalfWidth }

// StandsPosition is where the camera looks when panning to a side's stands.
func (f Field) StandsPosition(side Side) mgl64.Vec3 {
	switch side {
	case SideNear:
		return mgl64.Vec3{0, 4, f.Near() - 4}
	case SideFar:
		return mgl64.Vec3{0, 4, f.Far() + 4}
	}
	return f.Center()
}

// CameraHome is the resting camera position behind the player's goal.
func (f Field) CameraHome() mgl64.Vec3 {
	return mgl64.Vec3{0, 12, f.Near() - 8}
}
