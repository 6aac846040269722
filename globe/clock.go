package globe

import "math"

const (
	// DefaultRotationStep is the globe rotation per frame in radians.
	DefaultRotationStep = 0.0009
	// DefaultTimeStep is the shader time advanced per frame.
	DefaultTimeStep = 0.02
)

// Clock is a monotonic frame counter. Rotation and time are derived from the
// integer count so that neither accumulates floating point drift.
type Clock struct {
	RotationStep float64
	TimeStep     float64

	frames uint64
}

// NewClock returns a clock with the given per-frame increments.
func NewClock(rotationStep, timeStep float64) Clock {
	return Clock{RotationStep: rotationStep, TimeStep: timeStep}
}

// Advance moves the clock forward one frame and returns the new frame index.
func (c *Clock) Advance() uint64 {
	c.frames++
	return c.frames
}

// Frames returns the number of frames advanced so far.
func (c *Clock) Frames() uint64 {
	return c.frames
}

// Rotation returns frames × RotationStep wrapped into [0, 2π).
func (c *Clock) Rotation() float64 {
	r := math.Mod(float64(c.frames)*c.RotationStep, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

// Time returns frames × TimeStep.
func (c *Clock) Time() float64 {
	return float64(c.frames) * c.TimeStep
}
