package bounce

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMaxBounces is returned for a MaxBounces below one.
	ErrInvalidMaxBounces = errors.New("max bounces must be at least 1")
	// ErrInvalidFarDistance is returned for a FarDistance that is not positive.
	ErrInvalidFarDistance = errors.New("far distance must be positive")
)

// Config bounds a trace.
type Config struct {
	// MaxBounces is the number of reflections allowed after the first,
	// unreflected pass.
	MaxBounces int
	// FarDistance is the length of the final segment when the ray escapes.
	FarDistance float64
}

// DefaultConfig returns ten bounces and a far distance of 100.
func DefaultConfig() Config {
	return Config{MaxBounces: 10, FarDistance: 100}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.MaxBounces < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxBounces, c.MaxBounces)
	}
	// The negated comparison also rejects NaN.
	if !(c.FarDistance > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidFarDistance, c.FarDistance)
	}
	return nil
}

// bound is the number of points that may precede the terminus: the
// configured bounces plus the initial pass.
func (c Config) bound() int {
	return c.MaxBounces + 1
}
