// Package grid generates the price ladder for grid trading strategies.
package grid

import (
	"fmt"
	"math"
)

// Mode selects how the ladder is spaced between the bounds.
type Mode string

const (
	// ModeArithmetic spaces adjacent levels by a constant absolute amount.
	ModeArithmetic Mode = "arithmetic"
	// ModeGeometric spaces adjacent levels by a constant percentage.
	ModeGeometric Mode = "geometric"
)

// IsValid reports whether the mode is recognized.
func (m Mode) IsValid() bool {
	return m == ModeArithmetic || m == ModeGeometric
}

// MinGridCount is the smallest ladder that still has two distinct levels.
const MinGridCount = 2

// Levels generates count prices between lower and upper inclusive,
// monotonically increasing, with the first level exactly lower and the
// last exactly upper.
//
// Out-of-domain input returns an error; the generator never clamps to
// produce a plausible-looking ladder from bad input.
func Levels(lower, upper float64, count int, mode Mode) ([]float64, error) {
	if lower <= 0 {
		return nil, fmt.Errorf("lower price must be positive, got: %f", lower)
	}
	if upper <= lower {
		return nil, fmt.Errorf("upper price (%f) must be greater than lower price (%f)", upper, lower)
	}
	if count < MinGridCount {
		return nil, fmt.Errorf("grid count must be at least %d, got: %d", MinGridCount, count)
	}

	levels := make([]float64, count)

	switch mode {
	case ModeArithmetic:
		step := (upper - lower) / float64(count-1)
		for i := 0; i < count; i++ {
			levels[i] = lower + float64(i)*step
		}
	case ModeGeometric:
		ratio := math.Pow(upper/lower, 1/float64(count-1))
		for i := 0; i < count; i++ {
			levels[i] = lower * math.Pow(ratio, float64(i))
		}
	default:
		return nil, fmt.Errorf("grid mode must be '%s' or '%s', got: %s", ModeArithmetic, ModeGeometric, mode)
	}

	// Pin the endpoints so they are exact rather than within float
	// rounding of the bounds.
	levels[0] = lower
	levels[count-1] = upper

	return levels, nil
}
