package trueskill

import (
	"math"

	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
)

// Below these CDF values the truncation corrections switch to their
// asymptotes instead of dividing by a vanishing probability.
const (
	exceedsUnderflow = 2.22275874e-162
	marginUnderflow  = 2.222758749e-162
)

// VExceedsMargin is the additive mean correction for a performance
// difference t truncated to (epsilon, +inf).
func VExceedsMargin(t, epsilon float64) float64 {
	denominator := gaussian.StandardCumulativeTo(t - epsilon)
	if denominator < exceedsUnderflow {
		return -t + epsilon
	}
	return gaussian.StandardAt(t-epsilon) / denominator
}

// VExceedsMarginScaled evaluates VExceedsMargin(t/c, epsilon/c).
func VExceedsMarginScaled(t, epsilon, c float64) float64 {
	return VExceedsMargin(t/c, epsilon/c)
}

// WExceedsMargin is the multiplicative variance correction matching
// VExceedsMargin. It lies in [0, 1].
func WExceedsMargin(t, epsilon float64) float64 {
	denominator := gaussian.StandardCumulativeTo(t - epsilon)
	if denominator < marginUnderflow {
		if t < 0 {
			return 1
		}
		return 0
	}
	v := VExceedsMargin(t, epsilon)
	return v * (v + t - epsilon)
}

func WExceedsMarginScaled(t, epsilon, c float64) float64 {
	return WExceedsMargin(t/c, epsilon/c)
}

// VWithinMargin is the mean correction for t truncated to [-epsilon,
// epsilon]. It is odd in t.
func VWithinMargin(t, epsilon float64) float64 {
	abs := math.Abs(t)
	denominator := gaussian.StandardCumulativeTo(epsilon-abs) - gaussian.StandardCumulativeTo(-epsilon-abs)
	if denominator < marginUnderflow {
		if t < 0 {
			return -t - epsilon
		}
		return -t + epsilon
	}

	numerator := gaussian.StandardAt(-epsilon-abs) - gaussian.StandardAt(epsilon-abs)
	if t < 0 {
		return -numerator / denominator
	}
	return numerator / denominator
}

func VWithinMarginScaled(t, epsilon, c float64) float64 {
	return VWithinMargin(t/c, epsilon/c)
}

// WWithinMargin is the variance correction matching VWithinMargin. It is
// even in t.
func WWithinMargin(t, epsilon float64) float64 {
	abs := math.Abs(t)
	denominator := gaussian.StandardCumulativeTo(epsilon-abs) - gaussian.StandardCumulativeTo(-epsilon-abs)
	if denominator < marginUnderflow {
		return 1
	}

	vt := VWithinMargin(abs, epsilon)
	return vt*vt + ((epsilon-abs)*gaussian.StandardAt(epsilon-abs)-
		(-epsilon-abs)*gaussian.StandardAt(-epsilon-abs))/denominator
}

func WWithinMarginScaled(t, epsilon, c float64) float64 {
	return WWithinMargin(t/c, epsilon/c)
}
