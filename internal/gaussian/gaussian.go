// Package gaussian implements the normal distribution algebra used by the
// message passing engine. A Gaussian is kept in both the (mean, stdev) and the
// (precision, precision*mean) parameterization so that products and quotients
// of beliefs reduce to additions and subtractions.
package gaussian

import (
	"fmt"
	"math"
)

var (
	sqrt2Pi    = math.Sqrt(2.0 * math.Pi)
	logSqrt2Pi = math.Log(math.Sqrt(2.0 * math.Pi))
	invSqrt2   = -1.0 / math.Sqrt2
)

// Gaussian is an immutable normal distribution.
type Gaussian struct {
	Mean          float64
	Stdev         float64
	Variance      float64
	Precision     float64
	PrecisionMean float64
}

// New returns the distribution with the given mean and standard deviation.
// A zero standard deviation yields an infinite precision.
func New(mean, stdev float64) Gaussian {
	g := Gaussian{
		Mean:     mean,
		Stdev:    stdev,
		Variance: stdev * stdev,
	}
	if g.Variance != 0 {
		g.Precision = 1.0 / g.Variance
		g.PrecisionMean = g.Precision * mean
		return g
	}
	g.Precision = math.Inf(1)
	if mean == 0 {
		g.PrecisionMean = 0
	} else {
		g.PrecisionMean = math.Inf(1)
	}
	return g
}

// FromPrecisionMean builds a Gaussian from its natural parameters.
// A zero precision is the uninformative belief: variance, stdev and mean are
// all +Inf.
func FromPrecisionMean(precisionMean, precision float64) Gaussian {
	g := Gaussian{
		Precision:     precision,
		PrecisionMean: precisionMean,
	}
	if precision != 0 {
		g.Variance = 1.0 / precision
		g.Stdev = math.Sqrt(g.Variance)
		g.Mean = precisionMean / precision
		return g
	}
	g.Variance = math.Inf(1)
	g.Stdev = math.Inf(1)
	g.Mean = math.Inf(1)
	return g
}

// Uninformative is the belief with zero precision, the identity of Multiply.
func Uninformative() Gaussian {
	return FromPrecisionMean(0, 0)
}

func (g Gaussian) String() string {
	return fmt.Sprintf("mean=%.4f stdev=%.4f", g.Mean, g.Stdev)
}

// Mul is shorthand for Multiply(g, other).
func (g Gaussian) Mul(other Gaussian) Gaussian { return Multiply(g, other) }

// Div is shorthand for Divide(g, other).
func (g Gaussian) Div(other Gaussian) Gaussian { return Divide(g, other) }

// NormalizationConstant returns the density scale 1/(stdev*sqrt(2*pi)).
func (g Gaussian) NormalizationConstant() float64 {
	return 1.0 / (sqrt2Pi * g.Stdev)
}

// Multiply returns the product of two beliefs.
func Multiply(a, b Gaussian) Gaussian {
	return FromPrecisionMean(a.PrecisionMean+b.PrecisionMean, a.Precision+b.Precision)
}

// Divide returns the quotient of two beliefs. The result may have a negative
// precision; it is only meaningful as an intermediate message.
func Divide(a, b Gaussian) Gaussian {
	return FromPrecisionMean(a.PrecisionMean-b.PrecisionMean, a.Precision-b.Precision)
}

// AbsDiff is the distance between two beliefs used for convergence checks.
func AbsDiff(a, b Gaussian) float64 {
	return math.Max(
		math.Abs(a.PrecisionMean-b.PrecisionMean),
		math.Sqrt(math.Abs(a.Precision-b.Precision)))
}

// LogProductNormalization is the log of the normalization constant of a*b.
// Either operand being uninformative yields 0.
func LogProductNormalization(left, right Gaussian) float64 {
	if left.Precision == 0 || right.Precision == 0 {
		return 0
	}
	varianceSum := left.Variance + right.Variance
	meanDiff := left.Mean - right.Mean
	return -logSqrt2Pi - math.Log(varianceSum)/2.0 - (meanDiff*meanDiff)/(2.0*varianceSum)
}

// LogRatioNormalization is the log of the normalization constant of
// numerator/denominator. Either operand being uninformative yields 0.
func LogRatioNormalization(numerator, denominator Gaussian) float64 {
	if numerator.Precision == 0 || denominator.Precision == 0 {
		return 0
	}
	varianceDiff := denominator.Variance - numerator.Variance
	meanDiff := numerator.Mean - denominator.Mean
	return math.Log(denominator.Variance) + logSqrt2Pi - math.Log(varianceDiff)/2.0 +
		(meanDiff*meanDiff)/(2.0*varianceDiff)
}
