package domain

import (
	"fmt"

	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
)

// RatingKind names the rating model a league and a calculator agree on.
type RatingKind string

const (
	RatingKindGaussian RatingKind = "gaussian"
)

func (k RatingKind) IsValid() bool {
	switch k {
	case RatingKindGaussian:
		return true
	}
	return false
}

// Rating is a skill belief with its mean and standard deviation.
type Rating struct {
	Mean  float64 `json:"mean"`
	Stdev float64 `json:"stdev"`
}

func NewRating(mean, stdev float64) Rating {
	return Rating{Mean: mean, Stdev: stdev}
}

// RatingFromGaussian converts a posterior belief back into a rating.
func RatingFromGaussian(g gaussian.Gaussian) Rating {
	return Rating{Mean: g.Mean, Stdev: g.Stdev}
}

// Gaussian returns the rating as a distribution.
func (r Rating) Gaussian() gaussian.Gaussian {
	return gaussian.New(r.Mean, r.Stdev)
}

// ConservativeRating is the mean less multiplier standard deviations.
func (r Rating) ConservativeRating(multiplier float64) float64 {
	return r.Mean - multiplier*r.Stdev
}

func (r Rating) String() string {
	return fmt.Sprintf("mean=%.4f, stdev=%.4f", r.Mean, r.Stdev)
}

// PartialUpdate moves prior toward posterior by pct, interpolating in
// precision space. pct 1 returns the posterior and pct 0 the prior.
func PartialUpdate(prior, posterior Rating, pct float64) Rating {
	p := prior.Gaussian()
	q := posterior.Gaussian()

	precisionDiff := pct * (q.Precision - p.Precision)
	precisionMeanDiff := pct * (q.PrecisionMean - p.PrecisionMean)

	return RatingFromGaussian(gaussian.FromPrecisionMean(
		p.PrecisionMean+precisionMeanDiff,
		p.Precision+precisionDiff))
}
