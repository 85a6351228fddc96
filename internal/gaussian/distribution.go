package gaussian

import "math"

// erfcCoefficients are the Chebyshev coefficients of the complementary error
// function approximation (Numerical Recipes 3rd ed., erfccheb).
var erfcCoefficients = [...]float64{
	-1.3026537197817094,
	6.4196979235649026e-1,
	1.9476473204185836e-2,
	-9.561514786808631e-3,
	-9.46595344482036e-4,
	3.66839497852761e-4,
	4.2523324806907e-5,
	-2.0278578112534e-5,
	-1.624290004647e-6,
	1.303655835580e-6,
	1.5626441722e-8,
	-8.5238095915e-8,
	6.529054439e-9,
	5.059343495e-9,
	-9.91364156e-10,
	-2.27365122e-10,
	9.6467911e-11,
	2.394038e-12,
	-6.886027e-12,
	8.94487e-13,
	3.13092e-13,
	-1.12708e-13,
	3.81e-16,
	7.106e-15,
	-1.523e-15,
	-9.4e-17,
	1.21e-16,
	-2.8e-17,
}

// At is the probability density of N(mean, stdev²) at x.
func At(x, mean, stdev float64) float64 {
	multiplier := 1.0 / (stdev * sqrt2Pi)
	d := x - mean
	return multiplier * math.Exp(-(d*d)/(2.0*stdev*stdev))
}

// StandardAt is At for the standard normal.
func StandardAt(x float64) float64 {
	return At(x, 0, 1)
}

// CumulativeTo is the cumulative distribution of N(mean, stdev²) at x.
func CumulativeTo(x, mean, stdev float64) float64 {
	z := (x - mean) / stdev
	return 0.5 * ErrorFunctionCumulativeTo(invSqrt2*z)
}

// StandardCumulativeTo is CumulativeTo for the standard normal.
func StandardCumulativeTo(x float64) float64 {
	return 0.5 * ErrorFunctionCumulativeTo(invSqrt2*x)
}

// ErrorFunctionCumulativeTo is the complementary error function erfc(x),
// accurate to about 1e-15.
func ErrorFunctionCumulativeTo(x float64) float64 {
	z := math.Abs(x)
	t := 2.0 / (2.0 + z)
	ty := 4.0*t - 2.0

	var d, dd float64
	for j := len(erfcCoefficients) - 1; j > 0; j-- {
		tmp := d
		d = ty*d - dd + erfcCoefficients[j]
		dd = tmp
	}

	ans := t * math.Exp(-z*z+0.5*(erfcCoefficients[0]+ty*d)-dd)
	if x >= 0 {
		return ans
	}
	return 2.0 - ans
}

// InverseErrorFunctionCumulativeTo inverts erfc on (0, 2). Values outside
// the open interval saturate at ±100.
func InverseErrorFunctionCumulativeTo(p float64) float64 {
	if p >= 2.0 {
		return -100
	}
	if p <= 0 {
		return 100
	}

	pp := p
	if p >= 1.0 {
		pp = 2.0 - p
	}
	t := math.Sqrt(-2.0 * math.Log(pp/2.0))
	x := -0.70711 * ((2.30753+t*0.27061)/(1.0+t*(0.99229+t*0.04481)) - t)

	for range 2 {
		err := ErrorFunctionCumulativeTo(x) - pp
		x += err / (1.12837916709551257*math.Exp(-(x*x)) - x*err)
	}

	if p < 1.0 {
		return x
	}
	return -x
}

// InverseCumulativeTo is the quantile function of N(mean, stdev²).
func InverseCumulativeTo(p, mean, stdev float64) float64 {
	return mean - math.Sqrt2*stdev*InverseErrorFunctionCumulativeTo(2.0*p)
}
