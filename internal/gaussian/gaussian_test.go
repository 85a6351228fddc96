package gaussian

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 2e-15

func TestCumulativeTo(t *testing.T) {
	assert.InDelta(t, 0.691462461274013, StandardCumulativeTo(0.5), tolerance)
	assert.InDelta(t, 0.691462461274013, CumulativeTo(0.5, 0, 1), tolerance)
	assert.InDelta(t, 0.5, CumulativeTo(3, 3, 7), tolerance)
}

func TestAt(t *testing.T) {
	assert.InDelta(t, 0.352065326764300, StandardAt(0.5), tolerance)
}

func TestInverseCumulativeTo(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0.5, 0},
		{0.975, 1.959963984540054},
		{0.025, -1.959963984540054},
		{0.55, 0.125661346855074},
	}
	for _, tt := range tests {
		got := InverseCumulativeTo(tt.p, 0, 1)
		assert.InDelta(t, tt.want, got, 1e-9, "p=%v", tt.p)
	}
}

func TestInverseErrorFunctionSaturates(t *testing.T) {
	assert.Equal(t, -100.0, InverseErrorFunctionCumulativeTo(2))
	assert.Equal(t, 100.0, InverseErrorFunctionCumulativeTo(0))
}

func TestMultiply(t *testing.T) {
	product := Multiply(New(0, 1), New(2, 3))
	assert.InDelta(t, 0.2, product.Mean, tolerance)
	assert.InDelta(t, 3.0/math.Sqrt(10), product.Stdev, tolerance)

	product2 := New(4, 5).Mul(New(6, 7))
	wantMean := (4.0*49 + 6.0*25) / (25.0 + 49.0)
	wantStdev := math.Sqrt((25.0 * 49.0) / (25.0 + 49.0))
	assert.InDelta(t, wantMean, product2.Mean, tolerance)
	assert.InDelta(t, wantStdev, product2.Stdev, tolerance)
}

func TestDivide(t *testing.T) {
	quotient := Divide(New(0.2, 3.0/math.Sqrt(10)), New(0, 1))
	assert.InDelta(t, 2.0, quotient.Mean, tolerance)
	assert.InDelta(t, 3.0, quotient.Stdev, tolerance)

	product2 := New((4.0*49+6.0*25)/(25.0+49.0), math.Sqrt((25.0*49.0)/(25.0+49.0)))
	quotient2 := product2.Div(New(4, 5))
	assert.InDelta(t, 6.0, quotient2.Mean, 1e-14)
	assert.InDelta(t, 7.0, quotient2.Stdev, 1e-14)
}

func TestDivideRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for range 100 {
		a := New(r.Float64()*100-50, 0.1+r.Float64()*10)
		b := New(r.Float64()*100-50, 0.1+r.Float64()*10)
		got := Divide(Multiply(a, b), b)
		assert.InDelta(t, a.Mean, got.Mean, 1e-9)
		assert.InDelta(t, a.Stdev, got.Stdev, 1e-9)
	}
}

func TestDivideAllowsNegativePrecision(t *testing.T) {
	got := Divide(New(0, 2), New(0, 1))
	assert.Less(t, got.Precision, 0.0)
}

func TestLogProductNormalization(t *testing.T) {
	std := New(0, 1)
	assert.InDelta(t, -1.2655121234846454, LogProductNormalization(std, std), tolerance)
	assert.InDelta(t, -2.5168046699816684, LogProductNormalization(New(1, 2), New(3, 4)), tolerance)
	assert.Equal(t, 0.0, LogProductNormalization(Uninformative(), std))
}

func TestLogRatioNormalization(t *testing.T) {
	assert.InDelta(t, 2.6157405972171204, LogRatioNormalization(New(1, 2), New(3, 4)), tolerance)
	assert.Equal(t, 0.0, LogRatioNormalization(New(1, 2), Uninformative()))
}

func TestAbsDiff(t *testing.T) {
	std := New(0, 1)
	assert.Equal(t, 0.0, AbsDiff(std, std))
	assert.InDelta(t, 0.4330127018922193, AbsDiff(New(1, 2), New(3, 4)), tolerance)
}

func TestUninformative(t *testing.T) {
	u := Uninformative()
	require.Equal(t, 0.0, u.Precision)
	assert.True(t, math.IsInf(u.Stdev, 1))
	assert.True(t, math.IsInf(u.Mean, 1))

	g := New(3, 2)
	got := Multiply(u, g)
	assert.InDelta(t, g.Mean, got.Mean, tolerance)
	assert.InDelta(t, g.Stdev, got.Stdev, tolerance)
}

func TestNewZeroStdev(t *testing.T) {
	g := New(0, 0)
	assert.True(t, math.IsInf(g.Precision, 1))
	assert.Equal(t, 0.0, g.PrecisionMean)

	g = New(1, 0)
	assert.True(t, math.IsInf(g.PrecisionMean, 1))
}
