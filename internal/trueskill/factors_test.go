package trueskill

import (
	"math"
	"testing"

	"github.com/Harshitk-cp/skillgraph/internal/factorgraph"
	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph() (*factorgraph.Graph, *factorgraph.VariableFactory) {
	g := factorgraph.New()
	return g, factorgraph.NewVariableFactory(g, gaussian.Uninformative)
}

func TestPriorFactor_Update(t *testing.T) {
	g, vars := newGraph()
	skill := vars.CreateBasicVariable("skill")
	f := NewPriorFactor(g, 25, 64, skill)

	delta, err := f.UpdateMessage(g, 0)
	require.NoError(t, err)

	assert.InDelta(t, 25.0, g.Value(skill).Mean, 1e-12)
	assert.InDelta(t, 8.0, g.Value(skill).Stdev, 1e-12)
	assert.InDelta(t, 25.0/64, delta, 1e-12)
	assert.Equal(t, g.Value(skill), f.Message(0))

	_, err = f.UpdateMessage(g, 1)
	assert.ErrorIs(t, err, factorgraph.ErrInvalidMessageIndex)
}

func TestLikelihoodFactor_Update(t *testing.T) {
	g, vars := newGraph()
	skill := vars.CreateBasicVariable("skill")
	performance := vars.CreateBasicVariable("performance")
	g.SetValue(skill, gaussian.New(25, 8))

	f := NewLikelihoodFactor(g, 16, performance, skill)
	_, err := f.UpdateMessage(g, 0)
	require.NoError(t, err)

	// The performance is the skill plus N(0, beta²) noise.
	perf := g.Value(performance)
	assert.InDelta(t, 25.0, perf.Mean, 1e-12)
	assert.InDelta(t, 64.0+16.0, perf.Variance, 1e-9)

	for _, bad := range []int{-1, 2, 5} {
		_, err := f.UpdateMessage(g, bad)
		assert.ErrorIs(t, err, factorgraph.ErrInvalidMessageIndex)
	}
}

func TestWeightedSumFactor_Weights(t *testing.T) {
	g, vars := newGraph()
	sum := vars.CreateBasicVariable("sum")
	a := vars.CreateBasicVariable("a")
	b := vars.CreateBasicVariable("b")
	c := vars.CreateBasicVariable("c")

	f := NewWeightedSumFactor(g, sum, []factorgraph.VariableID{a, b, c}, []float64{2, 0, 4})

	require.Len(t, f.weights, 4)
	assert.Equal(t, []float64{2, 0, 4}, f.weights[0])
	assert.Equal(t, []int{0, 1, 2, 3}, f.indexOrders[0])

	// a = -0/2 b - 4/2 c + 1/2 sum
	assert.Equal(t, []float64{-0.0, -2, 0.5}, f.weights[1])
	assert.Equal(t, []int{1, 2, 3, 0}, f.indexOrders[1])

	// b has weight zero, so it cannot be expressed through the others.
	assert.Equal(t, []float64{0, 0, 0}, f.weights[2])
	assert.Equal(t, []int{2, 1, 3, 0}, f.indexOrders[2])

	assert.Equal(t, []float64{-0.5, -0.0, 0.25}, f.weights[3])
	assert.Equal(t, []int{3, 1, 2, 0}, f.indexOrders[3])
	assert.Equal(t, []float64{0.25, 0, 0.0625}, f.weightsSquared[3])

	assert.Equal(t, "Variable[sum] = 2.00*[Variable[a]] + 0.00*[Variable[b]] + 4.00*[Variable[c]]", f.Name())
}

func TestWeightedSumFactor_Difference(t *testing.T) {
	g, vars := newGraph()
	diff := vars.CreateBasicVariable("diff")
	left := vars.CreateBasicVariable("left")
	right := vars.CreateBasicVariable("right")
	g.SetValue(left, gaussian.New(30, 3))
	g.SetValue(right, gaussian.New(20, 4))

	f := NewWeightedSumFactor(g, diff, []factorgraph.VariableID{left, right}, []float64{1, -1})
	assert.Equal(t, "Variable[diff] = 1.00*[Variable[left]] - 1.00*[Variable[right]]", f.Name())

	_, err := f.UpdateMessage(g, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, g.Value(diff).Mean, 1e-12)
	assert.InDelta(t, 5.0, g.Value(diff).Stdev, 1e-12)

	_, err = f.UpdateMessage(g, 3)
	assert.ErrorIs(t, err, factorgraph.ErrInvalidMessageIndex)
}

func TestGreaterThanFactor_Update(t *testing.T) {
	g, vars := newGraph()
	diff := vars.CreateBasicVariable("diff")
	g.SetValue(diff, gaussian.New(0, 1))

	f := NewGreaterThanFactor(g, 0, diff)
	_, err := f.UpdateMessage(g, 0)
	require.NoError(t, err)

	// N(0, 1) truncated to (0, inf) has mean sqrt(2/pi) and variance 1-2/pi.
	got := g.Value(diff)
	assert.InDelta(t, math.Sqrt(2/math.Pi), got.Mean, 1e-9)
	assert.InDelta(t, 1-2/math.Pi, got.Variance, 1e-9)
	assert.Equal(t, "Variable[diff] > 0.00", f.Name())
}

func TestWithinFactor_Update(t *testing.T) {
	g, vars := newGraph()
	diff := vars.CreateBasicVariable("diff")
	g.SetValue(diff, gaussian.New(0, 1))

	f := NewWithinFactor(g, 1, diff)
	_, err := f.UpdateMessage(g, 0)
	require.NoError(t, err)

	// A symmetric truncation keeps the mean and shrinks the variance.
	got := g.Value(diff)
	assert.InDelta(t, 0.0, got.Mean, 1e-12)
	assert.Less(t, got.Variance, 1.0)
	assert.Equal(t, "Variable[diff] <= 1.00", f.Name())
}
