package trueskill

import (
	"fmt"
	"math"
	"strings"

	"github.com/Harshitk-cp/skillgraph/internal/factorgraph"
	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
)

// PriorFactor feeds a player's prior rating, widened by the dynamics
// factor, into their skill variable.
type PriorFactor struct {
	factorgraph.Bindings
	prior gaussian.Gaussian
}

func NewPriorFactor(g *factorgraph.Graph, mean, variance float64, skill factorgraph.VariableID) *PriorFactor {
	f := &PriorFactor{
		Bindings: factorgraph.NewBindings(fmt.Sprintf("Prior value going to %s", g.Variable(skill))),
		prior:    gaussian.New(mean, math.Sqrt(variance)),
	}
	f.BindUninformative(g, skill)
	return f
}

func (f *PriorFactor) UpdateMessage(g *factorgraph.Graph, i int) (float64, error) {
	if err := f.CheckIndex(i); err != nil {
		return 0, err
	}
	v := f.Variable(i)
	oldMarginal := g.Value(v)
	oldMessage := f.Message(i)

	newMarginal := gaussian.FromPrecisionMean(
		oldMarginal.PrecisionMean+f.prior.PrecisionMean-oldMessage.PrecisionMean,
		oldMarginal.Precision+f.prior.Precision-oldMessage.Precision)

	g.SetValue(v, newMarginal)
	f.SetMessage(i, f.prior)
	return gaussian.AbsDiff(oldMarginal, newMarginal), nil
}

// LikelihoodFactor couples a performance (slot 0) to a skill (slot 1) with
// the performance noise 1/beta².
type LikelihoodFactor struct {
	factorgraph.Bindings
	precision float64
}

func NewLikelihoodFactor(g *factorgraph.Graph, betaSquared float64, performance, skill factorgraph.VariableID) *LikelihoodFactor {
	f := &LikelihoodFactor{
		Bindings:  factorgraph.NewBindings(fmt.Sprintf("Likelihood of %s going to %s", g.Variable(skill), g.Variable(performance))),
		precision: 1.0 / betaSquared,
	}
	f.BindUninformative(g, performance)
	f.BindUninformative(g, skill)
	return f
}

func (f *LikelihoodFactor) UpdateMessage(g *factorgraph.Graph, i int) (float64, error) {
	if i != 0 && i != 1 {
		return 0, fmt.Errorf("%s: index %d not in [0, 1]: %w", f.Name(), i, factorgraph.ErrInvalidMessageIndex)
	}
	j := 1 - i

	vi, vj := f.Variable(i), f.Variable(j)
	marginalI, marginalJ := g.Value(vi), g.Value(vj)
	messageI, messageJ := f.Message(i), f.Message(j)

	a := f.precision / (f.precision + marginalJ.Precision - messageJ.Precision)
	newMessage := gaussian.FromPrecisionMean(
		a*(marginalJ.PrecisionMean-messageJ.PrecisionMean),
		a*(marginalJ.Precision-messageJ.Precision))

	newMarginal := gaussian.Multiply(gaussian.Divide(marginalI, messageI), newMessage)

	f.SetMessage(i, newMessage)
	g.SetValue(vi, newMarginal)
	return gaussian.AbsDiff(newMarginal, marginalI), nil
}

func (f *LikelihoodFactor) LogNormalization(g *factorgraph.Graph) float64 {
	return gaussian.LogRatioNormalization(g.Value(f.Variable(0)), f.Message(0))
}

// WeightedSumFactor constrains slot 0 to equal the weighted sum of the
// remaining slots. For every slot it keeps the weights that express that
// slot through all the others, so any one of them can be updated.
type WeightedSumFactor struct {
	factorgraph.Bindings
	weights        [][]float64
	weightsSquared [][]float64
	// indexOrders[k] lists the slots read when updating slot k; the first
	// entry is k itself.
	indexOrders [][]int
}

func NewWeightedSumFactor(g *factorgraph.Graph, sum factorgraph.VariableID, addends []factorgraph.VariableID, weights []float64) *WeightedSumFactor {
	n := len(weights)
	f := &WeightedSumFactor{
		Bindings: factorgraph.NewBindings(weightedSumName(g, sum, addends, weights)),
	}

	f.weights = append(f.weights, append([]float64(nil), weights...))
	f.weightsSquared = append(f.weightsSquared, squares(weights))

	order := make([]int, len(addends)+1)
	for i := range order {
		order[i] = i
	}
	f.indexOrders = append(f.indexOrders, order)

	for k := 1; k <= n; k++ {
		divisor := weights[k-1]
		current := make([]float64, n)
		slots := make([]int, n+1)
		slots[0] = k

		dst := 0
		for src := range n {
			if src == k-1 {
				continue
			}
			var w float64
			if divisor != 0 {
				w = -weights[src] / divisor
			}
			current[dst] = w
			slots[dst+1] = src + 1
			dst++
		}

		var final float64
		if divisor != 0 {
			final = 1.0 / divisor
		}
		current[dst] = final
		slots[n] = 0

		f.weights = append(f.weights, current)
		f.weightsSquared = append(f.weightsSquared, squares(current))
		f.indexOrders = append(f.indexOrders, slots)
	}

	f.BindUninformative(g, sum)
	for _, v := range addends {
		f.BindUninformative(g, v)
	}
	return f
}

func (f *WeightedSumFactor) UpdateMessage(g *factorgraph.Graph, i int) (float64, error) {
	if err := f.CheckIndex(i); err != nil {
		return 0, err
	}
	if i >= len(f.indexOrders) {
		return 0, fmt.Errorf("%s: index %d has no weights: %w", f.Name(), i, factorgraph.ErrInvalidMessageIndex)
	}

	order := f.indexOrders[i]
	weights := f.weights[i]
	weightsSquared := f.weightsSquared[i]

	var inverseNewPrecisionSum, weightedMeanSum float64
	for k := range weightsSquared {
		slot := order[k+1]
		marginal := g.Value(f.Variable(slot))
		message := f.Message(slot)
		precision := marginal.Precision - message.Precision

		inverseNewPrecisionSum += weightsSquared[k] / precision
		weightedMeanSum += weights[k] * (marginal.PrecisionMean - message.PrecisionMean) / precision
	}

	newPrecision := 1.0 / inverseNewPrecisionSum
	newMessage := gaussian.FromPrecisionMean(newPrecision*weightedMeanSum, newPrecision)

	target := f.Variable(order[0])
	oldMarginal := g.Value(target)
	newMarginal := gaussian.Multiply(gaussian.Divide(oldMarginal, f.Message(order[0])), newMessage)

	f.SetMessage(order[0], newMessage)
	g.SetValue(target, newMarginal)
	return gaussian.AbsDiff(newMarginal, oldMarginal), nil
}

func (f *WeightedSumFactor) LogNormalization(g *factorgraph.Graph) float64 {
	var result float64
	for i := 1; i < f.NumMessages(); i++ {
		result += gaussian.LogRatioNormalization(g.Value(f.Variable(i)), f.Message(i))
	}
	return result
}

func squares(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * x
	}
	return out
}

func weightedSumName(g *factorgraph.Graph, sum factorgraph.VariableID, addends []factorgraph.VariableID, weights []float64) string {
	var b strings.Builder
	b.WriteString(g.Variable(sum).String())
	b.WriteString(" = ")
	for i, v := range addends {
		if i == 0 && weights[i] < 0 {
			b.WriteByte('-')
		}
		fmt.Fprintf(&b, "%.2f*[%s]", math.Abs(weights[i]), g.Variable(v))
		if i < len(addends)-1 {
			if weights[i+1] >= 0 {
				b.WriteString(" + ")
			} else {
				b.WriteString(" - ")
			}
		}
	}
	return b.String()
}

// truncationFactor moment-matches a single variable against a truncated
// Gaussian. v and w are the mean and variance corrections.
type truncationFactor struct {
	factorgraph.Bindings
	epsilon float64
	v, w    func(t, epsilon float64) float64
}

func (f *truncationFactor) UpdateMessage(g *factorgraph.Graph, i int) (float64, error) {
	if err := f.CheckIndex(i); err != nil {
		return 0, err
	}
	variable := f.Variable(i)
	oldMarginal := g.Value(variable)
	oldMessage := f.Message(i)
	fromVariable := gaussian.Divide(oldMarginal, oldMessage)

	c := fromVariable.Precision
	d := fromVariable.PrecisionMean
	sqrtC := math.Sqrt(c)
	dOnSqrtC := d / sqrtC
	epsilonTimesSqrtC := f.epsilon * sqrtC

	denominator := 1.0 - f.w(dOnSqrtC, epsilonTimesSqrtC)
	newPrecision := c / denominator
	newPrecisionMean := (d + sqrtC*f.v(dOnSqrtC, epsilonTimesSqrtC)) / denominator

	newMarginal := gaussian.FromPrecisionMean(newPrecisionMean, newPrecision)
	newMessage := gaussian.Divide(gaussian.Multiply(oldMessage, newMarginal), oldMarginal)

	f.SetMessage(i, newMessage)
	g.SetValue(variable, newMarginal)
	return gaussian.AbsDiff(newMarginal, oldMarginal), nil
}

// messageFromVariable is the variable's belief excluding this factor.
func (f *truncationFactor) messageFromVariable(g *factorgraph.Graph) (gaussian.Gaussian, gaussian.Gaussian) {
	message := f.Message(0)
	return gaussian.Divide(g.Value(f.Variable(0)), message), message
}

// GreaterThanFactor encodes a win: the difference exceeds epsilon.
type GreaterThanFactor struct {
	truncationFactor
}

func NewGreaterThanFactor(g *factorgraph.Graph, epsilon float64, difference factorgraph.VariableID) *GreaterThanFactor {
	f := &GreaterThanFactor{truncationFactor{
		Bindings: factorgraph.NewBindings(fmt.Sprintf("%s > %.2f", g.Variable(difference), epsilon)),
		epsilon:  epsilon,
		v:        VExceedsMargin,
		w:        WExceedsMargin,
	}}
	f.BindUninformative(g, difference)
	return f
}

func (f *GreaterThanFactor) LogNormalization(g *factorgraph.Graph) float64 {
	fromVariable, message := f.messageFromVariable(g)
	return -gaussian.LogProductNormalization(fromVariable, message) +
		math.Log(gaussian.StandardCumulativeTo((fromVariable.Mean-f.epsilon)/fromVariable.Stdev))
}

// WithinFactor encodes a draw: the difference lies in [-epsilon, epsilon].
type WithinFactor struct {
	truncationFactor
}

func NewWithinFactor(g *factorgraph.Graph, epsilon float64, difference factorgraph.VariableID) *WithinFactor {
	f := &WithinFactor{truncationFactor{
		Bindings: factorgraph.NewBindings(fmt.Sprintf("%s <= %.2f", g.Variable(difference), epsilon)),
		epsilon:  epsilon,
		v:        VWithinMargin,
		w:        WWithinMargin,
	}}
	f.BindUninformative(g, difference)
	return f
}

func (f *WithinFactor) LogNormalization(g *factorgraph.Graph) float64 {
	fromVariable, message := f.messageFromVariable(g)
	mean, stdev := fromVariable.Mean, fromVariable.Stdev
	z := gaussian.StandardCumulativeTo((f.epsilon-mean)/stdev) -
		gaussian.StandardCumulativeTo((-f.epsilon-mean)/stdev)
	return -gaussian.LogProductNormalization(fromVariable, message) + math.Log(z)
}

var (
	_ factorgraph.Factor = (*PriorFactor)(nil)
	_ factorgraph.Factor = (*LikelihoodFactor)(nil)
	_ factorgraph.Factor = (*WeightedSumFactor)(nil)
	_ factorgraph.Factor = (*GreaterThanFactor)(nil)
	_ factorgraph.Factor = (*WithinFactor)(nil)
)
