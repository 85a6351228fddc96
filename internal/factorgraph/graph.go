// Package factorgraph provides the primitives for Gaussian message passing:
// variables, messages, factors and the schedules that drive updates until the
// beliefs converge.
//
// A Graph is an arena. Variables and factors are addressed by stable integer
// ids, factors own their outgoing messages, and a Graph belongs to exactly one
// inference run. Graphs are not safe for concurrent use.
package factorgraph

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
)

var (
	// ErrInvalidMessageIndex signals a schedule step bound to a message slot
	// the factor does not have. It always indicates a miswired schedule.
	ErrInvalidMessageIndex = errors.New("factorgraph: message index is invalid")
	ErrUnknownVariable     = errors.New("factorgraph: unknown variable")
	ErrUnknownFactor       = errors.New("factorgraph: unknown factor")
)

// VariableID addresses a Variable inside its Graph.
type VariableID int

// FactorID addresses a Factor inside its Graph.
type FactorID int

// Variable is a node holding the current marginal and the prior it resets to.
// Key is nil for plain variables and carries the owner identity for keyed
// ones.
type Variable struct {
	Name  string
	Key   any
	Prior gaussian.Gaussian
	Value gaussian.Gaussian
}

// ResetToPrior restores the marginal to the prior.
func (v *Variable) ResetToPrior() {
	v.Value = v.Prior
}

func (v *Variable) String() string {
	return "Variable[" + v.Name + "]"
}

// Graph owns all variables and factors of one inference run.
type Graph struct {
	variables []Variable
	factors   []Factor
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddVariable stores v and returns its id.
func (g *Graph) AddVariable(v Variable) VariableID {
	g.variables = append(g.variables, v)
	return VariableID(len(g.variables) - 1)
}

// Variable returns a pointer into the arena. The pointer is invalidated by
// the next AddVariable call.
func (g *Graph) Variable(id VariableID) *Variable {
	return &g.variables[id]
}

// Value returns the current marginal of a variable.
func (g *Graph) Value(id VariableID) gaussian.Gaussian {
	return g.variables[id].Value
}

// SetValue replaces the marginal of a variable.
func (g *Graph) SetValue(id VariableID, value gaussian.Gaussian) {
	g.variables[id].Value = value
}

// NumVariables returns the number of variables in the arena.
func (g *Graph) NumVariables() int {
	return len(g.variables)
}

// AddFactor stores f and returns its id.
func (g *Graph) AddFactor(f Factor) FactorID {
	g.factors = append(g.factors, f)
	return FactorID(len(g.factors) - 1)
}

// Factor returns the factor with the given id.
func (g *Graph) Factor(id FactorID) (Factor, error) {
	if id < 0 || int(id) >= len(g.factors) {
		return nil, fmt.Errorf("factor %d: %w", id, ErrUnknownFactor)
	}
	return g.factors[id], nil
}

// NumFactors returns the number of factors in the arena.
func (g *Graph) NumFactors() int {
	return len(g.factors)
}

func (g *Graph) checkVariable(id VariableID) error {
	if id < 0 || int(id) >= len(g.variables) {
		return fmt.Errorf("variable %d: %w", id, ErrUnknownVariable)
	}
	return nil
}
