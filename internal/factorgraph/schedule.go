package factorgraph

import (
	"fmt"
	"math"
)

// DefaultMaxIterations caps a Loop whose MaxIterations is left at zero.
const DefaultMaxIterations = 200

// Schedule is a node of the update plan. Visit performs the node's updates
// and returns the largest marginal change it observed.
type Schedule interface {
	Name() string
	Visit(g *Graph) (float64, error)
}

// Step updates one message of one factor.
type Step struct {
	Label  string
	Factor FactorID
	Index  int
}

// NewStep returns a step updating message index of factor f.
func NewStep(label string, f FactorID, index int) *Step {
	return &Step{Label: label, Factor: f, Index: index}
}

func (s *Step) Name() string { return s.Label }

func (s *Step) Visit(g *Graph) (float64, error) {
	f, err := g.Factor(s.Factor)
	if err != nil {
		return 0, fmt.Errorf("step %q: %w", s.Label, err)
	}
	delta, err := f.UpdateMessage(g, s.Index)
	if err != nil {
		return 0, fmt.Errorf("step %q: %w", s.Label, err)
	}
	return delta, nil
}

// Sequence visits its children in order.
type Sequence struct {
	Label     string
	Schedules []Schedule
}

// NewSequence returns a sequence over schedules.
func NewSequence(label string, schedules ...Schedule) *Sequence {
	return &Sequence{Label: label, Schedules: schedules}
}

func (s *Sequence) Name() string { return s.Label }

func (s *Sequence) Visit(g *Graph) (float64, error) {
	var maxDelta float64
	for _, child := range s.Schedules {
		delta, err := child.Visit(g)
		if err != nil {
			return 0, err
		}
		maxDelta = math.Max(maxDelta, delta)
	}
	return maxDelta, nil
}

// Loop revisits Inner until its delta is at most MaxDelta or MaxIterations
// visits have been made. Hitting the cap is not an error: Converged reports
// it and the marginals hold the best effort so far.
type Loop struct {
	Label         string
	Inner         Schedule
	MaxDelta      float64
	MaxIterations int

	// Iterations and Converged describe the most recent Visit.
	Iterations int
	Converged  bool
	LastDelta  float64
}

// NewLoop returns a loop over inner.
func NewLoop(label string, inner Schedule, maxDelta float64, maxIterations int) *Loop {
	return &Loop{Label: label, Inner: inner, MaxDelta: maxDelta, MaxIterations: maxIterations}
}

func (l *Loop) Name() string { return l.Label }

func (l *Loop) Visit(g *Graph) (float64, error) {
	limit := l.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}

	l.Iterations = 0
	l.Converged = false

	var delta float64
	for {
		d, err := l.Inner.Visit(g)
		if err != nil {
			return 0, err
		}
		delta = d
		l.Iterations++
		if delta <= l.MaxDelta {
			l.Converged = true
			break
		}
		if l.Iterations >= limit {
			break
		}
	}
	l.LastDelta = delta
	return delta, nil
}
