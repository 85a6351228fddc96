// Package trueskill rates matches with the TrueSkill factor graph. A graph is
// built per match from five layers, driven to convergence by a schedule and
// then read back as one posterior rating per player.
package trueskill

import (
	"errors"
	"fmt"
	"math"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/factorgraph"
	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
)

const (
	DefaultConvergenceTolerance = 0.0001
	DefaultMaxIterations        = factorgraph.DefaultMaxIterations
)

var (
	ErrInvalidMatch          = errors.New("trueskill: invalid match")
	ErrUnsupportedRatingKind = errors.New("trueskill: unsupported rating kind")
	errNotBuilt              = errors.New("trueskill: graph has not been built")
)

// Options tune the inference run.
type Options struct {
	Kind                 domain.RatingKind
	ConvergenceTolerance float64
	MaxIterations        int
}

func DefaultOptions() Options {
	return Options{
		Kind:                 domain.RatingKindGaussian,
		ConvergenceTolerance: DefaultConvergenceTolerance,
		MaxIterations:        DefaultMaxIterations,
	}
}

func (o Options) withDefaults() Options {
	if o.Kind == "" {
		o.Kind = domain.RatingKindGaussian
	}
	if o.ConvergenceTolerance <= 0 {
		o.ConvergenceTolerance = DefaultConvergenceTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Stats describes how the difference sweep ended.
type Stats struct {
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
	LastDelta  float64 `json:"last_delta"`
}

// Engine holds the factor graph of a single match. The match must already
// be sorted by rank. An Engine is not reusable and not safe for concurrent
// use.
type Engine struct {
	match domain.Match
	game  domain.GameInfo
	opts  Options

	graph    *factorgraph.Graph
	vars     *factorgraph.VariableFactory
	prior    *PriorToSkillsLayer
	iterated *IteratedDifferencesLayer
	layers   []Layer
	built    bool
}

func NewEngine(match domain.Match, game domain.GameInfo, opts Options) *Engine {
	opts = opts.withDefaults()
	g := factorgraph.New()
	vars := factorgraph.NewVariableFactory(g, gaussian.Uninformative)

	prior := NewPriorToSkillsLayer(g, vars, match.Teams, game)
	iterated := NewIteratedDifferencesLayer(g, vars,
		NewTeamPerformancesToDifferencesLayer(g, vars),
		NewDifferencesComparisonLayer(g, vars, match.Ranks, game),
		opts.ConvergenceTolerance, opts.MaxIterations)

	return &Engine{
		match:    match,
		game:     game,
		opts:     opts,
		graph:    g,
		vars:     vars,
		prior:    prior,
		iterated: iterated,
		layers: []Layer{
			prior,
			NewSkillsToPerformancesLayer(g, vars, game),
			NewPerformancesToTeamPerformancesLayer(g, vars),
			iterated,
		},
	}
}

// Graph exposes the underlying graph, mostly for inspection in tests.
func (e *Engine) Graph() *factorgraph.Graph {
	return e.graph
}

// BuildGraph feeds every layer the outputs of the one before it.
func (e *Engine) BuildGraph() error {
	if e.opts.Kind != domain.RatingKindGaussian {
		return fmt.Errorf("%q: %w", e.opts.Kind, ErrUnsupportedRatingKind)
	}
	var last [][]factorgraph.VariableID
	for _, layer := range e.layers {
		if err := layer.Build(last); err != nil {
			return fmt.Errorf("build %s: %w", layer.Name(), err)
		}
		last = layer.Outputs()
	}
	e.built = true
	return nil
}

// FullSchedule runs every layer's prior schedule in order, then every
// posterior schedule in reverse order.
func (e *Engine) FullSchedule() (factorgraph.Schedule, error) {
	if !e.built {
		return nil, errNotBuilt
	}
	var schedules []factorgraph.Schedule
	for _, layer := range e.layers {
		s, err := layer.PriorSchedule()
		if err != nil {
			return nil, fmt.Errorf("%s prior schedule: %w", layer.Name(), err)
		}
		if s != nil {
			schedules = append(schedules, s)
		}
	}
	for i := len(e.layers) - 1; i >= 0; i-- {
		s, err := e.layers[i].PosteriorSchedule()
		if err != nil {
			return nil, fmt.Errorf("%s posterior schedule: %w", e.layers[i].Name(), err)
		}
		if s != nil {
			schedules = append(schedules, s)
		}
	}
	return factorgraph.NewSequence("full schedule", schedules...), nil
}

// RunSchedule visits the full schedule once.
func (e *Engine) RunSchedule() error {
	schedule, err := e.FullSchedule()
	if err != nil {
		return err
	}
	_, err = schedule.Visit(e.graph)
	return err
}

// Stats reports the sweep loop of the last run. Two-team matches need no
// loop and always report a single converged pass.
func (e *Engine) Stats() Stats {
	loop := e.iterated.Loop()
	if loop == nil {
		return Stats{Iterations: 1, Converged: true}
	}
	return Stats{Iterations: loop.Iterations, Converged: loop.Converged, LastDelta: loop.LastDelta}
}

// UpdatedRatings reads each skill marginal back, in the engine's team order.
func (e *Engine) UpdatedRatings() []domain.Team {
	out := make([]domain.Team, 0, len(e.prior.Outputs()))
	for _, skills := range e.prior.Outputs() {
		team := make(domain.Team, 0, len(skills))
		for _, skill := range skills {
			v := e.graph.Variable(skill)
			team = append(team, domain.TeamMember{
				Player: v.Key.(domain.Player),
				Rating: domain.RatingFromGaussian(v.Value),
			})
		}
		out = append(out, team)
	}
	return out
}

// ProbabilityOfRanking is the total probability of the observed ranking
// under the graph. It re-sends every message, so the marginals must be read
// before calling it.
func (e *Engine) ProbabilityOfRanking() (float64, error) {
	if !e.built {
		return 0, errNotBuilt
	}
	var factors factorgraph.FactorList
	for _, layer := range e.layers {
		for _, id := range layer.LocalFactors() {
			f, err := e.graph.Factor(id)
			if err != nil {
				return 0, err
			}
			factors = append(factors, f)
		}
	}
	logZ, err := factors.LogNormalization(e.graph)
	if err != nil {
		return 0, err
	}
	return math.Exp(logZ), nil
}
