package trueskill

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/factorgraph"
)

// Layer builds one stage of the rating graph. Inputs are the variable
// groups produced by the previous layer, one group per team.
type Layer interface {
	Name() string
	Build(inputs [][]factorgraph.VariableID) error
	Outputs() [][]factorgraph.VariableID
	LocalFactors() []factorgraph.FactorID
	// PriorSchedule and PosteriorSchedule return nil when the layer has no
	// pass in that direction.
	PriorSchedule() (factorgraph.Schedule, error)
	PosteriorSchedule() (factorgraph.Schedule, error)
}

// layerBase records what a layer added to the graph.
type layerBase struct {
	graph   *factorgraph.Graph
	vars    *factorgraph.VariableFactory
	inputs  [][]factorgraph.VariableID
	outputs [][]factorgraph.VariableID
	factors []factorgraph.FactorID
}

func newLayerBase(g *factorgraph.Graph, vars *factorgraph.VariableFactory) layerBase {
	return layerBase{graph: g, vars: vars}
}

func (l *layerBase) Outputs() [][]factorgraph.VariableID              { return l.outputs }
func (l *layerBase) LocalFactors() []factorgraph.FactorID             { return l.factors }
func (l *layerBase) PriorSchedule() (factorgraph.Schedule, error)     { return nil, nil }
func (l *layerBase) PosteriorSchedule() (factorgraph.Schedule, error) { return nil, nil }

func (l *layerBase) addFactor(f factorgraph.Factor) factorgraph.FactorID {
	id := l.graph.AddFactor(f)
	l.factors = append(l.factors, id)
	return id
}

// stepsAt schedules message index of every local factor in order.
func (l *layerBase) stepsAt(label string, index int) *factorgraph.Sequence {
	steps := make([]factorgraph.Schedule, 0, len(l.factors))
	for _, id := range l.factors {
		steps = append(steps, factorgraph.NewStep(label, id, index))
	}
	return factorgraph.NewSequence(label, steps...)
}

func (l *layerBase) playerOf(v factorgraph.VariableID) (domain.Player, error) {
	p, ok := l.graph.Variable(v).Key.(domain.Player)
	if !ok {
		return domain.Player{}, fmt.Errorf("variable %s is not keyed by a player: %w", l.graph.Variable(v), ErrInvalidMatch)
	}
	return p, nil
}

// PriorToSkillsLayer creates one skill variable per player, seeded by a
// prior factor holding the player's rating widened by the dynamics factor.
type PriorToSkillsLayer struct {
	layerBase
	teams []domain.Team
	game  domain.GameInfo
}

func NewPriorToSkillsLayer(g *factorgraph.Graph, vars *factorgraph.VariableFactory, teams []domain.Team, game domain.GameInfo) *PriorToSkillsLayer {
	return &PriorToSkillsLayer{layerBase: newLayerBase(g, vars), teams: teams, game: game}
}

func (l *PriorToSkillsLayer) Name() string { return "prior to skills" }

func (l *PriorToSkillsLayer) Build([][]factorgraph.VariableID) error {
	tau2 := l.game.DynamicsFactor * l.game.DynamicsFactor
	for _, team := range l.teams {
		skills := make([]factorgraph.VariableID, 0, len(team))
		for _, member := range team {
			skill := l.vars.CreateKeyedVariable(member.Player, member.Player.String()+"'s skill")
			variance := member.Rating.Stdev*member.Rating.Stdev + tau2
			l.addFactor(NewPriorFactor(l.graph, member.Rating.Mean, variance, skill))
			skills = append(skills, skill)
		}
		l.outputs = append(l.outputs, skills)
	}
	return nil
}

func (l *PriorToSkillsLayer) PriorSchedule() (factorgraph.Schedule, error) {
	return l.stepsAt("prior to skill", 0), nil
}

// SkillsToPerformancesLayer adds performance noise to every skill.
type SkillsToPerformancesLayer struct {
	layerBase
	betaSquared float64
}

func NewSkillsToPerformancesLayer(g *factorgraph.Graph, vars *factorgraph.VariableFactory, game domain.GameInfo) *SkillsToPerformancesLayer {
	return &SkillsToPerformancesLayer{layerBase: newLayerBase(g, vars), betaSquared: game.Beta * game.Beta}
}

func (l *SkillsToPerformancesLayer) Name() string { return "skills to performances" }

func (l *SkillsToPerformancesLayer) Build(inputs [][]factorgraph.VariableID) error {
	l.inputs = inputs
	for _, team := range inputs {
		performances := make([]factorgraph.VariableID, 0, len(team))
		for _, skill := range team {
			player, err := l.playerOf(skill)
			if err != nil {
				return err
			}
			performance := l.vars.CreateKeyedVariable(player, player.String()+"'s performance")
			l.addFactor(NewLikelihoodFactor(l.graph, l.betaSquared, performance, skill))
			performances = append(performances, performance)
		}
		l.outputs = append(l.outputs, performances)
	}
	return nil
}

func (l *SkillsToPerformancesLayer) PriorSchedule() (factorgraph.Schedule, error) {
	return l.stepsAt("skill to performance", 0), nil
}

func (l *SkillsToPerformancesLayer) PosteriorSchedule() (factorgraph.Schedule, error) {
	return l.stepsAt("performance to skill", 1), nil
}

// PerformancesToTeamPerformancesLayer sums player performances into one
// team performance, weighted by partial play.
type PerformancesToTeamPerformancesLayer struct {
	layerBase
}

func NewPerformancesToTeamPerformancesLayer(g *factorgraph.Graph, vars *factorgraph.VariableFactory) *PerformancesToTeamPerformancesLayer {
	return &PerformancesToTeamPerformancesLayer{layerBase: newLayerBase(g, vars)}
}

func (l *PerformancesToTeamPerformancesLayer) Name() string { return "performances to team performances" }

func (l *PerformancesToTeamPerformancesLayer) Build(inputs [][]factorgraph.VariableID) error {
	l.inputs = inputs
	for _, team := range inputs {
		weights := make([]float64, len(team))
		names := make([]string, len(team))
		for i, performance := range team {
			player, err := l.playerOf(performance)
			if err != nil {
				return err
			}
			weights[i] = player.Weight()
			names[i] = player.String()
		}

		teamPerformance := l.vars.CreateBasicVariable("Team[" + strings.Join(names, ", ") + "]'s performance")
		l.addFactor(NewWeightedSumFactor(l.graph, teamPerformance, team, weights))
		l.outputs = append(l.outputs, []factorgraph.VariableID{teamPerformance})
	}
	return nil
}

func (l *PerformancesToTeamPerformancesLayer) PriorSchedule() (factorgraph.Schedule, error) {
	return l.stepsAt("performance to team performance", 0), nil
}

func (l *PerformancesToTeamPerformancesLayer) PosteriorSchedule() (factorgraph.Schedule, error) {
	var steps []factorgraph.Schedule
	for _, id := range l.factors {
		f, err := l.graph.Factor(id)
		if err != nil {
			return nil, err
		}
		for i := 1; i < f.NumMessages(); i++ {
			steps = append(steps, factorgraph.NewStep(fmt.Sprintf("team sum perf @ %d", i), id, i))
		}
	}
	return factorgraph.NewSequence("team performance to performances", steps...), nil
}

// TeamPerformancesToDifferencesLayer creates the difference of every pair of
// adjacent team performances.
type TeamPerformancesToDifferencesLayer struct {
	layerBase
}

func NewTeamPerformancesToDifferencesLayer(g *factorgraph.Graph, vars *factorgraph.VariableFactory) *TeamPerformancesToDifferencesLayer {
	return &TeamPerformancesToDifferencesLayer{layerBase: newLayerBase(g, vars)}
}

func (l *TeamPerformancesToDifferencesLayer) Name() string { return "team performances to differences" }

func (l *TeamPerformancesToDifferencesLayer) Build(inputs [][]factorgraph.VariableID) error {
	l.inputs = inputs
	for i := 0; i+1 < len(inputs); i++ {
		stronger, weaker := inputs[i][0], inputs[i+1][0]
		difference := l.vars.CreateBasicVariable("Team performance difference")
		l.addFactor(NewWeightedSumFactor(l.graph, difference,
			[]factorgraph.VariableID{stronger, weaker}, []float64{1, -1}))
		l.outputs = append(l.outputs, []factorgraph.VariableID{difference})
	}
	return nil
}

// DifferencesComparisonLayer attaches a win or draw factor to every
// difference, according to the sorted ranks.
type DifferencesComparisonLayer struct {
	layerBase
	ranks   []int
	epsilon float64
}

func NewDifferencesComparisonLayer(g *factorgraph.Graph, vars *factorgraph.VariableFactory, ranks []int, game domain.GameInfo) *DifferencesComparisonLayer {
	return &DifferencesComparisonLayer{layerBase: newLayerBase(g, vars), ranks: ranks, epsilon: game.DrawMargin()}
}

func (l *DifferencesComparisonLayer) Name() string { return "differences comparison" }

func (l *DifferencesComparisonLayer) Build(inputs [][]factorgraph.VariableID) error {
	l.inputs = inputs
	if len(l.ranks) < len(inputs)+1 {
		return fmt.Errorf("%d ranks for %d differences: %w", len(l.ranks), len(inputs), ErrInvalidMatch)
	}
	for i, group := range inputs {
		difference := group[0]
		if l.ranks[i] == l.ranks[i+1] {
			l.addFactor(NewWithinFactor(l.graph, l.epsilon, difference))
		} else {
			l.addFactor(NewGreaterThanFactor(l.graph, l.epsilon, difference))
		}
	}
	return nil
}

// IteratedDifferencesLayer wraps the difference and comparison layers. With
// more than two teams each difference depends on its neighbours, so the
// pair is swept forward and backward until the marginals settle.
type IteratedDifferencesLayer struct {
	layerBase
	differences *TeamPerformancesToDifferencesLayer
	comparisons *DifferencesComparisonLayer
	tolerance   float64
	maxIters    int

	loop *factorgraph.Loop
}

func NewIteratedDifferencesLayer(
	g *factorgraph.Graph,
	vars *factorgraph.VariableFactory,
	differences *TeamPerformancesToDifferencesLayer,
	comparisons *DifferencesComparisonLayer,
	tolerance float64,
	maxIters int,
) *IteratedDifferencesLayer {
	return &IteratedDifferencesLayer{
		layerBase:   newLayerBase(g, vars),
		differences: differences,
		comparisons: comparisons,
		tolerance:   tolerance,
		maxIters:    maxIters,
	}
}

func (l *IteratedDifferencesLayer) Name() string { return "iterated team differences" }

func (l *IteratedDifferencesLayer) Build(inputs [][]factorgraph.VariableID) error {
	l.inputs = inputs
	if err := l.differences.Build(inputs); err != nil {
		return err
	}
	return l.comparisons.Build(l.differences.Outputs())
}

func (l *IteratedDifferencesLayer) LocalFactors() []factorgraph.FactorID {
	out := append([]factorgraph.FactorID(nil), l.differences.LocalFactors()...)
	return append(out, l.comparisons.LocalFactors()...)
}

func (l *IteratedDifferencesLayer) PriorSchedule() (factorgraph.Schedule, error) {
	var inner factorgraph.Schedule
	switch n := len(l.inputs); {
	case n == 2:
		inner = l.twoTeamSchedule()
	case n > 2:
		l.loop = l.multipleTeamLoop()
		inner = l.loop
	default:
		return nil, fmt.Errorf("iterated differences need at least 2 teams, got %d: %w", n, ErrInvalidMatch)
	}

	diffs := l.differences.LocalFactors()
	first, last := diffs[0], diffs[len(diffs)-1]
	return factorgraph.NewSequence("inner schedule",
		inner,
		factorgraph.NewStep("team performance difference[0] @ 1", first, 1),
		factorgraph.NewStep(fmt.Sprintf("team performance difference[%d] @ 2", len(diffs)-1), last, 2),
	), nil
}

func (l *IteratedDifferencesLayer) twoTeamSchedule() factorgraph.Schedule {
	return factorgraph.NewSequence("two team inner sequence",
		factorgraph.NewStep("team performance to difference", l.differences.LocalFactors()[0], 0),
		factorgraph.NewStep("difference comparison", l.comparisons.LocalFactors()[0], 0),
	)
}

func (l *IteratedDifferencesLayer) multipleTeamLoop() *factorgraph.Loop {
	diffs := l.differences.LocalFactors()
	comps := l.comparisons.LocalFactors()
	n := len(diffs)

	forward := make([]factorgraph.Schedule, 0, n-1)
	for i := 0; i < n-1; i++ {
		forward = append(forward, factorgraph.NewSequence(fmt.Sprintf("forward piece %d", i),
			factorgraph.NewStep(fmt.Sprintf("team performance difference[%d] @ 0", i), diffs[i], 0),
			factorgraph.NewStep(fmt.Sprintf("difference comparison[%d] @ 0", i), comps[i], 0),
			factorgraph.NewStep(fmt.Sprintf("team performance difference[%d] @ 2", i), diffs[i], 2),
		))
	}

	backward := make([]factorgraph.Schedule, 0, n-1)
	for i := 0; i < n-1; i++ {
		j := n - 1 - i
		backward = append(backward, factorgraph.NewSequence(fmt.Sprintf("backward piece %d", i),
			factorgraph.NewStep(fmt.Sprintf("team performance difference[%d] @ 0", j), diffs[j], 0),
			factorgraph.NewStep(fmt.Sprintf("difference comparison[%d] @ 0", j), comps[j], 0),
			factorgraph.NewStep(fmt.Sprintf("team performance difference[%d] @ 1", j), diffs[j], 1),
		))
	}

	sweep := factorgraph.NewSequence("forward backward sweep",
		factorgraph.NewSequence("forward", forward...),
		factorgraph.NewSequence("backward", backward...),
	)
	return factorgraph.NewLoop(fmt.Sprintf("loop with max delta of %f", l.tolerance), sweep, l.tolerance, l.maxIters)
}

// Loop returns the sweep loop once PriorSchedule has built it. It is nil for
// two teams.
func (l *IteratedDifferencesLayer) Loop() *factorgraph.Loop {
	return l.loop
}

var (
	_ Layer = (*PriorToSkillsLayer)(nil)
	_ Layer = (*SkillsToPerformancesLayer)(nil)
	_ Layer = (*PerformancesToTeamPerformancesLayer)(nil)
	_ Layer = (*TeamPerformancesToDifferencesLayer)(nil)
	_ Layer = (*DifferencesComparisonLayer)(nil)
	_ Layer = (*IteratedDifferencesLayer)(nil)
)
