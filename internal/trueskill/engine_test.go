package trueskill

import (
	"math"
	"testing"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngine_GraphShape(t *testing.T) {
	m := newFixture().match([]int{1, 2}, fresh(1, 2), fresh(3, 4))
	e := NewEngine(m, domain.DefaultGameInfo(), DefaultOptions())
	require.NoError(t, e.BuildGraph())

	// 4 skills, 4 performances, 2 team performances and 1 difference.
	assert.Equal(t, 11, e.Graph().NumVariables())
	// 4 priors, 4 likelihoods, 2 team sums, 1 difference and 1 comparison.
	assert.Equal(t, 12, e.Graph().NumFactors())
}

func TestEngine_ScheduleNeedsGraph(t *testing.T) {
	m := newFixture().match([]int{1, 2}, fresh(1), fresh(2))
	e := NewEngine(m, domain.DefaultGameInfo(), DefaultOptions())

	_, err := e.FullSchedule()
	assert.ErrorIs(t, err, errNotBuilt)
	assert.ErrorIs(t, e.RunSchedule(), errNotBuilt)

	_, err = e.ProbabilityOfRanking()
	assert.ErrorIs(t, err, errNotBuilt)
}

func TestEngine_UnsupportedKind(t *testing.T) {
	m := newFixture().match([]int{1, 2}, fresh(1), fresh(2))
	e := NewEngine(m, domain.DefaultGameInfo(), Options{Kind: "glicko"})
	assert.ErrorIs(t, e.BuildGraph(), ErrUnsupportedRatingKind)

	calc := NewCalculator(domain.DefaultGameInfo(), Options{Kind: "glicko"}, zap.NewNop())
	_, err := calc.Rate(m)
	assert.ErrorIs(t, err, ErrUnsupportedRatingKind)
}

func TestEngine_TwoTeamStats(t *testing.T) {
	m := newFixture().match([]int{1, 2}, fresh(1), fresh(2))
	e := NewEngine(m, domain.DefaultGameInfo(), DefaultOptions())
	require.NoError(t, e.BuildGraph())
	require.NoError(t, e.RunSchedule())

	assert.Equal(t, Stats{Iterations: 1, Converged: true}, e.Stats())
}

func TestEngine_SweepConverges(t *testing.T) {
	m := newFixture().match([]int{1, 2, 3, 4}, fresh(1), fresh(2), fresh(3), fresh(4))
	e := NewEngine(m, domain.DefaultGameInfo(), DefaultOptions())
	require.NoError(t, e.BuildGraph())
	require.NoError(t, e.RunSchedule())

	stats := e.Stats()
	assert.True(t, stats.Converged)
	assert.Greater(t, stats.Iterations, 1)
	assert.Less(t, stats.Iterations, DefaultMaxIterations)
	assert.LessOrEqual(t, stats.LastDelta, DefaultConvergenceTolerance)
}

func TestEngine_SweepDeltaShrinks(t *testing.T) {
	const sweeps = 12
	m := newFixture().match([]int{1, 2, 3, 4, 5}, fresh(1), fresh(2), fresh(3), fresh(4), fresh(5))

	deltas := make([]float64, 0, sweeps)
	for k := 1; k <= sweeps; k++ {
		opts := DefaultOptions()
		opts.ConvergenceTolerance = 1e-15
		opts.MaxIterations = k
		e := NewEngine(m, domain.DefaultGameInfo(), opts)
		require.NoError(t, e.BuildGraph())
		require.NoError(t, e.RunSchedule())

		stats := e.Stats()
		require.Equal(t, k, stats.Iterations)
		deltas = append(deltas, stats.LastDelta)
	}

	// The first sweeps are a transient; after that each sweep moves less.
	for i := 2; i < len(deltas); i++ {
		assert.LessOrEqual(t, deltas[i], deltas[i-1], "sweep %d: %v", i+1, deltas)
	}
	assert.Less(t, deltas[len(deltas)-1], 1e-6)
}

func TestEngine_IterationCapIsBestEffort(t *testing.T) {
	m := newFixture().match([]int{1, 2, 3}, fresh(1), fresh(2), fresh(3))
	opts := DefaultOptions()
	opts.MaxIterations = 1

	calc := NewCalculator(domain.DefaultGameInfo(), opts, zap.NewNop())
	result, err := calc.Rate(m)
	require.NoError(t, err)

	assert.False(t, result.Converged)
	assert.Equal(t, 1, result.Iterations)
	assert.Greater(t, result.LastDelta, DefaultConvergenceTolerance)

	// A single sweep already orders the players correctly.
	first := result.Teams[0][0].Rating
	last := result.Teams[2][0].Rating
	assert.Greater(t, first.Mean, defaultMean)
	assert.Less(t, last.Mean, defaultMean)
	for _, r := range result.Ratings {
		assert.False(t, math.IsNaN(r.Mean) || math.IsNaN(r.Stdev))
	}
}

func TestEngine_ProbabilityRestoresMarginals(t *testing.T) {
	m := newFixture().match([]int{1, 2, 3}, fresh(1), fresh(2), fresh(3))
	e := NewEngine(m, domain.DefaultGameInfo(), DefaultOptions())
	require.NoError(t, e.BuildGraph())
	require.NoError(t, e.RunSchedule())

	first, err := e.ProbabilityOfRanking()
	require.NoError(t, err)
	second, err := e.ProbabilityOfRanking()
	require.NoError(t, err)

	assert.InDelta(t, 0.1452182714112303, first, 1e-6)
	assert.InDelta(t, first, second, 1e-12)
}

func TestEngine_ChessRatings(t *testing.T) {
	game := domain.GameInfo{
		InitialMean:            1200,
		InitialStdev:           400,
		Beta:                   200,
		DynamicsFactor:         4,
		DrawProbability:        0.03,
		ConservativeMultiplier: domain.DefaultConservativeMultiplier,
	}
	f := newFixture()
	m := f.match([]int{1, 2},
		[]seat{{player: 1, mean: 1301.0007, stdev: 42.9232}},
		[]seat{{player: 2, mean: 1188.7560, stdev: 42.5570}},
	)

	result, err := NewCalculator(game, DefaultOptions(), zap.NewNop()).Rate(m)
	require.NoError(t, err)

	winner := result.Ratings[f.id(1)]
	loser := result.Ratings[f.id(2)]
	assert.InDelta(t, 1304.7820836053318, winner.Mean, 1e-3)
	assert.InDelta(t, 42.843513887848658, winner.Stdev, 1e-3)
	assert.InDelta(t, 1185.0383099003536, loser.Mean, 1e-3)
	assert.InDelta(t, 42.485604606897752, loser.Stdev, 1e-3)
}

func TestIteratedDifferencesLayer_NeedsTwoTeams(t *testing.T) {
	g, vars := newGraph()
	layer := NewIteratedDifferencesLayer(g, vars,
		NewTeamPerformancesToDifferencesLayer(g, vars),
		NewDifferencesComparisonLayer(g, vars, []int{1}, domain.DefaultGameInfo()),
		DefaultConvergenceTolerance, DefaultMaxIterations)

	_, err := layer.PriorSchedule()
	assert.ErrorIs(t, err, ErrInvalidMatch)
}
