package trueskill

import (
	"fmt"
	"math"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/numerics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is the outcome of rating one match.
type Result struct {
	// Teams holds the posterior ratings, ordered by rank.
	Teams   []domain.Team
	Ranks   []int
	Ratings map[uuid.UUID]domain.Rating
	// Probability is the probability of the observed ranking given the
	// prior ratings.
	Probability float64
	Stats
}

// Calculator rates matches of any number of teams with the full factor
// graph. It holds no per-match state and is safe for concurrent use.
type Calculator struct {
	game    domain.GameInfo
	opts    Options
	logger  *zap.Logger
	teams   numerics.Range
	players numerics.Range
}

func NewCalculator(game domain.GameInfo, opts Options, logger *zap.Logger) *Calculator {
	return &Calculator{
		game:    game,
		opts:    opts.withDefaults(),
		logger:  logger,
		teams:   numerics.AtLeast(2),
		players: numerics.AtLeast(1),
	}
}

func (c *Calculator) GameInfo() domain.GameInfo {
	return c.game
}

// Rate computes new ratings for every player of m. Players with a partial
// update below 1 only move part of the way toward their posterior.
func (c *Calculator) Rate(m domain.Match) (*Result, error) {
	if err := c.validate(m, true); err != nil {
		return nil, err
	}

	sorted := clone(m)
	sorted.Sort()

	engine := NewEngine(sorted, c.game, c.opts)
	if err := engine.BuildGraph(); err != nil {
		return nil, err
	}
	if err := engine.RunSchedule(); err != nil {
		return nil, err
	}

	teams := engine.UpdatedRatings()
	ratings := make(map[uuid.UUID]domain.Rating, sorted.Size())
	for ti, team := range teams {
		for pi, member := range team {
			posterior := member.Rating
			if member.Player.PartialUpdate < 1 {
				prior := sorted.Teams[ti][pi].Rating
				posterior = domain.PartialUpdate(prior, posterior, member.Player.PartialUpdate)
				teams[ti][pi].Rating = posterior
			}
			ratings[member.Player.ID] = posterior
		}
	}

	probability, err := engine.ProbabilityOfRanking()
	if err != nil {
		return nil, err
	}

	stats := engine.Stats()
	if !stats.Converged {
		c.logger.Warn("difference sweep did not converge",
			zap.Int("teams", len(sorted.Teams)),
			zap.Int("iterations", stats.Iterations),
			zap.Float64("last_delta", stats.LastDelta))
	}
	c.logger.Debug("match rated",
		zap.Int("teams", len(sorted.Teams)),
		zap.Int("players", sorted.Size()),
		zap.Int("iterations", stats.Iterations),
		zap.Float64("probability", probability))

	return &Result{
		Teams:       teams,
		Ranks:       sorted.Ranks,
		Ratings:     ratings,
		Probability: probability,
		Stats:       stats,
	}, nil
}

// ProbabilityOfOutcome is the probability of m's ranking given the current
// ratings, without applying any update.
func (c *Calculator) ProbabilityOfOutcome(m domain.Match) (float64, error) {
	if err := c.validate(m, true); err != nil {
		return 0, err
	}
	sorted := clone(m)
	sorted.Sort()

	engine := NewEngine(sorted, c.game, c.opts)
	if err := engine.BuildGraph(); err != nil {
		return 0, err
	}
	if err := engine.RunSchedule(); err != nil {
		return 0, err
	}
	return engine.ProbabilityOfRanking()
}

// MatchQuality estimates how likely a draw is between the teams of m, in
// [0, 1]. Ranks are ignored.
func (c *Calculator) MatchQuality(m domain.Match) (float64, error) {
	if err := c.validate(m, false); err != nil {
		return 0, err
	}

	n := m.Size()
	means := make([]float64, 0, n)
	variances := make([]float64, 0, n)
	for _, team := range m.Teams {
		for _, member := range team {
			means = append(means, member.Rating.Mean)
			variances = append(variances, member.Rating.Stdev*member.Rating.Stdev)
		}
	}

	skills := numerics.Diagonal(variances)
	meanT := numerics.Row(means)
	mean := meanT.Transpose()

	assignments := playerTeamAssignments(m)
	assignmentsT := assignments.Transpose()
	betaSquared := c.game.Beta * c.game.Beta

	start, err := meanT.Mul(assignments)
	if err != nil {
		return 0, err
	}
	aTa, err := assignmentsT.Scale(betaSquared).Mul(assignments)
	if err != nil {
		return 0, err
	}
	tS, err := assignmentsT.Mul(skills)
	if err != nil {
		return 0, err
	}
	aTSa, err := tS.Mul(assignments)
	if err != nil {
		return 0, err
	}
	middle, err := aTa.Add(aTSa)
	if err != nil {
		return 0, err
	}

	solver := numerics.SolverFor(middle.Rows())
	middleInverse, err := solver.Inverse(middle)
	if err != nil {
		return 0, fmt.Errorf("match quality: %w", err)
	}
	end, err := assignmentsT.Mul(mean)
	if err != nil {
		return 0, err
	}

	left, err := start.Mul(middleInverse)
	if err != nil {
		return 0, err
	}
	expPart, err := left.Mul(end)
	if err != nil {
		return 0, err
	}

	detA, err := solver.Determinant(aTa)
	if err != nil {
		return 0, err
	}
	detM, err := solver.Determinant(middle)
	if err != nil {
		return 0, err
	}
	if detM == 0 {
		return 0, fmt.Errorf("match quality: %w", numerics.ErrSingular)
	}

	return math.Exp(-0.5*expPart.At(0, 0)) * math.Sqrt(detA/detM), nil
}

// playerTeamAssignments has one row per player and one column per team but
// the last. Column j carries +weight for team j's players and -weight for
// team j+1's.
func playerTeamAssignments(m domain.Match) *numerics.Matrix {
	out := numerics.Zeros(m.Size(), len(m.Teams)-1)
	row := 0
	for col := 0; col < len(m.Teams)-1; col++ {
		for _, member := range m.Teams[col] {
			out.Set(row, col, member.Player.Weight())
			row++
		}
		next := row
		for _, member := range m.Teams[col+1] {
			out.Set(next, col, -member.Player.Weight())
			next++
		}
	}
	return out
}

func (c *Calculator) validate(m domain.Match, needRanks bool) error {
	if !c.teams.Contains(len(m.Teams)) {
		return fmt.Errorf("%w: team count %d not in %s", ErrInvalidMatch, len(m.Teams), c.teams)
	}
	seen := make(map[uuid.UUID]struct{}, m.Size())
	for i, team := range m.Teams {
		if !c.players.Contains(len(team)) {
			return fmt.Errorf("%w: team %d has %d players, want %s", ErrInvalidMatch, i, len(team), c.players)
		}
		for _, member := range team {
			p := member.Player
			if _, dup := seen[p.ID]; dup {
				return fmt.Errorf("%w: player %s appears twice", ErrInvalidMatch, p.ID)
			}
			seen[p.ID] = struct{}{}
			if p.PartialPlay <= 0 || p.PartialPlay > 1 {
				return fmt.Errorf("%w: partial play %g of %s not in (0, 1]", ErrInvalidMatch, p.PartialPlay, p.ID)
			}
			if p.PartialUpdate < 0 || p.PartialUpdate > 1 {
				return fmt.Errorf("%w: partial update %g of %s not in [0, 1]", ErrInvalidMatch, p.PartialUpdate, p.ID)
			}
			if !finite(member.Rating.Mean) || !finite(member.Rating.Stdev) || member.Rating.Stdev <= 0 {
				return fmt.Errorf("%w: rating %s of %s", ErrInvalidMatch, member.Rating, p.ID)
			}
		}
	}
	if needRanks && len(m.Ranks) != len(m.Teams) {
		return fmt.Errorf("%w: %d ranks for %d teams", ErrInvalidMatch, len(m.Ranks), len(m.Teams))
	}
	if needRanks && c.game.DrawMargin() < minDrawMargin {
		ranks := make(map[int]struct{}, len(m.Ranks))
		for _, r := range m.Ranks {
			if _, tie := ranks[r]; tie {
				return fmt.Errorf("%w: rank %d is a draw but the game has no draw probability", ErrInvalidMatch, r)
			}
			ranks[r] = struct{}{}
		}
	}
	return nil
}

// minDrawMargin is the narrowest margin a draw can be rated with. Below it
// the within-margin variance correction rounds to one and the posterior of a
// tie is undefined.
const minDrawMargin = 1e-4

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clone(m domain.Match) domain.Match {
	out := domain.Match{
		Teams: make([]domain.Team, len(m.Teams)),
		Ranks: append([]int(nil), m.Ranks...),
	}
	for i, t := range m.Teams {
		out.Teams[i] = append(domain.Team(nil), t...)
	}
	return out
}
