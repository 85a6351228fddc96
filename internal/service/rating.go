package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/store"
	"github.com/Harshitk-cp/skillgraph/internal/trueskill"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidMatch   = errors.New("invalid match")
	ErrMatchNotFound  = errors.New("match not found")
	ErrRatingConflict = errors.New("ratings changed while the match was rated, retry")
)

// rateAttempts bounds how often Rate reloads ratings that another write
// moved between the read and the commit.
const rateAttempts = 3

// MatchEntry is one player's seat in a submitted match. Nil partials mean the
// player took full part.
type MatchEntry struct {
	PlayerID      uuid.UUID
	PartialPlay   *float64
	PartialUpdate *float64
}

type MatchInput struct {
	Teams [][]MatchEntry
	// Ranks holds one rank per team, lower is better. Equal ranks are draws.
	Ranks []int
}

// RatingService rates submitted matches against the stored ratings and
// persists the outcome.
type RatingService struct {
	players domain.PlayerStore
	matches domain.MatchStore
	opts    trueskill.Options
	logger  *zap.Logger
}

func NewRatingService(ps domain.PlayerStore, ms domain.MatchStore, opts trueskill.Options, logger *zap.Logger) *RatingService {
	return &RatingService{
		players: ps,
		matches: ms,
		opts:    opts,
		logger:  logger,
	}
}

func (s *RatingService) calculator(league *domain.League) *trueskill.Calculator {
	return trueskill.NewCalculator(league.Game, s.opts, s.logger.With(zap.String("league_id", league.ID.String())))
}

// Rate updates the ratings of every player in in and records the match.
// Ratings are written only if they still hold the values the match was
// rated from; otherwise the match is re-rated from fresh ratings.
func (s *RatingService) Rate(ctx context.Context, league *domain.League, in MatchInput) (*domain.MatchRecord, error) {
	if len(in.Ranks) != len(in.Teams) {
		return nil, fmt.Errorf("%w: %d ranks for %d teams", ErrInvalidMatch, len(in.Ranks), len(in.Teams))
	}
	for attempt := 1; ; attempt++ {
		record, err := s.rateOnce(ctx, league, in)
		if !errors.Is(err, store.ErrConflict) {
			return record, err
		}
		if attempt == rateAttempts {
			s.logger.Warn("match rating kept conflicting",
				zap.String("league_id", league.ID.String()),
				zap.Int("attempts", attempt))
			return nil, ErrRatingConflict
		}
		s.logger.Debug("ratings moved, re-rating match",
			zap.String("league_id", league.ID.String()),
			zap.Int("attempt", attempt))
	}
}

func (s *RatingService) rateOnce(ctx context.Context, league *domain.League, in MatchInput) (*domain.MatchRecord, error) {
	m, err := s.load(ctx, league.ID, in)
	if err != nil {
		return nil, err
	}

	calc := s.calculator(league)
	quality, err := calc.MatchQuality(m)
	if err != nil {
		return nil, mapRatingError(err)
	}
	result, err := calc.Rate(m)
	if err != nil {
		return nil, mapRatingError(err)
	}

	record := &domain.MatchRecord{
		LeagueID:    league.ID,
		Quality:     quality,
		Probability: result.Probability,
		Iterations:  result.Iterations,
		Converged:   result.Converged,
	}
	for ti, team := range m.Teams {
		for _, member := range team {
			record.Participants = append(record.Participants, domain.MatchParticipant{
				PlayerID:      member.Player.ID,
				Team:          ti,
				Rank:          m.Ranks[ti],
				PartialPlay:   member.Player.PartialPlay,
				PartialUpdate: member.Player.PartialUpdate,
				Before:        member.Rating,
				After:         result.Ratings[member.Player.ID],
			})
		}
	}

	if err := s.matches.Record(ctx, record); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		if errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("record match: %w", err)
	}

	s.logger.Info("match rated",
		zap.String("league_id", league.ID.String()),
		zap.String("match_id", record.ID.String()),
		zap.Int("teams", len(m.Teams)),
		zap.Int("players", len(record.Participants)),
		zap.Float64("quality", quality),
		zap.Bool("converged", result.Converged))
	return record, nil
}

// Quality is the draw probability of the teams of in under their stored
// ratings. Ranks are ignored.
func (s *RatingService) Quality(ctx context.Context, league *domain.League, in MatchInput) (float64, error) {
	in.Ranks = nil
	m, err := s.load(ctx, league.ID, in)
	if err != nil {
		return 0, err
	}
	q, err := s.calculator(league).MatchQuality(m)
	if err != nil {
		return 0, mapRatingError(err)
	}
	return q, nil
}

func (s *RatingService) GetMatch(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*domain.MatchRecord, error) {
	m, err := s.matches.GetByID(ctx, id, leagueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

// load resolves every entry of in to a player with its stored rating.
func (s *RatingService) load(ctx context.Context, leagueID uuid.UUID, in MatchInput) (domain.Match, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, team := range in.Teams {
		for _, e := range team {
			if _, dup := seen[e.PlayerID]; dup {
				return domain.Match{}, fmt.Errorf("%w: player %s appears twice", ErrInvalidMatch, e.PlayerID)
			}
			seen[e.PlayerID] = struct{}{}
			ids = append(ids, e.PlayerID)
		}
	}

	profiles, err := s.players.GetMany(ctx, ids, leagueID)
	if err != nil {
		return domain.Match{}, fmt.Errorf("load players: %w", err)
	}
	ratings := make(map[uuid.UUID]domain.Rating, len(profiles))
	for _, p := range profiles {
		ratings[p.ID] = p.Rating
	}

	m := domain.Match{Ranks: in.Ranks}
	for _, entries := range in.Teams {
		team := make(domain.Team, 0, len(entries))
		for _, e := range entries {
			r, ok := ratings[e.PlayerID]
			if !ok {
				return domain.Match{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, e.PlayerID)
			}
			p := domain.NewPlayer(e.PlayerID)
			if e.PartialPlay != nil {
				p.PartialPlay = *e.PartialPlay
			}
			if e.PartialUpdate != nil {
				p.PartialUpdate = *e.PartialUpdate
			}
			team = append(team, domain.TeamMember{Player: p, Rating: r})
		}
		m.Teams = append(m.Teams, team)
	}
	return m, nil
}

func mapRatingError(err error) error {
	if errors.Is(err, trueskill.ErrInvalidMatch) {
		return fmt.Errorf("%w: %v", ErrInvalidMatch, err)
	}
	return err
}
