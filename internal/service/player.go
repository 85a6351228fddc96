package service

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/store"
	"github.com/google/uuid"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 500
	defaultOpponentLimit    = 10
	maxOpponentLimit        = 100
)

type PlayerService struct {
	store domain.PlayerStore
}

func NewPlayerService(s domain.PlayerStore) *PlayerService {
	return &PlayerService{store: s}
}

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerConflict = errors.New("player with this external_id already exists")
)

// Create registers p in league at the league's default rating.
func (s *PlayerService) Create(ctx context.Context, league *domain.League, p *domain.PlayerProfile) error {
	p.LeagueID = league.ID
	p.Rating = league.Game.DefaultRating()
	err := s.store.Create(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrPlayerConflict
		}
		return err
	}
	return nil
}

func (s *PlayerService) GetByID(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*domain.PlayerProfile, error) {
	p, err := s.store.GetByID(ctx, id, leagueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

// Leaderboard orders the league by conservative rating.
func (s *PlayerService) Leaderboard(ctx context.Context, league *domain.League, limit int) ([]domain.PlayerProfile, error) {
	return s.store.Leaderboard(ctx, league.ID, domain.LeaderboardOpts{
		Limit:      clampLimit(limit, defaultLeaderboardLimit, maxLeaderboardLimit),
		Multiplier: league.Game.ConservativeMultiplier,
	})
}

// Opponents returns the players closest in skill to id.
func (s *PlayerService) Opponents(ctx context.Context, id uuid.UUID, leagueID uuid.UUID, limit int) ([]domain.PlayerWithDistance, error) {
	if _, err := s.GetByID(ctx, id, leagueID); err != nil {
		return nil, err
	}
	return s.store.Nearest(ctx, id, leagueID, clampLimit(limit, defaultOpponentLimit, maxOpponentLimit))
}

func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
