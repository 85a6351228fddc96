package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/store"
)

type LeagueService struct {
	store    domain.LeagueStore
	defaults domain.GameInfo
}

func NewLeagueService(s domain.LeagueStore, defaults domain.GameInfo) *LeagueService {
	return &LeagueService{store: s, defaults: defaults}
}

var (
	ErrInvalidGame    = errors.New("invalid game parameters")
	ErrLeagueConflict = errors.New("league api key already in use")
)

// Defaults is the game a league gets when it does not bring its own.
func (s *LeagueService) Defaults() domain.GameInfo {
	return s.defaults
}

// Create stores l. A zero Game is replaced by the service defaults.
func (s *LeagueService) Create(ctx context.Context, l *domain.League) error {
	if l.Game == (domain.GameInfo{}) {
		l.Game = s.defaults
	}
	if err := l.Game.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGame, err)
	}
	if err := s.store.Create(ctx, l); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrLeagueConflict
		}
		return err
	}
	return nil
}
