package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultInactivityInterval = 1 * time.Hour
	defaultInactivityAfter    = 30 * 24 * time.Hour
	inactivityBatchSize       = 500
)

// InactivityService widens the uncertainty of players who stopped playing,
// one dynamics step per interval, up to the league's initial stdev.
type InactivityService struct {
	players domain.PlayerStore
	leagues domain.LeagueStore
	logger  *zap.Logger

	interval time.Duration
	after    time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewInactivityService(ps domain.PlayerStore, ls domain.LeagueStore, logger *zap.Logger) *InactivityService {
	return &InactivityService{
		players:  ps,
		leagues:  ls,
		logger:   logger,
		interval: defaultInactivityInterval,
		after:    defaultInactivityAfter,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (s *InactivityService) SetInterval(d time.Duration) {
	s.interval = d
}

// SetAfter sets how long a player may be idle before widening starts.
func (s *InactivityService) SetAfter(d time.Duration) {
	s.after = d
}

// Start runs the sweep on a periodic schedule in a background goroutine.
func (s *InactivityService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("inactivity sweep started",
			zap.Duration("interval", s.interval),
			zap.Duration("after", s.after))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("inactivity sweep stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the sweep.
func (s *InactivityService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// run widens one batch of stale players and returns how many were updated.
func (s *InactivityService) run(ctx context.Context) int {
	stale, err := s.players.ListStale(ctx, s.now().Add(-s.after), inactivityBatchSize)
	if err != nil {
		s.logger.Error("failed to list inactive players", zap.Error(err))
		return 0
	}

	games := make(map[uuid.UUID]*domain.GameInfo)
	updated := 0
	for _, p := range stale {
		game, ok := games[p.LeagueID]
		if !ok {
			league, err := s.leagues.GetByID(ctx, p.LeagueID)
			if err != nil {
				s.logger.Warn("failed to load league for inactive player",
					zap.String("league_id", p.LeagueID.String()),
					zap.Error(err))
				games[p.LeagueID] = nil
				continue
			}
			game = &league.Game
			games[p.LeagueID] = game
		}
		if game == nil {
			continue
		}

		widened := Widen(p.Rating, *game)
		if widened == p.Rating {
			continue
		}
		if err := s.players.UpdateRating(ctx, p.ID, p.Rating, widened); err != nil {
			if errors.Is(err, store.ErrConflict) {
				// A match landed since the player was listed.
				s.logger.Debug("skipped widening of rerated player",
					zap.String("player_id", p.ID.String()))
				continue
			}
			s.logger.Warn("failed to widen inactive player",
				zap.String("player_id", p.ID.String()),
				zap.Error(err))
			continue
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("widened inactive players", zap.Int("count", updated))
	}
	return updated
}

// Widen adds one dynamics step of variance to r, capped at the game's
// initial stdev. The mean is unchanged.
func Widen(r domain.Rating, game domain.GameInfo) domain.Rating {
	stdev := math.Sqrt(r.Stdev*r.Stdev + game.DynamicsFactor*game.DynamicsFactor)
	if stdev > game.InitialStdev {
		stdev = game.InitialStdev
	}
	if stdev < r.Stdev {
		stdev = r.Stdev
	}
	return domain.Rating{Mean: r.Mean, Stdev: stdev}
}
