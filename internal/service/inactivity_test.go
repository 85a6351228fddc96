package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWiden(t *testing.T) {
	game := domain.DefaultGameInfo()
	tau := game.DynamicsFactor

	r := domain.NewRating(30, 2)
	got := Widen(r, game)
	assert.Equal(t, 30.0, got.Mean)
	assert.InDelta(t, math.Sqrt(4+tau*tau), got.Stdev, 1e-12)

	// Capped at the initial stdev.
	capped := Widen(domain.NewRating(30, game.InitialStdev-1e-6), game)
	assert.Equal(t, game.InitialStdev, capped.Stdev)

	// Never shrinks a stdev that is already wider than the cap.
	wide := domain.NewRating(30, game.InitialStdev+1)
	assert.Equal(t, wide, Widen(wide, game))
}

func TestInactivityService_Run(t *testing.T) {
	leagues := newMockLeagueStore()
	players := newMockPlayerStore()
	ctx := context.Background()

	league := &domain.League{Name: "l", APIKeyHash: "k", Game: domain.DefaultGameInfo()}
	require.NoError(t, leagues.Create(ctx, league))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-45 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	idle := &domain.PlayerProfile{ID: uuid.New(), LeagueID: league.ID, Rating: domain.NewRating(30, 2), LastPlayedAt: &old}
	active := &domain.PlayerProfile{ID: uuid.New(), LeagueID: league.ID, Rating: domain.NewRating(30, 2), LastPlayedAt: &recent}
	fresh := &domain.PlayerProfile{ID: uuid.New(), LeagueID: league.ID, Rating: league.Game.DefaultRating(), CreatedAt: old}
	orphan := &domain.PlayerProfile{ID: uuid.New(), LeagueID: uuid.New(), Rating: domain.NewRating(30, 2), CreatedAt: old}
	for _, p := range []*domain.PlayerProfile{idle, active, fresh, orphan} {
		players.players[p.ID] = p
	}

	s := NewInactivityService(players, leagues, zap.NewNop())
	s.now = func() time.Time { return now }

	assert.Equal(t, 1, s.run(ctx))
	assert.Contains(t, players.updates, idle.ID)
	assert.NotContains(t, players.updates, active.ID)
	assert.NotContains(t, players.updates, fresh.ID)
	assert.NotContains(t, players.updates, orphan.ID)
	assert.Greater(t, idle.Rating.Stdev, 2.0)
	assert.Equal(t, 30.0, idle.Rating.Mean)
}

// racingPlayerStore lets a match land between listing and widening.
type racingPlayerStore struct {
	*mockPlayerStore
	afterList func()
}

func (s racingPlayerStore) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.PlayerProfile, error) {
	out, err := s.mockPlayerStore.ListStale(ctx, before, limit)
	s.afterList()
	return out, err
}

func TestInactivityService_RunSkipsRerated(t *testing.T) {
	leagues := newMockLeagueStore()
	players := newMockPlayerStore()
	ctx := context.Background()

	league := &domain.League{Name: "l", APIKeyHash: "k", Game: domain.DefaultGameInfo()}
	require.NoError(t, leagues.Create(ctx, league))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-45 * 24 * time.Hour)
	p := &domain.PlayerProfile{ID: uuid.New(), LeagueID: league.ID, Rating: domain.NewRating(30, 2), LastPlayedAt: &old}
	players.players[p.ID] = p

	rated := domain.NewRating(31.5, 1.9)
	racing := racingPlayerStore{mockPlayerStore: players, afterList: func() { p.Rating = rated }}
	s := NewInactivityService(racing, leagues, zap.NewNop())
	s.now = func() time.Time { return now }

	assert.Equal(t, 0, s.run(ctx))
	assert.Equal(t, rated, p.Rating)
	assert.NotContains(t, players.updates, p.ID)
}

func TestInactivityService_SetAfter(t *testing.T) {
	leagues := newMockLeagueStore()
	players := newMockPlayerStore()
	ctx := context.Background()

	league := &domain.League{Name: "l", APIKeyHash: "k", Game: domain.DefaultGameInfo()}
	require.NoError(t, leagues.Create(ctx, league))

	now := time.Now()
	last := now.Add(-48 * time.Hour)
	p := &domain.PlayerProfile{ID: uuid.New(), LeagueID: league.ID, Rating: domain.NewRating(25, 3), LastPlayedAt: &last}
	players.players[p.ID] = p

	s := NewInactivityService(players, leagues, zap.NewNop())
	s.now = func() time.Time { return now }
	assert.Equal(t, 0, s.run(ctx))

	s.SetAfter(24 * time.Hour)
	assert.Equal(t, 1, s.run(ctx))
}

func TestInactivityService_StartStop(t *testing.T) {
	s := NewInactivityService(newMockPlayerStore(), newMockLeagueStore(), zap.NewNop())
	s.SetInterval(time.Millisecond)
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Stop()
}
