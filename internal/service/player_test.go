package service

import (
	"context"
	"testing"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeague() *domain.League {
	return &domain.League{ID: uuid.New(), Name: "test", Game: domain.DefaultGameInfo()}
}

func TestPlayerService_Create(t *testing.T) {
	s := NewPlayerService(newMockPlayerStore())
	league := newTestLeague()

	p := &domain.PlayerProfile{ExternalID: "p-1", Name: "Alice"}
	require.NoError(t, s.Create(context.Background(), league, p))

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, league.ID, p.LeagueID)
	assert.Equal(t, domain.NewRating(25, 25.0/3), p.Rating)
}

func TestPlayerService_CreateDuplicate(t *testing.T) {
	s := NewPlayerService(newMockPlayerStore())
	league := newTestLeague()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, league, &domain.PlayerProfile{ExternalID: "p-1", Name: "Alice"}))
	err := s.Create(ctx, league, &domain.PlayerProfile{ExternalID: "p-1", Name: "Again"})
	assert.ErrorIs(t, err, ErrPlayerConflict)

	// The same external id is free in another league.
	assert.NoError(t, s.Create(ctx, newTestLeague(), &domain.PlayerProfile{ExternalID: "p-1", Name: "Elsewhere"}))
}

func TestPlayerService_GetByID(t *testing.T) {
	s := NewPlayerService(newMockPlayerStore())
	league := newTestLeague()
	ctx := context.Background()

	p := &domain.PlayerProfile{ExternalID: "p-1", Name: "Alice"}
	require.NoError(t, s.Create(ctx, league, p))

	found, err := s.GetByID(ctx, p.ID, league.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)

	_, err = s.GetByID(ctx, p.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	_, err = s.GetByID(ctx, uuid.New(), league.ID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerService_Leaderboard(t *testing.T) {
	ps := newMockPlayerStore()
	s := NewPlayerService(ps)
	league := newTestLeague()
	ctx := context.Background()

	// A high mean with a wide stdev ranks below a steadier player.
	ratings := map[string]domain.Rating{
		"steady":  domain.NewRating(30, 1),
		"unknown": domain.NewRating(35, 5),
		"weak":    domain.NewRating(10, 1),
	}
	for name, r := range ratings {
		p := &domain.PlayerProfile{ExternalID: name, Name: name}
		require.NoError(t, s.Create(ctx, league, p))
		p.Rating = r
	}

	board, err := s.Leaderboard(ctx, league, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "steady", board[0].Name)
	assert.Equal(t, "unknown", board[1].Name)
	assert.Equal(t, "weak", board[2].Name)

	board, err = s.Leaderboard(ctx, league, 1)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}

func TestPlayerService_Opponents(t *testing.T) {
	s := NewPlayerService(newMockPlayerStore())
	league := newTestLeague()
	ctx := context.Background()

	var ids []uuid.UUID
	for i, mean := range []float64{25, 26, 40, 12} {
		p := &domain.PlayerProfile{ExternalID: uuid.NewString(), Name: string(rune('a' + i))}
		require.NoError(t, s.Create(ctx, league, p))
		p.Rating = domain.NewRating(mean, 8)
		ids = append(ids, p.ID)
	}

	near, err := s.Opponents(ctx, ids[0], league.ID, 2)
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, ids[1], near[0].ID)
	assert.Equal(t, ids[3], near[1].ID)

	_, err = s.Opponents(ctx, uuid.New(), league.ID, 2)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0, 50, 500))
	assert.Equal(t, 50, clampLimit(-1, 50, 500))
	assert.Equal(t, 7, clampLimit(7, 50, 500))
	assert.Equal(t, 500, clampLimit(9000, 50, 500))
}
