package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type LeagueStore interface {
	Create(ctx context.Context, l *League) error
	GetByID(ctx context.Context, id uuid.UUID) (*League, error)
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*League, error)
}

type LeaderboardOpts struct {
	Limit int
	// Multiplier is k in mean - k*stdev.
	Multiplier float64
}

type PlayerStore interface {
	Create(ctx context.Context, p *PlayerProfile) error
	GetByID(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*PlayerProfile, error)
	// GetMany returns the players of ids that exist in the league, in no
	// particular order.
	GetMany(ctx context.Context, ids []uuid.UUID, leagueID uuid.UUID) ([]PlayerProfile, error)
	Leaderboard(ctx context.Context, leagueID uuid.UUID, opts LeaderboardOpts) ([]PlayerProfile, error)
	// Nearest ranks the league's other players by distance between skill
	// vectors.
	Nearest(ctx context.Context, id uuid.UUID, leagueID uuid.UUID, limit int) ([]PlayerWithDistance, error)
	// ListStale returns players whose last activity is before the cutoff and
	// whose stdev is still below their league's initial stdev.
	ListStale(ctx context.Context, before time.Time, limit int) ([]PlayerProfile, error)
	// UpdateRating replaces the rating from with to. It reports a conflict
	// when the stored rating is no longer from.
	UpdateRating(ctx context.Context, id uuid.UUID, from, to Rating) error
}

type MatchStore interface {
	// Record stores m with its participants and writes every participant's
	// After rating onto the player, in one transaction. It reports a conflict,
	// and stores nothing, when any player's rating is no longer its Before
	// rating.
	Record(ctx context.Context, m *MatchRecord) error
	GetByID(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*MatchRecord, error)
}
