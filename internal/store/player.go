package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

const playerColumns = `id, league_id, external_id, name, mean, stdev, matches_played, last_played_at, created_at, updated_at`

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

func skillVector(r domain.Rating) pgvector.Vector {
	return pgvector.NewVector(domain.SkillVector(r))
}

func scanPlayer(row pgx.Row, p *domain.PlayerProfile, extra ...any) error {
	dest := []any{&p.ID, &p.LeagueID, &p.ExternalID, &p.Name, &p.Rating.Mean, &p.Rating.Stdev,
		&p.MatchesPlayed, &p.LastPlayedAt, &p.CreatedAt, &p.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (s *PlayerStore) Create(ctx context.Context, p *domain.PlayerProfile) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO players (league_id, external_id, name, mean, stdev, skill)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.LeagueID, p.ExternalID, p.Name, p.Rating.Mean, p.Rating.Stdev, skillVector(p.Rating),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}

func (s *PlayerStore) GetByID(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*domain.PlayerProfile, error) {
	p := &domain.PlayerProfile{}
	row := s.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1 AND league_id = $2`,
		id, leagueID,
	)
	if err := scanPlayer(row, p); err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (s *PlayerStore) GetMany(ctx context.Context, ids []uuid.UUID, leagueID uuid.UUID) ([]domain.PlayerProfile, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	return s.list(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ANY($1::uuid[]) AND league_id = $2`,
		keys, leagueID,
	)
}

func (s *PlayerStore) Leaderboard(ctx context.Context, leagueID uuid.UUID, opts domain.LeaderboardOpts) ([]domain.PlayerProfile, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	return s.list(ctx,
		`SELECT `+playerColumns+` FROM players
		 WHERE league_id = $1
		 ORDER BY mean - $2 * stdev DESC, created_at
		 LIMIT $3`,
		leagueID, opts.Multiplier, opts.Limit,
	)
}

func (s *PlayerStore) Nearest(ctx context.Context, id uuid.UUID, leagueID uuid.UUID, limit int) ([]domain.PlayerWithDistance, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.league_id, p.external_id, p.name, p.mean, p.stdev, p.matches_played, p.last_played_at, p.created_at, p.updated_at,
		        p.skill <-> q.skill AS distance
		 FROM players p, (SELECT skill FROM players WHERE id = $1 AND league_id = $2) q
		 WHERE p.league_id = $2 AND p.id <> $1
		 ORDER BY distance
		 LIMIT $3`,
		id, leagueID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("nearest query: %w", err)
	}
	defer rows.Close()

	var out []domain.PlayerWithDistance
	for rows.Next() {
		var p domain.PlayerWithDistance
		if err := scanPlayer(rows, &p.PlayerProfile, &p.Distance); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PlayerStore) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.PlayerProfile, error) {
	if limit <= 0 {
		limit = 500
	}
	return s.list(ctx,
		`SELECT p.id, p.league_id, p.external_id, p.name, p.mean, p.stdev, p.matches_played, p.last_played_at, p.created_at, p.updated_at
		 FROM players p JOIN leagues l ON l.id = p.league_id
		 WHERE COALESCE(p.last_played_at, p.created_at) < $1
		   AND p.stdev < (l.game->>'initial_stdev')::float8
		 ORDER BY p.updated_at
		 LIMIT $2`,
		before, limit,
	)
}

// UpdateRating returns ErrConflict when the stored rating has moved away
// from from, and ErrNotFound when the player does not exist.
func (s *PlayerStore) UpdateRating(ctx context.Context, id uuid.UUID, from, to domain.Rating) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE players SET mean = $2, stdev = $3, skill = $4, updated_at = NOW()
		 WHERE id = $1 AND mean = $5 AND stdev = $6`,
		id, to.Mean, to.Stdev, skillVector(to), from.Mean, from.Stdev,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrConflict(ctx, id)
	}
	return nil
}

func (s *PlayerStore) missingOrConflict(ctx context.Context, id uuid.UUID) error {
	var found bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM players WHERE id = $1)`, id).Scan(&found); err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *PlayerStore) list(ctx context.Context, query string, args ...any) ([]domain.PlayerProfile, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.PlayerProfile
	for rows.Next() {
		var p domain.PlayerProfile
		if err := scanPlayer(rows, &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
