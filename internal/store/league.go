package store

import (
	"context"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeagueStore struct {
	db *pgxpool.Pool
}

func NewLeagueStore(db *pgxpool.Pool) *LeagueStore {
	return &LeagueStore{db: db}
}

func (s *LeagueStore) Create(ctx context.Context, l *domain.League) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO leagues (name, api_key_hash, game) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		l.Name, l.APIKeyHash, l.Game,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return mapError(err)
}

func (s *LeagueStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	l := &domain.League{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, api_key_hash, game, created_at, updated_at
		 FROM leagues WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Name, &l.APIKeyHash, &l.Game, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

func (s *LeagueStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.League, error) {
	l := &domain.League{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, api_key_hash, game, created_at, updated_at
		 FROM leagues WHERE api_key_hash = $1`,
		apiKeyHash,
	).Scan(&l.ID, &l.Name, &l.APIKeyHash, &l.Game, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}
