package store

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchStore struct {
	db *pgxpool.Pool
}

func NewMatchStore(db *pgxpool.Pool) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) Record(ctx context.Context, m *domain.MatchRecord) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO matches (league_id, quality, probability, iterations, converged)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.LeagueID, m.Quality, m.Probability, m.Iterations, m.Converged,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	batch := &pgx.Batch{}
	for i, p := range m.Participants {
		batch.Queue(
			`INSERT INTO match_participants
			   (match_id, player_id, position, team, rank, partial_play, partial_update,
			    mean_before, stdev_before, mean_after, stdev_after)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			m.ID, p.PlayerID, i, p.Team, p.Rank, p.PartialPlay, p.PartialUpdate,
			p.Before.Mean, p.Before.Stdev, p.After.Mean, p.After.Stdev,
		)
		batch.Queue(
			`UPDATE players
			 SET mean = $3, stdev = $4, skill = $5, matches_played = matches_played + 1,
			     last_played_at = $6, updated_at = NOW()
			 WHERE id = $1 AND league_id = $2 AND mean = $7 AND stdev = $8`,
			p.PlayerID, m.LeagueID, p.After.Mean, p.After.Stdev, skillVector(p.After), m.CreatedAt,
			p.Before.Mean, p.Before.Stdev,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range m.Participants {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return mapError(err)
		}
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			// Another write moved the rating since it was read.
			_ = results.Close()
			return ErrConflict
		}
	}
	if err := results.Close(); err != nil {
		return mapError(err)
	}

	return tx.Commit(ctx)
}

func (s *MatchStore) GetByID(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*domain.MatchRecord, error) {
	m := &domain.MatchRecord{}
	err := s.db.QueryRow(ctx,
		`SELECT id, league_id, quality, probability, iterations, converged, created_at
		 FROM matches WHERE id = $1 AND league_id = $2`,
		id, leagueID,
	).Scan(&m.ID, &m.LeagueID, &m.Quality, &m.Probability, &m.Iterations, &m.Converged, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT player_id, team, rank, partial_play, partial_update,
		        mean_before, stdev_before, mean_after, stdev_after
		 FROM match_participants WHERE match_id = $1
		 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.MatchParticipant
		if err := rows.Scan(&p.PlayerID, &p.Team, &p.Rank, &p.PartialPlay, &p.PartialUpdate,
			&p.Before.Mean, &p.Before.Stdev, &p.After.Mean, &p.After.Stdev); err != nil {
			return nil, err
		}
		m.Participants = append(m.Participants, p)
	}
	return m, rows.Err()
}
