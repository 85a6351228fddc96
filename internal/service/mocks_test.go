package service

import (
	"context"
	"sort"
	"time"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockLeagueStore implements domain.LeagueStore for testing.
type mockLeagueStore struct {
	leagues map[uuid.UUID]*domain.League
}

func newMockLeagueStore() *mockLeagueStore {
	return &mockLeagueStore{leagues: make(map[uuid.UUID]*domain.League)}
}

func (m *mockLeagueStore) Create(ctx context.Context, l *domain.League) error {
	for _, existing := range m.leagues {
		if existing.APIKeyHash == l.APIKeyHash {
			return store.ErrConflict
		}
	}
	l.ID = uuid.New()
	m.leagues[l.ID] = l
	return nil
}

func (m *mockLeagueStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	l, ok := m.leagues[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return l, nil
}

func (m *mockLeagueStore) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.League, error) {
	for _, l := range m.leagues {
		if l.APIKeyHash == hash {
			return l, nil
		}
	}
	return nil, store.ErrNotFound
}

// mockPlayerStore implements domain.PlayerStore for testing.
type mockPlayerStore struct {
	players map[uuid.UUID]*domain.PlayerProfile
	updates map[uuid.UUID]domain.Rating
}

func newMockPlayerStore() *mockPlayerStore {
	return &mockPlayerStore{
		players: make(map[uuid.UUID]*domain.PlayerProfile),
		updates: make(map[uuid.UUID]domain.Rating),
	}
}

func (m *mockPlayerStore) Create(ctx context.Context, p *domain.PlayerProfile) error {
	for _, existing := range m.players {
		if existing.ExternalID == p.ExternalID && existing.LeagueID == p.LeagueID {
			return store.ErrConflict
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.players[p.ID] = p
	return nil
}

func (m *mockPlayerStore) GetByID(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*domain.PlayerProfile, error) {
	p, ok := m.players[id]
	if !ok || p.LeagueID != leagueID {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *mockPlayerStore) GetMany(ctx context.Context, ids []uuid.UUID, leagueID uuid.UUID) ([]domain.PlayerProfile, error) {
	var out []domain.PlayerProfile
	for _, id := range ids {
		if p, ok := m.players[id]; ok && p.LeagueID == leagueID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPlayerStore) Leaderboard(ctx context.Context, leagueID uuid.UUID, opts domain.LeaderboardOpts) ([]domain.PlayerProfile, error) {
	var out []domain.PlayerProfile
	for _, p := range m.players {
		if p.LeagueID == leagueID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Rating.ConservativeRating(opts.Multiplier) > out[j].Rating.ConservativeRating(opts.Multiplier)
	})
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *mockPlayerStore) Nearest(ctx context.Context, id uuid.UUID, leagueID uuid.UUID, limit int) ([]domain.PlayerWithDistance, error) {
	self := m.players[id]
	var out []domain.PlayerWithDistance
	for _, p := range m.players {
		if p.ID == id || p.LeagueID != leagueID {
			continue
		}
		dm := p.Rating.Mean - self.Rating.Mean
		ds := p.Rating.Stdev - self.Rating.Stdev
		out = append(out, domain.PlayerWithDistance{PlayerProfile: *p, Distance: dm*dm + ds*ds})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPlayerStore) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.PlayerProfile, error) {
	var out []domain.PlayerProfile
	for _, p := range m.players {
		if p.LastActive().Before(before) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPlayerStore) UpdateRating(ctx context.Context, id uuid.UUID, from, to domain.Rating) error {
	p, ok := m.players[id]
	if !ok {
		return store.ErrNotFound
	}
	if p.Rating != from {
		return store.ErrConflict
	}
	p.Rating = to
	m.updates[id] = to
	return nil
}

// mockMatchStore implements domain.MatchStore for testing.
type mockMatchStore struct {
	mock.Mock
}

func (m *mockMatchStore) Record(ctx context.Context, rec *domain.MatchRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockMatchStore) GetByID(ctx context.Context, id uuid.UUID, leagueID uuid.UUID) (*domain.MatchRecord, error) {
	args := m.Called(ctx, id, leagueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchRecord), args.Error(1)
}

var (
	_ domain.LeagueStore = (*mockLeagueStore)(nil)
	_ domain.PlayerStore = (*mockPlayerStore)(nil)
	_ domain.MatchStore  = (*mockMatchStore)(nil)
)
